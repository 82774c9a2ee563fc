package oci

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// IANA protocol numbers as the control plane spells them.
const (
	ProtocolICMP = "1"
	ProtocolTCP  = "6"
	ProtocolUDP  = "17"
)

// DefaultSource is the source CIDR used when a rule does not name one.
const DefaultSource = "0.0.0.0/0"

// MaxNameLength is the control plane's display-name limit.
const MaxNameLength = 128

// ProtocolNumber maps a protocol name to its number. Numeric strings pass
// through unchanged so configs may use either form.
func ProtocolNumber(name string) (string, error) {
	switch strings.ToLower(name) {
	case "icmp":
		return ProtocolICMP, nil
	case "tcp":
		return ProtocolTCP, nil
	case "udp":
		return ProtocolUDP, nil
	}
	if _, err := strconv.Atoi(name); err == nil {
		return name, nil
	}
	return "", fmt.Errorf("unknown protocol %q", name)
}

// displayName truncates a name to the control plane's limit.
func displayName(name string) string {
	if len(name) > MaxNameLength {
		return name[:MaxNameLength]
	}
	return name
}

// dnsLabel derives a DNS label from a display name: lowercase alphanumerics,
// leading letter, at most 15 characters.
func dnsLabel(prefix, name string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	label := b.String()
	if label == "" || label[0] >= '0' && label[0] <= '9' {
		label = "s" + label
	}
	if len(label) > 15 {
		label = label[:15]
	}
	return label
}

// defaultTags renders the freeform tags attached to every created resource.
func defaultTags(stack string) string {
	tags, _ := json.Marshal(map[string]string{
		"created-by": "stratus",
		"stack":      stack,
	})
	return string(tags)
}
