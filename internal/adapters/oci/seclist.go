package oci

import (
	"context"
	"encoding/json"
	"fmt"
)

// ICMPOptions restricts an ICMP rule to one type/code pair. A nil options
// block on the wire means "no restriction".
type ICMPOptions struct {
	Type *int `json:"type"`
	Code *int `json:"code"`
}

// PortRange is an inclusive destination port range.
type PortRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// TCPOptions carries the destination port range of a TCP rule.
type TCPOptions struct {
	DestinationPortRange *PortRange `json:"destinationPortRange,omitempty"`
}

// UDPOptions carries the destination port range of a UDP rule.
type UDPOptions struct {
	DestinationPortRange *PortRange `json:"destinationPortRange,omitempty"`
}

// SecurityRule is one ingress rule as the control plane serializes it. The
// option blocks are mutually exclusive: a rule never carries both ICMP
// options and a port range. Nil blocks marshal as explicit nulls, which is
// how the control plane spells "no restriction".
type SecurityRule struct {
	Source      string       `json:"source"`
	ICMPOptions *ICMPOptions `json:"icmp-options"`
	Protocol    string       `json:"protocol"`
	IsStateless bool         `json:"is-stateless"`
	TCPOptions  *TCPOptions  `json:"tcp-options"`
	UDPOptions  *UDPOptions  `json:"udp-options"`
}

// RuleSpec is a high-level request for one ingress rule, before the
// protocol-specific construction policy is applied.
type RuleSpec struct {
	Protocol  string // IANA number; see ProtocolNumber
	StartPort int    // 0: no port range
	EndPort   int    // 0: same as StartPort
	Source    string // empty: DefaultSource
	ICMPType  *int
	ICMPCode  *int
}

// BuildIngressRule applies the rule-construction policy: ICMP rules carry
// type/code only when both are supplied and never a port range; other
// protocols get a port range when a start port was requested and never ICMP
// options.
func BuildIngressRule(spec RuleSpec) SecurityRule {
	source := spec.Source
	if source == "" {
		source = DefaultSource
	}
	rule := SecurityRule{
		Source:      source,
		Protocol:    spec.Protocol,
		IsStateless: false,
	}

	if spec.Protocol == ProtocolICMP {
		if spec.ICMPType != nil && spec.ICMPCode != nil {
			rule.ICMPOptions = &ICMPOptions{Type: spec.ICMPType, Code: spec.ICMPCode}
		}
		return rule
	}

	if spec.StartPort > 0 {
		end := spec.EndPort
		if end == 0 {
			end = spec.StartPort
		}
		pr := &PortRange{Min: spec.StartPort, Max: end}
		if spec.Protocol == ProtocolUDP {
			rule.UDPOptions = &UDPOptions{DestinationPortRange: pr}
		} else {
			rule.TCPOptions = &TCPOptions{DestinationPortRange: pr}
		}
	}
	return rule
}

type secListData struct {
	LifecycleState       string         `json:"lifecycle-state"`
	IngressSecurityRules []SecurityRule `json:"ingress-security-rules"`
}

// IngressRules fetches the security list's current rule set.
func (v *VCN) IngressRules(ctx context.Context) ([]SecurityRule, error) {
	resp, err := v.client.Run(ctx,
		"network", "security-list", "get",
		"--security-list-id", v.SecurityListID,
	)
	if err != nil {
		return nil, err
	}
	var data secListData
	if err := resp.Object(&data); err != nil {
		return nil, fmt.Errorf("security-list get response: %w", err)
	}
	v.Status = data.LifecycleState
	return data.IngressSecurityRules, nil
}

// AddIngressRule appends one rule to the security list and writes the whole
// set back. Mutation is always full-replace, so the current set is fetched
// first to avoid discarding rules added since the last write. There is no
// compare-and-swap: a rule added by a concurrent caller between the read and
// the write is lost. Callers needing concurrent additions to the same list
// must serialize externally.
func (v *VCN) AddIngressRule(ctx context.Context, spec RuleSpec) error {
	current, err := v.IngressRules(ctx)
	if err != nil {
		return err
	}

	current = append(current, BuildIngressRule(spec))
	payload, err := json.Marshal(current)
	if err != nil {
		return err
	}

	_, err = v.client.Run(ctx,
		"network", "security-list", "update",
		"--security-list-id", v.SecurityListID,
		"--force",
		"--ingress-security-rules", string(payload),
	)
	return err
}

func (v *VCN) SecurityListState(ctx context.Context) (string, error) {
	resp, err := v.client.RunRetry(ctx,
		"network", "security-list", "get",
		"--security-list-id", v.SecurityListID,
	)
	if err != nil {
		return "", err
	}
	var data secListData
	if err := resp.Object(&data); err != nil {
		return "", fmt.Errorf("security-list get response: %w", err)
	}
	v.Status = data.LifecycleState
	return v.Status, nil
}
