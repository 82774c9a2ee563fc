package oci

import (
	"strings"
	"testing"
)

func TestProtocolNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "tcp", want: ProtocolTCP},
		{in: "TCP", want: ProtocolTCP},
		{in: "udp", want: ProtocolUDP},
		{in: "icmp", want: ProtocolICMP},
		{in: "6", want: "6"},
		{in: "132", want: "132"},
		{in: "sctp", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ProtocolNumber(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ProtocolNumber(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ProtocolNumber(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestDisplayName_Truncates(t *testing.T) {
	long := strings.Repeat("x", MaxNameLength+40)
	if got := displayName(long); len(got) != MaxNameLength {
		t.Fatalf("displayName length = %d, want %d", len(got), MaxNameLength)
	}
	if got := displayName("net-test"); got != "net-test" {
		t.Fatalf("Short names must pass through, got %q", got)
	}
}

func TestDNSLabel(t *testing.T) {
	tests := []struct {
		prefix, name, want string
	}{
		{"vcn", "net-test", "vcnnettest"},
		{"", "Net_Test-01", "nettest01"},
		{"", "0-numeric", "s0numeric"},
		{"", "", "s"},
		{"subnet", "a-very-long-stack-name", "subnetaverylong"},
	}
	for _, tt := range tests {
		if got := dnsLabel(tt.prefix, tt.name); got != tt.want {
			t.Errorf("dnsLabel(%q, %q) = %q, want %q", tt.prefix, tt.name, got, tt.want)
		}
	}
}

func TestDefaultTags(t *testing.T) {
	tags := defaultTags("net-test")
	for _, want := range []string{`"created-by":"stratus"`, `"stack":"net-test"`} {
		if !strings.Contains(tags, want) {
			t.Fatalf("Tags missing %s: %s", want, tags)
		}
	}
}
