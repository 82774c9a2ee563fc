package oci

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stratus-cloud/stratus/internal/cloud"
	"github.com/stratus-cloud/stratus/internal/core"
)

func newTestVCN(mock *core.MockTransport) *VCN {
	v := NewVCN(cloud.NewClient("oci", "", "", mock), "net-test", "172.16.0.0/16")
	v.ID = "ocid1.vcn.test"
	v.SecurityListID = "ocid1.seclist.test"
	v.RouteTableID = "ocid1.rt.test"
	return v
}

func intp(v int) *int { return &v }

func TestBuildIngressRule(t *testing.T) {
	tests := []struct {
		name string
		spec RuleSpec
		want func(t *testing.T, r SecurityRule)
	}{
		{
			name: "tcp with port range",
			spec: RuleSpec{Protocol: ProtocolTCP, StartPort: 8080, EndPort: 8090, Source: "10.0.0.0/8"},
			want: func(t *testing.T, r SecurityRule) {
				if r.ICMPOptions != nil {
					t.Fatal("TCP rule must not carry ICMP options")
				}
				pr := r.TCPOptions.DestinationPortRange
				if pr.Min != 8080 || pr.Max != 8090 {
					t.Fatalf("Wrong port range: %+v", pr)
				}
				if r.Source != "10.0.0.0/8" {
					t.Fatalf("Wrong source: %s", r.Source)
				}
			},
		},
		{
			name: "tcp end port defaults to start",
			spec: RuleSpec{Protocol: ProtocolTCP, StartPort: 22},
			want: func(t *testing.T, r SecurityRule) {
				pr := r.TCPOptions.DestinationPortRange
				if pr.Min != 22 || pr.Max != 22 {
					t.Fatalf("Wrong port range: %+v", pr)
				}
				if r.Source != DefaultSource {
					t.Fatalf("Source must default to %s, got %s", DefaultSource, r.Source)
				}
			},
		},
		{
			name: "udp uses udp options",
			spec: RuleSpec{Protocol: ProtocolUDP, StartPort: 53},
			want: func(t *testing.T, r SecurityRule) {
				if r.TCPOptions != nil {
					t.Fatal("UDP rule must not carry tcp-options")
				}
				if r.UDPOptions.DestinationPortRange.Min != 53 {
					t.Fatalf("Wrong udp options: %+v", r.UDPOptions)
				}
			},
		},
		{
			name: "icmp unrestricted",
			spec: RuleSpec{Protocol: ProtocolICMP},
			want: func(t *testing.T, r SecurityRule) {
				if r.ICMPOptions != nil {
					t.Fatal("ICMP options must be nil unless both type and code are given")
				}
				if r.TCPOptions != nil || r.UDPOptions != nil {
					t.Fatal("ICMP rule must not carry a port range")
				}
			},
		},
		{
			name: "icmp with type and code",
			spec: RuleSpec{Protocol: ProtocolICMP, ICMPType: intp(8), ICMPCode: intp(0)},
			want: func(t *testing.T, r SecurityRule) {
				if r.ICMPOptions == nil || *r.ICMPOptions.Type != 8 || *r.ICMPOptions.Code != 0 {
					t.Fatalf("Wrong icmp options: %+v", r.ICMPOptions)
				}
			},
		},
		{
			name: "icmp with only type stays unrestricted",
			spec: RuleSpec{Protocol: ProtocolICMP, ICMPType: intp(8)},
			want: func(t *testing.T, r SecurityRule) {
				if r.ICMPOptions != nil {
					t.Fatal("Partial type/code must not restrict the rule")
				}
			},
		},
		{
			name: "icmp ignores ports",
			spec: RuleSpec{Protocol: ProtocolICMP, StartPort: 22},
			want: func(t *testing.T, r SecurityRule) {
				if r.TCPOptions != nil || r.UDPOptions != nil {
					t.Fatal("ICMP rule must never carry a port range")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := BuildIngressRule(tt.spec)
			if r.IsStateless {
				t.Fatal("Rules are always stateful")
			}
			tt.want(t, r)
		})
	}
}

func TestBuildIngressRule_MarshalsNullOptionBlocks(t *testing.T) {
	data, err := json.Marshal(BuildIngressRule(RuleSpec{Protocol: ProtocolICMP}))
	if err != nil {
		t.Fatal(err)
	}
	// The control plane expects explicit nulls as the "no restriction"
	// marker, not omitted keys.
	for _, key := range []string{`"icmp-options":null`, `"tcp-options":null`, `"udp-options":null`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("Marshaled rule missing %s: %s", key, data)
		}
	}
}

func TestAddIngressRule_FullReplace(t *testing.T) {
	mock := core.NewMockTransport()
	v := newTestVCN(mock)

	existing := `{"data":{"lifecycle-state":"AVAILABLE","ingress-security-rules":[
		{"source":"0.0.0.0/0","icmp-options":null,"protocol":"6","is-stateless":false,
		 "tcp-options":{"destinationPortRange":{"min":22,"max":22}},"udp-options":null}]}}`
	mock.OnExecute("oci network security-list get", existing, nil)
	mock.OnExecute("oci network security-list update", "", nil)

	err := v.AddIngressRule(context.Background(), RuleSpec{Protocol: ProtocolTCP, StartPort: 443})
	if err != nil {
		t.Fatalf("AddIngressRule failed: %v", err)
	}

	// The write must carry the fetched rule plus the new one.
	var update string
	for _, c := range mock.Calls() {
		if strings.HasPrefix(c, "oci network security-list update") {
			update = c
		}
	}
	if update == "" {
		t.Fatal("No security-list update issued")
	}
	if !strings.Contains(update, `"min":22`) {
		t.Fatal("Concurrently present rule was discarded by the write")
	}
	if !strings.Contains(update, `"min":443`) {
		t.Fatal("New rule missing from the write")
	}
	if strings.Index(update, `"min":22`) > strings.Index(update, `"min":443`) {
		t.Fatal("Rules must keep insertion order")
	}
}

func TestAddIngressRule_TwiceKeepsBothRules(t *testing.T) {
	mock := core.NewMockTransport()
	v := newTestVCN(mock)

	empty := `{"data":{"lifecycle-state":"AVAILABLE","ingress-security-rules":[]}}`
	afterFirst := `{"data":{"lifecycle-state":"AVAILABLE","ingress-security-rules":[
		{"source":"0.0.0.0/0","icmp-options":null,"protocol":"6","is-stateless":false,
		 "tcp-options":{"destinationPortRange":{"min":22,"max":22}},"udp-options":null}]}}`
	mock.OnExecute("oci network security-list get", empty, nil)
	mock.OnExecute("oci network security-list get", afterFirst, nil)
	mock.OnExecute("oci network security-list update", "", nil)

	ctx := context.Background()
	if err := v.AddIngressRule(ctx, RuleSpec{Protocol: ProtocolTCP, StartPort: 22}); err != nil {
		t.Fatalf("First add failed: %v", err)
	}
	if err := v.AddIngressRule(ctx, RuleSpec{Protocol: ProtocolTCP, StartPort: 443}); err != nil {
		t.Fatalf("Second add failed: %v", err)
	}

	calls := mock.Calls()
	last := calls[len(calls)-1]
	if !strings.Contains(last, `"min":22`) || !strings.Contains(last, `"min":443`) {
		t.Fatalf("Final rule set must contain both ranges: %s", last)
	}
	if strings.Index(last, `"min":22`) > strings.Index(last, `"min":443`) {
		t.Fatal("Rules must appear in insertion order")
	}
}
