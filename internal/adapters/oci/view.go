package oci

import (
	"context"

	"github.com/stratus-cloud/stratus/internal/core"
)

// AllowPort implements core.Firewaller by delegating to the firewall facade
// scoped to this stack.
func (n *Network) AllowPort(ctx context.Context, startPort, endPort int, sourceRange string) error {
	return NewFirewall().AllowPort(ctx, n, startPort, endPort, sourceRange)
}

// AllowICMP implements core.Firewaller.
func (n *Network) AllowICMP(ctx context.Context, icmpType, icmpCode *int, sourceRange string) error {
	return NewFirewall().AllowICMP(ctx, n, icmpType, icmpCode, sourceRange)
}

// ListRules implements core.RuleLister.
func (n *Network) ListRules(ctx context.Context) ([]core.RuleSummary, error) {
	rules, err := n.VCN.IngressRules(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.RuleSummary, 0, len(rules))
	for _, r := range rules {
		s := core.RuleSummary{
			Protocol:  r.Protocol,
			Source:    r.Source,
			Stateless: r.IsStateless,
		}
		if r.TCPOptions != nil && r.TCPOptions.DestinationPortRange != nil {
			s.PortMin = r.TCPOptions.DestinationPortRange.Min
			s.PortMax = r.TCPOptions.DestinationPortRange.Max
		}
		if r.UDPOptions != nil && r.UDPOptions.DestinationPortRange != nil {
			s.PortMin = r.UDPOptions.DestinationPortRange.Min
			s.PortMax = r.UDPOptions.DestinationPortRange.Max
		}
		if r.ICMPOptions != nil {
			s.ICMPType = r.ICMPOptions.Type
			s.ICMPCode = r.ICMPOptions.Code
		}
		out = append(out, s)
	}
	return out, nil
}

// Describe implements core.Describer: the lifecycle state of every owned
// resource that has an identifier.
func (n *Network) Describe(ctx context.Context) ([]core.ResourceStatus, error) {
	v := n.VCN
	resources := []struct {
		kind  string
		id    string
		state func(context.Context) (string, error)
	}{
		{"vcn", v.ID, v.State},
		{"subnet", v.SubnetID, v.SubnetState},
		{"internet-gateway", v.GatewayID, v.GatewayState},
		{"route-table", v.RouteTableID, v.RouteTableState},
		{"security-list", v.SecurityListID, v.SecurityListState},
	}

	var out []core.ResourceStatus
	for _, r := range resources {
		if r.id == "" {
			continue
		}
		state, err := r.state(ctx)
		if err != nil {
			return out, err
		}
		out = append(out, core.ResourceStatus{Kind: r.kind, ID: r.id, State: state})
	}
	return out, nil
}
