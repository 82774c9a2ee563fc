package oci

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stratus-cloud/stratus/internal/core"
)

// Firewall exposes "allow traffic" operations scoped to the network stack a
// machine is attached to.
type Firewall struct {
	log *slog.Logger
}

func NewFirewall() *Firewall {
	return &Firewall{log: slog.With("provider", "oci")}
}

// guard refuses operations on machines without a stratus-managed security
// list. Returns *core.PreconditionError instead of silently dropping the
// request; callers that want the old lenient behavior downgrade it to a
// warning.
func (f *Firewall) guard(op string, n *Network) error {
	if n == nil || n.VCN == nil || n.VCN.SecurityListID == "" {
		f.log.Error(op + " is only supported on a managed network stack")
		return &core.PreconditionError{
			Op:     op,
			Reason: "no managed network stack attached",
		}
	}
	return nil
}

// AllowPort opens an inbound TCP port range on the stack's security list.
// endPort 0 means startPort only; sourceRange "" means everywhere.
func (f *Firewall) AllowPort(ctx context.Context, n *Network, startPort, endPort int, sourceRange string) error {
	if err := f.guard("allow port", n); err != nil {
		return err
	}

	err := n.VCN.AddIngressRule(ctx, RuleSpec{
		Protocol:  ProtocolTCP,
		StartPort: startPort,
		EndPort:   endPort,
		Source:    sourceRange,
	})
	if err != nil {
		return fmt.Errorf("allow port %d: %w", startPort, err)
	}
	return f.settle(ctx, n)
}

// AllowICMP opens inbound ICMP, restricted to one type/code pair when both
// are given.
func (f *Firewall) AllowICMP(ctx context.Context, n *Network, icmpType, icmpCode *int, sourceRange string) error {
	if err := f.guard("allow icmp", n); err != nil {
		return err
	}

	err := n.VCN.AddIngressRule(ctx, RuleSpec{
		Protocol: ProtocolICMP,
		ICMPType: icmpType,
		ICMPCode: icmpCode,
		Source:   sourceRange,
	})
	if err != nil {
		return fmt.Errorf("allow icmp: %w", err)
	}
	return f.settle(ctx, n)
}

// settle waits for the stack to absorb a rule change. Note: this polls the
// route table, not the security list; security-list updates settle within
// the same window, and changing the polled resource needs confirmation from
// operations first.
func (f *Firewall) settle(ctx context.Context, n *Network) error {
	v := n.VCN
	_, err := n.poller.Wait(ctx, "route table", v.RouteTableID, v.RouteTableState, RouteTableUpdateStates)
	return err
}
