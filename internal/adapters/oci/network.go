// Package oci provisions a network stack (vcn, subnet, internet gateway,
// default route, ingress rules) by driving the OCI command-line client.
package oci

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stratus-cloud/stratus/internal/cloud"
	"github.com/stratus-cloud/stratus/internal/config"
	"github.com/stratus-cloud/stratus/internal/core"
)

func init() {
	core.RegisterProvisioner("oci", func(stack config.Stack, tr core.Transport) (core.NetworkProvisioner, error) {
		return NewNetwork(stack, tr), nil
	})
}

// Network orchestrates one stack's lifecycle. It owns the stack exclusively:
// no other orchestrator may mutate the same resources.
type Network struct {
	cfg    config.Stack
	poller Poller
	log    *slog.Logger

	VCN *VCN
}

func NewNetwork(stack config.Stack, tr core.Transport) *Network {
	binary := stack.CLI
	if binary == "" {
		binary = "oci"
	}
	client := cloud.NewClient(binary, stack.Profile, stack.Region, tr)
	return &Network{
		cfg: stack,
		log: slog.With("stack", stack.Name, "provider", "oci"),
		VCN: NewVCN(client, stack.Name, stack.CIDR),
	}
}

// AttachmentID returns the subnet compute resources attach to.
func (n *Network) AttachmentID() string {
	if n.VCN == nil {
		return ""
	}
	return n.VCN.SubnetID
}

// Create brings the stack from nonexistent to traffic-ready (SSH and ICMP
// reachable). Each step blocks on the previous resource's readiness before
// the next starts. A failing step aborts the sequence and leaves the stack
// partially constructed; there is no automatic rollback.
func (n *Network) Create(ctx context.Context) error {
	if !n.cfg.IsManaged() {
		return n.attach(ctx)
	}

	v := n.VCN

	n.log.Info("creating vcn", "cidr", v.CIDR)
	if err := v.Create(ctx); err != nil {
		return fmt.Errorf("create vcn: %w", err)
	}
	if _, err := n.poller.Wait(ctx, "vcn", v.ID, v.State, VCNCreateStates); err != nil {
		return err
	}

	if err := v.DiscoverDefaults(ctx); err != nil {
		return fmt.Errorf("discover defaults: %w", err)
	}

	n.log.Info("creating subnet", "vcn", v.ID)
	if err := v.CreateSubnet(ctx); err != nil {
		return fmt.Errorf("create subnet: %w", err)
	}
	if _, err := n.poller.Wait(ctx, "subnet", v.SubnetID, v.SubnetState, SubnetCreateStates); err != nil {
		return err
	}

	n.log.Info("creating internet gateway")
	if err := v.CreateGateway(ctx); err != nil {
		return fmt.Errorf("create internet gateway: %w", err)
	}
	if _, err := n.poller.Wait(ctx, "internet gateway", v.GatewayID, v.GatewayState, GatewayCreateStates); err != nil {
		return err
	}

	n.log.Info("routing default traffic through gateway", "route-table", v.RouteTableID)
	if err := v.SetDefaultRoute(ctx); err != nil {
		return fmt.Errorf("update route table: %w", err)
	}
	if _, err := n.poller.Wait(ctx, "route table", v.RouteTableID, v.RouteTableState, RouteTableUpdateStates); err != nil {
		return err
	}

	for _, spec := range n.ingressRules() {
		if err := n.addRule(ctx, spec); err != nil {
			return err
		}
	}

	n.log.Info("stack ready", "subnet", v.SubnetID)
	return nil
}

// ingressRules returns the default openings (SSH, ICMP) followed by the
// configured extras whose `when:` conditions hold.
func (n *Network) ingressRules() []RuleSpec {
	specs := []RuleSpec{
		{Protocol: ProtocolTCP, StartPort: 22},
		{Protocol: ProtocolICMP},
	}

	env := core.RuleEnv{
		Stack:   n.cfg.Name,
		Region:  n.cfg.Region,
		Profile: n.cfg.Profile,
		Managed: n.cfg.IsManaged(),
	}
	for _, r := range n.cfg.Rules {
		ok, err := core.EvaluateCondition(r.When, env)
		if err != nil {
			n.log.Warn("skipping rule with bad condition", "when", r.When, "error", err)
			continue
		}
		if !ok {
			continue
		}
		proto, err := ProtocolNumber(r.Protocol)
		if err != nil {
			n.log.Warn("skipping rule", "error", err)
			continue
		}
		specs = append(specs, RuleSpec{
			Protocol:  proto,
			StartPort: r.Port,
			EndPort:   r.EndPort,
			Source:    r.Source,
			ICMPType:  r.ICMPType,
			ICMPCode:  r.ICMPCode,
		})
	}
	return specs
}

func (n *Network) addRule(ctx context.Context, spec RuleSpec) error {
	v := n.VCN
	n.log.Info("adding ingress rule", "protocol", spec.Protocol, "port", spec.StartPort)
	if err := v.AddIngressRule(ctx, spec); err != nil {
		return fmt.Errorf("add ingress rule: %w", err)
	}
	_, err := n.poller.Wait(ctx, "security list", v.SecurityListID, v.SecurityListState, SecurityListUpdateStates)
	return err
}

// attach binds to a pre-existing network by display name instead of creating
// one. Only the network and subnet identifiers are resolved; gateway, route
// table and security rules are left untouched.
func (n *Network) attach(ctx context.Context) error {
	n.log.Info("attaching to existing network", "name", n.cfg.Name)
	if err := n.VCN.ResolveID(ctx); err != nil {
		return err
	}
	return n.VCN.ResolveSubnetID(ctx)
}

// Delete tears the stack down in reverse dependency order: clear route
// rules, delete gateway, subnet, network. Deletes are forced and nothing
// waits for a terminal state afterwards. Teardown is best-effort: a failing
// step is logged and the remaining steps still run, so re-invoking after a
// partial teardown is safe but the errors are surfaced joined.
func (n *Network) Delete(ctx context.Context) error {
	if !n.cfg.IsManaged() {
		n.log.Info("network not managed by stratus, nothing to delete")
		return nil
	}

	v := n.VCN
	steps := []struct {
		name  string
		fn    func(context.Context) error
		clear func()
	}{
		{"clear route rules", v.ClearRouteRules, func() {}},
		{"delete internet gateway", v.DeleteGateway, func() { v.GatewayID = "" }},
		{"delete subnet", v.DeleteSubnet, func() { v.SubnetID = "" }},
		{"delete vcn", v.Delete, func() {
			v.ID, v.RouteTableID, v.SecurityListID = "", "", ""
		}},
	}

	var errs []error
	for _, step := range steps {
		n.log.Info(step.name)
		if err := step.fn(ctx); err != nil {
			n.log.Warn(step.name+" failed", "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			continue
		}
		step.clear()
	}
	return errors.Join(errs...)
}

// Resolve rediscovers the identifiers of an already-provisioned stack from
// its display name, so commands in a fresh process can operate on it. The
// orchestrator itself persists nothing between runs.
func (n *Network) Resolve(ctx context.Context) error {
	v := n.VCN
	if err := v.ResolveID(ctx); err != nil {
		return err
	}
	if err := v.ResolveSubnetID(ctx); err != nil {
		return err
	}
	if !n.cfg.IsManaged() {
		return nil
	}
	if err := v.DiscoverDefaults(ctx); err != nil {
		return err
	}
	// The gateway is only needed for teardown; a stack without one is not
	// an error here.
	if err := v.ResolveGatewayID(ctx); err != nil {
		n.log.Warn("no internet gateway found", "error", err)
	}
	return nil
}
