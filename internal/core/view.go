package core

import "context"

// Firewaller is implemented by provisioners that can open ingress traffic on
// their managed stack.
type Firewaller interface {
	AllowPort(ctx context.Context, startPort, endPort int, sourceRange string) error
	AllowICMP(ctx context.Context, icmpType, icmpCode *int, sourceRange string) error
}

// RuleSummary is a provider-neutral view of one ingress rule.
type RuleSummary struct {
	Protocol  string
	Source    string
	PortMin   int // 0: unrestricted
	PortMax   int
	ICMPType  *int
	ICMPCode  *int
	Stateless bool
}

// RuleLister is implemented by provisioners that can enumerate the ingress
// rules currently attached to their stack.
type RuleLister interface {
	ListRules(ctx context.Context) ([]RuleSummary, error)
}

// ResourceStatus is one owned resource's identifier and lifecycle state.
type ResourceStatus struct {
	Kind  string
	ID    string
	State string
}

// Describer is implemented by provisioners that can report the lifecycle
// state of each resource they own.
type Describer interface {
	Describe(ctx context.Context) ([]ResourceStatus, error)
}
