package oci

import (
	"context"
	"time"

	"github.com/stratus-cloud/stratus/internal/core"
)

const (
	// DefaultPollInterval is the fixed delay between status queries.
	// Polling never backs off.
	DefaultPollInterval = 60 * time.Second

	// DefaultWaitCeiling bounds the total wall-clock time spent waiting
	// for one resource to converge.
	DefaultWaitCeiling = 10 * time.Minute
)

// StateSet is the set of lifecycle states a wait accepts. States are opaque
// strings; only membership is ever tested.
type StateSet []string

func (s StateSet) Contains(state string) bool {
	for _, v := range s {
		if v == state {
			return true
		}
	}
	return false
}

// Post-create wait sets. These deliberately include the terminal states:
// the wait is a liveness check on a freshly created resource, tolerating
// eventual-consistency lag in the control plane's listings. Tightening them
// to {AVAILABLE} needs confirmation from operations first.
var (
	VCNCreateStates          = StateSet{"AVAILABLE", "PROVISIONING", "TERMINATED", "TERMINATING", "UPDATING"}
	SubnetCreateStates       = StateSet{"AVAILABLE", "PROVISIONING", "TERMINATED", "TERMINATING", "UPDATING"}
	GatewayCreateStates      = StateSet{"AVAILABLE", "PROVISIONING", "TERMINATED", "TERMINATING"}
	RouteTableUpdateStates   = StateSet{"AVAILABLE", "PROVISIONING", "TERMINATED", "TERMINATING"}
	SecurityListUpdateStates = StateSet{"AVAILABLE", "PROVISIONING", "TERMINATED", "TERMINATING"}
)

// Poller converts asynchronous provisioning into a synchronous call by
// re-querying a resource's lifecycle state at a fixed interval.
type Poller struct {
	Interval time.Duration
	Ceiling  time.Duration
}

// Wait polls fetch until it reports a state in want, or the ceiling expires.
// The returned state is the last one observed. On ceiling expiry the last
// fetch error wins; a clean fetch with a state outside want surfaces as
// *core.StateMismatchError.
func (p Poller) Wait(ctx context.Context, resource, id string, fetch func(context.Context) (string, error), want StateSet) (string, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ceiling := p.Ceiling
	if ceiling <= 0 {
		ceiling = DefaultWaitCeiling
	}
	deadline := time.Now().Add(ceiling)

	var state string
	var err error
	for {
		state, err = fetch(ctx)
		if err == nil && want.Contains(state) {
			return state, nil
		}
		if !time.Now().Before(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return state, ctx.Err()
		case <-time.After(interval):
		}
	}

	if err != nil {
		return state, err
	}
	return state, &core.StateMismatchError{
		Resource: resource,
		ID:       id,
		State:    state,
		Want:     want,
	}
}
