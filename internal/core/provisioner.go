package core

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/stratus-cloud/stratus/internal/config"
)

// NetworkProvisioner is the interface a cloud provider implements to bring a
// network stack up and down. Create blocks until the stack is traffic-ready;
// Delete is best-effort and may leave orphans behind on partial failure.
type NetworkProvisioner interface {
	Create(ctx context.Context) error
	Delete(ctx context.Context) error

	// AttachmentID returns the identifier compute resources attach to
	// (the subnet id). Empty until Create or Resolve succeeds.
	AttachmentID() string
}

// Resolver is implemented by provisioners that can rediscover an existing
// stack's identifiers from its display name. Needed by commands that operate
// on a stack created by an earlier process.
type Resolver interface {
	Resolve(ctx context.Context) error
}

// Constructor builds a provisioner for one stack definition.
type Constructor func(stack config.Stack, tr Transport) (NetworkProvisioner, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
)

// RegisterProvisioner maps a provider id to its constructor. Called from the
// provider package's init; registering the same id twice panics.
func RegisterProvisioner(provider string, fn Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[provider]; dup {
		panic("core: duplicate provisioner registration: " + provider)
	}
	registry[provider] = fn
}

// NewProvisioner resolves the provider id for a stack and constructs it.
func NewProvisioner(stack config.Stack, tr Transport) (NetworkProvisioner, error) {
	registryMu.RLock()
	fn, ok := registry[stack.Provider]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %v)", stack.Provider, Providers())
	}
	return fn(stack, tr)
}

// Providers returns the registered provider ids, sorted.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
