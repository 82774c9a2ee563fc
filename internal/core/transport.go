package core

import (
	"context"
	"io"
)

// Transport is the interface for executing the cloud CLI across different
// channels (local machine, SSH bastion, test double).
type Transport interface {
	io.Closer

	// Execute runs a command and returns its stdout. Stderr is folded into
	// the returned error on failure.
	Execute(ctx context.Context, name string, args ...string) (string, error)
}
