package core

import (
	"fmt"
	"strings"
)

// CommandError is a transport failure: the control-plane CLI could not be
// executed or exited non-zero. The output field carries whatever the command
// printed before failing.
type CommandError struct {
	Cmd    string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed: %v", e.Cmd, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// StateMismatchError means a polled resource never reached any of the wanted
// lifecycle states before the wait ceiling expired. Fatal to the enclosing
// create sequence.
type StateMismatchError struct {
	Resource string
	ID       string
	State    string
	Want     []string
}

func (e *StateMismatchError) Error() string {
	return fmt.Sprintf("%s %s: state %q never entered %v before the wait ceiling",
		e.Resource, e.ID, e.State, e.Want)
}

// PreconditionError means an operation was requested against a stack that is
// missing or not managed by stratus. Previous generations of this tool logged
// and silently dropped the request; callers now get an explicit error and may
// downgrade it to a warning themselves.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}
