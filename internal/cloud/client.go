// Package cloud wraps the control-plane CLI behind a small JSON client.
// Every interaction with the cloud goes through Client: it appends the
// profile/region/output flags, executes the command over a Transport and
// decodes the response envelope.
package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stratus-cloud/stratus/internal/core"
)

// Response is the envelope every get/list/create call returns. Data holds
// either a single object or an array of objects; delete and some update
// calls return nothing at all.
type Response struct {
	Data json.RawMessage `json:"data"`
}

// Object decodes Data as a single object.
func (r *Response) Object(v any) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("response has no data")
	}
	return json.Unmarshal(r.Data, v)
}

// First decodes Data as an array and returns the first element, mirroring
// the control plane's list operations where the first match wins.
func (r *Response) First(v any) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("response has no data")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(r.Data, &items); err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("empty result list")
	}
	return json.Unmarshal(items[0], v)
}

// Client executes named operations against the cloud CLI.
type Client struct {
	Binary    string
	Profile   string
	Region    string
	Transport core.Transport

	// Transient-failure retry policy for RunRetry. Zero values fall back
	// to 3 attempts, 10 seconds apart.
	RetryAttempts int
	RetryInterval time.Duration
}

func NewClient(binary, profile, region string, tr core.Transport) *Client {
	return &Client{Binary: binary, Profile: profile, Region: region, Transport: tr}
}

// Run executes one CLI invocation and decodes its JSON output. A failed
// execution surfaces as *core.CommandError; callers decide whether to retry.
func (c *Client) Run(ctx context.Context, args ...string) (*Response, error) {
	full := append(args, "--output", "json")
	if c.Profile != "" {
		full = append(full, "--profile", c.Profile)
	}
	if c.Region != "" {
		full = append(full, "--region", c.Region)
	}

	out, err := c.Transport.Execute(ctx, c.Binary, full...)
	if err != nil {
		return nil, &core.CommandError{
			Cmd:    c.Binary + " " + strings.Join(args, " "),
			Output: out,
			Err:    err,
		}
	}

	resp := &Response{}
	if strings.TrimSpace(out) == "" {
		return resp, nil
	}
	if err := json.Unmarshal([]byte(out), resp); err != nil {
		return nil, fmt.Errorf("malformed response for %q: %w", strings.Join(args, " "), err)
	}
	return resp, nil
}

// RunRetry is Run with a fixed-interval retry loop around transport
// failures. Used for the status queries issued while polling, where a
// transient network error must not abort a ten-minute wait.
func (c *Client) RunRetry(ctx context.Context, args ...string) (*Response, error) {
	attempts := c.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	interval := c.RetryInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	var resp *Response
	var err error
	for i := 0; i < attempts; i++ {
		resp, err = c.Run(ctx, args...)
		if err == nil {
			return resp, nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil, err
}
