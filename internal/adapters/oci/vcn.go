package oci

import (
	"context"
	"fmt"

	"github.com/stratus-cloud/stratus/internal/cloud"
)

// VCN holds the identifiers of one virtual cloud network and the resources
// stratus hangs off it. A child identifier is only ever populated after its
// ancestors (vcn -> subnet/gateway -> route table/security list defaults),
// in dependency order, and cleared in reverse during teardown.
type VCN struct {
	client *cloud.Client

	Name string
	CIDR string

	// Status caches the lifecycle state from the most recent observation,
	// including failed waits.
	Status string

	ID             string
	SubnetID       string
	GatewayID      string
	RouteTableID   string
	SecurityListID string
}

func NewVCN(client *cloud.Client, name, cidr string) *VCN {
	return &VCN{client: client, Name: displayName(name), CIDR: cidr}
}

type vcnData struct {
	ID                    string `json:"id"`
	CIDRBlock             string `json:"cidr-block"`
	LifecycleState        string `json:"lifecycle-state"`
	DefaultRouteTableID   string `json:"default-route-table-id"`
	DefaultSecurityListID string `json:"default-security-list-id"`
}

// Create provisions the network container with the configured CIDR block.
func (v *VCN) Create(ctx context.Context) error {
	resp, err := v.client.Run(ctx,
		"network", "vcn", "create",
		"--display-name", v.Name,
		"--dns-label", dnsLabel("vcn", v.Name),
		"--freeform-tags", defaultTags(v.Name),
		"--from-json", fmt.Sprintf(`{"cidr-blocks":["%s"]}`, v.CIDR),
	)
	if err != nil {
		return err
	}
	var data vcnData
	if err := resp.Object(&data); err != nil {
		return fmt.Errorf("vcn create response: %w", err)
	}
	v.ID = data.ID
	if data.CIDRBlock != "" {
		v.CIDR = data.CIDRBlock
	}
	return nil
}

// Delete issues a forced delete and does not wait for a terminal state.
func (v *VCN) Delete(ctx context.Context) error {
	_, err := v.client.Run(ctx,
		"network", "vcn", "delete",
		"--vcn-id", v.ID,
		"--force",
	)
	return err
}

// State fetches the current lifecycle state, retrying transient transport
// failures, and updates the cached status.
func (v *VCN) State(ctx context.Context) (string, error) {
	resp, err := v.client.RunRetry(ctx, "network", "vcn", "get", "--vcn-id", v.ID)
	if err != nil {
		return "", err
	}
	var data vcnData
	if err := resp.Object(&data); err != nil {
		return "", fmt.Errorf("vcn get response: %w", err)
	}
	v.Status = data.LifecycleState
	return v.Status, nil
}

// DiscoverDefaults reads back the route table and security list the control
// plane created implicitly alongside the network. These are discovered, not
// created.
func (v *VCN) DiscoverDefaults(ctx context.Context) error {
	resp, err := v.client.Run(ctx, "network", "vcn", "get", "--vcn-id", v.ID)
	if err != nil {
		return err
	}
	var data vcnData
	if err := resp.Object(&data); err != nil {
		return fmt.Errorf("vcn get response: %w", err)
	}
	if data.DefaultRouteTableID == "" || data.DefaultSecurityListID == "" {
		return fmt.Errorf("vcn %s has no default route table or security list", v.ID)
	}
	v.RouteTableID = data.DefaultRouteTableID
	v.SecurityListID = data.DefaultSecurityListID
	return nil
}

// ResolveID looks up the network id by display name. The first match wins.
func (v *VCN) ResolveID(ctx context.Context) error {
	resp, err := v.client.Run(ctx, "network", "vcn", "list", "--display-name", v.Name)
	if err != nil {
		return err
	}
	var data vcnData
	if err := resp.First(&data); err != nil {
		return fmt.Errorf("no vcn named %q: %w", v.Name, err)
	}
	v.ID = data.ID
	return nil
}
