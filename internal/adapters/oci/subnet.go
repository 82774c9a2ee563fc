package oci

import (
	"context"
	"fmt"
)

type subnetData struct {
	ID             string `json:"id"`
	LifecycleState string `json:"lifecycle-state"`
}

// CreateSubnet partitions the network with a single subnet spanning the same
// CIDR block. Requires a created VCN.
func (v *VCN) CreateSubnet(ctx context.Context) error {
	resp, err := v.client.Run(ctx,
		"network", "subnet", "create",
		"--display-name", v.Name,
		"--dns-label", dnsLabel("sub", v.Name),
		"--cidr-block", v.CIDR,
		"--vcn-id", v.ID,
	)
	if err != nil {
		return err
	}
	var data subnetData
	if err := resp.Object(&data); err != nil {
		return fmt.Errorf("subnet create response: %w", err)
	}
	v.SubnetID = data.ID
	return nil
}

func (v *VCN) DeleteSubnet(ctx context.Context) error {
	_, err := v.client.Run(ctx,
		"network", "subnet", "delete",
		"--subnet-id", v.SubnetID,
		"--force",
	)
	return err
}

func (v *VCN) SubnetState(ctx context.Context) (string, error) {
	resp, err := v.client.RunRetry(ctx, "network", "subnet", "get", "--subnet-id", v.SubnetID)
	if err != nil {
		return "", err
	}
	var data subnetData
	if err := resp.Object(&data); err != nil {
		return "", fmt.Errorf("subnet get response: %w", err)
	}
	v.Status = data.LifecycleState
	return v.Status, nil
}

// ResolveSubnetID finds the first subnet belonging to the network. Used on
// the attach path, where the subnet already exists.
func (v *VCN) ResolveSubnetID(ctx context.Context) error {
	resp, err := v.client.Run(ctx, "network", "subnet", "list", "--vcn-id", v.ID)
	if err != nil {
		return err
	}
	var data subnetData
	if err := resp.First(&data); err != nil {
		return fmt.Errorf("vcn %s has no subnets: %w", v.ID, err)
	}
	v.SubnetID = data.ID
	return nil
}
