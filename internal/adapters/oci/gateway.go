package oci

import (
	"context"
	"fmt"
)

type gatewayData struct {
	ID             string `json:"id"`
	LifecycleState string `json:"lifecycle-state"`
}

// CreateGateway attaches an internet gateway to the network, enabled from
// the start.
func (v *VCN) CreateGateway(ctx context.Context) error {
	resp, err := v.client.Run(ctx,
		"network", "internet-gateway", "create",
		"--display-name", v.Name,
		"--vcn-id", v.ID,
		"--is-enabled", "true",
	)
	if err != nil {
		return err
	}
	var data gatewayData
	if err := resp.Object(&data); err != nil {
		return fmt.Errorf("internet-gateway create response: %w", err)
	}
	v.GatewayID = data.ID
	return nil
}

func (v *VCN) DeleteGateway(ctx context.Context) error {
	_, err := v.client.Run(ctx,
		"network", "internet-gateway", "delete",
		"--ig-id", v.GatewayID,
		"--force",
	)
	return err
}

func (v *VCN) GatewayState(ctx context.Context) (string, error) {
	resp, err := v.client.RunRetry(ctx, "network", "internet-gateway", "get", "--ig-id", v.GatewayID)
	if err != nil {
		return "", err
	}
	var data gatewayData
	if err := resp.Object(&data); err != nil {
		return "", fmt.Errorf("internet-gateway get response: %w", err)
	}
	v.Status = data.LifecycleState
	return v.Status, nil
}

// ResolveGatewayID finds the first internet gateway attached to the network.
func (v *VCN) ResolveGatewayID(ctx context.Context) error {
	resp, err := v.client.Run(ctx, "network", "internet-gateway", "list", "--vcn-id", v.ID)
	if err != nil {
		return err
	}
	var data gatewayData
	if err := resp.First(&data); err != nil {
		return fmt.Errorf("vcn %s has no internet gateway: %w", v.ID, err)
	}
	v.GatewayID = data.ID
	return nil
}
