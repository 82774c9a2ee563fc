package oci

import (
	"context"
	"encoding/json"
	"fmt"
)

type routeRule struct {
	CIDRBlock       string `json:"cidrBlock"`
	NetworkEntityID string `json:"networkEntityId"`
}

type routeTableData struct {
	LifecycleState string `json:"lifecycle-state"`
}

// SetDefaultRoute replaces the route table's rules with a single default
// route through the internet gateway. Route-table updates are full-replace;
// there is no partial patch.
func (v *VCN) SetDefaultRoute(ctx context.Context) error {
	rules, err := json.Marshal([]routeRule{{
		CIDRBlock:       DefaultSource,
		NetworkEntityID: v.GatewayID,
	}})
	if err != nil {
		return err
	}
	return v.updateRouteRules(ctx, string(rules))
}

// ClearRouteRules empties the route table so the gateway can be deleted.
func (v *VCN) ClearRouteRules(ctx context.Context) error {
	return v.updateRouteRules(ctx, "[]")
}

func (v *VCN) updateRouteRules(ctx context.Context, rules string) error {
	_, err := v.client.Run(ctx,
		"network", "route-table", "update",
		"--rt-id", v.RouteTableID,
		"--force",
		"--route-rules", rules,
	)
	return err
}

func (v *VCN) RouteTableState(ctx context.Context) (string, error) {
	resp, err := v.client.RunRetry(ctx, "network", "route-table", "get", "--rt-id", v.RouteTableID)
	if err != nil {
		return "", err
	}
	var data routeTableData
	if err := resp.Object(&data); err != nil {
		return "", fmt.Errorf("route-table get response: %w", err)
	}
	v.Status = data.LifecycleState
	return v.Status, nil
}
