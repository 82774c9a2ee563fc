package oci

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stratus-cloud/stratus/internal/config"
	"github.com/stratus-cloud/stratus/internal/core"
)

func boolp(v bool) *bool { return &v }

func newTestNetwork(t *testing.T, stack config.Stack, mock *core.MockTransport) *Network {
	t.Helper()
	n := NewNetwork(stack, mock)
	n.poller = fastPoller()
	return n
}

func scriptManagedCreate(mock *core.MockTransport) {
	mock.OnExecute("oci network vcn create",
		`{"data":{"id":"ocid1.vcn.test","cidr-block":"172.16.0.0/16","lifecycle-state":"PROVISIONING"}}`, nil)
	mock.OnExecute("oci network vcn get",
		`{"data":{"id":"ocid1.vcn.test","lifecycle-state":"AVAILABLE",
		  "default-route-table-id":"ocid1.rt.test","default-security-list-id":"ocid1.seclist.test"}}`, nil)
	mock.OnExecute("oci network subnet create",
		`{"data":{"id":"ocid1.subnet.test","lifecycle-state":"PROVISIONING"}}`, nil)
	mock.OnExecute("oci network subnet get",
		`{"data":{"lifecycle-state":"AVAILABLE"}}`, nil)
	mock.OnExecute("oci network internet-gateway create",
		`{"data":{"id":"ocid1.ig.test","lifecycle-state":"PROVISIONING"}}`, nil)
	mock.OnExecute("oci network internet-gateway get",
		`{"data":{"lifecycle-state":"AVAILABLE"}}`, nil)
	mock.OnExecute("oci network route-table update", "", nil)
	mock.OnExecute("oci network route-table get",
		`{"data":{"lifecycle-state":"AVAILABLE"}}`, nil)

	empty := `{"data":{"lifecycle-state":"AVAILABLE","ingress-security-rules":[]}}`
	afterSSH := `{"data":{"lifecycle-state":"AVAILABLE","ingress-security-rules":[
		{"source":"0.0.0.0/0","icmp-options":null,"protocol":"6","is-stateless":false,
		 "tcp-options":{"destinationPortRange":{"min":22,"max":22}},"udp-options":null}]}}`
	// Fetch before first add, wait, fetch before second add, wait (sticky).
	mock.OnExecute("oci network security-list get", empty, nil)
	mock.OnExecute("oci network security-list get", empty, nil)
	mock.OnExecute("oci network security-list get", afterSSH, nil)
	mock.OnExecute("oci network security-list get", afterSSH, nil)
	mock.OnExecute("oci network security-list update", "", nil)
}

func TestCreate_ManagedStack(t *testing.T) {
	mock := core.NewMockTransport()
	n := newTestNetwork(t, config.Stack{
		Name:     "net-test",
		Provider: "oci",
		CIDR:     "172.16.0.0/16",
	}, mock)
	scriptManagedCreate(mock)

	if err := n.Create(context.Background()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	v := n.VCN
	ids := map[string]string{
		"vcn":           v.ID,
		"subnet":        v.SubnetID,
		"gateway":       v.GatewayID,
		"route table":   v.RouteTableID,
		"security list": v.SecurityListID,
	}
	for kind, id := range ids {
		if id == "" {
			t.Fatalf("%s identifier not populated", kind)
		}
	}
	if n.AttachmentID() != "ocid1.subnet.test" {
		t.Fatalf("Wrong attachment id: %s", n.AttachmentID())
	}

	// Both default openings must have been written: SSH and ICMP.
	if got := mock.CallCount("oci network security-list update"); got != 2 {
		t.Fatalf("Expected 2 rule writes, got %d", got)
	}
	var lastUpdate string
	for _, c := range mock.Calls() {
		if strings.HasPrefix(c, "oci network security-list update") {
			lastUpdate = c
		}
	}
	if !strings.Contains(lastUpdate, `"min":22`) {
		t.Fatal("SSH rule missing from final rule set")
	}
	if !strings.Contains(lastUpdate, `"protocol":"1"`) {
		t.Fatal("ICMP rule missing from final rule set")
	}
}

func TestCreate_OrderingDependencies(t *testing.T) {
	mock := core.NewMockTransport()
	n := newTestNetwork(t, config.Stack{Name: "net-test", CIDR: "172.16.0.0/16"}, mock)
	scriptManagedCreate(mock)

	if err := n.Create(context.Background()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	order := []string{
		"oci network vcn create",
		"oci network subnet create",
		"oci network internet-gateway create",
		"oci network route-table update",
		"oci network security-list update",
	}
	calls := mock.Calls()
	last := -1
	for _, prefix := range order {
		found := -1
		for i, c := range calls {
			if strings.HasPrefix(c, prefix) {
				found = i
				break
			}
		}
		if found == -1 {
			t.Fatalf("Step %q never executed", prefix)
		}
		if found < last {
			t.Fatalf("Step %q executed out of order", prefix)
		}
		last = found
	}
}

func TestCreate_AttachToExistingNetwork(t *testing.T) {
	mock := core.NewMockTransport()
	n := newTestNetwork(t, config.Stack{
		Name:    "net-A",
		Managed: boolp(false),
	}, mock)

	mock.OnExecute("oci network vcn list", `{"data":[{"id":"ocid1.vcn.a"}]}`, nil)
	mock.OnExecute("oci network subnet list", `{"data":[{"id":"ocid1.subnet.1"},{"id":"ocid1.subnet.2"}]}`, nil)

	if err := n.Create(context.Background()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	v := n.VCN
	if v.ID != "ocid1.vcn.a" || v.SubnetID != "ocid1.subnet.1" {
		t.Fatalf("Wrong identifiers: vcn=%s subnet=%s", v.ID, v.SubnetID)
	}
	if v.GatewayID != "" || v.RouteTableID != "" || v.SecurityListID != "" {
		t.Fatal("Attach path must not touch gateway, route table or security list")
	}
	if mock.AssertCalled("oci network vcn create") {
		t.Fatal("Attach path must not create resources")
	}
}

func TestCreate_AbortsOnStateMismatch(t *testing.T) {
	mock := core.NewMockTransport()
	n := newTestNetwork(t, config.Stack{Name: "net-test", CIDR: "172.16.0.0/16"}, mock)

	mock.OnExecute("oci network vcn create",
		`{"data":{"id":"ocid1.vcn.test","lifecycle-state":"PROVISIONING"}}`, nil)
	mock.OnExecute("oci network vcn get",
		`{"data":{"lifecycle-state":"FAULTED"}}`, nil)

	err := n.Create(context.Background())
	if err == nil {
		t.Fatal("Expected create to fail")
	}
	if mock.AssertCalled("oci network subnet create") {
		t.Fatal("Sequence must abort before the subnet step")
	}
	// Partial state stays: no automatic rollback.
	if n.VCN.ID == "" {
		t.Fatal("Partial identifiers must survive a failed create")
	}
}

func TestDelete_ReverseOrderAndClearedIdentifiers(t *testing.T) {
	mock := core.NewMockTransport()
	n := newTestNetwork(t, config.Stack{Name: "net-test", CIDR: "172.16.0.0/16"}, mock)
	v := n.VCN
	v.ID = "ocid1.vcn.test"
	v.SubnetID = "ocid1.subnet.test"
	v.GatewayID = "ocid1.ig.test"
	v.RouteTableID = "ocid1.rt.test"
	v.SecurityListID = "ocid1.seclist.test"

	mock.OnExecute("oci network route-table update", "", nil)
	mock.OnExecute("oci network internet-gateway delete", "", nil)
	mock.OnExecute("oci network subnet delete", "", nil)
	mock.OnExecute("oci network vcn delete", "", nil)

	if err := n.Delete(context.Background()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	calls := mock.Calls()
	want := []string{
		"oci network route-table update",
		"oci network internet-gateway delete",
		"oci network subnet delete",
		"oci network vcn delete",
	}
	if len(calls) != len(want) {
		t.Fatalf("Expected %d teardown calls, got %d: %v", len(want), len(calls), calls)
	}
	for i, prefix := range want {
		if !strings.HasPrefix(calls[i], prefix) {
			t.Fatalf("Teardown step %d: expected %q, got %q", i, prefix, calls[i])
		}
	}
	if !strings.Contains(calls[0], "--route-rules []") {
		t.Fatalf("Route rules must be cleared to empty: %s", calls[0])
	}
	if !strings.Contains(calls[3], "--force") {
		t.Fatal("Deletes must be forced")
	}

	if v.ID != "" || v.SubnetID != "" || v.GatewayID != "" || v.RouteTableID != "" || v.SecurityListID != "" {
		t.Fatal("All identifiers must be cleared after a clean teardown")
	}
}

func TestDelete_BestEffortContinuesPastFailures(t *testing.T) {
	mock := core.NewMockTransport()
	n := newTestNetwork(t, config.Stack{Name: "net-test", CIDR: "172.16.0.0/16"}, mock)
	v := n.VCN
	v.ID = "ocid1.vcn.test"
	v.SubnetID = "ocid1.subnet.test"
	v.GatewayID = "ocid1.ig.test"
	v.RouteTableID = "ocid1.rt.test"

	mock.OnExecute("oci network route-table update", "", nil)
	mock.OnExecute("oci network internet-gateway delete", "", errors.New("conflict: gateway in use"))
	mock.OnExecute("oci network subnet delete", "", nil)
	mock.OnExecute("oci network vcn delete", "", nil)

	err := n.Delete(context.Background())
	if err == nil {
		t.Fatal("Expected joined teardown error")
	}
	if !mock.AssertCalled("oci network vcn delete") {
		t.Fatal("Teardown must continue past a failed step")
	}
	if v.GatewayID == "" {
		t.Fatal("Identifier of a failed delete must stay populated")
	}
	if v.SubnetID != "" {
		t.Fatal("Identifiers of successful deletes must be cleared")
	}
}

func TestDelete_UnmanagedIsNoop(t *testing.T) {
	mock := core.NewMockTransport()
	n := newTestNetwork(t, config.Stack{Name: "net-A", Managed: boolp(false)}, mock)

	if err := n.Delete(context.Background()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(mock.Calls()) != 0 {
		t.Fatal("Unmanaged stacks must never be torn down")
	}
}
