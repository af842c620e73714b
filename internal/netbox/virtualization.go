package netbox

import (
	"context"
	"fmt"
	"net/url"
)

// VirtualizationClient covers cluster types, clusters, VMs and their
// interfaces.
type VirtualizationClient struct {
	c *Client
}

func (v *VirtualizationClient) ClusterTypes(ctx context.Context, filter url.Values) ([]ClusterType, error) {
	return list[ClusterType](ctx, v.c, "/api/virtualization/cluster-types/", filter)
}

func (v *VirtualizationClient) CreateClusterType(ctx context.Context, params ClusterTypeParams) (*ClusterType, error) {
	return create[ClusterType](ctx, v.c, "/api/virtualization/cluster-types/", params)
}

func (v *VirtualizationClient) Clusters(ctx context.Context, filter url.Values) ([]Cluster, error) {
	return list[Cluster](ctx, v.c, "/api/virtualization/clusters/", filter)
}

func (v *VirtualizationClient) CreateCluster(ctx context.Context, params ClusterParams) (*Cluster, error) {
	return create[Cluster](ctx, v.c, "/api/virtualization/clusters/", params)
}

func (v *VirtualizationClient) VirtualMachines(ctx context.Context, filter url.Values) ([]VirtualMachine, error) {
	return list[VirtualMachine](ctx, v.c, "/api/virtualization/virtual-machines/", filter)
}

func (v *VirtualizationClient) CreateVirtualMachine(ctx context.Context, params VirtualMachineParams) (*VirtualMachine, error) {
	return create[VirtualMachine](ctx, v.c, "/api/virtualization/virtual-machines/", params)
}

func (v *VirtualizationClient) PatchVirtualMachineCustomFields(ctx context.Context, id int64, fields map[string]any) (*VirtualMachine, error) {
	path := fmt.Sprintf("/api/virtualization/virtual-machines/%d/", id)
	var current VirtualMachine
	if err := v.c.do(ctx, "GET", path, nil, nil, &current); err != nil {
		return nil, err
	}
	return patch[VirtualMachine](ctx, v.c, path, map[string]any{
		"custom_fields": mergeCustomFields(current.CustomFields, fields),
	})
}

func (v *VirtualizationClient) VMInterfaces(ctx context.Context, filter url.Values) ([]VMInterface, error) {
	return list[VMInterface](ctx, v.c, "/api/virtualization/interfaces/", filter)
}

func (v *VirtualizationClient) CreateVMInterface(ctx context.Context, params VMInterfaceParams) (*VMInterface, error) {
	return create[VMInterface](ctx, v.c, "/api/virtualization/interfaces/", params)
}
