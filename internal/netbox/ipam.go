package netbox

import (
	"context"
	"fmt"
	"net/url"
)

// IPAMClient covers prefixes, addresses, VLANs, services and ranges.
type IPAMClient struct {
	c *Client
}

func (i *IPAMClient) Prefixes(ctx context.Context, filter url.Values) ([]Prefix, error) {
	return list[Prefix](ctx, i.c, "/api/ipam/prefixes/", filter)
}

func (i *IPAMClient) CreatePrefix(ctx context.Context, params PrefixParams) (*Prefix, error) {
	return create[Prefix](ctx, i.c, "/api/ipam/prefixes/", params)
}

func (i *IPAMClient) IPAddresses(ctx context.Context, filter url.Values) ([]IPAddress, error) {
	return list[IPAddress](ctx, i.c, "/api/ipam/ip-addresses/", filter)
}

func (i *IPAMClient) CreateIPAddress(ctx context.Context, params IPAddressParams) (*IPAddress, error) {
	return create[IPAddress](ctx, i.c, "/api/ipam/ip-addresses/", params)
}

// PatchIPAddress applies a partial update; use for description, role and
// custom-field annotations on existing addresses.
func (i *IPAMClient) PatchIPAddress(ctx context.Context, id int64, fields map[string]any) (*IPAddress, error) {
	return patch[IPAddress](ctx, i.c, fmt.Sprintf("/api/ipam/ip-addresses/%d/", id), fields)
}

// PatchIPAddressCustomFields merges custom fields into an existing address.
func (i *IPAMClient) PatchIPAddressCustomFields(ctx context.Context, id int64, fields map[string]any) (*IPAddress, error) {
	path := fmt.Sprintf("/api/ipam/ip-addresses/%d/", id)
	var current IPAddress
	if err := i.c.do(ctx, "GET", path, nil, nil, &current); err != nil {
		return nil, err
	}
	return patch[IPAddress](ctx, i.c, path, map[string]any{
		"custom_fields": mergeCustomFields(current.CustomFields, fields),
	})
}

func (i *IPAMClient) VLANGroups(ctx context.Context, filter url.Values) ([]VLANGroup, error) {
	return list[VLANGroup](ctx, i.c, "/api/ipam/vlan-groups/", filter)
}

func (i *IPAMClient) CreateVLANGroup(ctx context.Context, params VLANGroupParams) (*VLANGroup, error) {
	return create[VLANGroup](ctx, i.c, "/api/ipam/vlan-groups/", params)
}

func (i *IPAMClient) VLANs(ctx context.Context, filter url.Values) ([]VLAN, error) {
	return list[VLAN](ctx, i.c, "/api/ipam/vlans/", filter)
}

func (i *IPAMClient) CreateVLAN(ctx context.Context, params VLANParams) (*VLAN, error) {
	return create[VLAN](ctx, i.c, "/api/ipam/vlans/", params)
}

func (i *IPAMClient) Services(ctx context.Context, filter url.Values) ([]Service, error) {
	return list[Service](ctx, i.c, "/api/ipam/services/", filter)
}

func (i *IPAMClient) CreateService(ctx context.Context, params ServiceParams) (*Service, error) {
	return create[Service](ctx, i.c, "/api/ipam/services/", params)
}

func (i *IPAMClient) IPRanges(ctx context.Context, filter url.Values) ([]IPRange, error) {
	return list[IPRange](ctx, i.c, "/api/ipam/ip-ranges/", filter)
}

func (i *IPAMClient) CreateIPRange(ctx context.Context, params IPRangeParams) (*IPRange, error) {
	return create[IPRange](ctx, i.c, "/api/ipam/ip-ranges/", params)
}
