package netbox

import (
	"context"
	"fmt"
	"net/url"
)

// DCIMClient covers sites, racks, devices and their supporting catalogs.
type DCIMClient struct {
	c *Client
}

func (d *DCIMClient) Sites(ctx context.Context, filter url.Values) ([]Site, error) {
	return list[Site](ctx, d.c, "/api/dcim/sites/", filter)
}

func (d *DCIMClient) CreateSite(ctx context.Context, params SiteParams) (*Site, error) {
	return create[Site](ctx, d.c, "/api/dcim/sites/", params)
}

func (d *DCIMClient) Racks(ctx context.Context, filter url.Values) ([]Rack, error) {
	return list[Rack](ctx, d.c, "/api/dcim/racks/", filter)
}

func (d *DCIMClient) CreateRack(ctx context.Context, params RackParams) (*Rack, error) {
	return create[Rack](ctx, d.c, "/api/dcim/racks/", params)
}

func (d *DCIMClient) Manufacturers(ctx context.Context, filter url.Values) ([]Manufacturer, error) {
	return list[Manufacturer](ctx, d.c, "/api/dcim/manufacturers/", filter)
}

func (d *DCIMClient) CreateManufacturer(ctx context.Context, params ManufacturerParams) (*Manufacturer, error) {
	return create[Manufacturer](ctx, d.c, "/api/dcim/manufacturers/", params)
}

func (d *DCIMClient) DeviceRoles(ctx context.Context, filter url.Values) ([]DeviceRole, error) {
	return list[DeviceRole](ctx, d.c, "/api/dcim/device-roles/", filter)
}

func (d *DCIMClient) CreateDeviceRole(ctx context.Context, params DeviceRoleParams) (*DeviceRole, error) {
	return create[DeviceRole](ctx, d.c, "/api/dcim/device-roles/", params)
}

func (d *DCIMClient) DeviceTypes(ctx context.Context, filter url.Values) ([]DeviceType, error) {
	return list[DeviceType](ctx, d.c, "/api/dcim/device-types/", filter)
}

func (d *DCIMClient) CreateDeviceType(ctx context.Context, params DeviceTypeParams) (*DeviceType, error) {
	return create[DeviceType](ctx, d.c, "/api/dcim/device-types/", params)
}

func (d *DCIMClient) Devices(ctx context.Context, filter url.Values) ([]Device, error) {
	return list[Device](ctx, d.c, "/api/dcim/devices/", filter)
}

func (d *DCIMClient) CreateDevice(ctx context.Context, params DeviceParams) (*Device, error) {
	return create[Device](ctx, d.c, "/api/dcim/devices/", params)
}

// PatchDeviceCustomFields merges the given custom fields into the device,
// keeping values already set on the target.
func (d *DCIMClient) PatchDeviceCustomFields(ctx context.Context, id int64, fields map[string]any) (*Device, error) {
	path := fmt.Sprintf("/api/dcim/devices/%d/", id)
	var current Device
	if err := d.c.do(ctx, "GET", path, nil, nil, &current); err != nil {
		return nil, err
	}
	return patch[Device](ctx, d.c, path, map[string]any{
		"custom_fields": mergeCustomFields(current.CustomFields, fields),
	})
}

func (d *DCIMClient) DeviceBays(ctx context.Context, filter url.Values) ([]DeviceBay, error) {
	return list[DeviceBay](ctx, d.c, "/api/dcim/device-bays/", filter)
}

func (d *DCIMClient) CreateDeviceBay(ctx context.Context, params DeviceBayParams) (*DeviceBay, error) {
	return create[DeviceBay](ctx, d.c, "/api/dcim/device-bays/", params)
}

func (d *DCIMClient) Interfaces(ctx context.Context, filter url.Values) ([]Interface, error) {
	return list[Interface](ctx, d.c, "/api/dcim/interfaces/", filter)
}

func (d *DCIMClient) CreateInterface(ctx context.Context, params InterfaceParams) (*Interface, error) {
	return create[Interface](ctx, d.c, "/api/dcim/interfaces/", params)
}

func (d *DCIMClient) Cables(ctx context.Context, filter url.Values) ([]Cable, error) {
	return list[Cable](ctx, d.c, "/api/dcim/cables/", filter)
}

func (d *DCIMClient) CreateCable(ctx context.Context, params CableParams) (*Cable, error) {
	return create[Cable](ctx, d.c, "/api/dcim/cables/", params)
}

func (d *DCIMClient) PatchCableCustomFields(ctx context.Context, id int64, fields map[string]any) (*Cable, error) {
	path := fmt.Sprintf("/api/dcim/cables/%d/", id)
	var current Cable
	if err := d.c.do(ctx, "GET", path, nil, nil, &current); err != nil {
		return nil, err
	}
	return patch[Cable](ctx, d.c, path, map[string]any{
		"custom_fields": mergeCustomFields(current.CustomFields, fields),
	})
}

// mergeCustomFields overlays updates on the existing values, keeping any
// field the update does not mention.
func mergeCustomFields(existing, updates map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(updates))
	for k, v := range existing {
		if v != nil && v != "" {
			merged[k] = v
		}
	}
	for k, v := range updates {
		merged[k] = v
	}
	return merged
}
