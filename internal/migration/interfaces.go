package migration

import (
	"context"

	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/internal/util"
	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

// ifaceKey scopes interface dedupe to the owning device. Source objects
// can share a name and the second one then lands under a suffixed device,
// so a name-scoped lookup would attach its ports to the wrong device.
type ifaceKey struct {
	device int64
	name   string
}

func interfaceIndex(existing []netbox.Interface) map[ifaceKey]int64 {
	byKey := make(map[ifaceKey]int64, len(existing))
	for _, iface := range existing {
		byKey[ifaceKey{device: iface.Device.ID, name: iface.Name}] = iface.ID
	}
	return byKey
}

// MigrateInterfaces creates one interface per source port on every
// migrated device. Ports the target already has are still recorded in the
// cross-reference cache, otherwise the connection stage could not wire
// them on a re-run.
func MigrateInterfaces(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	oifNames, err := mc.Source.PortOuterInterfaces(ctx)
	if err != nil {
		return summary, err
	}

	existing, err := mc.Target.DCIM().Interfaces(ctx, nil)
	if err != nil {
		return summary, err
	}
	byKey := interfaceIndex(existing)

	objects, err := mc.Source.Objects(ctx)
	if err != nil {
		return summary, err
	}

	for _, obj := range objects {
		deviceID, migrated := mc.XRef.Get(XrefDevice, obj.ID)
		if !migrated {
			continue
		}
		deviceName := obj.Name.String

		ports, err := mc.Source.Ports(ctx, obj.ID)
		if err != nil {
			return summary, err
		}

		for _, port := range ports {
			name := NormalizeInterfaceName(port.Name.String, obj.ObjtypeID)
			if name == "" {
				summary.Skipped++
				continue
			}

			key := ifaceKey{device: deviceID, name: name}
			if id, ok := byKey[key]; ok {
				mc.XRef.Put(XrefPort, port.ID, id)
				summary.Skipped++
				continue
			}

			fields := map[string]any{"Device_Interface_Type": oifNames[port.TypeID]}
			iface, err := mc.Target.DCIM().CreateInterface(ctx, netbox.InterfaceParams{
				Device:       deviceID,
				Name:         name,
				Type:         "other",
				Label:        util.Truncate(port.Label.String, 200),
				CustomFields: fields,
			})
			if err != nil {
				if errors.IsConflictError(err) {
					summary.Skipped++
					continue
				}
				mc.Errors.Logf("interface %q on %q: %v", name, deviceName, err)
				summary.Failed++
				continue
			}

			byKey[key] = iface.ID
			mc.XRef.Put(XrefPort, port.ID, iface.ID)
			summary.Created++
		}
	}
	return summary, nil
}
