package migration

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lokasoft/racktables-to-netbox/internal/config"
	"github.com/lokasoft/racktables-to-netbox/internal/models"
	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

// nonRackedSiteName holds devices that occupy no rack space anywhere.
const nonRackedSiteName = "None"

// MigrateNonRackedDevices creates a zero-height device for every object
// that never got mounted, grouped under a catch-all site. Chassis-style
// containers get device bays and their children are installed into them;
// children seen before their parent are handled in a second pass.
func MigrateNonRackedDevices(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	siteID, err := mc.Resolver.Resolve(ctx, KindSite, nonRackedSiteName)
	if err != nil {
		return summary, err
	}

	existing, err := mc.Target.DCIM().Devices(ctx, nil)
	if err != nil {
		return summary, err
	}
	deviceIDs := make(map[string]int64, len(existing))
	for _, d := range existing {
		deviceIDs[d.Name] = d.ID
	}

	objects, err := mc.Source.Objects(ctx)
	if err != nil {
		return summary, err
	}

	childOf := make(map[int]int) // child object -> parent object
	var deferred []*models.Object

	for i := range objects {
		obj := &objects[i]
		retry, outcome := mc.migrateUnmountedObject(ctx, obj, siteID, deviceIDs, childOf)
		summary.add(outcome)
		if retry {
			deferred = append(deferred, obj)
		}
	}
	// Children whose parent had not been created yet.
	for _, obj := range deferred {
		_, outcome := mc.migrateUnmountedObject(ctx, obj, siteID, deviceIDs, childOf)
		summary.add(outcome)
	}

	summary.add(mc.installDeviceBays(ctx, childOf))
	return summary, nil
}

// migrateUnmountedObject creates one non-racked device. It reports
// whether the object must be retried later because its chassis parent is
// not migrated yet.
func (mc *Context) migrateUnmountedObject(ctx context.Context, obj *models.Object, siteID int64, deviceIDs map[string]int64, childOf map[int]int) (bool, Summary) {
	var summary Summary

	if _, inScope := config.ObjtypeNames[obj.ObjtypeID]; !inScope {
		return false, summary
	}
	if _, done := mc.XRef.Get(XrefDevice, obj.ID); done {
		return false, summary
	}
	name := obj.Name.String
	if name == "" {
		summary.Skipped++
		return false, summary
	}

	// Chassis membership decides the -child device type and whether the
	// parent must already exist.
	parentID := 0
	for _, pair := range config.ParentChildObjtypePairs {
		if pair.ChildObjtype != obj.ObjtypeID {
			continue
		}
		parents, err := mc.Source.ParentsOf(ctx, obj.ID)
		if err != nil {
			mc.Errors.Logf("object %d parents: %v", obj.ID, err)
			summary.Failed++
			return false, summary
		}
		for _, parent := range parents {
			if parent.ObjtypeID == pair.ParentObjtype {
				parentID = parent.ID
				break
			}
		}
	}
	if parentID != 0 {
		if _, ok := mc.XRef.Get(XrefDevice, parentID); !ok {
			return true, summary
		}
	}

	hwType, err := mc.Source.HWType(ctx, obj.ID)
	if err != nil {
		mc.Errors.Logf("object %d hw type: %v", obj.ID, err)
		summary.Failed++
		return false, summary
	}

	role, manufacturer, model := deviceIdentity(obj.ObjtypeID, hwType, 0, false)
	subdeviceRole := ""
	switch {
	case config.IsParentObjtype(obj.ObjtypeID):
		subdeviceRole = "parent"
	case parentID != 0:
		model += "-child"
		subdeviceRole = "child"
	}
	typeID, err := ensureDeviceType(ctx, mc, manufacturer, model, 0, false, subdeviceRole)
	if err != nil {
		mc.Errors.Logf("device type %q: %v", model, err)
		summary.Failed++
		return false, summary
	}
	roleID, err := mc.Resolver.Resolve(ctx, KindDeviceRole, role)
	if err != nil {
		mc.Errors.Logf("device role %q: %v", role, err)
		summary.Failed++
		return false, summary
	}

	if id, ok := deviceIDs[name]; ok {
		mc.XRef.Put(XrefDevice, obj.ID, id)
		if parentID != 0 {
			childOf[obj.ID] = parentID
		}
		summary.Skipped++
		return false, summary
	}

	fields := map[string]any{}
	if obj.Label.String != "" {
		fields["Device_Label"] = obj.Label.String
	}
	comments, err := mc.attributeSummary(ctx, obj.ID)
	if err != nil {
		mc.Errors.Logf("object %d attributes: %v", obj.ID, err)
	}

	device, err := mc.Target.DCIM().CreateDevice(ctx, netbox.DeviceParams{
		Name:         name,
		Role:         netbox.Ref{ID: roleID},
		DeviceType:   netbox.Ref{ID: typeID},
		Site:         siteID,
		Comments:     comments,
		Tenant:       mc.TenantID,
		CustomFields: fields,
	})
	if err != nil {
		if errors.IsConflictError(err) {
			summary.Skipped++
			return false, summary
		}
		mc.Errors.Logf("device %q: %v", name, err)
		summary.Failed++
		return false, summary
	}

	deviceIDs[name] = device.ID
	mc.XRef.Put(XrefDevice, obj.ID, device.ID)
	if parentID != 0 {
		childOf[obj.ID] = parentID
	}
	summary.Created++
	return false, summary
}

// installDeviceBays creates a bay per chassis child and installs the
// child into it. Bay numbering continues from whatever already exists on
// the parent.
func (mc *Context) installDeviceBays(ctx context.Context, childOf map[int]int) Summary {
	var summary Summary

	nextBay := make(map[int64]int)

	for childObj, parentObj := range childOf {
		childID, ok := mc.XRef.Get(XrefDevice, childObj)
		if !ok {
			continue
		}
		parentID, ok := mc.XRef.Get(XrefDevice, parentObj)
		if !ok {
			continue
		}

		if _, probed := nextBay[parentID]; !probed {
			bays, err := mc.Target.DCIM().DeviceBays(ctx, url.Values{
				"device_id": {fmt.Sprintf("%d", parentID)},
			})
			if err != nil {
				mc.Errors.Logf("device bays of %d: %v", parentID, err)
				summary.Failed++
				continue
			}
			nextBay[parentID] = len(bays) + 1
		}

		bayName := fmt.Sprintf("bay-%d", nextBay[parentID])
		if _, err := mc.Target.DCIM().CreateDeviceBay(ctx, netbox.DeviceBayParams{
			Device:          parentID,
			Name:            bayName,
			InstalledDevice: childID,
		}); err != nil {
			if errors.IsConflictError(err) {
				summary.Skipped++
				continue
			}
			mc.Errors.Logf("device bay %q on %d: %v", bayName, parentID, err)
			summary.Failed++
			continue
		}
		nextBay[parentID]++
		summary.Created++
	}
	return summary
}
