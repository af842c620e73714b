package migration

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"

	"github.com/lokasoft/racktables-to-netbox/internal/config"
	"github.com/lokasoft/racktables-to-netbox/internal/models"
	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/internal/racktables"
	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

// rackFootprint is what the rack space atoms of one object collapse to.
type rackFootprint struct {
	minUnit  int
	maxUnit  int
	hasFront bool
	hasRear  bool
}

func (f rackFootprint) face() string {
	if f.hasFront {
		return "front"
	}
	return "rear"
}

func (f rackFootprint) fullDepth() bool { return f.hasFront && f.hasRear }

func (f rackFootprint) height() int { return f.maxUnit - f.minUnit + 1 }

// footprints collapses rack space atoms into one footprint per object.
func footprints(atoms []models.RackSpaceAtom) map[int]*rackFootprint {
	byObject := make(map[int]*rackFootprint)
	for _, atom := range atoms {
		if !atom.ObjectID.Valid {
			continue
		}
		id := int(atom.ObjectID.Int64)
		f, ok := byObject[id]
		if !ok {
			f = &rackFootprint{minUnit: atom.UnitNo, maxUnit: atom.UnitNo}
			byObject[id] = f
		}
		if atom.UnitNo < f.minUnit {
			f.minUnit = atom.UnitNo
		}
		if atom.UnitNo > f.maxUnit {
			f.maxUnit = atom.UnitNo
		}
		switch atom.Atom {
		case "front":
			f.hasFront = true
		case "rear":
			f.hasRear = true
		}
	}
	return byObject
}

// deviceIdentity derives role, manufacturer and device type model for a
// source object. The role comes from the objtype; the manufacturer is
// split off the hardware type when it starts with a known vendor, and
// falls back to the role otherwise.
func deviceIdentity(objtypeID int, hwType string, height int, fullDepth bool) (role, manufacturer, model string) {
	role = config.ObjtypeNames[objtypeID]
	if role == "" {
		role = "Unknown"
	}

	manufacturer = role
	base := role
	if hwType != "" {
		if vendor, rest := SplitHWType(hwType); vendor != "" {
			manufacturer = vendor
			if rest != "" {
				base = rest
			} else {
				base = vendor
			}
		} else {
			base = hwType
		}
	}

	model = DeviceTypeModel(base, height, fullDepth)
	if config.IsParentObjtype(objtypeID) {
		model += "-parent"
	}
	return role, manufacturer, model
}

// ensureDeviceType creates the device type on first sight and seeds the
// resolver so later objects hit the cache.
func ensureDeviceType(ctx context.Context, mc *Context, manufacturer, model string, height int, fullDepth bool, subdeviceRole string) (int64, error) {
	if id, ok := mc.Resolver.Lookup(KindDeviceType, model); ok {
		return id, nil
	}

	manufacturerID, err := mc.Resolver.Resolve(ctx, KindManufacturer, manufacturer)
	if err != nil {
		return 0, err
	}

	created, err := mc.Target.DCIM().CreateDeviceType(ctx, netbox.DeviceTypeParams{
		Manufacturer:  netbox.Ref{ID: manufacturerID},
		Model:         model,
		Slug:          slug.Make(model),
		UHeight:       height,
		IsFullDepth:   fullDepth,
		SubdeviceRole: subdeviceRole,
	})
	if err != nil {
		if errors.IsConflictError(err) {
			return mc.Resolver.Resolve(ctx, KindDeviceType, model)
		}
		return 0, err
	}

	mc.Resolver.Register(KindDeviceType, model, created.ID)
	return created.ID, nil
}

// MigrateRackedDevices mounts every object occupying rack space as a
// device at its exact position. An object already present at the same
// position with the same identity is reused, which is what makes re-runs
// cheap; a name collision with a different identity gets a numeric
// suffix instead.
func MigrateRackedDevices(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	serials, err := mc.Source.Serials(ctx)
	if err != nil {
		return summary, err
	}

	existing, err := mc.Target.DCIM().Devices(ctx, nil)
	if err != nil {
		return summary, err
	}
	nameTaken := make(map[string]struct{}, len(existing))
	assetTaken := make(map[string]struct{})
	for _, d := range existing {
		nameTaken[d.Name] = struct{}{}
		if d.AssetTag != nil {
			assetTaken[*d.AssetTag] = struct{}{}
		}
	}
	createdAt := make(map[DeviceLocation]int64)

	locations, err := mc.Source.Objects(ctx, racktables.ByObjtype(config.ObjtypeLocation))
	if err != nil {
		return summary, err
	}

	for _, location := range locations {
		siteName := location.Name.String
		if siteName == "" || len(siteName) > mc.Settings.SiteNameLengthThreshold {
			continue
		}
		if mc.Settings.TargetSite != "" && siteName != mc.Settings.TargetSite {
			continue
		}
		siteID, ok := mc.XRef.Get(XrefSite, location.ID)
		if !ok {
			mc.Errors.Logf("site %q was not migrated, skipping its devices", siteName)
			continue
		}

		rows, err := mc.Source.RowsAtSite(ctx, location.ID)
		if err != nil {
			return summary, err
		}
		for _, row := range rows {
			racks, err := mc.Source.RacksAtRow(ctx, row.ID)
			if err != nil {
				return summary, err
			}
			for _, rack := range racks {
				rackName := ComposeRackName(siteName, row.Name.String, rack.Name.String)
				rackID, ok := mc.XRef.Get(XrefRack, rack.ID)
				if !ok {
					mc.Errors.Logf("rack %q was not migrated, skipping its devices", rackName)
					continue
				}

				atoms, err := mc.Source.AtomsAtRack(ctx, rack.ID)
				if err != nil {
					return summary, err
				}

				for objectID, footprint := range footprints(atoms) {
					outcome := mc.migrateMountedObject(ctx, mountedObject{
						objectID:  objectID,
						footprint: *footprint,
						siteName:  siteName,
						siteID:    siteID,
						rackName:  rackName,
						rackID:    rackID,
						serials:   serials,
						existing:  existing,
						createdAt: createdAt,
						names:     nameTaken,
						assets:    assetTaken,
					})
					summary.add(outcome)
				}
			}
		}
	}
	return summary, nil
}

type mountedObject struct {
	objectID  int
	footprint rackFootprint
	siteName  string
	siteID    int64
	rackName  string
	rackID    int64
	serials   map[int]string
	existing  []netbox.Device
	createdAt map[DeviceLocation]int64
	names     map[string]struct{}
	assets    map[string]struct{}
}

func (mc *Context) migrateMountedObject(ctx context.Context, m mountedObject) Summary {
	var summary Summary

	// Object row and hardware type are independent reads; let the
	// prefetch pool overlap them.
	objFuture := mc.Prefetch.AddWork(func(ctx context.Context) (any, error) {
		return mc.Source.ObjectByID(ctx, m.objectID)
	})
	hwFuture := mc.Prefetch.AddWork(func(ctx context.Context) (any, error) {
		return mc.Source.HWType(ctx, m.objectID)
	})

	objResult := <-objFuture.C()
	hwResult := <-hwFuture.C()
	if objResult.Err != nil {
		mc.Errors.Logf("object %d: %v", m.objectID, objResult.Err)
		summary.Failed++
		return summary
	}
	if hwResult.Err != nil {
		mc.Errors.Logf("object %d hw type: %v", m.objectID, hwResult.Err)
		summary.Failed++
		return summary
	}
	obj, _ := objResult.Data.(*models.Object)
	if obj == nil {
		summary.Skipped++
		return summary
	}
	hwType, _ := hwResult.Data.(string)

	role, manufacturer, model := deviceIdentity(obj.ObjtypeID, hwType, m.footprint.height(), m.footprint.fullDepth())

	loc := DeviceLocation{
		Face:         m.footprint.face(),
		Position:     float64(m.footprint.minUnit),
		Role:         role,
		Manufacturer: manufacturer,
		Model:        model,
		Site:         m.siteName,
		Rack:         m.rackName,
	}
	if id, ok := m.createdAt[loc]; ok {
		mc.XRef.Put(XrefDevice, obj.ID, id)
		summary.Skipped++
		return summary
	}
	if existing := FindDeviceAtLocation(m.existing, loc); existing != nil {
		mc.XRef.Put(XrefDevice, obj.ID, existing.ID)
		m.createdAt[loc] = existing.ID
		summary.Skipped++
		return summary
	}

	subdeviceRole := ""
	if config.IsParentObjtype(obj.ObjtypeID) {
		subdeviceRole = "parent"
	}
	typeID, err := ensureDeviceType(ctx, mc, manufacturer, model, m.footprint.height(), m.footprint.fullDepth(), subdeviceRole)
	if err != nil {
		mc.Errors.Logf("device type %q: %v", model, err)
		summary.Failed++
		return summary
	}
	roleID, err := mc.Resolver.Resolve(ctx, KindDeviceRole, role)
	if err != nil {
		mc.Errors.Logf("device role %q: %v", role, err)
		summary.Failed++
		return summary
	}

	name := obj.Name.String
	if name == "" {
		name = fmt.Sprintf("unnamed-%d", obj.ID)
	}
	name = DisambiguateName(name, m.names)

	var assetTag *string
	if obj.AssetNo.String != "" {
		tag := obj.AssetNo.String
		if _, taken := m.assets[tag]; taken {
			tag += "-1"
		}
		assetTag = &tag
	}

	var cluster *netbox.Ref
	parents, err := mc.Source.ParentsOf(ctx, obj.ID)
	if err == nil {
		for _, parent := range parents {
			if parent.ObjtypeID == config.ObjtypeVMCluster && parent.Name.String != "" {
				cluster = &netbox.Ref{Name: parent.Name.String}
				break
			}
		}
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
		Site:         m.siteID,
		Rack:         &netbox.Ref{ID: m.rackID},
		Face:         m.footprint.face(),
		Position:     float64(m.footprint.minUnit),
		Serial:       m.serials[obj.ID],
		AssetTag:     assetTag,
		Cluster:      cluster,
		Comments:     comments,
		Tenant:       mc.TenantID,
		CustomFields: fields,
	})
	if err != nil {
		if errors.IsConflictError(err) {
			summary.Skipped++
			return summary
		}
		mc.Errors.Logf("device %q: %v", name, err)
		summary.Failed++
		return summary
	}

	m.names[name] = struct{}{}
	if assetTag != nil {
		m.assets[*assetTag] = struct{}{}
	}
	m.createdAt[loc] = device.ID
	mc.XRef.Put(XrefDevice, obj.ID, device.ID)
	summary.Created++
	return summary
}
