package migration

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/lokasoft/racktables-to-netbox/internal/config"
	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/internal/racktables"
)

// MigrateSitesAndRacks walks Location objects into sites and their rows
// into racks. Locations with long names are street addresses in most
// Racktables installs, not sites, and are left out.
func MigrateSitesAndRacks(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	locations, err := mc.Source.Objects(ctx, racktables.ByObjtype(config.ObjtypeLocation))
	if err != nil {
		return summary, err
	}

	existingRacks, err := mc.Target.DCIM().Racks(ctx, nil)
	if err != nil {
		return summary, err
	}
	rackIDs := make(map[string]int64, len(existingRacks))
	for _, r := range existingRacks {
		rackIDs[fmt.Sprintf("%s/%s", r.Site.Name, r.Name)] = r.ID
	}

	for _, location := range locations {
		siteName := location.Name.String
		if siteName == "" {
			summary.Skipped++
			continue
		}
		if len(siteName) > mc.Settings.SiteNameLengthThreshold {
			zap.S().Debugw("location looks like an address, not a site", "name", siteName)
			summary.Skipped++
			continue
		}
		if mc.Settings.TargetSite != "" && siteName != mc.Settings.TargetSite {
			summary.Skipped++
			continue
		}

		siteID, err := mc.Resolver.Resolve(ctx, KindSite, siteName)
		if err != nil {
			mc.Errors.Logf("site %q: %v", siteName, err)
			summary.Failed++
			continue
		}
		mc.XRef.Put(XrefSite, location.ID, siteID)

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
				name := ComposeRackName(siteName, row.Name.String, rack.Name.String)
				if id, ok := rackIDs[fmt.Sprintf("%s/%s", siteName, name)]; ok {
					mc.XRef.Put(XrefRack, rack.ID, id)
					summary.Skipped++
					continue
				}

				height, err := mc.Source.RackHeight(ctx, rack.ID)
				if err != nil {
					return summary, err
				}

				created, err := netbox.CreateThenFind(ctx,
					func(ctx context.Context) (*netbox.Rack, error) {
						return mc.Target.DCIM().CreateRack(ctx, netbox.RackParams{
							Name:    name,
							Site:    siteID,
							UHeight: height,
							Tenant:  mc.TenantID,
						})
					},
					func(ctx context.Context) (*netbox.Rack, error) {
						return findRack(ctx, mc.Target, siteID, name)
					})
				if err != nil {
					mc.Errors.Logf("rack %q: %v", name, err)
					summary.Failed++
					continue
				}
				rackIDs[fmt.Sprintf("%s/%s", siteName, name)] = created.ID
				mc.XRef.Put(XrefRack, rack.ID, created.ID)
				summary.Created++
			}
		}
	}
	return summary, nil
}

func findRack(ctx context.Context, client *netbox.Client, siteID int64, name string) (*netbox.Rack, error) {
	racks, err := client.DCIM().Racks(ctx, url.Values{
		"site_id": {fmt.Sprintf("%d", siteID)},
		"name":    {name},
	})
	if err != nil {
		return nil, err
	}
	if len(racks) == 0 {
		return nil, nil
	}
	return &racks[0], nil
}
