package migration

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"

	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

// vlanXrefKey folds the domain into the cross-reference key: a VLAN ID
// only identifies a VLAN within one domain, and the ID space stops at
// 4095.
func vlanXrefKey(domainID, vlanID int) int {
	return domainID<<12 | vlanID
}

// MigrateVLANGroups turns each VLAN domain into a VLAN group. The source
// domain ID survives as a custom field so the mapping stays auditable.
func MigrateVLANGroups(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	domains, err := mc.Source.VLANDomains(ctx)
	if err != nil {
		return summary, err
	}

	existing, err := mc.Target.IPAM().VLANGroups(ctx, nil)
	if err != nil {
		return summary, err
	}
	present := make(map[string]int64, len(existing))
	for _, g := range existing {
		present[g.Name] = g.ID
	}

	for _, domain := range domains {
		name := domain.Description.String
		if name == "" {
			name = fmt.Sprintf("VLAN Domain %d", domain.ID)
		}
		if id, ok := present[name]; ok {
			mc.Resolver.Register(KindVLANGroup, name, id)
			summary.Skipped++
			continue
		}

		group, err := mc.Target.IPAM().CreateVLANGroup(ctx, netbox.VLANGroupParams{
			Name:         name,
			Slug:         slug.Make(name),
			CustomFields: map[string]any{"VLAN_Domain_ID": fmt.Sprintf("%d", domain.ID)},
		})
		if err != nil {
			if errors.IsConflictError(err) {
				summary.Skipped++
				continue
			}
			mc.Errors.Logf("vlan group %q: %v", name, err)
			summary.Failed++
			continue
		}
		mc.Resolver.Register(KindVLANGroup, name, group.ID)
		present[name] = group.ID
		summary.Created++
	}
	return summary, nil
}

// MigrateVLANs creates the VLANs bound to source networks and records the
// network-to-VLAN mapping the prefix stage attaches later. VLANs whose
// domain has no description for them are left behind on purpose; a VLAN
// with no name carries no information worth migrating.
func MigrateVLANs(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	domains, err := mc.Source.VLANDomains(ctx)
	if err != nil {
		return summary, err
	}
	domainNames := make(map[int]string, len(domains))
	for _, d := range domains {
		name := d.Description.String
		if name == "" {
			name = fmt.Sprintf("VLAN Domain %d", d.ID)
		}
		domainNames[d.ID] = name
	}

	existing, err := mc.Target.IPAM().VLANs(ctx, nil)
	if err != nil {
		return summary, err
	}
	// Names already used per group, and VLANs reusable by (group, vid).
	takenNames := make(map[string]map[string]struct{})
	byGroupVID := make(map[string]netbox.VLAN)
	for _, v := range existing {
		groupName := ""
		if v.Group != nil {
			groupName = v.Group.Name
		}
		if takenNames[groupName] == nil {
			takenNames[groupName] = make(map[string]struct{})
		}
		takenNames[groupName][v.Name] = struct{}{}
		byGroupVID[fmt.Sprintf("%s/%d", groupName, v.VID)] = v
	}

	for _, family := range enabledFamilies(&mc.Settings.Stages) {
		bindings, err := mc.Source.NetworkVLANs(ctx, family)
		if err != nil {
			return summary, err
		}

		for _, binding := range bindings {
			groupName := domainNames[binding.DomainID]
			name, err := mc.Source.VLANDescription(ctx, binding.DomainID, binding.VLANID)
			if err != nil {
				return summary, err
			}
			if name == "" {
				summary.Skipped++
				continue
			}

			if v, ok := byGroupVID[fmt.Sprintf("%s/%d", groupName, binding.VLANID)]; ok {
				mc.VLANByNetwork[binding.NetworkID] = VLANRef{GroupName: groupName, Name: v.Name, ID: v.ID}
				mc.XRef.Put(XrefVLAN, vlanXrefKey(binding.DomainID, binding.VLANID), v.ID)
				summary.Skipped++
				continue
			}

			groupID, err := mc.Resolver.Resolve(ctx, KindVLANGroup, groupName)
			if err != nil {
				mc.Errors.Logf("vlan %d group %q: %v", binding.VLANID, groupName, err)
				summary.Failed++
				continue
			}

			if takenNames[groupName] == nil {
				takenNames[groupName] = make(map[string]struct{})
			}
			unique := UniqueVLANName(name, takenNames[groupName])

			vlan, err := mc.Target.IPAM().CreateVLAN(ctx, netbox.VLANParams{
				VID:   binding.VLANID,
				Name:  unique,
				Group: &netbox.Ref{ID: groupID},
			})
			if err != nil {
				if errors.IsConflictError(err) {
					summary.Skipped++
					continue
				}
				mc.Errors.Logf("vlan %q (vid %d): %v", unique, binding.VLANID, err)
				summary.Failed++
				continue
			}

			takenNames[groupName][unique] = struct{}{}
			byGroupVID[fmt.Sprintf("%s/%d", groupName, binding.VLANID)] = *vlan
			mc.VLANByNetwork[binding.NetworkID] = VLANRef{GroupName: groupName, Name: unique, ID: vlan.ID}
			mc.XRef.Put(XrefVLAN, vlanXrefKey(binding.DomainID, binding.VLANID), vlan.ID)
			summary.Created++
		}
	}
	return summary, nil
}
