package migration

import (
	"context"
	"fmt"
	"net/netip"
	"net/url"
	"strings"

	"github.com/lokasoft/racktables-to-netbox/internal/config"
	"github.com/lokasoft/racktables-to-netbox/internal/models"
	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/internal/util"
	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

const (
	vmInterfaceObjectType = "virtualization.vminterface"
	virtualInterfaceType  = "Virtual"
)

// ipIndex wraps the target's address list for bare-address lookups: the
// source has no prefix length on allocations, so an existing address
// matches on the part before the slash.
type ipIndex struct {
	byBare map[string]netbox.IPAddress
}

func newIPIndex(addrs []netbox.IPAddress) *ipIndex {
	idx := &ipIndex{byBare: make(map[string]netbox.IPAddress, len(addrs))}
	for _, a := range addrs {
		bare, _, found := strings.Cut(a.Address, "/")
		if !found {
			bare = a.Address
		}
		if _, dup := idx.byBare[bare]; !dup {
			idx.byBare[bare] = a
		}
	}
	return idx
}

func (i *ipIndex) lookup(bare string) (netbox.IPAddress, bool) {
	a, ok := i.byBare[bare]
	return a, ok
}

func (i *ipIndex) add(a netbox.IPAddress) {
	bare, _, _ := strings.Cut(a.Address, "/")
	i.byBare[bare] = a
}

// interfaceCache lazily loads the interfaces of one device or VM at a
// time; the allocation stage touches most hosts once.
type interfaceCache struct {
	devices map[int64]map[string]int64
	vms     map[int64]map[string]int64
}

func newInterfaceCache() *interfaceCache {
	return &interfaceCache{
		devices: make(map[int64]map[string]int64),
		vms:     make(map[int64]map[string]int64),
	}
}

func (c *interfaceCache) device(ctx context.Context, client *netbox.Client, deviceID int64) (map[string]int64, error) {
	if cached, ok := c.devices[deviceID]; ok {
		return cached, nil
	}
	ifaces, err := client.DCIM().Interfaces(ctx, url.Values{"device_id": {fmt.Sprintf("%d", deviceID)}})
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int64, len(ifaces))
	for _, iface := range ifaces {
		byName[iface.Name] = iface.ID
	}
	c.devices[deviceID] = byName
	return byName, nil
}

func (c *interfaceCache) vm(ctx context.Context, client *netbox.Client, vmID int64) (map[string]int64, error) {
	if cached, ok := c.vms[vmID]; ok {
		return cached, nil
	}
	ifaces, err := client.Virtualization().VMInterfaces(ctx, url.Values{"virtual_machine_id": {fmt.Sprintf("%d", vmID)}})
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int64, len(ifaces))
	for _, iface := range ifaces {
		byName[iface.Name] = iface.ID
	}
	c.vms[vmID] = byName
	return byName, nil
}

// addressDescription is the free-text comment of the source address row,
// bounded to what the target accepts.
func addressDescription(a models.Address) string {
	return util.Truncate(a.Comment.String, 200)
}

func enabledFamilies(s *config.Stages) []int {
	var families []int
	if s.IPv4 {
		families = append(families, 4)
	}
	if s.IPv6 {
		families = append(families, 6)
	}
	return families
}

// MigrateAllocatedIPs creates an address per source allocation, assigned
// to an interface of the owning device or VM. Shared allocations are
// VRRP-style addresses that legitimately exist on several hosts, so an
// existing copy does not suppress them.
func MigrateAllocatedIPs(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	existing, err := mc.Target.IPAM().IPAddresses(ctx, nil)
	if err != nil {
		return summary, err
	}
	index := newIPIndex(existing)
	ifaces := newInterfaceCache()

	for _, family := range enabledFamilies(&mc.Settings.Stages) {
		addresses, err := mc.Source.Addresses(ctx, family)
		if err != nil {
			return summary, err
		}
		addressNames := make(map[string]models.Address, len(addresses))
		for _, a := range addresses {
			if addr, ok := netip.AddrFromSlice(a.Addr); ok {
				addressNames[addr.String()] = a
			}
		}

		allocations, err := mc.Source.Allocations(ctx, family)
		if err != nil {
			return summary, err
		}

		for _, alloc := range allocations {
			addr, ok := netip.AddrFromSlice(alloc.Addr)
			if !ok {
				mc.Errors.Logf("allocation on object %d: unreadable address", alloc.ObjectID)
				summary.Failed++
				continue
			}
			bare := addr.String()
			mc.AllocatedIPs[bare] = struct{}{}

			if _, exists := index.lookup(bare); exists && alloc.Type != "shared" {
				summary.Skipped++
				continue
			}

			ifaceName := NormalizeInterfaceName(alloc.InterfaceName.String, alloc.ObjtypeID)
			if ifaceName == "" {
				ifaceName = FallbackInterfaceName()
			}

			assignedType, assignedID, err := mc.resolveAssignment(ctx, ifaces, alloc, ifaceName)
			if err != nil {
				mc.Errors.Logf("allocation %s on object %d: %v", bare, alloc.ObjectID, err)
				summary.Failed++
				continue
			}
			if assignedID == 0 {
				summary.Skipped++
				continue
			}

			role := ""
			if alloc.Type == "shared" {
				role = "vrrp"
			}

			fields := map[string]any{
				"Interface_Name": ifaceName,
				"IP_Type":        alloc.Type,
			}
			description := ""
			if named, ok := addressNames[bare]; ok {
				if named.Name.String != "" {
					fields["IP_Name"] = named.Name.String
				}
				description = addressDescription(named)
			}

			created, err := mc.Target.IPAM().CreateIPAddress(ctx, netbox.IPAddressParams{
				Address:            hostPrefix(addr),
				Description:        description,
				Role:               role,
				AssignedObjectType: assignedType,
				AssignedObjectID:   assignedID,
				Tenant:             mc.TenantID,
				Tags:               []netbox.TagRef{{Name: familyTag(family)}},
				CustomFields:       fields,
			})
			if err != nil {
				if errors.IsConflictError(err) {
					summary.Skipped++
					continue
				}
				mc.Errors.Logf("address %s: %v", bare, err)
				summary.Failed++
				continue
			}

			index.add(*created)
			summary.Created++
		}
	}
	return summary, nil
}

// resolveAssignment finds or creates the interface the address attaches
// to. A zero assigned ID with a nil error means the owning host was never
// migrated and the allocation should be counted as skipped.
func (mc *Context) resolveAssignment(ctx context.Context, cache *interfaceCache, alloc models.Allocation, ifaceName string) (string, int64, error) {
	if alloc.ObjtypeID == config.ObjtypeVM {
		vmID, ok := mc.XRef.Get(XrefVM, alloc.ObjectID)
		if !ok {
			return "", 0, nil
		}
		byName, err := cache.vm(ctx, mc.Target, vmID)
		if err != nil {
			return "", 0, err
		}
		if id, found := byName[ifaceName]; found {
			return vmInterfaceObjectType, id, nil
		}
		created, err := mc.Target.Virtualization().CreateVMInterface(ctx, netbox.VMInterfaceParams{
			VirtualMachine: vmID,
			Name:           ifaceName,
			CustomFields:   map[string]any{"VM_Interface_Type": virtualInterfaceType},
		})
		if err != nil {
			return "", 0, err
		}
		byName[ifaceName] = created.ID
		return vmInterfaceObjectType, created.ID, nil
	}

	deviceID, ok := mc.XRef.Get(XrefDevice, alloc.ObjectID)
	if !ok {
		return "", 0, nil
	}
	byName, err := cache.device(ctx, mc.Target, deviceID)
	if err != nil {
		return "", 0, err
	}
	if id, found := byName[ifaceName]; found {
		return interfaceObjectType, id, nil
	}
	created, err := mc.Target.DCIM().CreateInterface(ctx, netbox.InterfaceParams{
		Device:       deviceID,
		Name:         ifaceName,
		Type:         "virtual",
		CustomFields: map[string]any{"Device_Interface_Type": virtualInterfaceType},
	})
	if err != nil {
		return "", 0, err
	}
	byName[ifaceName] = created.ID
	return interfaceObjectType, created.ID, nil
}

// MigrateUnallocatedIPs carries over the addresses that exist in the
// source address tables without being allocated to anything.
func MigrateUnallocatedIPs(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	existing, err := mc.Target.IPAM().IPAddresses(ctx, nil)
	if err != nil {
		return summary, err
	}
	index := newIPIndex(existing)

	for _, family := range enabledFamilies(&mc.Settings.Stages) {
		addresses, err := mc.Source.Addresses(ctx, family)
		if err != nil {
			return summary, err
		}

		for _, address := range addresses {
			addr, ok := netip.AddrFromSlice(address.Addr)
			if !ok {
				summary.Failed++
				continue
			}
			bare := addr.String()
			if _, allocated := mc.AllocatedIPs[bare]; allocated {
				continue
			}
			if _, exists := index.lookup(bare); exists {
				summary.Skipped++
				continue
			}

			fields := map[string]any{}
			if address.Name.String != "" {
				fields["IP_Name"] = address.Name.String
			}

			created, err := mc.Target.IPAM().CreateIPAddress(ctx, netbox.IPAddressParams{
				Address:      hostPrefix(addr),
				Description:  addressDescription(address),
				Tenant:       mc.TenantID,
				Tags:         []netbox.TagRef{{Name: familyTag(family)}},
				CustomFields: fields,
			})
			if err != nil {
				if errors.IsConflictError(err) {
					summary.Skipped++
					continue
				}
				mc.Errors.Logf("address %s: %v", bare, err)
				summary.Failed++
				continue
			}

			index.add(*created)
			summary.Created++
		}
	}
	return summary, nil
}
