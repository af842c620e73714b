package migration

import (
	"context"
	"net/netip"
	"strings"

	"github.com/lokasoft/racktables-to-netbox/internal/config"
	"github.com/lokasoft/racktables-to-netbox/internal/models"
	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/internal/util"
	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

func familyTag(family int) string {
	if family == 6 {
		return config.IPv6TagName
	}
	return config.IPv4TagName
}

func sourceNetRealm(family int) string {
	if family == 6 {
		return "ipv6net"
	}
	return "ipv4net"
}

// networkPrefix converts a source network row into a netip.Prefix.
func networkPrefix(n models.Network) (netip.Prefix, bool) {
	addr, ok := netip.AddrFromSlice(n.Addr)
	if !ok {
		return netip.Prefix{}, false
	}
	return netip.PrefixFrom(addr, n.Mask), true
}

// hostPrefix renders a bare address with its host mask, /32 or /128.
func hostPrefix(addr netip.Addr) string {
	if addr.Is4() {
		return addr.String() + "/32"
	}
	return addr.String() + "/128"
}

// prefixDescription joins name, tags and comment into the one-line target
// description.
func prefixDescription(name string, tags []string, comment string) string {
	parts := []string{}
	if name != "" {
		parts = append(parts, name)
	}
	if len(tags) > 0 {
		parts = append(parts, "["+strings.Join(tags, ", ")+"]")
	}
	if comment != "" {
		parts = append(parts, comment)
	}
	return util.Truncate(strings.Join(parts, " "), 200)
}

// MigrateNetworks creates a prefix per source network. Host networks
// (/32, /128) are left to the address stages; a network that narrow is an
// address, not a subnet.
func MigrateNetworks(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	existing, err := mc.Target.IPAM().Prefixes(ctx, nil)
	if err != nil {
		return summary, err
	}
	present := make(map[string]int64, len(existing))
	for _, p := range existing {
		present[p.Prefix] = p.ID
	}

	for _, family := range enabledFamilies(&mc.Settings.Stages) {
		networks, err := mc.Source.Networks(ctx, family)
		if err != nil {
			return summary, err
		}

		for _, network := range networks {
			if (family == 4 && network.Mask >= 32) || (family == 6 && network.Mask >= 128) {
				summary.Skipped++
				continue
			}
			prefix, ok := networkPrefix(network)
			if !ok {
				mc.Errors.Logf("network %d: unreadable address", network.ID)
				summary.Failed++
				continue
			}

			prefixStr := prefix.String()
			if id, found := present[prefixStr]; found {
				mc.XRef.Put(XrefNetwork, network.ID, id)
				summary.Skipped++
				continue
			}

			sourceTags, err := mc.Source.Tags(ctx, sourceNetRealm(family), network.ID)
			if err != nil {
				return summary, err
			}

			tags := []netbox.TagRef{{Name: familyTag(family)}}
			for _, tag := range sourceTags {
				if _, rerr := mc.Resolver.Resolve(ctx, KindTag, tag); rerr != nil {
					mc.Errors.Logf("tag %q: %v", tag, rerr)
					continue
				}
				tags = append(tags, netbox.TagRef{Name: tag})
			}

			var vlan *netbox.Ref
			if ref, bound := mc.VLANByNetwork[network.ID]; bound {
				vlan = &netbox.Ref{ID: ref.ID}
			}

			fields := map[string]any{}
			if network.Name.String != "" {
				fields["Prefix_Name"] = network.Name.String
			}

			created, err := mc.Target.IPAM().CreatePrefix(ctx, netbox.PrefixParams{
				Prefix:       prefixStr,
				Status:       ClassifyPrefixStatus(network.Name.String, network.Comment.String, mc.Settings.PrefixDefaultStatus),
				Description:  prefixDescription(network.Name.String, sourceTags, network.Comment.String),
				VLAN:         vlan,
				Tenant:       mc.TenantID,
				Tags:         tags,
				CustomFields: fields,
			})
			if err != nil {
				if errors.IsConflictError(err) {
					summary.Skipped++
					continue
				}
				mc.Errors.Logf("prefix %s: %v", prefixStr, err)
				summary.Failed++
				continue
			}

			present[prefixStr] = created.ID
			mc.XRef.Put(XrefNetwork, network.ID, created.ID)
			summary.Created++
		}
	}
	return summary, nil
}
