package migration

import (
	"context"
	"encoding/binary"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

// configAddr parses the leading numeric field of a vsconfig/rsconfig
// string, which is an IPv4 address stored as its integer value.
func configAddr(config string) (netip.Addr, bool) {
	first, _, _ := strings.Cut(strings.TrimSpace(config), ":")
	n, err := strconv.ParseUint(first, 10, 32)
	if err != nil {
		return netip.Addr{}, false
	}
	var raw [4]byte
	binary.BigEndian.PutUint32(raw[:], uint32(n))
	return netip.AddrFrom4(raw), true
}

// MigrateLoadBalancing annotates VIPs and real servers from the IPv4 load
// balancer tables, and materializes the real server pools as tags.
func MigrateLoadBalancing(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	lbPlan, err := mc.Prober.Plan(ctx, "IPv4LB", map[string][]string{})
	if err != nil {
		return summary, err
	}
	if lbPlan.Missing {
		return summary, errors.NewStageSkippedError("load balancing", "IPv4LB table not present")
	}

	entries, err := mc.Source.LBEntries(ctx, lbPlan)
	if err != nil {
		return summary, err
	}

	addresses, err := mc.Target.IPAM().IPAddresses(ctx, nil)
	if err != nil {
		return summary, err
	}
	index := newIPIndex(addresses)

	for _, entry := range entries {
		vip, okVIP := configAddr(entry.VSConfig.String)
		rs, okRS := configAddr(entry.RSConfig.String)
		if !okVIP || !okRS {
			mc.Errors.Logf("lb entry with unparsable config %q / %q", entry.VSConfig.String, entry.RSConfig.String)
			summary.Failed++
			continue
		}

		description := "Load balancer VIP"
		if entry.Comment.String != "" {
			description = "LB: " + entry.Comment.String
		}

		vipTarget, err := mc.ensureAddress(ctx, index, vip)
		if err != nil {
			mc.Errors.Logf("lb vip %s: %v", vip, err)
			summary.Failed++
			continue
		}
		vipFields := map[string]any{
			"LB_Config": fmt.Sprintf("VS: %s, RS: %s, Priority: %s",
				entry.VSConfig.String, entry.RSConfig.String, entry.Prio.String),
		}
		if entry.RSPool.String != "" {
			vipFields["RS_Pool"] = entry.RSPool.String
		}
		if _, err := mc.Target.IPAM().PatchIPAddressCustomFields(ctx, vipTarget.ID, vipFields); err != nil {
			mc.Errors.Logf("lb vip %s: %v", vip, err)
			summary.Failed++
			continue
		}
		if _, err := mc.Target.IPAM().PatchIPAddress(ctx, vipTarget.ID, map[string]any{
			"role":        "vip",
			"description": description,
		}); err != nil {
			mc.Errors.Logf("lb vip %s: %v", vip, err)
			summary.Failed++
			continue
		}

		rsTarget, err := mc.ensureAddress(ctx, index, rs)
		if err != nil {
			mc.Errors.Logf("lb real server %s: %v", rs, err)
			summary.Failed++
			continue
		}
		rsFields := map[string]any{
			"LB_Config": fmt.Sprintf("Part of pool %s for VIP %s", entry.RSPool.String, vip),
		}
		if entry.RSPool.String != "" {
			rsFields["LB_Pool"] = entry.RSPool.String
		}
		if _, err := mc.Target.IPAM().PatchIPAddressCustomFields(ctx, rsTarget.ID, rsFields); err != nil {
			mc.Errors.Logf("lb real server %s: %v", rs, err)
			summary.Failed++
			continue
		}
		summary.Created++
	}

	summary.add(mc.migrateRSPools(ctx))
	return summary, nil
}

// migrateRSPools exposes the real server pools as tags so pool membership
// is filterable on the target.
func (mc *Context) migrateRSPools(ctx context.Context) Summary {
	var summary Summary

	poolPlan, err := mc.Prober.Plan(ctx, "IPv4RSPool", map[string][]string{
		"name":  {"name", "pool_name"},
		"vs_id": {"vs_id", "vsid"},
	})
	if err != nil {
		mc.Errors.Logf("rs pools: %v", err)
		summary.Failed++
		return summary
	}
	if poolPlan.Missing {
		return summary
	}

	pools, err := mc.Source.RSPools(ctx, poolPlan)
	if err != nil {
		mc.Errors.Logf("rs pools: %v", err)
		summary.Failed++
		return summary
	}

	for _, pool := range pools {
		name := pool.Name.String
		if name == "" {
			name = "unnamed"
		}
		tag := fmt.Sprintf("LB-Pool-%s-%d", name, pool.ID)
		if _, err := mc.Resolver.Resolve(ctx, KindTag, tag); err != nil {
			mc.Errors.Logf("rs pool tag %q: %v", tag, err)
			summary.Failed++
			continue
		}
		summary.Created++
	}
	return summary
}
