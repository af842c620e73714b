package migration

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/lokasoft/racktables-to-netbox/internal/config"
	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

// ensureAddress finds the target address for a bare IP or creates a host
// address for it. NAT and load balancer rules regularly reference
// addresses that were never allocated to a host in the source.
func (mc *Context) ensureAddress(ctx context.Context, index *ipIndex, addr netip.Addr) (*netbox.IPAddress, error) {
	if existing, ok := index.lookup(addr.String()); ok {
		return &existing, nil
	}
	created, err := mc.Target.IPAM().CreateIPAddress(ctx, netbox.IPAddressParams{
		Address: hostPrefix(addr),
		Tenant:  mc.TenantID,
		Tags:    []netbox.TagRef{{Name: config.IPv4TagName}},
	})
	if err != nil {
		return nil, err
	}
	index.add(*created)
	return created, nil
}

// natAnnotation builds the type and match description for one side of a
// NAT rule.
func natAnnotation(localSide bool, rule natPorts, other netip.Addr) (natType, match string) {
	if localSide {
		natType = "Static NAT"
		if rule.localPort != 0 {
			natType = "Source NAT"
		}
	} else {
		natType = "Static NAT"
		if rule.remotePort != 0 {
			natType = "Destination NAT"
		}
	}

	match = hostPrefix(other)
	if rule.localPort != 0 || rule.remotePort != 0 {
		match += fmt.Sprintf(" (Port mapping: %d to %d)", rule.localPort, rule.remotePort)
	}
	return natType, match
}

type natPorts struct {
	localPort  int
	remotePort int
}

// MigrateNAT annotates both sides of every IPv4 NAT rule with the rule
// type and the matched address. Addresses missing on the target are
// created so the annotation has somewhere to live.
func MigrateNAT(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	exists, err := mc.Prober.TableExists(ctx, "IPv4NAT")
	if err != nil {
		return summary, err
	}
	if !exists {
		return summary, errors.NewStageSkippedError("nat mappings", "IPv4NAT table not present")
	}

	rules, err := mc.Source.NATRules(ctx)
	if err != nil {
		return summary, err
	}

	addresses, err := mc.Target.IPAM().IPAddresses(ctx, nil)
	if err != nil {
		return summary, err
	}
	index := newIPIndex(addresses)

	for _, rule := range rules {
		local, okL := netip.AddrFromSlice(rule.LocalAddr)
		remote, okR := netip.AddrFromSlice(rule.RemoteAddr)
		if !okL || !okR {
			summary.Failed++
			continue
		}
		ports := natPorts{
			localPort:  int(rule.LocalPort.Int64),
			remotePort: int(rule.RemotePort.Int64),
		}

		sides := []struct {
			addr  netip.Addr
			other netip.Addr
			local bool
		}{
			{local, remote, true},
			{remote, local, false},
		}

		failed := false
		for _, side := range sides {
			target, err := mc.ensureAddress(ctx, index, side.addr)
			if err != nil {
				mc.Errors.Logf("nat address %s: %v", side.addr, err)
				failed = true
				continue
			}

			natType, match := natAnnotation(side.local, ports, side.other)
			fields := map[string]any{
				"NAT_Type":     natType,
				"NAT_Match_IP": match,
			}
			if rule.Description.String != "" {
				fields["IP_Name"] = rule.Description.String
			}

			if _, err := mc.Target.IPAM().PatchIPAddressCustomFields(ctx, target.ID, fields); err != nil {
				mc.Errors.Logf("nat annotation on %s: %v", side.addr, err)
				failed = true
			}
		}

		if failed {
			summary.Failed++
		} else {
			summary.Created++
		}
	}
	return summary, nil
}
