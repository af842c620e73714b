package migration

import (
	"context"
	"fmt"
	"net/netip"

	"go.uber.org/zap"

	"github.com/lokasoft/racktables-to-netbox/internal/ipspace"
	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

const (
	availableTagName = "Available"
	autoGenTagName   = "Auto-Generated"
)

// targetPrefixes loads the target prefix list split into real prefixes
// and the auto-generated ones from earlier runs.
func targetPrefixes(ctx context.Context, mc *Context) (real []netip.Prefix, existing map[string]struct{}, err error) {
	all, err := mc.Target.IPAM().Prefixes(ctx, nil)
	if err != nil {
		return nil, nil, err
	}

	existing = make(map[string]struct{}, len(all))
	for _, p := range all {
		existing[p.Prefix] = struct{}{}

		generated := false
		for _, tag := range p.Tags {
			if tag.Name == autoGenTagName {
				generated = true
				break
			}
		}
		if generated {
			continue
		}
		parsed, perr := netip.ParsePrefix(p.Prefix)
		if perr != nil {
			zap.S().Warnw("unparsable prefix on target", "prefix", p.Prefix)
			continue
		}
		real = append(real, parsed)
	}
	return real, existing, nil
}

// MigrateAvailableSubnets proposes aligned free subnets inside every
// prefix that has children, and records them as tagged placeholder
// prefixes. Placeholders from earlier runs are excluded from the
// analysis, otherwise each run would subdivide its own output.
func MigrateAvailableSubnets(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	real, existing, err := targetPrefixes(ctx, mc)
	if err != nil {
		return summary, err
	}
	if len(real) == 0 {
		return summary, errors.NewStageSkippedError("available subnets", "no prefixes on target")
	}

	tags := []netbox.TagRef{{Name: availableTagName}, {Name: autoGenTagName}}
	forest := ipspace.BuildForest(real)

	for parent, children := range forest.Children {
		for _, gap := range ipspace.Gaps(parent, children) {
			for _, candidate := range ipspace.CandidateSubnets(gap, parent.Bits()) {
				prefixStr := candidate.String()
				if _, taken := existing[prefixStr]; taken {
					summary.Skipped++
					continue
				}

				if err := mc.createAvailablePrefix(ctx, prefixStr, tags); err != nil {
					if errors.IsConflictError(err) {
						summary.Skipped++
						continue
					}
					mc.Errors.Logf("available subnet %s: %v", prefixStr, err)
					summary.Failed++
					continue
				}
				existing[prefixStr] = struct{}{}
				summary.Created++
			}
		}
	}
	return summary, nil
}

// createAvailablePrefix tries the "available" status first; targets that
// predate it fall back to "container".
func (mc *Context) createAvailablePrefix(ctx context.Context, prefix string, tags []netbox.TagRef) error {
	params := netbox.PrefixParams{
		Prefix:      prefix,
		Status:      "available",
		Description: "Available subnet",
		Tenant:      mc.TenantID,
		Tags:        tags,
	}
	_, err := mc.Target.IPAM().CreatePrefix(ctx, params)
	if err == nil || errors.IsConflictError(err) {
		return err
	}
	params.Status = "container"
	_, err = mc.Target.IPAM().CreatePrefix(ctx, params)
	return err
}

// MigrateIPRanges records free address runs: the interior gaps of parent
// prefixes and the unused space of childless prefixes, measured against
// the addresses already on the target.
func MigrateIPRanges(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	real, _, err := targetPrefixes(ctx, mc)
	if err != nil {
		return summary, err
	}
	if len(real) == 0 {
		return summary, errors.NewStageSkippedError("ip ranges", "no prefixes on target")
	}

	addresses, err := mc.Target.IPAM().IPAddresses(ctx, nil)
	if err != nil {
		return summary, err
	}
	var used []netip.Addr
	for _, a := range addresses {
		if parsed, perr := netip.ParsePrefix(a.Address); perr == nil {
			used = append(used, parsed.Addr())
		}
	}

	ranges, err := mc.Target.IPAM().IPRanges(ctx, nil)
	if err != nil {
		return summary, err
	}
	seen := make(map[string]struct{}, len(ranges))
	for _, r := range ranges {
		startP, serr := netip.ParsePrefix(r.StartAddress)
		endP, eerr := netip.ParsePrefix(r.EndAddress)
		if serr != nil || eerr != nil {
			continue
		}
		seen[rangeKey(ipspace.Range{First: startP.Addr(), Last: endP.Addr()})] = struct{}{}
	}

	forest := ipspace.BuildForest(real)

	create := func(r ipspace.Range, bits int) {
		key := rangeKey(r)
		if _, dup := seen[key]; dup {
			summary.Skipped++
			return
		}

		tag := familyTag(4)
		if !r.First.Is4() {
			tag = familyTag(6)
		}
		_, err := mc.Target.IPAM().CreateIPRange(ctx, netbox.IPRangeParams{
			StartAddress: fmt.Sprintf("%s/%d", r.First, bits),
			EndAddress:   fmt.Sprintf("%s/%d", r.Last, bits),
			Status:       "available",
			Description:  "Free address range",
			Tags:         []netbox.TagRef{{Name: availableTagName}, {Name: tag}},
		})
		if err != nil {
			if errors.IsConflictError(err) {
				summary.Skipped++
				return
			}
			mc.Errors.Logf("ip range %s: %v", key, err)
			summary.Failed++
			return
		}
		seen[key] = struct{}{}
		summary.Created++
	}

	for parent, children := range forest.Children {
		for _, gap := range ipspace.InteriorGaps(parent, children) {
			create(gap, parent.Bits())
		}
	}
	for _, prefix := range real {
		if _, hasChildren := forest.Children[prefix]; hasChildren {
			continue
		}
		for _, free := range ipspace.FreeRanges(prefix, used) {
			create(free, prefix.Bits())
		}
	}
	return summary, nil
}

func rangeKey(r ipspace.Range) string {
	return fmt.Sprintf("%s-%s", r.First, r.Last)
}
