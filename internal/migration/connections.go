package migration

import (
	"context"
	"fmt"

	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

const interfaceObjectType = "dcim.interface"

// cablePairKey identifies a cable by its two interface IDs regardless of
// which side is A.
func cablePairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d-%d", a, b)
}

// existingCablePairs maps every target cable between two interfaces to
// its ID.
func existingCablePairs(ctx context.Context, client *netbox.Client) (map[string]int64, error) {
	cables, err := client.DCIM().Cables(ctx, nil)
	if err != nil {
		return nil, err
	}
	pairs := make(map[string]int64, len(cables))
	for _, cable := range cables {
		if len(cable.ATerminations) != 1 || len(cable.BTerminations) != 1 {
			continue
		}
		a, b := cable.ATerminations[0], cable.BTerminations[0]
		if a.ObjectType != interfaceObjectType || b.ObjectType != interfaceObjectType {
			continue
		}
		pairs[cablePairKey(a.ObjectID, b.ObjectID)] = cable.ID
	}
	return pairs, nil
}

// MigrateConnections turns Link rows into cables between the interfaces
// created by the previous stage. A link whose ports were not both
// migrated is reported and dropped; half a cable is worse than none.
func MigrateConnections(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	links, err := mc.Source.Links(ctx)
	if err != nil {
		return summary, err
	}

	pairs, err := existingCablePairs(ctx, mc.Target)
	if err != nil {
		return summary, err
	}

	for _, link := range links {
		ifaceA, okA := mc.XRef.Get(XrefPort, link.PortA)
		ifaceB, okB := mc.XRef.Get(XrefPort, link.PortB)
		if !okA || !okB {
			mc.Errors.Logf("link %d-%d: one or both ports were not migrated", link.PortA, link.PortB)
			summary.Failed++
			continue
		}

		key := cablePairKey(ifaceA, ifaceB)
		if _, ok := pairs[key]; ok {
			summary.Skipped++
			continue
		}

		cable, err := mc.Target.DCIM().CreateCable(ctx, netbox.CableParams{
			ATerminations: []netbox.Termination{{ObjectType: interfaceObjectType, ObjectID: ifaceA}},
			BTerminations: []netbox.Termination{{ObjectType: interfaceObjectType, ObjectID: ifaceB}},
		})
		if err != nil {
			if errors.IsConflictError(err) {
				summary.Skipped++
				continue
			}
			mc.Errors.Logf("cable %d-%d: %v", link.PortA, link.PortB, err)
			summary.Failed++
			continue
		}

		pairs[key] = cable.ID
		summary.Created++
	}
	return summary, nil
}
