package migration

import (
	"context"
	"fmt"

	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

// MigratePatchCables annotates the cables created by the connection stage
// with the physical data from the patch cable heap, creating the cable
// first when the connection stage did not. Column names of the heap
// tables drifted across source releases, so everything goes through the
// schema prober.
func MigratePatchCables(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	heapPlan, err := mc.Prober.Plan(ctx, "PatchCableHeap", map[string][]string{
		"type":   {"pctype_id"},
		"end1":   {"end1_conn_id"},
		"end2":   {"end2_conn_id"},
		"length": {"length"},
	})
	if err != nil {
		return summary, err
	}
	if heapPlan.Missing {
		return summary, errors.NewStageSkippedError("patch cables", "PatchCableHeap table not present")
	}

	typePlan, err := mc.Prober.Plan(ctx, "PatchCableType", map[string][]string{
		"name": {"pctype_name", "name", "type", "label"},
	})
	if err != nil {
		return summary, err
	}
	connectorPlan, err := mc.Prober.Plan(ctx, "PatchCableConnector", map[string][]string{
		"name": {"connector_name", "name", "type", "label"},
	})
	if err != nil {
		return summary, err
	}

	typeNames, err := mc.Source.DictionaryNames(ctx, typePlan)
	if err != nil {
		return summary, err
	}
	connectorNames, err := mc.Source.DictionaryNames(ctx, connectorPlan)
	if err != nil {
		return summary, err
	}

	cables, err := mc.Source.PatchCables(ctx, heapPlan)
	if err != nil {
		return summary, err
	}

	pairs, err := existingCablePairs(ctx, mc.Target)
	if err != nil {
		return summary, err
	}
	annotated := make(map[string]struct{})

	for _, cable := range cables {
		ifaceA, okA := mc.XRef.Get(XrefPort, cable.PortA)
		ifaceB, okB := mc.XRef.Get(XrefPort, cable.PortB)
		if !okA || !okB {
			mc.Errors.Logf("patch cable %d-%d: one or both ports were not migrated", cable.PortA, cable.PortB)
			summary.Failed++
			continue
		}

		key := cablePairKey(ifaceA, ifaceB)
		if _, done := annotated[key]; done {
			summary.Skipped++
			continue
		}
		annotated[key] = struct{}{}

		typeName := typeNames[int(cable.TypeID.Int64)]
		label := typeName
		if cable.Color.String != "" {
			label = fmt.Sprintf("%s-%s", typeName, cable.Color.String)
		}

		fields := map[string]any{
			"Patch_Cable_Type":        typeName,
			"Patch_Cable_Connector_A": connectorNames[int(cable.EndAConnID.Int64)],
			"Patch_Cable_Connector_B": connectorNames[int(cable.EndBConnID.Int64)],
		}
		if cable.Color.String != "" {
			fields["Cable_Color"] = cable.Color.String
		}
		if cable.Length.String != "" {
			fields["Cable_Length"] = cable.Length.String
		}

		if cableID, exists := pairs[key]; exists {
			if _, err := mc.Target.DCIM().PatchCableCustomFields(ctx, cableID, fields); err != nil {
				mc.Errors.Logf("patch cable %d-%d: %v", cable.PortA, cable.PortB, err)
				summary.Failed++
				continue
			}
			summary.Skipped++
			continue
		}

		created, err := mc.Target.DCIM().CreateCable(ctx, netbox.CableParams{
			ATerminations: []netbox.Termination{{ObjectType: interfaceObjectType, ObjectID: ifaceA}},
			BTerminations: []netbox.Termination{{ObjectType: interfaceObjectType, ObjectID: ifaceB}},
			Label:         label,
			Description:   cable.Description.String,
			CustomFields:  fields,
		})
		if err != nil {
			if errors.IsConflictError(err) {
				summary.Skipped++
				continue
			}
			mc.Errors.Logf("patch cable %d-%d: %v", cable.PortA, cable.PortB, err)
			summary.Failed++
			continue
		}

		pairs[key] = created.ID
		summary.Created++
	}
	return summary, nil
}
