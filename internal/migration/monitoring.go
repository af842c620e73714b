package migration

import (
	"context"
	"fmt"

	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

// MigrateMonitoring links devices and VMs to their Cacti graphs. The
// graph URL is reconstructed from the server's base URL, so hosts on a
// server with no base URL configured are reported rather than linked to
// nowhere.
func MigrateMonitoring(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	exists, err := mc.Prober.TableExists(ctx, "CactiGraph")
	if err != nil {
		return summary, err
	}
	if !exists {
		return summary, errors.NewStageSkippedError("monitoring data", "CactiGraph table not present")
	}

	servers, err := mc.Source.CactiServers(ctx)
	if err != nil {
		return summary, err
	}
	graphs, err := mc.Source.CactiGraphs(ctx)
	if err != nil {
		return summary, err
	}

	for _, graph := range graphs {
		baseURL := servers[graph.ServerID]
		if baseURL == "" {
			mc.Errors.Logf("cacti graph %d: server %d has no base url", graph.GraphID, graph.ServerID)
			summary.Failed++
			continue
		}

		fields := map[string]any{
			"Cacti_Server":   baseURL,
			"Cacti_Graph_ID": fmt.Sprintf("%d", graph.GraphID),
			"Monitoring_URL": fmt.Sprintf("%s/graph_view.php?action=tree&select_first=true&graph_id=%d",
				baseURL, graph.GraphID),
		}

		if vmID, ok := mc.XRef.Get(XrefVM, graph.ObjectID); ok {
			if _, err := mc.Target.Virtualization().PatchVirtualMachineCustomFields(ctx, vmID, fields); err != nil {
				mc.Errors.Logf("monitoring on vm %q: %v", graph.ObjectName.String, err)
				summary.Failed++
				continue
			}
			summary.Created++
			continue
		}
		if deviceID, ok := mc.XRef.Get(XrefDevice, graph.ObjectID); ok {
			if _, err := mc.Target.DCIM().PatchDeviceCustomFields(ctx, deviceID, fields); err != nil {
				mc.Errors.Logf("monitoring on device %q: %v", graph.ObjectName.String, err)
				summary.Failed++
				continue
			}
			summary.Created++
			continue
		}
		summary.Skipped++
	}
	return summary, nil
}
