package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/lokasoft/racktables-to-netbox/internal/config"
	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

// Summary counts what one stage did. Skipped covers records that already
// exist on the target, which is the normal case on re-runs.
type Summary struct {
	Created int
	Skipped int
	Failed  int
}

func (s *Summary) add(other Summary) {
	s.Created += other.Created
	s.Skipped += other.Skipped
	s.Failed += other.Failed
}

// Stage is one unit of the migration. Extended stages carry data beyond
// core DCIM/IPAM and can be excluded as a group.
type Stage struct {
	Name     string
	Extended bool
	Enabled  func(s *config.Stages) bool
	Run      func(ctx context.Context, mc *Context) (Summary, error)
}

// Stages returns the full ordered registry. Order is load-bearing: every
// stage depends on the identifiers established by the ones before it.
func Stages() []Stage {
	return []Stage{
		{Name: "tags", Enabled: func(*config.Stages) bool { return true }, Run: MigrateTags},
		{Name: "vlan groups", Enabled: func(s *config.Stages) bool { return s.VLANGroups }, Run: MigrateVLANGroups},
		{Name: "vlans", Enabled: func(s *config.Stages) bool { return s.VLANs }, Run: MigrateVLANs},
		{Name: "virtual machines", Enabled: func(s *config.Stages) bool { return s.MountedVMs || s.UnmountedVMs }, Run: MigrateVirtualMachines},
		{Name: "sites and racks", Enabled: func(s *config.Stages) bool { return s.RackedDevices }, Run: MigrateSitesAndRacks},
		{Name: "racked devices", Enabled: func(s *config.Stages) bool { return s.RackedDevices }, Run: MigrateRackedDevices},
		{Name: "non-racked devices", Enabled: func(s *config.Stages) bool { return s.NonRackedDevices }, Run: MigrateNonRackedDevices},
		{Name: "interfaces", Enabled: func(s *config.Stages) bool { return s.Interfaces }, Run: MigrateInterfaces},
		{Name: "interface connections", Enabled: func(s *config.Stages) bool { return s.InterfaceConnections }, Run: MigrateConnections},
		{Name: "ip networks", Enabled: func(s *config.Stages) bool { return s.IPNetworks }, Run: MigrateNetworks},
		{Name: "allocated ips", Enabled: func(s *config.Stages) bool { return s.IPAllocated }, Run: MigrateAllocatedIPs},
		{Name: "unallocated ips", Enabled: func(s *config.Stages) bool { return s.IPUnallocated }, Run: MigrateUnallocatedIPs},

		{Name: "patch cables", Extended: true, Enabled: func(s *config.Stages) bool { return s.PatchCables }, Run: MigratePatchCables},
		{Name: "file attachments", Extended: true, Enabled: func(s *config.Stages) bool { return s.Files }, Run: MigrateFiles},
		{Name: "virtual services", Extended: true, Enabled: func(s *config.Stages) bool { return s.VirtualServices }, Run: MigrateVirtualServices},
		{Name: "nat mappings", Extended: true, Enabled: func(s *config.Stages) bool { return s.NATMappings }, Run: MigrateNAT},
		{Name: "load balancing", Extended: true, Enabled: func(s *config.Stages) bool { return s.LoadBalancing }, Run: MigrateLoadBalancing},
		{Name: "monitoring data", Extended: true, Enabled: func(s *config.Stages) bool { return s.MonitoringData }, Run: MigrateMonitoring},
		{Name: "available subnets", Extended: true, Enabled: func(s *config.Stages) bool { return s.AvailableSubnets }, Run: MigrateAvailableSubnets},
		{Name: "ip ranges", Extended: true, Enabled: func(s *config.Stages) bool { return s.IPRanges }, Run: MigrateIPRanges},
	}
}

// Pipeline runs the stage registry against one Context.
type Pipeline struct {
	stages       []Stage
	basicOnly    bool
	extendedOnly bool
}

func NewPipeline(basicOnly, extendedOnly bool) *Pipeline {
	return &Pipeline{stages: Stages(), basicOnly: basicOnly, extendedOnly: extendedOnly}
}

// Run executes every selected stage in order. A skipped stage (missing
// source table, disabled toggle) never fails the run; a stage returning
// any other error stops the pipeline, because later stages depend on its
// output.
func (p *Pipeline) Run(ctx context.Context, mc *Context) (Summary, error) {
	var total Summary
	banner := color.New(color.FgCyan, color.Bold)
	start := time.Now()

	for _, stage := range p.stages {
		if p.basicOnly && stage.Extended {
			continue
		}
		if p.extendedOnly && !stage.Extended {
			continue
		}
		if !stage.Enabled(&mc.Settings.Stages) {
			zap.S().Infow("stage disabled", "stage", stage.Name)
			continue
		}

		banner.Printf("==> %s\n", stage.Name)
		stageStart := time.Now()

		summary, err := stage.Run(ctx, mc)
		if err != nil {
			if errors.IsStageSkippedError(err) {
				color.Yellow("    skipped: %v", err)
				continue
			}
			return total, fmt.Errorf("stage %s failed: %w", stage.Name, err)
		}

		total.add(summary)
		zap.S().Infow("stage complete",
			"stage", stage.Name,
			"created", summary.Created,
			"skipped", summary.Skipped,
			"failed", summary.Failed,
			"took", time.Since(stageStart).Round(time.Millisecond))
	}

	if mc.Settings.StoreData {
		if err := mc.XRef.Save(mc.Settings.SnapshotDir); err != nil {
			zap.S().Warnw("failed to save cross-reference snapshot", "error", err)
		}
	}

	color.Green("migration finished in %s: %d created, %d skipped, %d failed",
		time.Since(start).Round(time.Second), total.Created, total.Skipped, total.Failed)
	return total, nil
}
