package migration

import (
	"github.com/lokasoft/racktables-to-netbox/internal/config"
	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/internal/racktables"
	"github.com/lokasoft/racktables-to-netbox/pkg/scheduler"
)

// VLANRef remembers which target VLAN a source network ended up bound to,
// so the prefix stage can attach prefixes without re-querying.
type VLANRef struct {
	GroupName string
	Name      string
	ID        int64
}

// Context carries everything a stage needs. It is built once during setup
// and shared read-mostly across the stages; the maps it holds are only
// mutated by the stage that owns them, stages run sequentially.
type Context struct {
	Settings *config.Settings
	Source   *racktables.Repository
	Prober   *racktables.Prober
	Target   *netbox.Client
	Resolver *EntityResolver
	XRef     *CrossReferenceCache
	Errors   *ErrorSink
	Prefetch *scheduler.Scheduler

	// SiteID and TenantID are resolved during setup when the corresponding
	// CLI flags are set; zero means no association.
	SiteID   int64
	TenantID int64

	// VLANByNetwork is filled by the VLAN stage and consumed by the prefix
	// stage. The key is the source network ID.
	VLANByNetwork map[int]VLANRef

	// AllocatedIPs collects the bare addresses the allocation stage has
	// seen, so the unallocated stage only picks up the rest.
	AllocatedIPs map[string]struct{}

	// attrNames caches the attribute ID to name mapping, loaded on first
	// use by attributeSummary.
	attrNames map[int]string
}
