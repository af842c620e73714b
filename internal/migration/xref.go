package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lokasoft/racktables-to-netbox/internal/models"
	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
)

// Xref kinds. Each kind maps a Racktables row ID to the ID of the target
// object it became.
const (
	XrefPort    = "port"
	XrefDevice  = "device"
	XrefVM      = "vm"
	XrefRack    = "rack"
	XrefSite    = "site"
	XrefNetwork = "network"
	XrefVLAN    = "vlan"
)

// CrossReferenceCache remembers which target object each source row
// became. First writer wins: a conflicting overwrite is logged as a
// consistency warning and the original mapping kept, so a re-run can
// never silently repoint a source row.
type CrossReferenceCache struct {
	entries map[string]map[int]int64
}

func NewCrossReferenceCache() *CrossReferenceCache {
	return &CrossReferenceCache{entries: make(map[string]map[int]int64)}
}

func (c *CrossReferenceCache) Put(kind string, sourceID int, targetID int64) {
	byID, ok := c.entries[kind]
	if !ok {
		byID = make(map[int]int64)
		c.entries[kind] = byID
	}
	if existing, ok := byID[sourceID]; ok {
		if existing != targetID {
			zap.S().Warnw("cross-reference conflict, keeping original",
				"kind", kind, "source_id", sourceID, "kept", existing, "rejected", targetID)
		}
		return
	}
	byID[sourceID] = targetID
}

func (c *CrossReferenceCache) Get(kind string, sourceID int) (int64, bool) {
	id, ok := c.entries[kind][sourceID]
	return id, ok
}

func (c *CrossReferenceCache) Len(kind string) int {
	return len(c.entries[kind])
}

// Save writes the cache as a JSON snapshot. The snapshot is advisory;
// RebuildPorts can reconstruct the port mappings from target state when
// it is lost.
func (c *CrossReferenceCache) Save(dir string) error {
	payload, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cross-reference snapshot: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "xref.json"), payload, 0o644)
}

// Load reads a snapshot written by Save. A missing file is not an error.
func (c *CrossReferenceCache) Load(dir string) error {
	payload, err := os.ReadFile(filepath.Join(dir, "xref.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(payload, &c.entries)
}

// PortKey identifies an interface by owning device name and normalized
// interface name.
type PortKey struct {
	Device    string
	Interface string
}

// RebuildPorts re-derives port-to-interface mappings by matching the
// target's interfaces against the source ports. sourcePorts maps a
// (device, normalized name) pair to the Racktables port ID.
func (c *CrossReferenceCache) RebuildPorts(interfaces []netbox.Interface, sourcePorts map[PortKey]int) int {
	rebuilt := 0
	for _, iface := range interfaces {
		key := PortKey{Device: iface.Device.Name, Interface: iface.Name}
		if portID, ok := sourcePorts[key]; ok {
			c.Put(XrefPort, portID, iface.ID)
			rebuilt++
		}
	}
	return rebuilt
}

// sourcePortIndex maps (device name, normalized port name) pairs to their
// source port IDs. Unnamed objects and ports that normalize to nothing
// cannot be matched and are left out.
func sourcePortIndex(objects []models.Object, portsByObject map[int][]models.Port) map[PortKey]int {
	idx := make(map[PortKey]int)
	for _, obj := range objects {
		deviceName := obj.Name.String
		if deviceName == "" {
			continue
		}
		for _, port := range portsByObject[obj.ID] {
			name := NormalizeInterfaceName(port.Name.String, obj.ObjtypeID)
			if name == "" {
				continue
			}
			idx[PortKey{Device: deviceName, Interface: name}] = port.ID
		}
	}
	return idx
}

// RestorePortMappings re-derives the port cross-references from live
// target state. It runs at setup when the snapshot holds no port entries;
// without it a re-run could not wire cables for ports whose interfaces
// already exist on the target.
func RestorePortMappings(ctx context.Context, mc *Context) error {
	interfaces, err := mc.Target.DCIM().Interfaces(ctx, nil)
	if err != nil {
		return err
	}
	if len(interfaces) == 0 {
		return nil
	}

	objects, err := mc.Source.Objects(ctx)
	if err != nil {
		return err
	}
	portsByObject := make(map[int][]models.Port, len(objects))
	for _, obj := range objects {
		ports, err := mc.Source.Ports(ctx, obj.ID)
		if err != nil {
			return err
		}
		portsByObject[obj.ID] = ports
	}

	rebuilt := mc.XRef.RebuildPorts(interfaces, sourcePortIndex(objects, portsByObject))
	zap.S().Infow("rebuilt port cross-references from target state", "count", rebuilt)
	return nil
}
