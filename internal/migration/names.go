package migration

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/lokasoft/racktables-to-netbox/internal/config"
	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
)

// NormalizeInterfaceName expands abbreviated port prefixes ("Gi0/1" to
// "GigabitEthernet0/1") on routers and switches. Other object types keep
// their names; so does any prefix not followed by a digit, space or dash,
// which keeps names like "Gift" intact.
func NormalizeInterfaceName(name string, objtypeID int) string {
	name = strings.TrimSpace(name)
	if objtypeID != config.ObjtypeRouter && objtypeID != config.ObjtypeSwitch {
		return name
	}

	// Longest matching prefix wins, so "Port-channel1" never hits "Po".
	best := ""
	for prefix := range config.InterfaceNameMappings {
		if !strings.HasPrefix(name, prefix) || len(name) <= len(prefix) {
			continue
		}
		if !strings.ContainsRune("0123456789- ", rune(name[len(prefix)])) {
			continue
		}
		if len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return name
	}
	return config.InterfaceNameMappings[best] + name[len(best):]
}

// FallbackInterfaceName names an interface whose Racktables allocation
// carried no name at all. The suffix is random on purpose: these ports
// have no stable identity in the source.
func FallbackInterfaceName() string {
	return fmt.Sprintf("no_RT_name%d", rand.Intn(100000))
}

// DisambiguateName appends ".1", ".2", ... until the name is free.
func DisambiguateName(name string, taken map[string]struct{}) string {
	if _, exists := taken[name]; !exists {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%d", name, i)
		if _, exists := taken[candidate]; !exists {
			return candidate
		}
	}
}

// UniqueVLANName appends "-1", "-2", ... until the name is unique within
// its group.
func UniqueVLANName(name string, taken map[string]struct{}) string {
	if _, exists := taken[name]; !exists {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", name, i)
		if _, exists := taken[candidate]; !exists {
			return candidate
		}
	}
}

// ComposeRackName builds the globally unique "site.row.rack" form. A rack
// already carrying its row prefix only gets the site prepended.
func ComposeRackName(site, row, rack string) string {
	if strings.HasPrefix(rack, strings.TrimRight(row, ".")+".") {
		return site + "." + rack
	}
	return site + "." + row + "." + rack
}

// DeviceLocation is the identity tuple of a mounted device. Two source
// rows describing the same tuple are the same physical device seen twice.
type DeviceLocation struct {
	Face         string
	Position     float64
	Role         string
	Manufacturer string
	Model        string
	Site         string
	Rack         string
}

// FindDeviceAtLocation returns the existing device occupying exactly this
// location, or nil.
func FindDeviceAtLocation(devices []netbox.Device, loc DeviceLocation) *netbox.Device {
	for i := range devices {
		d := &devices[i]
		if d.Face.Value == loc.Face &&
			d.Position == loc.Position &&
			d.Role.Name == loc.Role &&
			d.DeviceType.Manufacturer.Name == loc.Manufacturer &&
			d.DeviceType.Model == loc.Model &&
			d.Site.Name == loc.Site &&
			d.Rack.Name == loc.Rack {
			return d
		}
	}
	return nil
}

// SplitHWType separates a Racktables hardware type string into
// manufacturer and bare model using the known vendor prefixes.
func SplitHWType(hwType string) (manufacturer, model string) {
	for vendor := range config.Manufacturers {
		if hwType == vendor || strings.HasPrefix(hwType, vendor+" ") {
			model = strings.TrimSpace(strings.TrimPrefix(hwType, vendor))
			return vendor, model
		}
	}
	return "", hwType
}

// DeviceTypeModel composes the synthetic model name carrying the height
// and depth of the device, e.g. "PowerEdge R740-2U-full".
func DeviceTypeModel(baseType string, height int, fullDepth bool) string {
	model := fmt.Sprintf("%s-%dU", baseType, height)
	if fullDepth {
		model += "-full"
	}
	return model
}

// ParseServicePorts extracts the numeric runs from a port name, e.g.
// "http-8080" yields [8080]. Names with no digits default to port 80.
func ParseServicePorts(portName string) []int {
	var ports []int
	current := 0
	inRun := false
	for _, r := range portName {
		if r >= '0' && r <= '9' {
			current = current*10 + int(r-'0')
			inRun = true
			continue
		}
		if inRun {
			ports = append(ports, current)
			current = 0
			inRun = false
		}
	}
	if inRun {
		ports = append(ports, current)
	}
	if len(ports) == 0 {
		return []int{80}
	}
	return ports
}
