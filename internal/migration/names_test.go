package migration_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lokasoft/racktables-to-netbox/internal/config"
	"github.com/lokasoft/racktables-to-netbox/internal/migration"
	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
)

var _ = Describe("NormalizeInterfaceName", func() {
	It("should expand abbreviated prefixes on routers and switches", func() {
		Expect(migration.NormalizeInterfaceName("Gi0/1", config.ObjtypeRouter)).To(Equal("GigabitEthernet0/1"))
		Expect(migration.NormalizeInterfaceName("Te1/0/48", config.ObjtypeSwitch)).To(Equal("TenGigE1/0/48"))
		Expect(migration.NormalizeInterfaceName("Eth 0", config.ObjtypeSwitch)).To(Equal("Ethernet 0"))
	})

	It("should prefer the longest matching prefix", func() {
		// "Port-channel1" matches both "Po" and "Port-channel"
		Expect(migration.NormalizeInterfaceName("Port-channel1", config.ObjtypeSwitch)).To(Equal("Port-Channel1"))
	})

	It("should leave names alone when the prefix is part of a word", func() {
		Expect(migration.NormalizeInterfaceName("Gift", config.ObjtypeRouter)).To(Equal("Gift"))
		Expect(migration.NormalizeInterfaceName("Power", config.ObjtypeRouter)).To(Equal("Power"))
	})

	It("should leave names of other object types alone", func() {
		Expect(migration.NormalizeInterfaceName("Gi0/1", config.ObjtypeServer)).To(Equal("Gi0/1"))
	})

	It("should trim surrounding whitespace", func() {
		Expect(migration.NormalizeInterfaceName("  eth0 ", config.ObjtypeServer)).To(Equal("eth0"))
	})
})

var _ = Describe("DisambiguateName", func() {
	It("should return the name untouched when it is free", func() {
		Expect(migration.DisambiguateName("web01", map[string]struct{}{})).To(Equal("web01"))
	})

	It("should append the first free numeric suffix", func() {
		taken := map[string]struct{}{
			"web01":   {},
			"web01.1": {},
		}
		Expect(migration.DisambiguateName("web01", taken)).To(Equal("web01.2"))
	})
})

var _ = Describe("UniqueVLANName", func() {
	It("should append dashed suffixes until unique", func() {
		taken := map[string]struct{}{"mgmt": {}}
		Expect(migration.UniqueVLANName("mgmt", taken)).To(Equal("mgmt-1"))
		Expect(migration.UniqueVLANName("prod", taken)).To(Equal("prod"))
	})
})

var _ = Describe("ComposeRackName", func() {
	It("should join site, row and rack", func() {
		Expect(migration.ComposeRackName("DC1", "Row1", "Rack5")).To(Equal("DC1.Row1.Rack5"))
	})

	It("should not repeat a row prefix the rack already carries", func() {
		Expect(migration.ComposeRackName("DC1", "A", "A.01")).To(Equal("DC1.A.01"))
		Expect(migration.ComposeRackName("DC1", "A.", "A.01")).To(Equal("DC1.A.01"))
	})
})

var _ = Describe("SplitHWType", func() {
	It("should split off a known vendor prefix", func() {
		vendor, model := migration.SplitHWType("Dell PowerEdge R740")
		Expect(vendor).To(Equal("Dell"))
		Expect(model).To(Equal("PowerEdge R740"))
	})

	It("should accept a bare vendor name", func() {
		vendor, model := migration.SplitHWType("Cisco")
		Expect(vendor).To(Equal("Cisco"))
		Expect(model).To(BeEmpty())
	})

	It("should report no vendor for unknown prefixes", func() {
		vendor, model := migration.SplitHWType("Frobozz 9000")
		Expect(vendor).To(BeEmpty())
		Expect(model).To(Equal("Frobozz 9000"))
	})
})

var _ = Describe("DeviceTypeModel", func() {
	It("should encode height and depth into the model name", func() {
		Expect(migration.DeviceTypeModel("PowerEdge R740", 2, true)).To(Equal("PowerEdge R740-2U-full"))
		Expect(migration.DeviceTypeModel("Catalyst", 1, false)).To(Equal("Catalyst-1U"))
	})
})

var _ = Describe("ParseServicePorts", func() {
	It("should extract every digit run", func() {
		Expect(migration.ParseServicePorts("http-8080")).To(Equal([]int{8080}))
		Expect(migration.ParseServicePorts("80,443")).To(Equal([]int{80, 443}))
	})

	It("should default to port 80 when the name has no digits", func() {
		Expect(migration.ParseServicePorts("https")).To(Equal([]int{80}))
		Expect(migration.ParseServicePorts("")).To(Equal([]int{80}))
	})
})

var _ = Describe("FindDeviceAtLocation", func() {
	devices := []netbox.Device{
		{
			ID:       11,
			Name:     "web01",
			Face:     netbox.Choice{Value: "front"},
			Position: 4,
			Role:     netbox.Ref{Name: "Server"},
			Site:     netbox.Ref{Name: "DC1"},
			Rack:     netbox.Ref{Name: "DC1.A.01"},
		},
	}
	devices[0].DeviceType.Model = "PowerEdge R740-2U-full"
	devices[0].DeviceType.Manufacturer = netbox.Ref{Name: "Dell"}

	location := migration.DeviceLocation{
		Face:         "front",
		Position:     4,
		Role:         "Server",
		Manufacturer: "Dell",
		Model:        "PowerEdge R740-2U-full",
		Site:         "DC1",
		Rack:         "DC1.A.01",
	}

	It("should find a device matching the full location tuple", func() {
		found := migration.FindDeviceAtLocation(devices, location)
		Expect(found).NotTo(BeNil())
		Expect(found.ID).To(Equal(int64(11)))
	})

	It("should not match when any component differs", func() {
		other := location
		other.Position = 5
		Expect(migration.FindDeviceAtLocation(devices, other)).To(BeNil())
	})
})
