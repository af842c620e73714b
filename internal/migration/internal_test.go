package migration

import (
	"database/sql"
	"net/netip"
	"strings"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lokasoft/racktables-to-netbox/internal/config"
	"github.com/lokasoft/racktables-to-netbox/internal/models"
	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
)

func atom(objectID int, unit int, face string) models.RackSpaceAtom {
	return models.RackSpaceAtom{
		ObjectID: sql.NullInt64{Int64: int64(objectID), Valid: true},
		UnitNo:   unit,
		Atom:     face,
	}
}

var _ = ginkgo.Describe("footprints", func() {
	ginkgo.It("should collapse atoms into one footprint per object", func() {
		atoms := []models.RackSpaceAtom{
			atom(1, 10, "front"),
			atom(1, 11, "front"),
			atom(1, 10, "rear"),
			atom(1, 11, "rear"),
			atom(2, 40, "rear"),
		}

		byObject := footprints(atoms)

		Expect(byObject).To(HaveLen(2))
		full := byObject[1]
		Expect(full.height()).To(Equal(2))
		Expect(full.face()).To(Equal("front"))
		Expect(full.fullDepth()).To(BeTrue())
		Expect(full.minUnit).To(Equal(10))

		rearOnly := byObject[2]
		Expect(rearOnly.height()).To(Equal(1))
		Expect(rearOnly.face()).To(Equal("rear"))
		Expect(rearOnly.fullDepth()).To(BeFalse())
	})

	ginkgo.It("should ignore atoms with no object", func() {
		atoms := []models.RackSpaceAtom{
			{UnitNo: 5, Atom: "front"},
		}
		Expect(footprints(atoms)).To(BeEmpty())
	})
})

var _ = ginkgo.Describe("deviceIdentity", func() {
	ginkgo.It("should split a vendor-prefixed hardware type", func() {
		role, manufacturer, model := deviceIdentity(config.ObjtypeServer, "Dell PowerEdge R740", 2, true)
		Expect(role).To(Equal("Server"))
		Expect(manufacturer).To(Equal("Dell"))
		Expect(model).To(Equal("PowerEdge R740-2U-full"))
	})

	ginkgo.It("should fall back to the role when there is no hardware type", func() {
		role, manufacturer, model := deviceIdentity(config.ObjtypeServer, "", 1, false)
		Expect(role).To(Equal("Server"))
		Expect(manufacturer).To(Equal("Server"))
		Expect(model).To(Equal("Server-1U"))
	})

	ginkgo.It("should keep an unknown vendor inside the model", func() {
		_, manufacturer, model := deviceIdentity(config.ObjtypeServer, "Frobozz 9000", 1, false)
		Expect(manufacturer).To(Equal("Server"))
		Expect(model).To(Equal("Frobozz 9000-1U"))
	})

	ginkgo.It("should mark container objtypes as parents", func() {
		role, _, model := deviceIdentity(config.ObjtypeServerChassis, "", 4, true)
		Expect(role).To(Equal("Server Chassis"))
		Expect(model).To(HaveSuffix("-parent"))
	})

	ginkgo.It("should name unmapped objtypes Unknown", func() {
		role, _, _ := deviceIdentity(99999, "", 1, false)
		Expect(role).To(Equal("Unknown"))
	})
})

var _ = ginkgo.Describe("natAnnotation", func() {
	remote := netip.MustParseAddr("203.0.113.5")

	ginkgo.It("should label the local side of a port-forwarding rule as source NAT", func() {
		natType, match := natAnnotation(true, natPorts{localPort: 8080, remotePort: 80}, remote)
		Expect(natType).To(Equal("Source NAT"))
		Expect(match).To(Equal("203.0.113.5/32 (Port mapping: 8080 to 80)"))
	})

	ginkgo.It("should label the remote side as destination NAT", func() {
		natType, _ := natAnnotation(false, natPorts{localPort: 8080, remotePort: 80}, remote)
		Expect(natType).To(Equal("Destination NAT"))
	})

	ginkgo.It("should label portless rules as static NAT", func() {
		natType, match := natAnnotation(true, natPorts{}, remote)
		Expect(natType).To(Equal("Static NAT"))
		Expect(match).To(Equal("203.0.113.5/32"))
	})
})

var _ = ginkgo.Describe("configAddr", func() {
	ginkgo.It("should decode the leading integer as an IPv4 address", func() {
		addr, ok := configAddr("3232235777:80:rr")
		Expect(ok).To(BeTrue())
		Expect(addr).To(Equal(netip.MustParseAddr("192.168.1.1")))
	})

	ginkgo.It("should reject non-numeric configs", func() {
		_, ok := configAddr("round-robin")
		Expect(ok).To(BeFalse())
	})
})

var _ = ginkgo.Describe("cablePairKey", func() {
	ginkgo.It("should be order independent", func() {
		Expect(cablePairKey(5, 3)).To(Equal(cablePairKey(3, 5)))
		Expect(cablePairKey(3, 5)).To(Equal("3-5"))
	})
})

var _ = ginkgo.Describe("interfaceIndex", func() {
	ginkgo.It("should keep same-named interfaces of different devices apart", func() {
		// Given two devices that both carry a ge-0/0/0, as happens when a
		// duplicate source name was suffixed into a second device
		existing := []netbox.Interface{
			{ID: 101, Device: netbox.Ref{ID: 10, Name: "sw1"}, Name: "ge-0/0/0"},
			{ID: 202, Device: netbox.Ref{ID: 11, Name: "sw1.1"}, Name: "ge-0/0/0"},
		}

		// When the index is built
		byKey := interfaceIndex(existing)

		// Then each lookup is scoped to its own device
		Expect(byKey).To(HaveLen(2))
		Expect(byKey[ifaceKey{device: 10, name: "ge-0/0/0"}]).To(Equal(int64(101)))
		Expect(byKey[ifaceKey{device: 11, name: "ge-0/0/0"}]).To(Equal(int64(202)))

		_, onOtherDevice := byKey[ifaceKey{device: 12, name: "ge-0/0/0"}]
		Expect(onOtherDevice).To(BeFalse())
	})
})

var _ = ginkgo.Describe("vlanXrefKey", func() {
	ginkgo.It("should separate the same VLAN ID across domains", func() {
		Expect(vlanXrefKey(1, 100)).NotTo(Equal(vlanXrefKey(2, 100)))
	})

	ginkgo.It("should be stable within one domain", func() {
		Expect(vlanXrefKey(3, 4094)).To(Equal(vlanXrefKey(3, 4094)))
	})
})

var _ = ginkgo.Describe("sourcePortIndex", func() {
	ginkgo.It("should index normalized port names per device", func() {
		objects := []models.Object{
			{ID: 42, Name: sql.NullString{String: "sw1", Valid: true}, ObjtypeID: config.ObjtypeSwitch},
			{ID: 43, ObjtypeID: config.ObjtypeSwitch},
		}
		portsByObject := map[int][]models.Port{
			42: {{ID: 7, Name: sql.NullString{String: "Gi0/1", Valid: true}}},
			43: {{ID: 8, Name: sql.NullString{String: "Gi0/2", Valid: true}}},
		}

		idx := sourcePortIndex(objects, portsByObject)

		// The unnamed object cannot be matched and contributes nothing.
		Expect(idx).To(HaveLen(1))
		Expect(idx[PortKey{Device: "sw1", Interface: "GigabitEthernet0/1"}]).To(Equal(7))
	})
})

var _ = ginkgo.Describe("addressDescription", func() {
	ginkgo.It("should carry the comment, bounded to 200 characters", func() {
		long := strings.Repeat("x", 250)
		desc := addressDescription(models.Address{Comment: sql.NullString{String: long, Valid: true}})
		Expect(desc).To(HaveLen(200))
	})

	ginkgo.It("should be empty when the row has no comment", func() {
		Expect(addressDescription(models.Address{})).To(Equal(""))
	})
})
