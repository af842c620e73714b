package migration_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lokasoft/racktables-to-netbox/internal/migration"
	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
)

var _ = Describe("CrossReferenceCache", func() {
	var cache *migration.CrossReferenceCache

	BeforeEach(func() {
		cache = migration.NewCrossReferenceCache()
	})

	It("should return what was stored", func() {
		cache.Put(migration.XrefDevice, 42, 1001)

		id, ok := cache.Get(migration.XrefDevice, 42)
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(int64(1001)))
		Expect(cache.Len(migration.XrefDevice)).To(Equal(1))
	})

	It("should keep kinds apart", func() {
		cache.Put(migration.XrefDevice, 42, 1001)

		_, ok := cache.Get(migration.XrefVM, 42)
		Expect(ok).To(BeFalse())
	})

	It("should keep the first mapping on a conflicting overwrite", func() {
		cache.Put(migration.XrefDevice, 42, 1001)
		cache.Put(migration.XrefDevice, 42, 2002)

		id, _ := cache.Get(migration.XrefDevice, 42)
		Expect(id).To(Equal(int64(1001)))
	})

	It("should round-trip through a snapshot", func() {
		// Given a populated cache saved to disk
		dir := GinkgoT().TempDir()
		cache.Put(migration.XrefDevice, 42, 1001)
		cache.Put(migration.XrefPort, 7, 300)
		Expect(cache.Save(dir)).To(Succeed())

		// When a fresh cache loads the snapshot
		restored := migration.NewCrossReferenceCache()
		Expect(restored.Load(dir)).To(Succeed())

		// Then every mapping survives
		id, ok := restored.Get(migration.XrefDevice, 42)
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(int64(1001)))
		id, ok = restored.Get(migration.XrefPort, 7)
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(int64(300)))
	})

	It("should treat a missing snapshot as empty", func() {
		Expect(cache.Load(GinkgoT().TempDir())).To(Succeed())
		Expect(cache.Len(migration.XrefDevice)).To(BeZero())
	})

	It("should rebuild port mappings from target interfaces", func() {
		interfaces := []netbox.Interface{
			{ID: 500, Device: netbox.Ref{Name: "web01"}, Name: "GigabitEthernet0/1"},
			{ID: 501, Device: netbox.Ref{Name: "web01"}, Name: "GigabitEthernet0/2"},
			{ID: 502, Device: netbox.Ref{Name: "db01"}, Name: "eth0"},
		}
		sourcePorts := map[migration.PortKey]int{
			{Device: "web01", Interface: "GigabitEthernet0/1"}: 10,
			{Device: "db01", Interface: "eth0"}:                11,
		}

		rebuilt := cache.RebuildPorts(interfaces, sourcePorts)

		Expect(rebuilt).To(Equal(2))
		id, ok := cache.Get(migration.XrefPort, 10)
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(int64(500)))
		_, ok = cache.Get(migration.XrefPort, 12)
		Expect(ok).To(BeFalse())
	})
})
