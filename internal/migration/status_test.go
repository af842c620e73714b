package migration_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lokasoft/racktables-to-netbox/internal/migration"
)

var _ = Describe("ClassifyPrefixStatus", func() {
	It("should recognize reservation keywords", func() {
		Expect(migration.ClassifyPrefixStatus("Reserved for expansion", "", "")).To(Equal("reserved"))
		Expect(migration.ClassifyPrefixStatus("", "planned rollout Q3", "")).To(Equal("reserved"))
	})

	It("should recognize deprecation keywords", func() {
		Expect(migration.ClassifyPrefixStatus("old DMZ", "", "")).To(Equal("deprecated"))
		Expect(migration.ClassifyPrefixStatus("", "decommissioned 2019", "")).To(Equal("deprecated"))
	})

	It("should recognize container keywords in name or comment", func() {
		Expect(migration.ClassifyPrefixStatus("", "supernet for branch offices", "")).To(Equal("container"))
		Expect(migration.ClassifyPrefixStatus("[create network here]", "", "")).To(Equal("container"))
		Expect(migration.ClassifyPrefixStatus("free block", "", "")).To(Equal("container"))
	})

	It("should recognize active keywords", func() {
		Expect(migration.ClassifyPrefixStatus("production web", "", "")).To(Equal("active"))
	})

	It("should fall through to active for any other named prefix", func() {
		Expect(migration.ClassifyPrefixStatus("backbone-42", "", "")).To(Equal("active"))
	})

	It("should honor the configured default for blank prefixes", func() {
		Expect(migration.ClassifyPrefixStatus("", "", "")).To(Equal("container"))
		Expect(migration.ClassifyPrefixStatus("", "", "active")).To(Equal("active"))
		Expect(migration.ClassifyPrefixStatus("  ", "  ", "reserved")).To(Equal("reserved"))
	})

	It("should match case-insensitively", func() {
		Expect(migration.ClassifyPrefixStatus("RESERVED", "", "")).To(Equal("reserved"))
	})
})
