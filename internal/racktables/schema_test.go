package racktables_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lokasoft/racktables-to-netbox/internal/racktables"
)

func TestRacktables(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Racktables Suite")
}

var _ = Describe("PickColumn", func() {
	It("should honor preference order", func() {
		columns := []string{"id", "pctype_name", "name"}
		Expect(racktables.PickColumn(columns, []string{"name", "pctype_name"})).To(Equal("name"))
		Expect(racktables.PickColumn(columns, []string{"pctype_name", "name"})).To(Equal("pctype_name"))
	})

	It("should fall back to a column containing name", func() {
		columns := []string{"id", "display_name"}
		Expect(racktables.PickColumn(columns, []string{"label"})).To(Equal("display_name"))
	})

	It("should fall back to the first column as a last resort", func() {
		Expect(racktables.PickColumn([]string{"id", "dict_value"}, []string{"label"})).To(Equal("id"))
	})

	It("should return empty for an empty column set", func() {
		Expect(racktables.PickColumn(nil, []string{"name"})).To(BeEmpty())
	})
})

var _ = Describe("TablePlan", func() {
	plan := racktables.TablePlan{
		Table:   "PatchCableHeap",
		Columns: []string{"id", "pctype_id", "Color"},
		Picked:  map[string]string{"type": "pctype_id"},
	}

	It("should report columns case-insensitively", func() {
		Expect(plan.Has("color")).To(BeTrue())
		Expect(plan.Has("length")).To(BeFalse())
	})

	It("should expose the picked column per role", func() {
		Expect(plan.Col("type")).To(Equal("pctype_id"))
		Expect(plan.Col("missing")).To(BeEmpty())
	})
})
