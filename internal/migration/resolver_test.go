package migration_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lokasoft/racktables-to-netbox/internal/migration"
	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

// fakeKind counts calls so the tests can assert on caching behavior.
type fakeKind struct {
	listing     map[string]int64
	createErr   error
	findID      int64
	createCalls int
	findCalls   int
	nextID      int64
}

func (f *fakeKind) ops() migration.KindOps {
	return migration.KindOps{
		List: func(context.Context) (map[string]int64, error) {
			return f.listing, nil
		},
		Create: func(_ context.Context, name string) (int64, error) {
			f.createCalls++
			if f.createErr != nil {
				return 0, f.createErr
			}
			f.nextID++
			return f.nextID, nil
		},
		Find: func(_ context.Context, name string) (int64, bool, error) {
			f.findCalls++
			if f.findID == 0 {
				return 0, false, nil
			}
			return f.findID, true, nil
		},
	}
}

var _ = Describe("EntityResolver", func() {
	var (
		ctx      context.Context
		fake     *fakeKind
		resolver *migration.EntityResolver
	)

	BeforeEach(func() {
		ctx = context.Background()
		fake = &fakeKind{listing: map[string]int64{"existing": 7}, nextID: 100}
		resolver = migration.NewEntityResolver(netbox.NewClient("http://netbox.invalid", "token")).
			WithOps(migration.KindTag, fake.ops())
	})

	It("should serve names from the lazily loaded listing", func() {
		id, err := resolver.Resolve(ctx, migration.KindTag, "existing")
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal(int64(7)))
		Expect(fake.createCalls).To(BeZero())
	})

	It("should create missing names and cache the result", func() {
		// When the same name is resolved twice
		first, err := resolver.Resolve(ctx, migration.KindTag, "fresh")
		Expect(err).NotTo(HaveOccurred())
		second, err := resolver.Resolve(ctx, migration.KindTag, "fresh")
		Expect(err).NotTo(HaveOccurred())

		// Then only one create happened
		Expect(second).To(Equal(first))
		Expect(fake.createCalls).To(Equal(1))
	})

	It("should re-find a name after a creation conflict", func() {
		fake.createErr = errors.NewConflictError("tag", "contested")
		fake.findID = 55

		id, err := resolver.Resolve(ctx, migration.KindTag, "contested")
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal(int64(55)))
		Expect(fake.findCalls).To(BeNumerically(">=", 1))
	})

	It("should remember names that failed to resolve", func() {
		fake.createErr = fmt.Errorf("boom")

		_, err := resolver.Resolve(ctx, migration.KindTag, "doomed")
		Expect(err).To(HaveOccurred())

		// The second attempt fails fast without another create.
		_, err = resolver.Resolve(ctx, migration.KindTag, "doomed")
		Expect(errors.IsResourceNotFoundError(err)).To(BeTrue())
		Expect(fake.createCalls).To(Equal(1))
	})

	It("should reject unknown kinds", func() {
		_, err := resolver.Resolve(ctx, "no-such-kind", "anything")
		Expect(err).To(HaveOccurred())
	})

	It("should prefer seeded mappings over the listing", func() {
		resolver.Register(migration.KindTag, "existing", 99)

		id, ok := resolver.Lookup(migration.KindTag, "existing")
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(int64(99)))

		resolved, err := resolver.Resolve(ctx, migration.KindTag, "existing")
		Expect(err).NotTo(HaveOccurred())
		Expect(resolved).To(Equal(int64(99)))
	})
})
