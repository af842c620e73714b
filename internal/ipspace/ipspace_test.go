package ipspace_test

import (
	"net/netip"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lokasoft/racktables-to-netbox/internal/ipspace"
)

func TestIPSpace(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "IPSpace Suite")
}

func mustPrefix(s string) netip.Prefix {
	return netip.MustParsePrefix(s)
}

var _ = Describe("BuildForest", func() {
	It("should attach each prefix to its minimal strict superset", func() {
		// Given a /16 containing a /24 containing a /26
		prefixes := []netip.Prefix{
			mustPrefix("10.0.0.0/16"),
			mustPrefix("10.0.0.0/24"),
			mustPrefix("10.0.0.0/26"),
			mustPrefix("192.168.0.0/24"),
		}

		// When the forest is built
		forest := ipspace.BuildForest(prefixes)

		// Then the /26 hangs off the /24, not the /16
		Expect(forest.Children[mustPrefix("10.0.0.0/24")]).To(ConsistOf(mustPrefix("10.0.0.0/26")))
		Expect(forest.Children[mustPrefix("10.0.0.0/16")]).To(ConsistOf(mustPrefix("10.0.0.0/24")))
		Expect(forest.Standalone).To(ConsistOf(mustPrefix("10.0.0.0/16"), mustPrefix("192.168.0.0/24")))
	})

	It("should not mix address families", func() {
		prefixes := []netip.Prefix{
			mustPrefix("::/0"),
			mustPrefix("10.0.0.0/24"),
		}

		forest := ipspace.BuildForest(prefixes)

		Expect(forest.Standalone).To(ConsistOf(mustPrefix("::/0"), mustPrefix("10.0.0.0/24")))
	})
})

var _ = Describe("Gaps", func() {
	It("should find the gap between two children", func() {
		// Given a /24 with /26 children at the bottom and top
		parent := mustPrefix("10.0.0.0/24")
		children := []netip.Prefix{
			mustPrefix("10.0.0.0/26"),
			mustPrefix("10.0.0.192/26"),
		}

		// When gaps are computed
		gaps := ipspace.Gaps(parent, children)

		// Then exactly the middle range is free
		Expect(gaps).To(HaveLen(1))
		Expect(gaps[0].First).To(Equal(netip.MustParseAddr("10.0.0.64")))
		Expect(gaps[0].Last).To(Equal(netip.MustParseAddr("10.0.0.127")))
	})

	It("should cap an inner gap at one block of the preceding child's size", func() {
		parent := mustPrefix("10.0.0.0/24")
		children := []netip.Prefix{
			mustPrefix("10.0.0.0/27"),
			mustPrefix("10.0.0.192/26"),
		}

		gaps := ipspace.Gaps(parent, children)

		Expect(gaps).To(HaveLen(1))
		Expect(gaps[0].First).To(Equal(netip.MustParseAddr("10.0.0.32")))
		Expect(gaps[0].Last).To(Equal(netip.MustParseAddr("10.0.0.63")))
	})

	It("should report leading and trailing gaps", func() {
		parent := mustPrefix("10.0.0.0/24")
		children := []netip.Prefix{mustPrefix("10.0.0.64/26")}

		gaps := ipspace.Gaps(parent, children)

		Expect(gaps).To(HaveLen(2))
		Expect(gaps[0].First).To(Equal(netip.MustParseAddr("10.0.0.0")))
		Expect(gaps[0].Last).To(Equal(netip.MustParseAddr("10.0.0.63")))
		Expect(gaps[1].First).To(Equal(netip.MustParseAddr("10.0.0.128")))
		Expect(gaps[1].Last).To(Equal(netip.MustParseAddr("10.0.0.255")))
	})

	It("should treat an empty parent as one whole gap", func() {
		parent := mustPrefix("10.1.0.0/24")

		gaps := ipspace.Gaps(parent, nil)

		Expect(gaps).To(HaveLen(1))
		Expect(gaps[0].First).To(Equal(netip.MustParseAddr("10.1.0.0")))
		Expect(gaps[0].Last).To(Equal(netip.MustParseAddr("10.1.0.255")))
	})

	It("should skip the leading run for interior gaps", func() {
		parent := mustPrefix("10.0.0.0/24")
		children := []netip.Prefix{mustPrefix("10.0.0.64/26")}

		gaps := ipspace.InteriorGaps(parent, children)

		Expect(gaps).To(HaveLen(1))
		Expect(gaps[0].First).To(Equal(netip.MustParseAddr("10.0.0.128")))
	})
})

var _ = Describe("CandidateSubnets", func() {
	It("should propose aligned subnets inside the gap", func() {
		gap := ipspace.Range{
			First: netip.MustParseAddr("10.0.0.64"),
			Last:  netip.MustParseAddr("10.0.0.127"),
		}

		candidates := ipspace.CandidateSubnets(gap, 24)

		// A /25 does not fit, the /26 fills the gap, smaller lengths get
		// at most two proposals each.
		Expect(candidates).To(ContainElement(mustPrefix("10.0.0.64/26")))
		Expect(candidates).To(ContainElement(mustPrefix("10.0.0.64/27")))
		Expect(candidates).To(ContainElement(mustPrefix("10.0.0.96/27")))
		Expect(candidates).To(ContainElement(mustPrefix("10.0.0.64/28")))
		Expect(candidates).To(ContainElement(mustPrefix("10.0.0.80/28")))
		for _, c := range candidates {
			Expect(c.Bits()).To(BeNumerically(">", 24))
			Expect(gap.First.Compare(c.Masked().Addr())).To(BeNumerically("<=", 0))
		}
	})

	It("should use IPv6 candidate lengths for IPv6 gaps", func() {
		gap := ipspace.Range{
			First: netip.MustParseAddr("2001:db8::"),
			Last:  netip.MustParseAddr("2001:db8:0:ffff:ffff:ffff:ffff:ffff"),
		}

		candidates := ipspace.CandidateSubnets(gap, 48)

		Expect(candidates).To(ContainElement(mustPrefix("2001:db8::/64")))
		for _, c := range candidates {
			Expect([]int{64, 80, 96, 112}).To(ContainElement(c.Bits()))
		}
	})
})

var _ = Describe("FreeRanges", func() {
	It("should return the whole prefix when nothing is allocated", func() {
		ranges := ipspace.FreeRanges(mustPrefix("192.0.2.0/28"), nil)

		Expect(ranges).To(HaveLen(1))
		Expect(ranges[0].First).To(Equal(netip.MustParseAddr("192.0.2.0")))
		Expect(ranges[0].Last).To(Equal(netip.MustParseAddr("192.0.2.15")))
	})

	It("should split around allocated addresses", func() {
		used := []netip.Addr{
			netip.MustParseAddr("192.0.2.4"),
			netip.MustParseAddr("192.0.2.5"),
			netip.MustParseAddr("192.0.2.10"),
		}

		ranges := ipspace.FreeRanges(mustPrefix("192.0.2.0/28"), used)

		Expect(ranges).To(HaveLen(3))
		Expect(ranges[0].First).To(Equal(netip.MustParseAddr("192.0.2.0")))
		Expect(ranges[0].Last).To(Equal(netip.MustParseAddr("192.0.2.3")))
		Expect(ranges[1].First).To(Equal(netip.MustParseAddr("192.0.2.6")))
		Expect(ranges[1].Last).To(Equal(netip.MustParseAddr("192.0.2.9")))
		Expect(ranges[2].First).To(Equal(netip.MustParseAddr("192.0.2.11")))
		Expect(ranges[2].Last).To(Equal(netip.MustParseAddr("192.0.2.15")))
	})

	It("should ignore addresses outside the prefix", func() {
		used := []netip.Addr{netip.MustParseAddr("198.51.100.1")}

		ranges := ipspace.FreeRanges(mustPrefix("192.0.2.0/28"), used)

		Expect(ranges).To(HaveLen(1))
	})
})
