// Package ipspace computes free IP space from a set of prefixes and
// addresses: containment forests, gaps between sibling prefixes, aligned
// candidate subnets inside gaps, and free address runs. Everything here is
// a pure function; the available-subnet and IP-range stages feed it target
// state and turn the results into creations.
package ipspace

import (
	"math/big"
	"net/netip"
	"sort"
)

// Range is an inclusive run of addresses.
type Range struct {
	First netip.Addr
	Last  netip.Addr
}

// Forest groups prefixes under their minimal strict superset. Prefixes
// with no parent in the input are standalone.
type Forest struct {
	Children   map[netip.Prefix][]netip.Prefix
	Standalone []netip.Prefix
}

// BuildForest assigns every prefix to the smallest input prefix that
// strictly contains it.
func BuildForest(prefixes []netip.Prefix) Forest {
	forest := Forest{Children: make(map[netip.Prefix][]netip.Prefix)}

	for _, p := range prefixes {
		var parent netip.Prefix
		found := false
		for _, candidate := range prefixes {
			if candidate == p || candidate.Bits() >= p.Bits() {
				continue
			}
			if candidate.Addr().Is4() != p.Addr().Is4() {
				continue
			}
			if !candidate.Contains(p.Addr()) {
				continue
			}
			if !found || candidate.Bits() > parent.Bits() {
				parent = candidate
				found = true
			}
		}
		if found {
			forest.Children[parent] = append(forest.Children[parent], p)
		} else {
			forest.Standalone = append(forest.Standalone, p)
		}
	}

	for parent := range forest.Children {
		sortPrefixes(forest.Children[parent])
	}
	sortPrefixes(forest.Standalone)
	return forest
}

// Gaps returns the unallocated runs inside parent not covered by any
// child, including the run before the first child and the run after the
// last one. A run between two children is capped at one block of the
// preceding child's size. Children must belong to the parent; they are
// sorted here.
func Gaps(parent netip.Prefix, children []netip.Prefix) []Range {
	return gaps(parent, children, true)
}

// InteriorGaps is Gaps without the run before the first child. The
// IP-range stage uses it: space ahead of the first child is usually the
// network's own infrastructure block, not handout space.
func InteriorGaps(parent netip.Prefix, children []netip.Prefix) []Range {
	return gaps(parent, children, false)
}

func gaps(parent netip.Prefix, children []netip.Prefix, leading bool) []Range {
	sorted := append([]netip.Prefix(nil), children...)
	sortPrefixes(sorted)

	var out []Range
	cursor := addrToInt(parent.Masked().Addr())
	parentLast := addrToInt(lastAddr(parent))
	totalBits := parent.Addr().BitLen()
	started := leading

	// A gap between two children is reported as at most one block of the
	// preceding child's size; the space behind it surfaces on a later run
	// once that block is carved up.
	var blockSize *big.Int

	for _, child := range sorted {
		first := addrToInt(child.Masked().Addr())
		if started && first.Cmp(cursor) > 0 {
			last := new(big.Int).Sub(first, one)
			if blockSize != nil {
				if end := blockEnd(cursor, blockSize); end.Cmp(last) < 0 {
					last = end
				}
			}
			out = append(out, rangeFromInts(cursor, last, parent.Addr().Is4()))
		}
		childLast := addrToInt(lastAddr(child))
		if next := new(big.Int).Add(childLast, one); next.Cmp(cursor) > 0 {
			cursor = next
		}
		blockSize = new(big.Int).Lsh(one, uint(totalBits-child.Bits()))
		started = true
	}

	if started && cursor.Cmp(parentLast) <= 0 {
		out = append(out, rangeFromInts(cursor, parentLast, parent.Addr().Is4()))
	}
	return out
}

// CandidateSubnets proposes aligned subnets that fit entirely inside the
// gap: IPv4 lengths /24 through /28, IPv6 /64, /80, /96 and /112, at most
// the first two per length. Lengths not longer than parentBits are
// skipped.
func CandidateSubnets(gap Range, parentBits int) []netip.Prefix {
	lengths := []int{24, 25, 26, 27, 28}
	if !gap.First.Is4() {
		lengths = []int{64, 80, 96, 112}
	}

	first := addrToInt(gap.First)
	last := addrToInt(gap.Last)
	totalBits := gap.First.BitLen()

	var out []netip.Prefix
	for _, bits := range lengths {
		if bits <= parentBits {
			continue
		}
		size := new(big.Int).Lsh(one, uint(totalBits-bits))
		start := alignUp(first, size)
		for taken := 0; taken < 2; taken++ {
			end := new(big.Int).Add(start, size)
			end.Sub(end, one)
			if end.Cmp(last) > 0 {
				break
			}
			out = append(out, netip.PrefixFrom(intToAddr(start, gap.First.Is4()), bits))
			start = new(big.Int).Add(start, size)
		}
	}
	return out
}

// FreeRanges returns the unused runs inside a childless prefix given the
// addresses already allocated in it. An empty prefix yields one range
// covering it entirely.
func FreeRanges(prefix netip.Prefix, used []netip.Addr) []Range {
	inside := used[:0:0]
	for _, a := range used {
		if prefix.Contains(a) {
			inside = append(inside, a)
		}
	}
	sort.Slice(inside, func(i, j int) bool { return inside[i].Compare(inside[j]) < 0 })

	first := prefix.Masked().Addr()
	last := lastAddr(prefix)
	if len(inside) == 0 {
		return []Range{{First: first, Last: last}}
	}

	var out []Range
	cursor := addrToInt(first)
	for _, a := range inside {
		ai := addrToInt(a)
		if ai.Cmp(cursor) > 0 {
			out = append(out, rangeFromInts(cursor, new(big.Int).Sub(ai, one), prefix.Addr().Is4()))
		}
		next := new(big.Int).Add(ai, one)
		if next.Cmp(cursor) > 0 {
			cursor = next
		}
	}
	if lastInt := addrToInt(last); cursor.Cmp(lastInt) <= 0 {
		out = append(out, rangeFromInts(cursor, lastInt, prefix.Addr().Is4()))
	}
	return out
}

var one = big.NewInt(1)

func sortPrefixes(prefixes []netip.Prefix) {
	sort.Slice(prefixes, func(i, j int) bool {
		if c := prefixes[i].Masked().Addr().Compare(prefixes[j].Masked().Addr()); c != 0 {
			return c < 0
		}
		return prefixes[i].Bits() < prefixes[j].Bits()
	})
}

// lastAddr is the highest address in the prefix (the broadcast address
// for IPv4).
func lastAddr(p netip.Prefix) netip.Addr {
	total := p.Addr().BitLen()
	size := new(big.Int).Lsh(one, uint(total-p.Bits()))
	last := addrToInt(p.Masked().Addr())
	last.Add(last, size)
	last.Sub(last, one)
	return intToAddr(last, p.Addr().Is4())
}

// blockEnd is the last address of the size-aligned block containing v.
func blockEnd(v, size *big.Int) *big.Int {
	rem := new(big.Int).Mod(v, size)
	end := new(big.Int).Sub(v, rem)
	end.Add(end, size)
	return end.Sub(end, one)
}

func alignUp(v, size *big.Int) *big.Int {
	rem := new(big.Int).Mod(v, size)
	if rem.Sign() == 0 {
		return new(big.Int).Set(v)
	}
	aligned := new(big.Int).Sub(v, rem)
	return aligned.Add(aligned, size)
}

func rangeFromInts(first, last *big.Int, is4 bool) Range {
	return Range{First: intToAddr(first, is4), Last: intToAddr(last, is4)}
}

func addrToInt(a netip.Addr) *big.Int {
	if a.Is4() {
		b := a.As4()
		return new(big.Int).SetBytes(b[:])
	}
	b := a.As16()
	return new(big.Int).SetBytes(b[:])
}

func intToAddr(v *big.Int, is4 bool) netip.Addr {
	if is4 {
		var b [4]byte
		v.FillBytes(b[:])
		return netip.AddrFrom4(b)
	}
	var b [16]byte
	v.FillBytes(b[:])
	return netip.AddrFrom16(b)
}
