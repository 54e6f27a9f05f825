package cluster

import "fmt"

// Delta is the sparse edit-script encoding described in spec §3: each
// element is a non-zero signed stride. A positive element k means "advance
// |k|-1 matched columns on both strands, then delete one base from A"; a
// negative element k means "advance |k|-1 matched columns, then insert one
// base into A (consuming one base of B only)". This encoding is
// load-bearing for interoperability with downstream delta consumers and must
// be preserved bit-for-bit (spec §9).
type Delta []int

// AbsInt returns the absolute value of x.
func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Apos returns the total span a Delta contributes to the A coordinate: for
// each entry d, d itself if d > 0 (the |d|-1 matched columns plus the
// A-deletion), or |d|-1 if d < 0 (the matched columns only; an insertion into
// A does not advance A). This is the deltaApos accumulator from spec §3/§4.3.
func (d Delta) Apos() int {
	total := 0
	for _, k := range d {
		if k > 0 {
			total += k
		} else {
			total += AbsInt(k) - 1
		}
	}
	return total
}

// Validate reports an error if d contains a zero entry, which spec §8 and
// §4.3 both call a fatal bug: a zero-length delta stride isn't expressible in
// the encoding and indicates a splice failure upstream.
func (d Delta) Validate() error {
	for i, k := range d {
		if k == 0 {
			return fmt.Errorf("cluster: delta contains a zero entry at index %d", i)
		}
	}
	return nil
}

// Walk simulates the position-only effect of applying d starting at (sA, sB),
// and returns the resulting (eA, eB). It ignores the actual residues, so it
// cannot detect character mismatches; it exists to let callers (tests,
// validators) check the coordinate-bookkeeping invariant in spec §8:
// "walking its delta starting from (sA, sB) arrives at exactly (eA, eB)".
func (d Delta) Walk(sA, sB, remainA, remainB int) (eA, eB int) {
	a, b := sA, sB
	for _, k := range d {
		stride := AbsInt(k) - 1
		a += stride
		b += stride
		if k > 0 {
			a++
		} else {
			b++
		}
	}
	a += remainA
	b += remainB
	return a, b
}
