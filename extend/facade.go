package extend

import (
	"fmt"

	"github.com/grailbio/base/errors"

	"github.com/grailbio/nucmerge/cluster"
	"github.com/grailbio/nucmerge/scoring"
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// clampBackward shrinks a backward extension's target toward seed, axis by
// axis, when that axis's window would otherwise exceed
// sc.MaxAlignmentLength, per spec §4.3's overflow handling. clampedA/clampedB
// report whether each axis individually had to be shrunk; the merge driver's
// SEQEND suppression (spec §4.3's "double_flag") depends on knowing whether
// both axes overflowed independently, not just whether either did.
func clampBackward(seed *cluster.Alignment, toA, toB int, sc *scoring.Context) (cA, cB int, clampedA, clampedB bool) {
	maxLen := sc.MaxAlignmentLength
	cA, cB = toA, toB
	if maxLen <= 0 {
		return cA, cB, false, false
	}
	if seed.SA-toA+1 > maxLen {
		cA = seed.SA - maxLen + 1
		clampedA = true
	}
	if seed.SB-toB+1 > maxLen {
		cB = seed.SB - maxLen + 1
		clampedB = true
	}
	return cA, cB, clampedA, clampedB
}

func clampForward(curr *cluster.Alignment, toA, toB int, sc *scoring.Context) (cA, cB int, clampedA, clampedB bool) {
	maxLen := sc.MaxAlignmentLength
	cA, cB = toA, toB
	if maxLen <= 0 {
		return cA, cB, false, false
	}
	if toA-curr.EA+1 > maxLen {
		cA = curr.EA + maxLen - 1
		clampedA = true
	}
	if toB-curr.EB+1 > maxLen {
		cB = curr.EB + maxLen - 1
		clampedB = true
	}
	return cA, cB, clampedA, clampedB
}

// prepend returns a fresh Delta with head followed by tail; head and tail
// must not be mutated afterward through their original slices.
func prepend(head, tail cluster.Delta) cluster.Delta {
	out := make(cluster.Delta, 0, len(head)+len(tail))
	out = append(out, head...)
	out = append(out, tail...)
	return out
}

// spliceAppend appends add onto the end of existing, the delta vector of an
// alignment currently spanning [sA,eA] with the given (already-recomputed)
// DeltaApos. A delta vector never records the run of matched columns after
// its last event (spec §3): that run is only ever implicit, recovered as
// eA-sA+1 minus what the recorded entries already account for. Stitching a
// second delta fragment onto the first therefore has to fold this implicit
// run into the new fragment's leading entry, exactly as spec §4.3's
// extendForward does when it picks up where a previous call left off.
//
// add is always a kernel fragment computed over a window that excludes the
// seam base at eA itself (its first column is A[eA+1]), so the implicit run
// folded in here is the full eA-sA+1 minus what existing's delta already
// accounts for — no further adjustment for the seam.
//
// A resulting leading entry of zero, or a negative implicit run, means the
// two fragments don't actually meet where the caller thought they did: spec
// §4.7 calls this the fatal "failed delta splice" condition, distinct from
// the overflow/target-unreachable failures the merge driver handles as
// normal flow.
func spliceAppend(existing cluster.Delta, sA, eA, deltaApos int, add cluster.Delta) (cluster.Delta, error) {
	if len(add) == 0 {
		return existing, nil
	}
	run := (eA - sA + 1) - deltaApos
	adjusted := append(cluster.Delta{}, add...)
	if adjusted[0] > 0 {
		adjusted[0] += run
	} else {
		adjusted[0] -= run
	}
	if adjusted[0] == 0 || run < 0 {
		return nil, errors.E(errors.Fatal, fmt.Sprintf("extend: failed to merge alignments at position %d", eA))
	}
	return prepend(existing, adjusted), nil
}

// ExtendBackward grows seed backward, toward either a predecessor alignment
// (hasTarget, targetIdx into idx) or the sequence start, per spec §4.3 and
// §4.1's reverseTarget contract. seed has not been inserted into idx yet
// (spec §4.4 step (c)): a true return means seed was fused into the
// predecessor and the caller must discard seed rather than push it.
func ExtendBackward(idx *cluster.AlignmentIndex, seed *cluster.Alignment, hasTarget bool, targetIdx int, A, B []byte, sc *scoring.Context, ext Extender) (merged, overflowed bool, err error) {
	toA, toB := 1, 1

	var predecessor *cluster.Alignment
	if hasTarget {
		predecessor = idx.At(targetIdx)
		toA, toB = predecessor.EA, predecessor.EB
	}

	cA, cB, clampedA, clampedB := clampBackward(seed, toA, toB, sc)
	overflowed = clampedA || clampedB
	doubleFlag := clampedA && clampedB

	flags := BackwardSearch
	if !hasTarget || overflowed {
		flags |= OptimalBit
	}
	if sc.ToSeqEnd && !doubleFlag {
		flags |= SeqEndBit
	}

	// Per spec §4.3: an overflow-clamped call never actually reaches its
	// original target (it aims somewhere short of it), and a call with no
	// target has nothing to reach in the first place. Only a genuine,
	// unclamped target is worth probing with AlignSearch.
	reached := false
	if predecessor != nil && !overflowed {
		reached = ext.AlignSearch(A, B, cA, cB, seed.SA, seed.SB, sc, flags)
	}

	if reached {
		delta, ok := ext.ForcedExtendForward(A, B, predecessor.EA, predecessor.EB, seed.SA, seed.SB, sc, flags|OptimalBit|ForcedForwardAlign)
		if !ok {
			return false, overflowed, errors.E(errors.Fatal, fmt.Sprintf("extend: failed to merge alignments at position %d,%d", seed.SA, seed.SB))
		}

		spliced, err := spliceAppend(predecessor.Delta, predecessor.SA, predecessor.EA, predecessor.DeltaApos, delta)
		if err != nil {
			return false, overflowed, err
		}
		predecessor.Delta = prepend(spliced, seed.Delta)
		predecessor.EA, predecessor.EB = seed.EA, seed.EB
		predecessor.Errors += seed.Errors
		predecessor.SimErrors += seed.SimErrors
		predecessor.NonAlphas += seed.NonAlphas
		predecessor.RecomputeDeltaApos()

		seed.Transition(cluster.ExtendedBackward)
		seed.Transition(cluster.Merged)
		return true, overflowed, nil
	}

	delta, actualA, actualB, _ := ext.AlignTarget(A, B, cA, cB, seed.SA, seed.SB, sc, flags)
	seed.Delta = prepend(delta, seed.Delta)
	seed.SA, seed.SB = actualA, actualB
	seed.RecomputeDeltaApos()

	seed.Transition(cluster.ExtendedBackward)
	seed.Transition(cluster.Standalone)
	return false, overflowed, nil
}

// ExtendForward grows curr forward toward either a neighbouring cluster
// (hasTarget, targetA/targetB) or the sequence end, per spec §4.3 and
// §4.1's forwardTarget contract. It may be called any number of times on a
// Standalone alignment, once per cluster the merge driver walks past.
func ExtendForward(curr *cluster.Alignment, hasTarget bool, targetA, targetB int, A, B []byte, sc *scoring.Context, ext Extender) (overflowed bool, err error) {
	cA, cB, clampedA, clampedB := clampForward(curr, targetA, targetB, sc)
	overflowed = clampedA || clampedB
	doubleFlag := clampedA && clampedB

	flags := ForwardSearch
	if !hasTarget || overflowed {
		flags |= OptimalBit
	}
	// Unlike extendBackward, a real target here (a chained match within the
	// same cluster, or a neighbouring cluster's seed forwardTarget already
	// chose to bridge to) must be reached exactly: SeqEndBit's "stop short if
	// it doesn't pay for itself" behavior only makes sense when aiming at a
	// sequence end rather than a concrete anchor.
	if !hasTarget && sc.ToSeqEnd && !doubleFlag {
		flags |= SeqEndBit
	}

	delta, actualA, actualB, _ := ext.AlignTarget(A, B, curr.EA, curr.EB, cA, cB, sc, flags)
	spliced, spliceErr := spliceAppend(curr.Delta, curr.SA, curr.EA, curr.DeltaApos, delta)
	if spliceErr != nil {
		return overflowed, spliceErr
	}
	curr.Delta = spliced
	curr.EA, curr.EB = actualA, actualB
	curr.RecomputeDeltaApos()

	curr.Transition(cluster.Standalone)
	return overflowed, nil
}
