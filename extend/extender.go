// Package extend implements the extension façade (spec §4.3): the
// ExtendBackward and ExtendForward functions that grow an Alignment toward a
// target chosen by package target, plus the Extender collaborator interface
// those functions drive and a reference Smith-Waterman-style implementation
// of it.
package extend

import (
	"github.com/grailbio/nucmerge/cluster"
	"github.com/grailbio/nucmerge/scoring"
)

// Flags carries the bit-level context an Extender needs to pick its
// alignment mode, per spec §6.
type Flags uint32

const (
	// ForwardSearch and BackwardSearch record which façade function is
	// driving the call. Exactly one is ever set.
	ForwardSearch Flags = 1 << iota
	BackwardSearch

	// OptimalBit asks the Extender to commit to the full, globally optimal
	// alignment between the two fixed endpoints rather than stopping early
	// if a shorter path already scores as well.
	OptimalBit

	// SeqEndBit marks a call whose "to" endpoint is a sequence end rather
	// than a real neighboring alignment: the Extender is free to stop short
	// of it if continuing doesn't pay for itself.
	SeqEndBit

	// ForcedForwardAlign marks extendBackward's merge path: the Extender
	// must connect exactly to the target's endpoint, since anything short
	// of that leaves two alignments that should have merged.
	ForcedForwardAlign
)

// Extender is the alignment kernel collaborator the façade drives. A, B are
// the full 1-based, sentinel-prefixed residue buffers; fromA <= toA and
// fromB <= toB always describe the window to align, regardless of whether
// the façade is searching forward or backward through the sequences. The
// returned delta is always in increasing-A order: extendBackward prepends
// it to the alignment's existing delta, extendForward appends it.
type Extender interface {
	// AlignSearch reports whether a high-scoring path connects (fromA,fromB)
	// to (toA,toB) under flags, without committing to a full traceback.
	AlignSearch(A, B []byte, fromA, fromB, toA, toB int, sc *scoring.Context, flags Flags) bool

	// AlignTarget computes the delta fragment walking from (fromA,fromB)
	// toward (toA,toB). If SeqEndBit is set and OptimalBit is not, the
	// Extender may stop short of (toA,toB) when continuing doesn't improve
	// the score; actualA, actualB report where it actually stopped.
	AlignTarget(A, B []byte, fromA, fromB, toA, toB int, sc *scoring.Context, flags Flags) (delta cluster.Delta, actualA, actualB int, reached bool)

	// ForcedExtendForward is AlignTarget with the target endpoint treated
	// as fixed regardless of flags: it always reaches exactly (toA,toB).
	// extendBackward's merge path uses this, since failing to connect
	// exactly to the target alignment there is the "failed to merge
	// alignments" fatal condition spec §4.3 calls out.
	ForcedExtendForward(A, B []byte, fromA, fromB, toA, toB int, sc *scoring.Context, flags Flags) (delta cluster.Delta, reached bool)
}
