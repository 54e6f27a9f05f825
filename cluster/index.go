package cluster

import (
	"github.com/biogo/store/llrb"
)

// saKey is the llrb key type used to index alignments by their SA
// coordinate. It carries the owning Alignment so a successful lookup can
// return it directly.
type saKey struct {
	sa int
	a  *Alignment
}

// Compare implements llrb.Comparable.
func (k saKey) Compare(c llrb.Comparable) int {
	return k.sa - c.(saKey).sa
}

// AlignmentIndex holds the alignments a merge driver run has produced so
// far, in the two shapes different stages of the driver need:
//
//   - an ascending-by-SA slice, indexed by position rather than dereferenced
//     through a retained iterator (spec §9's "iterator-as-cursor" note: a
//     slice can grow and reallocate, so positions, not pointers-to-iterators,
//     are what stays valid), used by reverseTarget's backward scan, and
//
//   - an github.com/biogo/store/llrb tree keyed by SA, used as a fast-path
//     floor lookup for the shadow test, mirroring
//     encoding/bampair.ShardInfo's llrb.Tree-keyed-by-position index.
//
// Alignments are only ever appended, never removed: when extendBackward
// merges a seed into an existing target, the seed was never inserted in the
// first place (see merge.Run), so no deletion from the tree is required.
type AlignmentIndex struct {
	list []*Alignment
	tree llrb.Tree
}

// NewAlignmentIndex returns an empty index.
func NewAlignmentIndex() *AlignmentIndex {
	return &AlignmentIndex{}
}

// Append adds a to the index and returns its position.
func (idx *AlignmentIndex) Append(a *Alignment) int {
	idx.list = append(idx.list, a)
	idx.tree.Insert(saKey{sa: a.SA, a: a})
	return len(idx.list) - 1
}

// At returns the alignment at position i.
func (idx *AlignmentIndex) At(i int) *Alignment { return idx.list[i] }

// Len returns the number of alignments currently indexed.
func (idx *AlignmentIndex) Len() int { return len(idx.list) }

// All returns the alignments in ascending-SA order. The returned slice
// aliases the index's internal storage and must not be mutated by callers.
func (idx *AlignmentIndex) All() []*Alignment { return idx.list }

// floor returns the indexed alignment with the greatest SA <= sa, or nil.
func (idx *AlignmentIndex) floor(sa int) *Alignment {
	v := idx.tree.Floor(saKey{sa: sa})
	if v == nil {
		return nil
	}
	return v.(saKey).a
}
