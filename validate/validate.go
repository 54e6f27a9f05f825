// Package validate implements the post-extension sanity checks from spec
// §4.6: every alignment's delta must walk from its start to its recorded
// end exactly, and the merge driver must never hand the same cluster match
// to the extension façade twice.
package validate

import (
	"encoding/binary"
	"fmt"

	"github.com/minio/highwayhash"

	"github.com/grailbio/nucmerge/cluster"
	"github.com/grailbio/nucmerge/coord"
	"github.com/grailbio/nucmerge/scoring"
)

// highwayhashKey is fixed rather than randomized: the visited-match set only
// needs collision resistance within a single run, not across runs, and a
// fixed key keeps re-runs of the same input deterministic end to end.
var highwayhashKey = make([]byte, 32)

// Validator accumulates the visited-match set across a merge driver run and
// exposes the per-alignment coordinate check.
type Validator struct {
	visited map[[highwayhash.Size]byte]bool
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{visited: make(map[[highwayhash.Size]byte]bool)}
}

func matchDigest(m cluster.Match, dir cluster.Dir) [highwayhash.Size]byte {
	var buf [25]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(m.SA))
	binary.BigEndian.PutUint64(buf[8:16], uint64(m.SB))
	binary.BigEndian.PutUint64(buf[16:24], uint64(m.Len))
	buf[24] = dir.Char()

	sum := highwayhash.Sum(buf[:], highwayhashKey)
	return sum
}

// SeenMatch reports whether m (on strand dir) has already been passed to
// the extension façade in this run, and records it as seen either way. The
// merge driver calls this before extending a cluster's match as a cheap
// backstop against the shadow test missing a duplicate (spec §4.2's
// guarantee is only as good as the ordering invariant it assumes holds).
func (v *Validator) SeenMatch(m cluster.Match, dir cluster.Dir) bool {
	digest := matchDigest(m, dir)
	if v.visited[digest] {
		return true
	}
	v.visited[digest] = true
	return false
}

// Alignment checks the coordinate invariant spec §8 requires of every
// finished alignment: walking its delta from (SA, SB) must arrive at
// exactly (EA, EB). The trailing matched run after the last delta event
// isn't itself recorded in the delta, so this derives its length from both
// ends and confirms the two strands agree on it.
func Alignment(a *cluster.Alignment) error {
	if a.SA > a.EA || a.SB > a.EB {
		return fmt.Errorf("validate: alignment range is inverted: [%d,%d]x[%d,%d]", a.SA, a.EA, a.SB, a.EB)
	}
	if err := a.Delta.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	eA0, eB0 := a.Delta.Walk(a.SA, a.SB, 0, 0)
	trailingA := a.EA - eA0
	trailingB := a.EB - eB0
	if trailingA != trailingB {
		return fmt.Errorf("validate: delta walk disagrees on trailing run length: A gives %d, B gives %d", trailingA, trailingB)
	}
	if trailingA < 0 {
		return fmt.Errorf("validate: delta overruns the alignment's recorded end by %d", -trailingA)
	}
	return nil
}

// Full runs the complete spec §4.6 validator over a finished synteny: the
// per-cluster checks (every cluster was fused, every match's residues agree
// character-for-character, every match is contained in some emitted
// alignment) plus, for every alignment, the coordinate checks Alignment
// already performs and the boundary self-match-score check. bFor resolves a
// cluster's strand to the buffer its SB coordinates actually index -  B
// itself for a forward cluster, the pair's shared reverse-complement buffer
// for a reverse one - the same resolution the merge driver uses to extend.
func Full(clusters []*cluster.Cluster, alignments []*cluster.Alignment, A []byte, bFor func(cluster.Dir) []byte, sc *scoring.Context) error {
	for _, c := range clusters {
		if !c.WasFused {
			return fmt.Errorf("validate: cluster at A=%d..%d was never fused", c.Range().Start.A, c.Range().Limit.A)
		}
		b := bFor(c.DirB)
		for _, m := range c.Matches {
			for i := 0; i < m.Len; i++ {
				if A[m.SA+i] != b[m.SB+i] {
					return fmt.Errorf("validate: match at A=%d B=%d (dir %s) disagrees with its residues at offset %d: %q != %q",
						m.SA, m.SB, c.DirB, i, A[m.SA+i], b[m.SB+i])
				}
			}
			if !containedInAny(alignments, c.DirB, m.Range()) {
				return fmt.Errorf("validate: match at A=%d..%d B=%d..%d (dir %s) is not contained in any emitted alignment",
					m.SA, m.EndA(), m.SB, m.EndB(), c.DirB)
			}
		}
	}

	for _, a := range alignments {
		if err := Alignment(a); err != nil {
			return err
		}
		b := bFor(a.DirB)
		if a.SA < 1 || a.SA >= len(A) || a.EA < 1 || a.EA >= len(A) {
			return fmt.Errorf("validate: alignment A range [%d,%d] out of bounds for A of length %d", a.SA, a.EA, len(A)-1)
		}
		if a.SB < 1 || a.SB >= len(b) || a.EB < 1 || a.EB >= len(b) {
			return fmt.Errorf("validate: alignment B range [%d,%d] out of bounds for B of length %d", a.SB, a.EB, len(b)-1)
		}
		if sc.MatchScore(A[a.SA], A[a.SA]) < 0 || sc.MatchScore(A[a.EA], A[a.EA]) < 0 {
			return fmt.Errorf("validate: alignment A boundary residue scores below zero against itself")
		}
		if sc.MatchScore(b[a.SB], b[a.SB]) < 0 || sc.MatchScore(b[a.EB], b[a.EB]) < 0 {
			return fmt.Errorf("validate: alignment B boundary residue scores below zero against itself")
		}
	}
	return nil
}

func containedInAny(alignments []*cluster.Alignment, dir cluster.Dir, r coord.Range) bool {
	for _, a := range alignments {
		if a.DirB == dir && a.Range().ContainsRange(r) {
			return true
		}
	}
	return false
}
