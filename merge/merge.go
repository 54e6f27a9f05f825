// Package merge implements the top-level merge driver from spec §4.4: the
// loop that walks one synteny's clusters in order, seeds and extends
// alignments, re-scores them, and validates the finished set. It plays the
// role markduplicates.MarkDuplicates.Mark plays for duplicate marking: walk
// a sorted stream of input units, classify each against the output produced
// so far, fold or mint, and finally summarize.
package merge

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"

	"github.com/grailbio/nucmerge/cluster"
	"github.com/grailbio/nucmerge/extend"
	"github.com/grailbio/nucmerge/rescore"
	"github.com/grailbio/nucmerge/scoring"
	"github.com/grailbio/nucmerge/target"
	"github.com/grailbio/nucmerge/validate"
)

// Stats accumulates the run-wide counters original_source/postnuc.cc prints
// at the end of a pair: how many clusters the shadow test dropped, how many
// backward/forward extensions ran, how many of those merged a seed into a
// predecessor outright, and how many overflowed MaxAlignmentLength and had
// to settle for a clamped target.
type Stats struct {
	ClustersShadowed   int
	BackwardExtensions int
	BackwardMerges     int
	ForwardExtensions  int
	Overflows          int
}

// Run drives one synteny (a single (Af, Bf) pair's clusters) through target
// selection, extension, re-scoring, and validation, per spec §4.4. A, B are
// the 1-based, sentinel-prefixed residue buffers for the synteny's reference
// and query records; bID identifies B for the re-scorer's reverse-complement
// cache.
//
// The returned alignments are in ascending-sA order, matching spec §3's
// "Invariants maintained across the pipeline" clause; this falls out of the
// driver only ever appending, never reordering, idx's backing slice.
func Run(s *cluster.Synteny, A, B []byte, bID string, sc *scoring.Context, ext extend.Extender, rescorer *rescore.Rescorer, v *validate.Validator) ([]*cluster.Alignment, Stats, error) {
	var stats Stats
	errs := errors.Once{}

	idx := cluster.NewAlignmentIndex()
	lenA, lenB := len(A)-1, len(B)-1

	// bBufFor resolves a cluster's strand to the buffer its SB coordinates
	// actually index: forward B for a forward cluster, or the reverse-
	// complement buffer for a reverse one, per spec §4.5/§9. It defers to
	// the rescorer's own cache so the pair's reverse-complement buffer is
	// built at most once, whether it's first touched here or during
	// re-scoring. Matches and alignments on a reverse-strand cluster carry
	// their B coordinates already projected into this buffer's index space
	// (clusterio's reader performs that projection on the way in); only the
	// delta/cluster file writers ever revC-project back to forward
	// orientation for display.
	bBufFor := func(dir cluster.Dir) []byte {
		return rescorer.BufferFor(bID, B, dir)
	}

	for ci, c := range s.Clusters {
		if cluster.Shadowed(idx, c.DirB, c) {
			stats.ClustersShadowed++
			// The cluster's anchors are already covered by an earlier
			// alignment on the same strand: it contributes no new
			// alignment, but per spec §4.2/§8 it is still considered
			// fused, since nothing further needs to consume its matches.
			c.WasFused = true
			continue
		}
		bBuf := bBufFor(c.DirB)

		curr, err := seedAndBackward(idx, c, A, bBuf, sc, ext, v, &stats)
		if err != nil {
			errs.Set(err)
			break
		}

		for _, m := range c.Matches[1:] {
			if v.SeenMatch(m, c.DirB) {
				errs.Set(errors.E(fmt.Sprintf("merge: duplicate match reached the extension façade: sA=%d sB=%d len=%d", m.SA, m.SB, m.Len)))
				break
			}
			if _, err := extend.ExtendForward(curr, true, m.EndA(), m.EndB(), A, bBuf, sc, ext); err != nil {
				errs.Set(errors.E(err, "merge: chaining cluster match"))
				break
			}
			stats.ForwardExtensions++
		}
		if errs.Err() != nil {
			break
		}

		fr := target.ForwardTarget(s.Clusters, ci, sc, lenA, lenB)
		overflowed, err := extend.ExtendForward(curr, fr.Found, fr.A, fr.B, A, bBuf, sc, ext)
		if err != nil {
			errs.Set(errors.E(err, "merge: forward extension"))
			break
		}
		stats.ForwardExtensions++
		if overflowed {
			stats.Overflows++
		}

		c.WasFused = true
		log.Debug.Printf("merge: closed cluster at A=%d..%d B=%d..%d", c.Range().Start.A, c.Range().Limit.A, c.Range().Start.B, c.Range().Limit.B)
	}
	if err := errs.Err(); err != nil {
		return nil, stats, err
	}

	alignments := idx.All()
	for _, a := range alignments {
		if a.State() == cluster.Standalone {
			a.Transition(cluster.Closed)
		}
		if err := rescorer.Rescore(a, A, bID, B); err != nil {
			return nil, stats, errors.E(err, "merge: re-scoring")
		}
		if err := validate.Alignment(a); err != nil {
			return nil, stats, errors.E(err, "merge: validating")
		}
	}
	return alignments, stats, nil
}

// seedAndBackward implements spec §4.4 steps (b)-(c): seed a fresh alignment
// from c's first match, pick a reverseTarget, and extend backward. It
// returns the alignment that subsequent steps (d)-(e) should keep mutating:
// either the freshly-pushed seed, or the predecessor it got fused into.
func seedAndBackward(idx *cluster.AlignmentIndex, c *cluster.Cluster, A, B []byte, sc *scoring.Context, ext extend.Extender, v *validate.Validator, stats *Stats) (curr *cluster.Alignment, err error) {
	m0 := c.Matches[0]
	if v.SeenMatch(m0, c.DirB) {
		return nil, errors.E(fmt.Sprintf("merge: duplicate match reached the extension façade: sA=%d sB=%d len=%d", m0.SA, m0.SB, m0.Len))
	}

	seed := cluster.NewSeedAlignment(m0, c.DirB)
	rt := target.ReverseTarget(idx, seed, sc)

	merged, overflowed, err := extend.ExtendBackward(idx, seed, rt.Found, rt.Index, A, B, sc, ext)
	if err != nil {
		return nil, errors.E(err, "merge: backward extension")
	}
	stats.BackwardExtensions++
	if overflowed {
		stats.Overflows++
	}

	if merged {
		stats.BackwardMerges++
		return idx.At(rt.Index), nil
	}
	idx.Append(seed)
	return seed, nil
}
