// Package rescore implements the delta re-scorer from spec §4.5: once an
// alignment's delta is final, every matched column is walked against the
// actual residues to recompute Errors, SimErrors, and NonAlphas exactly,
// rather than trusting the running counts an extension kernel may have kept
// along the way.
package rescore

import (
	"github.com/pkg/errors"

	"github.com/grailbio/nucmerge/cluster"
	"github.com/grailbio/nucmerge/scoring"
)

// nonAlphaResidue is the normalized placeholder seqio.normalize substitutes
// for any byte it can't classify; rescore counts it separately from a
// scored mismatch since it reflects missing data, not a real substitution.
const nonAlphaResidue = 'x'

func complement(b byte) byte {
	switch b {
	case 'a':
		return 't'
	case 't':
		return 'a'
	case 'c':
		return 'g'
	case 'g':
		return 'c'
	default:
		return b
	}
}

// RevComp returns the reverse complement of a 1-based, sentinel-prefixed
// residue buffer, itself 1-based and sentinel-prefixed.
func RevComp(seq []byte) []byte {
	n := len(seq) - 1
	out := make([]byte, n+1)
	for i := 1; i <= n; i++ {
		out[i] = complement(seq[n-i+1])
	}
	return out
}

// Rescorer holds the lazily-built reverse-complement buffers re-scoring
// needs for reverse-strand alignments. A B sequence is reverse-complemented
// at most once per Rescorer, regardless of how many reverse-strand
// alignments against it get re-scored, since a synteny commonly produces
// many reverse alignments against the same B record.
type Rescorer struct {
	sc      *scoring.Context
	rcCache map[string][]byte
}

// NewRescorer returns a Rescorer using sc's substitution matrix.
func NewRescorer(sc *scoring.Context) *Rescorer {
	return &Rescorer{sc: sc, rcCache: make(map[string][]byte)}
}

func (r *Rescorer) bBuffer(bID string, B []byte, dir cluster.Dir) []byte {
	if dir == cluster.Forward {
		return B
	}
	if buf, ok := r.rcCache[bID]; ok {
		return buf
	}
	buf := RevComp(B)
	r.rcCache[bID] = buf
	return buf
}

// BufferFor returns the buffer a Reverse- or Forward-strand match/alignment
// against bID actually indexes, building (and caching) the reverse-complement
// buffer on first use. Callers outside this package (the validator) use this
// to resolve cluster.Match/cluster.Alignment coordinates to the same buffer
// Rescore itself walks, without paying for a second reverse-complement pass.
func (r *Rescorer) BufferFor(bID string, B []byte, dir cluster.Dir) []byte {
	return r.bBuffer(bID, B, dir)
}

// Rescore recomputes a.Errors, a.SimErrors, and a.NonAlphas by walking a's
// delta against the actual residues of A and B (bID identifies B only for
// the reverse-complement cache; for a Forward alignment the literal B
// buffer is used directly, and for a Reverse one a's SB/EB coordinates are
// taken to already reference the reverse-complement coordinate space, per
// the Dir convention cluster.Match and cluster.Alignment use throughout).
//
// Errors counts every edit: a matched column whose two characters differ,
// or an indel event from the delta. SimErrors counts the matched columns
// whose pair scores below a full match under the matrix, plus one for every
// indel event. NonAlphas counts non-alphabetic placeholder residues in
// matched columns, each side separately, so a column with the placeholder
// on both sides adds two.
func (r *Rescorer) Rescore(a *cluster.Alignment, A []byte, bID string, B []byte) error {
	if err := a.Delta.Validate(); err != nil {
		return errors.Wrap(err, "rescore")
	}
	buf := r.bBuffer(bID, B, a.DirB)

	var totalErrors, simErrors, nonAlphas int
	pa, pb := a.SA, a.SB

	// scoreColumn matches a single matched column, per spec §4.5: upper-case
	// both residues (non-alphabetic ones become StopChar and count toward
	// NonAlphas independently on each side), then increment SimErrors when the
	// pair doesn't score a full match and Errors when the two characters
	// literally differ. These are two independent counters, not a single
	// either/or: a column with the placeholder on both sides compares
	// StopChar with StopChar, which increments SimErrors (StopChar never
	// scores as a match) but not Errors (the two characters are equal).
	scoreColumn := func() {
		ca, cb := A[pa], buf[pb]
		if ca == nonAlphaResidue {
			ca = scoring.StopChar
			nonAlphas++
		}
		if cb == nonAlphaResidue {
			cb = scoring.StopChar
			nonAlphas++
		}
		if r.sc.MatchScore(ca, cb) < 1 {
			simErrors++
		}
		if ca != cb {
			totalErrors++
		}
	}

	for _, k := range a.Delta {
		stride := cluster.AbsInt(k) - 1
		for s := 0; s < stride; s++ {
			scoreColumn()
			pa++
			pb++
		}
		// The indel itself always costs one Errors and one SimErrors.
		totalErrors++
		simErrors++
		if k > 0 {
			// A deletion: one A residue consumed with no B counterpart.
			pa++
		} else {
			// An insertion: one B residue consumed with no A counterpart.
			pb++
		}
	}
	for pa <= a.EA && pb <= a.EB {
		scoreColumn()
		pa++
		pb++
	}

	a.Errors = totalErrors
	a.SimErrors = simErrors
	a.NonAlphas = nonAlphas
	return nil
}
