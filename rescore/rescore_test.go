package rescore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/nucmerge/cluster"
	"github.com/grailbio/nucmerge/scoring"
)

func seq(s string) []byte {
	buf := make([]byte, len(s)+1)
	copy(buf[1:], s)
	return buf
}

func TestRevCompRoundTrip(t *testing.T) {
	A := seq("acgtacgt")
	rc := RevComp(A)
	rc2 := RevComp(rc)
	assert.Equal(t, A, rc2)
}

func TestRevCompComplementsAndReverses(t *testing.T) {
	assert.Equal(t, seq("gttt"), RevComp(seq("aaac")))
	assert.Equal(t, seq("acgt"), RevComp(seq("acgt")))
}

func TestRescorePerfectMatch(t *testing.T) {
	sc := scoring.NewDefaultNucleotideContext()
	r := NewRescorer(sc)

	A := seq("acgtacgt")
	B := seq("acgtacgt")
	a := &cluster.Alignment{SA: 1, EA: 8, SB: 1, EB: 8, DirB: cluster.Forward}

	require.NoError(t, r.Rescore(a, A, "b", B))
	assert.Equal(t, 0, a.Errors)
	assert.Equal(t, 0, a.SimErrors)
	assert.Equal(t, 0, a.NonAlphas)
}

func TestRescoreCountsIndel(t *testing.T) {
	sc := scoring.NewDefaultNucleotideContext()
	r := NewRescorer(sc)

	A := seq("acgtcgt") // one base short of B: the -5 entry inserts it into A
	B := seq("acgtacgt")
	a := &cluster.Alignment{
		SA: 1, EA: 7, SB: 1, EB: 8,
		DirB:  cluster.Forward,
		Delta: cluster.Delta{-5},
	}

	require.NoError(t, r.Rescore(a, A, "b", B))
	assert.Equal(t, 1, a.Errors)
	// An indel always costs one SimError too, per spec §4.5.
	assert.Equal(t, 1, a.SimErrors)
	assert.Equal(t, 0, a.NonAlphas)
}

func TestRescoreCountsNonAlpha(t *testing.T) {
	sc := scoring.NewDefaultNucleotideContext()
	r := NewRescorer(sc)

	A := seq("acxtacgt") // 'x' stands in for seqio's non-alphabetic placeholder
	B := seq("acgtacgt")
	a := &cluster.Alignment{SA: 1, EA: 8, SB: 1, EB: 8, DirB: cluster.Forward}

	require.NoError(t, r.Rescore(a, A, "b", B))
	assert.Equal(t, 1, a.NonAlphas)
	assert.Equal(t, 1, a.Errors)
}

func TestRescoreReverseStrandUsesComplement(t *testing.T) {
	sc := scoring.NewDefaultNucleotideContext()
	r := NewRescorer(sc)

	A := seq("acgt")
	B := seq("acgt") // reverse-complement of "acgt" is "acgt" itself

	a := &cluster.Alignment{SA: 1, EA: 4, SB: 1, EB: 4, DirB: cluster.Reverse}
	require.NoError(t, r.Rescore(a, A, "b", B))
	assert.Equal(t, 0, a.Errors)
}

func TestRescoreRejectsInvalidDelta(t *testing.T) {
	sc := scoring.NewDefaultNucleotideContext()
	r := NewRescorer(sc)

	A := seq("acgt")
	B := seq("acgt")
	a := &cluster.Alignment{SA: 1, EA: 4, SB: 1, EB: 4, Delta: cluster.Delta{0}}
	assert.Error(t, r.Rescore(a, A, "b", B))
}
