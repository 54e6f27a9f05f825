package validate

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

func identityBFor(B []byte) func(cluster.Dir) []byte {
	return func(dir cluster.Dir) []byte { return B }
}

func TestAlignmentAcceptsConsistentDelta(t *testing.T) {
	a := &cluster.Alignment{
		SA: 1, EA: 8, SB: 1, EB: 7,
		Delta: cluster.Delta{5},
	}
	assert.NoError(t, Alignment(a))
}

func TestAlignmentRejectsInvertedRange(t *testing.T) {
	a := &cluster.Alignment{SA: 10, EA: 5, SB: 1, EB: 5}
	assert.Error(t, Alignment(a))
}

func TestAlignmentRejectsZeroDelta(t *testing.T) {
	a := &cluster.Alignment{SA: 1, EA: 5, SB: 1, EB: 5, Delta: cluster.Delta{0}}
	assert.Error(t, Alignment(a))
}

func TestAlignmentRejectsInconsistentTrailingLength(t *testing.T) {
	// Delta{5} advances A by 4 matched + 1 deletion = 5, B by 4 matched only.
	// Declaring EA=9 (one past what the delta plus a matching trailing run on
	// B could produce) should be caught.
	a := &cluster.Alignment{
		SA: 1, EA: 9, SB: 1, EB: 7,
		Delta: cluster.Delta{5},
	}
	assert.Error(t, Alignment(a))
}

func TestSeenMatchDetectsDuplicates(t *testing.T) {
	v := New()
	m := cluster.Match{SA: 10, SB: 20, Len: 30}

	assert.False(t, v.SeenMatch(m, cluster.Forward))
	assert.True(t, v.SeenMatch(m, cluster.Forward))
	assert.False(t, v.SeenMatch(m, cluster.Reverse))
}

func TestFullAcceptsFusedContainedMatchingSynteny(t *testing.T) {
	sc := scoring.NewDefaultNucleotideContext()
	A := seq("acgtacgt")
	B := seq("acgtacgt")
	clusters := []*cluster.Cluster{
		{DirB: cluster.Forward, WasFused: true, Matches: []cluster.Match{{SA: 1, SB: 1, Len: 8}}},
	}
	alignments := []*cluster.Alignment{
		{SA: 1, EA: 8, SB: 1, EB: 8, DirB: cluster.Forward},
	}
	require.NoError(t, Full(clusters, alignments, A, identityBFor(B), sc))
}

func TestFullRejectsClusterNeverFused(t *testing.T) {
	sc := scoring.NewDefaultNucleotideContext()
	A := seq("acgtacgt")
	B := seq("acgtacgt")
	clusters := []*cluster.Cluster{
		{DirB: cluster.Forward, WasFused: false, Matches: []cluster.Match{{SA: 1, SB: 1, Len: 8}}},
	}
	alignments := []*cluster.Alignment{
		{SA: 1, EA: 8, SB: 1, EB: 8, DirB: cluster.Forward},
	}
	assert.Error(t, Full(clusters, alignments, A, identityBFor(B), sc))
}

func TestFullRejectsMismatchedResidues(t *testing.T) {
	sc := scoring.NewDefaultNucleotideContext()
	A := seq("acgtacgt")
	B := seq("acgtTCGT") // diverges from A despite the match claiming identity
	clusters := []*cluster.Cluster{
		{DirB: cluster.Forward, WasFused: true, Matches: []cluster.Match{{SA: 1, SB: 1, Len: 8}}},
	}
	alignments := []*cluster.Alignment{
		{SA: 1, EA: 8, SB: 1, EB: 8, DirB: cluster.Forward},
	}
	assert.Error(t, Full(clusters, alignments, A, identityBFor(B), sc))
}

func TestFullRejectsMatchNotContainedInAnyAlignment(t *testing.T) {
	sc := scoring.NewDefaultNucleotideContext()
	A := seq("acgtacgt")
	B := seq("acgtacgt")
	clusters := []*cluster.Cluster{
		{DirB: cluster.Forward, WasFused: true, Matches: []cluster.Match{{SA: 1, SB: 1, Len: 8}}},
	}
	// No alignment at all was emitted to cover the match's span.
	assert.Error(t, Full(clusters, nil, A, identityBFor(B), sc))
}
