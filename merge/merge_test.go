package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/nucmerge/cluster"
	"github.com/grailbio/nucmerge/extend"
	"github.com/grailbio/nucmerge/rescore"
	"github.com/grailbio/nucmerge/scoring"
	"github.com/grailbio/nucmerge/validate"
)

func seq(s string) []byte {
	buf := make([]byte, len(s)+1)
	copy(buf[1:], s)
	return buf
}

func newRunDeps(sc *scoring.Context) (extend.Extender, *rescore.Rescorer, *validate.Validator) {
	return extend.NewBandedExtender(), rescore.NewRescorer(sc), validate.New()
}

func TestRunExactIdentity(t *testing.T) {
	sc := scoring.NewDefaultNucleotideContext()
	ext, rescorer, v := newRunDeps(sc)

	A := seq("acgtacgt")
	B := seq("acgtacgt")
	s := &cluster.Synteny{
		AfID: "A", BfID: "B",
		Clusters: []*cluster.Cluster{
			{DirB: cluster.Forward, Matches: []cluster.Match{{SA: 1, SB: 1, Len: 8}}},
		},
	}

	alignments, stats, err := Run(s, A, B, "B", sc, ext, rescorer, v)
	require.NoError(t, err)
	require.Len(t, alignments, 1)
	a := alignments[0]
	assert.Equal(t, 1, a.SA)
	assert.Equal(t, 8, a.EA)
	assert.Equal(t, 1, a.SB)
	assert.Equal(t, 8, a.EB)
	assert.Empty(t, a.Delta)
	assert.Equal(t, 0, a.Errors)
	assert.Equal(t, 0, a.SimErrors)
	assert.Equal(t, 0, a.NonAlphas)
	assert.True(t, s.Clusters[0].WasFused)
	assert.Equal(t, 0, stats.ClustersShadowed)
}

func TestRunTwoAdjacentClustersMergeBackward(t *testing.T) {
	sc := scoring.NewDefaultNucleotideContext()
	ext, rescorer, v := newRunDeps(sc)

	A := seq("acgtacgtacgtacgt")
	B := seq("acgtacgtacgtacgt")
	s := &cluster.Synteny{
		AfID: "A", BfID: "B",
		Clusters: []*cluster.Cluster{
			{DirB: cluster.Forward, Matches: []cluster.Match{{SA: 1, SB: 1, Len: 4}}},
			{DirB: cluster.Forward, Matches: []cluster.Match{{SA: 13, SB: 13, Len: 4}}},
		},
	}

	alignments, stats, err := Run(s, A, B, "B", sc, ext, rescorer, v)
	require.NoError(t, err)
	require.Len(t, alignments, 1, "the two clusters' gap is well within breakLen and should merge into one alignment")
	assert.Equal(t, 1, alignments[0].SA)
	assert.Equal(t, 16, alignments[0].EA)
	assert.True(t, s.Clusters[0].WasFused)
	assert.True(t, s.Clusters[1].WasFused)
	assert.Equal(t, 1, stats.BackwardMerges)
}

func TestRunShadowedClusterIsDropped(t *testing.T) {
	sc := scoring.NewDefaultNucleotideContext()
	ext, rescorer, v := newRunDeps(sc)

	A := seq("acgtacgtacgtacgt")
	B := seq("acgtacgtacgtacgt")
	s := &cluster.Synteny{
		AfID: "A", BfID: "B",
		Clusters: []*cluster.Cluster{
			{DirB: cluster.Forward, Matches: []cluster.Match{{SA: 1, SB: 1, Len: 16}}},
			{DirB: cluster.Forward, Matches: []cluster.Match{{SA: 5, SB: 5, Len: 4}}},
		},
	}

	alignments, stats, err := Run(s, A, B, "B", sc, ext, rescorer, v)
	require.NoError(t, err)
	require.Len(t, alignments, 1)
	assert.Equal(t, 1, stats.ClustersShadowed)
	assert.True(t, s.Clusters[1].WasFused, "a shadowed cluster's anchors were already consumed by the earlier alignment")
}

// TestRunReverseStrandUsesReverseComplementBuffer exercises a reverse-strand
// cluster end to end: A is exactly the reverse complement of B, so the core
// must extend against Brev (not B) to find a perfect, error-free alignment.
// If the façade were ever handed the forward B buffer for a reverse
// cluster, this alignment would come back full of mismatches instead.
func TestRunReverseStrandUsesReverseComplementBuffer(t *testing.T) {
	sc := scoring.NewDefaultNucleotideContext()
	ext, rescorer, v := newRunDeps(sc)

	B := seq("aaaacccc")
	A := seq("ggggtttt") // the reverse complement of B
	s := &cluster.Synteny{
		AfID: "A", BfID: "B",
		Clusters: []*cluster.Cluster{
			{DirB: cluster.Reverse, Matches: []cluster.Match{{SA: 1, SB: 1, Len: 8}}},
		},
	}

	alignments, stats, err := Run(s, A, B, "B", sc, ext, rescorer, v)
	require.NoError(t, err)
	require.Len(t, alignments, 1)
	a := alignments[0]
	assert.Equal(t, 1, a.SA)
	assert.Equal(t, 8, a.EA)
	assert.Equal(t, 1, a.SB)
	assert.Equal(t, 8, a.EB)
	assert.Equal(t, 0, a.Errors)
	assert.Equal(t, 0, stats.ClustersShadowed)
}
