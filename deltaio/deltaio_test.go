package deltaio

import (
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/nucmerge/cluster"
)

func TestWritePairForwardAndReverse(t *testing.T) {
	ctx := vcontext.Background()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(tempDir, "out.delta")

	w, closeFn, err := Create(ctx, path)
	require.NoError(t, err)

	fwd := &cluster.Alignment{SA: 1, EA: 8, SB: 1, EB: 8, DirB: cluster.Forward}
	rev := &cluster.Alignment{SA: 1, EA: 8, SB: 3, EB: 10, DirB: cluster.Reverse, Delta: cluster.Delta{-5}}
	require.NoError(t, w.WritePair("chrA", "chrB", 8, 12, []*cluster.Alignment{fwd, rev}))
	require.NoError(t, closeFn())

	data, err := readAll(path)
	require.NoError(t, err)
	want := ">chrA chrB 8 12\n" +
		"1 8 1 8 0 0 0\n0\n" +
		"1 8 10 3 0 0 0\n-5\n0\n"
	assert.Equal(t, want, data)
}

func TestWritePairGzip(t *testing.T) {
	ctx := vcontext.Background()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(tempDir, "out.delta.gz")

	w, closeFn, err := Create(ctx, path)
	require.NoError(t, err)
	require.NoError(t, w.WritePair("a", "b", 4, 4, []*cluster.Alignment{
		{SA: 1, EA: 4, SB: 1, EB: 4, DirB: cluster.Forward},
	}))
	require.NoError(t, closeFn())

	data, err := readAllGzip(path)
	require.NoError(t, err)
	assert.Equal(t, ">a b 4 4\n1 4 1 4 0 0 0\n0\n", data)
}
