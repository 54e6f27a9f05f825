package scoring

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultNucleotideContext(t *testing.T) {
	c := NewDefaultNucleotideContext()
	assert.Equal(t, 1, c.MatchScore('a', 'A'))
	assert.Equal(t, -1, c.MatchScore('a', 'c'))
	assert.Equal(t, -1, c.MatchScore('a', StopChar))
	assert.Equal(t, 200, c.BreakLen())
	assert.Equal(t, Nucleotide, c.MatrixType())
}

func TestLoadMatrixFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matrix.txt")
	contents := "  A  C  G  T\n" +
		"A  2 -1 -1 -1\n" +
		"C -1  2 -1 -1\n" +
		"G -1 -1  2 -1\n" +
		"T -1 -1 -1  2\n"
	require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0644))

	c, err := Load(context.Background(), path, Nucleotide, 1, -2, 100, 5000, true)
	require.NoError(t, err)
	assert.Equal(t, 2, c.MatchScore('A', 'A'))
	assert.Equal(t, -1, c.MatchScore('A', 'C'))
	// Letters absent from the file default to the worst-case mismatch score.
	assert.Equal(t, -1, c.MatchScore('N', 'N'))
}

func TestLoadRejectsMismatchedColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matrix.txt")
	require.NoError(t, ioutil.WriteFile(path, []byte("A C\nA 1 2 3\n"), 0644))
	_, err := Load(context.Background(), path, Nucleotide, 1, -2, 100, 5000, true)
	assert.Error(t, err)
}
