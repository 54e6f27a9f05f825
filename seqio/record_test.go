package seqio

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.fasta")
	require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestReadRecordsBasic(t *testing.T) {
	path := writeTemp(t, ">chr1 some description\nACGTacgt\nNNNN\n>chr2\nacgt*\n")
	records, err := ReadRecords(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "chr1", records[0].ID)
	assert.Equal(t, byte(0), records[0].Residues[0])
	assert.Equal(t, "acgtacgtnnnn", string(records[0].Residues[1:]))
	assert.Equal(t, 12, records[0].Len())

	assert.Equal(t, "chr2", records[1].ID)
	assert.Equal(t, "acgt*", string(records[1].Residues[1:]))
}

func TestReadRecordsRejectsDanglingBody(t *testing.T) {
	path := writeTemp(t, "ACGT\n")
	_, err := ReadRecords(context.Background(), path)
	assert.Error(t, err)
}

func TestReadRecordsRejectsMissingFile(t *testing.T) {
	_, err := ReadRecords(context.Background(), filepath.Join(os.TempDir(), "does-not-exist.fasta"))
	assert.Error(t, err)
}

func TestFingerprintStable(t *testing.T) {
	path := writeTemp(t, ">s\nACGTACGT\n")
	records, err := ReadRecords(context.Background(), path)
	require.NoError(t, err)
	f1 := records[0].Fingerprint()
	f2 := records[0].Fingerprint()
	assert.Equal(t, f1, f2)
}
