// Package seqio reads the FASTA-formatted sequence pairs this core operates
// on and normalizes them into the 1-based indexed records the rest of the
// extension pipeline assumes. This is the "FASTA reader" external
// collaborator of the cluster-to-alignment extension core; the rest of the
// core only ever depends on the Record type below.
package seqio

import (
	"bufio"
	"context"
	"strings"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

// stopChar is the character substituted for any non-alphabetic input byte.
// It is the lowercase form of the scoring package's StopChar ('X'); the
// re-scorer maps it to StopChar before looking up a match score.
const stopChar = 'x'

// Record is a 1-based indexed nucleotide sequence. Residues[0] is a sentinel
// (the NUL byte) so that 1-based coordinates used throughout this core can
// index directly into Residues without an off-by-one translation.
//
// Keeping the sentinel, rather than special-casing it away, is deliberate:
// every coordinate computed by the target-selection, extension, and
// re-scoring stages is 1-based, and introducing a translation layer at the
// seqio boundary would just move the off-by-one risk rather than remove it.
type Record struct {
	// ID is the FASTA header up to the first whitespace character.
	ID string

	// Residues holds the normalized sequence: lowercased, with every
	// non-alphabetic byte mapped to stopChar except '*' which is preserved
	// verbatim (some protein FASTA files use it as a stop-codon marker that
	// downstream tooling wants to see). Residues[0] is the sentinel.
	Residues []byte
}

// Len returns the number of residues in the record (i.e. len(Residues)-1).
func (r *Record) Len() int {
	return len(r.Residues) - 1
}

// Fingerprint returns a stable 64-bit content hash of the record's residues
// (the sentinel excluded).
func (r *Record) Fingerprint() uint64 {
	return farm.Hash64(r.Residues[1:])
}

// normalize lowercases residues and maps anything outside [a-z] (after
// lowercasing) to stopChar, except '*' which passes through unchanged.
func normalize(raw []byte) []byte {
	out := make([]byte, len(raw)+1)
	out[0] = 0
	for i, b := range raw {
		if b == '*' {
			out[i+1] = '*'
			continue
		}
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		if b < 'a' || b > 'z' {
			b = stopChar
		}
		out[i+1] = b
	}
	return out
}

// ReadRecords reads every sequence in the FASTA file at path (local or, via
// github.com/grailbio/base/file, any scheme that package supports, e.g.
// s3://) and returns the normalized records in file order.
func ReadRecords(ctx context.Context, path string) ([]*Record, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "seqio: opening %s", path)
	}
	defer func() { _ = f.Close(ctx) }()

	scanner := bufio.NewScanner(f.Reader(ctx))
	scanner.Buffer(nil, 64*1024*1024)

	var records []*Record
	var id string
	var body strings.Builder
	flush := func() error {
		if id == "" && body.Len() == 0 {
			return nil
		}
		if id == "" {
			return errors.Errorf("seqio: %s: sequence data with no preceding header", path)
		}
		records = append(records, &Record{ID: id, Residues: normalize([]byte(body.String()))})
		body.Reset()
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return nil, err
			}
			fields := strings.Fields(line[1:])
			if len(fields) == 0 {
				return nil, errors.Errorf("seqio: %s: empty sequence header", path)
			}
			id = fields[0]
			continue
		}
		body.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "seqio: reading FASTA data")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.Errorf("seqio: %s: no sequences found", path)
	}
	return records, nil
}
