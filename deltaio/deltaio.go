// Package deltaio writes the delta file format from spec §6: one block per
// (A,B) pair, with one header/delta-vector group per finished alignment.
package deltaio

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/grailbio/nucmerge/cluster"
	"github.com/grailbio/nucmerge/coord"
)

// Writer emits the delta file format to an underlying io.Writer.
type Writer struct {
	w io.Writer
}

// Create opens path for writing, gzip-compressing transparently when path
// ends in .gz (the same github.com/grailbio/base/fileio convention
// interval/bedunion.go uses on read), and returns a Writer plus a close
// function the caller must defer.
func Create(ctx context.Context, path string) (*Writer, func() error, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "deltaio: creating %s", path)
	}
	w := io.Writer(f.Writer(ctx))
	closers := []func() error{func() error { return f.Close(ctx) }}

	if fileio.DetermineType(path) == fileio.Gzip {
		gz := gzip.NewWriter(w)
		w = gz
		closers = append([]func() error{gz.Close}, closers...)
	}
	return &Writer{w: w}, func() error {
		for _, c := range closers {
			if err := c(); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

// WritePair writes one (A,B) block: the pair header followed by one
// coordinate/error-count line and terminated delta vector per alignment, per
// spec §6. bLen is B's full length, needed to project reverse-strand
// coordinates back with coord.RevC.
func (w *Writer) WritePair(aID, bID string, aLen, bLen int, alignments []*cluster.Alignment) error {
	if _, err := fmt.Fprintf(w.w, ">%s %s %d %d\n", aID, bID, aLen, bLen); err != nil {
		return errors.Wrap(err, "deltaio: writing pair header")
	}
	for _, a := range alignments {
		sB, eB := a.SB, a.EB
		if a.DirB == cluster.Reverse {
			// Each endpoint is projected independently (not swapped): a
			// reverse-strand alignment's printed sB is numerically greater
			// than its printed eB, the conventional delta-file signal that
			// this alignment matches against the minus strand of B.
			sB, eB = coord.RevC(a.SB, bLen), coord.RevC(a.EB, bLen)
		}
		if _, err := fmt.Fprintf(w.w, "%d %d %d %d %d %d %d\n",
			a.SA, a.EA, sB, eB, a.Errors, a.SimErrors, a.NonAlphas); err != nil {
			return errors.Wrap(err, "deltaio: writing alignment header")
		}
		for _, d := range a.Delta {
			if _, err := fmt.Fprintf(w.w, "%d\n", d); err != nil {
				return errors.Wrap(err, "deltaio: writing delta entry")
			}
		}
		if _, err := fmt.Fprintf(w.w, "0\n"); err != nil {
			return errors.Wrap(err, "deltaio: writing delta terminator")
		}
	}
	return nil
}
