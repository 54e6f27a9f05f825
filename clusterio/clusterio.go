// Package clusterio reads and writes the cluster file format from spec §6:
// one block per (A,B) pair, followed by one direction/match group per
// cluster in that pair's synteny. The mgaps collaborator (out of the core's
// scope per spec §1) produces this format as its own output; this package's
// Reader lets the merge driver's cmd consume that output directly, and its
// Writer re-emits the same clusters, now annotated with the gaps between
// consecutive matches, as a debugging/visualization byproduct alongside the
// delta file.
package clusterio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/grailbio/nucmerge/cluster"
	"github.com/grailbio/nucmerge/coord"
)

// Pair is one (A,B) block of the cluster file: the reference/query record
// identifiers and lengths the header line carries, plus the synteny's
// clusters.
type Pair struct {
	AID, BID   string
	ALen, BLen int
	Synteny    *cluster.Synteny
}

// ReadPairs parses every block of the cluster file at path, in file order.
func ReadPairs(ctx context.Context, path string) ([]*Pair, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "clusterio: opening %s", path)
	}
	defer func() { _ = f.Close(ctx) }()

	reader := io.Reader(f.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, errors.Wrapf(err, "clusterio: %s: opening gzip stream", path)
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(nil, 16*1024*1024)

	var pairs []*Pair
	var cur *Pair
	var curCluster *cluster.Cluster
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		switch {
		case line[0] == '>':
			fields := strings.Fields(line[1:])
			if len(fields) != 4 {
				return nil, errors.Errorf("clusterio: %s:%d: expected \">AID BID ALen BLen\", got %q", path, lineNo, line)
			}
			aLen, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, errors.Wrapf(err, "clusterio: %s:%d: bad ALen", path, lineNo)
			}
			bLen, err := strconv.Atoi(fields[3])
			if err != nil {
				return nil, errors.Wrapf(err, "clusterio: %s:%d: bad BLen", path, lineNo)
			}
			cur = &Pair{
				AID: fields[0], BID: fields[1], ALen: aLen, BLen: bLen,
				Synteny: &cluster.Synteny{AfID: fields[0], BfID: fields[1]},
			}
			pairs = append(pairs, cur)
			curCluster = nil

		case isDirLine(line):
			if cur == nil {
				return nil, errors.Errorf("clusterio: %s:%d: direction line before any pair header", path, lineNo)
			}
			fields := strings.Fields(line)
			if len(fields) != 2 {
				return nil, errors.Errorf("clusterio: %s:%d: malformed direction line %q", path, lineNo, line)
			}
			dir := cluster.Forward
			if fields[1] == "-" {
				dir = cluster.Reverse
			}
			curCluster = &cluster.Cluster{DirB: dir}
			cur.Synteny.Clusters = append(cur.Synteny.Clusters, curCluster)

		default:
			if curCluster == nil {
				return nil, errors.Errorf("clusterio: %s:%d: match line before any direction line", path, lineNo)
			}
			fields := strings.Fields(line)
			if len(fields) < 3 {
				return nil, errors.Errorf("clusterio: %s:%d: malformed match line %q", path, lineNo, line)
			}
			sA, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, errors.Wrapf(err, "clusterio: %s:%d: bad sA", path, lineNo)
			}
			sB, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, errors.Wrapf(err, "clusterio: %s:%d: bad sB", path, lineNo)
			}
			length, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, errors.Wrapf(err, "clusterio: %s:%d: bad len", path, lineNo)
			}
			if curCluster.DirB == cluster.Reverse {
				sB = coord.RevC(sB, cur.BLen)
			}
			curCluster.Matches = append(curCluster.Matches, cluster.Match{SA: sA, SB: sB, Len: length})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "clusterio: reading cluster file")
	}
	return pairs, nil
}

func isDirLine(line string) bool {
	fields := strings.Fields(line)
	return len(fields) == 2 && fields[0] == "+" && (fields[1] == "+" || fields[1] == "-")
}

// Writer emits the cluster file format to an underlying io.Writer.
type Writer struct {
	w io.Writer
}

// Create opens path for writing (gzip-compressed when path ends in .gz, per
// the same github.com/grailbio/base/fileio convention deltaio uses) and
// returns a Writer plus a close function the caller must defer.
func Create(ctx context.Context, path string) (*Writer, func() error, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "clusterio: creating %s", path)
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

// WriteSynteny writes one (A,B) block: the pair header followed by one
// direction/match group per cluster, per spec §6. bLen is B's full length,
// needed to project reverse-strand coordinates back with coord.RevC.
func (w *Writer) WriteSynteny(aID, bID string, aLen, bLen int, s *cluster.Synteny) error {
	if _, err := fmt.Fprintf(w.w, ">%s %s %d %d\n", aID, bID, aLen, bLen); err != nil {
		return errors.Wrap(err, "clusterio: writing pair header")
	}
	for _, c := range s.Clusters {
		if _, err := fmt.Fprintf(w.w, "%2s %2s\n", "+", c.DirB.String()); err != nil {
			return errors.Wrap(err, "clusterio: writing direction line")
		}
		var prev cluster.Match
		for i, m := range c.Matches {
			sb := m.SB
			if c.DirB == cluster.Reverse {
				sb = coord.RevC(sb, bLen)
			}
			if i == 0 {
				if _, err := fmt.Fprintf(w.w, "%8d %8d %6d     -      -\n", m.SA, sb, m.Len); err != nil {
					return errors.Wrap(err, "clusterio: writing match line")
				}
			} else {
				gapA := m.SA - prev.SA - prev.Len
				gapB := m.SB - prev.SB - prev.Len
				if _, err := fmt.Fprintf(w.w, "%8d %8d %6d %6d %6d\n", m.SA, sb, m.Len, gapA, gapB); err != nil {
					return errors.Wrap(err, "clusterio: writing match line")
				}
			}
			prev = m
		}
	}
	return nil
}
