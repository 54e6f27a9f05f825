// Package scoring holds the process-wide, read-only scoring configuration
// that the target-selection, extension, and re-scoring stages consult: the
// substitution matrix, the "good enough" and "continued gap" scores used by
// the gap-acceptance heuristic in target selection, the break-length
// threshold, and the sequence-end extension policy.
//
// A Context is built once per run (by Load, or NewDefaultNucleotideContext
// for tests) and is never mutated afterwards, matching spec §5's description
// of this state as process-wide and read-only once configured.
package scoring

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

// StopChar is substituted for non-alphabetic residues wherever a match score
// needs to be looked up; it always scores as a mismatch against everything,
// including itself.
const StopChar = 'X'

// MatrixKind distinguishes the nucleotide and protein substitution matrices a
// Context may hold, mirroring the upstream collaborator's getMatrixType.
type MatrixKind int

const (
	Nucleotide MatrixKind = iota
	Protein
)

// Context is the scoring configuration threaded through the core.
type Context struct {
	// Matrix holds the substitution score for every upper-case letter pair,
	// indexed by (a-'A', b-'A').
	Matrix [26][26]int

	// GoodScore is the per-residue score of a confidently matching column.
	GoodScore int

	// ContGapScore is the per-residue score charged while bridging a gap with
	// no supporting match: the best-case estimate in §4.1's gap-acceptance
	// heuristic uses it, and the reference extender in package extend
	// charges it for every gap column.
	ContGapScore int

	// BreakLenValue is the inter-cluster gap length below which a bridging
	// alignment is accepted without further scoring.
	BreakLenValue int

	// MaxAlignmentLength bounds the length of a single extension on either
	// strand (spec §3's "Invariants" clause).
	MaxAlignmentLength int

	// ToSeqEnd, when true, biases extension toward consuming the rest of the
	// sequence rather than stopping at the best-scoring point.
	ToSeqEnd bool

	// Kind records which matrix (nucleotide or protein) this Context holds,
	// for callers that need to branch on it (e.g. to pick an alphabet-aware
	// extender).
	Kind MatrixKind
}

// BreakLen returns the configured break length. It is a method (rather than a
// bare field access) so that callers read as spec §4.1 names it:
// breakLen().
func (c *Context) BreakLen() int { return c.BreakLenValue }

// MatrixType reports which matrix this Context was configured with.
func (c *Context) MatrixType() MatrixKind { return c.Kind }

func letterIndex(b byte) (int, bool) {
	if b >= 'a' && b <= 'z' {
		b -= 'a' - 'A'
	}
	if b < 'A' || b > 'Z' {
		return 0, false
	}
	return int(b - 'A'), true
}

// MatchScore returns MATCH_SCORE[a][b]. Non-alphabetic bytes (including the
// explicit StopChar) always score -1, whatever the matrix holds.
func (c *Context) MatchScore(a, b byte) int {
	if a == StopChar || b == StopChar {
		return -1
	}
	ai, aok := letterIndex(a)
	bi, bok := letterIndex(b)
	if !aok || !bok {
		return -1
	}
	return c.Matrix[ai][bi]
}

// NewDefaultNucleotideContext returns a Context with a simple +1
// match/-1 mismatch nucleotide matrix and conservative defaults, suitable for
// tests and for callers that have no matrix file to load.
func NewDefaultNucleotideContext() *Context {
	c := &Context{
		GoodScore:          1,
		ContGapScore:       -2,
		BreakLenValue:      200,
		MaxAlignmentLength: 10000,
		ToSeqEnd:           true,
		Kind:               Nucleotide,
	}
	for i := 0; i < 26; i++ {
		for j := 0; j < 26; j++ {
			if i == j {
				c.Matrix[i][j] = 1
			} else {
				c.Matrix[i][j] = -1
			}
		}
	}
	return c
}

// Load reads a whitespace-delimited substitution matrix file of the form
//
//	  A  C  G  T
//	A 1 -1 -1 -1
//	C -1 1 -1 -1
//	G -1 -1 1 -1
//	T -1 -1 -1 1
//
// into a Context seeded with the given break length, max alignment length,
// good/continued-gap scores, and end-extension policy. Any letters absent
// from the file default to a score of -1 against everything.
func Load(ctx context.Context, path string, kind MatrixKind, goodScore, contGapScore, breakLen, maxAlignLen int, toSeqEnd bool) (*Context, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "scoring: opening matrix file %s", path)
	}
	defer func() { _ = f.Close(ctx) }()

	c := &Context{
		GoodScore:          goodScore,
		ContGapScore:       contGapScore,
		BreakLenValue:      breakLen,
		MaxAlignmentLength: maxAlignLen,
		ToSeqEnd:           toSeqEnd,
		Kind:               kind,
	}
	for i := range c.Matrix {
		for j := range c.Matrix[i] {
			c.Matrix[i][j] = -1
		}
	}

	scanner := bufio.NewScanner(f.Reader(ctx))
	var columns []int
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if columns == nil {
			columns = make([]int, len(fields))
			for i, tok := range fields {
				idx, ok := letterIndex(tok[0])
				if !ok {
					return nil, errors.Errorf("scoring: %s:%d: bad column header %q", path, lineNo, tok)
				}
				columns[i] = idx
			}
			continue
		}
		rowIdx, ok := letterIndex(fields[0][0])
		if !ok {
			return nil, errors.Errorf("scoring: %s:%d: bad row header %q", path, lineNo, fields[0])
		}
		values := fields[1:]
		if len(values) != len(columns) {
			return nil, errors.Errorf("scoring: %s:%d: expected %d scores, found %d", path, lineNo, len(columns), len(values))
		}
		for i, tok := range values {
			v, err := strconv.Atoi(tok)
			if err != nil {
				return nil, errors.Wrapf(err, "scoring: %s:%d: bad score %q", path, lineNo, tok)
			}
			c.Matrix[rowIdx][columns[i]] = v
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scoring: reading matrix file")
	}
	if columns == nil {
		return nil, errors.Errorf("scoring: %s: empty matrix file", path)
	}
	return c, nil
}
