package extend

import (
	"github.com/grailbio/nucmerge/cluster"
	"github.com/grailbio/nucmerge/scoring"
)

// bandedExtender is a reference Extender grounded on util/distance.go's
// Levenshtein DP matrix: a dense row/col working matrix sized to the window
// being aligned, with a parallel move matrix recording each cell's winning
// move for traceback. It
// trades memory efficiency for a simple, obviously correct implementation,
// which is adequate for the bounded windows the merge driver hands it:
// overflow clamping in the façade keeps windows under
// scoring.Context.MaxAlignmentLength.
type bandedExtender struct{}

// NewBandedExtender returns the reference Extender used by tests and the
// command-line default.
func NewBandedExtender() Extender { return bandedExtender{} }

type op uint8

const (
	opDiag op = iota
	opUp        // consumes one A residue, zero B residues: a deletion from A.
	opLeft      // consumes one B residue, zero A residues: an insertion into A.
)

// dpTable holds a dense (rows+1) x (cols+1) score matrix. Cell (0,0) is
// always the fixed anchor; residues are supplied by the caller through
// aAt/bAt so the same fill logic serves both search directions.
type dpTable struct {
	rows, cols int
	score      []int
	move       []op
}

func newDPTable(rows, cols int) *dpTable {
	return &dpTable{
		rows:  rows,
		cols:  cols,
		score: make([]int, (rows+1)*(cols+1)),
		move:  make([]op, (rows+1)*(cols+1)),
	}
}

func (t *dpTable) at(i, j int) int        { return t.score[i*(t.cols+1)+j] }
func (t *dpTable) set(i, j, v int)        { t.score[i*(t.cols+1)+j] = v }
func (t *dpTable) setMove(i, j int, m op) { t.move[i*(t.cols+1)+j] = m }
func (t *dpTable) moveAt(i, j int) op     { return t.move[i*(t.cols+1)+j] }

// fill runs the Needleman-Wunsch recurrence over a rows x cols window,
// anchored at (0,0), where aAt(i) and bAt(j) are the 1-based residues
// consumed at DP row i / column j respectively.
func fill(rows, cols int, aAt, bAt func(int) byte, sc *scoring.Context) *dpTable {
	t := newDPTable(rows, cols)

	for j := 1; j <= cols; j++ {
		t.set(0, j, t.at(0, j-1)+sc.ContGapScore)
		t.setMove(0, j, opLeft)
	}
	for i := 1; i <= rows; i++ {
		t.set(i, 0, t.at(i-1, 0)+sc.ContGapScore)
		t.setMove(i, 0, opUp)
	}

	for i := 1; i <= rows; i++ {
		for j := 1; j <= cols; j++ {
			diag := t.at(i-1, j-1) + sc.MatchScore(aAt(i), bAt(j))
			up := t.at(i-1, j) + sc.ContGapScore
			left := t.at(i, j-1) + sc.ContGapScore

			best, bestMove := diag, opDiag
			if up > best {
				best, bestMove = up, opUp
			}
			if left > best {
				best, bestMove = left, opLeft
			}
			t.set(i, j, best)
			t.setMove(i, j, bestMove)
		}
	}
	return t
}

// walkOps recovers the sequence of moves from (endI,endJ) back to (0,0).
// The raw back-pointer walk runs far-to-anchor; when reverse is set, the
// returned slice is reversed into anchor-to-far order.
func walkOps(t *dpTable, endI, endJ int, reverse bool) []op {
	var ops []op
	for i, j := endI, endJ; i > 0 || j > 0; {
		m := t.moveAt(i, j)
		ops = append(ops, m)
		switch m {
		case opDiag:
			i--
			j--
		case opUp:
			i--
		case opLeft:
			j--
		}
	}
	if reverse {
		for l, r := 0, len(ops)-1; l < r; l, r = l+1, r-1 {
			ops[l], ops[r] = ops[r], ops[l]
		}
	}
	return ops
}

// deltaFromOps converts a real-increasing-A-order op sequence into the
// sparse Delta encoding from spec §3: a positive entry d advances d-1
// matched columns then deletes one A residue; a negative entry advances
// |d|-1 matched columns then inserts one A residue (consuming B only).
func deltaFromOps(ops []op) cluster.Delta {
	var delta cluster.Delta
	matched := 0
	for _, m := range ops {
		switch m {
		case opDiag:
			matched++
		case opUp:
			delta = append(delta, matched+1)
			matched = 0
		case opLeft:
			delta = append(delta, -(matched + 1))
			matched = 0
		}
	}
	return delta
}

// window builds the DP table and residue accessors for one AlignTarget call.
// For a forward search, the anchor is the low corner (fromA,fromB) and
// residues are consumed left to right. For a backward search, the anchor is
// the high corner (toA,toB) and residues are consumed right to left; since
// the raw back-pointer walk for a high-corner anchor already runs low corner
// to high corner, it is real-increasing-A order without reversal.
func (bandedExtender) window(A, B []byte, fromA, fromB, toA, toB int, backward bool, sc *scoring.Context) (t *dpTable, rows, cols int) {
	rows, cols = toA-fromA, toB-fromB
	if backward {
		return fill(rows, cols, func(i int) byte { return A[toA-i] }, func(j int) byte { return B[toB-j] }, sc), rows, cols
	}
	return fill(rows, cols, func(i int) byte { return A[fromA+i] }, func(j int) byte { return B[fromB+j] }, sc), rows, cols
}

func (e bandedExtender) AlignSearch(A, B []byte, fromA, fromB, toA, toB int, sc *scoring.Context, flags Flags) bool {
	if fromA > toA || fromB > toB {
		return false
	}
	if fromA == toA && fromB == toB {
		return true
	}
	t, rows, cols := e.window(A, B, fromA, fromB, toA, toB, flags&BackwardSearch != 0, sc)
	return t.at(rows, cols) >= 0
}

func (e bandedExtender) AlignTarget(A, B []byte, fromA, fromB, toA, toB int, sc *scoring.Context, flags Flags) (cluster.Delta, int, int, bool) {
	if fromA == toA && fromB == toB {
		return nil, toA, toB, true
	}
	backward := flags&BackwardSearch != 0
	t, rows, cols := e.window(A, B, fromA, fromB, toA, toB, backward, sc)

	freeEnd := flags&SeqEndBit != 0 && flags&OptimalBit == 0
	if !freeEnd {
		ops := walkOps(t, rows, cols, !backward)
		if backward {
			return deltaFromOps(ops), fromA, fromB, true
		}
		return deltaFromOps(ops), toA, toB, true
	}

	bestI, bestJ, bestScore := rows, cols, t.at(rows, cols)
	for i := 0; i <= rows; i++ {
		for j := 0; j <= cols; j++ {
			if v := t.at(i, j); v > bestScore {
				bestScore, bestI, bestJ = v, i, j
			}
		}
	}
	ops := walkOps(t, bestI, bestJ, !backward)
	reached := bestI == rows && bestJ == cols

	if backward {
		return deltaFromOps(ops), toA - bestI, toB - bestJ, reached
	}
	return deltaFromOps(ops), fromA + bestI, fromB + bestJ, reached
}

func (e bandedExtender) ForcedExtendForward(A, B []byte, fromA, fromB, toA, toB int, sc *scoring.Context, flags Flags) (cluster.Delta, bool) {
	if fromA == toA && fromB == toB {
		return nil, true
	}
	backward := flags&BackwardSearch != 0
	t, rows, cols := e.window(A, B, fromA, fromB, toA, toB, backward, sc)
	ops := walkOps(t, rows, cols, !backward)
	return deltaFromOps(ops), true
}
