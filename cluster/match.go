// Package cluster holds the data model shared by target selection, the
// extender façade, the re-scorer, and the merge driver: exact-match anchors
// grouped into strand-consistent clusters, the synteny groups those clusters
// belong to, and the gapped Alignment records the merge driver produces from
// them (spec §3).
package cluster

import "github.com/grailbio/nucmerge/coord"

// Dir is the strand a cluster or alignment lies on, relative to the forward
// orientation of B.
type Dir int

const (
	Forward Dir = iota
	Reverse
)

// Char renders the direction the way the cluster/delta file formats expect
// it (spec §6): '+' or '-'.
func (d Dir) Char() byte {
	if d == Forward {
		return '+'
	}
	return '-'
}

func (d Dir) String() string {
	return string(d.Char())
}

// Match is an exact-match anchor between A and B: 1-based starts on each
// sequence and a length in bases. SB is in the coordinate space of whichever
// B buffer the owning cluster's strand actually indexes: forward B for a
// forward cluster, the pair's shared reverse-complement buffer for a reverse
// cluster. clusterio and deltaio are the only places that ever revC-project
// between this space and B's on-disk forward-orientation display coordinate.
type Match struct {
	SA, SB, Len int
}

// EndA returns the inclusive 1-based end coordinate on A.
func (m Match) EndA() int { return m.SA + m.Len - 1 }

// EndB returns the inclusive 1-based end coordinate on B (forward
// orientation).
func (m Match) EndB() int { return m.SB + m.Len - 1 }

// Range returns the match's span as a coord.Range.
func (m Match) Range() coord.Range {
	return coord.Range{
		Start: coord.Pos{A: m.SA, B: m.SB},
		Limit: coord.Pos{A: m.EndA(), B: m.EndB()},
	}
}
