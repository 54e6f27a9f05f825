package cluster

import "github.com/grailbio/nucmerge/coord"

// Cluster is an ordered chain of co-linear exact matches sharing a strand.
// Invariants (enforced upstream, assumed here): Matches is sorted by
// increasing SA, and within the cluster every match's end precedes the next
// match's start on both A and B.
type Cluster struct {
	Matches  []Match
	DirB     Dir
	WasFused bool
}

// Range returns the span of the cluster: from the first match's start to the
// last match's end, on both A and B.
func (c *Cluster) Range() coord.Range {
	first, last := c.Matches[0], c.Matches[len(c.Matches)-1]
	return coord.Range{
		Start: coord.Pos{A: first.SA, B: first.SB},
		Limit: coord.Pos{A: last.EndA(), B: last.EndB()},
	}
}

// Synteny is a group of clusters that all pair the same reference record Af
// against the same query B, sorted ascending by (SA, SB) of their first
// match.
type Synteny struct {
	// AfID and BfID identify the reference and query records this synteny
	// covers; the records themselves live in the seqio layer and are passed
	// alongside a Synteny wherever needed rather than embedded in it, so that
	// Synteny stays a plain, serializable description of cluster geometry.
	AfID, BfID string

	Clusters []*Cluster
}
