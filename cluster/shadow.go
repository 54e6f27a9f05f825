package cluster

// Shadowed implements the shadow test from spec §4.2: a cluster is shadowed
// when some already-produced alignment on the same strand fully contains the
// cluster's span in both A and B coordinates. Shadowed clusters are
// discarded by the merge driver; their anchors are already consumed.
func Shadowed(idx *AlignmentIndex, dir Dir, c *Cluster) bool {
	r := c.Range()

	if a := idx.floor(r.Start.A); a != nil && a.DirB == dir && a.Range().ContainsRange(r) {
		return true
	}

	// The floor lookup covers the overwhelmingly common case (the shadowing
	// alignment, if any, is the most recent one overlapping this SA). Fall
	// back to a full backward scan for the rare case where an earlier
	// alignment on a different diagonal still reaches over this cluster.
	list := idx.All()
	for i := len(list) - 1; i >= 0; i-- {
		a := list[i]
		if a.DirB == dir && a.Range().ContainsRange(r) {
			return true
		}
	}
	return false
}
