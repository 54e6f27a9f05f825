package cluster

import (
	"fmt"

	"github.com/grailbio/nucmerge/coord"
)

// State is the lifecycle stage of an Alignment, per spec §4.7:
//
//	FRESH -> EXTENDED_BACKWARD -> {MERGED, STANDALONE}
//	STANDALONE -> (zero or more forward extensions) -> CLOSED
//
// Any transition attempted after CLOSED (or after MERGED, which is terminal)
// is a programming bug.
type State int

const (
	Fresh State = iota
	ExtendedBackward
	Standalone
	Merged
	Closed
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "FRESH"
	case ExtendedBackward:
		return "EXTENDED_BACKWARD"
	case Standalone:
		return "STANDALONE"
	case Merged:
		return "MERGED"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

var validTransitions = map[State]map[State]bool{
	Fresh:            {ExtendedBackward: true},
	ExtendedBackward: {Merged: true, Standalone: true},
	Standalone:       {Standalone: true, Closed: true},
}

// Alignment is a gapped alignment between A and B, per spec §3.
type Alignment struct {
	SA, EA int
	SB, EB int
	DirB   Dir

	Delta     Delta
	DeltaApos int

	Errors, SimErrors, NonAlphas int

	state State
}

// NewSeedAlignment seeds a fresh Alignment from a cluster's first match, per
// spec §4.4 step (b).
func NewSeedAlignment(m Match, dir Dir) *Alignment {
	return &Alignment{
		SA: m.SA, EA: m.EndA(),
		SB: m.SB, EB: m.EndB(),
		DirB:  dir,
		state: Fresh,
	}
}

// Range returns the alignment's current [SA,EA] x [SB,EB] extent.
func (a *Alignment) Range() coord.Range {
	return coord.Range{
		Start: coord.Pos{A: a.SA, B: a.SB},
		Limit: coord.Pos{A: a.EA, B: a.EB},
	}
}

// State returns the alignment's current lifecycle state.
func (a *Alignment) State() State { return a.state }

// Transition moves the alignment to a new state, panicking if the transition
// isn't one the state machine in spec §4.7 allows. The façade and merge
// driver are the only callers; any violation here is the fatal "transition
// after CLOSED" bug spec §4.7 calls out.
func (a *Alignment) Transition(to State) {
	allowed := validTransitions[a.state]
	if !allowed[to] {
		panic(fmt.Sprintf("cluster: illegal alignment state transition %s -> %s", a.state, to))
	}
	a.state = to
}

// RecomputeDeltaApos recomputes DeltaApos from scratch by summing over the
// full delta vector, per spec §4.3's extendBackward behavior after a delta
// prepend.
func (a *Alignment) RecomputeDeltaApos() {
	a.DeltaApos = a.Delta.Apos()
}
