package types

import "fmt"

// TyperState owns the Constraint of one line of inference.
//
// Children are forked explicitly: Fresh children may be committed into their parent,
// Explore children are disposable and can never be committed.
// Nothing a child does is visible to the parent before Commit
type TyperState struct {
	id          uint64
	constraint  *Constraint
	parent      *TyperState
	committable bool
	committed   bool
}

func NewTyperState() *TyperState {
	return &TyperState{
		id:          freshID(),
		constraint:  EmptyConstraint(),
		committable: true,
	}
}

func (ts *TyperState) Constraint() *Constraint { return ts.constraint }
func (ts *TyperState) Parent() *TyperState     { return ts.parent }

// IsCommittable is false for exploring states and for all of their descendants
func (ts *TyperState) IsCommittable() bool { return ts.committable }

func (ts *TyperState) fork(committable bool) *TyperState {
	return &TyperState{
		id:          freshID(),
		constraint:  ts.constraint,
		parent:      ts,
		committable: committable && ts.committable,
	}
}

// Fresh returns a child state that may later be committed into ts
func (ts *TyperState) Fresh() *TyperState {
	return ts.fork(true)
}

// Explore returns a disposable child state, used to test feasibility without committing
func (ts *TyperState) Explore() *TyperState {
	return ts.fork(false)
}

// Commit makes the constraint of ts the constraint of its parent.
// Committing an exploring state, a root state, or committing twice is a bug in the caller
func (ts *TyperState) Commit() {
	if !ts.committable {
		panic(fmt.Sprintf("typer state %d is not committable", ts.id))
	}
	if ts.parent == nil {
		panic(fmt.Sprintf("typer state %d has no parent to commit into", ts.id))
	}
	if ts.committed {
		panic(fmt.Sprintf("typer state %d was already committed", ts.id))
	}
	ts.parent.constraint = ts.constraint
	ts.committed = true
}

func (ts *TyperState) String() string {
	kind := "committable"
	if !ts.committable {
		kind = "exploring"
	}
	return fmt.Sprintf("TyperState#%d(%s, %s)", ts.id, kind, ts.constraint)
}
