package types

import (
	"fmt"
	"github.com/cottand/ileproto/frontend/ast"
)

// InconsistentConstraintError is raised when a binder is constrained with an owning tree
// in a typer state that cannot be committed, or without one in a state that can.
// Either way the caller is confused about whether it is exploring
type InconsistentConstraintError struct {
	Binder      *PolyType
	Committable bool
	HasOwner    bool
}

func (e *InconsistentConstraintError) Error() string {
	if e.HasOwner {
		return fmt.Sprintf("constraining %s for a tree in a typer state that cannot be committed", e.Binder)
	}
	return fmt.Sprintf("constraining %s without an owning tree in a committable typer state", e.Binder)
}

// Constrained adds tl to the constraint of ctx and returns the binder that was added, which
// is a copy of tl if tl was already constrained.
//
// When owningTree is set, an inference variable is created for each parameter and
// returned alongside. ctx must be committable exactly when owningTree is set
func (ctx *TypeCtx) Constrained(tl *PolyType, owningTree ast.Expr) (*PolyType, []*TypeVar) {
	state := ctx.typerState
	hasOwner := owningTree != nil
	if state.IsCommittable() != hasOwner {
		panic(&InconsistentConstraintError{Binder: tl, Committable: state.IsCommittable(), HasOwner: hasOwner})
	}

	added := tl
	if state.constraint.Contains(tl) {
		added = tl.Duplicate()
	}
	var tvars []*TypeVar
	if hasOwner {
		tvars = make([]*TypeVar, len(added.paramNames))
		for i, param := range added.paramRefs {
			tvars[i] = newTypeVar(param, state, owningTree)
		}
	}
	ctx.setConstraint(state.constraint.Add(added, tvars))
	ctx.logger.Debug("constrained binder", "binder", added.String(), "duplicated", added != tl, "owner", owningTree, "typeVars", len(tvars))
	return added, tvars
}
