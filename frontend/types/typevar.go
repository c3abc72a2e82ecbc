package types

import (
	"github.com/cottand/ileproto/frontend/ast"
	"iter"
	"strconv"
)

// TypeVar is an inference variable standing for the type parameter origin.
//
// Its bounds and, once resolved, its instance live in the Constraint of a TyperState
// rather than in the variable, so that speculative typer states can refine a variable
// without the refinement being visible elsewhere
type TypeVar struct {
	id     uint64
	origin *TypeParamRef
	// creatorState is the typer state the variable was created in
	creatorState *TyperState
	// owningTree is the tree whose typing introduced this variable
	owningTree ast.Expr
}

func newTypeVar(origin *TypeParamRef, creatorState *TyperState, owningTree ast.Expr) *TypeVar {
	return &TypeVar{
		id:           freshID(),
		origin:       origin,
		creatorState: creatorState,
		owningTree:   owningTree,
	}
}

func (tv *TypeVar) Origin() *TypeParamRef      { return tv.origin }
func (tv *TypeVar) OwningTree() ast.Expr       { return tv.owningTree }
func (tv *TypeVar) CreatorState() *TyperState  { return tv.creatorState }
func (tv *TypeVar) Hash() uint64               { return mix(79, tv.id) }
func (tv *TypeVar) children() iter.Seq[Type]   { return emptySeq }
func (tv *TypeVar) doMap(func(Type) Type) Type { return tv }

func (tv *TypeVar) String() string {
	return "?" + tv.origin.Name() + "#" + strconv.FormatUint(tv.id, 10)
}

// InstanceIn returns the type tv was resolved to in ctx, if any
func (tv *TypeVar) InstanceIn(ctx *TypeCtx) (Type, bool) {
	return ctx.Constraint().Instance(tv)
}

// IsInstantiatedIn reports whether tv was resolved in ctx
func (tv *TypeVar) IsInstantiatedIn(ctx *TypeCtx) bool {
	_, ok := tv.InstanceIn(ctx)
	return ok
}

// InstantiateWith resolves tv to tp in the typer state of ctx
func (tv *TypeVar) InstantiateWith(ctx *TypeCtx, tp Type) Type {
	ctx.typerState.constraint = ctx.typerState.constraint.Instantiated(tv, tp)
	ctx.logger.Debug("instantiated type variable", "typeVar", tv.String(), "instance", tp.String())
	return tp
}

// Instantiate resolves tv to its lower bound when fromBelow, and to its upper bound otherwise.
// A variable without bounds in the constraint resolves to Nothing or Any
func (tv *TypeVar) Instantiate(ctx *TypeCtx, fromBelow bool) Type {
	if inst, ok := tv.InstanceIn(ctx); ok {
		return inst
	}
	bounds, ok := ctx.Constraint().Entry(tv.origin)
	if !ok {
		bounds = Unbounded()
	}
	if fromBelow {
		return tv.InstantiateWith(ctx, bounds.lo)
	}
	return tv.InstantiateWith(ctx, bounds.hi)
}
