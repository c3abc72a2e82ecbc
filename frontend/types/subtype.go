package types

// ClassHierarchy answers inheritance questions about top-level classes
type ClassHierarchy interface {
	DerivesFrom(cls, base string) bool
}

// StructuralComparer decides subtyping by the shape of types, asking the MemberLookup of the
// context about inheritance when it implements ClassHierarchy.
//
// Type arguments are invariant. Comparing against a constrained type parameter narrows
// its bounds in the constraint of the context
type StructuralComparer struct{}

func (c StructuralComparer) IsSubtype(ctx *TypeCtx, tp, pt Type) bool {
	result := c.isSubtype(ctx, tp, pt)
	ctx.logger.Debug("isSubtype", "tp", tp.String(), "pt", pt.String(), "result", result)
	return result
}

func sameParam(tp, pt Type) bool {
	p1, ok1 := tp.(*TypeParamRef)
	p2, ok2 := pt.(*TypeParamRef)
	return ok1 && ok2 && p1.binder == p2.binder && p1.index == p2.index
}

func (c StructuralComparer) isSubtype(ctx *TypeCtx, tp, pt Type) bool {
	if tp == pt || sameParam(tp, pt) {
		return true
	}
	if _, isProto := pt.(Proto); isProto {
		return ctx.IsSubtype(tp, pt)
	}

	// placeholders and extremes
	switch {
	case isRef(tp, ErrorType.name), isRef(pt, ErrorType.name):
		return true
	case isRef(tp, NothingType.name), isRef(pt, AnyType.name):
		return true
	}
	if w, ok := pt.(*WildcardType); ok {
		return w.bounds == nil || ctx.IsSubtype(tp, w.bounds.hi)
	}
	if w, ok := tp.(*WildcardType); ok {
		return w.bounds == nil || ctx.IsSubtype(w.bounds.lo, pt)
	}

	// inference variables stand for their instance, or for the parameter they were created for
	if tv, ok := tp.(*TypeVar); ok {
		if inst, ok := tv.InstanceIn(ctx); ok {
			return ctx.IsSubtype(inst, pt)
		}
		return ctx.IsSubtype(tv.origin, pt)
	}
	if tv, ok := pt.(*TypeVar); ok {
		if inst, ok := tv.InstanceIn(ctx); ok {
			return ctx.IsSubtype(tp, inst)
		}
		return ctx.IsSubtype(tp, tv.origin)
	}

	if param, ok := tp.(*TypeParamRef); ok {
		return c.paramBelow(ctx, param, pt)
	}
	if param, ok := pt.(*TypeParamRef); ok {
		return c.paramAbove(ctx, tp, param)
	}

	// expression wrappers
	if e1, ok := tp.(*ExprType); ok {
		if e2, ok := pt.(*ExprType); ok {
			return ctx.IsSubtype(e1.resType, e2.resType)
		}
		return ctx.IsSubtype(e1.resType, pt)
	}
	if b1, ok := tp.(*ByNameType); ok {
		return ctx.IsSubtype(b1.underlying, widenExpr(pt))
	}
	if b2, ok := pt.(*ByNameType); ok {
		return ctx.IsSubtype(tp, b2.underlying)
	}

	// singletons
	if r2, ok := pt.(*TermRef); ok {
		r1, ok := tp.(*TermRef)
		return ok && Equal(r1, r2)
	}
	if r1, ok := tp.(*TermRef); ok {
		return ctx.IsSubtype(r1.underlying, pt)
	}
	if r1, ok := tp.(*TermParamRef); ok {
		return ctx.IsSubtype(r1.Underlying(), pt)
	}
	if this, ok := tp.(*ThisType); ok {
		if this2, ok := pt.(*ThisType); ok {
			return this.cls == this2.cls
		}
		return ctx.IsSubtype(TypeRefTo(this.cls), pt)
	}

	// unions and intersections
	if or, ok := tp.(*OrType); ok {
		return ctx.IsSubtype(or.t1, pt) && ctx.IsSubtype(or.t2, pt)
	}
	if and, ok := pt.(*AndType); ok {
		return ctx.IsSubtype(tp, and.t1) && ctx.IsSubtype(tp, and.t2)
	}
	if or, ok := pt.(*OrType); ok {
		if c.speculate(ctx, tp, or.t1) || c.speculate(ctx, tp, or.t2) {
			return true
		}
	}
	if and, ok := tp.(*AndType); ok {
		return c.speculate(ctx, and.t1, pt) || c.speculate(ctx, and.t2, pt)
	}

	if refined, ok := pt.(*RefinedType); ok {
		if !ctx.IsSubtype(tp, refined.parent) {
			return false
		}
		return ctx.Member(tp, refined.refinedName).HasAltWith(func(info Type) bool {
			return ctx.IsSubtype(info, refined.refinedInfo)
		})
	}
	if refined, ok := tp.(*RefinedType); ok {
		return ctx.IsSubtype(refined.parent, pt)
	}

	return c.isSubtypeStructural(ctx, tp, pt)
}

// speculate tries tp <: pt and keeps the narrowings it made only if it succeeds
func (c StructuralComparer) speculate(ctx *TypeCtx, tp, pt Type) bool {
	fresh := ctx.Fresh()
	if !fresh.IsSubtype(tp, pt) {
		return false
	}
	ctx.setConstraint(fresh.Constraint())
	return true
}

func (c StructuralComparer) paramBelow(ctx *TypeCtx, param *TypeParamRef, pt Type) bool {
	bounds, constrained := ctx.Constraint().Entry(param)
	if !constrained {
		return ctx.IsSubtype(param.DeclaredBounds().hi, pt)
	}
	if !ctx.IsSubtype(bounds.lo, pt) {
		return false
	}
	narrowed, _ := ctx.Constraint().Entry(param)
	ctx.setConstraint(ctx.Constraint().Updated(param, NewTypeBounds(narrowed.lo, AndOf(narrowed.hi, pt))))
	return true
}

func (c StructuralComparer) paramAbove(ctx *TypeCtx, tp Type, param *TypeParamRef) bool {
	bounds, constrained := ctx.Constraint().Entry(param)
	if !constrained {
		return ctx.IsSubtype(tp, param.DeclaredBounds().lo)
	}
	if !ctx.IsSubtype(tp, bounds.hi) {
		return false
	}
	narrowed, _ := ctx.Constraint().Entry(param)
	ctx.setConstraint(ctx.Constraint().Updated(param, NewTypeBounds(OrOf(narrowed.lo, tp), narrowed.hi)))
	return true
}

func (c StructuralComparer) isSubtypeStructural(ctx *TypeCtx, tp, pt Type) bool {
	switch pt := pt.(type) {
	case *NamedType:
		switch tp := tp.(type) {
		case *NamedType:
			return c.isSubclass(ctx, tp, pt)
		case *AppliedType:
			if tycon, ok := tp.tycon.(*NamedType); ok {
				return c.isSubclass(ctx, tycon, pt)
			}
		case *FuncType, *TupleType:
			return false
		}
	case *AppliedType:
		applied, ok := tp.(*AppliedType)
		if !ok || len(applied.args) != len(pt.args) || !Equal(applied.tycon, pt.tycon) {
			return false
		}
		for i, arg := range applied.args {
			if !ctx.IsSubtype(arg, pt.args[i]) || !ctx.IsSubtype(pt.args[i], arg) {
				return false
			}
		}
		return true
	case *FuncType:
		fn, ok := tp.(*FuncType)
		if !ok || len(fn.params) != len(pt.params) {
			return false
		}
		for i, param := range fn.params {
			if !ctx.IsSubtype(pt.params[i], param) {
				return false
			}
		}
		return ctx.IsSubtype(fn.result, pt.result)
	case *TupleType:
		tuple, ok := tp.(*TupleType)
		if !ok || len(tuple.elems) != len(pt.elems) {
			return false
		}
		for i, elem := range tuple.elems {
			if !ctx.IsSubtype(elem, pt.elems[i]) {
				return false
			}
		}
		return true
	case *MethodType:
		mt, ok := tp.(*MethodType)
		if !ok || mt.implicit != pt.implicit || len(mt.paramTypes) != len(pt.paramTypes) {
			return false
		}
		for i, param := range mt.paramTypes {
			if !ctx.IsSubtype(pt.paramTypes[i], param) {
				return false
			}
		}
		return ctx.IsSubtype(mt.resType, substBinder(pt.resType, pt, mt))
	case *PolyType:
		poly, ok := tp.(*PolyType)
		if !ok || len(poly.paramNames) != len(pt.paramNames) {
			return false
		}
		for i, b := range poly.paramBounds {
			if !Equal(b, substBinder(pt.paramBounds[i], pt, poly)) {
				return false
			}
		}
		return ctx.IsSubtype(poly.resType, substBinder(pt.resType, pt, poly))
	case *TypeBounds:
		if bounds, ok := tp.(*TypeBounds); ok {
			return ctx.IsSubtype(pt.lo, bounds.lo) && ctx.IsSubtype(bounds.hi, pt.hi)
		}
		return ctx.IsSubtype(pt.lo, tp) && ctx.IsSubtype(tp, pt.hi)
	}
	return Equal(tp, pt)
}

func (c StructuralComparer) isSubclass(ctx *TypeCtx, tp, pt *NamedType) bool {
	if !tp.IsStatic() || !pt.IsStatic() {
		return Equal(tp, pt)
	}
	if tp.name == pt.name {
		return true
	}
	hierarchy, ok := ctx.members.(ClassHierarchy)
	return ok && hierarchy.DerivesFrom(tp.name, pt.name)
}
