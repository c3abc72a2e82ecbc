package types

// wildApproxMap carries the state of one WildApprox traversal
type wildApproxMap struct {
	ctx *TypeCtx
	// approximating holds the parameters whose bounds are being approximated, so
	// that F-bounded parameters do not loop
	approximating map[*TypeParamRef]struct{}
}

func (m *wildApproxMap) apply(t Type) Type {
	return m.ctx.wildApprox(t, m)
}

// WildApprox replaces the type parameters, inference variables and parameter references
// in tp by placeholders bounded like them, so that the result no longer depends on
// anything being inferred. Selection expectations lose their conversion search
func (ctx *TypeCtx) WildApprox(tp Type) Type {
	m := &wildApproxMap{ctx: ctx}
	return ctx.wildApprox(tp, m)
}

func (ctx *TypeCtx) wildApprox(tp Type, m *wildApproxMap) Type {
	switch tp := tp.(type) {
	case *NamedType:
		if tp.IsStatic() {
			return tp
		}
		return tp.derivedNamedType(ctx.wildApprox(tp.prefix, m))
	case *TermRef:
		if tp.IsStatic() {
			return tp
		}
		return tp.derivedTermRef(ctx.wildApprox(tp.prefix, m), tp.underlying)
	case *RefinedType:
		return tp.derivedRefinedType(ctx.wildApprox(tp.parent, m), ctx.wildApprox(tp.refinedInfo, m))
	case *TypeBounds:
		if tp.IsAlias() {
			return tp.derivedAlias(ctx.wildApprox(tp.lo, m))
		}
		return tp.derivedTypeBounds(ctx.wildApprox(tp.lo, m), ctx.wildApprox(tp.hi, m))
	case *TypeParamRef:
		bounds, ok := ctx.Constraint().Entry(tp)
		if !ok {
			bounds = tp.DeclaredBounds()
		}
		return ctx.approxParam(tp, bounds, m)
	case *TermParamRef:
		return NewWildcardType(UpperBounds(ctx.wildApprox(tp.Underlying(), m)))
	case *TypeVar:
		if inst, ok := tp.InstanceIn(ctx); ok {
			return ctx.wildApprox(inst, m)
		}
		bounds, ok := ctx.Constraint().Entry(tp.origin)
		if !ok {
			return Wildcard
		}
		return ctx.approxParam(tp.origin, bounds, m)
	case *AndType:
		t1, t2 := ctx.wildApprox(tp.t1, m), ctx.wildApprox(tp.t2, m)
		if isWildcard(t1) || isWildcard(t2) {
			return NewWildcardType(wildBounds(t1).Meet(wildBounds(t2)))
		}
		return tp.derivedAndType(t1, t2)
	case *OrType:
		t1, t2 := ctx.wildApprox(tp.t1, m), ctx.wildApprox(tp.t2, m)
		if isWildcard(t1) || isWildcard(t2) {
			return NewWildcardType(wildBounds(t1).Join(wildBounds(t2)))
		}
		return tp.derivedOrType(t1, t2)
	case *SelectionProto:
		return tp.derivedSelectionProto(ctx.run, tp.name, ctx.wildApprox(tp.memberProto, m), NoViewsAllowed)
	case *ViewProto:
		return tp.derivedViewProto(ctx.wildApprox(tp.argType, m), ctx.wildApprox(tp.resType, m))
	case *ThisType, *BoundVar, *noPrefix:
		return tp
	}
	return tp.doMap(m.apply)
}

func (ctx *TypeCtx) approxParam(param *TypeParamRef, bounds *TypeBounds, m *wildApproxMap) Type {
	if _, ok := m.approximating[param]; ok {
		return Wildcard
	}
	if m.approximating == nil {
		m.approximating = make(map[*TypeParamRef]struct{})
	}
	m.approximating[param] = struct{}{}
	defer delete(m.approximating, param)

	approxBounds, ok := ctx.wildApprox(bounds, m).(*TypeBounds)
	if !ok {
		return Wildcard
	}
	return NewWildcardType(approxBounds)
}

func isWildcard(t Type) bool {
	_, ok := t.(*WildcardType)
	return ok
}

// wildBounds is the interval t ranges over: its bounds for a placeholder, and t itself otherwise
func wildBounds(t Type) *TypeBounds {
	if w, ok := t.(*WildcardType); ok {
		return w.Bounds()
	}
	return AliasBounds(t)
}
