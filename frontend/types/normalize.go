package types

// Normalize rewrites tp into the shape it should be compared against pt in.
//
// Singleton and call-by-name wrappers are looked through first. Polymorphic types are bound in the constraint of ctx, which must therefore be
// exploring. Implicit methods are replaced by their result, since their arguments are
// filled in later. Other non-dependent methods become function values, or stay methods
// when pt expects an application
func (ctx *TypeCtx) Normalize(tp, pt Type) Type {
	switch t := widenByName(tp).(type) {
	case *PolyType:
		poly, _ := ctx.Constrained(t, nil)
		return ctx.Normalize(poly.resType, pt)
	case *MethodType:
		if t.IsImplicit() {
			return ResultTypeApprox(t)
		}
		if t.IsDependent() {
			return tp
		}
		rt := ctx.Normalize(t.resType, pt)
		if _, ok := pt.(applyingProto); ok {
			return t.derivedMethodType(t.paramTypes, rt)
		}
		ft := NewFuncType(t.paramTypes, rt)
		if len(t.paramTypes) > 0 || ctx.IsSubtype(ft, pt) {
			return ft
		}
		return rt
	case *ExprType:
		return t.resType
	}
	return tp
}

// widenByName removes singleton and call-by-name wrappers, in any nesting
func widenByName(t Type) Type {
	for {
		switch w := t.(type) {
		case *TermRef:
			t = w.underlying
		case *ByNameType:
			t = w.underlying
		default:
			return t
		}
	}
}

// ResultTypeApprox is the result of mt, with references to the parameters of mt replaced
// by placeholders bounded by the parameter types
func ResultTypeApprox(mt *MethodType) Type {
	if !mt.IsDependent() {
		return mt.resType
	}
	var approx func(Type) Type
	approx = func(t Type) Type {
		if ref, ok := t.(*TermParamRef); ok && ref.binder == mt {
			return NewWildcardType(UpperBounds(ref.Underlying()))
		}
		return t.doMap(approx)
	}
	return approx(mt.resType)
}
