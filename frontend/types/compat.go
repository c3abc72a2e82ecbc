package types

// Compatibility decides whether an implicit conversion may bridge a type to an expected type
// when checking whether one satisfies the other.
//
// There are exactly two instances, ViewsAllowed and NoViewsAllowed, and they are
// compared by identity
type Compatibility struct {
	name  string
	views bool
}

var (
	// ViewsAllowed consults the ViewSearch of the context
	ViewsAllowed = &Compatibility{name: "viewsAllowed", views: true}
	// NoViewsAllowed never finds a conversion
	NoViewsAllowed = &Compatibility{name: "noViewsAllowed", views: false}
)

func (c *Compatibility) String() string { return c.name }

func (c *Compatibility) hash() uint64 {
	if c.views {
		return 101
	}
	return 103
}

// ViewExists reports whether a conversion from tp to pt exists under this policy
func (c *Compatibility) ViewExists(ctx *TypeCtx, tp, pt Type) bool {
	if !c.views {
		return false
	}
	return ctx.views.ViewExists(ctx, tp, pt)
}

// IsCompatible is true when the evaluation type of tp is a subtype of the evaluation type
// of pt, or when a conversion from tp to pt exists
func (c *Compatibility) IsCompatible(ctx *TypeCtx, tp, pt Type) bool {
	return ctx.IsSubtype(widenExpr(tp), widenExpr(pt)) || c.ViewExists(ctx, tp, pt)
}

// NormalizedCompatible normalizes tp against pt and tests compatibility, all inside a
// disposable typer state: normalization may add binders to the constraint and the
// comparison may narrow bounds, none of which must be seen by ctx
func (c *Compatibility) NormalizedCompatible(ctx *TypeCtx, tp, pt Type) bool {
	exploring := ctx.Exploring()
	normalized := exploring.Normalize(tp, pt)
	compatible := c.IsCompatible(exploring, normalized, pt)
	ctx.logger.Debug("normalizedCompatible", "tp", tp.String(), "normalized", normalized.String(), "pt", pt.String(), "compatible", compatible)
	return compatible
}

// ConstrainResult decides whether the result of callable mt can satisfy pt without
// applying mt to arguments. Dependent methods are always accepted because their result
// is only known once arguments are bound
func (c *Compatibility) ConstrainResult(ctx *TypeCtx, mt Type, pt Type) bool {
	switch pt := pt.(type) {
	case *FunProto:
		if mt, ok := mt.(*MethodType); ok {
			return mt.IsDependent() || c.ConstrainResult(ctx, mt.resType, pt.resType)
		}
		return true
	case *WildcardType, *MethodType, *PolyType, *ExprType:
		return true
	}
	if isRef(pt, UnitType.name) {
		// the result of a call whose value is discarded never blocks applicability
		return true
	}
	if mt, ok := mt.(*MethodType); ok {
		return mt.IsDependent() || c.IsCompatible(ctx, ctx.Normalize(mt, pt), pt)
	}
	return c.IsCompatible(ctx, mt, pt)
}
