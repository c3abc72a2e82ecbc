package types

// ArityApplicability decides applicability by checking each argument type against the
// matching parameter type, and the result against the expected result.
// Callables are methods, polymorphic methods, function values and values with an apply member
type ArityApplicability struct{}

func (a ArityApplicability) IsApplicable(ctx *TypeCtx, fn Type, args []*Typed, resultType Type) bool {
	argTypes := make([]Type, len(args))
	for i, arg := range args {
		argTypes[i] = arg.tpe
	}
	return a.IsApplicableToTypes(ctx, fn, argTypes, resultType)
}

// IsApplicableToTypes works in an exploring context, so a positive answer leaves no narrowing behind
func (a ArityApplicability) IsApplicableToTypes(ctx *TypeCtx, fn Type, argTypes []Type, resultType Type) bool {
	exploring := ctx.Exploring()
	return a.isApplicable(exploring, fn, argTypes, resultType, true)
}

func (a ArityApplicability) isApplicable(ctx *TypeCtx, fn Type, argTypes []Type, resultType Type, tryApply bool) bool {
	switch fn := widen(fn).(type) {
	case *PolyType:
		poly, _ := ctx.Constrained(fn, nil)
		return a.isApplicable(ctx, poly.resType, argTypes, resultType, tryApply)
	case *MethodType:
		if fn.implicit {
			return false
		}
		return argsConform(ctx, fn.paramTypes, argTypes) &&
			ViewsAllowed.ConstrainResult(ctx, fn.resType, resultType)
	case *FuncType:
		return argsConform(ctx, fn.params, argTypes) &&
			ViewsAllowed.ConstrainResult(ctx, fn.result, resultType)
	case *TypeVar:
		if inst, ok := fn.InstanceIn(ctx); ok {
			return a.isApplicable(ctx, inst, argTypes, resultType, tryApply)
		}
		return false
	}
	if !tryApply {
		return false
	}
	return ctx.Member(fn, ApplyName).HasAltWith(func(alt Type) bool {
		return a.isApplicable(ctx.Exploring(), alt, argTypes, resultType, false)
	})
}

func argsConform(ctx *TypeCtx, formals []Type, argTypes []Type) bool {
	if len(formals) != len(argTypes) {
		return false
	}
	for i, formal := range formals {
		if !ViewsAllowed.IsCompatible(ctx, argTypes[i], formal) {
			return false
		}
	}
	return true
}
