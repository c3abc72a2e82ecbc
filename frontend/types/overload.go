package types

import (
	"github.com/cottand/ileproto/frontend/ilerr"
	"github.com/cottand/ileproto/util"
	"slices"
)

// ResolveOverloaded returns the alternatives that accept the arguments of pt with each argument
// adapted to the matching parameter type, and whose result is compatible with the result pt expects.
//
// When no alternative accepts the arguments as they are, alternatives taking a single
// parameter are tried again with the arguments packed into a tuple
func (ctx *TypeCtx) ResolveOverloaded(alts []Type, pt *FunProto) []Type {
	applicable := ctx.filterApplicable(alts, pt)
	if len(applicable) == 0 && len(pt.args) > 1 {
		tupled := pt.Tupled()
		applicable = ctx.filterApplicable(alts, tupled)
		ctx.logger.Debug("retried overload resolution with tupled arguments", "args", pt.args, "applicable", len(applicable))
	}
	return applicable
}

func (ctx *TypeCtx) filterApplicable(alts []Type, pt *FunProto) []Type {
	var applicable []Type
	for _, alt := range alts {
		if ctx.isApplicableWithTypedArgs(alt, pt) {
			applicable = append(applicable, alt)
		}
	}
	return applicable
}

// isApplicableWithTypedArgs types each argument against the matching parameter of alt, in an
// exploring context with its own reporter, so that failing alternatives report nothing
func (ctx *TypeCtx) isApplicableWithTypedArgs(alt Type, pt *FunProto) bool {
	exploring := ctx.Exploring().WithNewReporter(ilerr.NewStoreReporter())
	formals, resType, ok := exploring.callableShape(alt)
	if !ok || len(formals) != len(pt.args) {
		return false
	}
	for i, arg := range pt.args {
		typed := pt.TypedArg(exploring, arg, formals[i])
		if typed.IsError() || exploring.reporter.ErrorCount() > 0 {
			exploring.logger.Debug("alternative rejected argument", "alternative", alt.String(), "arg", arg, "formal", formals[i].String())
			return false
		}
	}
	return ViewsAllowed.ConstrainResult(exploring, resType, pt.resType)
}

// callableShape returns the parameter types and result of something that can be called directly
func (ctx *TypeCtx) callableShape(fn Type) (formals []Type, resType Type, ok bool) {
	switch fn := widen(fn).(type) {
	case *PolyType:
		poly, _ := ctx.Constrained(fn, nil)
		return ctx.callableShape(poly.resType)
	case *MethodType:
		if fn.implicit {
			return nil, nil, false
		}
		return fn.paramTypes, ResultTypeApprox(fn), true
	case *FuncType:
		return fn.params, fn.result, true
	}
	return nil, nil, false
}

// ResolveApply picks the single alternative of denot that accepts the arguments of pt, reporting
// an error and returning ErrorType when there is none, or when there are several
func (ctx *TypeCtx) ResolveApply(callee string, denot Denotation, pt *FunProto) Type {
	applicable := ctx.ResolveOverloaded(denot.Alternatives(), pt)
	switch len(applicable) {
	case 1:
		return applicable[0]
	case 0:
		argTypes := make([]string, len(pt.args))
		for i, arg := range pt.args {
			if tpe, ok := pt.TypeOfArg(arg); ok {
				argTypes[i] = tpe.String()
			} else {
				argTypes[i] = "?"
			}
		}
		ctx.report(ilerr.New(ilerr.NewNotApplicable{Positioner: pt.argsRange(), Callee: callee, Args: argTypes}))
	default:
		alternatives := slices.Collect(util.MapIter(slices.Values(applicable), Type.String))
		ctx.report(ilerr.New(ilerr.NewAmbiguousOverload{Positioner: pt.argsRange(), Alternatives: alternatives}))
	}
	return ErrorType
}
