package types

import (
	"github.com/cottand/ileproto/frontend/ast"
	"github.com/cottand/ileproto/frontend/ilerr"
	"github.com/pkg/errors"
	"go/token"
	"maps"
)

var errUnsupportedExpr = errors.New("expression cannot be typed")

// EnvTyper types argument expressions against a fixed environment of identifiers
type EnvTyper struct {
	env map[string]Type
}

var _ Typer = (*EnvTyper)(nil)

func NewEnvTyper(env map[string]Type) *EnvTyper {
	return &EnvTyper{env: maps.Clone(env)}
}

// Declare binds name in the environment
func (t *EnvTyper) Declare(name string, tpe Type) *EnvTyper {
	if t.env == nil {
		t.env = make(map[string]Type)
	}
	t.env[name] = tpe
	return t
}

var literalTypes = map[token.Token]Type{
	token.INT:     TypeRefTo("Int"),
	token.FLOAT:   TypeRefTo("Double"),
	token.STRING:  TypeRefTo("String"),
	token.CHAR:    TypeRefTo("Char"),
	token.ILLEGAL: UnitType,
}

func (t *EnvTyper) TypedUnadapted(ctx *TypeCtx, arg ast.Expr, formal Type) *Typed {
	switch arg := arg.(type) {
	case *ast.Ident:
		tpe, ok := t.env[arg.Name]
		if !ok {
			ctx.report(ilerr.New(ilerr.NewUndefinedVariable{Positioner: ast.RangeOf(arg), Name: arg.Name}))
			return NewTyped(arg, ErrorType)
		}
		return NewTyped(arg, widenExpr(tpe))
	case *ast.Literal:
		if tpe, ok := literalTypes[arg.Kind]; ok {
			return NewTyped(arg, tpe)
		}
	case *ast.Tuple:
		var elemFormals []Type
		if tuple, ok := widenExpr(formal).(*TupleType); ok && len(tuple.elems) == len(arg.Elems) {
			elemFormals = tuple.elems
		}
		elems := make([]*Typed, len(arg.Elems))
		elemTypes := make([]Type, len(arg.Elems))
		for i, elem := range arg.Elems {
			elemFormal := Type(Wildcard)
			if elemFormals != nil {
				elemFormal = elemFormals[i]
			}
			elems[i] = t.TypedUnadapted(ctx, elem, elemFormal)
			elemTypes[i] = elems[i].tpe
		}
		typed := NewTyped(arg, NewTupleType(elemTypes...))
		typed.elems = elems
		return typed
	case *ast.Select:
		qual := t.TypedUnadapted(ctx, arg.Qual, SelectionProtoFor(ctx, arg.Name, formal, NoViewsAllowed))
		if qual.IsError() {
			return NewTyped(arg, ErrorType)
		}
		denot := ctx.Member(qual.tpe, arg.Name)
		if !denot.Exists() {
			ctx.report(ilerr.New(ilerr.NewNoSuchMember{Positioner: ast.RangeOf(arg), Receiver: qual.tpe.String(), Name: arg.Name}))
			return NewTyped(arg, ErrorType)
		}
		info := denot.Alternatives()[0]
		for _, alt := range denot.Alternatives() {
			if ViewsAllowed.NormalizedCompatible(ctx, alt, formal) {
				info = alt
				break
			}
		}
		return NewTyped(arg, widenExpr(info))
	case *ast.Apply:
		return t.typedApply(ctx, arg, formal)
	}
	ctx.report(ilerr.New(ilerr.Unclassified{Positioner: ast.RangeOf(arg), From: errUnsupportedExpr}))
	return NewTyped(arg, ErrorType)
}

func (t *EnvTyper) calleeDenotation(ctx *TypeCtx, fun ast.Expr) (string, Denotation, bool) {
	switch fun := fun.(type) {
	case *ast.Ident:
		tpe, ok := t.env[fun.Name]
		if !ok {
			ctx.report(ilerr.New(ilerr.NewUndefinedVariable{Positioner: ast.RangeOf(fun), Name: fun.Name}))
			return fun.Name, NoDenotation, false
		}
		return fun.Name, SingleDenotation(tpe), true
	case *ast.Select:
		qual := t.TypedUnadapted(ctx, fun.Qual, SelectionProtoFor(ctx, fun.Name, AnyFunctionProto, NoViewsAllowed))
		if qual.IsError() {
			return fun.Name, NoDenotation, false
		}
		denot := ctx.Member(qual.tpe, fun.Name)
		if !denot.Exists() {
			ctx.report(ilerr.New(ilerr.NewNoSuchMember{Positioner: ast.RangeOf(fun), Receiver: qual.tpe.String(), Name: fun.Name}))
			return fun.Name, NoDenotation, false
		}
		return fun.Name, denot, true
	}
	typed := t.TypedUnadapted(ctx, fun, AnyFunctionProto)
	return ast.ExprString(fun), SingleDenotation(typed.tpe), !typed.IsError()
}

func (t *EnvTyper) typedApply(ctx *TypeCtx, app *ast.Apply, formal Type) *Typed {
	callee, denot, ok := t.calleeDenotation(ctx, app.Fun)
	if !ok {
		return NewTyped(app, ErrorType)
	}
	proto := NewFunProto(ctx, app.Args, formal, t)
	alt := ctx.ResolveApply(callee, denot, proto)
	if alt == ErrorType {
		return NewTyped(app, ErrorType)
	}
	return NewTyped(app, t.applyResult(ctx, alt, proto))
}

// applyResult is the result type of applying alt, with the type parameters of alt
// approximated by what the arguments tell about them
func (t *EnvTyper) applyResult(ctx *TypeCtx, alt Type, proto *FunProto) Type {
	exploring := ctx.Exploring()
	formals, res, ok := exploring.callableShape(alt)
	if !ok {
		return ErrorType
	}
	if len(formals) != len(proto.args) && proto.IsTupled() {
		proto = proto.Tupled()
	}
	for i, arg := range proto.args {
		if argType, ok := proto.TypeOfArg(arg); ok && i < len(formals) {
			ViewsAllowed.IsCompatible(exploring, argType, formals[i])
		}
	}
	ViewsAllowed.ConstrainResult(exploring, res, proto.resType)
	return exploring.WildApprox(res)
}

// Adapt returns tree when it conforms to formal, wraps it in a conversion when a view
// exists, and reports a mismatch otherwise
func (t *EnvTyper) Adapt(ctx *TypeCtx, tree *Typed, formal Type) *Typed {
	if tree.IsError() || formal == nil || formal == Wildcard {
		return tree
	}
	if NoViewsAllowed.IsCompatible(ctx, tree.tpe, formal) {
		return tree
	}
	if ViewsAllowed.ViewExists(ctx, tree.tpe, formal) {
		target := widenExpr(formal)
		if _, isProto := target.(Proto); isProto {
			target = tree.tpe
		}
		return NewConverted(tree, target)
	}
	ctx.report(ilerr.New(ilerr.NewTypeMismatch{Positioner: ast.RangeOf(tree.expr), Expected: formal.String(), Found: tree.tpe.String()}))
	return NewTyped(tree.expr, ErrorType)
}
