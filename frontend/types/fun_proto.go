package types

import (
	"github.com/cottand/ileproto/frontend/ast"
	"github.com/cottand/ileproto/util"
	"iter"
	"slices"
)

// FunProto expects a callable that is applied to args and whose result is expected to
// be resType.
//
// The arguments are untyped trees. They are typed lazily, at most once each, and the
// typings are kept on the FunProto so that trying several overloaded alternatives
// does not type the same argument over and over.
// A FunProto is not safe for concurrent use
type FunProto struct {
	id      uint64
	args    []ast.Expr
	resType Type
	typer   Typer
	// ctx is the context the FunProto was built in, in which TypedArgs types the arguments
	ctx *TypeCtx

	// typedArg memoizes unadapted typings by argument tree identity
	typedArg  map[ast.Expr]*Typed
	typedArgs []*Typed
	tupled    *FunProto
}

func NewFunProto(ctx *TypeCtx, args []ast.Expr, resType Type, typer Typer) *FunProto {
	return &FunProto{
		id:       freshID(),
		args:     args,
		resType:  resType,
		typer:    typer,
		ctx:      ctx,
		typedArg: make(map[ast.Expr]*Typed),
	}
}

func (p *FunProto) isProto()         {}
func (p *FunProto) isApplyingProto() {}
func (p *FunProto) Args() []ast.Expr { return p.args }
func (p *FunProto) ResultType() Type { return p.resType }
func (p *FunProto) Typer() Typer     { return p.typer }

// IsMatchedBy is true when tp can be applied to the arguments with a result compatible
// with resType
func (p *FunProto) IsMatchedBy(ctx *TypeCtx, tp Type) bool {
	return ctx.applicability.IsApplicable(ctx, tp, p.TypedArgs(), p.resType)
}

// DerivedFunProto returns p itself when nothing changed, and otherwise a new FunProto
// that starts with no typed arguments
func (p *FunProto) DerivedFunProto(args []ast.Expr, resType Type, typer Typer) *FunProto {
	if resType == p.resType && typer == p.typer && util.SameElements(args, p.args) {
		return p
	}
	return NewFunProto(p.ctx, args, resType, typer)
}

// ArgsAreTyped reports whether TypedArgs would return without typing anything
func (p *FunProto) ArgsAreTyped() bool {
	return len(p.typedArgs) == len(p.args)
}

// TypedArgs types every argument without a formal type hint, the first time it is called.
// Arguments that already have a memoized typing from TypedArg reuse it
func (p *FunProto) TypedArgs() []*Typed {
	if p.ArgsAreTyped() {
		return p.typedArgs
	}
	typed := make([]*Typed, len(p.args))
	for i, arg := range p.args {
		if targ, ok := p.typedArg[arg]; ok {
			typed[i] = targ
			continue
		}
		typed[i] = p.typer.Adapt(p.ctx, p.typer.TypedUnadapted(p.ctx, arg, Wildcard), Wildcard)
	}
	p.typedArgs = typed
	p.ctx.logger.Debug("typed arguments", "args", p.args, "typed", typed)
	return p.typedArgs
}

// TypedArg types arg and adapts it to formal. The unadapted typing is kept for later
// calls, unless typing arg reported errors: the errors might be caused by formal, and
// a later call may pass a different one
func (p *FunProto) TypedArg(ctx *TypeCtx, arg ast.Expr, formal Type) *Typed {
	targ, ok := p.typedArg[arg]
	if !ok {
		errorsBefore := ctx.reporter.ErrorCount()
		targ = p.typer.TypedUnadapted(ctx, arg, formal)
		if ctx.reporter.WasSilent(errorsBefore) {
			p.typedArg[arg] = targ
		} else {
			ctx.logger.Debug("not memoizing argument typing that reported errors", "arg", arg, "formal", formal.String())
		}
	}
	return p.typer.Adapt(ctx, targ, formal)
}

// TypeOfArg returns the memoized type of arg, without typing it
func (p *FunProto) TypeOfArg(arg ast.Expr) (Type, bool) {
	targ, ok := p.typedArg[arg]
	if !ok {
		return nil, false
	}
	return targ.tpe, true
}

// Tupled is this expectation with the arguments packed into a single tuple argument.
// It is built once
func (p *FunProto) Tupled() *FunProto {
	if p.tupled == nil {
		tuple := ast.NewTuple(p.args)
		p.tupled = NewFunProto(p.ctx, []ast.Expr{tuple}, p.resType, p.typer)
	}
	return p.tupled
}

// IsTupled is true once Tupled was called
func (p *FunProto) IsTupled() bool {
	return p.tupled != nil
}

func (p *FunProto) argsRange() ast.Range {
	return ast.RangeOf(ast.NewTuple(p.args))
}

func (p *FunProto) String() string {
	return "FunProto(" + ast.ExprString(ast.NewTuple(p.args)) + " => " + p.resType.String() + ")"
}

// Hash is by identity: two FunProto are the same expectation only if they are the same instance
func (p *FunProto) Hash() uint64 { return mix(89, p.id) }

// children types the arguments, so folding over a FunProto sees their types
func (p *FunProto) children() iter.Seq[Type] {
	argTypes := make([]Type, 0, len(p.args))
	for _, targ := range p.TypedArgs() {
		argTypes = append(argTypes, targ.tpe)
	}
	return util.ConcatIter(slices.Values(argTypes), util.SingleIter(p.resType))
}

func (p *FunProto) doMap(f func(Type) Type) Type {
	return p.DerivedFunProto(p.args, f(p.resType), p.typer)
}
