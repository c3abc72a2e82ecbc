package types

import (
	"github.com/cottand/ileproto/frontend/ast"
	"go/token"
)

var (
	intT    = TypeRefTo("Int")
	stringT = TypeRefTo("String")
)

func polyOf(name string, bounds func(*TypeParamRef) *TypeBounds, res func(*TypeParamRef) Type) *PolyType {
	return NewPolyType(
		[]string{name},
		func(p *PolyType) []*TypeBounds { return []*TypeBounds{bounds(p.ParamRef(0))} },
		func(p *PolyType) Type { return res(p.ParamRef(0)) },
	)
}

func unbounded(*TypeParamRef) *TypeBounds { return Unbounded() }

func upTo(hi Type) func(*TypeParamRef) *TypeBounds {
	return func(*TypeParamRef) *TypeBounds { return UpperBounds(hi) }
}

// identityPoly is [T](x: T)T
func identityPoly() *PolyType {
	return polyOf("T", unbounded, func(t *TypeParamRef) Type {
		return MethodOf([]Type{t}, t)
	})
}

// singletonMethod is (x: Int)x.type, whose result depends on its parameter
func singletonMethod() *MethodType {
	return NewMethodType(
		[]string{"x"},
		func(*MethodType) []Type { return []Type{intT} },
		func(mt *MethodType) Type { return mt.ParamRef(0) },
		false,
	)
}

func ident(name string) *ast.Ident {
	return &ast.Ident{Name: name}
}

func intLit(value string) *ast.Literal {
	return &ast.Literal{Kind: token.INT, Value: value}
}

// countingTyper records how often each step of argument typing runs
type countingTyper struct {
	*EnvTyper
	unadapted map[ast.Expr]int
	adapted   int
}

func newCountingTyper(env map[string]Type) *countingTyper {
	return &countingTyper{
		EnvTyper:  NewEnvTyper(env),
		unadapted: make(map[ast.Expr]int),
	}
}

func (c *countingTyper) TypedUnadapted(ctx *TypeCtx, arg ast.Expr, formal Type) *Typed {
	c.unadapted[arg]++
	return c.EnvTyper.TypedUnadapted(ctx, arg, formal)
}

func (c *countingTyper) Adapt(ctx *TypeCtx, tree *Typed, formal Type) *Typed {
	c.adapted++
	return c.EnvTyper.Adapt(ctx, tree, formal)
}
