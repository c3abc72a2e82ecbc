package types

import (
	"github.com/cottand/ileproto/frontend/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestWildApprox(t *testing.T) {
	bounded := polyOf("T", upTo(intT), func(t *TypeParamRef) Type { return t })
	free := polyOf("U", unbounded, func(t *TypeParamRef) Type { return t })
	param, freeParam := bounded.ParamRef(0), free.ParamRef(0)

	testCases := []struct {
		name     string
		tp       Type
		expected string
	}{
		{name: "static class", tp: intT, expected: "Int"},
		{name: "type parameter", tp: param, expected: "? <: Int"},
		{name: "term parameter", tp: singletonMethod().ParamRef(0), expected: "? <: Int"},
		{name: "nested in a class application", tp: NewAppliedType(TypeRefTo("List"), param), expected: "List[? <: Int]"},
		{name: "nested in a function", tp: NewFuncType([]Type{param}, stringT), expected: "? <: Int => String"},
		{name: "intersection with a wildcard side", tp: NewAndType(freeParam, stringT), expected: "? >: String <: String"},
		{name: "union with a wildcard side", tp: NewOrType(param, stringT), expected: "? <: (Int | String)"},
		{name: "intersection without wildcards", tp: NewAndType(intT, stringT), expected: "(Int & String)"},
		{name: "alias bounds", tp: AliasBounds(param), expected: "= ? <: Int"},
		{name: "refinement", tp: NewRefinedType(TypeRefTo("Box"), "get", param), expected: "Box { get: ? <: Int }"},
		{name: "view expectation", tp: NewViewProto(param, stringT), expected: "?{ ? <: Int => String }"},
		{name: "type member of a stable path", tp: NewNamedType(NewTermRef(NewThisType("C"), "x", intT), "T"), expected: "C.this.x.T"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := NewTypeCtx()
			approx := ctx.WildApprox(testCase.tp)
			assert.Equal(t, testCase.expected, approx.String())
			assert.True(t, Equal(approx, ctx.WildApprox(approx)), "approximation is idempotent")
		})
	}
}

func TestWildApproxConservesUnchangedTypes(t *testing.T) {
	ctx := NewTypeCtx()
	for _, tp := range []Type{
		intT,
		NewAppliedType(TypeRefTo("List"), intT),
		NewFuncType([]Type{intT}, stringT),
		NewAndType(intT, stringT),
		NewTermRef(NoPrefix, "x", intT),
	} {
		assert.Same(t, tp, ctx.WildApprox(tp), tp.String())
	}
}

func TestWildApproxUsesConstraintBounds(t *testing.T) {
	ctx := NewTypeCtx()
	poly := polyOf("T", upTo(AnyType), func(t *TypeParamRef) Type { return t })
	_, tvars := ctx.Constrained(poly, ast.Expr(ident("f")))
	tv := tvars[0]

	ctx.setConstraint(ctx.Constraint().Updated(poly.ParamRef(0), UpperBounds(intT)))
	assert.Equal(t, "? <: Int", ctx.WildApprox(tv).String())
	assert.Equal(t, "? <: Int", ctx.WildApprox(poly.ParamRef(0)).String())

	tv.InstantiateWith(ctx, stringT)
	assert.Same(t, stringT, ctx.WildApprox(tv))
}

func TestWildApproxLeavesConstraintUntouched(t *testing.T) {
	ctx := NewTypeCtx()
	poly := polyOf("T", upTo(intT), func(t *TypeParamRef) Type { return t })
	_, tvars := ctx.Constrained(poly, ast.Expr(ident("f")))
	tv := tvars[0]
	before := ctx.Constraint()

	approx := ctx.WildApprox(NewFuncType([]Type{tv}, NewAppliedType(TypeRefTo("List"), poly.ParamRef(0))))

	assert.Equal(t, "? <: Int => List[? <: Int]", approx.String())
	assert.Same(t, before, ctx.Constraint())
	assert.False(t, tv.IsInstantiatedIn(ctx))
	_, ok := tv.InstanceIn(ctx)
	assert.False(t, ok)
}

func TestWildApproxFBoundedParameter(t *testing.T) {
	ctx := NewTypeCtx()
	comparable := TypeRefTo("Comparable")
	poly := polyOf("T",
		func(t *TypeParamRef) *TypeBounds { return UpperBounds(NewAppliedType(comparable, t)) },
		func(t *TypeParamRef) Type { return t },
	)

	assert.Equal(t, "? <: Comparable[?]", ctx.WildApprox(poly.ParamRef(0)).String())
}

func TestWildApproxSelectionDropsViews(t *testing.T) {
	ctx := NewTypeCtx()
	param := polyOf("T", upTo(intT), func(t *TypeParamRef) Type { return t }).ParamRef(0)

	withViews := NewSelectionProto(ctx, "foo", param, ViewsAllowed)
	approx, ok := ctx.WildApprox(withViews).(*SelectionProto)
	require.True(t, ok)
	assert.Same(t, NoViewsAllowed, approx.Compatibility())
	assert.Equal(t, "?{ foo: ? <: Int }", approx.String())
	assert.Same(t, approx, NewSelectionProto(ctx, "foo", NewWildcardType(UpperBounds(intT)), NoViewsAllowed), "the result is interned")

	static := NewSelectionProto(ctx, "foo", intT, ViewsAllowed)
	staticApprox := ctx.WildApprox(static).(*SelectionProto)
	assert.Same(t, NoViewsAllowed, staticApprox.Compatibility())
	assert.Same(t, intT, staticApprox.MemberProto())
}

func TestWildApproxFunProtoResult(t *testing.T) {
	ctx := NewTypeCtx()
	param := polyOf("T", upTo(intT), func(t *TypeParamRef) Type { return t }).ParamRef(0)
	args := []ast.Expr{intLit("1")}
	proto := NewFunProto(ctx, args, param, NewEnvTyper(nil))

	approx, ok := ctx.WildApprox(proto).(*FunProto)
	require.True(t, ok)
	assert.NotSame(t, proto, approx)
	assert.Equal(t, args, approx.Args())
	assert.Equal(t, "? <: Int", approx.ResultType().String())

	stable := NewFunProto(ctx, args, intT, NewEnvTyper(nil))
	assert.Same(t, stable, ctx.WildApprox(stable))
}
