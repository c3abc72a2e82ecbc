package types

import (
	"github.com/cottand/ileproto/frontend/ast"
	"github.com/cottand/ileproto/frontend/ilerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go/token"
	"testing"
)

func TestEnvTyperTypedUnadapted(t *testing.T) {
	env := map[string]Type{
		"box": TypeRefTo("Box"),
		"n":   NewExprType(intT),
		"id":  identityPoly(),
	}
	testCases := []struct {
		name         string
		expr         ast.Expr
		formal       Type
		expectedType string
		expectedErr  ilerr.ErrCode
	}{
		{name: "int literal", expr: intLit("1"), formal: Wildcard, expectedType: "Int"},
		{name: "string literal", expr: &ast.Literal{Kind: token.STRING, Value: `"s"`}, formal: Wildcard, expectedType: "String"},
		{name: "unit literal", expr: unitArg(), formal: Wildcard, expectedType: "Unit"},
		{name: "unsupported literal", expr: &ast.Literal{Kind: token.IMAG, Value: "1i"}, formal: Wildcard, expectedType: "<error>", expectedErr: ilerr.None},
		{name: "identifier", expr: ident("box"), formal: Wildcard, expectedType: "Box"},
		{name: "parameterless identifier is widened", expr: ident("n"), formal: Wildcard, expectedType: "Int"},
		{name: "undefined identifier", expr: ident("nope"), formal: Wildcard, expectedType: "<error>", expectedErr: ilerr.UndefinedVariable},
		{name: "tuple", expr: ast.NewTuple([]ast.Expr{intLit("1"), ident("box")}), formal: Wildcard, expectedType: "(Int, Box)"},
		{name: "selection", expr: &ast.Select{Qual: ident("box"), Name: "get"}, formal: Wildcard, expectedType: "Int"},
		{name: "selection of a missing member", expr: &ast.Select{Qual: ident("box"), Name: "nope"}, formal: Wildcard, expectedType: "<error>", expectedErr: ilerr.NoSuchMember},
		{name: "selection on an undefined qualifier", expr: &ast.Select{Qual: ident("nope"), Name: "get"}, formal: Wildcard, expectedType: "<error>", expectedErr: ilerr.UndefinedVariable},
		{name: "overloaded selection picks a compatible alternative", expr: &ast.Select{Qual: ident("box"), Name: "put"}, formal: NewFuncType([]Type{intT}, UnitType), expectedType: "(x0: Int)Unit"},
		{name: "application", expr: &ast.Apply{Fun: &ast.Select{Qual: ident("box"), Name: "set"}, Args: []ast.Expr{intLit("1")}}, formal: Wildcard, expectedType: "Unit"},
		{name: "application of an undefined function", expr: &ast.Apply{Fun: ident("nope"), Args: []ast.Expr{intLit("1")}}, formal: Wildcard, expectedType: "<error>", expectedErr: ilerr.UndefinedVariable},
		{name: "application to the wrong argument", expr: &ast.Apply{Fun: &ast.Select{Qual: ident("box"), Name: "set"}, Args: []ast.Expr{unitArg()}}, formal: Wildcard, expectedType: "<error>", expectedErr: ilerr.NotApplicable},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := NewTypeCtx(WithMembers(boxClasses()))
			typed := NewEnvTyper(env).TypedUnadapted(ctx, testCase.expr, testCase.formal)

			assert.Equal(t, testCase.expectedType, typed.Type().String())
			assert.Same(t, testCase.expr, typed.Expr())
			if testCase.expectedType != "<error>" {
				assert.Empty(t, ctx.Reporter().Errors())
				return
			}
			require.Len(t, ctx.Reporter().Errors(), 1)
			assert.Equal(t, testCase.expectedErr, ctx.Reporter().Errors()[0].Code())
			assert.Regexp(t, `/frontend/types/\w+\.go:\d+$`, ilerr.Origin(ctx.Reporter().Errors()[0]))
		})
	}
}

func TestEnvTyperTupleElements(t *testing.T) {
	ctx := NewTypeCtx()
	one, s := intLit("1"), ident("s")
	typed := NewEnvTyper(map[string]Type{"s": stringT}).TypedUnadapted(ctx, ast.NewTuple([]ast.Expr{one, s}), Wildcard)

	require.Len(t, typed.Elems(), 2)
	assert.Same(t, one, typed.Elems()[0].Expr())
	assert.Equal(t, "String", typed.Elems()[1].Type().String())
}

func TestEnvTyperDeclare(t *testing.T) {
	ctx := NewTypeCtx()
	env := map[string]Type{"x": intT}
	typer := NewEnvTyper(env).Declare("y", stringT)

	assert.Equal(t, "String", typer.TypedUnadapted(ctx, ident("y"), Wildcard).Type().String())
	assert.NotContains(t, env, "y", "the environment passed in is not modified")
	assert.Equal(t, "Int", NewEnvTyper(nil).Declare("x", intT).TypedUnadapted(ctx, ident("x"), Wildcard).Type().String())
}

func TestEnvTyperAdapt(t *testing.T) {
	meters := TypeRefTo("Meters")
	typer := NewEnvTyper(nil)

	testCases := []struct {
		name      string
		tree      *Typed
		formal    Type
		expected  string
		converted bool
		same      bool
	}{
		{name: "conforming", tree: NewTyped(intLit("1"), intT), formal: intT, expected: "1: Int", same: true},
		{name: "wildcard formal", tree: NewTyped(intLit("1"), intT), formal: Wildcard, expected: "1: Int", same: true},
		{name: "errors are left alone", tree: NewTyped(ident("x"), ErrorType), formal: intT, expected: "x: <error>", same: true},
		{name: "conversion", tree: NewTyped(intLit("1"), intT), formal: meters, expected: "convert(1: Int): Meters", converted: true},
		{name: "conversion to a parameterless expectation", tree: NewTyped(intLit("1"), intT), formal: NewExprType(meters), expected: "convert(1: Int): Meters", converted: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := metersCtx()
			adapted := typer.Adapt(ctx, testCase.tree, testCase.formal)

			assert.Equal(t, testCase.expected, adapted.String())
			assert.Equal(t, testCase.converted, adapted.Converted() != nil)
			if testCase.same {
				assert.Same(t, testCase.tree, adapted)
			}
			assert.Empty(t, ctx.Reporter().Errors())
		})
	}
}

func TestEnvTyperAdaptReportsMismatch(t *testing.T) {
	ctx := metersCtx()
	tree := NewTyped(ident("s"), stringT)

	adapted := NewEnvTyper(nil).Adapt(ctx, tree, intT)

	assert.True(t, adapted.IsError())
	assert.Same(t, tree.Expr(), adapted.Expr())
	require.Len(t, ctx.Reporter().Errors(), 1)
	assert.Equal(t, ilerr.TypeMismatch, ctx.Reporter().Errors()[0].Code())
	assert.Contains(t, ctx.Reporter().Errors()[0].Error(), "expected 'Int', but found 'String'")
}
