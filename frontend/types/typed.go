package types

import (
	"github.com/cottand/ileproto/frontend/ast"
	"log/slog"
)

// Typed is an expression tree together with its type
type Typed struct {
	expr ast.Expr
	tpe  Type
	// converted is the tree a view was applied to in order to produce this one
	converted *Typed
	// elems are the typed elements of a tuple
	elems []*Typed
}

func NewTyped(expr ast.Expr, tpe Type) *Typed {
	return &Typed{expr: expr, tpe: tpe}
}

// NewConverted wraps tree in an implicit conversion to tpe
func NewConverted(tree *Typed, tpe Type) *Typed {
	return &Typed{expr: tree.expr, tpe: tpe, converted: tree}
}

func (t *Typed) Expr() ast.Expr    { return t.expr }
func (t *Typed) Type() Type        { return t.tpe }
func (t *Typed) Converted() *Typed { return t.converted }
func (t *Typed) Elems() []*Typed   { return t.elems }
func (t *Typed) IsError() bool     { return t.tpe == ErrorType }

func (t *Typed) String() string {
	if t.converted != nil {
		return "convert(" + t.converted.String() + "): " + t.tpe.String()
	}
	return ast.ExprString(t.expr) + ": " + t.tpe.String()
}

func (t *Typed) LogValue() slog.Value {
	return slog.StringValue(t.String())
}

// Typer types argument expressions on behalf of FunProto. TypedUnadapted is the
// expensive step and is memoized by FunProto, while Adapt is repeated for every
// formal parameter type the argument is tried against
type Typer interface {
	// TypedUnadapted types arg, using formal only as a hint
	TypedUnadapted(ctx *TypeCtx, arg ast.Expr, formal Type) *Typed
	// Adapt makes tree conform to formal, inserting conversions where needed.
	// Failure is reported to the reporter of ctx
	Adapt(ctx *TypeCtx, tree *Typed, formal Type) *Typed
}
