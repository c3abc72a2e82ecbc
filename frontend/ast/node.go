package ast

import (
	"go/token"
	"strings"
)

// Expr is an untyped argument expression, as handed to the typer before it has been typed.
//
// Expressions are compared by identity: two syntactically identical expressions at
// different call sites are different keys for every cache that holds them.
type Expr interface {
	Positioner
	Describe() string
	exprNode()
}

var (
	_ Expr = (*Ident)(nil)
	_ Expr = (*Literal)(nil)
	_ Expr = (*Tuple)(nil)
	_ Expr = (*Select)(nil)
	_ Expr = (*Apply)(nil)
)

type Ident struct {
	Range
	Name string
}

// Literal holds the source text of a constant. Kind is one of
// token.INT, token.FLOAT, token.STRING, token.CHAR, or token.ILLEGAL for unit
type Literal struct {
	Range
	Kind  token.Token
	Value string
}

// Tuple is a tuple literal. The typer also synthesizes these when
// collapsing an argument list into a single argument
type Tuple struct {
	Range
	Elems []Expr
}

type Select struct {
	Range
	Qual Expr
	Name string
}

type Apply struct {
	Range
	Fun  Expr
	Args []Expr
}

func (*Ident) exprNode()   {}
func (*Literal) exprNode() {}
func (*Tuple) exprNode()   {}
func (*Select) exprNode()  {}
func (*Apply) exprNode()   {}

func (e *Ident) Describe() string  { return "identifier" }
func (e *Tuple) Describe() string  { return "tuple" }
func (e *Select) Describe() string { return "selection" }
func (e *Apply) Describe() string  { return "application" }
func (e *Literal) Describe() string {
	switch e.Kind {
	case token.INT:
		return "int literal"
	case token.FLOAT:
		return "float literal"
	case token.STRING:
		return "string literal"
	case token.CHAR:
		return "char literal"
	default:
		return "unit literal"
	}
}

// NewTuple builds a tuple literal spanning elems
func NewTuple(elems []Expr) *Tuple {
	t := &Tuple{Elems: elems}
	if len(elems) > 0 {
		t.Range = RangeBetween(elems[0], elems[len(elems)-1])
	}
	return t
}

func UnitLiteral(r Range) *Literal {
	return &Literal{Range: r, Kind: token.ILLEGAL, Value: "()"}
}

// ExprString renders an expression in source-like syntax
func ExprString(e Expr) string {
	sb := &strings.Builder{}
	writeExpr(sb, e)
	return sb.String()
}

func writeExpr(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *Ident:
		sb.WriteString(e.Name)
	case *Literal:
		sb.WriteString(e.Value)
	case *Tuple:
		sb.WriteString("(")
		writeExprs(sb, e.Elems)
		sb.WriteString(")")
	case *Select:
		writeExpr(sb, e.Qual)
		sb.WriteString(".")
		sb.WriteString(e.Name)
	case *Apply:
		writeExpr(sb, e.Fun)
		sb.WriteString("(")
		writeExprs(sb, e.Args)
		sb.WriteString(")")
	}
}

func writeExprs(sb *strings.Builder, es []Expr) {
	for i, elem := range es {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeExpr(sb, elem)
	}
}
