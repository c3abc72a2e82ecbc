package scenario

import (
	"fmt"
	"github.com/cottand/ileproto/frontend/ast"
	"github.com/cottand/ileproto/frontend/ilerr"
	"github.com/cottand/ileproto/frontend/types"
	"go/token"
	"strings"
	"text/scanner"
)

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokChar
	tokPunct
)

type tok struct {
	kind tokKind
	text string
	pos  token.Pos
	end  token.Pos
}

// tokenize splits src into tokens, positioned in a file of fset named after src.
// Two-character operators (=>, <:, >:) come out as a single punctuation token
func tokenize(fset *token.FileSet, src string) ([]tok, error) {
	file := fset.AddFile(src, -1, len(src))
	var s scanner.Scanner
	s.Init(strings.NewReader(src))
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings | scanner.ScanChars
	s.Filename = src
	var scanErr error
	s.Error = func(s *scanner.Scanner, msg string) {
		if scanErr == nil {
			scanErr = syntaxError(src, ast.Range{PosStart: file.Pos(s.Pos().Offset), PosEnd: file.Pos(s.Pos().Offset)}, msg)
		}
	}

	var toks []tok
	for r := s.Scan(); r != scanner.EOF; r = s.Scan() {
		start := s.Position.Offset
		t := tok{text: s.TokenText()}
		switch r {
		case scanner.Ident:
			t.kind = tokIdent
		case scanner.Int:
			t.kind = tokInt
		case scanner.Float:
			t.kind = tokFloat
		case scanner.String, scanner.RawString:
			t.kind = tokString
		case scanner.Char:
			t.kind = tokChar
		default:
			t.kind = tokPunct
			if next := s.Peek(); (r == '=' && next == '>') || ((r == '<' || r == '>') && next == ':') {
				s.Next()
				t.text += string(next)
			}
		}
		t.pos = file.Pos(start)
		t.end = file.Pos(start + len(t.text))
		toks = append(toks, t)
	}
	if scanErr != nil {
		return nil, scanErr
	}
	eof := file.Pos(len(src))
	return append(toks, tok{kind: tokEOF, pos: eof, end: eof}), nil
}

func syntaxError(src string, at ast.Positioner, format string, args ...any) ilerr.IleError {
	return ilerr.New(ilerr.NewScenarioSyntax{Positioner: ast.RangeOf(at), Source: src, Message: fmt.Sprintf(format, args...)})
}

// parser reads type expressions and argument expressions.
// Identifiers resolve, innermost first, to parameters of enclosing binders, then
// to paths of env (for singleton and type member syntax), then to top-level classes
type parser struct {
	src  string
	toks []tok
	pos  int
	env  map[string]types.Type
	// scopes binds parameter names of the binders being parsed
	scopes []map[string]types.Type
	err    ilerr.IleError
}

func newParser(fset *token.FileSet, src string, env map[string]types.Type) (*parser, error) {
	toks, err := tokenize(fset, src)
	if err != nil {
		return nil, err
	}
	return &parser{src: src, toks: toks, env: env}, nil
}

func (p *parser) peek() tok             { return p.toks[p.pos] }
func (p *parser) peekAt(offset int) tok { return p.toks[min(p.pos+offset, len(p.toks)-1)] }
func (p *parser) is(text string) bool   { return p.peek().kind == tokPunct && p.peek().text == text }
func (p *parser) isWord(w string) bool  { return p.peek().kind == tokIdent && p.peek().text == w }

func (p *parser) next() tok {
	t := p.peek()
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) fail(at tok, format string, args ...any) {
	if p.err == nil {
		p.err = syntaxError(p.src, ast.Range{PosStart: at.pos, PosEnd: at.end}, format, args...)
	}
}

func (p *parser) expect(text string) bool {
	if !p.is(text) {
		p.fail(p.peek(), "expected '%s', found '%s'", text, p.peek().text)
		return false
	}
	p.next()
	return true
}

func (p *parser) ident() string {
	t := p.peek()
	if t.kind != tokIdent {
		p.fail(t, "expected a name, found '%s'", t.text)
		return ""
	}
	p.next()
	return t.text
}

func (p *parser) done() error {
	if p.err == nil && p.peek().kind != tokEOF {
		p.fail(p.peek(), "unexpected '%s'", p.peek().text)
	}
	if p.err != nil {
		return p.err
	}
	return nil
}

func (p *parser) lookup(name string) (types.Type, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if bound, ok := p.scopes[i][name]; ok {
			return bound, true
		}
	}
	return nil, false
}

func (p *parser) withScope(names []string, refs func(int) types.Type, body func()) {
	scope := make(map[string]types.Type, len(names))
	for i, name := range names {
		scope[name] = refs(i)
	}
	p.scopes = append(p.scopes, scope)
	body()
	p.scopes = p.scopes[:len(p.scopes)-1]
}

// closing returns the index of the token that closes the bracket at p.pos
func (p *parser) closing() int {
	open := p.peek().text
	closer := map[string]string{"(": ")", "[": "]", "{": "}"}[open]
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		switch {
		case p.toks[i].kind != tokPunct:
		case p.toks[i].text == open:
			depth++
		case p.toks[i].text == closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(p.toks) - 2
}

// ParseType reads a type expression such as "[T <: Int](x: T)List[T]"
func ParseType(fset *token.FileSet, src string, env map[string]types.Type) (types.Type, error) {
	p, err := newParser(fset, src, env)
	if err != nil {
		return nil, err
	}
	t := p.parseType()
	if err := p.done(); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *parser) parseType() types.Type {
	if p.is("(") {
		if after := p.toks[p.closing()+1]; after.kind == tokPunct && after.text == "=>" {
			params := p.parseTypeList("(", ")")
			p.expect("=>")
			return types.NewFuncType(params, p.parseType())
		}
	}
	t := p.parseUnion()
	if p.is("=>") {
		p.next()
		return types.NewFuncType([]types.Type{t}, p.parseType())
	}
	return t
}

func (p *parser) parseUnion() types.Type {
	t := p.parseIntersection()
	for p.is("|") {
		p.next()
		t = types.NewOrType(t, p.parseIntersection())
	}
	return t
}

func (p *parser) parseIntersection() types.Type {
	t := p.parseSimple()
	for p.is("&") {
		p.next()
		t = types.NewAndType(t, p.parseSimple())
	}
	return t
}

func (p *parser) parseTypeList(open, closer string) []types.Type {
	p.expect(open)
	var ts []types.Type
	for !p.is(closer) && p.err == nil {
		ts = append(ts, p.parseType())
		if !p.is(closer) {
			p.expect(",")
		}
	}
	p.expect(closer)
	return ts
}

func (p *parser) parseSimple() types.Type {
	t := p.peek()
	switch {
	case p.err != nil:
		return types.ErrorType
	case p.is("?"):
		p.next()
		return p.parseWildcard()
	case p.is("=>"):
		p.next()
		return types.NewExprType(p.parseType())
	case p.is("["):
		return p.parsePoly()
	case p.is("("):
		return p.parseParenthesized()
	case t.kind == tokIdent:
		return p.parseRefinements(p.parseNamed())
	}
	p.fail(t, "expected a type, found '%s'", t.text)
	return types.ErrorType
}

func (p *parser) parseBounds() *types.TypeBounds {
	lo, hi := types.Type(types.NothingType), types.Type(types.AnyType)
	if p.is(">:") {
		p.next()
		lo = p.parseUnion()
	}
	if p.is("<:") {
		p.next()
		hi = p.parseUnion()
	}
	return types.NewTypeBounds(lo, hi)
}

func (p *parser) parseWildcard() types.Type {
	if !p.is(">:") && !p.is("<:") {
		return types.Wildcard
	}
	return types.NewWildcardType(p.parseBounds())
}

// parsePoly reads [T >: Lo <: Hi, U](params)Result. Bounds may refer to any of the
// parameters, so their names are collected before the binder is built
func (p *parser) parsePoly() types.Type {
	end := p.closing()
	var names []string
	depth := 0
	for i := p.pos; i < end; i++ {
		t := p.toks[i]
		if t.kind == tokPunct {
			switch t.text {
			case "[", "(", "{":
				depth++
			case "]", ")", "}":
				depth--
			}
			continue
		}
		prev := p.toks[i-1]
		if depth == 1 && t.kind == tokIdent && (prev.text == "[" || prev.text == ",") {
			names = append(names, t.text)
		}
	}
	if len(names) == 0 {
		p.fail(p.peek(), "a type parameter list cannot be empty")
		return types.ErrorType
	}
	return types.NewPolyType(
		names,
		func(poly *types.PolyType) []*types.TypeBounds {
			bounds := make([]*types.TypeBounds, len(names))
			p.withScope(names, func(i int) types.Type { return poly.ParamRef(i) }, func() {
				p.expect("[")
				for i := range names {
					p.ident()
					bounds[i] = p.parseBounds()
					if i < len(names)-1 {
						p.expect(",")
					}
				}
				p.expect("]")
			})
			return bounds
		},
		func(poly *types.PolyType) types.Type {
			var res types.Type
			p.withScope(names, func(i int) types.Type { return poly.ParamRef(i) }, func() {
				res = p.parseSimple()
			})
			return res
		},
	)
}

// parseParenthesized reads a method type, a tuple, Unit or a parenthesized type
func (p *parser) parseParenthesized() types.Type {
	next, after := p.peekAt(1), p.peekAt(2)
	isMethod := (next.kind == tokIdent && next.text == "implicit") ||
		(next.kind == tokIdent && after.kind == tokPunct && after.text == ":")
	if isMethod {
		return p.parseMethod()
	}
	if next.kind == tokPunct && next.text == ")" {
		p.next()
		p.next()
		if startsType(p.peek()) {
			return types.MethodOf(nil, p.parseSimple())
		}
		return types.UnitType
	}
	elems := p.parseTypeList("(", ")")
	if len(elems) == 1 {
		return elems[0]
	}
	return types.NewTupleType(elems...)
}

func startsType(t tok) bool {
	if t.kind == tokIdent {
		return true
	}
	return t.kind == tokPunct && (t.text == "(" || t.text == "[" || t.text == "?")
}

func (p *parser) parseMethod() types.Type {
	p.expect("(")
	implicit := false
	if p.isWord("implicit") {
		p.next()
		implicit = true
	}
	var names []string
	var paramTypes []types.Type
	for !p.is(")") && p.err == nil {
		names = append(names, p.ident())
		p.expect(":")
		paramTypes = append(paramTypes, p.parseType())
		if !p.is(")") {
			p.expect(",")
		}
	}
	p.expect(")")
	return types.NewMethodType(
		names,
		func(*types.MethodType) []types.Type { return paramTypes },
		func(mt *types.MethodType) types.Type {
			var res types.Type
			p.withScope(names, func(i int) types.Type { return mt.ParamRef(i) }, func() {
				res = p.parseSimple()
			})
			return res
		},
		implicit,
	)
}

var builtinTypes = map[string]types.Type{
	"Any":     types.AnyType,
	"Nothing": types.NothingType,
	"Unit":    types.UnitType,
}

// parseNamed reads a class reference with optional type arguments, a parameter,
// or a path: x.type is the singleton of x and x.T a type member of it
func (p *parser) parseNamed() types.Type {
	nameTok := p.next()
	name := nameTok.text
	if p.is(".") {
		p.next()
		member := p.ident()
		prefix, ok := p.pathPrefix(name)
		if !ok {
			p.fail(nameTok, "'%s' is not a parameter or a variable", name)
			return types.ErrorType
		}
		if member == "type" {
			return prefix
		}
		return types.NewNamedType(prefix, member)
	}
	if bound, ok := p.lookup(name); ok {
		return bound
	}
	var t types.Type = types.TypeRefTo(name)
	if builtin, ok := builtinTypes[name]; ok {
		t = builtin
	}
	if p.is("[") {
		t = types.NewAppliedType(t, p.parseTypeList("[", "]")...)
	}
	return t
}

func (p *parser) pathPrefix(name string) (types.Type, bool) {
	if bound, ok := p.lookup(name); ok {
		_, isTerm := bound.(*types.TermParamRef)
		return bound, isTerm
	}
	if tpe, ok := p.env[name]; ok {
		return types.NewTermRef(types.NoPrefix, name, tpe), true
	}
	return nil, false
}

// parseRefinements reads any number of { name: type } after t
func (p *parser) parseRefinements(t types.Type) types.Type {
	for p.is("{") && p.err == nil {
		p.next()
		name := p.ident()
		p.expect(":")
		info := p.parseType()
		p.expect("}")
		t = types.NewRefinedType(t, name, info)
	}
	return t
}

// ParseExpr reads an argument expression: identifiers, literals, (), tuples,
// selections and applications
func ParseExpr(fset *token.FileSet, src string) (ast.Expr, error) {
	p, err := newParser(fset, src, nil)
	if err != nil {
		return nil, err
	}
	e := p.parseExpr()
	if err := p.done(); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *parser) parseExpr() ast.Expr {
	e := p.parsePrimary()
	for p.err == nil {
		switch {
		case p.is("."):
			p.next()
			nameTok := p.peek()
			name := p.ident()
			e = &ast.Select{Range: ast.Range{PosStart: e.Pos(), PosEnd: nameTok.end}, Qual: e, Name: name}
		case p.is("("):
			start := e.Pos()
			args := p.parseExprList()
			e = &ast.Apply{Range: ast.Range{PosStart: start, PosEnd: p.toks[p.pos-1].end}, Fun: e, Args: args}
		default:
			return e
		}
	}
	return e
}

func (p *parser) parseExprList() []ast.Expr {
	p.expect("(")
	var es []ast.Expr
	for !p.is(")") && p.err == nil {
		es = append(es, p.parseExpr())
		if !p.is(")") {
			p.expect(",")
		}
	}
	p.expect(")")
	return es
}

var literalKinds = map[tokKind]token.Token{
	tokInt:    token.INT,
	tokFloat:  token.FLOAT,
	tokString: token.STRING,
	tokChar:   token.CHAR,
}

func (p *parser) parsePrimary() ast.Expr {
	t := p.peek()
	rng := ast.Range{PosStart: t.pos, PosEnd: t.end}
	if kind, ok := literalKinds[t.kind]; ok {
		p.next()
		return &ast.Literal{Range: rng, Kind: kind, Value: t.text}
	}
	switch {
	case t.kind == tokIdent:
		p.next()
		return &ast.Ident{Range: rng, Name: t.text}
	case p.is("("):
		elems := p.parseExprList()
		rng.PosEnd = p.toks[p.pos-1].end
		switch len(elems) {
		case 0:
			return ast.UnitLiteral(rng)
		case 1:
			return elems[0]
		}
		return &ast.Tuple{Range: rng, Elems: elems}
	}
	p.fail(t, "expected an expression, found '%s'", t.text)
	return &ast.Ident{Range: rng, Name: t.text}
}
