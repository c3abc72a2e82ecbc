package ilerr

import (
	"fmt"
	"github.com/cottand/ileproto/frontend/ast"
	"runtime/debug"
	"strings"
)

// enableDebugErrorPrinting makes errors include the frame that created them when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	TypeMismatch
	UndefinedVariable
	NoSuchMember
	NotApplicable
	AmbiguousOverload
	WrongTypeArgCount
	ScenarioSyntax
)

type IleError interface {
	Error() string
	Code() ErrCode
	ast.Positioner

	withStack([]byte) IleError
	getStack() []byte
}

func FormatWithCode(e IleError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			stack = Origin(e)
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

// Origin is the file and line of the code that created e through New,
// or "" when e was never passed to New
func Origin(e IleError) string {
	lines := strings.Split(string(e.getStack()), "\n")
	for i, line := range lines {
		if strings.Contains(line, "ilerr.New[") && i+3 < len(lines) {
			location, _, _ := strings.Cut(strings.TrimSpace(lines[i+3]), " +0x")
			return location
		}
	}
	return ""
}

// New records the current stack on err
func New[E IleError](err E) IleError {
	return err.withStack(debug.Stack())
}

type Unclassified struct {
	From error
	ast.Positioner
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

// NewTypeMismatch is reported when an argument cannot be adapted to its formal parameter type
type NewTypeMismatch struct {
	ast.Positioner
	Expected string
	Found    string
	stack    []byte
}

func (e NewTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: expected '%s', but found '%s'", e.Expected, e.Found)
}
func (e NewTypeMismatch) Code() ErrCode    { return TypeMismatch }
func (e NewTypeMismatch) getStack() []byte { return e.stack }
func (e NewTypeMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewUndefinedVariable struct {
	ast.Positioner
	Name  string
	stack []byte
}

func (e NewUndefinedVariable) Error() string {
	return fmt.Sprintf("variable '%s' is not defined", e.Name)
}
func (e NewUndefinedVariable) Code() ErrCode    { return UndefinedVariable }
func (e NewUndefinedVariable) getStack() []byte { return e.stack }
func (e NewUndefinedVariable) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewNoSuchMember struct {
	ast.Positioner
	Receiver string
	Name     string
	stack    []byte
}

func (e NewNoSuchMember) Error() string {
	return fmt.Sprintf("'%s' is not a member of '%s'", e.Name, e.Receiver)
}
func (e NewNoSuchMember) Code() ErrCode    { return NoSuchMember }
func (e NewNoSuchMember) getStack() []byte { return e.stack }
func (e NewNoSuchMember) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewNotApplicable struct {
	ast.Positioner
	Callee string
	Args   []string
	stack  []byte
}

func (e NewNotApplicable) Error() string {
	return fmt.Sprintf("'%s' cannot be applied to arguments (%s)", e.Callee, strings.Join(e.Args, ", "))
}
func (e NewNotApplicable) Code() ErrCode    { return NotApplicable }
func (e NewNotApplicable) getStack() []byte { return e.stack }
func (e NewNotApplicable) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewAmbiguousOverload struct {
	ast.Positioner
	Alternatives []string
	stack        []byte
}

func (e NewAmbiguousOverload) Error() string {
	return fmt.Sprintf("ambiguous overload, candidates: %s", strings.Join(e.Alternatives, "; "))
}
func (e NewAmbiguousOverload) Code() ErrCode    { return AmbiguousOverload }
func (e NewAmbiguousOverload) getStack() []byte { return e.stack }
func (e NewAmbiguousOverload) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewWrongTypeArgCount struct {
	ast.Positioner
	Expected, Found int
	stack           []byte
}

func (e NewWrongTypeArgCount) Error() string {
	return fmt.Sprintf("wrong number of type arguments: expected %d, found %d", e.Expected, e.Found)
}
func (e NewWrongTypeArgCount) Code() ErrCode    { return WrongTypeArgCount }
func (e NewWrongTypeArgCount) getStack() []byte { return e.stack }
func (e NewWrongTypeArgCount) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

// NewScenarioSyntax is reported for malformed type expressions in scenario files
type NewScenarioSyntax struct {
	ast.Positioner
	Source  string
	Message string
	stack   []byte
}

func (e NewScenarioSyntax) Error() string {
	return fmt.Sprintf("in '%s': %s", e.Source, e.Message)
}
func (e NewScenarioSyntax) Code() ErrCode    { return ScenarioSyntax }
func (e NewScenarioSyntax) getStack() []byte { return e.stack }
func (e NewScenarioSyntax) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}
