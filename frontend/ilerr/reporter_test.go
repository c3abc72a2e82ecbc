package ilerr

import (
	"errors"
	"github.com/cottand/ileproto/frontend/ast"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestStoreReporter(t *testing.T) {
	r := NewStoreReporter()
	assert.Equal(t, 0, r.ErrorCount())
	assert.True(t, r.WasSilent(0))

	r.Report(New(NewUndefinedVariable{Positioner: ast.Range{}, Name: "x"}))
	r.Report(New(NewNoSuchMember{Positioner: ast.Range{}, Receiver: "Box", Name: "size"}))

	assert.Equal(t, 2, r.ErrorCount())
	assert.False(t, r.WasSilent(1))
	assert.True(t, r.WasSilent(2))
	assert.Equal(t, UndefinedVariable, r.Errors()[0].Code())
	assert.Equal(t, NoSuchMember, r.Errors()[1].Code())
}

func TestForwardingReporter(t *testing.T) {
	var forwarded []ErrCode
	r := NewForwardingReporter(func(err IleError) {
		forwarded = append(forwarded, err.Code())
	})

	r.Report(New(NewWrongTypeArgCount{Positioner: ast.Range{}, Expected: 1, Found: 2}))

	assert.Equal(t, []ErrCode{WrongTypeArgCount}, forwarded)
	assert.Equal(t, 1, r.ErrorCount())
}

func TestFormatWithCode(t *testing.T) {
	tests := []struct {
		err  IleError
		want string
	}{
		{NewTypeMismatch{Expected: "Int", Found: "String"}, "(E001) type mismatch: expected 'Int', but found 'String'"},
		{NewUndefinedVariable{Name: "y"}, "(E002) variable 'y' is not defined"},
		{NewNoSuchMember{Receiver: "Box", Name: "size"}, "(E003) 'size' is not a member of 'Box'"},
		{NewNotApplicable{Callee: "f", Args: []string{"Int", "String"}}, "(E004) 'f' cannot be applied to arguments (Int, String)"},
		{NewAmbiguousOverload{Alternatives: []string{"(x: Int)Unit", "(x: Long)Unit"}}, "(E005) ambiguous overload, candidates: (x: Int)Unit; (x: Long)Unit"},
		{NewWrongTypeArgCount{Expected: 1, Found: 0}, "(E006) wrong number of type arguments: expected 1, found 0"},
		{NewScenarioSyntax{Source: "List[", Message: "expected a type"}, "(E007) in 'List[': expected a type"},
		{Unclassified{From: errors.New("boom")}, "(E000) unclassified error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatWithCode(New(tt.err)))
		})
	}
}

func TestErrorsIsNilSafe(t *testing.T) {
	var errs *Errors
	assert.Nil(t, errs.Errors())

	errs = errs.With(New(NewUndefinedVariable{Name: "x"}))
	assert.Len(t, errs.Errors(), 1)
}

func TestOrigin(t *testing.T) {
	created := New(NewUndefinedVariable{Positioner: ast.Range{}, Name: "x"})
	assert.Regexp(t, `/frontend/ilerr/reporter_test\.go:\d+$`, Origin(created))

	bare := NewUndefinedVariable{Positioner: ast.Range{}, Name: "x"}
	assert.Equal(t, "", Origin(bare))
}
