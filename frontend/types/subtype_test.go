package types

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func animalClasses() *ClassTable {
	classes := NewClassTable()
	classes.Define("Animal", nil).Declare("name", NewExprType(stringT))
	classes.Define("Dog", nil, "Animal").Declare("bark", MethodOf(nil, UnitType))
	classes.Define("Puppy", nil, "Dog")
	classes.Define("List", []string{"A"})
	return classes
}

func TestStructuralComparer(t *testing.T) {
	animal, dog, puppy := TypeRefTo("Animal"), TypeRefTo("Dog"), TypeRefTo("Puppy")
	listOf := func(elem Type) Type { return NewAppliedType(TypeRefTo("List"), elem) }

	testCases := []struct {
		name     string
		tp, pt   Type
		expected bool
	}{
		{name: "reflexive", tp: dog, pt: TypeRefTo("Dog"), expected: true},
		{name: "parent", tp: dog, pt: animal, expected: true},
		{name: "transitive parent", tp: puppy, pt: animal, expected: true},
		{name: "child", tp: animal, pt: dog, expected: false},
		{name: "everything is below Any", tp: puppy, pt: AnyType, expected: true},
		{name: "Nothing is below everything", tp: NothingType, pt: puppy, expected: true},
		{name: "invariant arguments", tp: listOf(dog), pt: listOf(animal), expected: false},
		{name: "same arguments", tp: listOf(dog), pt: listOf(TypeRefTo("Dog")), expected: true},
		{name: "applied class below its parents", tp: listOf(dog), pt: AnyType, expected: true},
		{name: "function parameters are contravariant", tp: NewFuncType([]Type{animal}, dog), pt: NewFuncType([]Type{dog}, animal), expected: true},
		{name: "function parameters are not covariant", tp: NewFuncType([]Type{dog}, dog), pt: NewFuncType([]Type{animal}, dog), expected: false},
		{name: "function arity", tp: NewFuncType([]Type{dog}, dog), pt: NewFuncType(nil, dog), expected: false},
		{name: "tuples are covariant", tp: NewTupleType(dog, puppy), pt: NewTupleType(animal, dog), expected: true},
		{name: "tuple arity", tp: NewTupleType(dog), pt: NewTupleType(dog, dog), expected: false},
		{name: "below a union", tp: dog, pt: NewOrType(intT, animal), expected: true},
		{name: "union below", tp: NewOrType(dog, puppy), pt: animal, expected: true},
		{name: "union partly below", tp: NewOrType(dog, intT), pt: animal, expected: false},
		{name: "below an intersection", tp: puppy, pt: NewAndType(dog, animal), expected: true},
		{name: "intersection below", tp: NewAndType(intT, dog), pt: animal, expected: true},
		{name: "refinement satisfied", tp: dog, pt: NewRefinedType(animal, "name", stringT), expected: true},
		{name: "refinement not satisfied", tp: dog, pt: NewRefinedType(animal, "name", intT), expected: false},
		{name: "refined below its parent", tp: NewRefinedType(dog, "name", stringT), pt: animal, expected: true},
		{name: "below a bounded wildcard", tp: dog, pt: NewWildcardType(UpperBounds(animal)), expected: true},
		{name: "outside a bounded wildcard", tp: intT, pt: NewWildcardType(UpperBounds(animal)), expected: false},
		{name: "wildcard lower bound", tp: NewWildcardType(NewTypeBounds(dog, AnyType)), pt: animal, expected: true},
		{name: "singleton widens", tp: NewTermRef(NoPrefix, "rex", dog), pt: animal, expected: true},
		{name: "singletons are only below themselves", tp: dog, pt: NewTermRef(NoPrefix, "rex", dog), expected: false},
		{name: "parameterless method", tp: NewExprType(dog), pt: animal, expected: true},
		{name: "this type", tp: NewThisType("Dog"), pt: animal, expected: true},
		{name: "errors are compatible", tp: ErrorType, pt: dog, expected: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := NewTypeCtx(WithMembers(animalClasses()))
			assert.Equal(t, testCase.expected, ctx.IsSubtype(testCase.tp, testCase.pt))
		})
	}
}

func TestComparerNarrowsConstrainedParameters(t *testing.T) {
	ctx := NewTypeCtx(WithMembers(animalClasses())).Exploring()
	poly, _ := ctx.Constrained(identityPoly(), nil)
	param := poly.ParamRef(0)
	animal, dog := TypeRefTo("Animal"), TypeRefTo("Dog")

	require.True(t, ctx.IsSubtype(dog, param))
	bounds, _ := ctx.Constraint().Entry(param)
	assert.Equal(t, "Dog", bounds.Lo().String())

	require.True(t, ctx.IsSubtype(param, animal))
	bounds, _ = ctx.Constraint().Entry(param)
	assert.Equal(t, "Animal", bounds.Hi().String())

	assert.False(t, ctx.IsSubtype(intT, param), "Int is not below the upper bound Animal")
	assert.False(t, ctx.IsSubtype(param, intT), "the lower bound Dog is not below Int")
}

func TestComparerDoesNotNarrowFailedUnionBranches(t *testing.T) {
	ctx := NewTypeCtx().Exploring()
	poly, _ := ctx.Constrained(polyOf("T", upTo(intT), func(t *TypeParamRef) Type { return t }), nil)
	param := poly.ParamRef(0)

	assert.True(t, ctx.IsSubtype(stringT, NewOrType(param, stringT)))
	bounds, _ := ctx.Constraint().Entry(param)
	assert.Equal(t, "Nothing", bounds.Lo().String())
}

func TestComparerUnconstrainedParameterUsesDeclaredBounds(t *testing.T) {
	ctx := NewTypeCtx()
	param := polyOf("T", upTo(intT), func(t *TypeParamRef) Type { return t }).ParamRef(0)

	assert.True(t, ctx.IsSubtype(param, intT))
	assert.False(t, ctx.IsSubtype(param, stringT))
	assert.False(t, ctx.IsSubtype(intT, param))
	assert.Equal(t, 0, ctx.Constraint().Len())
}
