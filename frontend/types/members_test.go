package types

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"iter"
	"testing"
)

// collidingType hashes to hash whatever its name, to stand in for a hash collision
type collidingType struct {
	name string
	hash uint64
}

func (c *collidingType) String() string             { return c.name }
func (c *collidingType) Hash() uint64               { return c.hash }
func (c *collidingType) doMap(func(Type) Type) Type { return c }
func (c *collidingType) children() iter.Seq[Type]   { return emptySeq }

// cellClasses declares
//
//	class Cell[A] { get: => A; set(x: A)Unit }
//	class IntCell extends Cell { size: => Int }
//	class Named { name: => String }
func cellClasses() *ClassTable {
	classes := NewClassTable()
	elem := TypeRefTo("A")
	classes.Define("Cell", []string{"A"}).
		Declare("get", NewExprType(elem)).
		Declare("set", MethodOf([]Type{elem}, UnitType))
	classes.Define("IntCell", nil, "Cell").
		Declare("size", NewExprType(intT))
	classes.Define("Named", nil).
		Declare("name", NewExprType(stringT))
	return classes
}

func TestClassTableMember(t *testing.T) {
	cell := func(elem Type) Type { return NewAppliedType(TypeRefTo("Cell"), elem) }

	testCases := []struct {
		name     string
		tp       Type
		member   string
		expected string
	}{
		{name: "declared", tp: TypeRefTo("IntCell"), member: "size", expected: "=> Int"},
		{name: "inherited", tp: TypeRefTo("IntCell"), member: "get", expected: "=> A"},
		{name: "applied class substitutes its arguments", tp: cell(stringT), member: "get", expected: "=> String"},
		{name: "applied method", tp: cell(stringT), member: "set", expected: "(x0: String)Unit"},
		{name: "missing", tp: TypeRefTo("IntCell"), member: "missing", expected: "<none>"},
		{name: "unknown class", tp: TypeRefTo("Nope"), member: "get", expected: "<none>"},
		{name: "singleton", tp: NewTermRef(NoPrefix, "c", TypeRefTo("IntCell")), member: "size", expected: "=> Int"},
		{name: "this", tp: NewThisType("Named"), member: "name", expected: "=> String"},
		{name: "parameterless method result", tp: NewExprType(TypeRefTo("Named")), member: "name", expected: "=> String"},
		{name: "refinement adds a member", tp: NewRefinedType(TypeRefTo("Named"), "age", intT), member: "age", expected: "Int"},
		{name: "intersection takes either side", tp: NewAndType(TypeRefTo("Named"), TypeRefTo("IntCell")), member: "name", expected: "=> String"},
		{name: "union needs both sides", tp: NewOrType(TypeRefTo("Named"), TypeRefTo("IntCell")), member: "name", expected: "<none>"},
		{name: "union with the member on both sides", tp: NewOrType(TypeRefTo("IntCell"), TypeRefTo("IntCell")), member: "size", expected: "=> Int"},
		{name: "function apply", tp: NewFuncType([]Type{intT}, stringT), member: ApplyName, expected: "(x0: Int)String"},
		{name: "function has no other members", tp: NewFuncType([]Type{intT}, stringT), member: "get", expected: "<none>"},
		{name: "tuple element", tp: NewTupleType(intT, stringT), member: "_2", expected: "=> String"},
		{name: "tuple element out of range", tp: NewTupleType(intT, stringT), member: "_3", expected: "<none>"},
		{name: "not a tuple element", tp: NewTupleType(intT, stringT), member: "size", expected: "<none>"},
		{name: "bounded wildcard", tp: NewWildcardType(UpperBounds(TypeRefTo("Named"))), member: "name", expected: "=> String"},
		{name: "bounded type parameter", tp: polyOf("T", upTo(TypeRefTo("Named")), func(t *TypeParamRef) Type { return t }).ParamRef(0), member: "name", expected: "=> String"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := NewTypeCtx(WithMembers(cellClasses()))
			assert.Equal(t, testCase.expected, ctx.Member(testCase.tp, testCase.member).String())
		})
	}
}

func TestClassTableMemberOfTypeMember(t *testing.T) {
	classes := cellClasses()
	classes.Define("Holder", nil).Declare("T", UpperBounds(TypeRefTo("Named")))
	ctx := NewTypeCtx(WithMembers(classes))

	holder := NewTermRef(NoPrefix, "h", TypeRefTo("Holder"))
	assert.Equal(t, "=> String", ctx.Member(NewNamedType(holder, "T"), "name").String())
	assert.False(t, ctx.Member(NewNamedType(holder, "U"), "name").Exists())
}

func TestClassTableOverloadsAcrossParents(t *testing.T) {
	classes := NewClassTable()
	classes.Define("A", nil).Declare("f", MethodOf([]Type{intT}, intT))
	classes.Define("B", nil).Declare("f", MethodOf([]Type{stringT}, intT))
	classes.Define("C", nil, "A", "B").Declare("f", MethodOf([]Type{intT}, intT))
	ctx := NewTypeCtx(WithMembers(classes))

	denot := ctx.Member(TypeRefTo("C"), "f")

	assert.True(t, denot.IsOverloaded())
	assert.Len(t, denot.Alternatives(), 2, "the redeclaration in C collapses with the one in A")
	assert.Nil(t, denot.Info())
}

func TestDenotationUnion(t *testing.T) {
	f, g := MethodOf([]Type{intT}, intT), MethodOf([]Type{stringT}, intT)

	assert.Same(t, f, SingleDenotation(f).Union(NoDenotation).Info())
	assert.Same(t, f, NoDenotation.Union(SingleDenotation(f)).Info())
	assert.Len(t, SingleDenotation(f).Union(SingleDenotation(MethodOf([]Type{intT}, intT))).Alternatives(), 1)

	both := SingleDenotation(f).Union(SingleDenotation(g))
	require.Len(t, both.Alternatives(), 2)
	assert.Equal(t, "<overloaded 2>", both.String())
	assert.True(t, both.HasAltWith(func(info Type) bool { return info == g }))
	assert.False(t, NoDenotation.Exists())
	assert.Equal(t, "<none>", NoDenotation.String())
}

func TestDenotationUnionKeepsCollidingAlternatives(t *testing.T) {
	a := &collidingType{name: "(x: Int)Int", hash: 7}
	b := &collidingType{name: "(x: String)Int", hash: 7}
	aAgain := &collidingType{name: "(x: Int)Int", hash: 7}

	assert.False(t, Equal(a, b))
	assert.True(t, Equal(a, aAgain))

	both := SingleDenotation(a).Union(SingleDenotation(b))
	assert.Len(t, both.Alternatives(), 2)
	assert.Len(t, both.Union(SingleDenotation(aAgain)).Alternatives(), 2)
}

func TestEqualComparesVariants(t *testing.T) {
	assert.True(t, Equal(TypeRefTo("Int"), TypeRefTo("Int")))
	assert.False(t, Equal(TypeRefTo("Int"), TypeRefTo("String")))
	assert.False(t, Equal(&collidingType{name: "Int", hash: intT.Hash()}, intT))
	assert.False(t, Equal(nil, intT))
}

func TestClassTableMemberOfCyclicParents(t *testing.T) {
	classes := NewClassTable()
	classes.Define("A", nil, "B").Declare("a", NewExprType(intT))
	classes.Define("B", nil, "A").Declare("b", NewExprType(stringT))
	ctx := NewTypeCtx(WithMembers(classes))

	assert.Equal(t, "=> String", ctx.Member(TypeRefTo("A"), "b").String())
	assert.Equal(t, "=> Int", ctx.Member(TypeRefTo("B"), "a").String())
	assert.False(t, ctx.Member(TypeRefTo("A"), "x").Exists())
	assert.True(t, classes.DerivesFrom("A", "B"))
	assert.True(t, classes.DerivesFrom("B", "A"))
}

func TestClassTableMemberOfDiamond(t *testing.T) {
	classes := NewClassTable()
	classes.Define("Base", nil).Declare("f", MethodOf([]Type{intT}, intT))
	classes.Define("Left", nil, "Base")
	classes.Define("Right", nil, "Base")
	classes.Define("Both", nil, "Right", "Left", "Right")
	ctx := NewTypeCtx(WithMembers(classes))

	assert.Equal(t, "(x0: Int)Int", ctx.Member(TypeRefTo("Both"), "f").String())
	ci, _ := classes.Class("Both")
	assert.Equal(t, []string{"Left", "Right"}, ci.parents)
}

func TestClassTableHierarchy(t *testing.T) {
	classes := NewClassTable()
	classes.Define("A", nil)
	classes.Define("B", nil, "A")
	classes.Define("C", nil, "B", "A")
	classes.Define("Loop", nil, "Loop")

	assert.ElementsMatch(t, []string{"A", "B", "C"}, classes.BaseClasses("C").Slice())
	assert.ElementsMatch(t, []string{"Loop"}, classes.BaseClasses("Loop").Slice())
	assert.True(t, classes.DerivesFrom("C", "A"))
	assert.False(t, classes.DerivesFrom("A", "C"))
	assert.True(t, classes.DerivesFrom("A", "Any"))
	assert.True(t, classes.DerivesFrom("Nothing", "C"))

	_, ok := classes.Class("Int")
	assert.True(t, ok, "builtins are predefined")
	_, ok = classes.Class("Missing")
	assert.False(t, ok)
}
