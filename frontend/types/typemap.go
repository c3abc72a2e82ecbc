package types

import (
	"github.com/hashicorp/go-set/v3"
)

// TypeMap transforms types. Implementations usually handle the cases they care about and
// defer to MapOver for the rest
type TypeMap interface {
	Apply(t Type) Type
}

// TypeMapFunc adapts a function to TypeMap
type TypeMapFunc func(Type) Type

func (f TypeMapFunc) Apply(t Type) Type { return f(t) }

// MapOver applies m to the direct components of t, returning t itself when m changed nothing
func MapOver(t Type, m TypeMap) Type {
	return t.doMap(m.Apply)
}

// Fold visits t and then, depth first, all of its components
func Fold[A any](t Type, acc A, f func(A, Type) A) A {
	acc = f(acc, t)
	for child := range t.children() {
		acc = Fold(child, acc, f)
	}
	return acc
}

// NamedParts collects the named class references that occur in t.
// A view expectation is seen as the intersection of its argument and result types
func NamedParts(t Type) *set.Set[string] {
	parts := set.New[string](4)
	var collect func(Type)
	collect = func(t Type) {
		switch t := t.(type) {
		case *NamedType:
			if t.IsStatic() {
				parts.Insert(t.name)
				return
			}
		case *ViewProto:
			collect(AndOf(t.argType, t.resType))
			return
		case *FunProto:
			// arguments are not typed just to look at their types
			collect(t.resType)
			return
		}
		for child := range t.children() {
			collect(child)
		}
	}
	collect(t)
	return parts
}
