package types

import (
	"fmt"
	"github.com/cottand/ileproto/util"
	"iter"
	"slices"
	"strings"
)

// MethodType is the type of a method taking one parameter list.
//
// Its parameter types and result may refer to its own parameters through TermParamRef,
// which is why it is built from functions of the binder being constructed
type MethodType struct {
	id         uint64
	paramNames []string
	paramTypes []Type
	resType    Type
	implicit   bool

	paramRefs []*TermParamRef
	// dependent is 0 when not computed yet, 1 when false, 2 when true
	dependent uint8
}

func NewMethodType(
	paramNames []string,
	paramTypesExp func(*MethodType) []Type,
	resTypeExp func(*MethodType) Type,
	implicit bool,
) *MethodType {
	mt := &MethodType{
		id:         freshID(),
		paramNames: paramNames,
		implicit:   implicit,
	}
	mt.paramRefs = make([]*TermParamRef, len(paramNames))
	for i := range paramNames {
		mt.paramRefs[i] = &TermParamRef{binder: mt, index: i}
	}
	mt.paramTypes = paramTypesExp(mt)
	mt.resType = resTypeExp(mt)
	if len(mt.paramTypes) != len(paramNames) {
		panic(fmt.Sprintf("method type has %d parameter names but %d parameter types", len(paramNames), len(mt.paramTypes)))
	}
	return mt
}

// MethodOf builds a non-dependent method type with generated parameter names
func MethodOf(paramTypes []Type, resType Type) *MethodType {
	names := make([]string, len(paramTypes))
	for i := range paramTypes {
		names[i] = fmt.Sprintf("x%d", i)
	}
	return NewMethodType(names, func(*MethodType) []Type { return paramTypes }, func(*MethodType) Type { return resType }, false)
}

// ImplicitMethodOf builds a non-dependent method type whose parameters are filled by implicit search
func ImplicitMethodOf(paramTypes []Type, resType Type) *MethodType {
	mt := MethodOf(paramTypes, resType)
	mt.implicit = true
	return mt
}

func (mt *MethodType) ParamNames() []string         { return mt.paramNames }
func (mt *MethodType) ParamTypes() []Type           { return mt.paramTypes }
func (mt *MethodType) ResultType() Type             { return mt.resType }
func (mt *MethodType) IsImplicit() bool             { return mt.implicit }
func (mt *MethodType) ParamRef(i int) *TermParamRef { return mt.paramRefs[i] }

// IsDependent is true when the result type refers to one of the parameters of this method,
// so the result cannot be known before arguments are bound
func (mt *MethodType) IsDependent() bool {
	if mt.dependent == 0 {
		mt.dependent = 1
		if refersTo(mt.resType, mt) {
			mt.dependent = 2
		}
	}
	return mt.dependent == 2
}

func (mt *MethodType) String() string {
	sb := &strings.Builder{}
	sb.WriteString("(")
	if mt.implicit {
		sb.WriteString("implicit ")
	}
	for i, name := range mt.paramNames {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(mt.paramTypes[i].String())
	}
	sb.WriteString(")")
	sb.WriteString(mt.resType.String())
	return sb.String()
}

func (mt *MethodType) Hash() uint64 {
	hash := uint64(59)
	if mt.implicit {
		hash = 61
	}
	for _, name := range mt.paramNames {
		hash = mix(hash, hashString(name))
	}
	return mix(hashTypes(hash, mt.paramTypes), mt.resType.Hash())
}

func (mt *MethodType) children() iter.Seq[Type] {
	return util.ConcatIter(slices.Values(mt.paramTypes), util.SingleIter(mt.resType))
}

// derivedMethodType rebuilds the method with new components, rebinding references
// to the old parameters onto the new binder
func (mt *MethodType) derivedMethodType(paramTypes []Type, resType Type) *MethodType {
	if resType == mt.resType && util.SameElements(paramTypes, mt.paramTypes) {
		return mt
	}
	return NewMethodType(
		mt.paramNames,
		func(newMt *MethodType) []Type {
			rebound := make([]Type, len(paramTypes))
			for i, pt := range paramTypes {
				rebound[i] = substBinder(pt, mt, newMt)
			}
			return rebound
		},
		func(newMt *MethodType) Type { return substBinder(resType, mt, newMt) },
		mt.implicit,
	)
}

func (mt *MethodType) doMap(f func(Type) Type) Type {
	return mt.derivedMethodType(util.MapConserve(mt.paramTypes, f), f(mt.resType))
}

// PolyType binds type parameters over a result type, for example [T <: Up](x: T)T
type PolyType struct {
	id          uint64
	paramNames  []string
	paramBounds []*TypeBounds
	resType     Type

	paramRefs []*TypeParamRef
}

func NewPolyType(
	paramNames []string,
	paramBoundsExp func(*PolyType) []*TypeBounds,
	resTypeExp func(*PolyType) Type,
) *PolyType {
	pt := &PolyType{
		id:         freshID(),
		paramNames: paramNames,
	}
	pt.paramRefs = make([]*TypeParamRef, len(paramNames))
	for i := range paramNames {
		pt.paramRefs[i] = &TypeParamRef{binder: pt, index: i}
	}
	pt.paramBounds = paramBoundsExp(pt)
	pt.resType = resTypeExp(pt)
	if len(pt.paramBounds) != len(paramNames) {
		panic(fmt.Sprintf("poly type has %d parameter names but %d bounds", len(paramNames), len(pt.paramBounds)))
	}
	return pt
}

func (pt *PolyType) ParamNames() []string         { return pt.paramNames }
func (pt *PolyType) ParamBounds() []*TypeBounds   { return pt.paramBounds }
func (pt *PolyType) ResultType() Type             { return pt.resType }
func (pt *PolyType) ParamRef(i int) *TypeParamRef { return pt.paramRefs[i] }
func (pt *PolyType) ParamRefs() []*TypeParamRef   { return pt.paramRefs }

func (pt *PolyType) String() string {
	sb := &strings.Builder{}
	sb.WriteString("[")
	for i, name := range pt.paramNames {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		if b := pt.paramBounds[i].boundsString(); b != "" {
			sb.WriteString(" ")
			sb.WriteString(b)
		}
	}
	sb.WriteString("]")
	sb.WriteString(pt.resType.String())
	return sb.String()
}

func (pt *PolyType) Hash() uint64 {
	hash := uint64(67)
	for i, name := range pt.paramNames {
		hash = mix(hash, hashString(name), pt.paramBounds[i].Hash())
	}
	return mix(hash, pt.resType.Hash())
}

func (pt *PolyType) children() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		for _, b := range pt.paramBounds {
			if !yield(b) {
				return
			}
		}
		yield(pt.resType)
	}
}

func (pt *PolyType) derivedPolyType(bounds []*TypeBounds, resType Type) *PolyType {
	if resType == pt.resType && util.SameElements(bounds, pt.paramBounds) {
		return pt
	}
	return pt.newLikeThis(bounds, resType)
}

// newLikeThis builds a fresh binder with the given components, whose references to pt's
// parameters now refer to the fresh binder
func (pt *PolyType) newLikeThis(bounds []*TypeBounds, resType Type) *PolyType {
	return NewPolyType(
		pt.paramNames,
		func(newPt *PolyType) []*TypeBounds {
			rebound := make([]*TypeBounds, len(bounds))
			for i, b := range bounds {
				rebound[i] = substBinder(b, pt, newPt).(*TypeBounds)
			}
			return rebound
		},
		func(newPt *PolyType) Type { return substBinder(resType, pt, newPt) },
	)
}

// Duplicate returns a structurally identical binder with a distinct identity
func (pt *PolyType) Duplicate() *PolyType {
	return pt.newLikeThis(pt.paramBounds, pt.resType)
}

func (pt *PolyType) doMap(f func(Type) Type) Type {
	bounds := make([]*TypeBounds, len(pt.paramBounds))
	for i, b := range pt.paramBounds {
		mapped, ok := f(b).(*TypeBounds)
		if !ok {
			mapped = UpperBounds(f(b.hi))
		}
		bounds[i] = mapped
	}
	return pt.derivedPolyType(bounds, f(pt.resType))
}

// TypeParamRef refers to the type parameter at index of binder
type TypeParamRef struct {
	binder *PolyType
	index  int
}

func (r *TypeParamRef) Binder() *PolyType { return r.binder }
func (r *TypeParamRef) Index() int        { return r.index }
func (r *TypeParamRef) Name() string      { return r.binder.paramNames[r.index] }

// DeclaredBounds are the bounds the binder gives this parameter
func (r *TypeParamRef) DeclaredBounds() *TypeBounds { return r.binder.paramBounds[r.index] }

func (r *TypeParamRef) String() string { return r.Name() }

// Hash deliberately leaves the binder out: it would recurse into a binder that contains this reference
func (r *TypeParamRef) Hash() uint64               { return mix(71, hashString(r.Name()), uint64(r.index)) }
func (r *TypeParamRef) children() iter.Seq[Type]   { return emptySeq }
func (r *TypeParamRef) doMap(func(Type) Type) Type { return r }

// TermParamRef refers to the value parameter at index of binder
type TermParamRef struct {
	binder *MethodType
	index  int
}

func (r *TermParamRef) Binder() *MethodType { return r.binder }
func (r *TermParamRef) Index() int          { return r.index }
func (r *TermParamRef) Name() string        { return r.binder.paramNames[r.index] }

// Underlying is the declared type of the parameter
func (r *TermParamRef) Underlying() Type { return r.binder.paramTypes[r.index] }

func (r *TermParamRef) String() string             { return r.Name() + ".type" }
func (r *TermParamRef) Hash() uint64               { return mix(73, hashString(r.Name()), uint64(r.index)) }
func (r *TermParamRef) children() iter.Seq[Type]   { return emptySeq }
func (r *TermParamRef) doMap(func(Type) Type) Type { return r }

// substBinder replaces references to the parameters of from with the
// same-index parameters of to
func substBinder(t Type, from, to Type) Type {
	var subst func(Type) Type
	subst = func(t Type) Type {
		switch t := t.(type) {
		case *TypeParamRef:
			if Type(t.binder) == from {
				return to.(*PolyType).paramRefs[t.index]
			}
			return t
		case *TermParamRef:
			if Type(t.binder) == from {
				return to.(*MethodType).paramRefs[t.index]
			}
			return t
		}
		return t.doMap(subst)
	}
	return subst(t)
}

// refersTo reports whether t mentions a parameter of binder
func refersTo(t Type, binder Type) bool {
	switch t := t.(type) {
	case *TypeParamRef:
		return Type(t.binder) == binder
	case *TermParamRef:
		return Type(t.binder) == binder
	}
	return util.AnyIter(t.children(), func(child Type) bool {
		return refersTo(child, binder)
	})
}
