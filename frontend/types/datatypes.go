package types

import (
	"fmt"
	"github.com/cottand/ileproto/util"
	"hash/fnv"
	"iter"
	"reflect"
	"slices"
	"strings"
	"sync/atomic"
)

// Type is implemented by every type the typer manipulates, including expectations
// (see Proto).
//
// doMap rebuilds the type with f applied to each direct component, and must return
// the receiver itself when f left every component unchanged.
// children yields the same components, for folds.
type Type interface {
	fmt.Stringer
	Hash() uint64
	doMap(f func(Type) Type) Type
	children() iter.Seq[Type]
}

// Equal compares types structurally. Hashes are compared first, and a match is
// confirmed on the variant and the printed form, so colliding hashes do not make
// different types equal. Identical references are always equal
func Equal(this, other Type) bool {
	if this == other {
		return true
	}
	if this == nil || other == nil {
		return false
	}
	return this.Hash() == other.Hash() &&
		reflect.TypeOf(this) == reflect.TypeOf(other) &&
		this.String() == other.String()
}

var (
	_ Type = (*NamedType)(nil)
	_ Type = (*TermRef)(nil)
	_ Type = (*AppliedType)(nil)
	_ Type = (*RefinedType)(nil)
	_ Type = (*TypeBounds)(nil)
	_ Type = (*TypeParamRef)(nil)
	_ Type = (*TermParamRef)(nil)
	_ Type = (*TypeVar)(nil)
	_ Type = (*AndType)(nil)
	_ Type = (*OrType)(nil)
	_ Type = (*MethodType)(nil)
	_ Type = (*PolyType)(nil)
	_ Type = (*ExprType)(nil)
	_ Type = (*ByNameType)(nil)
	_ Type = (*FuncType)(nil)
	_ Type = (*TupleType)(nil)
	_ Type = (*WildcardType)(nil)
	_ Type = (*ThisType)(nil)
	_ Type = (*BoundVar)(nil)
	_ Type = (*noPrefix)(nil)
)

// ids is shared by binders and inference variables
var ids atomic.Uint64

func freshID() uint64 {
	return ids.Add(1)
}

var emptySeq iter.Seq[Type] = func(func(Type) bool) {}

const (
	fnvOffset uint64 = 14695981039346656037
	fnvPrime  uint64 = 1099511628211
)

func mix(hash uint64, values ...uint64) uint64 {
	for _, v := range values {
		hash = (hash ^ v) * fnvPrime
	}
	return hash
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

func hashTypes(hash uint64, ts []Type) uint64 {
	for _, t := range ts {
		hash = mix(hash, t.Hash())
	}
	return hash
}

// noPrefix is the prefix of references to top-level entities
type noPrefix struct{}

var NoPrefix Type = &noPrefix{}

func (*noPrefix) String() string               { return "<noprefix>" }
func (*noPrefix) Hash() uint64                 { return 3 }
func (p *noPrefix) doMap(func(Type) Type) Type { return p }
func (*noPrefix) children() iter.Seq[Type]     { return emptySeq }

// ThisType is the self-type of a class, as seen from inside it
type ThisType struct {
	cls string
}

func NewThisType(cls string) *ThisType { return &ThisType{cls: cls} }

func (t *ThisType) Class() string              { return t.cls }
func (t *ThisType) String() string             { return t.cls + ".this" }
func (t *ThisType) Hash() uint64               { return mix(5, hashString(t.cls)) }
func (t *ThisType) doMap(func(Type) Type) Type { return t }
func (t *ThisType) children() iter.Seq[Type]   { return emptySeq }

// BoundVar refers to the self of an enclosing recursive type
type BoundVar struct {
	name string
}

func NewBoundVar(name string) *BoundVar { return &BoundVar{name: name} }

func (t *BoundVar) String() string             { return t.name }
func (t *BoundVar) Hash() uint64               { return mix(7, hashString(t.name)) }
func (t *BoundVar) doMap(func(Type) Type) Type { return t }
func (t *BoundVar) children() iter.Seq[Type]   { return emptySeq }

// isStaticPrefix is true for prefixes that are resolved without evaluating anything
func isStaticPrefix(prefix Type) bool {
	switch prefix.(type) {
	case *noPrefix, *ThisType:
		return true
	}
	return false
}

// NamedType refers to a class or a type member through a prefix
type NamedType struct {
	prefix Type
	name   string
}

func NewNamedType(prefix Type, name string) *NamedType {
	return &NamedType{prefix: prefix, name: name}
}

// TypeRefTo refers to a top-level class
func TypeRefTo(name string) *NamedType {
	return &NamedType{prefix: NoPrefix, name: name}
}

var (
	AnyType     = TypeRefTo("Any")
	NothingType = TypeRefTo("Nothing")
	UnitType    = TypeRefTo("Unit")
	ErrorType   = TypeRefTo("<error>")
)

func (t *NamedType) Name() string   { return t.name }
func (t *NamedType) Prefix() Type   { return t.prefix }
func (t *NamedType) IsStatic() bool { return isStaticPrefix(t.prefix) }
func (t *NamedType) Hash() uint64   { return mix(11, t.prefix.Hash(), hashString(t.name)) }
func (t *NamedType) children() iter.Seq[Type] {
	return util.SingleIter(t.prefix)
}
func (t *NamedType) String() string {
	switch prefix := t.prefix.(type) {
	case *noPrefix:
		return t.name
	case *TermRef:
		return prefix.path() + "." + t.name
	default:
		return prefix.String() + "#" + t.name
	}
}

func (t *NamedType) derivedNamedType(prefix Type) *NamedType {
	if prefix == t.prefix {
		return t
	}
	return NewNamedType(prefix, t.name)
}

func (t *NamedType) doMap(f func(Type) Type) Type {
	return t.derivedNamedType(f(t.prefix))
}

// isRef reports whether t is a reference to the top-level class called name
func isRef(t Type, name string) bool {
	named, ok := t.(*NamedType)
	return ok && named.name == name && named.IsStatic()
}

// TermRef is the singleton type of a path prefix.name, whose widened type is underlying
type TermRef struct {
	prefix     Type
	name       string
	underlying Type
}

func NewTermRef(prefix Type, name string, underlying Type) *TermRef {
	return &TermRef{prefix: prefix, name: name, underlying: underlying}
}

func (t *TermRef) Name() string     { return t.name }
func (t *TermRef) Prefix() Type     { return t.prefix }
func (t *TermRef) Underlying() Type { return t.underlying }
func (t *TermRef) IsStatic() bool   { return isStaticPrefix(t.prefix) }
func (t *TermRef) String() string   { return t.path() + ".type" }
func (t *TermRef) Hash() uint64 {
	return mix(13, t.prefix.Hash(), hashString(t.name), t.underlying.Hash())
}
func (t *TermRef) children() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		if yield(t.prefix) {
			yield(t.underlying)
		}
	}
}

func (t *TermRef) path() string {
	if prefix, ok := t.prefix.(*TermRef); ok {
		return prefix.path() + "." + t.name
	}
	if _, ok := t.prefix.(*noPrefix); ok {
		return t.name
	}
	return t.prefix.String() + "." + t.name
}

func (t *TermRef) derivedTermRef(prefix, underlying Type) *TermRef {
	if prefix == t.prefix && underlying == t.underlying {
		return t
	}
	return NewTermRef(prefix, t.name, underlying)
}

func (t *TermRef) doMap(f func(Type) Type) Type {
	return t.derivedTermRef(f(t.prefix), f(t.underlying))
}

// AppliedType is a generic class applied to type arguments
type AppliedType struct {
	tycon Type
	args  []Type
}

func NewAppliedType(tycon Type, args ...Type) *AppliedType {
	return &AppliedType{tycon: tycon, args: args}
}

func (t *AppliedType) Tycon() Type  { return t.tycon }
func (t *AppliedType) Args() []Type { return t.args }
func (t *AppliedType) String() string {
	return t.tycon.String() + "[" + util.JoinString(t.args, ", ") + "]"
}
func (t *AppliedType) Hash() uint64 { return hashTypes(mix(17, t.tycon.Hash()), t.args) }
func (t *AppliedType) children() iter.Seq[Type] {
	return util.ConcatIter(util.SingleIter(t.tycon), slices.Values(t.args))
}
func (t *AppliedType) doMap(f func(Type) Type) Type {
	tycon := f(t.tycon)
	args := util.MapConserve(t.args, f)
	if tycon == t.tycon && util.SameElements(args, t.args) {
		return t
	}
	return NewAppliedType(tycon, args...)
}

// RefinedType is parent { refinedName: refinedInfo }
type RefinedType struct {
	parent      Type
	refinedName string
	refinedInfo Type
}

func NewRefinedType(parent Type, name string, info Type) *RefinedType {
	return &RefinedType{parent: parent, refinedName: name, refinedInfo: info}
}

func (t *RefinedType) Parent() Type        { return t.parent }
func (t *RefinedType) RefinedName() string { return t.refinedName }
func (t *RefinedType) RefinedInfo() Type   { return t.refinedInfo }
func (t *RefinedType) String() string {
	return fmt.Sprintf("%s { %s: %s }", t.parent, t.refinedName, t.refinedInfo)
}
func (t *RefinedType) Hash() uint64 {
	return mix(19, t.parent.Hash(), hashString(t.refinedName), t.refinedInfo.Hash())
}
func (t *RefinedType) children() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		if yield(t.parent) {
			yield(t.refinedInfo)
		}
	}
}

func (t *RefinedType) derivedRefinedType(parent, info Type) *RefinedType {
	if parent == t.parent && info == t.refinedInfo {
		return t
	}
	return NewRefinedType(parent, t.refinedName, info)
}

func (t *RefinedType) doMap(f func(Type) Type) Type {
	return t.derivedRefinedType(f(t.parent), f(t.refinedInfo))
}

// TypeBounds is the interval lo..hi. When both bounds are equal it is an alias
type TypeBounds struct {
	lo, hi Type
}

func NewTypeBounds(lo, hi Type) *TypeBounds { return &TypeBounds{lo: lo, hi: hi} }
func UpperBounds(hi Type) *TypeBounds       { return &TypeBounds{lo: NothingType, hi: hi} }
func AliasBounds(alias Type) *TypeBounds    { return &TypeBounds{lo: alias, hi: alias} }
func Unbounded() *TypeBounds                { return &TypeBounds{lo: NothingType, hi: AnyType} }

func (t *TypeBounds) Lo() Type      { return t.lo }
func (t *TypeBounds) Hi() Type      { return t.hi }
func (t *TypeBounds) IsAlias() bool { return Equal(t.lo, t.hi) }
func (t *TypeBounds) Hash() uint64  { return mix(23, t.lo.Hash(), t.hi.Hash()) }
func (t *TypeBounds) children() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		if yield(t.lo) {
			yield(t.hi)
		}
	}
}
func (t *TypeBounds) String() string {
	if t.IsAlias() {
		return "= " + t.lo.String()
	}
	return t.boundsString()
}

// boundsString omits trivial bounds, so that unbounded renders as the empty string
func (t *TypeBounds) boundsString() string {
	var parts []string
	if !isRef(t.lo, NothingType.name) {
		parts = append(parts, ">: "+t.lo.String())
	}
	if !isRef(t.hi, AnyType.name) {
		parts = append(parts, "<: "+t.hi.String())
	}
	return strings.Join(parts, " ")
}

func (t *TypeBounds) derivedTypeBounds(lo, hi Type) *TypeBounds {
	if lo == t.lo && hi == t.hi {
		return t
	}
	return NewTypeBounds(lo, hi)
}

// derivedAlias re-wraps alias as an alias of the same shape
func (t *TypeBounds) derivedAlias(alias Type) *TypeBounds {
	if alias == t.lo && alias == t.hi {
		return t
	}
	return AliasBounds(alias)
}

func (t *TypeBounds) doMap(f func(Type) Type) Type {
	return t.derivedTypeBounds(f(t.lo), f(t.hi))
}

// Meet is the greatest lower bound of two intervals: an interval contained in both
func (t *TypeBounds) Meet(other *TypeBounds) *TypeBounds {
	return NewTypeBounds(OrOf(t.lo, other.lo), AndOf(t.hi, other.hi))
}

// Join is the least upper bound of two intervals: an interval containing both
func (t *TypeBounds) Join(other *TypeBounds) *TypeBounds {
	return NewTypeBounds(AndOf(t.lo, other.lo), OrOf(t.hi, other.hi))
}

// AndType is the intersection t1 & t2
type AndType struct {
	t1, t2 Type
}

// OrType is the union t1 | t2
type OrType struct {
	t1, t2 Type
}

func NewAndType(t1, t2 Type) *AndType { return &AndType{t1: t1, t2: t2} }
func NewOrType(t1, t2 Type) *OrType   { return &OrType{t1: t1, t2: t2} }

// AndOf builds t1 & t2, simplifying away extremes and duplicates
func AndOf(t1, t2 Type) Type {
	switch {
	case Equal(t1, t2), isRef(t2, AnyType.name), isRef(t1, NothingType.name):
		return t1
	case isRef(t1, AnyType.name), isRef(t2, NothingType.name):
		return t2
	}
	return NewAndType(t1, t2)
}

// OrOf builds t1 | t2, simplifying away extremes and duplicates
func OrOf(t1, t2 Type) Type {
	switch {
	case Equal(t1, t2), isRef(t2, NothingType.name), isRef(t1, AnyType.name):
		return t1
	case isRef(t1, NothingType.name), isRef(t2, AnyType.name):
		return t2
	}
	return NewOrType(t1, t2)
}

func (t *AndType) Left() Type     { return t.t1 }
func (t *AndType) Right() Type    { return t.t2 }
func (t *AndType) String() string { return "(" + t.t1.String() + " & " + t.t2.String() + ")" }
func (t *AndType) Hash() uint64   { return mix(29, t.t1.Hash(), t.t2.Hash()) }
func (t *AndType) children() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		if yield(t.t1) {
			yield(t.t2)
		}
	}
}
func (t *AndType) derivedAndType(t1, t2 Type) Type {
	if t1 == t.t1 && t2 == t.t2 {
		return t
	}
	return AndOf(t1, t2)
}
func (t *AndType) doMap(f func(Type) Type) Type { return t.derivedAndType(f(t.t1), f(t.t2)) }

func (t *OrType) Left() Type     { return t.t1 }
func (t *OrType) Right() Type    { return t.t2 }
func (t *OrType) String() string { return "(" + t.t1.String() + " | " + t.t2.String() + ")" }
func (t *OrType) Hash() uint64   { return mix(31, t.t1.Hash(), t.t2.Hash()) }
func (t *OrType) children() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		if yield(t.t1) {
			yield(t.t2)
		}
	}
}
func (t *OrType) derivedOrType(t1, t2 Type) Type {
	if t1 == t.t1 && t2 == t.t2 {
		return t
	}
	return OrOf(t1, t2)
}
func (t *OrType) doMap(f func(Type) Type) Type { return t.derivedOrType(f(t.t1), f(t.t2)) }

// ExprType is the type of a parameterless method: evaluating it yields resType
type ExprType struct {
	resType Type
}

func NewExprType(resType Type) *ExprType { return &ExprType{resType: resType} }

func (t *ExprType) ResultType() Type         { return t.resType }
func (t *ExprType) String() string           { return "=> " + t.resType.String() }
func (t *ExprType) Hash() uint64             { return mix(37, t.resType.Hash()) }
func (t *ExprType) children() iter.Seq[Type] { return util.SingleIter(t.resType) }
func (t *ExprType) doMap(f func(Type) Type) Type {
	res := f(t.resType)
	if res == t.resType {
		return t
	}
	return NewExprType(res)
}

// ByNameType is the type of a call-by-name parameter
type ByNameType struct {
	underlying Type
}

func NewByNameType(underlying Type) *ByNameType { return &ByNameType{underlying: underlying} }

func (t *ByNameType) Underlying() Type         { return t.underlying }
func (t *ByNameType) String() string           { return "=> " + t.underlying.String() }
func (t *ByNameType) Hash() uint64             { return mix(41, t.underlying.Hash()) }
func (t *ByNameType) children() iter.Seq[Type] { return util.SingleIter(t.underlying) }
func (t *ByNameType) doMap(f func(Type) Type) Type {
	underlying := f(t.underlying)
	if underlying == t.underlying {
		return t
	}
	return NewByNameType(underlying)
}

// FuncType is a function value type (params) => result
type FuncType struct {
	params []Type
	result Type
}

func NewFuncType(params []Type, result Type) *FuncType {
	return &FuncType{params: params, result: result}
}

func (t *FuncType) Params() []Type { return t.params }
func (t *FuncType) Result() Type   { return t.result }
func (t *FuncType) String() string {
	if len(t.params) == 1 {
		if _, isFunc := t.params[0].(*FuncType); !isFunc {
			return t.params[0].String() + " => " + t.result.String()
		}
	}
	return "(" + util.JoinString(t.params, ", ") + ") => " + t.result.String()
}
func (t *FuncType) Hash() uint64 { return mix(hashTypes(43, t.params), t.result.Hash()) }
func (t *FuncType) children() iter.Seq[Type] {
	return util.ConcatIter(slices.Values(t.params), util.SingleIter(t.result))
}
func (t *FuncType) doMap(f func(Type) Type) Type {
	params := util.MapConserve(t.params, f)
	result := f(t.result)
	if result == t.result && util.SameElements(params, t.params) {
		return t
	}
	return NewFuncType(params, result)
}

// TupleType is for known-width products such as (Int, String)
type TupleType struct {
	elems []Type
}

func NewTupleType(elems ...Type) *TupleType { return &TupleType{elems: elems} }

func (t *TupleType) Elems() []Type            { return t.elems }
func (t *TupleType) String() string           { return "(" + util.JoinString(t.elems, ", ") + ")" }
func (t *TupleType) Hash() uint64             { return hashTypes(47, t.elems) }
func (t *TupleType) children() iter.Seq[Type] { return slices.Values(t.elems) }
func (t *TupleType) doMap(f func(Type) Type) Type {
	elems := util.MapConserve(t.elems, f)
	if util.SameElements(elems, t.elems) {
		return t
	}
	return NewTupleType(elems...)
}

// WildcardType is an existential placeholder: some unknown type within bounds.
//
// A nil bounds means the placeholder is unbounded
type WildcardType struct {
	bounds *TypeBounds
}

// Wildcard is the unconstrained placeholder
var Wildcard = &WildcardType{}

func NewWildcardType(bounds *TypeBounds) *WildcardType {
	return &WildcardType{bounds: bounds}
}

func (t *WildcardType) Bounds() *TypeBounds {
	if t.bounds == nil {
		return Unbounded()
	}
	return t.bounds
}

func (t *WildcardType) String() string {
	if t.bounds == nil {
		return "?"
	}
	if b := t.bounds.boundsString(); b != "" {
		return "? " + b
	}
	return "?"
}

func (t *WildcardType) Hash() uint64 {
	if t.bounds == nil {
		return 53
	}
	return mix(53, t.bounds.Hash())
}
func (t *WildcardType) children() iter.Seq[Type] {
	if t.bounds == nil {
		return emptySeq
	}
	return util.SingleIter[Type](t.bounds)
}
func (t *WildcardType) doMap(f func(Type) Type) Type {
	if t.bounds == nil {
		return t
	}
	bounds, ok := f(t.bounds).(*TypeBounds)
	if !ok || bounds == t.bounds {
		return t
	}
	return NewWildcardType(bounds)
}

// widenExpr strips the wrapper of a parameterless method or a by-name parameter,
// yielding the type that evaluating the expression produces
func widenExpr(t Type) Type {
	switch t := t.(type) {
	case *ExprType:
		return widenExpr(t.resType)
	case *ByNameType:
		return widenExpr(t.underlying)
	}
	return t
}

// widenSingleton replaces a singleton path type by the type of the path
func widenSingleton(t Type) Type {
	if ref, ok := t.(*TermRef); ok {
		return widenSingleton(ref.underlying)
	}
	return t
}

// widen removes both singleton and expression wrappers
func widen(t Type) Type {
	widened := widenExpr(widenSingleton(t))
	if widened != t {
		return widen(widened)
	}
	return t
}
