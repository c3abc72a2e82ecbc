package types

import (
	"fmt"
	"github.com/cottand/ileproto/util"
	"iter"
	"slices"
)

// Proto is an expected type with a hole: it is not itself a type that values have,
// but describes what a type must look like to be accepted where it is expected
type Proto interface {
	Type
	// IsMatchedBy reports whether tp satisfies this expectation
	IsMatchedBy(ctx *TypeCtx, tp Type) bool
	isProto()
}

// applyingProto is implemented by expectations of something that will be applied to arguments
type applyingProto interface {
	Proto
	ResultType() Type
	isApplyingProto()
}

var (
	_ Proto         = (*SelectionProto)(nil)
	_ applyingProto = (*FunProto)(nil)
	_ applyingProto = (*ViewProto)(nil)
	_ Proto         = (*PolyProto)(nil)
	_ Proto         = (*anyFunctionProto)(nil)
)

const (
	// WildcardName selects any member whatsoever
	WildcardName = "_"
	// ConstructorName is the name of class constructors
	ConstructorName = "<init>"
	// ApplyName is the member invoked by call syntax on objects
	ApplyName = "apply"
)

// SelectionProto expects a type with a member name whose type matches memberProto
type SelectionProto struct {
	name        string
	memberProto Type
	compat      *Compatibility
	// run is set on interned instances
	run *Run
}

// AnySelectionProto expects some selection, without saying which
var AnySelectionProto = &SelectionProto{name: WildcardName, memberProto: Wildcard, compat: NoViewsAllowed}

// NewSelectionProto builds a selection expectation. Instances that carry no conversion search
// are canonical within the run of ctx
func NewSelectionProto(ctx *TypeCtx, name string, memberProto Type, compat *Compatibility) *SelectionProto {
	return newSelectionProto(ctx.run, name, memberProto, compat)
}

func newSelectionProto(run *Run, name string, memberProto Type, compat *Compatibility) *SelectionProto {
	sp := &SelectionProto{name: name, memberProto: memberProto, compat: compat}
	if compat == NoViewsAllowed && run != nil {
		return run.intern(sp)
	}
	return sp
}

// SelectionProtoFor is the expectation of a receiver on which name is selected, where the
// selection itself is expected to have type tp.
// Constructors are resolved by signature, so they get no selection expectation, and an
// expectation is only ever one level deep: selecting on an expectation expects the member
// to have any type at all
func SelectionProtoFor(ctx *TypeCtx, name string, tp Type, compat *Compatibility) Type {
	if name == ConstructorName {
		return Wildcard
	}
	if _, ok := tp.(Proto); ok {
		return NewSelectionProto(ctx, name, Wildcard, compat)
	}
	return NewSelectionProto(ctx, name, tp, compat)
}

func (r *Run) intern(sp *SelectionProto) *SelectionProto {
	hash := sp.Hash()
	for _, existing := range r.selections[hash] {
		if existing.Equal(sp) {
			return existing
		}
	}
	sp.run = r
	r.selections[hash] = append(r.selections[hash], sp)
	return sp
}

func (p *SelectionProto) isProto()                      {}
func (p *SelectionProto) Name() string                  { return p.name }
func (p *SelectionProto) MemberProto() Type             { return p.memberProto }
func (p *SelectionProto) Compatibility() *Compatibility { return p.compat }

// IsMatchedBy finds the member in tp and checks it against memberProto.
// With overloading, any alternative that qualifies is enough
func (p *SelectionProto) IsMatchedBy(ctx *TypeCtx, tp Type) bool {
	if p.name == WildcardName {
		return true
	}
	mbr := ctx.Member(tp, p.name)
	qualifies := func(info Type) bool {
		return isRef(p.memberProto, UnitType.name) || p.compat.NormalizedCompatible(ctx, info, p.memberProto)
	}
	if !mbr.IsOverloaded() {
		return mbr.Exists() && qualifies(mbr.Info())
	}
	return mbr.HasAltWith(qualifies)
}

// Equal holds when name, member expectation and policy are all the same
func (p *SelectionProto) Equal(other *SelectionProto) bool {
	return p.name == other.name && p.compat == other.compat && Equal(p.memberProto, other.memberProto)
}

func (p *SelectionProto) String() string {
	return fmt.Sprintf("?{ %s: %s }", p.name, p.memberProto)
}

func (p *SelectionProto) Hash() uint64 {
	return mix(83, hashString(p.name), p.memberProto.Hash(), p.compat.hash())
}

func (p *SelectionProto) children() iter.Seq[Type] { return util.SingleIter(p.memberProto) }

func (p *SelectionProto) derivedSelectionProto(run *Run, name string, memberProto Type, compat *Compatibility) *SelectionProto {
	if name == p.name && memberProto == p.memberProto && compat == p.compat {
		return p
	}
	return newSelectionProto(run, name, memberProto, compat)
}

func (p *SelectionProto) doMap(f func(Type) Type) Type {
	return p.derivedSelectionProto(p.run, p.name, f(p.memberProto), p.compat)
}

// ViewProto expects a function from argType to resType. It is only used while
// searching for implicit conversions
type ViewProto struct {
	argType, resType Type
}

func NewViewProto(argType, resType Type) *ViewProto {
	return &ViewProto{argType: argType, resType: resType}
}

func (p *ViewProto) isProto()         {}
func (p *ViewProto) isApplyingProto() {}
func (p *ViewProto) ArgType() Type    { return p.argType }
func (p *ViewProto) ResultType() Type { return p.resType }

func (p *ViewProto) IsMatchedBy(ctx *TypeCtx, tp Type) bool {
	return ctx.applicability.IsApplicableToTypes(ctx, tp, []Type{p.argType}, p.resType)
}

func (p *ViewProto) String() string { return fmt.Sprintf("?{ %s => %s }", p.argType, p.resType) }
func (p *ViewProto) Hash() uint64   { return mix(97, p.argType.Hash(), p.resType.Hash()) }
func (p *ViewProto) children() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		if yield(p.argType) {
			yield(p.resType)
		}
	}
}

func (p *ViewProto) derivedViewProto(argType, resType Type) *ViewProto {
	if argType == p.argType && resType == p.resType {
		return p
	}
	return NewViewProto(argType, resType)
}

func (p *ViewProto) doMap(f func(Type) Type) Type {
	return p.derivedViewProto(f(p.argType), f(p.resType))
}

// PolyProto expects something that can be applied to explicit type arguments targs
type PolyProto struct {
	id      uint64
	targs   []Type
	resType Type
}

func NewPolyProto(targs []Type, resType Type) *PolyProto {
	return &PolyProto{id: freshID(), targs: targs, resType: resType}
}

func (p *PolyProto) isProto()         {}
func (p *PolyProto) TypeArgs() []Type { return p.targs }
func (p *PolyProto) ResultType() Type { return p.resType }

// IsMatchedBy accepts binders with as many parameters as there are type arguments,
// and values whose apply member has such an alternative
func (p *PolyProto) IsMatchedBy(ctx *TypeCtx, tp Type) bool {
	isInstantiatable := func(t Type) bool {
		poly, ok := widen(t).(*PolyType)
		return ok && len(poly.paramNames) == len(p.targs)
	}
	return isInstantiatable(tp) || ctx.Member(tp, ApplyName).HasAltWith(isInstantiatable)
}

func (p *PolyProto) String() string {
	return fmt.Sprintf("PolyProto([%s], %s)", util.JoinString(p.targs, ", "), p.resType)
}

// Hash is by identity, as the expectation is not shared between sites
func (p *PolyProto) Hash() uint64 { return mix(107, p.id) }
func (p *PolyProto) children() iter.Seq[Type] {
	return util.ConcatIter(slices.Values(p.targs), util.SingleIter(p.resType))
}

func (p *PolyProto) derivedPolyProto(targs []Type, resType Type) *PolyProto {
	if resType == p.resType && util.SameElements(targs, p.targs) {
		return p
	}
	return NewPolyProto(targs, resType)
}

func (p *PolyProto) doMap(f func(Type) Type) Type {
	return p.derivedPolyProto(util.MapConserve(p.targs, f), f(p.resType))
}

// anyFunctionProto expects something usable as a function, and matches everything
type anyFunctionProto struct {
	_ byte
}

var AnyFunctionProto Proto = &anyFunctionProto{}

func (p *anyFunctionProto) isProto()                        {}
func (p *anyFunctionProto) IsMatchedBy(*TypeCtx, Type) bool { return true }
func (p *anyFunctionProto) String() string                  { return "AnyFunctionProto" }
func (p *anyFunctionProto) Hash() uint64                    { return 109 }
func (p *anyFunctionProto) children() iter.Seq[Type]        { return emptySeq }
func (p *anyFunctionProto) doMap(func(Type) Type) Type      { return p }
