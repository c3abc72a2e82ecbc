package types

import (
	"fmt"
	"github.com/hashicorp/go-set/v3"
	xset "github.com/xtgo/set"
	"slices"
	"sort"
	"strconv"
)

// Denotation is the meaning of a name in a type: no alternatives when the name is not a member,
// more than one when it is overloaded
type Denotation struct {
	alts []Type
}

var NoDenotation = Denotation{}

func SingleDenotation(info Type) Denotation {
	return Denotation{alts: []Type{info}}
}

func OverloadedDenotation(alts ...Type) Denotation {
	return Denotation{alts: alts}
}

func (d Denotation) Exists() bool         { return len(d.alts) > 0 }
func (d Denotation) IsOverloaded() bool   { return len(d.alts) > 1 }
func (d Denotation) Alternatives() []Type { return d.alts }

// Info is the type of a denotation that is not overloaded
func (d Denotation) Info() Type {
	if len(d.alts) != 1 {
		return nil
	}
	return d.alts[0]
}

// HasAltWith reports whether some alternative satisfies p
func (d Denotation) HasAltWith(p func(Type) bool) bool {
	return slices.ContainsFunc(d.alts, p)
}

// Union merges the alternatives of d and other, dropping structural duplicates
func (d Denotation) Union(other Denotation) Denotation {
	if !other.Exists() {
		return d
	}
	if !d.Exists() {
		return other
	}
	alts := byHash(slices.Concat(d.alts, other.alts))
	sort.Stable(alts)
	kept := alts[:0]
	bucket := 0
	for _, alt := range alts {
		if len(kept) > 0 && kept[len(kept)-1].Hash() != alt.Hash() {
			bucket = len(kept)
		}
		if !slices.ContainsFunc(kept[bucket:], func(k Type) bool { return Equal(k, alt) }) {
			kept = append(kept, alt)
		}
	}
	return Denotation{alts: kept}
}

func (d Denotation) String() string {
	switch len(d.alts) {
	case 0:
		return "<none>"
	case 1:
		return d.alts[0].String()
	}
	return fmt.Sprintf("<overloaded %d>", len(d.alts))
}

type byHash []Type

func (ts byHash) Len() int           { return len(ts) }
func (ts byHash) Less(i, j int) bool { return ts[i].Hash() < ts[j].Hash() }
func (ts byHash) Swap(i, j int)      { ts[i], ts[j] = ts[j], ts[i] }

// ClassInfo declares a top-level class: its type parameters, parents and members.
// Members refer to the type parameters of the class through TypeRefTo
type ClassInfo struct {
	name       string
	typeParams []string
	parents    []string // sorted, without duplicates
	members    map[string][]Type
}

func (ci *ClassInfo) Name() string { return ci.name }

// Declare adds an alternative for member. Declaring the same member twice overloads it
func (ci *ClassInfo) Declare(member string, info Type) *ClassInfo {
	ci.members[member] = append(ci.members[member], info)
	return ci
}

// ClassTable is a MemberLookup and ClassHierarchy over a fixed set of top-level classes
type ClassTable struct {
	classes map[string]*ClassInfo
}

var builtinClasses = []string{"Int", "Long", "Double", "Boolean", "Char", "String", UnitType.name}

// NewClassTable returns a table knowing about the builtin classes, which have no members
func NewClassTable() *ClassTable {
	ct := &ClassTable{classes: make(map[string]*ClassInfo)}
	for _, name := range builtinClasses {
		ct.Define(name, nil)
	}
	return ct
}

// Define adds a class. Every class derives from Any, whether it is listed as a parent or not
func (ct *ClassTable) Define(name string, typeParams []string, parents ...string) *ClassInfo {
	ci := &ClassInfo{
		name:       name,
		typeParams: typeParams,
		parents:    sortedUnique(parents),
		members:    make(map[string][]Type),
	}
	ct.classes[name] = ci
	return ci
}

func sortedUnique(names []string) []string {
	names = slices.Clone(names)
	sort.Strings(names)
	return names[:xset.Uniq(sort.StringSlice(names))]
}

func (ct *ClassTable) Class(name string) (*ClassInfo, bool) {
	ci, ok := ct.classes[name]
	return ci, ok
}

// BaseClasses is the transitive closure of the parents of cls, including cls itself
func (ct *ClassTable) BaseClasses(cls string) *set.Set[string] {
	bases := set.New[string](4)
	var visit func(string)
	visit = func(name string) {
		if !bases.Insert(name) {
			return
		}
		if ci, ok := ct.classes[name]; ok {
			for _, parent := range ci.parents {
				visit(parent)
			}
		}
	}
	visit(cls)
	return bases
}

func (ct *ClassTable) DerivesFrom(cls, base string) bool {
	if base == AnyType.name || cls == NothingType.name {
		return true
	}
	return ct.BaseClasses(cls).Contains(base)
}

func (ct *ClassTable) classMember(cls string, args []Type, name string) Denotation {
	return ct.classMemberIn(cls, args, name, set.New[string](4))
}

// classMemberIn collects name from cls and its parents, visiting each class once
// so that cyclic parent declarations terminate
func (ct *ClassTable) classMemberIn(cls string, args []Type, name string, visited *set.Set[string]) Denotation {
	if !visited.Insert(cls) {
		return NoDenotation
	}
	ci, ok := ct.classes[cls]
	if !ok {
		return NoDenotation
	}
	denot := NoDenotation
	if alts := ci.members[name]; len(alts) > 0 {
		if len(args) == len(ci.typeParams) && len(args) > 0 {
			alts = slices.Clone(alts)
			for i, alt := range alts {
				alts[i] = substClassParams(alt, ci.typeParams, args)
			}
		}
		denot = OverloadedDenotation(alts...)
	}
	for _, parent := range ci.parents {
		denot = denot.Union(ct.classMemberIn(parent, nil, name, visited))
	}
	return denot
}

// substClassParams replaces references to class type parameters by the arguments the class is applied to
func substClassParams(t Type, params []string, args []Type) Type {
	var subst func(Type) Type
	subst = func(t Type) Type {
		if named, ok := t.(*NamedType); ok {
			if _, isTop := named.prefix.(*noPrefix); isTop {
				if i := slices.Index(params, named.name); i >= 0 {
					return args[i]
				}
			}
			return named
		}
		return t.doMap(subst)
	}
	return subst(t)
}

func (ct *ClassTable) Member(ctx *TypeCtx, tp Type, name string) Denotation {
	switch tp := tp.(type) {
	case *NamedType:
		if tp.IsStatic() {
			return ct.classMember(tp.name, nil, name)
		}
		// a type member: look in its upper bound
		if info, ok := ctx.Member(widen(tp.prefix), tp.name).Info().(*TypeBounds); ok {
			return ctx.Member(info.hi, name)
		}
		return NoDenotation
	case *AppliedType:
		if tycon, ok := tp.tycon.(*NamedType); ok && tycon.IsStatic() {
			return ct.classMember(tycon.name, tp.args, name)
		}
		return ctx.Member(tp.tycon, name)
	case *ThisType:
		return ct.classMember(tp.cls, nil, name)
	case *TermRef:
		return ctx.Member(tp.underlying, name)
	case *TermParamRef:
		return ctx.Member(tp.Underlying(), name)
	case *ExprType, *ByNameType:
		return ctx.Member(widenExpr(tp), name)
	case *RefinedType:
		denot := ctx.Member(tp.parent, name)
		if tp.refinedName == name {
			return denot.Union(SingleDenotation(tp.refinedInfo))
		}
		return denot
	case *AndType:
		return ctx.Member(tp.t1, name).Union(ctx.Member(tp.t2, name))
	case *OrType:
		left, right := ctx.Member(tp.t1, name), ctx.Member(tp.t2, name)
		if !left.Exists() || !right.Exists() {
			return NoDenotation
		}
		return left.Union(right)
	case *TypeParamRef:
		if bounds, ok := ctx.Constraint().Entry(tp); ok {
			return ctx.Member(bounds.hi, name)
		}
		return ctx.Member(tp.DeclaredBounds().hi, name)
	case *TypeVar:
		if inst, ok := tp.InstanceIn(ctx); ok {
			return ctx.Member(inst, name)
		}
		return ctx.Member(tp.origin, name)
	case *WildcardType:
		return ctx.Member(tp.Bounds().hi, name)
	case *FuncType:
		if name == ApplyName {
			return SingleDenotation(MethodOf(tp.params, tp.result))
		}
	case *TupleType:
		if i, err := strconv.Atoi(name[min(1, len(name)):]); err == nil && name[0] == '_' && i >= 1 && i <= len(tp.elems) {
			return SingleDenotation(NewExprType(tp.elems[i-1]))
		}
	}
	return NoDenotation
}
