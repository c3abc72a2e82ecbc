package types

import (
	"cmp"
	"github.com/benbjohnson/immutable"
	"iter"
	"slices"
	"strings"
)

// Constraint maps each constrained binder to the inference variables standing for its
// parameters and to the current bounds of those parameters.
//
// A Constraint is persistent: every update returns a new Constraint and leaves the
// receiver untouched, so forking a TyperState only copies a pointer
type Constraint struct {
	domains   *immutable.Map[*PolyType, *constraintEntry]
	instances *immutable.Map[*TypeVar, Type]
}

type constraintEntry struct {
	typeVars []*TypeVar
	bounds   []*TypeBounds
}

type binderHasher struct{}

func (binderHasher) Hash(key *PolyType) uint32 { return uint32(key.id ^ key.id>>32) }
func (binderHasher) Equal(a, b *PolyType) bool { return a == b }

type typeVarHasher struct{}

func (typeVarHasher) Hash(key *TypeVar) uint32 { return uint32(key.id ^ key.id>>32) }
func (typeVarHasher) Equal(a, b *TypeVar) bool { return a == b }

var emptyConstraint = &Constraint{
	domains:   immutable.NewMap[*PolyType, *constraintEntry](binderHasher{}),
	instances: immutable.NewMap[*TypeVar, Type](typeVarHasher{}),
}

func EmptyConstraint() *Constraint {
	return emptyConstraint
}

// Contains reports whether binder was added to the constraint
func (c *Constraint) Contains(binder *PolyType) bool {
	_, ok := c.domains.Get(binder)
	return ok
}

// Add registers binder with the given inference variables, which may be empty.
// The parameters start out bounded by their declared bounds
func (c *Constraint) Add(binder *PolyType, typeVars []*TypeVar) *Constraint {
	entry := &constraintEntry{
		typeVars: typeVars,
		bounds:   slices.Clone(binder.paramBounds),
	}
	return &Constraint{
		domains:   c.domains.Set(binder, entry),
		instances: c.instances,
	}
}

// Entry returns the current bounds of param, if its binder is constrained
func (c *Constraint) Entry(param *TypeParamRef) (*TypeBounds, bool) {
	entry, ok := c.domains.Get(param.binder)
	if !ok {
		return nil, false
	}
	return entry.bounds[param.index], true
}

// TypeVarsOf returns the inference variables created for binder
func (c *Constraint) TypeVarsOf(binder *PolyType) []*TypeVar {
	entry, ok := c.domains.Get(binder)
	if !ok {
		return nil
	}
	return entry.typeVars
}

// Updated narrows the bounds of param. It panics if param's binder is not constrained
func (c *Constraint) Updated(param *TypeParamRef, bounds *TypeBounds) *Constraint {
	entry, ok := c.domains.Get(param.binder)
	if !ok {
		panic("updating bounds of unconstrained parameter " + param.Name())
	}
	newEntry := &constraintEntry{
		typeVars: entry.typeVars,
		bounds:   slices.Clone(entry.bounds),
	}
	newEntry.bounds[param.index] = bounds
	return &Constraint{
		domains:   c.domains.Set(param.binder, newEntry),
		instances: c.instances,
	}
}

func (c *Constraint) Instance(tv *TypeVar) (Type, bool) {
	return c.instances.Get(tv)
}

func (c *Constraint) Instantiated(tv *TypeVar, tp Type) *Constraint {
	return &Constraint{
		domains:   c.domains,
		instances: c.instances.Set(tv, tp),
	}
}

func (c *Constraint) Len() int {
	return c.domains.Len()
}

// Binders yields the constrained binders in creation order
func (c *Constraint) Binders() iter.Seq[*PolyType] {
	binders := make([]*PolyType, 0, c.domains.Len())
	itr := c.domains.Iterator()
	for !itr.Done() {
		binder, _, _ := itr.Next()
		binders = append(binders, binder)
	}
	slices.SortFunc(binders, func(a, b *PolyType) int { return cmp.Compare(a.id, b.id) })
	return slices.Values(binders)
}

func (c *Constraint) String() string {
	sb := &strings.Builder{}
	sb.WriteString("{")
	first := true
	for binder := range c.Binders() {
		entry, _ := c.domains.Get(binder)
		for i, name := range binder.paramNames {
			if !first {
				sb.WriteString(", ")
			}
			first = false
			sb.WriteString(name)
			if b := entry.bounds[i].boundsString(); b != "" {
				sb.WriteString(" ")
				sb.WriteString(b)
			}
			if i < len(entry.typeVars) {
				tv := entry.typeVars[i]
				sb.WriteString(" (")
				sb.WriteString(tv.String())
				if inst, ok := c.Instance(tv); ok {
					sb.WriteString(" := ")
					sb.WriteString(inst.String())
				}
				sb.WriteString(")")
			}
		}
	}
	sb.WriteString("}")
	return sb.String()
}
