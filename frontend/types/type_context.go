package types

import (
	"github.com/cottand/ileproto/frontend/ast"
	"github.com/cottand/ileproto/frontend/ilerr"
	"github.com/cottand/ileproto/internal/log"
	"github.com/google/uuid"
	"log/slog"
)

var logger = log.DefaultLogger.With("section", "proto")

// Comparer decides the subtype relation. It may narrow the bounds of constrained
// parameters in the typer state of ctx
type Comparer interface {
	IsSubtype(ctx *TypeCtx, tp, pt Type) bool
}

// ViewSearch decides whether an implicit conversion from one type to another exists
type ViewSearch interface {
	ViewExists(ctx *TypeCtx, from, to Type) bool
}

// MemberLookup resolves a name against a type
type MemberLookup interface {
	Member(ctx *TypeCtx, tp Type, name string) Denotation
}

// Applicability decides whether a callable accepts arguments and produces a result
// compatible with a result type
type Applicability interface {
	IsApplicable(ctx *TypeCtx, fn Type, args []*Typed, resultType Type) bool
	IsApplicableToTypes(ctx *TypeCtx, fn Type, argTypes []Type, resultType Type) bool
}

// Run lives as long as a single compilation run, and holds what is shared by
// every TypeCtx of that run
type Run struct {
	id uuid.UUID
	// selections interns selection expectations that carry no conversion search
	selections map[uint64][]*SelectionProto
}

func NewRun() *Run {
	return &Run{
		id:         uuid.New(),
		selections: make(map[uint64][]*SelectionProto),
	}
}

func (r *Run) ID() uuid.UUID { return r.id }

// InternedSelections is the number of canonical selection expectations in this run
func (r *Run) InternedSelections() int {
	n := 0
	for _, bucket := range r.selections {
		n += len(bucket)
	}
	return n
}

// TypeCtx holds the typer state of the current line of inference, together with
// the collaborators consulted while matching expectations.
//
// A TypeCtx is cheap to copy: Fresh and Exploring copy the context and fork its
// typer state, while the Run and the collaborators are shared
type TypeCtx struct {
	typerState *TyperState
	run        *Run

	comparer      Comparer
	views         ViewSearch
	members       MemberLookup
	applicability Applicability
	reporter      ilerr.Reporter

	// logger carries the run id
	logger *slog.Logger
}

type Option func(*TypeCtx)

func WithComparer(c Comparer) Option           { return func(ctx *TypeCtx) { ctx.comparer = c } }
func WithViews(v ViewSearch) Option            { return func(ctx *TypeCtx) { ctx.views = v } }
func WithMembers(m MemberLookup) Option        { return func(ctx *TypeCtx) { ctx.members = m } }
func WithApplicability(a Applicability) Option { return func(ctx *TypeCtx) { ctx.applicability = a } }
func WithReporter(r ilerr.Reporter) Option     { return func(ctx *TypeCtx) { ctx.reporter = r } }
func WithRun(r *Run) Option                    { return func(ctx *TypeCtx) { ctx.run = r } }
func WithLogger(l *slog.Logger) Option         { return func(ctx *TypeCtx) { ctx.logger = l } }

// NewTypeCtx should be the entry point to get a TypeCtx, but not how you
// produce a TypeCtx from another one. For that use Fresh or Exploring
func NewTypeCtx(opts ...Option) *TypeCtx {
	ctx := &TypeCtx{
		typerState:    NewTyperState(),
		comparer:      StructuralComparer{},
		views:         NewConversionTable(),
		members:       NewClassTable(),
		applicability: ArityApplicability{},
		reporter:      ilerr.NewStoreReporter(),
		logger:        logger,
	}
	for _, opt := range opts {
		opt(ctx)
	}
	if ctx.run == nil {
		ctx.run = NewRun()
	}
	ctx.logger = ast.ExprLogger(ctx.logger).With("run", ctx.run.id.String())
	return ctx
}

func (ctx *TypeCtx) copy() *TypeCtx {
	copied := *ctx
	return &copied
}

// Fresh returns a copy of ctx whose typer state is a committable child of the current one
func (ctx *TypeCtx) Fresh() *TypeCtx {
	copied := ctx.copy()
	copied.typerState = ctx.typerState.Fresh()
	return copied
}

// Exploring returns a copy of ctx whose typer state is a disposable child of the current one.
// Nothing done through the returned context affects ctx
func (ctx *TypeCtx) Exploring() *TypeCtx {
	copied := ctx.copy()
	copied.typerState = ctx.typerState.Explore()
	return copied
}

// WithNewReporter returns a copy of ctx that reports into r
func (ctx *TypeCtx) WithNewReporter(r ilerr.Reporter) *TypeCtx {
	copied := ctx.copy()
	copied.reporter = r
	return copied
}

func (ctx *TypeCtx) TyperState() *TyperState  { return ctx.typerState }
func (ctx *TypeCtx) Constraint() *Constraint  { return ctx.typerState.constraint }
func (ctx *TypeCtx) Reporter() ilerr.Reporter { return ctx.reporter }
func (ctx *TypeCtx) Run() *Run                { return ctx.run }
func (ctx *TypeCtx) Logger() *slog.Logger     { return ctx.logger }
func (ctx *TypeCtx) Members() MemberLookup    { return ctx.members }

func (ctx *TypeCtx) setConstraint(c *Constraint) {
	ctx.typerState.constraint = c
}

// IsSubtype decides tp <: pt. When pt is an expectation, this asks whether tp matches it
func (ctx *TypeCtx) IsSubtype(tp, pt Type) bool {
	if proto, ok := pt.(Proto); ok {
		return proto.IsMatchedBy(ctx, tp)
	}
	return ctx.comparer.IsSubtype(ctx, tp, pt)
}

// Member resolves name against tp
func (ctx *TypeCtx) Member(tp Type, name string) Denotation {
	return ctx.members.Member(ctx, tp, name)
}

func (ctx *TypeCtx) report(err ilerr.IleError) {
	ctx.logger.Debug("error during typing", "error", ilerr.FormatWithCode(err))
	ctx.reporter.Report(err)
}
