package scenario

import (
	"github.com/cottand/ileproto/frontend/ast"
	"github.com/cottand/ileproto/frontend/ilerr"
	"github.com/cottand/ileproto/frontend/types"
	"github.com/pkg/errors"
	"strconv"
	"strings"
)

// Probe is one question asked of the expectations in package types.
// The answer is rendered as a string and compared with what the scenario wants
type Probe interface {
	Name() string
	Kind() string
	Want() string
	run(s *Scenario, ctx *types.TypeCtx) string
}

type probeInfo struct {
	name, want string
}

func (p probeInfo) Name() string { return p.name }
func (p probeInfo) Want() string { return p.want }

func (s *Scenario) probe(decl ProbeDecl) (Probe, error) {
	info := probeInfo{name: decl.Name, want: decl.Want}
	set := 0
	for _, isSet := range []bool{decl.Select != nil, decl.Apply != nil, decl.TypeArgs != nil, decl.View != nil, decl.Normalize != nil, decl.WildApprox != nil} {
		if isSet {
			set++
		}
	}
	if set != 1 {
		return nil, errors.Errorf("exactly one of select, apply, typeArgs, view, normalize or wildApprox is required, found %d", set)
	}
	switch {
	case decl.Select != nil:
		return s.selectProbe(info, decl.Select)
	case decl.Apply != nil:
		return s.applyProbe(info, decl.Apply)
	case decl.TypeArgs != nil:
		return s.typeArgsProbe(info, decl.TypeArgs)
	case decl.View != nil:
		return s.viewProbe(info, decl.View)
	case decl.Normalize != nil:
		return s.normalizeProbe(info, decl.Normalize)
	}
	return s.wildApproxProbe(info, decl.WildApprox)
}

type selectProbe struct {
	probeInfo
	receiver, memberType types.Type
	member               string
	compat               *types.Compatibility
}

func (s *Scenario) selectProbe(info probeInfo, decl *SelectDecl) (Probe, error) {
	if decl.Name == "" {
		return nil, errors.New("select: name is required")
	}
	receiver, err := s.parseType(decl.Receiver)
	if err != nil {
		return nil, errors.Wrap(err, "select: receiver")
	}
	memberType, err := s.parseTypeOr(decl.Type, types.Wildcard)
	if err != nil {
		return nil, errors.Wrap(err, "select: type")
	}
	compat := types.NoViewsAllowed
	if decl.Views {
		compat = types.ViewsAllowed
	}
	return &selectProbe{probeInfo: info, receiver: receiver, memberType: memberType, member: decl.Name, compat: compat}, nil
}

func (p *selectProbe) Kind() string { return "select" }

func (p *selectProbe) run(_ *Scenario, ctx *types.TypeCtx) string {
	proto := types.SelectionProtoFor(ctx, p.member, p.memberType, p.compat)
	return strconv.FormatBool(ctx.IsSubtype(p.receiver, proto))
}

type applyProbe struct {
	probeInfo
	callee       ast.Expr
	alternatives []types.Type
	args         []ast.Expr
	result       types.Type
}

func (s *Scenario) applyProbe(info probeInfo, decl *ApplyDecl) (Probe, error) {
	if (decl.Callee == "") == (len(decl.Alternatives) == 0) {
		return nil, errors.New("apply: exactly one of callee or alternatives is required")
	}
	p := &applyProbe{probeInfo: info}
	var err error
	if decl.Callee != "" {
		if p.callee, err = ParseExpr(s.Fset, decl.Callee); err != nil {
			return nil, errors.Wrap(err, "apply: callee")
		}
	}
	if p.alternatives, err = s.parseTypes(decl.Alternatives); err != nil {
		return nil, errors.Wrap(err, "apply: alternatives")
	}
	if p.args, err = s.parseExprs(decl.Args); err != nil {
		return nil, errors.Wrap(err, "apply: args")
	}
	if p.result, err = s.parseTypeOr(decl.Result, types.Wildcard); err != nil {
		return nil, errors.Wrap(err, "apply: result")
	}
	return p, nil
}

func (p *applyProbe) Kind() string { return "apply" }

// run types the application of the callee, or, given alternatives, answers
// with the alternative that overload resolution picks
func (p *applyProbe) run(s *Scenario, ctx *types.TypeCtx) string {
	typer := s.Typer()
	if p.callee != nil {
		call := &ast.Apply{Range: ast.RangeOf(p.callee), Fun: p.callee, Args: p.args}
		if len(p.args) > 0 {
			call.Range = ast.RangeBetween(p.callee, p.args[len(p.args)-1])
		}
		return typer.TypedUnadapted(ctx, call, p.result).Type().String()
	}
	proto := types.NewFunProto(ctx, p.args, p.result, typer)
	return ctx.ResolveApply(p.name, types.OverloadedDenotation(p.alternatives...), proto).String()
}

type typeArgsProbe struct {
	probeInfo
	callee types.Type
	targs  []types.Type
}

func (s *Scenario) typeArgsProbe(info probeInfo, decl *TypeArgsDecl) (Probe, error) {
	callee, err := s.parseType(decl.Callee)
	if err != nil {
		return nil, errors.Wrap(err, "typeArgs: callee")
	}
	targs, err := s.parseTypes(decl.Args)
	if err != nil {
		return nil, errors.Wrap(err, "typeArgs: args")
	}
	return &typeArgsProbe{probeInfo: info, callee: callee, targs: targs}, nil
}

func (p *typeArgsProbe) Kind() string { return "typeArgs" }

func (p *typeArgsProbe) run(_ *Scenario, ctx *types.TypeCtx) string {
	if types.NewPolyProto(p.targs, types.Wildcard).IsMatchedBy(ctx, p.callee) {
		return "true"
	}
	if poly, ok := p.callee.(*types.PolyType); ok {
		ctx.Reporter().Report(ilerr.New(ilerr.NewWrongTypeArgCount{
			Positioner: ast.Range{},
			Expected:   len(poly.ParamNames()),
			Found:      len(p.targs),
		}))
		return types.ErrorType.String()
	}
	return "false"
}

type viewProbe struct {
	probeInfo
	from, to, fn types.Type
}

func (s *Scenario) viewProbe(info probeInfo, decl *ViewDecl) (Probe, error) {
	from, err := s.parseType(decl.From)
	if err != nil {
		return nil, errors.Wrap(err, "view: from")
	}
	to, err := s.parseType(decl.To)
	if err != nil {
		return nil, errors.Wrap(err, "view: to")
	}
	fn, err := s.parseTypeOr(decl.Fn, nil)
	if err != nil {
		return nil, errors.Wrap(err, "view: fn")
	}
	return &viewProbe{probeInfo: info, from: from, to: to, fn: fn}, nil
}

func (p *viewProbe) Kind() string { return "view" }

// run names the conversion found, or, given fn, says whether fn fits the view
func (p *viewProbe) run(s *Scenario, ctx *types.TypeCtx) string {
	if p.fn != nil {
		return strconv.FormatBool(types.NewViewProto(p.from, p.to).IsMatchedBy(ctx, p.fn))
	}
	if conv, ok := s.Conversions.Find(ctx, p.from, p.to); ok {
		return conv.Name
	}
	return "none"
}

type normalizeProbe struct {
	probeInfo
	tp, expected types.Type
	// args is set when normalizing against an application
	args   []ast.Expr
	result types.Type
}

func (s *Scenario) normalizeProbe(info probeInfo, decl *NormalizeDecl) (Probe, error) {
	p := &normalizeProbe{probeInfo: info}
	var err error
	if p.tp, err = s.parseType(decl.Type); err != nil {
		return nil, errors.Wrap(err, "normalize: type")
	}
	if p.expected, err = s.parseTypeOr(decl.Expected, types.Wildcard); err != nil {
		return nil, errors.Wrap(err, "normalize: expected")
	}
	if decl.Args != nil {
		if decl.Expected != "" {
			return nil, errors.New("normalize: expected and args are exclusive")
		}
		if p.args, err = s.parseExprs(decl.Args); err != nil {
			return nil, errors.Wrap(err, "normalize: args")
		}
	}
	if p.result, err = s.parseTypeOr(decl.Result, types.Wildcard); err != nil {
		return nil, errors.Wrap(err, "normalize: result")
	}
	return p, nil
}

func (p *normalizeProbe) Kind() string { return "normalize" }

func (p *normalizeProbe) run(s *Scenario, ctx *types.TypeCtx) string {
	exploring := ctx.Exploring()
	pt := p.expected
	if p.args != nil {
		pt = types.NewFunProto(exploring, p.args, p.result, s.Typer())
	}
	return exploring.Normalize(p.tp, pt).String()
}

type wildApproxProbe struct {
	probeInfo
	tp types.Type
}

func (s *Scenario) wildApproxProbe(info probeInfo, decl *WildApproxDecl) (Probe, error) {
	tp, err := s.parseType(decl.Type)
	if err != nil {
		return nil, errors.Wrap(err, "wildApprox: type")
	}
	if decl.Open {
		switch binder := tp.(type) {
		case *types.PolyType:
			tp = binder.ResultType()
		case *types.MethodType:
			tp = binder.ResultType()
		default:
			return nil, errors.Errorf("wildApprox: open needs a polymorphic or method type, found %s", tp)
		}
	}
	return &wildApproxProbe{probeInfo: info, tp: tp}, nil
}

func (p *wildApproxProbe) Kind() string { return "wildApprox" }

func (p *wildApproxProbe) run(_ *Scenario, ctx *types.TypeCtx) string {
	return ctx.WildApprox(p.tp).String()
}

// Result is the outcome of running one probe
type Result struct {
	Probe Probe
	Got   string
	// Errors are the language errors reported while running the probe
	Errors []ilerr.IleError
}

// Passed compares the answer with the wanted one. A wanted error code such as
// "(E004)" matches any error with that code
func (r Result) Passed() bool {
	want := strings.TrimSpace(r.Probe.Want())
	return r.Got == want || strings.HasPrefix(r.Got, want+" ")
}

// Run answers every probe of s, each in a context of its own. The contexts share a
// types.Run, so selection expectations are interned across probes
func (s *Scenario) Run(opts ...types.Option) []Result {
	run := types.NewRun()
	results := make([]Result, len(s.Probes))
	for i, probe := range s.Probes {
		ctx := s.NewContext(append([]types.Option{types.WithRun(run)}, opts...)...)
		got := probe.run(s, ctx)
		errs := ctx.Reporter().Errors()
		if got == types.ErrorType.String() && len(errs) > 0 {
			got = ilerr.FormatWithCode(errs[0])
		}
		results[i] = Result{Probe: probe, Got: got, Errors: errs}
		logger.Debug("ran probe", "probe", probe.Name(), "kind", probe.Kind(), "got", got, "passed", results[i].Passed())
	}
	return results
}

// Filter returns a copy of s that keeps only the probes whose name contains substr
func (s *Scenario) Filter(substr string) *Scenario {
	filtered := *s
	filtered.Probes = nil
	for _, probe := range s.Probes {
		if strings.Contains(probe.Name(), substr) {
			filtered.Probes = append(filtered.Probes, probe)
		}
	}
	return &filtered
}
