// Package scenario loads YAML descriptions of a class hierarchy, conversions, an
// environment of identifiers and a list of probes, and runs those probes against
// the expectations of package types
package scenario

import (
	"fmt"
	"github.com/cottand/ileproto/frontend/ast"
	"github.com/cottand/ileproto/frontend/ilerr"
	"github.com/cottand/ileproto/frontend/types"
	"github.com/cottand/ileproto/internal/log"
	"github.com/pkg/errors"
	"go/token"
	"gopkg.in/yaml.v3"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var logger = log.DefaultLogger.With("section", "scenario")

// File is the YAML form of a scenario.
//
//	classes:
//	  - name: Box
//	    members:
//	      get: ["=> Int"]
//	conversions:
//	  - {name: intToMeters, from: Int, to: Meters}
//	env:
//	  box: Box
//	probes:
//	  - name: box has get
//	    select: {receiver: Box, name: get, type: Int}
//	    want: "true"
type File struct {
	Classes     []ClassDecl      `yaml:"classes"`
	Conversions []ConversionDecl `yaml:"conversions"`
	// Env maps identifiers to type expressions. Entries may refer to earlier ones through paths
	Env    yaml.Node   `yaml:"env"`
	Probes []ProbeDecl `yaml:"probes"`
}

type ClassDecl struct {
	Name       string   `yaml:"name"`
	TypeParams []string `yaml:"typeParams,omitempty"`
	Parents    []string `yaml:"parents,omitempty"`
	// Members maps each member name to its alternatives. More than one alternative overloads it
	Members map[string][]string `yaml:"members,omitempty"`
}

type ConversionDecl struct {
	Name string `yaml:"name,omitempty"`
	// Owner restricts the conversion to searches that involve the owner class
	Owner string `yaml:"owner,omitempty"`
	From  string `yaml:"from"`
	To    string `yaml:"to"`
}

// ProbeDecl sets exactly one of its probe fields
type ProbeDecl struct {
	Name       string          `yaml:"name"`
	Select     *SelectDecl     `yaml:"select,omitempty"`
	Apply      *ApplyDecl      `yaml:"apply,omitempty"`
	TypeArgs   *TypeArgsDecl   `yaml:"typeArgs,omitempty"`
	View       *ViewDecl       `yaml:"view,omitempty"`
	Normalize  *NormalizeDecl  `yaml:"normalize,omitempty"`
	WildApprox *WildApproxDecl `yaml:"wildApprox,omitempty"`
	Want       string          `yaml:"want"`
}

// SelectDecl asks whether Receiver has a member Name of type Type
type SelectDecl struct {
	Receiver string `yaml:"receiver"`
	Name     string `yaml:"name"`
	Type     string `yaml:"type,omitempty"`
	Views    bool   `yaml:"views,omitempty"`
}

// ApplyDecl types an application of Callee, or picks among Alternatives, for Args
type ApplyDecl struct {
	Callee       string   `yaml:"callee,omitempty"`
	Alternatives []string `yaml:"alternatives,omitempty"`
	Args         []string `yaml:"args"`
	Result       string   `yaml:"result,omitempty"`
}

// TypeArgsDecl asks whether Callee can take the explicit type arguments Args
type TypeArgsDecl struct {
	Callee string   `yaml:"callee"`
	Args   []string `yaml:"args"`
}

// ViewDecl searches for a conversion from From to To, or asks whether Fn can serve as one
type ViewDecl struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	Fn   string `yaml:"fn,omitempty"`
}

// NormalizeDecl normalizes Type against Expected, or against an application to Args when set
type NormalizeDecl struct {
	Type     string   `yaml:"type"`
	Expected string   `yaml:"expected,omitempty"`
	Args     []string `yaml:"args,omitempty"`
	Result   string   `yaml:"result,omitempty"`
}

// WildApproxDecl approximates Type. With Open, the result of a binder is approximated
// with the parameters of the binder left free
type WildApproxDecl struct {
	Type string `yaml:"type"`
	Open bool   `yaml:"open,omitempty"`
}

// Scenario is a loaded File: every type expression is parsed and the class table,
// conversion table and environment are ready to back a types.TypeCtx
type Scenario struct {
	Name        string
	Classes     *types.ClassTable
	Conversions *types.ConversionTable
	Env         map[string]types.Type
	// EnvNames lists the identifiers of Env in declaration order
	EnvNames []string
	Probes   []Probe
	Fset     *token.FileSet
}

// Load reads and compiles the scenario at path
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open scenario")
	}
	defer f.Close()
	return Parse(filepath.Base(path), f)
}

// Parse decodes a scenario named name from r. Unknown fields are rejected
func Parse(name string, r io.Reader) (*Scenario, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(err, "%s: could not decode", name)
	}
	s, err := compile(name, &file)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded scenario", "name", name, "classes", len(file.Classes), "env", len(s.EnvNames), "probes", len(s.Probes))
	return s, nil
}

func compile(name string, file *File) (*Scenario, error) {
	s := &Scenario{
		Name:        name,
		Classes:     types.NewClassTable(),
		Conversions: types.NewConversionTable(),
		Env:         make(map[string]types.Type),
		Fset:        token.NewFileSet(),
	}
	for i, decl := range file.Classes {
		if decl.Name == "" {
			return nil, errors.Errorf("%s: classes[%d]: name is required", name, i)
		}
		s.Classes.Define(decl.Name, decl.TypeParams, decl.Parents...)
	}
	for _, decl := range file.Classes {
		if err := s.declareMembers(decl); err != nil {
			return nil, errors.Wrapf(err, "%s: class %s", name, decl.Name)
		}
	}
	for i, decl := range file.Conversions {
		conv, err := s.conversion(decl)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: conversions[%d]", name, i)
		}
		s.Conversions.Add(conv)
	}
	if err := s.declareEnv(&file.Env); err != nil {
		return nil, errors.Wrapf(err, "%s: env", name)
	}
	for i, decl := range file.Probes {
		probe, err := s.probe(decl)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: probes[%d] (%s)", name, i, decl.Name)
		}
		s.Probes = append(s.Probes, probe)
	}
	return s, nil
}

func (s *Scenario) parseType(src string) (types.Type, error) {
	return ParseType(s.Fset, src, s.Env)
}

// parseTypeOr parses src, which defaults to def when empty
func (s *Scenario) parseTypeOr(src string, def types.Type) (types.Type, error) {
	if strings.TrimSpace(src) == "" {
		return def, nil
	}
	return s.parseType(src)
}

func (s *Scenario) parseTypes(srcs []string) ([]types.Type, error) {
	ts := make([]types.Type, len(srcs))
	for i, src := range srcs {
		t, err := s.parseType(src)
		if err != nil {
			return nil, err
		}
		ts[i] = t
	}
	return ts, nil
}

func (s *Scenario) parseExprs(srcs []string) ([]ast.Expr, error) {
	es := make([]ast.Expr, len(srcs))
	for i, src := range srcs {
		e, err := ParseExpr(s.Fset, src)
		if err != nil {
			return nil, err
		}
		es[i] = e
	}
	return es, nil
}

func (s *Scenario) declareMembers(decl ClassDecl) error {
	for _, parent := range decl.Parents {
		if _, ok := s.Classes.Class(parent); !ok {
			return errors.Errorf("unknown parent '%s'", parent)
		}
	}
	ci, _ := s.Classes.Class(decl.Name)
	names := make([]string, 0, len(decl.Members))
	for member := range decl.Members {
		names = append(names, member)
	}
	slices.Sort(names)
	for _, member := range names {
		alts, err := s.parseTypes(decl.Members[member])
		if err != nil {
			return errors.Wrapf(err, "member %s", member)
		}
		for _, alt := range alts {
			ci.Declare(member, alt)
		}
	}
	return nil
}

func (s *Scenario) conversion(decl ConversionDecl) (types.Conversion, error) {
	if decl.From == "" || decl.To == "" {
		return types.Conversion{}, errors.New("from and to are required")
	}
	from, err := s.parseType(decl.From)
	if err != nil {
		return types.Conversion{}, err
	}
	to, err := s.parseType(decl.To)
	if err != nil {
		return types.Conversion{}, err
	}
	name := decl.Name
	if name == "" {
		name = fmt.Sprintf("%s => %s", from, to)
	}
	return types.Conversion{Name: name, Owner: decl.Owner, From: from, To: to}, nil
}

func (s *Scenario) declareEnv(node *yaml.Node) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return errors.Errorf("line %d: expected a mapping from identifiers to types", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if _, dup := s.Env[key.Value]; dup {
			return errors.Errorf("line %d: '%s' is declared twice", key.Line, key.Value)
		}
		tpe, err := s.parseType(value.Value)
		if err != nil {
			return errors.Wrapf(err, "line %d: %s", value.Line, key.Value)
		}
		s.Env[key.Value] = tpe
		s.EnvNames = append(s.EnvNames, key.Value)
	}
	return nil
}

// NewContext builds a typing context backed by the classes and conversions of s, reporting
// into a fresh store. opts are applied last
func (s *Scenario) NewContext(opts ...types.Option) *types.TypeCtx {
	base := []types.Option{
		types.WithMembers(s.Classes),
		types.WithViews(s.Conversions),
		types.WithReporter(ilerr.NewStoreReporter()),
	}
	return types.NewTypeCtx(append(base, opts...)...)
}

// Typer types argument expressions against the environment of s
func (s *Scenario) Typer() *types.EnvTyper {
	return types.NewEnvTyper(s.Env)
}

// Position resolves a position of a parsed expression to its source location
func (s *Scenario) Position(pos token.Pos) token.Position {
	return s.Fset.Position(pos)
}
