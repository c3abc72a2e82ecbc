package scenario

import (
	"github.com/cottand/ileproto/frontend/types"
)

// Explanation shows how an environment entry looks to the typer
type Explanation struct {
	Name       string
	Type       string
	Normalized string
	// Approximated is Normalized with what is still being inferred replaced by placeholders
	Approximated string
}

// Explain normalizes every entry of the environment against no particular expectation,
// in declaration order. Each entry gets its own exploring context
func (s *Scenario) Explain(opts ...types.Option) []Explanation {
	explanations := make([]Explanation, 0, len(s.EnvNames))
	for _, name := range s.EnvNames {
		tpe := s.Env[name]
		ctx := s.NewContext(opts...).Exploring()
		normalized := ctx.Normalize(tpe, types.Wildcard)
		explanations = append(explanations, Explanation{
			Name:         name,
			Type:         tpe.String(),
			Normalized:   normalized.String(),
			Approximated: ctx.WildApprox(normalized).String(),
		})
	}
	return explanations
}
