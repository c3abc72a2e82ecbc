package scenario

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestExplain(t *testing.T) {
	s, err := Parse("explain", strings.NewReader(`
env:
  n: Int
  get: "=> Int"
  f: "(x: Int)String"
  id: "[T <: String](x: T)T"
  implicitly: "(implicit ev: Int)String"
`))
	require.NoError(t, err)

	explanations := s.Explain()

	require.Len(t, explanations, 5)
	expected := []Explanation{
		{Name: "n", Type: "Int", Normalized: "Int", Approximated: "Int"},
		{Name: "get", Type: "=> Int", Normalized: "Int", Approximated: "Int"},
		{Name: "f", Type: "(x: Int)String", Normalized: "Int => String", Approximated: "Int => String"},
		{Name: "id", Type: "[T <: String](x: T)T", Normalized: "T => T", Approximated: "? <: String => ? <: String"},
		{Name: "implicitly", Type: "(implicit ev: Int)String", Normalized: "String", Approximated: "String"},
	}
	assert.Equal(t, expected, explanations)
}
