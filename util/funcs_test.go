package util

import (
	"github.com/stretchr/testify/assert"
	"slices"
	"strconv"
	"testing"
)

type name string

func (n name) String() string { return string(n) }

func TestIterHelpers(t *testing.T) {
	joined := ConcatIter(slices.Values([]int{1, 2}), SingleIter(3))
	assert.Equal(t, []int{1, 2, 3}, slices.Collect(joined))

	doubled := MapIter(joined, func(i int) string { return strconv.Itoa(i * 2) })
	assert.Equal(t, []string{"2", "4", "6"}, slices.Collect(doubled))

	assert.True(t, AnyIter(joined, func(i int) bool { return i == 3 }))
	assert.False(t, AnyIter(joined, func(i int) bool { return i > 3 }))
}

func TestConcatIterStopsEarly(t *testing.T) {
	var seen []int
	for v := range ConcatIter(slices.Values([]int{1, 2}), slices.Values([]int{3, 4})) {
		seen = append(seen, v)
		if v == 3 {
			break
		}
	}
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestMapConserve(t *testing.T) {
	a, b := new(int), new(int)
	orig := []*int{a, b}

	same := MapConserve(orig, func(p *int) *int { return p })
	assert.True(t, &same[0] == &orig[0])

	c := new(int)
	changed := MapConserve(orig, func(p *int) *int {
		if p == b {
			return c
		}
		return p
	})
	assert.True(t, SameElements(changed, []*int{a, c}))
	assert.True(t, SameElements(orig, []*int{a, b}))
}

func TestSameElements(t *testing.T) {
	assert.True(t, SameElements([]int{}, nil))
	assert.True(t, SameElements([]int{1, 2}, []int{1, 2}))
	assert.False(t, SameElements([]int{1, 2}, []int{2, 1}))
	assert.False(t, SameElements([]int{1}, []int{1, 2}))
}

func TestJoinString(t *testing.T) {
	assert.Equal(t, "Int, String", JoinString([]name{"Int", "String"}, ", "))
	assert.Equal(t, "", JoinString([]name{}, ", "))
}
