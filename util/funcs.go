package util

import (
	"fmt"
	"iter"
	"strings"
)

func ConcatIter[A any](iter ...iter.Seq[A]) iter.Seq[A] {
	return func(yield func(A) bool) {
		for _, thisIter := range iter {
			for v := range thisIter {
				if !yield(v) {
					return
				}
			}
		}
	}
}

func SingleIter[A any](elem A) iter.Seq[A] {
	return func(yield func(A) bool) {
		yield(elem)
	}
}

func MapIter[A, B any](iter iter.Seq[A], f func(A) B) iter.Seq[B] {
	return func(yield func(B) bool) {
		for v := range iter {
			if !yield(f(v)) {
				return
			}
		}
	}
}

// AnyIter reports whether pred holds for some element, stopping at the first one that does
func AnyIter[A any](iter iter.Seq[A], pred func(A) bool) bool {
	for v := range iter {
		if pred(v) {
			return true
		}
	}
	return false
}

// MapConserve maps f over slice, and returns the original slice when f returned
// every element unchanged
func MapConserve[A comparable](slice []A, f func(A) A) []A {
	var mapped []A
	for i, elem := range slice {
		newElem := f(elem)
		if mapped == nil && newElem != elem {
			mapped = make([]A, len(slice))
			copy(mapped, slice[:i])
		}
		if mapped != nil {
			mapped[i] = newElem
		}
	}
	if mapped == nil {
		return slice
	}
	return mapped
}

// SameElements reports whether both slices hold the identical elements in the same order
func SameElements[A comparable](fst, snd []A) bool {
	if len(fst) != len(snd) {
		return false
	}
	for i := range fst {
		if fst[i] != snd[i] {
			return false
		}
	}
	return true
}

func JoinString[A fmt.Stringer](elems []A, sep string) string {
	strs := make([]string, len(elems))
	for i, elem := range elems {
		strs[i] = elem.String()
	}
	return strings.Join(strs, sep)
}
