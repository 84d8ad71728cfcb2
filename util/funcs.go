package util

import (
	"iter"
)

func ConcatIter[A any](iters ...iter.Seq[A]) iter.Seq[A] {
	return func(yield func(A) bool) {
		for _, thisIter := range iters {
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

func EmptyIter[A any]() iter.Seq[A] {
	return func(yield func(A) bool) {}
}

func SliceIter[A any](slice []A) iter.Seq[A] {
	return func(yield func(A) bool) {
		for _, v := range slice {
			if !yield(v) {
				return
			}
		}
	}
}

func MapIter[A, B any](it iter.Seq[A], f func(A) B) iter.Seq[B] {
	return func(yield func(B) bool) {
		for v := range it {
			if !yield(f(v)) {
				return
			}
		}
	}
}

func Reverse[A any](slice []A) iter.Seq[A] {
	return func(yield func(A) bool) {
		for i := len(slice) - 1; i >= 0; i-- {
			if !yield(slice[i]) {
				return
			}
		}
	}
}
