package store

import "chronik/internal/model"

// Helpers for ordered collections. All of them return new slices.

func Prepend[T any](xs []T, v T) []T {
	out := make([]T, 0, len(xs)+1)
	out = append(out, v)
	return append(out, xs...)
}

func Append[T any](xs []T, v T) []T {
	out := make([]T, 0, len(xs)+1)
	out = append(out, xs...)
	return append(out, v)
}

// Replace applies fn to the record with the given id. ok is false if no
// record matched.
func Replace[T model.Record](xs []T, id string, fn func(T) T) (out []T, ok bool) {
	out = make([]T, len(xs))
	for i, x := range xs {
		if x.RecordID() == id {
			x = fn(x)
			ok = true
		}
		out[i] = x
	}
	return out, ok
}

func Remove[T model.Record](xs []T, id string) (out []T, ok bool) {
	out = make([]T, 0, len(xs))
	for _, x := range xs {
		if x.RecordID() == id {
			ok = true
			continue
		}
		out = append(out, x)
	}
	return out, ok
}

func Find[T model.Record](xs []T, id string) (T, bool) {
	for _, x := range xs {
		if x.RecordID() == id {
			return x, true
		}
	}
	var zero T
	return zero, false
}
