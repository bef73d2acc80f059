package utils

// FilterSlice maps every element through fn, dropping those where fn reports false.
func FilterSlice[S any, T any](s []S, fn func(S) (T, bool)) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if t, ok := fn(v); ok {
			out = append(out, t)
		}
	}
	return out
}

// Or returns the first non-zero value.
func Or[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}

func Ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
