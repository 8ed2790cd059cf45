// Package stdx holds small generic helpers used while wiring programs together.
package stdx

// Must1 returns v, or panics when err is non-nil.
func Must1[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// FirstNonEmpty returns the first value that is not the zero string.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
