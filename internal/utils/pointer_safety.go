package utils

// Value dereferences an optional JSON field, returning the zero value for nil.
func Value[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// Ptr is used to build optional fields in literals
func Ptr[T any](v T) *T {
	return &v
}
