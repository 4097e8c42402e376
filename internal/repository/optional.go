package repository

// Optional is a tri-state update field: unset (leave the column alone),
// cleared (write NULL) or set to a value. Partial-update SQL binds it as an
// (IsSet, Pointer) pair feeding a CASE WHEN expression.
type Optional[T any] struct {
	set   bool
	value *T
}

// Set returns an Optional carrying a value.
func Set[T any](value T) Optional[T] {
	return Optional[T]{set: true, value: &value}
}

// Clear returns an Optional that writes NULL.
func Clear[T any]() Optional[T] {
	return Optional[T]{set: true}
}

// IsSet reports whether the field should be written at all.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Pointer returns the value to write, nil when unset or cleared.
func (o Optional[T]) Pointer() *T {
	return o.value
}

// Or returns the carried value when one is set, otherwise fallback.
func (o Optional[T]) Or(fallback T) T {
	if o.set && o.value != nil {
		return *o.value
	}
	return fallback
}
