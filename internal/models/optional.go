package models

// Optional holds a value that may be absent. It replaces ad hoc "N/A" and
// "-" sentinels: the fallback is chosen at display time.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an absent value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// Present reports whether a value is held.
func (o Optional[T]) Present() bool {
	return o.ok
}

// Display renders the value through DisplayValue, or fallback when absent.
func (o Optional[T]) Display(fallback string) string {
	if !o.ok {
		return fallback
	}
	return DisplayValue(any(o.value), fallback)
}
