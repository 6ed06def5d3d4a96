package lazytx

// Nothing is the result of an effect that produces no value, such as a statement built
// with [Exec].  It is also what the first link of a [Chain] receives in place of a
// previous result.
type Nothing struct{}

// Option holds a value that may be absent, for example the result of a select that
// matched no rows.
type Option[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value.
func Some[T any](value T) Option[T] {
	return Option[T]{value: value, ok: true}
}

// None returns an absent value.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and true if present, or the zero value and false.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// Present returns true if the option holds a value.
func (o Option[T]) Present() bool {
	return o.ok
}

// OrElse returns the value if present, otherwise fallback.
func (o Option[T]) OrElse(fallback T) T {
	if o.ok {
		return o.value
	}
	return fallback
}
