package pure

// Validated is the error-accumulating counterpart of Result.
// Invalid keeps every error of every failed check, in order.
type Validated[T any, E any] struct {
	value T
	errs  []E
	valid bool
}

// Valid builds a passed check holding v.
func Valid[T any, E any](v T) Validated[T, E] {
	return Validated[T, E]{value: v, valid: true}
}

// Invalid builds a failed check. Callers pass at least one error;
// an empty list is still Invalid.
func Invalid[T any, E any](errs ...E) Validated[T, E] {
	return Validated[T, E]{errs: append([]E(nil), errs...)}
}

// IsValid reports whether every check passed.
func (v Validated[T, E]) IsValid() bool { return v.valid }

// Value returns the value and true when valid.
func (v Validated[T, E]) Value() (T, bool) {
	if v.valid {
		return v.value, true
	}
	var zero T
	return zero, false
}

// Errors returns a copy of the accumulated errors; nil when valid.
func (v Validated[T, E]) Errors() []E {
	if v.valid {
		return nil
	}
	return append([]E(nil), v.errs...)
}

// Combine visits every input and never short-circuits.
// Errors of every Invalid are concatenated in input order.
func Combine[T, E any](vs []Validated[T, E]) Validated[[]T, E] {
	var (
		values = make([]T, 0, len(vs))
		errs   []E
		failed bool
	)
	for _, v := range vs {
		if v.valid {
			values = append(values, v.value)
			continue
		}
		failed = true
		errs = append(errs, v.errs...)
	}
	if failed {
		return Validated[[]T, E]{errs: errs}
	}
	return Valid[[]T, E](values)
}

// MapValidated applies f to a valid value and keeps the errors of an invalid one.
func MapValidated[T, U, E any](v Validated[T, E], f func(T) U) Validated[U, E] {
	if v.valid {
		return Valid[U, E](f(v.value))
	}
	return Validated[U, E]{errs: v.errs}
}

// ValidatedToResult collapses the accumulated errors into one failure value.
func ValidatedToResult[T, E, F any](v Validated[T, E], collapse func([]E) F) Result[T, F] {
	if v.valid {
		return Success[T, F](v.value)
	}
	return Failure[T](collapse(v.Errors()))
}
