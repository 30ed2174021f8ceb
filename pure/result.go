package pure

// Result holds exactly one of a success value or a failure error.
// The zero value is a Failure carrying the zero E; build results with
// Success or Failure instead.
type Result[T any, E any] struct {
	value T
	err   E
	ok    bool
}

// Success wraps v as a successful Result.
func Success[T any, E any](v T) Result[T, E] {
	return Result[T, E]{value: v, ok: true}
}

// Failure wraps e as a failed Result.
func Failure[T any, E any](e E) Result[T, E] {
	return Result[T, E]{err: e}
}

// IsSuccess and IsFailure report which variant r is.
func (r Result[T, E]) IsSuccess() bool { return r.ok }
func (r Result[T, E]) IsFailure() bool { return !r.ok }

// Value returns the success value and true, or zero and false.
func (r Result[T, E]) Value() (T, bool) {
	if r.ok {
		return r.value, true
	}
	var zero T
	return zero, false
}

// Err returns the failure error and true, or zero and false.
func (r Result[T, E]) Err() (E, bool) {
	if !r.ok {
		return r.err, true
	}
	var zero E
	return zero, false
}

// UnwrapOr returns the success value, or def on failure.
func (r Result[T, E]) UnwrapOr(def T) T {
	if r.ok {
		return r.value
	}
	return def
}

// UnwrapOrElse returns the success value, or recovers one from the error.
func (r Result[T, E]) UnwrapOrElse(recoverFn func(E) T) T {
	if r.ok {
		return r.value
	}
	return recoverFn(r.err)
}

// Map applies f to a success value. Failures pass through unchanged.
func Map[T, U, E any](r Result[T, E], f func(T) U) Result[U, E] {
	if r.ok {
		return Success[U, E](f(r.value))
	}
	return Failure[U](r.err)
}

// FlatMap sequences a fallible step after a success.
// A Failure short-circuits without calling f.
func FlatMap[T, U, E any](r Result[T, E], f func(T) Result[U, E]) Result[U, E] {
	if r.ok {
		return f(r.value)
	}
	return Failure[U](r.err)
}

// MapError applies f to a failure error. Successes pass through unchanged.
func MapError[T, E, F any](r Result[T, E], f func(E) F) Result[T, F] {
	if r.ok {
		return Success[T, F](r.value)
	}
	return Failure[T](f(r.err))
}

// Fold collapses both channels into one value.
func Fold[T, E, R any](r Result[T, E], onSuccess func(T) R, onFailure func(E) R) R {
	if r.ok {
		return onSuccess(r.value)
	}
	return onFailure(r.err)
}

// All returns Success of every value in order, or the first Failure.
func All[T, E any](results []Result[T, E]) Result[[]T, E] {
	values := make([]T, 0, len(results))
	for _, r := range results {
		if !r.ok {
			return Failure[[]T](r.err)
		}
		values = append(values, r.value)
	}
	return Success[[]T, E](values)
}

// FromPair converts Go's (value, error) convention into a Result.
func FromPair[T any](v T, err error) Result[T, error] {
	if err != nil {
		return Failure[T](err)
	}
	return Success[T, error](v)
}

// ToPair converts a Result with an error channel back into (value, error).
func ToPair[T any, E error](r Result[T, E]) (T, error) {
	if r.ok {
		return r.value, nil
	}
	var zero T
	return zero, r.err
}
