package pure

// Option is either Present(value) or Absent.
type Option[T any] struct {
	value   T
	present bool
}

// Some wraps a present value.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, present: true}
}

// None is the absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// OptionFromPair adapts the comma-ok idiom.
func OptionFromPair[T any](v T, ok bool) Option[T] {
	if ok {
		return Some(v)
	}
	return None[T]()
}

// IsPresent and IsAbsent report which variant o is.
func (o Option[T]) IsPresent() bool { return o.present }
func (o Option[T]) IsAbsent() bool  { return !o.present }

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.present
}

// OrElse returns the value, or def when absent.
func (o Option[T]) OrElse(def T) T {
	if o.present {
		return o.value
	}
	return def
}

// MapOption applies f to a present value; absence passes through.
func MapOption[T, U any](o Option[T], f func(T) U) Option[U] {
	if o.present {
		return Some(f(o.value))
	}
	return None[U]()
}

// FlatMapOption chains an Option-returning step onto a present value.
func FlatMapOption[T, U any](o Option[T], f func(T) Option[U]) Option[U] {
	if o.present {
		return f(o.value)
	}
	return None[U]()
}

// OkOr turns absence into the failure e.
func OkOr[T, E any](o Option[T], e E) Result[T, E] {
	if o.present {
		return Success[T, E](o.value)
	}
	return Failure[T](e)
}
