package pure

// Phase is the lifecycle position of an Async value.
type Phase int

const (
	PhaseNotRequested Phase = iota
	PhaseLoading
	PhaseSucceeded
	PhaseFailed
)

// String returns the snake_case name used in logs.
func (p Phase) String() string {
	switch p {
	case PhaseNotRequested:
		return "not_requested"
	case PhaseLoading:
		return "loading"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Async models the lifecycle of a fetch independent of what triggers it.
type Async[T any, E any] struct {
	phase Phase
	data  T
	err   E
}

// NotRequested, Loading, Succeeded and Failed build an Async in the matching Phase.
func NotRequested[T, E any]() Async[T, E] { return Async[T, E]{phase: PhaseNotRequested} }
func Loading[T, E any]() Async[T, E]      { return Async[T, E]{phase: PhaseLoading} }
func Succeeded[T, E any](v T) Async[T, E] { return Async[T, E]{phase: PhaseSucceeded, data: v} }
func Failed[T, E any](e E) Async[T, E]    { return Async[T, E]{phase: PhaseFailed, err: e} }

// Phase reports where in its lifecycle a is.
func (a Async[T, E]) Phase() Phase { return a.phase }

// Data returns the loaded value when the fetch succeeded.
func (a Async[T, E]) Data() (T, bool) {
	if a.phase == PhaseSucceeded {
		return a.data, true
	}
	var zero T
	return zero, false
}

// Err returns the failure when the fetch failed.
func (a Async[T, E]) Err() (E, bool) {
	if a.phase == PhaseFailed {
		return a.err, true
	}
	var zero E
	return zero, false
}

// Start moves NotRequested or Failed into Loading.
// Loading and Succeeded are returned unchanged.
func (a Async[T, E]) Start() Async[T, E] {
	switch a.phase {
	case PhaseNotRequested, PhaseFailed:
		return Loading[T, E]()
	default:
		return a
	}
}

// Settle records the outcome of a fetch.
func (a Async[T, E]) Settle(r Result[T, E]) Async[T, E] {
	if v, ok := r.Value(); ok {
		return Succeeded[T, E](v)
	}
	e, _ := r.Err()
	return Failed[T](e)
}

// MatchAsync folds the four phases into one value.
func MatchAsync[T, E, R any](
	a Async[T, E],
	onNotRequested func() R,
	onLoading func() R,
	onSucceeded func(T) R,
	onFailed func(E) R,
) R {
	switch a.phase {
	case PhaseLoading:
		return onLoading()
	case PhaseSucceeded:
		return onSucceeded(a.data)
	case PhaseFailed:
		return onFailed(a.err)
	default:
		return onNotRequested()
	}
}
