package effects

import (
	"fmt"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
	"github.com/on-the-ground/effect_ive_engine/pure"
	"github.com/on-the-ground/effect_ive_engine/shared/helper"
)

// Step is what a Program yields when resumed: either a description to
// execute next, or its final result.
type Step[T, E any] struct {
	request  effectmodel.Description
	result   pure.Result[T, E]
	complete bool
}

// Suspend yields d and waits for its outcome.
func Suspend[T, E any](d effectmodel.Description) Step[T, E] {
	return Step[T, E]{request: d}
}

// Complete ends the program with r.
func Complete[T, E any](r pure.Result[T, E]) Step[T, E] {
	return Step[T, E]{result: r, complete: true}
}

// Request returns the description to execute, if the step suspends.
func (s Step[T, E]) Request() (effectmodel.Description, bool) {
	return s.request, !s.complete
}

// Result returns the final result, if the step completes.
func (s Step[T, E]) Result() (pure.Result[T, E], bool) {
	return s.result, s.complete
}

func (s Step[T, E]) IsComplete() bool { return s.complete }

// Program is business logic expressed as a sequence of effect requests.
//
// It is first resumed with None. Every later resume carries the outcome of
// the description it last requested, Success or Failure alike. A Program
// never performs I/O itself.
type Program[T, E any] interface {
	Resume(prev pure.Option[effectmodel.Outcome]) Step[T, E]
}

// ProgramFunc adapts a hand-written state machine into a Program.
type ProgramFunc[T, E any] func(prev pure.Option[effectmodel.Outcome]) Step[T, E]

func (f ProgramFunc[T, E]) Resume(prev pure.Option[effectmodel.Outcome]) Step[T, E] {
	return f(prev)
}

// Plan is a continuation: either finished with a result, or waiting on one
// description with a function deciding what comes after its outcome.
// Plans are values; building one performs nothing.
type Plan[T, E any] struct {
	request effectmodel.Description
	next    func(effectmodel.Outcome) Plan[T, E]
	result  pure.Result[T, E]
}

// Done is a finished plan.
func Done[T, E any](r pure.Result[T, E]) Plan[T, E] {
	return Plan[T, E]{result: r}
}

// Succeed finishes with v.
func Succeed[T, E any](v T) Plan[T, E] {
	return Done(pure.Success[T, E](v))
}

// Fail finishes with the failure e.
func Fail[T, E any](e E) Plan[T, E] {
	return Done(pure.Failure[T](e))
}

// Request asks for d and continues with k once its outcome is known.
func Request[T, E any](d effectmodel.Description, k func(effectmodel.Outcome) Plan[T, E]) Plan[T, E] {
	return Plan[T, E]{request: d, next: k}
}

// Expect is Request with a typed outcome. An outcome value of any other type
// reaches k as a ProtocolViolation failure.
func Expect[O, T, E any](d effectmodel.Description, k func(pure.Result[O, effectmodel.EffectError]) Plan[T, E]) Plan[T, E] {
	return Request(d, func(o effectmodel.Outcome) Plan[T, E] {
		return k(OutcomeAs[O](o))
	})
}

// Then runs p and feeds its success into f. A failure of p ends the plan.
func Then[A, B, E any](p Plan[A, E], f func(A) Plan[B, E]) Plan[B, E] {
	if p.next == nil {
		if v, ok := p.result.Value(); ok {
			return f(v)
		}
		e, _ := p.result.Err()
		return Fail[B](e)
	}
	return Plan[B, E]{
		request: p.request,
		next: func(o effectmodel.Outcome) Plan[B, E] {
			return Then(p.next(o), f)
		},
	}
}

// Retry requests d up to attempts times while its failure is retryable,
// then hands the last outcome to k.
func Retry[T, E any](d effectmodel.Description, attempts int, k func(effectmodel.Outcome) Plan[T, E]) Plan[T, E] {
	return Request(d, func(o effectmodel.Outcome) Plan[T, E] {
		if err, failed := o.Err(); failed && err.Retryable() && attempts > 1 {
			return Retry(d, attempts-1, k)
		}
		return k(o)
	})
}

// IsDone reports whether the plan has its result.
func (p Plan[T, E]) IsDone() bool { return p.next == nil }

func (p Plan[T, E]) step() Step[T, E] {
	if p.next == nil {
		return Complete(p.result)
	}
	return Suspend[T, E](p.request)
}

type programState int

const (
	stateStarting programState = iota
	stateAwaiting
	stateCompleted
)

func (s programState) String() string {
	switch s {
	case stateStarting:
		return "starting"
	case stateAwaiting:
		return "awaiting"
	case stateCompleted:
		return "completed"
	default:
		panic(fmt.Sprintf("unknown program state: %d", int(s)))
	}
}

// planProgram drives a Plan one step per Resume. Each suspension can be
// resumed exactly once.
type planProgram[T, E any] struct {
	plan  Plan[T, E]
	state programState
}

// NewProgram makes a one-shot Program from a plan. Resuming it out of order
// panics with a ProtocolViolation EffectError; see TryResume.
func NewProgram[T, E any](plan Plan[T, E]) Program[T, E] {
	return &planProgram[T, E]{plan: plan}
}

func (p *planProgram[T, E]) Resume(prev pure.Option[effectmodel.Outcome]) Step[T, E] {
	switch p.state {
	case stateStarting:
		if prev.IsPresent() {
			panic(protocolViolation("started with an outcome"))
		}
	case stateAwaiting:
		o, ok := prev.Get()
		if !ok {
			panic(protocolViolation("resumed without the outcome of %s", p.plan.request.Tag()))
		}
		p.plan = p.plan.next(o)
	case stateCompleted:
		panic(protocolViolation("resumed after completion"))
	}

	if p.plan.IsDone() {
		p.state = stateCompleted
	} else {
		p.state = stateAwaiting
		if p.plan.request == nil {
			p.state = stateCompleted
			panic(protocolViolation("plan requested a nil description"))
		}
	}
	return p.plan.step()
}

// TryResume resumes p, reporting a protocol violation as an error instead of
// panicking. Other panics propagate.
func TryResume[T, E any](p Program[T, E], prev pure.Option[effectmodel.Outcome]) (step Step[T, E], err error) {
	defer func() {
		if r := recover(); r != nil {
			if ee, ok := r.(effectmodel.EffectError); ok && ee.Kind == effectmodel.KindProtocolViolation {
				err = ee
				return
			}
			panic(r)
		}
	}()
	return p.Resume(prev), nil
}

// OutcomeAs converts an outcome's value to O. Failures pass through.
func OutcomeAs[O any](o effectmodel.Outcome) pure.Result[O, effectmodel.EffectError] {
	if e, failed := o.Err(); failed {
		return pure.Failure[O](e)
	}
	raw, _ := o.Value()
	v, err := helper.TypedValueOf[O](raw)
	if err != nil {
		return pure.Failure[O](effectmodel.NewEffectError(
			effectmodel.KindProtocolViolation, "", "outcome has the wrong type", err))
	}
	return pure.Success[O, effectmodel.EffectError](v)
}

func protocolViolation(format string, args ...any) effectmodel.EffectError {
	return effectmodel.NewEffectError(effectmodel.KindProtocolViolation, "", fmt.Sprintf(format, args...), nil)
}
