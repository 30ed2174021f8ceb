package effects_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/effect_ive_engine/effects"
	"github.com/on-the-ground/effect_ive_engine/effects/cache"
	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
	"github.com/on-the-ground/effect_ive_engine/pure"
)

type outcomeOpt = pure.Option[effectmodel.Outcome]

func some(o effectmodel.Outcome) outcomeOpt { return pure.Some(o) }

func echoPlan() effects.Plan[string, effectmodel.EffectError] {
	return effects.Expect(cache.MustGetOf("k"),
		func(r pure.Result[pure.Option[[]byte], effectmodel.EffectError]) effects.Plan[string, effectmodel.EffectError] {
			opt, ok := r.Value()
			if !ok {
				e, _ := r.Err()
				return effects.Fail[string](e)
			}
			return effects.Succeed[string, effectmodel.EffectError](string(opt.OrElse([]byte("miss"))))
		})
}

func TestProgram_StepsThroughStates(t *testing.T) {
	p := effects.NewProgram(echoPlan())

	s := p.Resume(pure.None[effectmodel.Outcome]())
	d, waiting := s.Request()
	require.True(t, waiting)
	assert.Equal(t, cache.MustGetOf("k"), d)

	s = p.Resume(some(effectmodel.Succeeded(pure.Some([]byte("v")))))
	res, done := s.Result()
	require.True(t, done)
	assert.Equal(t, "v", res.UnwrapOr(""))
}

func TestProgram_ProtocolViolationsPanic(t *testing.T) {
	started := func() effects.Program[string, effectmodel.EffectError] {
		p := effects.NewProgram(echoPlan())
		p.Resume(pure.None[effectmodel.Outcome]())
		return p
	}

	assert.Panics(t, func() {
		effects.NewProgram(echoPlan()).Resume(some(effectmodel.Succeeded(nil)))
	}, "starting with an outcome")

	assert.Panics(t, func() {
		started().Resume(pure.None[effectmodel.Outcome]())
	}, "awaiting without an outcome")

	p := started()
	p.Resume(some(effectmodel.Succeeded(pure.None[[]byte]())))
	assert.Panics(t, func() {
		p.Resume(some(effectmodel.Succeeded(nil)))
	}, "resumed after completion")
}

func TestTryResume_ReportsViolationAsError(t *testing.T) {
	p := effects.NewProgram(effects.Succeed[int, error](1))
	_, err := effects.TryResume(p, pure.None[effectmodel.Outcome]())
	require.NoError(t, err)

	_, err = effects.TryResume(p, some(effectmodel.Succeeded(nil)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, effectmodel.ErrProtocolViolation))
}

func TestTryResume_OtherPanicsPropagate(t *testing.T) {
	p := effects.ProgramFunc[int, error](func(outcomeOpt) effects.Step[int, error] {
		panic("boom")
	})
	assert.PanicsWithValue(t, "boom", func() {
		_, _ = effects.TryResume[int, error](p, pure.None[effectmodel.Outcome]())
	})
}

func TestExpect_WrongOutcomeTypeIsProtocolViolation(t *testing.T) {
	p := effects.NewProgram(echoPlan())
	p.Resume(pure.None[effectmodel.Outcome]())

	res, done := p.Resume(some(effectmodel.Succeeded(42))).Result()
	require.True(t, done)
	err, failed := res.Err()
	require.True(t, failed)
	assert.Equal(t, effectmodel.KindProtocolViolation, err.Kind)
}

func TestThen_ShortCircuitsOnFailure(t *testing.T) {
	called := false
	plan := effects.Then(
		effects.Fail[int](errors.New("first")),
		func(int) effects.Plan[string, error] {
			called = true
			return effects.Succeed[string, error]("never")
		},
	)
	require.True(t, plan.IsDone())
	res, _ := effects.NewProgram(plan).Resume(pure.None[effectmodel.Outcome]()).Result()
	assert.True(t, res.IsFailure())
	assert.False(t, called)
}

func TestOutcomeAs(t *testing.T) {
	ok := effects.OutcomeAs[string](effectmodel.Succeeded("x"))
	assert.Equal(t, "x", ok.UnwrapOr(""))

	fail := effectmodel.NewEffectError(effectmodel.KindNotFound, effectmodel.TagCacheGet, "", nil)
	passed := effects.OutcomeAs[string](effectmodel.Failed(fail))
	e, failed := passed.Err()
	require.True(t, failed)
	assert.Equal(t, fail, e)
}

func TestStep_Accessors(t *testing.T) {
	s := effects.Complete(pure.Success[int, error](3))
	_, waiting := s.Request()
	assert.False(t, waiting)
	assert.True(t, s.IsComplete())

	s = effects.Suspend[int, error](cache.MustGetOf("k"))
	_, done := s.Result()
	assert.False(t, done)
}
