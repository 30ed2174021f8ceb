package effects_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/effect_ive_engine/effects"
	"github.com/on-the-ground/effect_ive_engine/effects/cache"
	"github.com/on-the-ground/effect_ive_engine/effects/database"
	"github.com/on-the-ground/effect_ive_engine/effects/effecttest"
	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

func counting(f effectmodel.Family, calls *int) effecttest.InterpreterFunc {
	return effecttest.FamilyFunc(f, func(context.Context, effectmodel.Description) effectmodel.Outcome {
		*calls++
		return effectmodel.Succeeded(string(f))
	})
}

func TestComposite_DelegatesExactlyOnce(t *testing.T) {
	var dbCalls, cacheCalls int
	c, err := effects.NewRegistry().
		Register(counting(effectmodel.FamilyDatabase, &dbCalls), counting(effectmodel.FamilyCache, &cacheCalls)).
		Build()
	require.NoError(t, err)

	out := c.Execute(context.Background(), database.MustGetByIDOf("users", "42"))
	v, ok := out.Value()
	require.True(t, ok)
	assert.Equal(t, "database", v)
	assert.Equal(t, 1, dbCalls)
	assert.Equal(t, 0, cacheCalls)
}

func TestComposite_PassesFailuresThroughUnchanged(t *testing.T) {
	want := effectmodel.NewEffectError(effectmodel.KindConflict, effectmodel.TagDatabaseSave, "dup", errors.New("unique"))
	c := effects.NewRegistry().Register(effecttest.FamilyFunc(effectmodel.FamilyDatabase,
		func(context.Context, effectmodel.Description) effectmodel.Outcome {
			return effectmodel.Failed(want)
		},
	)).MustBuild()

	out := c.Execute(context.Background(), database.MustSaveOf("users", "1", nil))
	got, failed := out.Err()
	require.True(t, failed)
	assert.Equal(t, want, got)
}

func TestComposite_UnroutableNeverPanics(t *testing.T) {
	c := effects.NewRegistry().MustBuild()

	for _, d := range []effectmodel.Description{nil, cache.MustGetOf("k")} {
		var out effectmodel.Outcome
		require.NotPanics(t, func() { out = c.Execute(context.Background(), d) })
		err, failed := out.Err()
		require.True(t, failed)
		assert.Equal(t, effectmodel.KindUnroutable, err.Kind)
		assert.True(t, errors.Is(err, effectmodel.ErrUnroutable))
		assert.False(t, err.Retryable())
	}
}

func TestRegistry_BuildErrors(t *testing.T) {
	var n int
	_, err := effects.NewRegistry().
		Register(counting(effectmodel.FamilyCache, &n), counting(effectmodel.FamilyCache, &n)).
		Build()
	assert.ErrorIs(t, err, effects.ErrDuplicateTag)

	_, err = effects.NewRegistry().
		Register(counting(effectmodel.FamilyCache, &n)).
		RequireAll().
		Build()
	assert.ErrorIs(t, err, effects.ErrMissingTag)
	assert.Contains(t, err.Error(), string(effectmodel.TagAuthIssueToken))

	c, err := effects.NewRegistry().
		Register(counting(effectmodel.FamilyCache, &n)).
		Require(effectmodel.TagCacheGet, effectmodel.TagCachePut).
		Build()
	require.NoError(t, err)
	assert.Equal(t, []effectmodel.Tag{effectmodel.TagCacheGet, effectmodel.TagCachePut}, c.Tags())
	assert.True(t, c.Routes(effectmodel.TagCacheGet))
	assert.False(t, c.Routes(effectmodel.TagDatabaseSave))
}

func TestRegistry_BuildSnapshotsRoutes(t *testing.T) {
	var n int
	r := effects.NewRegistry()
	c := r.MustBuild()
	r.Register(counting(effectmodel.FamilyCache, &n))

	assert.Empty(t, c.Tags())
	assert.Panics(t, func() { r.Register(counting(effectmodel.FamilyCache, &n)).MustBuild() })
}
