package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/on-the-ground/effect_ive_engine/effects/config"
	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
	"github.com/on-the-ground/effect_ive_engine/internal/app"
)

func newApp(t *testing.T, cfg config.Config) (*app.App, *observer.ObservedLogs, *prometheus.Registry) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	reg := prometheus.NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	a, err := app.New(ctx, cfg, zap.New(core), reg)
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, a.Close())
	})
	return a, logs, reg
}

func TestNew_RoutesEveryTag(t *testing.T) {
	a, logs, _ := newApp(t, config.Default())

	assert.ElementsMatch(t, effectmodel.AllTags(), a.Composite.Tags())
	require.Equal(t, 1, logs.FilterMessage("engine ready").Len())
	assert.Equal(t, 1, logs.FilterMessage("no auth secret configured, tokens will not survive a restart").Len())
}

func TestNew_RejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.DatabaseBackend = "mongo"
	_, err := app.New(context.Background(), cfg, nil, nil)
	assert.ErrorContains(t, err, `unknown database backend "mongo"`)

	cfg = config.Default()
	cfg.AuthSecret = "short"
	_, err = app.New(context.Background(), cfg, nil, nil)
	assert.Error(t, err)
}

func TestScenarios(t *testing.T) {
	expect := map[string]func(t *testing.T, out string){
		"missing-record": func(t *testing.T, out string) {
			assert.Equal(t, "failed (not_found): users/42", out)
		},
		"publish-consume": func(t *testing.T, out string) {
			assert.Contains(t, out, `consumed`)
			assert.Contains(t, out, `"hello"`)
			assert.Contains(t, out, "in flight 0")
		},
		"cache-aside": func(t *testing.T, out string) {
			assert.Equal(t, `ok "ada@example.com", ok "ada@example.com"`, out)
		},
		"signup": func(t *testing.T, out string) {
			assert.Contains(t, out, "failed (validation): bad email; too short")
			assert.Contains(t, out, "grace@example.com")
		},
		"token-session": func(t *testing.T, out string) {
			assert.Contains(t, out, "Subject:ada")
		},
		"upload-list": func(t *testing.T, out string) {
			assert.Contains(t, out, "2026/a.txt (5 bytes")
			assert.Contains(t, out, "2026/b.txt (4 bytes")
		},
		"echo": func(t *testing.T, out string) {
			assert.Equal(t, "ping, pong, closed: echo done", out)
		},
	}

	var names []string
	for _, s := range app.Scenarios() {
		names = append(names, s.Name)
	}
	assert.IsIncreasing(t, names)
	assert.Len(t, names, len(expect))

	for _, s := range app.Scenarios() {
		t.Run(s.Name, func(t *testing.T) {
			a, logs, _ := newApp(t, config.Default())
			out, err := a.RunScenario(context.Background(), s.Name)
			require.NoError(t, err)
			require.Contains(t, expect, s.Name)
			expect[s.Name](t, out)
			assert.Equal(t, 1, logs.FilterMessage("scenario finished").Len())
		})
	}
}

func TestRunScenario_Unknown(t *testing.T) {
	a, _, _ := newApp(t, config.Default())
	_, err := a.RunScenario(context.Background(), "nope")
	assert.ErrorIs(t, err, app.ErrUnknownScenario)
}

func TestSQLiteBackend(t *testing.T) {
	cfg := config.Default()
	cfg.DatabaseBackend = config.BackendSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "engine.db")
	a, _, reg := newApp(t, cfg)

	out, err := a.RunScenario(context.Background(), "cache-aside")
	require.NoError(t, err)
	assert.Equal(t, `ok "ada@example.com", ok "ada@example.com"`, out)

	n, err := testutil.GatherAndCount(reg, "effect_engine_programs_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
