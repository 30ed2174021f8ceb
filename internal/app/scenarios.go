package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/on-the-ground/effect_ive_engine/effects"
	"github.com/on-the-ground/effect_ive_engine/effects/log"
	"github.com/on-the-ground/effect_ive_engine/effects/messaging"
	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
	"github.com/on-the-ground/effect_ive_engine/effects/transport"
	"github.com/on-the-ground/effect_ive_engine/examples/programs"
	"github.com/on-the-ground/effect_ive_engine/pure"
)

// ErrUnknownScenario is returned for a name not in Scenarios.
var ErrUnknownScenario = errors.New("unknown scenario")

// Scenario is a named demonstration run against a live App. It returns a
// one-line summary of what the programs it ran produced.
type Scenario struct {
	Name    string
	Summary string
	Run     func(ctx context.Context, a *App) (string, error)
}

const demoTopic = "demo.events"

var scenarios = map[string]Scenario{
	"missing-record": {
		Name:    "missing-record",
		Summary: "load a record that does not exist",
		Run: func(ctx context.Context, a *App) (string, error) {
			res, err := effects.RunProgram(ctx, a.Runner, programs.LoadRecord(programs.UsersCollection, "42"))
			return describe(res, err)
		},
	},
	"publish-consume": {
		Name:    "publish-consume",
		Summary: "publish with retry, then consume and acknowledge",
		Run: func(ctx context.Context, a *App) (string, error) {
			if err := a.Broker.Subscribe(demoTopic, "demo"); err != nil {
				return "", err
			}
			id, err := effects.RunProgram(ctx, a.Runner, programs.PublishWithRetry(demoTopic, []byte("hello"), 3))
			if err != nil {
				return "", err
			}
			got, err := effects.RunProgram(ctx, a.Runner, programs.ConsumeAndAcknowledge("demo", a.Config.ConsumeTimeout))
			if err != nil {
				return "", err
			}
			msg, _ := got.UnwrapOr(pure.None[messaging.Message]()).Get()
			return fmt.Sprintf("published %s, consumed %s %q, in flight %d",
				id.UnwrapOr(""), msg.ID, msg.Payload, a.Broker.InFlight()), nil
		},
	},
	"cache-aside": {
		Name:    "cache-aside",
		Summary: "sign up a user, then read it twice through the cache",
		Run: func(ctx context.Context, a *App) (string, error) {
			form := programs.SignUpForm{Email: "ada@example.com", Password: "correct horse"}
			if _, err := effects.RunProgram(ctx, a.Runner, programs.SignUp(form)); err != nil {
				return "", err
			}
			var out []string
			for range 2 {
				res, err := effects.RunProgram(ctx, a.Runner, programs.CacheAside(form.Email))
				s, err := describe(res, err)
				if err != nil {
					return "", err
				}
				out = append(out, s)
			}
			return strings.Join(out, ", "), nil
		},
	},
	"signup": {
		Name:    "signup",
		Summary: "sign up with invalid input, then with valid input",
		Run: func(ctx context.Context, a *App) (string, error) {
			var out []string
			for _, form := range []programs.SignUpForm{
				{Email: "nobody", Password: "short"},
				{Email: "grace@example.com", Password: "compilers!"},
			} {
				res, err := effects.RunProgram(ctx, a.Runner, programs.SignUp(form))
				s, err := describe(res, err)
				if err != nil {
					return "", err
				}
				out = append(out, s)
			}
			return strings.Join(out, ", "), nil
		},
	},
	"token-session": {
		Name:    "token-session",
		Summary: "issue, validate and revoke a token",
		Run: func(ctx context.Context, a *App) (string, error) {
			res, err := effects.RunProgram(ctx, a.Runner, programs.TokenSession("ada", time.Minute))
			return describe(res, err)
		},
	},
	"upload-list": {
		Name:    "upload-list",
		Summary: "upload objects and list them by prefix",
		Run: func(ctx context.Context, a *App) (string, error) {
			files := []programs.File{
				{Key: "a.txt", Data: []byte("alpha")},
				{Key: "b.txt", Data: []byte("beta")},
			}
			res, err := effects.RunProgram(ctx, a.Runner, programs.UploadAndList("reports", "2026/", files))
			if err != nil {
				return "", err
			}
			if e, failed := res.Err(); failed {
				return "failed: " + e.Error(), nil
			}
			infos, _ := res.Value()
			var keys []string
			for _, info := range infos {
				keys = append(keys, fmt.Sprintf("%s (%d bytes, etag %s)", info.Key, info.Size, info.ETag))
			}
			return strings.Join(keys, ", "), nil
		},
	},
	"echo": {
		Name:    "echo",
		Summary: "echo frames from a peer over a transport channel",
		Run: func(ctx context.Context, a *App) (string, error) {
			local, peer := transport.Pipe()
			if err := a.Hub.Attach("echo", local); err != nil {
				return "", err
			}
			defer a.Hub.Detach("echo")

			done := effects.Submit(ctx, a.Pool, "echo", effects.NewProgram(programs.Echo("echo", 2)))
			var replies []string
			for _, text := range []string{"ping", "pong"} {
				if err := peer.Send(ctx, text); err != nil {
					return "", err
				}
				reply, err := peer.Receive(ctx)
				if err != nil {
					return "", err
				}
				replies = append(replies, reply)
			}
			r := <-done
			if r.Err != nil {
				return "", r.Err
			}
			_, err := peer.Receive(ctx)
			var closed *transport.ClosedError
			if errors.As(err, &closed) {
				replies = append(replies, "closed: "+closed.Reason)
			}
			return strings.Join(replies, ", "), nil
		},
	},
}

// Scenarios lists every scenario by name.
func Scenarios() []Scenario {
	out := make([]Scenario, 0, len(scenarios))
	for _, s := range scenarios {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RunScenario runs the named scenario and logs its summary.
func (a *App) RunScenario(ctx context.Context, name string) (string, error) {
	s, ok := scenarios[name]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownScenario, name)
	}
	out, err := s.Run(ctx, a)
	if err != nil {
		log.Log(a.Logger, log.LogError, "scenario failed", map[string]any{"scenario": name, "error": err.Error()})
		return "", fmt.Errorf("scenario %s: %w", name, err)
	}
	log.Log(a.Logger, log.LogInfo, "scenario finished", map[string]any{"scenario": name, "summary": out})
	return out, nil
}

func describe[T any](res pure.Result[T, effectmodel.EffectError], err error) (string, error) {
	if err != nil {
		return "", err
	}
	if e, failed := res.Err(); failed {
		return fmt.Sprintf("failed (%s): %s", e.Kind, e.Message), nil
	}
	v, _ := res.Value()
	switch v := any(v).(type) {
	case []byte:
		return fmt.Sprintf("ok %q", v), nil
	default:
		return fmt.Sprintf("ok %+v", v), nil
	}
}
