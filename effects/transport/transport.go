package transport

import (
	"context"
	"errors"
	"fmt"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

var (
	ErrUnknownChannel = errors.New("unknown channel")
	ErrClosed         = errors.New("channel closed")
)

// ClosedError reports a channel closed by a peer, carrying its reason.
type ClosedError struct {
	Reason string
}

func (e *ClosedError) Error() string {
	if e.Reason == "" {
		return ErrClosed.Error()
	}
	return fmt.Sprintf("%s: %s", ErrClosed, e.Reason)
}

func (e *ClosedError) Unwrap() error { return ErrClosed }

// Channels is the narrow capability a realtime transport adapter provides,
// addressing connections by name.
type Channels interface {
	Send(ctx context.Context, channel, text string) error
	Receive(ctx context.Context, channel string) (string, error)
	Close(ctx context.Context, channel, reason string) error
}

var _ effectmodel.Interpreter = (*Interpreter)(nil)

// Interpreter executes transport descriptions against Channels.
type Interpreter struct {
	channels Channels
}

// NewInterpreter executes transport descriptions on channels.
func NewInterpreter(channels Channels) *Interpreter {
	return &Interpreter{channels: channels}
}

func (*Interpreter) Tags() []effectmodel.Tag {
	return effectmodel.TagsOf(effectmodel.FamilyTransport)
}

func (in *Interpreter) Execute(ctx context.Context, d effectmodel.Description) effectmodel.Outcome {
	switch d := d.(type) {

	case Send:
		if err := in.channels.Send(ctx, d.channel, d.text); err != nil {
			return effectmodel.Failed(classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(struct{}{})

	case Receive:
		text, err := in.channels.Receive(ctx, d.channel)
		if err != nil {
			return effectmodel.Failed(classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(text)

	case Close:
		if err := in.channels.Close(ctx, d.channel, d.reason); err != nil {
			return effectmodel.Failed(classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(struct{}{})

	default:
		panic(fmt.Errorf("transport interpreter: foreign description %T", d))
	}
}

func classify(tag effectmodel.Tag, err error) effectmodel.EffectError {
	switch {
	case errors.Is(err, ErrUnknownChannel):
		return effectmodel.NewEffectError(effectmodel.KindNotFound, tag, "channel not found", err)
	case errors.Is(err, ErrClosed):
		return effectmodel.NewEffectError(effectmodel.KindConflict, tag, err.Error(), err)
	default:
		return effectmodel.Classify(tag, err)
	}
}
