package transport_test

import (
	"context"
	"errors"
	"testing"
	"time"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
	"github.com/on-the-ground/effect_ive_engine/effects/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHub(t *testing.T) (*transport.Interpreter, *transport.Endpoint) {
	t.Helper()
	local, remote := transport.Pipe()
	hub := transport.NewHub()
	require.NoError(t, hub.Attach("chat", local))
	return transport.NewInterpreter(hub), remote
}

func TestInterpreter_SendAndReceive(t *testing.T) {
	in, remote := newHub(t)
	ctx := context.Background()

	out := in.Execute(ctx, transport.MustSendOf("chat", "hello"))
	require.True(t, out.IsSuccess())

	text, err := remote.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	require.NoError(t, remote.Send(ctx, "hi back"))
	out = in.Execute(ctx, transport.MustReceiveOf("chat"))
	v, ok := out.Value()
	require.True(t, ok)
	assert.Equal(t, "hi back", v)
}

func TestInterpreter_UnknownChannelIsNotFound(t *testing.T) {
	in, _ := newHub(t)

	out := in.Execute(context.Background(), transport.MustSendOf("nope", "x"))
	err, ok := out.Err()
	require.True(t, ok)
	assert.Equal(t, effectmodel.KindNotFound, err.Kind)
	assert.True(t, errors.Is(err, effectmodel.ErrNotFound))
}

func TestInterpreter_CloseIsVisibleToPeerWithReason(t *testing.T) {
	in, remote := newHub(t)
	ctx := context.Background()

	require.NoError(t, remote.Send(ctx, "last words"))
	out := in.Execute(ctx, transport.MustCloseOf("chat", "bye"))
	require.True(t, out.IsSuccess())

	got := in.Execute(ctx, transport.MustReceiveOf("chat"))
	v, ok := got.Value()
	require.True(t, ok, "buffered frame must survive close")
	assert.Equal(t, "last words", v)

	_, err := remote.Receive(ctx)
	var closed *transport.ClosedError
	require.ErrorAs(t, err, &closed)
	assert.Equal(t, "bye", closed.Reason)

	out = in.Execute(ctx, transport.MustSendOf("chat", "anyone?"))
	failure, failed := out.Err()
	require.True(t, failed)
	assert.Equal(t, effectmodel.KindConflict, failure.Kind)
	assert.False(t, failure.Retryable())

	out = in.Execute(ctx, transport.MustCloseOf("chat", "again"))
	failure, failed = out.Err()
	require.True(t, failed)
	assert.Equal(t, effectmodel.KindConflict, failure.Kind)
}

func TestInterpreter_ReceiveDeadlineIsTimeout(t *testing.T) {
	in, _ := newHub(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	out := in.Execute(ctx, transport.MustReceiveOf("chat"))
	err, ok := out.Err()
	require.True(t, ok)
	assert.Equal(t, effectmodel.KindTimeout, err.Kind)
	assert.True(t, err.Retryable())
}

func TestHub_AttachOnce(t *testing.T) {
	hub := transport.NewHub()
	a, b := transport.Pipe()
	require.NoError(t, hub.Attach("x", a))
	assert.Error(t, hub.Attach("x", b))
	require.NoError(t, hub.Attach("w", b))
	assert.Equal(t, []string{"w", "x"}, hub.Names())

	hub.Detach("x")
	assert.Equal(t, []string{"w"}, hub.Names())
}

func TestDescriptions_Validation(t *testing.T) {
	_, err := transport.SendOf("", "x")
	assert.True(t, errors.Is(err, effectmodel.ErrValidation))
	_, err = transport.ReceiveOf("")
	assert.True(t, errors.Is(err, effectmodel.ErrValidation))
	_, err = transport.CloseOf("", "r")
	assert.True(t, errors.Is(err, effectmodel.ErrValidation))

	assert.Equal(t, transport.MustSendOf("c", "t"), transport.MustSendOf("c", "t"))
}
