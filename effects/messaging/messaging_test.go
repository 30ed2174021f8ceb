package messaging_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_engine/effects/messaging"
	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
	"github.com/on-the-ground/effect_ive_engine/pure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBroker(t *testing.T, subs ...[2]string) *messaging.MemoryBroker {
	t.Helper()
	b := messaging.NewMemoryBroker()
	for _, s := range subs {
		require.NoError(t, b.Subscribe(s[0], s[1]))
	}
	t.Cleanup(b.Close)
	return b
}

func run(t *testing.T, in *messaging.Interpreter, d effectmodel.Description) any {
	t.Helper()
	out := in.Execute(context.Background(), d)
	v, ok := out.Value()
	require.True(t, ok, "%s failed: %v", d.Tag(), out)
	return v
}

func consume(t *testing.T, in *messaging.Interpreter, sub string, timeout time.Duration) pure.Option[messaging.Message] {
	t.Helper()
	return run(t, in, messaging.MustConsumeOf(sub, timeout)).(pure.Option[messaging.Message])
}

func TestInterpreter_PublishConsumeAck(t *testing.T) {
	b := newBroker(t, [2]string{"orders", "billing"})
	in := messaging.NewInterpreter(b)

	id := run(t, in, messaging.MustPublishOf("orders", []byte("o-1"),
		messaging.WithKey("customer-7"),
		messaging.WithProperties(map[string]string{"kind": "created"}),
	)).(messaging.MessageID)
	require.NotEmpty(t, id)

	msg, ok := consume(t, in, "billing", time.Second).Get()
	require.True(t, ok)
	assert.Equal(t, id, msg.Origin)
	assert.NotEqual(t, id, msg.ID)
	assert.Equal(t, []byte("o-1"), msg.Payload)
	assert.Equal(t, "customer-7", msg.Key)
	assert.Equal(t, "created", msg.Properties["kind"])
	assert.Equal(t, 1, msg.Attempt)
	assert.Positive(t, msg.TimeSpan().Duration())
	assert.Equal(t, 1, b.InFlight())

	run(t, in, messaging.MustAcknowledgeOf(msg.ID))
	assert.Equal(t, 0, b.InFlight())

	out := in.Execute(context.Background(), messaging.MustAcknowledgeOf(msg.ID))
	err, failed := out.Err()
	require.True(t, failed)
	assert.Equal(t, effectmodel.KindNotFound, err.Kind)
}

func TestInterpreter_ConsumeTimeoutIsAbsent(t *testing.T) {
	in := messaging.NewInterpreter(newBroker(t, [2]string{"orders", "billing"}))

	start := time.Now()
	got := consume(t, in, "billing", 30*time.Millisecond)
	assert.True(t, got.IsAbsent())
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	assert.True(t, consume(t, in, "billing", 0).IsAbsent())
}

func TestInterpreter_ConsumeWakesOnPublish(t *testing.T) {
	in := messaging.NewInterpreter(newBroker(t, [2]string{"orders", "billing"}))

	var wg sync.WaitGroup
	var got pure.Option[messaging.Message]
	wg.Add(1)
	go func() {
		defer wg.Done()
		got = consume(t, in, "billing", 5*time.Second)
	}()

	time.Sleep(20 * time.Millisecond)
	run(t, in, messaging.MustPublishOf("orders", []byte("late")))
	wg.Wait()

	msg, ok := got.Get()
	require.True(t, ok)
	assert.Equal(t, []byte("late"), msg.Payload)
}

func TestInterpreter_FanOutToEverySubscription(t *testing.T) {
	in := messaging.NewInterpreter(newBroker(t,
		[2]string{"orders", "billing"},
		[2]string{"orders", "shipping"},
	))

	run(t, in, messaging.MustPublishOf("orders", []byte("o-1")))

	for _, sub := range []string{"billing", "shipping"} {
		msg, ok := consume(t, in, sub, time.Second).Get()
		require.True(t, ok, sub)
		assert.Equal(t, []byte("o-1"), msg.Payload)
	}
}

func TestInterpreter_DeliveriesSettleIndependently(t *testing.T) {
	b := newBroker(t,
		[2]string{"orders", "billing"},
		[2]string{"orders", "shipping"},
	)
	in := messaging.NewInterpreter(b)
	id := run(t, in, messaging.MustPublishOf("orders", []byte("o-1"))).(messaging.MessageID)

	billing, ok := consume(t, in, "billing", time.Second).Get()
	require.True(t, ok)
	shipping, ok := consume(t, in, "shipping", time.Second).Get()
	require.True(t, ok)
	assert.Equal(t, id, billing.Origin)
	assert.Equal(t, id, shipping.Origin)
	assert.NotEqual(t, billing.ID, shipping.ID)
	assert.Equal(t, 2, b.InFlight())

	run(t, in, messaging.MustNegativeAcknowledgeOf(billing.ID, 0))
	assert.Equal(t, 1, b.InFlight())

	again, ok := consume(t, in, "billing", time.Second).Get()
	require.True(t, ok)
	assert.Equal(t, billing.ID, again.ID)
	assert.Equal(t, 2, again.Attempt)
	assert.True(t, consume(t, in, "shipping", 0).IsAbsent(), "shipping keeps its single delivery")

	run(t, in, messaging.MustAcknowledgeOf(shipping.ID))
	run(t, in, messaging.MustAcknowledgeOf(again.ID))
	assert.Equal(t, 0, b.InFlight())
}

func TestInterpreter_NackRedeliversAfterDelay(t *testing.T) {
	in := messaging.NewInterpreter(newBroker(t, [2]string{"orders", "billing"}))
	run(t, in, messaging.MustPublishOf("orders", []byte("o-1")))

	first, ok := consume(t, in, "billing", time.Second).Get()
	require.True(t, ok)
	run(t, in, messaging.MustNegativeAcknowledgeOf(first.ID, 50*time.Millisecond))

	assert.True(t, consume(t, in, "billing", 0).IsAbsent())

	again, ok := consume(t, in, "billing", 2*time.Second).Get()
	require.True(t, ok)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 2, again.Attempt)
}

func TestInterpreter_UnknownSubscriptionIsNotFound(t *testing.T) {
	in := messaging.NewInterpreter(newBroker(t))

	out := in.Execute(context.Background(), messaging.MustConsumeOf("nobody", 0))
	err, ok := out.Err()
	require.True(t, ok)
	assert.Equal(t, effectmodel.KindNotFound, err.Kind)
	assert.Equal(t, effectmodel.TagMessagingConsume, err.Tag)
	assert.False(t, err.Retryable())
}

func TestInterpreter_ClosedBrokerIsTransient(t *testing.T) {
	b := messaging.NewMemoryBroker()
	require.NoError(t, b.Subscribe("orders", "billing"))
	b.Close()

	in := messaging.NewInterpreter(b)
	out := in.Execute(context.Background(), messaging.MustPublishOf("orders", nil))
	err, ok := out.Err()
	require.True(t, ok)
	assert.Equal(t, effectmodel.KindTransient, err.Kind)
	assert.True(t, err.Retryable())
}

func TestInterpreter_SettlingAfterCloseIsTransient(t *testing.T) {
	b := messaging.NewMemoryBroker()
	require.NoError(t, b.Subscribe("orders", "billing"))
	in := messaging.NewInterpreter(b)
	run(t, in, messaging.MustPublishOf("orders", []byte("o-1")))
	msg, ok := consume(t, in, "billing", time.Second).Get()
	require.True(t, ok)
	b.Close()

	for _, d := range []effectmodel.Description{
		messaging.MustNegativeAcknowledgeOf(msg.ID, 0),
		messaging.MustNegativeAcknowledgeOf(msg.ID, time.Millisecond),
		messaging.MustAcknowledgeOf(msg.ID),
	} {
		var out effectmodel.Outcome
		require.NotPanics(t, func() { out = in.Execute(context.Background(), d) })
		err, failed := out.Err()
		require.True(t, failed, d.Tag())
		assert.Equal(t, effectmodel.KindTransient, err.Kind)
	}
}

func TestInterpreter_PanicsOnForeignDescription(t *testing.T) {
	in := messaging.NewInterpreter(newBroker(t))
	assert.Panics(t, func() {
		in.Execute(context.Background(), foreign{})
	})
}

type foreign struct{}

func (foreign) Tag() effectmodel.Tag { return effectmodel.TagCacheGet }

func TestDescriptions_Validation(t *testing.T) {
	_, err := messaging.PublishOf("", nil)
	assert.True(t, errors.Is(err, effectmodel.ErrValidation))

	_, err = messaging.ConsumeOf("s", -time.Second)
	assert.True(t, errors.Is(err, effectmodel.ErrValidation))

	_, err = messaging.NegativeAcknowledgeOf("id", -time.Second)
	assert.True(t, errors.Is(err, effectmodel.ErrValidation))

	_, err = messaging.AcknowledgeOf("")
	assert.True(t, errors.Is(err, effectmodel.ErrValidation))

	props := map[string]string{"a": "1"}
	p := messaging.MustPublishOf("t", []byte("x"), messaging.WithProperties(props))
	props["a"] = "2"
	assert.Equal(t, "1", p.Properties()["a"])
	assert.Equal(t, "t", p.PartitionKey())
	assert.Equal(t,
		messaging.MustPublishOf("t", []byte("x"), messaging.WithKey("k")).Tag(),
		effectmodel.TagMessagingPublish,
	)
}
