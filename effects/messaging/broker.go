package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

// MemoryBroker is an in-process Broker. Every subscription of a topic gets
// its own copy of each published message, with its own delivery ID; the ID
// returned by Publish is kept in Message.Origin. A consumed message stays in flight
// until it is acknowledged or negatively acknowledged; a nack requeues it
// after the requested delay.
//
// It is safe for concurrent use.
type MemoryBroker struct {
	mu       sync.Mutex
	topics   map[string]map[string]struct{}
	subs     map[string]*subscription
	inflight map[MessageID]delivery
	timers   map[*time.Timer]struct{}
	closed   bool
	now      func() time.Time
}

type subscription struct {
	queue []Message
	// wake is closed and replaced whenever queue grows.
	wake chan struct{}
}

type delivery struct {
	subscription string
	msg          Message
}

var _ Broker = (*MemoryBroker)(nil)

// NewMemoryBroker returns an empty broker with no subscriptions.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		topics:   make(map[string]map[string]struct{}),
		subs:     make(map[string]*subscription),
		inflight: make(map[MessageID]delivery),
		timers:   make(map[*time.Timer]struct{}),
		now:      time.Now,
	}
}

// Subscribe creates a named subscription on topic. Subscription names are
// global to the broker; subscribing an existing name to another topic is an
// error.
func (b *MemoryBroker) Subscribe(topic, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBrokerClosed
	}
	if _, ok := b.subs[name]; ok {
		if _, same := b.topics[topic][name]; same {
			return nil
		}
		return fmt.Errorf("subscription %q already bound to another topic", name)
	}
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[string]struct{})
	}
	b.topics[topic][name] = struct{}{}
	b.subs[name] = &subscription{wake: make(chan struct{})}
	return nil
}

// Publish fans msg out to every subscription of its topic. A topic without
// subscriptions accepts and drops the message.
func (b *MemoryBroker) Publish(ctx context.Context, msg Message) (MessageID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return "", ErrBrokerClosed
	}
	now := b.now()
	origin := MessageID(ulid.Make().String())
	msg.Origin = origin
	msg.Published = effectmodel.InstantAt(now)
	msg.Attempt = 0
	for name := range b.topics[msg.Topic] {
		copied := msg.clone()
		copied.ID = deliveryID(origin, name)
		b.enqueue(b.subs[name], copied)
	}
	return origin, nil
}

// Consume pops the next message of the subscription, waiting up to timeout.
// A zero timeout polls.
func (b *MemoryBroker) Consume(ctx context.Context, name string, timeout time.Duration) (Message, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return Message{}, false, err
		}

		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return Message{}, false, ErrBrokerClosed
		}
		sub, ok := b.subs[name]
		if !ok {
			b.mu.Unlock()
			return Message{}, false, fmt.Errorf("%w: %s", ErrUnknownSubscription, name)
		}
		if len(sub.queue) > 0 {
			msg := sub.queue[0]
			sub.queue = sub.queue[1:]
			msg.Attempt++
			b.inflight[msg.ID] = delivery{subscription: name, msg: msg}
			b.mu.Unlock()
			return msg.clone(), true, nil
		}
		wake := sub.wake
		b.mu.Unlock()

		select {
		case <-wake:
		case <-timer.C:
			return Message{}, false, nil
		case <-ctx.Done():
			return Message{}, false, ctx.Err()
		}
	}
}

// Acknowledge settles one in-flight delivery.
func (b *MemoryBroker) Acknowledge(ctx context.Context, id MessageID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBrokerClosed
	}
	if _, ok := b.inflight[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMessage, id)
	}
	delete(b.inflight, id)
	return nil
}

// NegativeAcknowledge requeues an in-flight message after delay.
func (b *MemoryBroker) NegativeAcknowledge(ctx context.Context, id MessageID, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBrokerClosed
	}
	d, ok := b.inflight[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMessage, id)
	}
	delete(b.inflight, id)

	if delay <= 0 {
		b.enqueue(b.subs[d.subscription], d.msg)
		return nil
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.timers, t)
		if b.closed {
			return
		}
		b.enqueue(b.subs[d.subscription], d.msg)
	})
	b.timers[t] = struct{}{}
	return nil
}

// InFlight reports how many messages await settlement.
func (b *MemoryBroker) InFlight() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.inflight)
}

// Close stops pending redeliveries and wakes every waiting consumer.
func (b *MemoryBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for t := range b.timers {
		t.Stop()
		delete(b.timers, t)
	}
	for _, sub := range b.subs {
		close(sub.wake)
	}
}

// deliveryID names the copy of a published message held by one subscription.
func deliveryID(origin MessageID, subscription string) MessageID {
	return MessageID(string(origin) + "/" + subscription)
}

// enqueue must be called with b.mu held.
func (b *MemoryBroker) enqueue(sub *subscription, msg Message) {
	sub.queue = append(sub.queue, msg)
	close(sub.wake)
	sub.wake = make(chan struct{})
}
