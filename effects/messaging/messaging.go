package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
	"github.com/on-the-ground/effect_ive_engine/pure"
)

var (
	ErrUnknownSubscription = errors.New("unknown subscription")
	ErrUnknownMessage      = errors.New("unknown or already settled message")
	ErrBrokerClosed        = errors.New("broker closed")
)

// Broker is the narrow capability a message bus adapter provides.
// Publish assigns the message id. Consume reports ok=false when the timeout
// elapses without a message. Acknowledge and NegativeAcknowledge take the
// delivery id of a consumed message, Message.ID.
type Broker interface {
	Publish(ctx context.Context, msg Message) (MessageID, error)
	Consume(ctx context.Context, subscription string, timeout time.Duration) (Message, bool, error)
	Acknowledge(ctx context.Context, id MessageID) error
	NegativeAcknowledge(ctx context.Context, id MessageID, delay time.Duration) error
}

var _ effectmodel.Interpreter = (*Interpreter)(nil)

// Interpreter executes messaging descriptions against a Broker.
type Interpreter struct {
	broker Broker
}

// NewInterpreter executes messaging descriptions against broker.
func NewInterpreter(broker Broker) *Interpreter {
	return &Interpreter{broker: broker}
}

func (*Interpreter) Tags() []effectmodel.Tag {
	return effectmodel.TagsOf(effectmodel.FamilyMessaging)
}

func (in *Interpreter) Execute(ctx context.Context, d effectmodel.Description) effectmodel.Outcome {
	switch d := d.(type) {

	case Publish:
		id, err := in.broker.Publish(ctx, Message{
			Topic:      d.topic,
			Key:        d.key,
			Payload:    []byte(d.payload),
			Properties: d.Properties(),
		})
		if err != nil {
			return effectmodel.Failed(classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(id)

	case Consume:
		msg, ok, err := in.broker.Consume(ctx, d.subscription, d.timeout)
		if err != nil {
			return effectmodel.Failed(classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(pure.OptionFromPair(msg, ok))

	case Acknowledge:
		if err := in.broker.Acknowledge(ctx, d.messageID); err != nil {
			return effectmodel.Failed(classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(struct{}{})

	case NegativeAcknowledge:
		if err := in.broker.NegativeAcknowledge(ctx, d.messageID, d.delay); err != nil {
			return effectmodel.Failed(classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(struct{}{})

	default:
		panic(fmt.Errorf("messaging interpreter: foreign description %T", d))
	}
}

func classify(tag effectmodel.Tag, err error) effectmodel.EffectError {
	switch {
	case errors.Is(err, ErrUnknownSubscription):
		return effectmodel.NewEffectError(effectmodel.KindNotFound, tag, "subscription not found", err)
	case errors.Is(err, ErrUnknownMessage):
		return effectmodel.NewEffectError(effectmodel.KindNotFound, tag, "message not in flight", err)
	case errors.Is(err, ErrBrokerClosed):
		return effectmodel.NewEffectError(effectmodel.KindTransient, tag, "broker unavailable", err)
	default:
		return effectmodel.Classify(tag, err)
	}
}
