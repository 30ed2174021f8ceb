package messaging

import (
	"maps"
	"time"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

// MessageID identifies a published message or one subscription's delivery
// of it.
type MessageID string

// Message is a delivered message. ID is the delivery's own ID, the one to
// acknowledge; Origin is the ID Publish returned, shared by every
// subscription's copy. Attempt counts deliveries, starting at 1.
// Published is the broker's clock reading at publish time, widened by the
// clock's resolution.
type Message struct {
	ID         MessageID
	Origin     MessageID
	Topic      string
	Key        string
	Payload    []byte
	Properties map[string]string
	Published  effectmodel.TimeSpan
	Attempt    int
}

var _ effectmodel.TimeBounded = Message{}

func (m Message) TimeSpan() effectmodel.TimeSpan { return m.Published }

func (m Message) clone() Message {
	m.Payload = append([]byte(nil), m.Payload...)
	m.Properties = maps.Clone(m.Properties)
	return m
}

// Description is a sealed interface for messaging operations.
type Description interface {
	effectmodel.Description
	messagingDescription()
}

var (
	_ Description = Publish{}
	_ Description = Consume{}
	_ Description = Acknowledge{}
	_ Description = NegativeAcknowledge{}
)

// Publish sends a payload to every subscription of a topic.
type Publish struct {
	topic      string
	payload    string
	key        string
	properties map[string]string
}

// PublishOption sets an optional field of Publish.
type PublishOption func(*Publish)

// WithKey sets the ordering key of the message.
func WithKey(key string) PublishOption {
	return func(p *Publish) { p.key = key }
}

// WithProperties attaches header-like properties.
func WithProperties(props map[string]string) PublishOption {
	return func(p *Publish) { p.properties = maps.Clone(props) }
}

// PublishOf validates eagerly: the topic must not be empty.
func PublishOf(topic string, payload []byte, opts ...PublishOption) (Publish, error) {
	if topic == "" {
		return Publish{}, effectmodel.ValidationError(effectmodel.TagMessagingPublish, "topic must not be empty")
	}
	p := Publish{topic: topic, payload: string(payload)}
	for _, opt := range opts {
		opt(&p)
	}
	return p, nil
}

// MustPublishOf is PublishOf for arguments known to be valid. It panics otherwise.
func MustPublishOf(topic string, payload []byte, opts ...PublishOption) Publish {
	return must(PublishOf(topic, payload, opts...))
}

func (Publish) Tag() effectmodel.Tag { return effectmodel.TagMessagingPublish }
func (d Publish) Topic() string      { return d.topic }
func (d Publish) Payload() []byte    { return []byte(d.payload) }
func (d Publish) Key() string        { return d.key }
func (d Publish) Properties() map[string]string {
	return maps.Clone(d.properties)
}

// PartitionKey keeps messages of one key in order; unkeyed messages order by topic.
func (d Publish) PartitionKey() string {
	if d.key != "" {
		return d.key
	}
	return d.topic
}
func (Publish) messagingDescription() {}

// Consume waits up to timeout for the next message of a subscription.
// Running out of time is Absent, not an error.
type Consume struct {
	subscription string
	timeout      time.Duration
}

// ConsumeOf rejects an empty subscription and a negative timeout.
func ConsumeOf(subscription string, timeout time.Duration) (Consume, error) {
	if subscription == "" {
		return Consume{}, effectmodel.ValidationError(effectmodel.TagMessagingConsume, "subscription must not be empty")
	}
	if timeout < 0 {
		return Consume{}, effectmodel.ValidationError(effectmodel.TagMessagingConsume, "timeout must not be negative, got %s", timeout)
	}
	return Consume{subscription: subscription, timeout: timeout}, nil
}

func MustConsumeOf(subscription string, timeout time.Duration) Consume {
	return must(ConsumeOf(subscription, timeout))
}

func (Consume) Tag() effectmodel.Tag     { return effectmodel.TagMessagingConsume }
func (d Consume) Subscription() string   { return d.subscription }
func (d Consume) Timeout() time.Duration { return d.timeout }
func (Consume) messagingDescription()    {}

// Acknowledge settles a delivered message.
type Acknowledge struct {
	messageID MessageID
}

// AcknowledgeOf takes the ID of the delivery to settle, Message.ID.
func AcknowledgeOf(id MessageID) (Acknowledge, error) {
	if id == "" {
		return Acknowledge{}, effectmodel.ValidationError(effectmodel.TagMessagingAcknowledge, "message id must not be empty")
	}
	return Acknowledge{messageID: id}, nil
}

func MustAcknowledgeOf(id MessageID) Acknowledge {
	return must(AcknowledgeOf(id))
}

func (Acknowledge) Tag() effectmodel.Tag   { return effectmodel.TagMessagingAcknowledge }
func (d Acknowledge) MessageID() MessageID { return d.messageID }
func (Acknowledge) messagingDescription()  {}

// NegativeAcknowledge returns a delivered message for redelivery after delay.
type NegativeAcknowledge struct {
	messageID MessageID
	delay     time.Duration
}

// NegativeAcknowledgeOf takes a delivery ID and a non-negative delay.
func NegativeAcknowledgeOf(id MessageID, delay time.Duration) (NegativeAcknowledge, error) {
	if id == "" {
		return NegativeAcknowledge{}, effectmodel.ValidationError(effectmodel.TagMessagingNegativeAcknowledge, "message id must not be empty")
	}
	if delay < 0 {
		return NegativeAcknowledge{}, effectmodel.ValidationError(effectmodel.TagMessagingNegativeAcknowledge, "delay must not be negative, got %s", delay)
	}
	return NegativeAcknowledge{messageID: id, delay: delay}, nil
}

func MustNegativeAcknowledgeOf(id MessageID, delay time.Duration) NegativeAcknowledge {
	return must(NegativeAcknowledgeOf(id, delay))
}

func (NegativeAcknowledge) Tag() effectmodel.Tag {
	return effectmodel.TagMessagingNegativeAcknowledge
}
func (d NegativeAcknowledge) MessageID() MessageID { return d.messageID }
func (d NegativeAcknowledge) Delay() time.Duration { return d.delay }
func (NegativeAcknowledge) messagingDescription()  {}

func must[D any](d D, err error) D {
	if err != nil {
		panic(err)
	}
	return d
}
