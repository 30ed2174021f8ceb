package transport

import (
	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

// Description is a sealed interface for realtime transport operations.
type Description interface {
	effectmodel.Description
	transportDescription()
}

var (
	_ Description = Send{}
	_ Description = Receive{}
	_ Description = Close{}
)

// Send writes one text frame to a channel.
type Send struct {
	channel, text string
}

func SendOf(channel, text string) (Send, error) {
	if err := checkChannel(effectmodel.TagTransportSend, channel); err != nil {
		return Send{}, err
	}
	return Send{channel: channel, text: text}, nil
}

func MustSendOf(channel, text string) Send { return must(SendOf(channel, text)) }

func (Send) Tag() effectmodel.Tag   { return effectmodel.TagTransportSend }
func (d Send) Channel() string      { return d.channel }
func (d Send) Text() string         { return d.text }
func (d Send) PartitionKey() string { return d.channel }
func (Send) transportDescription()  {}

// Receive reads the next text frame of a channel, waiting as long as the
// context allows.
type Receive struct {
	channel string
}

func ReceiveOf(channel string) (Receive, error) {
	if err := checkChannel(effectmodel.TagTransportReceive, channel); err != nil {
		return Receive{}, err
	}
	return Receive{channel: channel}, nil
}

func MustReceiveOf(channel string) Receive { return must(ReceiveOf(channel)) }

func (Receive) Tag() effectmodel.Tag   { return effectmodel.TagTransportReceive }
func (d Receive) Channel() string      { return d.channel }
func (d Receive) PartitionKey() string { return d.channel }
func (Receive) transportDescription()  {}

// Close shuts a channel down for both peers.
type Close struct {
	channel, reason string
}

func CloseOf(channel, reason string) (Close, error) {
	if err := checkChannel(effectmodel.TagTransportClose, channel); err != nil {
		return Close{}, err
	}
	return Close{channel: channel, reason: reason}, nil
}

func MustCloseOf(channel, reason string) Close { return must(CloseOf(channel, reason)) }

func (Close) Tag() effectmodel.Tag   { return effectmodel.TagTransportClose }
func (d Close) Channel() string      { return d.channel }
func (d Close) Reason() string       { return d.reason }
func (d Close) PartitionKey() string { return d.channel }
func (Close) transportDescription()  {}

func checkChannel(tag effectmodel.Tag, channel string) error {
	if channel == "" {
		return effectmodel.ValidationError(tag, "channel must not be empty")
	}
	return nil
}

func must[D any](d D, err error) D {
	if err != nil {
		panic(err)
	}
	return d
}
