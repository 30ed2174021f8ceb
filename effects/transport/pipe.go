package transport

import (
	"context"
	"fmt"
	"sync"
)

// frameBuffer is how many frames a sender may run ahead of its peer.
const frameBuffer = 16

// Conn is one side of a bidirectional text connection.
type Conn interface {
	Send(ctx context.Context, text string) error
	Receive(ctx context.Context) (string, error)
	Close(reason string) error
}

var _ Conn = (*Endpoint)(nil)

// Endpoint is one side of an in-process connection made by Pipe.
type Endpoint struct {
	send  chan<- string
	recv  <-chan string
	state *pipeState
}

type pipeState struct {
	once   sync.Once
	done   chan struct{}
	reason string
}

// Pipe creates a connected pair of endpoints. Frames sent on one are
// received on the other, in order. Closing either side closes both.
func Pipe() (*Endpoint, *Endpoint) {
	ab := make(chan string, frameBuffer)
	ba := make(chan string, frameBuffer)
	state := &pipeState{done: make(chan struct{})}
	return &Endpoint{send: ab, recv: ba, state: state},
		&Endpoint{send: ba, recv: ab, state: state}
}

func (e *Endpoint) closedErr() error {
	return &ClosedError{Reason: e.state.reason}
}

// Send blocks while the peer's buffer is full.
func (e *Endpoint) Send(ctx context.Context, text string) error {
	select {
	case <-e.state.done:
		return e.closedErr()
	default:
	}
	select {
	case e.send <- text:
		return nil
	case <-e.state.done:
		return e.closedErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive returns frames already buffered before reporting a close.
func (e *Endpoint) Receive(ctx context.Context) (string, error) {
	select {
	case text := <-e.recv:
		return text, nil
	default:
	}
	select {
	case text := <-e.recv:
		return text, nil
	case <-e.state.done:
		select {
		case text := <-e.recv:
			return text, nil
		default:
			return "", e.closedErr()
		}
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close closes the connection for both sides. Closing twice is an error.
func (e *Endpoint) Close(reason string) error {
	closed := false
	e.state.once.Do(func() {
		e.state.reason = reason
		close(e.state.done)
		closed = true
	})
	if !closed {
		return fmt.Errorf("close: %w", e.closedErr())
	}
	return nil
}
