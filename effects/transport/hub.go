package transport

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

var _ Channels = (*Hub)(nil)

// Hub routes named channels to their connections.
// It is safe for concurrent use.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

// NewHub returns a Hub with no channels attached.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]Conn)}
}

// Attach registers conn under name. A name can be attached once.
func (h *Hub) Attach(name string, conn Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[name]; ok {
		return fmt.Errorf("channel %q already attached", name)
	}
	h.conns[name] = conn
	return nil
}

// Detach forgets name without closing its connection.
func (h *Hub) Detach(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, name)
}

// Names lists attached channels, sorted.
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.conns))
	for name := range h.conns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Hub) lookup(name string) (Conn, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.conns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, name)
	}
	return conn, nil
}

func (h *Hub) Send(ctx context.Context, channel, text string) error {
	conn, err := h.lookup(channel)
	if err != nil {
		return err
	}
	return conn.Send(ctx, text)
}

func (h *Hub) Receive(ctx context.Context, channel string) (string, error) {
	conn, err := h.lookup(channel)
	if err != nil {
		return "", err
	}
	return conn.Receive(ctx)
}

func (h *Hub) Close(ctx context.Context, channel, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := h.lookup(channel)
	if err != nil {
		return err
	}
	return conn.Close(reason)
}
