package cache

import (
	"context"
	"fmt"
	"time"

	ristretto "github.com/dgraph-io/ristretto/v2"
)

var _ Store = (*RistrettoStore)(nil)

// RistrettoStore is a Store backed by a ristretto cache.
// Values are copied in and out, so callers never share buffers with the cache.
type RistrettoStore struct {
	cache *ristretto.Cache[string, []byte]
}

// NewRistrettoStore builds a cache tracking numCounters keys with maxCost
// bytes of capacity.
func NewRistrettoStore(numCounters, maxCost int64) (*RistrettoStore, error) {
	if numCounters <= 0 {
		numCounters = 1e5
	}
	if maxCost <= 0 {
		maxCost = 1 << 26
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &RistrettoStore{cache: c}, nil
}

func (r *RistrettoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v, ok := r.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores value and waits until it is visible to Get.
func (r *RistrettoStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := append([]byte(nil), value...)
	cost := int64(len(stored)) + 1
	if !r.cache.SetWithTTL(key, stored, cost, ttl) {
		return fmt.Errorf("%w: key %s", ErrRejected, key)
	}
	r.cache.Wait()
	return nil
}

// Close stops the cache's background goroutines.
func (r *RistrettoStore) Close() {
	r.cache.Close()
}
