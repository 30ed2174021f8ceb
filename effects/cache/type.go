package cache

import (
	"time"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

// Description is a sealed interface for cache operations.
type Description interface {
	effectmodel.Description
	effectmodel.Partitionable
	cacheDescription()
}

var (
	_ Description = Get{}
	_ Description = Put{}
)

// Get reads a key. A miss is Absent, not an error.
type Get struct {
	key string
}

// GetOf rejects an empty key.
func GetOf(key string) (Get, error) {
	if key == "" {
		return Get{}, effectmodel.ValidationError(effectmodel.TagCacheGet, "key must not be empty")
	}
	return Get{key: key}, nil
}

func MustGetOf(key string) Get {
	return must(GetOf(key))
}

func (Get) Tag() effectmodel.Tag   { return effectmodel.TagCacheGet }
func (d Get) Key() string          { return d.key }
func (d Get) PartitionKey() string { return d.key }
func (Get) cacheDescription()      {}

// Put stores a value. A zero TTL never expires.
type Put struct {
	key   string
	value string
	ttl   time.Duration
}

// PutOf rejects an empty key and a negative ttl. A zero ttl never expires.
func PutOf(key string, value []byte, ttl time.Duration) (Put, error) {
	if key == "" {
		return Put{}, effectmodel.ValidationError(effectmodel.TagCachePut, "key must not be empty")
	}
	if ttl < 0 {
		return Put{}, effectmodel.ValidationError(effectmodel.TagCachePut, "ttl must not be negative, got %s", ttl)
	}
	return Put{key: key, value: string(value), ttl: ttl}, nil
}

func MustPutOf(key string, value []byte, ttl time.Duration) Put {
	return must(PutOf(key, value, ttl))
}

func (Put) Tag() effectmodel.Tag   { return effectmodel.TagCachePut }
func (d Put) Key() string          { return d.key }
func (d Put) Value() []byte        { return []byte(d.value) }
func (d Put) TTL() time.Duration   { return d.ttl }
func (d Put) PartitionKey() string { return d.key }
func (Put) cacheDescription()      {}

func must[D any](d D, err error) D {
	if err != nil {
		panic(err)
	}
	return d
}
