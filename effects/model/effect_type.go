package effectmodel

import (
	"context"
	"reflect"
	"strings"

	"github.com/on-the-ground/effect_ive_engine/pure"
)

// Family names one infrastructure capability.
type Family string

const (
	FamilyDatabase  Family = "database"
	FamilyCache     Family = "cache"
	FamilyMessaging Family = "messaging"
	FamilyStorage   Family = "storage"
	FamilyTransport Family = "transport"
	FamilyAuth      Family = "auth"
)

// Tag discriminates effect descriptions. Its form is "<family>.<operation>".
type Tag string

const (
	TagDatabaseGetByID Tag = "database.get_by_id"
	TagDatabaseSave    Tag = "database.save"
	TagDatabaseUpdate  Tag = "database.update"
	TagDatabaseDelete  Tag = "database.delete"

	TagCacheGet Tag = "cache.get"
	TagCachePut Tag = "cache.put"

	TagMessagingPublish             Tag = "messaging.publish"
	TagMessagingConsume             Tag = "messaging.consume"
	TagMessagingAcknowledge         Tag = "messaging.acknowledge"
	TagMessagingNegativeAcknowledge Tag = "messaging.negative_acknowledge"

	TagStorageGet    Tag = "storage.get"
	TagStoragePut    Tag = "storage.put"
	TagStorageDelete Tag = "storage.delete"
	TagStorageList   Tag = "storage.list"

	TagTransportSend    Tag = "transport.send"
	TagTransportReceive Tag = "transport.receive"
	TagTransportClose   Tag = "transport.close"

	TagAuthIssueToken    Tag = "auth.issue_token"
	TagAuthValidateToken Tag = "auth.validate_token"
	TagAuthRevokeToken   Tag = "auth.revoke_token"
)

var catalog = map[Family][]Tag{
	FamilyDatabase:  {TagDatabaseGetByID, TagDatabaseSave, TagDatabaseUpdate, TagDatabaseDelete},
	FamilyCache:     {TagCacheGet, TagCachePut},
	FamilyMessaging: {TagMessagingPublish, TagMessagingConsume, TagMessagingAcknowledge, TagMessagingNegativeAcknowledge},
	FamilyStorage:   {TagStorageGet, TagStoragePut, TagStorageDelete, TagStorageList},
	FamilyTransport: {TagTransportSend, TagTransportReceive, TagTransportClose},
	FamilyAuth:      {TagAuthIssueToken, TagAuthValidateToken, TagAuthRevokeToken},
}

var families = []Family{
	FamilyDatabase, FamilyCache, FamilyMessaging, FamilyStorage, FamilyTransport, FamilyAuth,
}

// Family returns the family prefix of the tag.
func (t Tag) Family() Family {
	f, _, _ := strings.Cut(string(t), ".")
	return Family(f)
}

// TagsOf returns the tags of one family in catalog order.
func TagsOf(f Family) []Tag {
	return append([]Tag(nil), catalog[f]...)
}

// AllTags returns every tag of the catalog, grouped by family.
func AllTags() []Tag {
	var tags []Tag
	for _, f := range families {
		tags = append(tags, catalog[f]...)
	}
	return tags
}

// Description is an immutable request for one infrastructure operation.
// Each family package seals its own variants.
type Description interface {
	Tag() Tag
}

// Equal compares two descriptions by value.
func Equal(a, b Description) bool {
	return reflect.DeepEqual(a, b)
}

// Outcome is what executing a description yields.
type Outcome = pure.Result[any, EffectError]

// Succeeded and Failed build the two Outcome variants.
func Succeeded(v any) Outcome { return pure.Success[any, EffectError](v) }
func Failed(err EffectError) Outcome {
	return pure.Failure[any](err)
}

// Executor runs one description.
type Executor interface {
	Execute(ctx context.Context, d Description) Outcome
}

// ExecutorFunc adapts a function into an Executor.
type ExecutorFunc func(ctx context.Context, d Description) Outcome

func (f ExecutorFunc) Execute(ctx context.Context, d Description) Outcome {
	return f(ctx, d)
}

// Interpreter executes the descriptions of one family.
// Tags reports which variants it owns.
type Interpreter interface {
	Executor
	Tags() []Tag
}

// EffectScopeConfig sizes a worker scope.
type EffectScopeConfig struct {
	BufferSize int // default: 1
	NumWorkers int // default: 1
}

// NewEffectScopeConfig replaces non-positive sizes with 1.
func NewEffectScopeConfig(bufferSize int, numWorkers int) EffectScopeConfig {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return EffectScopeConfig{
		BufferSize: bufferSize,
		NumWorkers: numWorkers,
	}
}

// Partitionable routes work with the same key to the same worker.
type Partitionable interface {
	PartitionKey() string
}
