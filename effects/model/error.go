package effectmodel

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an effect failure.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindValidation        Kind = "validation"
	KindConflict          Kind = "conflict"
	KindUnauthorized      Kind = "unauthorized"
	KindTokenExpired      Kind = "token_expired"
	KindTokenInvalid      Kind = "token_invalid"
	KindTimeout           Kind = "timeout"
	KindTransient         Kind = "transient"
	KindUnroutable        Kind = "unroutable"
	KindProtocolViolation Kind = "protocol_violation"
)

// Retryable reports whether repeating the same description may succeed.
func (k Kind) Retryable() bool {
	return k == KindTransient || k == KindTimeout
}

// EffectError is a classified failure. Exactly one Kind per failure;
// retryability is derived from the kind.
type EffectError struct {
	Kind    Kind
	Tag     Tag
	Message string
	Cause   error
}

// Sentinels for errors.Is matching by kind.
var (
	ErrNotFound          = EffectError{Kind: KindNotFound}
	ErrValidation        = EffectError{Kind: KindValidation}
	ErrConflict          = EffectError{Kind: KindConflict}
	ErrUnauthorized      = EffectError{Kind: KindUnauthorized}
	ErrTokenExpired      = EffectError{Kind: KindTokenExpired}
	ErrTokenInvalid      = EffectError{Kind: KindTokenInvalid}
	ErrTimeout           = EffectError{Kind: KindTimeout}
	ErrTransient         = EffectError{Kind: KindTransient}
	ErrUnroutable        = EffectError{Kind: KindUnroutable}
	ErrProtocolViolation = EffectError{Kind: KindProtocolViolation}
)

// NewEffectError classifies cause as kind for the operation tag.
func NewEffectError(kind Kind, tag Tag, msg string, cause error) EffectError {
	return EffectError{Kind: kind, Tag: tag, Message: msg, Cause: cause}
}

// ValidationError is the construction error of a malformed description.
func ValidationError(tag Tag, format string, args ...any) EffectError {
	return EffectError{Kind: KindValidation, Tag: tag, Message: fmt.Sprintf(format, args...)}
}

// Retryable reports whether reissuing the same description may succeed.
func (e EffectError) Retryable() bool { return e.Kind.Retryable() }

func (e EffectError) Error() string {
	msg := string(e.Kind)
	if e.Tag != "" {
		msg = string(e.Tag) + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e EffectError) Unwrap() error { return e.Cause }

// Is matches another EffectError of the same kind, so the sentinels above
// work with errors.Is.
func (e EffectError) Is(target error) bool {
	var t EffectError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Classify is the fallback classification for errors no family table knows.
// Already classified errors keep their kind; the tag is filled in if missing.
func Classify(tag Tag, err error) EffectError {
	var ee EffectError
	switch {
	case errors.As(err, &ee):
		if ee.Tag == "" {
			ee.Tag = tag
		}
		return ee
	case errors.Is(err, context.DeadlineExceeded):
		return NewEffectError(KindTimeout, tag, "deadline exceeded", err)
	case errors.Is(err, context.Canceled):
		return NewEffectError(KindTransient, tag, "canceled", err)
	default:
		return NewEffectError(KindTransient, tag, "infrastructure failure", err)
	}
}
