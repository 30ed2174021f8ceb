package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)

// Authority is the narrow capability a token service provides.
type Authority interface {
	Issue(ctx context.Context, subject string, ttl time.Duration) (Token, error)
	Validate(ctx context.Context, token string) (Claims, error)
	Revoke(ctx context.Context, token string) error
}

var _ effectmodel.Interpreter = (*Interpreter)(nil)

// Interpreter executes auth descriptions against an Authority.
type Interpreter struct {
	authority Authority
}

// NewInterpreter executes auth descriptions against authority.
func NewInterpreter(authority Authority) *Interpreter {
	return &Interpreter{authority: authority}
}

func (*Interpreter) Tags() []effectmodel.Tag {
	return effectmodel.TagsOf(effectmodel.FamilyAuth)
}

func (in *Interpreter) Execute(ctx context.Context, d effectmodel.Description) effectmodel.Outcome {
	switch d := d.(type) {

	case IssueToken:
		tok, err := in.authority.Issue(ctx, d.subject, d.ttl)
		if err != nil {
			return effectmodel.Failed(classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(tok)

	case ValidateToken:
		claims, err := in.authority.Validate(ctx, d.token)
		if err != nil {
			return effectmodel.Failed(classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(claims)

	case RevokeToken:
		if err := in.authority.Revoke(ctx, d.token); err != nil {
			return effectmodel.Failed(classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(struct{}{})

	default:
		panic(fmt.Errorf("auth interpreter: foreign description %T", d))
	}
}

func classify(tag effectmodel.Tag, err error) effectmodel.EffectError {
	switch {
	case errors.Is(err, ErrTokenInvalid):
		return effectmodel.NewEffectError(effectmodel.KindTokenInvalid, tag, "token is not valid", err)
	case errors.Is(err, ErrTokenExpired):
		return effectmodel.NewEffectError(effectmodel.KindTokenExpired, tag, "token has expired", err)
	case errors.Is(err, ErrTokenRevoked):
		return effectmodel.NewEffectError(effectmodel.KindUnauthorized, tag, "token was revoked", err)
	default:
		return effectmodel.Classify(tag, err)
	}
}

// AuthorityFuncs adapts plain functions into an Authority. A nil function
// fails with ErrTokenInvalid.
type AuthorityFuncs struct {
	IssueFn    func(ctx context.Context, subject string, ttl time.Duration) (Token, error)
	ValidateFn func(ctx context.Context, token string) (Claims, error)
	RevokeFn   func(ctx context.Context, token string) error
}

var _ Authority = AuthorityFuncs{}

func (f AuthorityFuncs) Issue(ctx context.Context, subject string, ttl time.Duration) (Token, error) {
	if f.IssueFn == nil {
		return Token{}, ErrTokenInvalid
	}
	return f.IssueFn(ctx, subject, ttl)
}

func (f AuthorityFuncs) Validate(ctx context.Context, token string) (Claims, error) {
	if f.ValidateFn == nil {
		return Claims{}, ErrTokenInvalid
	}
	return f.ValidateFn(ctx, token)
}

func (f AuthorityFuncs) Revoke(ctx context.Context, token string) error {
	if f.RevokeFn == nil {
		return ErrTokenInvalid
	}
	return f.RevokeFn(ctx, token)
}
