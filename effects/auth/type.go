package auth

import (
	"time"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

// Claims is what a valid token asserts.
type Claims struct {
	TokenID  string
	Subject  string
	Validity effectmodel.TimeSpan
}

var _ effectmodel.TimeBounded = Claims{}

func (c Claims) TimeSpan() effectmodel.TimeSpan { return c.Validity }

// Token is an issued bearer token and the claims sealed inside it.
type Token struct {
	Value string
	Claims
}

// Description is a sealed interface for authentication operations.
type Description interface {
	effectmodel.Description
	authDescription()
}

var (
	_ Description = IssueToken{}
	_ Description = ValidateToken{}
	_ Description = RevokeToken{}
)

// MaxTokenTTL bounds token lifetimes so expiry instants stay representable
// as Unix nanoseconds.
const MaxTokenTTL = 100 * 365 * 24 * time.Hour

// IssueToken mints a token for subject valid for ttl.
type IssueToken struct {
	subject string
	ttl     time.Duration
}

// IssueTokenOf rejects an empty subject and a ttl outside (0, MaxTokenTTL].
func IssueTokenOf(subject string, ttl time.Duration) (IssueToken, error) {
	if subject == "" {
		return IssueToken{}, effectmodel.ValidationError(effectmodel.TagAuthIssueToken, "subject must not be empty")
	}
	if ttl <= 0 {
		return IssueToken{}, effectmodel.ValidationError(effectmodel.TagAuthIssueToken, "ttl must be positive, got %s", ttl)
	}
	if ttl > MaxTokenTTL {
		return IssueToken{}, effectmodel.ValidationError(effectmodel.TagAuthIssueToken, "ttl must not exceed %s, got %s", MaxTokenTTL, ttl)
	}
	return IssueToken{subject: subject, ttl: ttl}, nil
}

func MustIssueTokenOf(subject string, ttl time.Duration) IssueToken {
	return must(IssueTokenOf(subject, ttl))
}

func (IssueToken) Tag() effectmodel.Tag   { return effectmodel.TagAuthIssueToken }
func (d IssueToken) Subject() string      { return d.subject }
func (d IssueToken) TTL() time.Duration   { return d.ttl }
func (d IssueToken) PartitionKey() string { return d.subject }
func (IssueToken) authDescription()       {}

// ValidateToken checks a token and yields its claims.
type ValidateToken struct {
	token string
}

func ValidateTokenOf(token string) (ValidateToken, error) {
	if token == "" {
		return ValidateToken{}, effectmodel.ValidationError(effectmodel.TagAuthValidateToken, "token must not be empty")
	}
	return ValidateToken{token: token}, nil
}

func MustValidateTokenOf(token string) ValidateToken {
	return must(ValidateTokenOf(token))
}

func (ValidateToken) Tag() effectmodel.Tag { return effectmodel.TagAuthValidateToken }
func (d ValidateToken) Token() string      { return d.token }
func (ValidateToken) authDescription()     {}

// RevokeToken invalidates a token before its validity ends.
type RevokeToken struct {
	token string
}

func RevokeTokenOf(token string) (RevokeToken, error) {
	if token == "" {
		return RevokeToken{}, effectmodel.ValidationError(effectmodel.TagAuthRevokeToken, "token must not be empty")
	}
	return RevokeToken{token: token}, nil
}

func MustRevokeTokenOf(token string) RevokeToken {
	return must(RevokeTokenOf(token))
}

func (RevokeToken) Tag() effectmodel.Tag { return effectmodel.TagAuthRevokeToken }
func (d RevokeToken) Token() string      { return d.token }
func (RevokeToken) authDescription()     {}

func must[D any](d D, err error) D {
	if err != nil {
		panic(err)
	}
	return d
}
