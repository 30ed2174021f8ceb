package auth

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	memdb "github.com/hashicorp/go-memdb"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

const (
	revocationTable = "revocation"
	revocationIndex = "id"

	keyInfo = "effect-engine|token"
	// additional data binds sealed tokens to this format version.
	tokenAD = "v1"
)

// MinSecretBytes is the shortest secret NewSealedAuthority accepts.
const MinSecretBytes = 16

type revocation struct {
	TokenID   string
	ExpiresAt time.Time
}

type sealedClaims struct {
	ID        string `json:"jti"`
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func revocationSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			revocationTable: {
				Name: revocationTable,
				Indexes: map[string]*memdb.IndexSchema{
					revocationIndex: {
						Name:    revocationIndex,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "TokenID"},
					},
				},
			},
		},
	}
}

var _ Authority = (*SealedAuthority)(nil)

// SealedAuthority issues self-contained tokens: the claims are sealed with
// XChaCha20-Poly1305 under a key derived from a shared secret, so any
// instance holding the secret can validate them. Revocations are kept in
// memory until the revoked token would have expired anyway.
type SealedAuthority struct {
	aead    cipher.AEAD
	db      *memdb.MemDB
	now     func() time.Time
	entropy io.Reader
}

// SealedOption configures a SealedAuthority.
type SealedOption func(*SealedAuthority)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SealedOption {
	return func(a *SealedAuthority) { a.now = now }
}

func NewSealedAuthority(secret []byte, opts ...SealedOption) (*SealedAuthority, error) {
	if len(secret) < MinSecretBytes {
		return nil, fmt.Errorf("auth secret must be at least %d bytes, got %d", MinSecretBytes, len(secret))
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive token key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create token cipher: %w", err)
	}
	db, err := memdb.NewMemDB(revocationSchema())
	if err != nil {
		return nil, fmt.Errorf("create memdb: %w", err)
	}
	a := &SealedAuthority{aead: aead, db: db, now: time.Now, entropy: rand.Reader}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Issue seals fresh claims for subject. A ttl above MaxTokenTTL is clamped.
func (a *SealedAuthority) Issue(ctx context.Context, subject string, ttl time.Duration) (Token, error) {
	if err := ctx.Err(); err != nil {
		return Token{}, err
	}
	ttl = min(ttl, MaxTokenTTL)
	issued := a.clock()
	sc := sealedClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  issued.UnixNano(),
		ExpiresAt: issued.Add(ttl).UnixNano(),
	}
	plain, err := json.Marshal(sc)
	if err != nil {
		return Token{}, fmt.Errorf("encode claims: %w", err)
	}
	nonce := make([]byte, a.aead.NonceSize(), a.aead.NonceSize()+len(plain)+a.aead.Overhead())
	if _, err := io.ReadFull(a.entropy, nonce); err != nil {
		return Token{}, fmt.Errorf("token nonce: %w", err)
	}
	sealed := a.aead.Seal(nonce, nonce, plain, []byte(tokenAD))
	return Token{
		Value:  base64.RawURLEncoding.EncodeToString(sealed),
		Claims: sc.claims(),
	}, nil
}

// Validate opens token and checks its expiry and revocation.
func (a *SealedAuthority) Validate(ctx context.Context, token string) (Claims, error) {
	if err := ctx.Err(); err != nil {
		return Claims{}, err
	}
	sc, err := a.open(token)
	if err != nil {
		return Claims{}, err
	}
	if !a.clock().Before(time.Unix(0, sc.ExpiresAt)) {
		return Claims{}, fmt.Errorf("%w: %s", ErrTokenExpired, sc.ID)
	}

	txn := a.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First(revocationTable, revocationIndex, sc.ID)
	if err != nil {
		return Claims{}, err
	}
	if raw != nil {
		return Claims{}, fmt.Errorf("%w: %s", ErrTokenRevoked, sc.ID)
	}
	return sc.claims(), nil
}

// Revoke records an authentic token as revoked. Revoking twice is a no-op.
// Revocations of tokens that have since expired are dropped.
func (a *SealedAuthority) Revoke(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sc, err := a.open(token)
	if err != nil {
		return err
	}
	now := a.clock()

	txn := a.db.Txn(true)
	defer txn.Abort()

	it, err := txn.Get(revocationTable, revocationIndex)
	if err != nil {
		return err
	}
	var stale []*revocation
	for raw := it.Next(); raw != nil; raw = it.Next() {
		if r := raw.(*revocation); !now.Before(r.ExpiresAt) {
			stale = append(stale, r)
		}
	}
	for _, r := range stale {
		if err := txn.Delete(revocationTable, r); err != nil {
			return err
		}
	}
	if expires := time.Unix(0, sc.ExpiresAt); now.Before(expires) {
		if err := txn.Insert(revocationTable, &revocation{TokenID: sc.ID, ExpiresAt: expires}); err != nil {
			return err
		}
	}
	txn.Commit()
	return nil
}

// Revocations reports how many unexpired revocations are held.
func (a *SealedAuthority) Revocations() int {
	txn := a.db.Txn(false)
	defer txn.Abort()
	it, err := txn.Get(revocationTable, revocationIndex)
	if err != nil {
		return 0
	}
	n := 0
	for raw := it.Next(); raw != nil; raw = it.Next() {
		n++
	}
	return n
}

func (a *SealedAuthority) clock() time.Time {
	return time.Unix(0, a.now().UnixNano()).UTC()
}

func (a *SealedAuthority) open(token string) (sealedClaims, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return sealedClaims{}, fmt.Errorf("%w: malformed encoding", ErrTokenInvalid)
	}
	ns := a.aead.NonceSize()
	if len(sealed) < ns+a.aead.Overhead() {
		return sealedClaims{}, fmt.Errorf("%w: too short", ErrTokenInvalid)
	}
	plain, err := a.aead.Open(nil, sealed[:ns], sealed[ns:], []byte(tokenAD))
	if err != nil {
		return sealedClaims{}, fmt.Errorf("%w: authentication failed", ErrTokenInvalid)
	}
	var sc sealedClaims
	if err := json.Unmarshal(plain, &sc); err != nil {
		return sealedClaims{}, errors.Join(ErrTokenInvalid, err)
	}
	if sc.ID == "" || sc.Subject == "" {
		return sealedClaims{}, fmt.Errorf("%w: missing claims", ErrTokenInvalid)
	}
	return sc, nil
}

func (sc sealedClaims) claims() Claims {
	return Claims{
		TokenID: sc.ID,
		Subject: sc.Subject,
		Validity: effectmodel.SpanBetween(
			time.Unix(0, sc.IssuedAt).UTC(),
			time.Unix(0, sc.ExpiresAt).UTC(),
		),
	}
}
