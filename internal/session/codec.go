package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type tokenClaims struct {
	jwt.RegisteredClaims
}

// Codec seals claims into opaque byte strings and opens them again.
// It holds no per-request state and is safe for concurrent use.
type Codec struct {
	signKey []byte
	aead    cipher.AEAD
	maxAge  time.Duration
	now     func() time.Time
	parser  *jwt.Parser
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock replaces the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec builds a Codec from validated keys. maxAge bounds the lifetime
// of every claim it issues.
func NewCodec(keys Keys, maxAge time.Duration, opts ...Option) (*Codec, error) {
	if err := keys.validate(); err != nil {
		return nil, err
	}
	if maxAge < time.Second {
		return nil, errors.New("session max age must be at least one second")
	}
	block, err := aes.NewCipher(keys.Encrypt)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create AEAD: %w", err)
	}

	c := &Codec{
		signKey: append([]byte(nil), keys.Sign...),
		aead:    aead,
		maxAge:  maxAge,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	return c, nil
}

// MaxAge is the lifetime given to issued claims.
func (c *Codec) MaxAge() time.Duration {
	return c.maxAge
}

// Issue mints a claim for username valid from now for MaxAge.
// Times are truncated to whole seconds, the precision of the sealed form.
func (c *Codec) Issue(username string) Claim {
	now := c.now().Truncate(time.Second)
	return Claim{
		Username:  username,
		IssuedAt:  now,
		ExpiresAt: now.Add(c.maxAge),
	}
}

// Seal signs and then encrypts claim. The result is nonce || ciphertext.
func (c *Codec) Seal(claim Claim) ([]byte, error) {
	if claim.Username == "" {
		return nil, errors.New("claim has no username")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claim.Username,
			IssuedAt:  jwt.NewNumericDate(claim.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claim.ExpiresAt),
		},
	})
	signed, err := token.SignedString(c.signKey)
	if err != nil {
		return nil, fmt.Errorf("sign claim: %w", err)
	}

	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(signed)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, []byte(signed), nil), nil
}

// Unseal decrypts sealed, verifies its MAC and expiry and returns the claim.
// Every integrity failure is reported as ErrTamperedOrInvalidSession with
// no further detail.
func (c *Codec) Unseal(sealed []byte) (Claim, error) {
	ns := c.aead.NonceSize()
	if len(sealed) < ns+c.aead.Overhead() {
		return Claim{}, ErrTamperedOrInvalidSession
	}
	plain, err := c.aead.Open(nil, sealed[:ns], sealed[ns:], nil)
	if err != nil {
		return Claim{}, ErrTamperedOrInvalidSession
	}

	var tc tokenClaims
	_, err = c.parser.ParseWithClaims(string(plain), &tc, func(*jwt.Token) (any, error) {
		return c.signKey, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claim{}, ErrExpiredSession
	case err != nil:
		return Claim{}, ErrTamperedOrInvalidSession
	case tc.Subject == "" || tc.IssuedAt == nil:
		return Claim{}, ErrTamperedOrInvalidSession
	}

	return Claim{
		Username:  tc.Subject,
		IssuedAt:  tc.IssuedAt.Time,
		ExpiresAt: tc.ExpiresAt.Time,
	}, nil
}
