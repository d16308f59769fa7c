// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MinSecretLength is the shortest accepted signing secret, in bytes.
const MinSecretLength = 32

// claims is the JWT payload of a session cookie.
type claims struct {
	Page string `json:"page"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session states as HS256 JWTs.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec creates a Codec. Tokens expire ttl after they are issued.
func NewCodec(secret []byte, ttl time.Duration) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, oops.Code(CodeInvalidToken).
			With("min_length", MinSecretLength).
			Errorf("session secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, oops.Code(CodeInvalidToken).With("ttl", ttl.String()).Errorf("session ttl must be positive")
	}
	return &Codec{secret: secret, ttl: ttl, now: time.Now}, nil
}

// TTL returns the token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Encode returns a signed token for s.
func (c *Codec) Encode(s State) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		Page: s.Page.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID.String(),
			Subject:   s.User,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", oops.Code(CodeEncodeFailed).With("session", s.ID.String()).Wrap(err)
	}
	return signed, nil
}

// Decode verifies raw and returns the state it carries. When raw is empty,
// malformed, badly signed or expired it returns a fresh State together with
// an error describing why.
func (c *Codec) Decode(raw string) (State, error) {
	if raw == "" {
		return NewState(), oops.Code(CodeInvalidToken).Errorf("no session token")
	}

	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return NewState(), oops.Code(CodeInvalidToken).Wrap(err)
	}

	id, err := ulid.Parse(cl.ID)
	if err != nil {
		return NewState(), oops.Code(CodeInvalidToken).With("field", "jti").Wrap(err)
	}
	page, err := ParsePage(cl.Page)
	if err != nil {
		return NewState(), oops.Code(CodeInvalidToken).With("page", cl.Page).Errorf("token names an unknown page")
	}

	return State{ID: id, User: cl.Subject, Page: page}.Normalize(), nil
}
