// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package tokeninfo reads the claims of a bearer token for display.
//
// Signatures are NOT verified: the CLI does not hold the backend's signing key,
// and nothing here is used to make an authorization decision. The backend stays
// the only authority on whether a token is valid.
package tokeninfo

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned for opaque tokens that are not JSON Web Tokens.
var ErrNotJWT = errors.New("token is not a JWT")

// Info summarizes the claims of a token.
type Info struct {
	// PID is the account identifier carried in the "pid" claim, if any.
	PID       string
	Subject   string
	Algorithm string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasExpiry reports whether the token carries an exp claim.
func (i *Info) HasExpiry() bool { return !i.ExpiresAt.IsZero() }

// Expired reports whether the token's exp claim is before now.
// Tokens without exp never expire.
func (i *Info) Expired(now time.Time) bool {
	return i.HasExpiry() && now.After(i.ExpiresAt)
}

// Remaining returns the time left until expiry, or 0 when expired or unbounded.
func (i *Info) Remaining(now time.Time) time.Duration {
	if !i.HasExpiry() || i.Expired(now) {
		return 0
	}
	return i.ExpiresAt.Sub(now)
}

type claims struct {
	PID string `json:"pid"`
	jwt.RegisteredClaims
}

// Inspect parses token without verifying its signature.
func Inspect(token string) (*Info, error) {
	var c claims
	t, _, err := jwt.NewParser().ParseUnverified(token, &c)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrNotJWT
		}
		return nil, err
	}

	info := &Info{
		PID:       c.PID,
		Subject:   c.Subject,
		Algorithm: t.Method.Alg(),
	}
	if c.IssuedAt != nil {
		info.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		info.ExpiresAt = c.ExpiresAt.Time
	}
	return info, nil
}
