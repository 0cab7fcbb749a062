/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

package webexsdk

import (
	"encoding/json"
	"fmt"
	"time"

	jose "github.com/go-jose/go-jose/v4"
)

// tokenSignatureAlgorithms lists the JWS algorithms identity services sign
// access tokens with.
var tokenSignatureAlgorithms = []jose.SignatureAlgorithm{
	jose.RS256, jose.RS384, jose.RS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.HS256,
}

// TokenInfo holds claims introspected from a JWT access token.
// Opaque (non-JWT) tokens yield a TokenInfo with Opaque set and no claims;
// they are still usable, the server just owns validation.
type TokenInfo struct {
	// Subject is the "sub" claim, typically the user ID.
	Subject string

	// Issuer is the "iss" claim.
	Issuer string

	// ExpiresAt is the "exp" claim. Zero when the token carries none.
	ExpiresAt time.Time

	// Opaque is true when the token is not a parseable JWT.
	Opaque bool
}

type tokenClaims struct {
	Subject string `json:"sub"`
	Issuer  string `json:"iss"`
	Expiry  int64  `json:"exp"`
}

// ParseToken introspects an access token without verifying its signature.
// The signature is the server's to verify; the client only wants the expiry
// so it can surface a token problem before attempting registration instead
// of burning a network round-trip on a guaranteed 401.
func ParseToken(token string) (*TokenInfo, error) {
	if token == "" {
		return nil, fmt.Errorf("access token cannot be empty")
	}

	jws, err := jose.ParseSigned(token, tokenSignatureAlgorithms)
	if err != nil {
		// Not a JWS. Opaque tokens are valid, just not introspectable.
		return &TokenInfo{Opaque: true}, nil
	}

	var claims tokenClaims
	if err := json.Unmarshal(jws.UnsafePayloadWithoutVerification(), &claims); err != nil {
		return nil, fmt.Errorf("failed to parse token claims: %w", err)
	}

	info := &TokenInfo{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
	}
	if claims.Expiry > 0 {
		info.ExpiresAt = time.Unix(claims.Expiry, 0)
	}
	return info, nil
}

// Expired reports whether the token's expiry has passed. Opaque tokens and
// tokens without an exp claim never report expired.
func (t *TokenInfo) Expired() bool {
	if t.Opaque || t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(t.ExpiresAt)
}
