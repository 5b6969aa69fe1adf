package utils // package utils provides helper functions for token signing and hashing

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid covers every way a token can fail verification: bad
// signature, expiry, malformed input or an unexpected signing method.
// Callers get the same error for all of them so a response never reveals
// which check failed.
var ErrTokenInvalid = errors.New("token invalid")

// GenerateToken signs an HS256 JWT containing the payload claims plus
// exp and iat. The payload is signed, not encrypted: anything placed in
// it is readable by whoever holds the token.
func GenerateToken(payload map[string]any, secret string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	for k, v := range payload {
		claims[k] = v
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// VerifyToken validates the signature and expiry against the given secret
// and returns the claims. Only HMAC signing methods are accepted.
func VerifyToken(token, secret string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// DecodeToken extracts the claims WITHOUT checking signature or expiry.
// The verifying secret lives in a per-user key record that can only be
// located by first reading the claimed user id out of the token, so the
// auth flow peeks here and then verifies properly once the record is
// loaded. Never treat the result as authenticated.
func DecodeToken(token string) (jwt.MapClaims, error) {
	tok, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// RandomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data. Used for the per-user signing
// secrets stored in key records.
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
