package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The console only ever reads the exp claim. Signature verification is
// the API's job; a token we cannot read is simply not trusted.

func decodeExpiry(tokenString string) (time.Time, bool) {
	parser := new(jwt.Parser)
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// IsExpired reports whether the bearer token is past its expiry. Fail
// closed: a missing, malformed, or otherwise undecodable token counts
// as expired. Never panics and never returns an error to callers.
func IsExpired(tokenString string) bool {
	exp, ok := decodeExpiry(tokenString)
	if !ok {
		return true
	}
	return exp.Before(time.Now())
}

// ExpiryTime returns the raw expiry instant for display and diagnostics
// only. Access decisions go through IsExpired, which owns the
// fail-closed policy.
func ExpiryTime(tokenString string) (time.Time, bool) {
	return decodeExpiry(tokenString)
}
