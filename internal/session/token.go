package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a token is not a decodable JWT
var ErrMalformedToken = errors.New("malformed token")

// ExpiresAt decodes the token payload without verifying the signature and
// returns its exp claim. ok is false when the token carries no exp claim.
func ExpiresAt(token string) (exp time.Time, ok bool, err error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	date, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if date == nil {
		return time.Time{}, false, nil
	}

	return date.Time, true, nil
}

// Expired reports whether token is expired at now. Undecodable tokens count as expired.
func Expired(token string, now time.Time) bool {
	exp, ok, err := ExpiresAt(token)
	if err != nil {
		return true
	}
	return ok && !now.Before(exp)
}
