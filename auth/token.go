package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Expired peeks at a stored token's exp claim without verifying the
// signature: verification is the server's job, this only avoids opening
// a session with a credential that is already dead. Tokens that do not
// parse count as expired so the caller re-authenticates; tokens without
// an exp claim are left for the server to judge.
func Expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
