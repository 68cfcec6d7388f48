package jwt

import (
	"errors"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrMalformed = errors.New("malformed token")

// Subject returns the "sub" claim of a bearer token without verifying its
// signature. Tokens are issued and verified by the auth backend; the value is
// only used to correlate log lines.
func Subject(tokenStr string) (string, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return "", ErrMalformed
	}
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return "", ErrMalformed
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", ErrMalformed
	}
	return sub, nil
}
