package jwt

import (
	"testing"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.RegisteredClaims{Subject: "user-42"})
	signed, err := token.SignedString([]byte("any-secret"))
	require.NoError(t, err)

	sub, err := Subject(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-42", sub)

	_, err = Subject("opaque-session-token")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Subject("")
	assert.ErrorIs(t, err, ErrMalformed)
}
