package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
)

var testSigningKey = []byte("test_signing_key")

func TestIssueAndVerify(t *testing.T) {
	m := NewManager(testSigningKey, time.Hour)

	tokenString, err := m.Issue(42)
	assert.NoError(t, err, "expected no error issuing token")
	assert.NotEmpty(t, tokenString, "expected a signed token")

	userId, err := m.Verify(tokenString)
	assert.NoError(t, err, "expected no error verifying token")
	assert.Equal(t, 42, userId, "expected user id to round trip")
}

func TestVerify(t *testing.T) {
	m := NewManager(testSigningKey, time.Hour)

	tcases := []struct {
		name  string
		token func(t *testing.T) string
		err   error
	}{
		{
			name: "expired token",
			token: func(t *testing.T) string {
				expired := NewManager(testSigningKey, -time.Minute)
				tokenString, err := expired.Issue(1)
				assert.NoError(t, err)
				return tokenString
			},
			err: ErrExpired,
		},
		{
			name: "token signed with different key",
			token: func(t *testing.T) string {
				other := NewManager([]byte("other_key"), time.Hour)
				tokenString, err := other.Issue(1)
				assert.NoError(t, err)
				return tokenString
			},
			err: ErrInvalid,
		},
		{
			name: "token with unexpected signing method",
			token: func(t *testing.T) string {
				tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
					"user_id": 1,
					"exp":     time.Now().Add(time.Hour).Unix(),
				})
				tokenString, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
				assert.NoError(t, err)
				return tokenString
			},
			err: ErrInvalid,
		},
		{
			name: "token without user id claim",
			token: func(t *testing.T) string {
				tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
					"exp": time.Now().Add(time.Hour).Unix(),
				})
				tokenString, err := tok.SignedString(testSigningKey)
				assert.NoError(t, err)
				return tokenString
			},
			err: ErrInvalid,
		},
		{
			name: "garbage input",
			token: func(t *testing.T) string {
				return "not.a.token"
			},
			err: ErrInvalid,
		},
		{
			name: "empty input",
			token: func(t *testing.T) string {
				return ""
			},
			err: ErrInvalid,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			userId, err := m.Verify(tc.token(t))
			assert.ErrorIs(t, err, tc.err, "expected error to match")
			assert.Zero(t, userId, "expected zero user id on error")
		})
	}
}
