package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const userIdClaim = "user_id"

var (
	// ErrExpired is returned for a well-formed credential past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrInvalid is returned for anything else: bad signature, wrong
	// algorithm, garbage input, missing claims.
	ErrInvalid = errors.New("token invalid")
)

// Manager issues and verifies the signed, time-bounded credentials used by
// both the REST middleware and the realtime gateway. Verification only
// decodes the embedded user id; whether that user still exists is the
// caller's problem.
type Manager struct {
	signingKey []byte
	ttl        time.Duration
}

func NewManager(signingKey []byte, ttl time.Duration) *Manager {
	return &Manager{signingKey: signingKey, ttl: ttl}
}

func (m *Manager) Issue(userId int) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userIdClaim: userId,
		"exp":       time.Now().Add(m.ttl).Unix(),
	})

	return tok.SignedString(m.signingKey)
}

func (m *Manager) Verify(tokenString string) (int, error) {
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.signingKey, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return 0, ErrExpired
		}
		return 0, ErrInvalid
	}

	if !tok.Valid {
		return 0, ErrInvalid
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalid
	}

	userId, ok := claims[userIdClaim].(float64)
	if !ok {
		return 0, ErrInvalid
	}

	return int(userId), nil
}
