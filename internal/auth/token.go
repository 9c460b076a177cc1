package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// PendingTokenManager signs the short-lived token that carries a facility
// login between the primary-credential step and the OTP step. The token
// proves primary credentials succeeded; it grants no session by itself.
type PendingTokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewPendingTokenManager builds a new manager.
func NewPendingTokenManager(secret string, ttl time.Duration) *PendingTokenManager {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PendingTokenManager{secret: []byte(secret), ttl: ttl}
}

// PendingClaims describes the pending-login JWT payload.
type PendingClaims struct {
	ChallengeID string `json:"challenge_id"`
	Email       string `json:"email"`
	jwt.RegisteredClaims
}

// Generate builds and signs a pending-login token for the challenge.
func (tm *PendingTokenManager) Generate(challengeID, email string) (string, time.Time, error) {
	expiresAt := time.Now().Add(tm.ttl)
	claims := &PendingClaims{
		ChallengeID: challengeID,
		Email:       email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Parse validates and returns claims.
func (tm *PendingTokenManager) Parse(tokenStr string) (*PendingClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &PendingClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*PendingClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
