// file: utils/jwt.go
package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/alpnix/HackAtDavidson/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token purposes. A recovery token can only be exchanged for a password change.
const (
	PurposeSession  = "session"
	PurposeRecovery = "recovery"
)

type Claims struct {
	UserID  uint32           `json:"user_id"`
	Email   string           `json:"email"`
	Role    models.StaffRole `json:"role"`
	Purpose string           `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenManager signs and parses HS256 tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken issues a session token for p.
func (m *TokenManager) GenerateToken(p models.Profile) (string, *Claims, error) {
	return m.sign(p, PurposeSession, m.ttl)
}

// GenerateRecoveryToken issues a short lived token that authorises one password reset.
func (m *TokenManager) GenerateRecoveryToken(p models.Profile, ttl time.Duration) (string, *Claims, error) {
	return m.sign(p, PurposeRecovery, ttl)
}

func (m *TokenManager) sign(p models.Profile, purpose string, ttl time.Duration) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		UserID:  p.ID,
		Email:   p.Email,
		Role:    p.Role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseToken validates the signature and expiry and returns the claims.
func (m *TokenManager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
