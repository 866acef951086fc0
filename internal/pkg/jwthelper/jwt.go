package jwthelper

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrEmptyKey      = errors.New("empty signing key")
	ErrWrongAudience = errors.New("token not issued for this audience")
)

// AudienceCron marks tokens accepted by the demand trigger and item admin routes.
const AudienceCron = "cron"

type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for subject. A zero ttl yields a token
// without expiry.
func GenerateToken(key []byte, subject string, ttl time.Duration) (string, error) {
	if len(key) == 0 {
		return "", ErrEmptyKey
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			Audience: jwt.ClaimStrings{AudienceCron},
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("token.SignedString -> %w", err)
	}

	return signed, nil
}

func ParseToken(key []byte, tokenString string) (*Claims, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("jwt.ParseWithClaims -> %w", err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	aud, err := claims.GetAudience()
	if err != nil || !containsString(aud, AudienceCron) {
		return nil, ErrWrongAudience
	}

	return claims, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}
