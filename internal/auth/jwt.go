package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
)

// Claims defines the structured data we store in the JWT. Role, user id and
// preferred language together form the trusted identity each connection is
// bound to.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Role     string `json:"role"`
	Language string `json:"language,omitempty"`
	jwt.RegisteredClaims
}

// Identity converts validated claims into a connection identity.
func (c *Claims) Identity() (domain.Identity, error) {
	role, err := domain.ParseRole(c.Role)
	if err != nil {
		return domain.Identity{}, err
	}
	if c.UserID <= 0 {
		return domain.Identity{}, errors.New("claims carry a non-positive user id")
	}
	return domain.Identity{
		Role:              role,
		UserID:            c.UserID,
		PreferredLanguage: c.Language,
	}, nil
}

type TokenManager struct {
	secretKey []byte
	ttl       time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secretKey: []byte(secret), ttl: ttl}
}

// GenerateToken creates a new JWT access token for a platform identity.
func (tm *TokenManager) GenerateToken(identity domain.Identity) (string, error) {
	expirationTime := time.Now().Add(tm.ttl)
	claims := &Claims{
		UserID:   identity.UserID,
		Role:     identity.Role.String(),
		Language: identity.PreferredLanguage,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			Subject:   identity.Role.String() + ":" + strconv.FormatInt(identity.UserID, 10),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secretKey)
}

// ValidateToken parses and validates the token string
func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secretKey, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
