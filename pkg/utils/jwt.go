package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenType is the token_type claim the back office puts on access tokens
const AccessTokenType = "access"

// OperatorClaims are the claims of a back-office access token
type OperatorClaims struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Expiry returns the expiry time, or the zero time when the token has none
func (c *OperatorClaims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// JWTManager validates operator tokens signed with the shared back-office secret
type JWTManager struct {
	secretKey []byte
	leeway    time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, leeway time.Duration) *JWTManager {
	return &JWTManager{
		secretKey: []byte(secret),
		leeway:    leeway,
	}
}

// GenerateAccessToken signs an access token for userID. The register only
// needs this for local tooling and tests; production tokens come from the
// back office.
func (m *JWTManager) GenerateAccessToken(userID int64, username string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &OperatorClaims{
		UserID:    userID,
		Username:  username,
		TokenType: AccessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(userID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// ValidateAccessToken validates an access token and returns the claims
func (m *JWTManager) ValidateAccessToken(tokenString string) (*OperatorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	}, jwt.WithLeeway(m.leeway), jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*OperatorClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != "" && claims.TokenType != AccessTokenType {
		return nil, errors.New("not an access token")
	}
	if claims.UserID == 0 {
		return nil, errors.New("token has no user")
	}

	return claims, nil
}

// IsExpired reports whether err is the expiry failure of ValidateAccessToken
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
