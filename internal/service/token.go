package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/templui/authd/internal/model"
)

// ErrInvalidToken covers malformed, forged, expired and wrong-purpose tokens alike.
var ErrInvalidToken = errors.New("invalid or expired token")

type signedClaims struct {
	TokenType string `json:"token_type"`
	UserID    string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies self-contained HS256 tokens. The secret is
// copied at construction and never changes afterwards.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		now:    time.Now,
	}
}

func (c *TokenCodec) Encode(claims model.TokenClaims) (string, error) {
	if claims.Type == "" || claims.UserID == "" {
		return "", errors.New("token type and user id are required")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, signedClaims{
		TokenType: claims.Type,
		UserID:    claims.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(c.now()),
		},
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (c *TokenCodec) Decode(tokenString string) (*model.TokenClaims, error) {
	claims := &signedClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		slog.Debug("token rejected", "reason", err)
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.TokenType == "" || claims.UserID == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	return &model.TokenClaims{
		Type:      claims.TokenType,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// DecodeAs decodes the token and additionally requires the given purpose.
func (c *TokenCodec) DecodeAs(tokenString, tokenType string) (*model.TokenClaims, error) {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return nil, err
	}

	if !claims.Is(tokenType) {
		slog.Debug("token rejected", "reason", "wrong token type", "want", tokenType, "got", claims.Type)
		return nil, ErrInvalidToken
	}

	return claims, nil
}
