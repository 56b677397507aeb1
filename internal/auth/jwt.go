package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/GoArmGo/gcapi/internal/domain"
)

// Типы токенов, которые выпускает TokenManager
const (
	TokenTypeAccess       = "access"
	TokenTypeVerification = "verification"
)

// Claims содержит данные, зашитые в токен.
type Claims struct {
	Username  string `json:"username"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID возвращает ID пользователя из claim "sub".
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректный sub в токене: %w", err)
	}
	return uint(id), nil
}

// TokenManager выпускает и проверяет HS256 токены.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewTokenManager создает TokenManager с ключом подписи secret.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), now: time.Now}
}

// Generate выпускает подписанный токен заданного типа для пользователя.
func (m *TokenManager) Generate(userID uint, username, tokenType string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, nil
}

// Parse проверяет подпись, метод, срок действия и тип токена.
// Любая ошибка сводится к domain.ErrUnauthorized.
func (m *TokenManager) Parse(tokenStr, tokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("токен просрочен: %w", domain.ErrUnauthorized)
		}
		return nil, domain.ErrUnauthorized
	}
	if claims.TokenType != tokenType {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
