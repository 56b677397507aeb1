package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/GoArmGo/gcapi/internal/domain"
)

// BcryptHasher хэширует пароли с помощью bcrypt (соль внутри хэша).
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher создает хэшер с заданной стоимостью.
// Значения вне допустимого диапазона заменяются на bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash возвращает bcrypt-хэш пароля.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.NewValidationError("Password too long")
		}
		return "", fmt.Errorf("ошибка хэширования пароля: %w", err)
	}
	return string(hash), nil
}

// Verify сравнивает пароль с хэшем. Любая ошибка сравнения дает false.
func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
