package usecase

import (
	"context"
	"io"
	"math"
	"time"

	"github.com/GoArmGo/gcapi/internal/auth"
	"github.com/GoArmGo/gcapi/internal/domain"
	"github.com/GoArmGo/gcapi/internal/messaging/payloads"
)

// Ограничения на поля, проверяемые до обращения к БД
const (
	MinUsernameLen = 5
	MaxUsernameLen = 20
	MinPasswordLen = 8
	MaxEmailLen    = 200
	MaxNameLen     = 100
	MaxCategoryLen = 50

	// Границы колонок products: price DECIMAL(12,2), stock INTEGER, image_url VARCHAR(500)
	MaxPrice       = 1e10 // не включая
	MaxStock       = math.MaxInt32
	MaxImageURLLen = 500
	MaxImageExtLen = 10 // вместе с точкой

	DefaultLimit = 10
	MaxLimit     = 100
)

// PasswordHasher хэширует и проверяет пароли (реализация: auth.BcryptHasher)
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenManager выпускает и разбирает подписанные токены (реализация: auth.TokenManager)
type TokenManager interface {
	Generate(userID uint, username, tokenType string, ttl time.Duration) (string, error)
	Parse(token, tokenType string) (*auth.Claims, error)
}

// AuthUseCase выдает токены и по ним восстанавливает пользователя.
type AuthUseCase interface {
	// Issue проверяет логин/пароль и возвращает access токен
	Issue(ctx context.Context, username, password string) (string, error)

	// Resolve возвращает пользователя по access токену
	Resolve(ctx context.Context, token string) (*domain.User, error)

	// SendVerification отправляет пользователю ссылку для подтверждения email
	SendVerification(ctx context.Context, payload payloads.UserRegisteredPayload) error

	// Verify проверяет токен подтверждения и выставляет is_verified
	Verify(ctx context.Context, token string) (*domain.User, error)
}

// RegisterUserInput входные данные регистрации
type RegisterUserInput struct {
	Username string
	Email    string
	Password string
}

// UserUseCase бизнес-логика работы с пользователями
type UserUseCase interface {
	Register(ctx context.Context, in RegisterUserInput) (*domain.User, error)
	GetUser(ctx context.Context, id uint) (*domain.User, error)
	ListUsers(ctx context.Context, skip, limit int) ([]domain.User, error)
	UpdateUser(ctx context.Context, id uint, patch domain.UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

// GCUseCase бизнес-логика работы с GC
type GCUseCase interface {
	CreateGC(ctx context.Context, owner *domain.User, name string) (*domain.GC, error)
	GetGC(ctx context.Context, id uint) (*domain.GC, error)
	ListGCs(ctx context.Context, skip, limit int) ([]domain.GC, error)
	UpdateGC(ctx context.Context, id uint, patch domain.GCPatch) (*domain.GC, error)
	DeleteGC(ctx context.Context, id uint) error
}

// CreateProductInput входные данные для создания товара
type CreateProductInput struct {
	Name     string
	Category string
	Price    float64
	Stock    int
}

// ProductUseCase бизнес-логика работы с товарами
type ProductUseCase interface {
	CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id uint) (*domain.Product, error)
	ListProducts(ctx context.Context, skip, limit int) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, id uint, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uint) error

	// UploadImage загружает изображение товара в файловое хранилище и сохраняет его URL
	UploadImage(ctx context.Context, id uint, filename, contentType string, file io.Reader) (*domain.Product, error)
}
