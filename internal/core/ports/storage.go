package ports

import (
	"context"
	"io"

	"github.com/GoArmGo/gcapi/internal/domain"
)

// UserStorage определяет методы для взаимодействия с хранилищем пользователей
type UserStorage interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id uint) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListUsers(ctx context.Context, skip, limit int) ([]domain.User, error)
	UpdateUser(ctx context.Context, id uint, fields map[string]any) (*domain.User, error)
	DeleteUser(ctx context.Context, id uint) (bool, error)
}

// GCStorage определяет методы для взаимодействия с хранилищем GC
type GCStorage interface {
	CreateGC(ctx context.Context, gc *domain.GC) error
	GetGCByID(ctx context.Context, id uint) (*domain.GC, error)
	ListGCs(ctx context.Context, skip, limit int) ([]domain.GC, error)
	UpdateGC(ctx context.Context, id uint, fields map[string]any) (*domain.GC, error)
	DeleteGC(ctx context.Context, id uint) (bool, error)
}

// ProductStorage определяет методы для взаимодействия с хранилищем товаров
type ProductStorage interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProductByID(ctx context.Context, id uint) (*domain.Product, error)
	ListProducts(ctx context.Context, skip, limit int) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, id uint, fields map[string]any) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uint) (bool, error)
}

// FileStorage определяет интерфейс для работы с файловым хранилищем (AWS S3, MinIO)
type FileStorage interface {
	// UploadFile загружает файл в хранилище и возвращает его публичный URL.
	UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)

	// DeleteFile удаляет файл из хранилища по его ключу.
	DeleteFile(ctx context.Context, key string) error
}
