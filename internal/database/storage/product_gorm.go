package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/GoArmGo/gcapi/internal/domain"
)

// ProductStorage реализует интерфейс ports.ProductStorage с использованием GORM
type ProductStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewProductStorage(db *gorm.DB, logger *slog.Logger) *ProductStorage {
	return &ProductStorage{db: db, logger: logger}
}

func (s *ProductStorage) CreateProduct(ctx context.Context, product *domain.Product) error {
	start := time.Now()

	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		s.logger.Error("failed to create product", "name", product.Name, "error", err)
		return fmt.Errorf("ошибка при создании товара: %w", translateError(err))
	}

	s.logger.Info("product created successfully",
		"product_id", product.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *ProductStorage) GetProductByID(ctx context.Context, id uint) (*domain.Product, error) {
	product, err := getByID[domain.Product](ctx, s.db, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("failed to get product by id", "id", id, "error", err)
		}
		return nil, fmt.Errorf("ошибка при получении товара %d: %w", id, err)
	}
	return product, nil
}

func (s *ProductStorage) ListProducts(ctx context.Context, skip, limit int) ([]domain.Product, error) {
	products, err := listWindow[domain.Product](ctx, s.db, skip, limit)
	if err != nil {
		s.logger.Error("failed to list products", "skip", skip, "limit", limit, "error", err)
		return nil, fmt.Errorf("ошибка при получении списка товаров: %w", err)
	}
	return products, nil
}

func (s *ProductStorage) UpdateProduct(ctx context.Context, id uint, fields map[string]any) (*domain.Product, error) {
	product, err := updateByID[domain.Product](ctx, s.db, id, fields)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("failed to update product", "id", id, "error", err)
		}
		return nil, fmt.Errorf("ошибка при обновлении товара %d: %w", id, err)
	}
	return product, nil
}

func (s *ProductStorage) DeleteProduct(ctx context.Context, id uint) (bool, error) {
	deleted, err := deleteByID[domain.Product](ctx, s.db, id)
	if err != nil {
		s.logger.Error("failed to delete product", "id", id, "error", err)
		return false, fmt.Errorf("ошибка при удалении товара %d: %w", id, err)
	}
	return deleted, nil
}
