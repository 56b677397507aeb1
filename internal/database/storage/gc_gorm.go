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

// GCStorage реализует интерфейс ports.GCStorage с использованием GORM
type GCStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewGCStorage(db *gorm.DB, logger *slog.Logger) *GCStorage {
	return &GCStorage{db: db, logger: logger}
}

func (s *GCStorage) CreateGC(ctx context.Context, gc *domain.GC) error {
	start := time.Now()

	if err := s.db.WithContext(ctx).Omit("Owner").Create(gc).Error; err != nil {
		s.logger.Error("failed to create gc", "owner_id", gc.OwnerID, "error", err)
		return fmt.Errorf("ошибка при создании GC: %w", translateError(err))
	}

	s.logger.Info("gc created successfully",
		"gc_id", gc.ID,
		"owner_id", gc.OwnerID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *GCStorage) GetGCByID(ctx context.Context, id uint) (*domain.GC, error) {
	gc, err := getByID[domain.GC](ctx, s.db, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("failed to get gc by id", "id", id, "error", err)
		}
		return nil, fmt.Errorf("ошибка при получении GC %d: %w", id, err)
	}
	return gc, nil
}

func (s *GCStorage) ListGCs(ctx context.Context, skip, limit int) ([]domain.GC, error) {
	gcs, err := listWindow[domain.GC](ctx, s.db, skip, limit)
	if err != nil {
		s.logger.Error("failed to list gcs", "skip", skip, "limit", limit, "error", err)
		return nil, fmt.Errorf("ошибка при получении списка GC: %w", err)
	}
	return gcs, nil
}

func (s *GCStorage) UpdateGC(ctx context.Context, id uint, fields map[string]any) (*domain.GC, error) {
	gc, err := updateByID[domain.GC](ctx, s.db, id, fields)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("failed to update gc", "id", id, "error", err)
		}
		return nil, fmt.Errorf("ошибка при обновлении GC %d: %w", id, err)
	}
	return gc, nil
}

func (s *GCStorage) DeleteGC(ctx context.Context, id uint) (bool, error) {
	deleted, err := deleteByID[domain.GC](ctx, s.db, id)
	if err != nil {
		s.logger.Error("failed to delete gc", "id", id, "error", err)
		return false, fmt.Errorf("ошибка при удалении GC %d: %w", id, err)
	}
	return deleted, nil
}
