package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/gcapi/internal/core/ports"
	"github.com/GoArmGo/gcapi/internal/domain"
)

// gcUseCase implements GCUseCase
type gcUseCase struct {
	gcStorage ports.GCStorage
	logger    *slog.Logger
}

// NewGCUseCase создает новый экземпляр GCUseCase
func NewGCUseCase(gcStorage ports.GCStorage, logger *slog.Logger) GCUseCase {
	return &gcUseCase{gcStorage: gcStorage, logger: logger}
}

// CreateGC создает GC, владельцем становится аутентифицированный пользователь.
func (uc *gcUseCase) CreateGC(ctx context.Context, owner *domain.User, name string) (*domain.GC, error) {
	if owner == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	gc := &domain.GC{Name: name, OwnerID: owner.ID}
	if err := uc.gcStorage.CreateGC(ctx, gc); err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}
	return gc, nil
}

func (uc *gcUseCase) GetGC(ctx context.Context, id uint) (*domain.GC, error) {
	gc, err := uc.gcStorage.GetGCByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}
	return gc, nil
}

func (uc *gcUseCase) ListGCs(ctx context.Context, skip, limit int) ([]domain.GC, error) {
	if err := ValidatePage(skip, limit); err != nil {
		return nil, err
	}
	gcs, err := uc.gcStorage.ListGCs(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}
	return gcs, nil
}

func (uc *gcUseCase) UpdateGC(ctx context.Context, id uint, patch domain.GCPatch) (*domain.GC, error) {
	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return nil, err
		}
	}
	gc, err := uc.gcStorage.UpdateGC(ctx, id, patch.Fields())
	if err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}
	return gc, nil
}

func (uc *gcUseCase) DeleteGC(ctx context.Context, id uint) error {
	deleted, err := uc.gcStorage.DeleteGC(ctx, id)
	if err != nil {
		return fmt.Errorf("usecase: %w", err)
	}
	if !deleted {
		return fmt.Errorf("usecase: GC %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
