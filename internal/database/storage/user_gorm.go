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

// UserStorage реализует интерфейс ports.UserStorage с использованием GORM
type UserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewUserStorage создает новый экземпляр UserStorage
func NewUserStorage(db *gorm.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// CreateUser сохраняет нового пользователя, ID и join_date заполняются базой.
func (s *UserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		s.logger.Error("failed to create user", "username", user.Username, "error", err)
		return fmt.Errorf("ошибка при создании пользователя: %w", translateError(err))
	}

	s.logger.Info("user created successfully",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetUserByID получает пользователя по ID
func (s *UserStorage) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	user, err := getByID[domain.User](ctx, s.db, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("failed to get user by id", "id", id, "error", err)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя %d: %w", id, err)
	}
	return user, nil
}

// GetUserByUsername получает пользователя по имени
func (s *UserStorage) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		err = translateError(err)
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("failed to get user by username", "username", username, "error", err)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя по имени: %w", err)
	}
	return &user, nil
}

// ExistsByUsername проверяет, занято ли имя пользователя
func (s *UserStorage) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, "username = ?", username)
}

// ExistsByEmail проверяет, занят ли email
func (s *UserStorage) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, "email = ?", email)
}

func (s *UserStorage) exists(ctx context.Context, query string, arg any) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.User{}).Where(query, arg).Limit(1).Count(&count).Error
	if err != nil {
		s.logger.Error("failed to check user existence", "query", query, "error", err)
		return false, fmt.Errorf("ошибка при проверке существования пользователя: %w", translateError(err))
	}
	return count > 0, nil
}

// ListUsers получает список пользователей с пагинацией
func (s *UserStorage) ListUsers(ctx context.Context, skip, limit int) ([]domain.User, error) {
	start := time.Now()

	users, err := listWindow[domain.User](ctx, s.db, skip, limit)
	if err != nil {
		s.logger.Error("failed to list users", "skip", skip, "limit", limit, "error", err)
		return nil, fmt.Errorf("ошибка при получении списка пользователей: %w", err)
	}

	s.logger.Info("listed users successfully",
		"skip", skip,
		"limit", limit,
		"count", len(users),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return users, nil
}

// UpdateUser частично обновляет пользователя
func (s *UserStorage) UpdateUser(ctx context.Context, id uint, fields map[string]any) (*domain.User, error) {
	start := time.Now()

	user, err := updateByID[domain.User](ctx, s.db, id, fields)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("failed to update user", "id", id, "error", err)
		}
		return nil, fmt.Errorf("ошибка при обновлении пользователя %d: %w", id, err)
	}

	s.logger.Info("user updated successfully",
		"user_id", id,
		"fields", len(fields),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return user, nil
}

// DeleteUser удаляет пользователя, вместе с ним каскадно удаляются его GC
func (s *UserStorage) DeleteUser(ctx context.Context, id uint) (bool, error) {
	deleted, err := deleteByID[domain.User](ctx, s.db, id)
	if err != nil {
		s.logger.Error("failed to delete user", "id", id, "error", err)
		return false, fmt.Errorf("ошибка при удалении пользователя %d: %w", id, err)
	}
	s.logger.Info("user delete processed", "user_id", id, "deleted", deleted)
	return deleted, nil
}
