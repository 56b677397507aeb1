package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GoArmGo/gcapi/internal/core/ports"
	"github.com/GoArmGo/gcapi/internal/domain"
	"github.com/GoArmGo/gcapi/internal/messaging/payloads"
)

// userUseCase implements UserUseCase
type userUseCase struct {
	userStorage ports.UserStorage
	hasher      PasswordHasher
	publisher   ports.UserRegisteredPublisher
	logger      *slog.Logger
}

// NewUserUseCase создает новый экземпляр UserUseCase
func NewUserUseCase(
	userStorage ports.UserStorage,
	hasher PasswordHasher,
	publisher ports.UserRegisteredPublisher,
	logger *slog.Logger,
) UserUseCase {
	return &userUseCase{
		userStorage: userStorage,
		hasher:      hasher,
		publisher:   publisher,
		logger:      logger,
	}
}

// Register проверяет длины и уникальность, хэширует пароль и сохраняет пользователя.
// Email необязателен. Если он указан, публикуется событие регистрации,
// ошибка публикации не отменяет регистрацию.
func (uc *userUseCase) Register(ctx context.Context, in RegisterUserInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := uc.ensureUnique(ctx, &in.Username, &in.Email); err != nil {
		return nil, err
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username: in.Username,
		Email:    domain.OptionalString(in.Email),
		Password: hash,
	}
	if err := uc.userStorage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("usecase: ошибка при регистрации пользователя: %w", err)
	}

	if user.Email == nil {
		uc.logger.Info("user registered without email, verification skipped", "user_id", user.ID)
		return user, nil
	}

	event := payloads.UserRegisteredPayload{UserID: user.ID, Username: user.Username, Email: *user.Email}
	if err := uc.publisher.PublishUserRegistered(ctx, event); err != nil {
		uc.logger.Error("failed to publish user registered event", "user_id", user.ID, "error", err)
	}

	return user, nil
}

// ensureUnique проверяет, что переданные username и email свободны.
func (uc *userUseCase) ensureUnique(ctx context.Context, username, email *string) error {
	if username != nil {
		exists, err := uc.userStorage.ExistsByUsername(ctx, *username)
		if err != nil {
			return fmt.Errorf("usecase: %w", err)
		}
		if exists {
			return domain.NewValidationError("Username exists")
		}
	}
	if email != nil && *email != "" {
		exists, err := uc.userStorage.ExistsByEmail(ctx, *email)
		if err != nil {
			return fmt.Errorf("usecase: %w", err)
		}
		if exists {
			return domain.NewValidationError("Email exists")
		}
	}
	return nil
}

func (uc *userUseCase) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	user, err := uc.userStorage.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}
	return user, nil
}

func (uc *userUseCase) ListUsers(ctx context.Context, skip, limit int) ([]domain.User, error) {
	if err := ValidatePage(skip, limit); err != nil {
		return nil, err
	}
	users, err := uc.userStorage.ListUsers(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}
	return users, nil
}

// UpdateUser применяет к пользователю только переданные поля.
// Для них действуют те же правила, что и при регистрации.
func (uc *userUseCase) UpdateUser(ctx context.Context, id uint, patch domain.UserPatch) (*domain.User, error) {
	current, err := uc.userStorage.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}

	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, err
		}
	}
	if patch.Username != nil {
		if err := validateUsername(*patch.Username); err != nil {
			return nil, err
		}
		if *patch.Username == current.Username {
			patch.Username = nil
		}
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		patch.Email = &email
		if email == current.EmailAddress() {
			patch.Email = nil
		}
	}
	if err := uc.ensureUnique(ctx, patch.Username, patch.Email); err != nil {
		return nil, err
	}

	if patch.Password != nil {
		hash, err := uc.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		patch.Password = &hash
	}
	// is_verified меняется только через подтверждение email
	patch.IsVerified = nil

	user, err := uc.userStorage.UpdateUser(ctx, id, patch.Fields())
	if err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}
	return user, nil
}

func (uc *userUseCase) DeleteUser(ctx context.Context, id uint) error {
	deleted, err := uc.userStorage.DeleteUser(ctx, id)
	if err != nil {
		return fmt.Errorf("usecase: %w", err)
	}
	if !deleted {
		return fmt.Errorf("usecase: пользователь %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
