package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/GoArmGo/gcapi/internal/auth"
	"github.com/GoArmGo/gcapi/internal/core/ports"
	"github.com/GoArmGo/gcapi/internal/domain"
	"github.com/GoArmGo/gcapi/internal/messaging/payloads"
	"github.com/GoArmGo/gcapi/internal/notifier"
)

// AuthConfig параметры выпуска токенов
type AuthConfig struct {
	AccessTTL       time.Duration
	VerificationTTL time.Duration
	// PublicBaseURL используется для ссылки подтверждения email
	PublicBaseURL string
}

// authUseCase implements AuthUseCase
type authUseCase struct {
	userStorage ports.UserStorage
	hasher      PasswordHasher
	tokens      TokenManager
	notifier    notifier.Notifier
	cfg         AuthConfig
	logger      *slog.Logger

	// хэш-заглушка той же стоимости, что и настоящие пароли
	dummyOnce   sync.Once
	dummyDigest string
}

// NewAuthUseCase создает новый экземпляр AuthUseCase
func NewAuthUseCase(
	userStorage ports.UserStorage,
	hasher PasswordHasher,
	tokens TokenManager,
	n notifier.Notifier,
	cfg AuthConfig,
	logger *slog.Logger,
) AuthUseCase {
	return &authUseCase{
		userStorage: userStorage,
		hasher:      hasher,
		tokens:      tokens,
		notifier:    n,
		cfg:         cfg,
		logger:      logger,
	}
}

// Issue ищет пользователя по имени и сверяет пароль с хэшем.
// Отсутствие пользователя и неверный пароль неразличимы для клиента.
func (uc *authUseCase) Issue(ctx context.Context, username, password string) (string, error) {
	user, err := uc.userStorage.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// сравнение с заглушкой выравнивает время ответа с веткой неверного пароля
			uc.hasher.Verify(password, uc.dummyHash())
			uc.logger.Warn("token requested for unknown user", "username", username)
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("usecase: ошибка при поиске пользователя для выдачи токена: %w", err)
	}

	if !uc.hasher.Verify(password, user.Password) {
		uc.logger.Warn("token requested with wrong password", "user_id", user.ID)
		return "", domain.ErrInvalidCredentials
	}

	token, err := uc.tokens.Generate(user.ID, user.Username, auth.TokenTypeAccess, uc.cfg.AccessTTL)
	if err != nil {
		return "", fmt.Errorf("usecase: ошибка при выпуске токена: %w", err)
	}

	uc.logger.Info("access token issued", "user_id", user.ID)
	return token, nil
}

func (uc *authUseCase) dummyHash() string {
	uc.dummyOnce.Do(func() {
		digest, err := uc.hasher.Hash("dummy-password-for-unknown-users")
		if err != nil {
			uc.logger.Error("failed to prepare dummy password hash", "error", err)
			return
		}
		uc.dummyDigest = digest
	})
	return uc.dummyDigest
}

// Resolve разбирает access токен и загружает пользователя из БД.
func (uc *authUseCase) Resolve(ctx context.Context, token string) (*domain.User, error) {
	return uc.resolve(ctx, token, auth.TokenTypeAccess)
}

func (uc *authUseCase) resolve(ctx context.Context, token, tokenType string) (*domain.User, error) {
	claims, err := uc.tokens.Parse(token, tokenType)
	if err != nil {
		return nil, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := uc.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("token references deleted user", "user_id", userID)
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("usecase: ошибка при загрузке пользователя по токену: %w", err)
	}
	return user, nil
}

// SendVerification выпускает токен подтверждения и отправляет ссылку на email.
func (uc *authUseCase) SendVerification(ctx context.Context, payload payloads.UserRegisteredPayload) error {
	token, err := uc.tokens.Generate(payload.UserID, payload.Username, auth.TokenTypeVerification, uc.cfg.VerificationTTL)
	if err != nil {
		return fmt.Errorf("usecase: ошибка при выпуске токена подтверждения: %w", err)
	}

	link := fmt.Sprintf("%s/verification?token=%s", uc.cfg.PublicBaseURL, url.QueryEscape(token))
	subject, message := notifier.VerificationMessage(payload.Username, link)

	if err := uc.notifier.Notify(ctx, payload.Email, subject, message); err != nil {
		return fmt.Errorf("usecase: ошибка при отправке письма подтверждения: %w", err)
	}

	uc.logger.Info("verification sent", "user_id", payload.UserID)
	return nil
}

// Verify выставляет is_verified пользователю из токена подтверждения.
func (uc *authUseCase) Verify(ctx context.Context, token string) (*domain.User, error) {
	user, err := uc.resolve(ctx, token, auth.TokenTypeVerification)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return user, nil
	}

	verified := true
	updated, err := uc.userStorage.UpdateUser(ctx, user.ID, domain.UserPatch{IsVerified: &verified}.Fields())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("usecase: ошибка при подтверждении пользователя %d: %w", user.ID, err)
	}

	uc.logger.Info("user verified", "user_id", user.ID)
	return updated, nil
}
