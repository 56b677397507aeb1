package ports

import (
	"context"

	"github.com/GoArmGo/gcapi/internal/messaging/payloads"
)

// UserRegisteredPublisher публикует событие о регистрации пользователя.
// Используется сценарием регистрации.
type UserRegisteredPublisher interface {
	PublishUserRegistered(ctx context.Context, payload payloads.UserRegisteredPayload) error
}

// UserRegisteredHandler обрабатывает одно событие регистрации.
type UserRegisteredHandler func(ctx context.Context, payload payloads.UserRegisteredPayload) error

// UserRegisteredConsumer определяет методы для потребления событий регистрации,
// используется воркером
type UserRegisteredConsumer interface {
	// StartConsumingUserRegistered начинает прослушивание очереди и вызывает handler на каждое сообщение
	StartConsumingUserRegistered(ctx context.Context, handler UserRegisteredHandler) error
}
