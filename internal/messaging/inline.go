package messaging

import (
	"context"
	"log/slog"

	"github.com/GoArmGo/gcapi/internal/core/ports"
	"github.com/GoArmGo/gcapi/internal/messaging/payloads"
)

// InlinePublisher обрабатывает событие сразу в текущем процессе.
// Используется, когда RabbitMQ не настроен.
type InlinePublisher struct {
	handler ports.UserRegisteredHandler
	logger  *slog.Logger
}

func NewInlinePublisher(handler ports.UserRegisteredHandler, logger *slog.Logger) *InlinePublisher {
	return &InlinePublisher{handler: handler, logger: logger}
}

// PublishUserRegistered вызывает обработчик синхронно.
func (p *InlinePublisher) PublishUserRegistered(ctx context.Context, payload payloads.UserRegisteredPayload) error {
	p.logger.Debug("handling user registered event inline", "user_id", payload.UserID)
	return p.handler(ctx, payload)
}
