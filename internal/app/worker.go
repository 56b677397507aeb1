package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/gcapi/internal/core/ports"
	"github.com/GoArmGo/gcapi/internal/messaging/payloads"
)

// runWorker потребляет события регистрации и отправляет письма подтверждения
func runWorker(
	ctx context.Context,
	consumer ports.UserRegisteredConsumer,
	handle ports.UserRegisteredHandler,
	logger *slog.Logger,
) error {
	if consumer == nil {
		return errors.New("воркеру нужен RabbitMQ: задайте RABBITMQ_URL")
	}

	logger.Info("worker started, waiting for user registered events")

	messageHandler := func(ctx context.Context, payload payloads.UserRegisteredPayload) error {
		logger.Info("processing user registered event", "user_id", payload.UserID)
		if err := handle(ctx, payload); err != nil {
			logger.Error("failed to process user registered event", "user_id", payload.UserID, "error", err)
			return err
		}
		return nil
	}

	if err := consumer.StartConsumingUserRegistered(ctx, messageHandler); err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}

	<-ctx.Done()
	logger.Info("worker stopped")
	return nil
}
