package notifier

import (
	"context"
	"fmt"
	"log/slog"
)

// Notifier интерфейс на случай смены способа доставки (Email/SMS/Slack)
type Notifier interface {
	Notify(ctx context.Context, to, subject, message string) error
}

// LogNotifier пишет уведомления в лог вместо отправки.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, to, subject, message string) error {
	n.logger.InfoContext(ctx, "notification dispatched",
		"to", to,
		"subject", subject,
		"message", message,
	)
	return nil
}

// VerificationMessage собирает текст письма с подтверждением email.
func VerificationMessage(username, link string) (subject, message string) {
	subject = "Account verification"
	message = fmt.Sprintf("Hi %s, thanks for registering. Please confirm your email: %s", username, link)
	return subject, message
}
