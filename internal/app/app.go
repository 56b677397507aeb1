package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/gcapi/internal/config"
	"github.com/GoArmGo/gcapi/internal/core/ports"
)

const (
	ModeServer = "server"
	ModeWorker = "worker"
)

// App держит собранные зависимости и ресурсы, которые нужно закрыть при остановке.
type App struct {
	Config   *config.Config
	logger   *slog.Logger
	router   http.Handler
	consumer ports.UserRegisteredConsumer
	handle   ports.UserRegisteredHandler
	closers  []func() error
}

func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	router http.Handler,
	consumer ports.UserRegisteredConsumer,
	handle ports.UserRegisteredHandler,
	closers ...func() error,
) *App {
	return &App{
		Config:   cfg,
		logger:   logger,
		router:   router,
		consumer: consumer,
		handle:   handle,
		closers:  closers,
	}
}

// Logger возвращает основной логгер приложения
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Router возвращает HTTP обработчик API
func (a *App) Router() http.Handler {
	return a.router
}

// Run запускает приложение в режиме server или worker и блокируется до SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context, mode string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("running application", "mode", mode)

	var err error
	switch mode {
	case ModeServer:
		err = runServer(ctx, a.Config.ServerAddr(), a.router, a.logger)
	case ModeWorker:
		err = runWorker(ctx, a.consumer, a.handle, a.logger)
	default:
		err = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", mode)
	}

	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown finished with errors", "error", closeErr)
	}
	return err
}

// Shutdown закрывает все ресурсы приложения в обратном порядке.
func (a *App) Shutdown() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
