package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/GoArmGo/gcapi/internal/handler"
	"github.com/GoArmGo/gcapi/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// RouterDeps зависимости HTTP слоя
type RouterDeps struct {
	AuthUseCase    usecase.AuthUseCase
	UserUseCase    usecase.UserUseCase
	GCUseCase      usecase.GCUseCase
	ProductUseCase usecase.ProductUseCase
	DB             handler.Pinger
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter собирает chi роутер со всеми маршрутами API.
func NewRouter(d RouterDeps) http.Handler {
	authHandler := handler.NewAuthHandler(d.AuthUseCase, d.Logger)
	userHandler := handler.NewUserHandler(d.UserUseCase, d.Logger)
	gcHandler := handler.NewGCHandler(d.GCUseCase, d.Logger)
	productHandler := handler.NewProductHandler(d.ProductUseCase, d.Logger)
	requireUser := handler.RequireUser(d.AuthUseCase, d.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(handler.RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}

	r.Get("/healthz", handler.Health(d.DB, d.Logger))
	r.Post("/token", authHandler.Token)
	r.Get("/verification", authHandler.Verification)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", userHandler.Register)
		r.With(requireUser).Get("/", userHandler.List)
		r.With(requireUser).Post("/me", authHandler.Me)
		r.Get("/{userID}", userHandler.Get)
		r.Put("/{userID}", userHandler.Update)
		r.Delete("/{userID}", userHandler.Delete)
	})

	r.Route("/gcs", func(r chi.Router) {
		r.With(requireUser).Post("/", gcHandler.Create)
		r.Get("/", gcHandler.List)
		r.Get("/{gcID}", gcHandler.Get)
		r.Put("/{gcID}", gcHandler.Update)
		r.Delete("/{gcID}", gcHandler.Delete)
	})

	r.Route("/products", func(r chi.Router) {
		r.Post("/", productHandler.Create)
		r.Get("/", productHandler.List)
		r.Get("/{productID}", productHandler.Get)
		r.Put("/{productID}", productHandler.Update)
		r.Delete("/{productID}", productHandler.Delete)
		r.Post("/{productID}/image", productHandler.UploadImage)
	})

	return r
}

// runServer запускает HTTP сервер и останавливает его при отмене ctx
func runServer(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server started", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("ошибка при запуске сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, stopping http server")

	ctxServer, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxServer); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("http server stopped")
	return nil
}
