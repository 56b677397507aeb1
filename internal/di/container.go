package di

import (
	"context"
	"fmt"

	"github.com/GoArmGo/gcapi/internal/adapter/storage/minio"
	"github.com/GoArmGo/gcapi/internal/app"
	"github.com/GoArmGo/gcapi/internal/auth"
	"github.com/GoArmGo/gcapi/internal/config"
	"github.com/GoArmGo/gcapi/internal/core/ports"
	"github.com/GoArmGo/gcapi/internal/database/client"
	"github.com/GoArmGo/gcapi/internal/database/storage"
	"github.com/GoArmGo/gcapi/internal/logger"
	"github.com/GoArmGo/gcapi/internal/messaging"
	"github.com/GoArmGo/gcapi/internal/notifier"
	"github.com/GoArmGo/gcapi/internal/rabbitmq"
	"github.com/GoArmGo/gcapi/internal/usecase"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp(ctx context.Context) (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return Build(ctx, cfg)
}

// Build собирает приложение из уже загруженной конфигурации.
func Build(ctx context.Context, cfg *config.Config) (*app.App, error) {
	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	var closers []func() error
	fail := func(err error) (*app.App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	// 2. Подключение к БД и миграции
	gormDB, err := client.NewGorm(cfg, slogger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения sql.DB из GORM: %w", err)
	}
	dbClient := client.NewClient(sqlDB, cfg.DBDriver, slogger)
	closers = append(closers, dbClient.Close)

	if cfg.DBDriver == config.DriverPostgres {
		if err := client.ApplyMigrations(cfg.DatabaseURL, slogger); err != nil {
			return fail(err)
		}
	}

	// 3. Инициализация хранилищ
	userStorage := storage.NewUserStorage(gormDB, slogger)
	gcStorage := storage.NewGCStorage(gormDB, slogger)
	productStorage := storage.NewProductStorage(gormDB, slogger)

	// 4. Аутентификация
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	tokens := auth.NewTokenManager(cfg.JWTSecret)
	authUseCase := usecase.NewAuthUseCase(
		userStorage,
		hasher,
		tokens,
		notifier.NewLogNotifier(slogger),
		usecase.AuthConfig{
			AccessTTL:       cfg.JWTTTL,
			VerificationTTL: cfg.VerificationTTL,
			PublicBaseURL:   cfg.PublicBaseURL,
		},
		slogger,
	)

	// 5. Publisher / Consumer событий регистрации
	var (
		publisher ports.UserRegisteredPublisher
		consumer  ports.UserRegisteredConsumer
	)
	if cfg.BrokerEnabled() {
		rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() error { rabbitMQClient.Close(); return nil })
		publisher = rabbitMQClient
		consumer = rabbitMQClient
	} else {
		slogger.Warn("RABBITMQ_URL is not set, verification emails are sent inline")
		publisher = messaging.NewInlinePublisher(authUseCase.SendVerification, slogger)
	}

	// 6. Файловое хранилище для изображений товаров
	var fileStorage ports.FileStorage
	if cfg.FileStorageEnabled() {
		minioClient, err := minio.NewMinioClient(ctx, cfg, slogger)
		if err != nil {
			return fail(err)
		}
		fileStorage = minioClient
	} else {
		slogger.Warn("MinIO is not configured, product image upload is disabled")
	}

	// 7. Бизнес-логика
	userUseCase := usecase.NewUserUseCase(userStorage, hasher, publisher, slogger)
	gcUseCase := usecase.NewGCUseCase(gcStorage, slogger)
	productUseCase := usecase.NewProductUseCase(productStorage, fileStorage, slogger)

	router := app.NewRouter(app.RouterDeps{
		AuthUseCase:    authUseCase,
		UserUseCase:    userUseCase,
		GCUseCase:      gcUseCase,
		ProductUseCase: productUseCase,
		DB:             dbClient,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         slogger,
	})

	application := app.NewApp(cfg, slogger, router, consumer, authUseCase.SendVerification, closers...)

	slogger.Info("all dependencies initialized",
		"db_driver", cfg.DBDriver,
		"broker", cfg.BrokerEnabled(),
		"file_storage", cfg.FileStorageEnabled(),
	)
	return application, nil
}
