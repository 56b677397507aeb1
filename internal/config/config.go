package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Поддерживаемые значения DB_DRIVER
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	DBDriver    string `env:"DB_DRIVER" envDefault:"postgres"`

	ServerHost     string        `env:"SERVER_HOST" envDefault:"127.0.0.1"`
	ServerPort     string        `env:"SERVER_PORT" envDefault:"8000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	PublicBaseURL  string        `env:"PUBLIC_BASE_URL" envDefault:"http://127.0.0.1:8000"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Настройки токенов и паролей
	JWTSecret       string        `env:"JWT_SECRET,required"`
	JWTTTL          time.Duration `env:"JWT_TTL" envDefault:"30m"`
	VerificationTTL time.Duration `env:"VERIFICATION_TTL" envDefault:"24h"`
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"10"`

	// Настройки для MinIO, пустой MINIO_ENDPOINT отключает загрузку изображений
	MinioEndpoint        string `env:"MINIO_ENDPOINT"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME" envDefault:"products"`
	MinioRegion          string `env:"MINIO_REGION" envDefault:"us-east-1"`

	// Пустой RABBITMQ_URL означает обработку событий внутри процесса
	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"user_registered_queue"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет значения, которые env.Parse не может проверить сам.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("неизвестный DB_DRIVER: %q (postgres, mysql или sqlite)", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET не должен быть пустым")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST должен быть в диапазоне 4..31, получено %d", c.BcryptCost)
	}
	if c.JWTTTL <= 0 || c.VerificationTTL <= 0 {
		return fmt.Errorf("JWT_TTL и VERIFICATION_TTL должны быть положительными")
	}
	return nil
}

// ServerAddr возвращает адрес, на котором слушает HTTP сервер.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%s", c.ServerHost, c.ServerPort)
}

// FileStorageEnabled сообщает, настроено ли S3/MinIO хранилище.
func (c *Config) FileStorageEnabled() bool {
	return c.MinioEndpoint != ""
}

// BrokerEnabled сообщает, настроен ли RabbitMQ.
func (c *Config) BrokerEnabled() bool {
	return c.RabbitMQ.RabbitMQURL != ""
}
