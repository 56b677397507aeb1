package domain

import "errors"

var (
	// ErrNotFound возвращается хранилищем, если записи с таким ID нет
	ErrNotFound = errors.New("record not found")
	// ErrIntegrity означает нарушение уникальности или внешнего ключа в БД
	ErrIntegrity = errors.New("integrity constraint violated")
	// ErrInvalidCredentials возвращается при неверной паре логин/пароль
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthorized означает невалидный, просроченный или чужой токен
	ErrUnauthorized = errors.New("unauthorized")
	// ErrFileStorageDisabled возвращается, если S3/MinIO не настроен
	ErrFileStorageDisabled = errors.New("file storage is not configured")
)

// ValidationError описывает некорректные входные данные.
// Reason отдается клиенту как есть.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError создает ValidationError с заданной причиной.
func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}
