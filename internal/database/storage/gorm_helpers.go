package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/GoArmGo/gcapi/internal/domain"
)

// SQLSTATE Postgres, означающие, что значение не помещается в колонку
const (
	pgStringDataRightTruncation = "22001"
	pgNumericValueOutOfRange    = "22003"
)

// translateError сводит ошибки GORM к доменным.
// Требует gorm.Config{TranslateError: true}.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", domain.ErrIntegrity, err)
	case isPgOverflow(err):
		return fmt.Errorf("%w: %v", domain.ErrIntegrity, err)
	default:
		return err
	}
}

func isPgOverflow(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgStringDataRightTruncation || pgErr.Code == pgNumericValueOutOfRange
}

func getByID[T any](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var rec T
	if err := db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &rec, nil
}

// listWindow возвращает записи, упорядоченные по id, в окне OFFSET skip LIMIT limit.
func listWindow[T any](ctx context.Context, db *gorm.DB, skip, limit int) ([]T, error) {
	records := make([]T, 0, limit)
	err := db.WithContext(ctx).
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, translateError(err)
	}
	return records, nil
}

// updateByID меняет только переданные колонки и возвращает запись после обновления.
func updateByID[T any](ctx context.Context, db *gorm.DB, id uint, fields map[string]any) (*T, error) {
	var rec T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rec, id).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&rec).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(&rec, id).Error
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &rec, nil
}

func deleteByID[T any](ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	result := db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return false, translateError(result.Error)
	}
	return result.RowsAffected > 0, nil
}
