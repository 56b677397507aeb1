package usecase

import (
	"math"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/GoArmGo/gcapi/internal/domain"
)

// ValidatePage проверяет параметры пагинации skip/limit.
func ValidatePage(skip, limit int) error {
	if skip < 0 {
		return domain.NewValidationError("skip must be non-negative")
	}
	if limit < 1 || limit > MaxLimit {
		return domain.NewValidationError("limit must be between 1 and 100")
	}
	return nil
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLen {
		return domain.NewValidationError("Username too short")
	}
	if n > MaxUsernameLen {
		return domain.NewValidationError("Username too long")
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return domain.NewValidationError("Password too short")
	}
	return nil
}

func validateEmail(email string) error {
	if utf8.RuneCountInString(email) > MaxEmailLen {
		return domain.NewValidationError("Email too long")
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.NewValidationError("Name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return domain.NewValidationError("Name too long")
	}
	return nil
}

func validateProductFields(category *string, price *float64, stock *int) error {
	if category != nil && utf8.RuneCountInString(*category) > MaxCategoryLen {
		return domain.NewValidationError("Category too long")
	}
	if price != nil && *price < 0 {
		return domain.NewValidationError("Price must be non-negative")
	}
	if price != nil && *price >= MaxPrice {
		return domain.NewValidationError("Price too large")
	}
	if stock != nil && *stock < 0 {
		return domain.NewValidationError("Stock must be non-negative")
	}
	if stock != nil && *stock > MaxStock {
		return domain.NewValidationError("Stock too large")
	}
	return nil
}

// roundPrice приводит цену к точности колонки (2 знака).
func roundPrice(price float64) float64 {
	return math.Round(price*100) / 100
}

// imageExt возвращает расширение файла в нижнем регистре.
// Слишком длинные расширения и расширения с посторонними символами отбрасываются.
func imageExt(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) < 2 || len(ext) > MaxImageExtLen {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
