package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GoArmGo/gcapi/internal/domain"
	"github.com/GoArmGo/gcapi/internal/usecase"
)

// pathID разбирает числовой идентификатор из URL.
// Не число дает 400, число вне диапазона идентификаторов дает 404.
func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, domain.ErrNotFound
		}
		return 0, domain.NewValidationError("Invalid id")
	}
	if id <= 0 || uint64(id) > uint64(^uint(0)) {
		return 0, domain.ErrNotFound
	}
	return uint(id), nil
}

// pageParams читает skip и limit из query, по умолчанию 0 и 10.
func pageParams(r *http.Request) (skip, limit int, err error) {
	q := r.URL.Query()
	skip, limit = 0, usecase.DefaultLimit

	if raw := q.Get("skip"); raw != "" {
		if skip, err = strconv.Atoi(raw); err != nil {
			return 0, 0, domain.NewValidationError("skip must be an integer")
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return 0, 0, domain.NewValidationError("limit must be an integer")
		}
	}
	return skip, limit, nil
}

type namedField struct {
	name  string
	value *string
}

// missingField возвращает имя первого непереданного поля.
func missingField(fields ...namedField) (string, bool) {
	for _, f := range fields {
		if f.value == nil {
			return f.name, false
		}
	}
	return "", true
}
