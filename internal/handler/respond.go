package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/gcapi/internal/domain"
)

const maxJSONBodyBytes = 1 << 20

// errorResponse тело любого ответа с ошибкой
type errorResponse struct {
	Detail string `json:"detail"`
}

// respondWithJSON отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError отправляет JSON-ответ с ошибкой в поле detail.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	respondWithJSON(w, code, errorResponse{Detail: message}, logger)
}

// errorMessages задает тексты ошибок, зависящие от ресурса
type errorMessages struct {
	NotFound  string // 404
	Integrity string // 400 при нарушении ограничений БД
}

// respondWithDomainError переводит доменную ошибку в HTTP статус и detail.
func respondWithDomainError(w http.ResponseWriter, r *http.Request, err error, msgs errorMessages, logger *slog.Logger) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithError(w, http.StatusBadRequest, verr.Reason, logger)
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, msgs.NotFound, logger)
	case errors.Is(err, domain.ErrIntegrity):
		logger.Warn("integrity violation", "path", r.URL.Path, "error", err)
		respondWithError(w, http.StatusBadRequest, msgs.Integrity, logger)
	case errors.Is(err, domain.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "Invalid username or password", logger)
	case errors.Is(err, domain.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", logger)
	case errors.Is(err, domain.ErrFileStorageDisabled):
		respondWithError(w, http.StatusServiceUnavailable, "File storage is not configured", logger)
	default:
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error", logger)
	}
}

// decodeJSON читает тело запроса строго: неизвестные поля и мусор после объекта запрещены.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("Request body is required")
		}
		return domain.NewValidationError("Invalid JSON body: " + err.Error())
	}
	if dec.More() {
		return domain.NewValidationError("Invalid JSON body: unexpected data after object")
	}
	return nil
}
