package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/gcapi/internal/domain"
	"github.com/GoArmGo/gcapi/internal/usecase"
)

var verifiedPage = template.Must(template.New("verified").Parse(`<!DOCTYPE html>
<html>
<head><title>Account verified</title></head>
<body>
<h1>Hello {{.Username}}</h1>
<p>{{with .Email}}Your email {{.}} is verified.{{else}}Your account is verified.{{end}} You can close this page.</p>
</body>
</html>
`))

// AuthHandler — обработчик выдачи токенов, профиля и подтверждения email.
type AuthHandler struct {
	authUseCase usecase.AuthUseCase
	logger      *slog.Logger
}

// NewAuthHandler создаёт новый экземпляр AuthHandler.
func NewAuthHandler(uc usecase.AuthUseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authUseCase: uc, logger: logger}
}

// Token — выдает access токен по form-encoded username/password.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid form body", h.logger)
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		respondWithError(w, http.StatusBadRequest, "username and password are required", h.logger)
		return
	}

	token, err := h.authUseCase.Issue(r.Context(), username, password)
	if err != nil {
		respondWithDomainError(w, r, err, errorMessages{}, h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"}, h.logger)
}

// Me — возвращает данные текущего пользователя.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toMeResponse(user), h.logger)
}

// Verification — подтверждает email по токену из письма.
func (h *AuthHandler) Verification(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondWithError(w, http.StatusBadRequest, "token is required", h.logger)
		return
	}

	user, err := h.authUseCase.Verify(r.Context(), token)
	if err != nil {
		respondWithDomainError(w, r, err, errorMessages{NotFound: "User not found"}, h.logger)
		return
	}

	h.logger.Info("email verified", "user_id", user.ID)
	renderVerified(w, user, h.logger)
}

func renderVerified(w http.ResponseWriter, user *domain.User, logger *slog.Logger) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := verifiedPage.Execute(w, user); err != nil {
		logger.Error("failed to render verification page", "error", err)
	}
}
