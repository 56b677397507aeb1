package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/gcapi/internal/domain"
	"github.com/GoArmGo/gcapi/internal/usecase"
)

// UserHandler — обработчик HTTP-запросов для работы с пользователями.
type UserHandler struct {
	userUseCase usecase.UserUseCase
	logger      *slog.Logger
}

// NewUserHandler создаёт новый экземпляр UserHandler.
func NewUserHandler(uc usecase.UserUseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{userUseCase: uc, logger: logger}
}

var userErrors = errorMessages{NotFound: "User not found", Integrity: "Create failed"}

// Register — регистрирует пользователя, 201 с данными без пароля.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDomainError(w, r, err, userErrors, h.logger)
		return
	}
	if field, ok := missingField(
		namedField{"username", req.Username},
		namedField{"password", req.Password},
	); !ok {
		respondWithError(w, http.StatusBadRequest, "Field required: "+field, h.logger)
		return
	}

	in := usecase.RegisterUserInput{Username: *req.Username, Password: *req.Password}
	if req.Email != nil {
		in.Email = *req.Email
	}
	user, err := h.userUseCase.Register(r.Context(), in)
	if err != nil {
		respondWithDomainError(w, r, err, userErrors, h.logger)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	respondWithJSON(w, http.StatusCreated, toUserResponse(user), h.logger)
}

// List — список пользователей, только для аутентифицированных.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pageParams(r)
	if err != nil {
		respondWithDomainError(w, r, err, userErrors, h.logger)
		return
	}

	users, err := h.userUseCase.ListUsers(r.Context(), skip, limit)
	if err != nil {
		respondWithDomainError(w, r, err, userErrors, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toUserResponses(users), h.logger)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		respondWithDomainError(w, r, err, userErrors, h.logger)
		return
	}

	user, err := h.userUseCase.GetUser(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, err, userErrors, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toUserResponse(user), h.logger)
}

// Update — частичное обновление: меняются только переданные поля.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		respondWithDomainError(w, r, err, userErrors, h.logger)
		return
	}

	var req userRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDomainError(w, r, err, userErrors, h.logger)
		return
	}

	user, err := h.userUseCase.UpdateUser(r.Context(), id, domain.UserPatch{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondWithDomainError(w, r, err, errorMessages{NotFound: "User not found", Integrity: "Update failed"}, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toUserResponse(user), h.logger)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		respondWithDomainError(w, r, err, userErrors, h.logger)
		return
	}

	if err := h.userUseCase.DeleteUser(r.Context(), id); err != nil {
		respondWithDomainError(w, r, err, userErrors, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
