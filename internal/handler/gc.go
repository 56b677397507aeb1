package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/gcapi/internal/domain"
	"github.com/GoArmGo/gcapi/internal/usecase"
)

// GCHandler — обработчик HTTP-запросов для работы с GC.
type GCHandler struct {
	gcUseCase usecase.GCUseCase
	logger    *slog.Logger
}

func NewGCHandler(uc usecase.GCUseCase, logger *slog.Logger) *GCHandler {
	return &GCHandler{gcUseCase: uc, logger: logger}
}

var gcErrors = errorMessages{NotFound: "GC not found", Integrity: "Create failed"}

// Create — создает GC от имени текущего пользователя.
func (h *GCHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := CurrentUser(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", h.logger)
		return
	}

	var req gcRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDomainError(w, r, err, gcErrors, h.logger)
		return
	}
	if req.Name == nil {
		respondWithError(w, http.StatusBadRequest, "Field required: name", h.logger)
		return
	}

	gc, err := h.gcUseCase.CreateGC(r.Context(), owner, *req.Name)
	if err != nil {
		respondWithDomainError(w, r, err, gcErrors, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, toGCResponse(gc), h.logger)
}

func (h *GCHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pageParams(r)
	if err != nil {
		respondWithDomainError(w, r, err, gcErrors, h.logger)
		return
	}

	gcs, err := h.gcUseCase.ListGCs(r.Context(), skip, limit)
	if err != nil {
		respondWithDomainError(w, r, err, gcErrors, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toGCResponses(gcs), h.logger)
}

func (h *GCHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "gcID")
	if err != nil {
		respondWithDomainError(w, r, err, gcErrors, h.logger)
		return
	}

	gc, err := h.gcUseCase.GetGC(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, err, gcErrors, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toGCResponse(gc), h.logger)
}

func (h *GCHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "gcID")
	if err != nil {
		respondWithDomainError(w, r, err, gcErrors, h.logger)
		return
	}

	var req gcRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDomainError(w, r, err, gcErrors, h.logger)
		return
	}

	gc, err := h.gcUseCase.UpdateGC(r.Context(), id, domain.GCPatch{Name: req.Name})
	if err != nil {
		respondWithDomainError(w, r, err, errorMessages{NotFound: "GC not found", Integrity: "Update failed"}, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toGCResponse(gc), h.logger)
}

func (h *GCHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "gcID")
	if err != nil {
		respondWithDomainError(w, r, err, gcErrors, h.logger)
		return
	}

	if err := h.gcUseCase.DeleteGC(r.Context(), id); err != nil {
		respondWithDomainError(w, r, err, gcErrors, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
