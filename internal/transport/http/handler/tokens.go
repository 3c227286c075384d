package handler

import (
	"encoding/json"
	"net/http"

	"github.com/event-reminder-api/internal/application/token"
	"github.com/event-reminder-api/internal/domain"
	"github.com/event-reminder-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// TokenHandler handles device-token registration.
type TokenHandler struct {
	svc token.Service
}

func NewTokenHandler(svc token.Service) *TokenHandler { return &TokenHandler{svc: svc} }

func (h *TokenHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Register(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Lookup returns the uid's current token registration.
func (h *TokenHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Lookup(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
