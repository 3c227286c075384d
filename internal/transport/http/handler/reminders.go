package handler

import (
	"encoding/json"
	"net/http"

	"github.com/event-reminder-api/internal/application/reminder"
	"github.com/event-reminder-api/internal/domain"
	"github.com/event-reminder-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// ReminderHandler handles reminder seeding. The due-reminder scan is driven
// by the worker, not by an HTTP route.
type ReminderHandler struct {
	svc reminder.Service
}

func NewReminderHandler(svc reminder.Service) *ReminderHandler {
	return &ReminderHandler{svc: svc}
}

func (h *ReminderHandler) Seed(w http.ResponseWriter, r *http.Request) {
	var req domain.SeedRemindersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.Seed(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SeedEnvelope{Created: created})
}

// Get returns one reminder row, useful for checking why a send failed.
func (h *ReminderHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
