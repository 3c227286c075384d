package handler

import (
	"encoding/json"
	"net/http"

	"github.com/event-reminder-api/internal/application/notification"
	"github.com/event-reminder-api/internal/domain"
	"github.com/event-reminder-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// EventHandler handles event-driven notification fan-outs.
type EventHandler struct {
	svc notification.Service
}

func NewEventHandler(svc notification.Service) *EventHandler { return &EventHandler{svc: svc} }

// NotifyRegistration tells the event's organizer that someone registered.
func (h *EventHandler) NotifyRegistration(w http.ResponseWriter, r *http.Request) {
	var req domain.RegistrationNoticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.svc.NotifyOrganizerRegistration(r.Context(), chi.URLParam(r, "eventID"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// NotifyChange tells every attendee the event changed.
func (h *EventHandler) NotifyChange(w http.ResponseWriter, r *http.Request) {
	var req domain.EventChangeNoticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.svc.NotifyEventChange(r.Context(), chi.URLParam(r, "eventID"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
