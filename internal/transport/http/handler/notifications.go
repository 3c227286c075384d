package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/event-reminder-api/internal/application/notification"
	"github.com/event-reminder-api/internal/domain"
	"github.com/event-reminder-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// Send fans one message out to a uid list. The save flag (default true)
// controls whether a notification row is persisted per recipient.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.SendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	persist := req.Save == nil || *req.Save
	result, err := h.svc.Dispatch(r.Context(), req.UIDs, req.Title, req.Body, req.Data, persist)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Record persists a single notification row without pushing anything.
func (h *NotificationHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req domain.RecordNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := h.svc.Record(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// List returns a page of the uid's notifications, newest first. `before` is
// the id of the last row of the previous page.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	limit := int64(0)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	notifications, err := h.svc.ListFor(r.Context(), uid, int32(limit), r.URL.Query().Get("before"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UID string `json:"uid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UID == "" {
		writeError(w, http.StatusBadRequest, "uid is required")
		return
	}
	n, err := h.svc.MarkAsRead(r.Context(), chi.URLParam(r, "id"), body.UID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}
