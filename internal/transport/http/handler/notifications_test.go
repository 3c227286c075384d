package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/event-reminder-api/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotificationSvc struct{ mock.Mock }

func (m *mockNotificationSvc) Record(ctx context.Context, req domain.RecordNotificationRequest) (*domain.NotificationRecord, error) {
	args := m.Called(ctx, req)
	if n, _ := args.Get(0).(*domain.NotificationRecord); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotificationSvc) ListFor(ctx context.Context, uid string, limit int32, cursor string) ([]domain.NotificationRecord, error) {
	args := m.Called(ctx, uid, limit, cursor)
	return args.Get(0).([]domain.NotificationRecord), args.Error(1)
}

func (m *mockNotificationSvc) MarkAsRead(ctx context.Context, notificationID, uid string) (*domain.NotificationRecord, error) {
	args := m.Called(ctx, notificationID, uid)
	if n, _ := args.Get(0).(*domain.NotificationRecord); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotificationSvc) Dispatch(ctx context.Context, uids []string, title, body string, data domain.Payload, persist bool) (*domain.DispatchResult, error) {
	args := m.Called(ctx, uids, title, body, data, persist)
	if r, _ := args.Get(0).(*domain.DispatchResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotificationSvc) NotifyOrganizerRegistration(ctx context.Context, eventID string, req domain.RegistrationNoticeRequest) (*domain.DispatchResult, error) {
	args := m.Called(ctx, eventID, req)
	if r, _ := args.Get(0).(*domain.DispatchResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotificationSvc) NotifyEventChange(ctx context.Context, eventID string, req domain.EventChangeNoticeRequest) (*domain.DispatchResult, error) {
	args := m.Called(ctx, eventID, req)
	if r, _ := args.Get(0).(*domain.DispatchResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func notificationRouter(svc *mockNotificationSvc) http.Handler {
	h := NewNotificationHandler(svc)
	r := chi.NewRouter()
	r.Post("/notifications/send", h.Send)
	r.Get("/notifications/{uid}", h.List)
	r.Put("/notifications/{id}/read", h.MarkAsRead)
	return r
}

func TestSend_DefaultsSaveToTrue(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("Dispatch", mock.Anything, []string{"u1"}, "Hi", "There", mock.Anything, true).
		Return(&domain.DispatchResult{Sent: &domain.PushResult{SuccessCount: 1}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/notifications/send",
		strings.NewReader(`{"uids":["u1"],"title":"Hi","body":"There"}`))
	rec := httptest.NewRecorder()
	notificationRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestSend_ExplicitSaveFalse(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("Dispatch", mock.Anything, []string{"u1"}, "Hi", "There", mock.Anything, false).
		Return(&domain.DispatchResult{Sent: &domain.PushResult{SuccessCount: 1}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/notifications/send",
		strings.NewReader(`{"uids":["u1"],"title":"Hi","body":"There","save":false}`))
	rec := httptest.NewRecorder()
	notificationRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestSend_MissingFields_Returns400(t *testing.T) {
	svc := &mockNotificationSvc{}

	req := httptest.NewRequest(http.MethodPost, "/notifications/send",
		strings.NewReader(`{"title":"Hi"}`))
	rec := httptest.NewRecorder()
	notificationRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSend_InvalidJSON_Returns400(t *testing.T) {
	svc := &mockNotificationSvc{}

	req := httptest.NewRequest(http.MethodPost, "/notifications/send", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	notificationRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestList_PassesLimitAndCursor(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("ListFor", mock.Anything, "u1", int32(5), "n-42").
		Return([]domain.NotificationRecord{{NotificationID: "n-43", UID: "u1"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/notifications/u1?limit=5&before=n-42", nil)
	rec := httptest.NewRecorder()
	notificationRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []domain.NotificationRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "n-43", got[0].NotificationID)
}

func TestList_InvalidLimit_Returns400(t *testing.T) {
	svc := &mockNotificationSvc{}

	req := httptest.NewRequest(http.MethodGet, "/notifications/u1?limit=zero", nil)
	rec := httptest.NewRecorder()
	notificationRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkAsRead_WrongOwner_Returns403(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("MarkAsRead", mock.Anything, "n1", "u1").Return(nil, domain.ErrForbidden)

	req := httptest.NewRequest(http.MethodPut, "/notifications/n1/read",
		strings.NewReader(`{"uid":"u1"}`))
	rec := httptest.NewRecorder()
	notificationRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMarkAsRead_MissingUID_Returns400(t *testing.T) {
	svc := &mockNotificationSvc{}

	req := httptest.NewRequest(http.MethodPut, "/notifications/n1/read", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	notificationRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "MarkAsRead", mock.Anything, mock.Anything, mock.Anything)
}
