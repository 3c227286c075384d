package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/event-reminder-api/internal/domain"
	"github.com/event-reminder-api/internal/pkg/id"
)

// Payload keys shared by every notification kind.
const (
	dataKeyType     = "type"
	dataKeyEventID  = "event_id"
	dataKeyActorUID = "actor_uid"
	dataKeyNewDate  = "new_date"
)

const defaultListLimit = 20

type Service interface {
	Record(ctx context.Context, req domain.RecordNotificationRequest) (*domain.NotificationRecord, error)
	ListFor(ctx context.Context, uid string, limit int32, cursor string) ([]domain.NotificationRecord, error)
	MarkAsRead(ctx context.Context, notificationID, uid string) (*domain.NotificationRecord, error)
	// Dispatch fans one message out to every uid: optionally persists a
	// notification row per recipient, resolves device tokens, and sends a
	// single multicast through the gateway.
	Dispatch(ctx context.Context, uids []string, title, body string, data domain.Payload, persist bool) (*domain.DispatchResult, error)
	NotifyOrganizerRegistration(ctx context.Context, eventID string, req domain.RegistrationNoticeRequest) (*domain.DispatchResult, error)
	NotifyEventChange(ctx context.Context, eventID string, req domain.EventChangeNoticeRequest) (*domain.DispatchResult, error)
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.NotificationRecord) error
	Get(ctx context.Context, notificationID string) (*domain.NotificationRecord, error)
	ListByUser(ctx context.Context, uid string, limit int32, cursor string) ([]domain.NotificationRecord, error)
	MarkAsRead(ctx context.Context, notificationID string) (*domain.NotificationRecord, error)
}

type tokenStore interface {
	TokensFor(ctx context.Context, uids []string) ([]string, error)
}

type eventStore interface {
	Get(ctx context.Context, eventID string) (*domain.Event, error)
}

type attendanceStore interface {
	ListUIDs(ctx context.Context, eventID string) ([]string, error)
}

type pushGateway interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (*domain.PushResult, error)
}

// ServiceDeps bundles the collaborators the notification service needs.
type ServiceDeps struct {
	NotificationRepo notificationStore
	UserRepo         tokenStore
	EventRepo        eventStore
	AttendanceRepo   attendanceStore
	Gateway          pushGateway
}

type service struct {
	notifications notificationStore
	users         tokenStore
	events        eventStore
	attendances   attendanceStore
	gateway       pushGateway
	clock         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	return &service{
		notifications: deps.NotificationRepo,
		users:         deps.UserRepo,
		events:        deps.EventRepo,
		attendances:   deps.AttendanceRepo,
		gateway:       deps.Gateway,
		clock:         time.Now,
	}
}

func (s *service) Record(ctx context.Context, req domain.RecordNotificationRequest) (*domain.NotificationRecord, error) {
	n := &domain.NotificationRecord{
		NotificationID: id.New(),
		UID:            req.UID,
		Title:          req.Title,
		Body:           req.Body,
		Data:           req.Data,
		Read:           false,
		SentAt:         s.clock().UTC().Truncate(time.Second),
	}
	if n.Data == nil {
		n.Data = domain.Payload{}
	}
	if err := s.notifications.Put(ctx, n); err != nil {
		return nil, fmt.Errorf("save notification: %w", err)
	}
	return n, nil
}

func (s *service) ListFor(ctx context.Context, uid string, limit int32, cursor string) ([]domain.NotificationRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.notifications.ListByUser(ctx, uid, limit, cursor)
}

func (s *service) MarkAsRead(ctx context.Context, notificationID, uid string) (*domain.NotificationRecord, error) {
	n, err := s.notifications.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UID != uid {
		return nil, fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	return s.notifications.MarkAsRead(ctx, notificationID)
}

// Dispatch persists the per-recipient rows BEFORE resolving tokens or
// contacting the gateway. A row therefore exists even when delivery later
// fails; the notification center shows attempts, not confirmed deliveries.
// An empty resolved-token audience is not an error: the gateway is skipped
// and zero counts are reported.
func (s *service) Dispatch(ctx context.Context, uids []string, title, body string, data domain.Payload, persist bool) (*domain.DispatchResult, error) {
	result := &domain.DispatchResult{Saved: []domain.NotificationRecord{}}

	if persist {
		for _, uid := range uids {
			n, err := s.Record(ctx, domain.RecordNotificationRequest{
				UID: uid, Title: title, Body: body, Data: data,
			})
			if err != nil {
				return nil, err
			}
			result.Saved = append(result.Saved, *n)
		}
	}

	tokens, err := s.users.TokensFor(ctx, uids)
	if err != nil {
		return nil, fmt.Errorf("resolve tokens: %w", err)
	}
	if len(tokens) == 0 {
		result.Sent = &domain.PushResult{Responses: []domain.TokenResult{}}
		return result, nil
	}

	sent, err := s.gateway.SendMulticast(ctx, tokens, title, body, data.Strings())
	if err != nil {
		return nil, fmt.Errorf("push multicast: %w", err)
	}
	result.Sent = sent
	return result, nil
}

// organizerOf resolves the event's organizer uid. An absent event or a
// missing organizer field is an empty result, not an error.
func (s *service) organizerOf(ctx context.Context, eventID string) (string, bool, error) {
	evt, err := s.events.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if evt.OrganizerUID == "" {
		return "", false, nil
	}
	return evt.OrganizerUID, true, nil
}

func (s *service) NotifyOrganizerRegistration(ctx context.Context, eventID string, req domain.RegistrationNoticeRequest) (*domain.DispatchResult, error) {
	organizer, ok, err := s.organizerOf(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &domain.DispatchResult{Reason: "no_organizer"}, nil
	}

	title := "New event registration"
	body := fmt.Sprintf("%s registered for %q", req.ActorName, req.EventTitle)
	data := domain.Payload{
		dataKeyType:     "user_registration",
		dataKeyEventID:  eventID,
		dataKeyActorUID: req.ActorUID,
	}
	return s.Dispatch(ctx, []string{organizer}, title, body, data, true)
}

func (s *service) NotifyEventChange(ctx context.Context, eventID string, req domain.EventChangeNoticeRequest) (*domain.DispatchResult, error) {
	uids, err := s.attendances.ListUIDs(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(uids) == 0 {
		return &domain.DispatchResult{Reason: "no_attendees"}, nil
	}

	title := "Event update"
	body := req.Message
	if body == "" {
		body = fmt.Sprintf("Event %q was updated", req.EventTitle)
	}
	data := domain.Payload{
		dataKeyType:    "event_change",
		dataKeyEventID: eventID,
		dataKeyNewDate: req.NewDate,
	}
	return s.Dispatch(ctx, uids, title, body, data, true)
}
