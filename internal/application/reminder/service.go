package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/event-reminder-api/internal/domain"
	"github.com/event-reminder-api/internal/pkg/id"
)

const (
	// DefaultProcessLimit bounds one due-reminder scan.
	DefaultProcessLimit = 50

	defaultIntervalDays = 3
	archiveQueryLimit   = 1000
)

type Service interface {
	// Seed computes the reminder schedule for an event and persists all rows
	// atomically with status pending. Returns the number of rows created.
	Seed(ctx context.Context, req domain.SeedRemindersRequest) (int, error)
	// ProcessDue scans up to limit pending reminders whose send time has
	// passed, dispatches each, and transitions it to sent or failed. One
	// record's failure never aborts the rest of the batch.
	ProcessDue(ctx context.Context, limit int32) (int, error)
	// Archive exports terminal-status reminders older than the retention
	// window to the archive store. Rows are copied, never deleted.
	Archive(ctx context.Context) (int, error)
	// Get returns a single reminder row, mainly for inspecting the status of
	// a failed send.
	Get(ctx context.Context, reminderID string) (*domain.ReminderRecord, error)
}

type reminderStore interface {
	BulkPut(ctx context.Context, reminders []domain.ReminderRecord) error
	Get(ctx context.Context, reminderID string) (*domain.ReminderRecord, error)
	QueryDue(ctx context.Context, now time.Time, limit int32) ([]domain.ReminderRecord, error)
	Claim(ctx context.Context, reminderID string) (bool, error)
	MarkSent(ctx context.Context, reminderID string, at time.Time) error
	MarkFailed(ctx context.Context, reminderID, errMsg string, at time.Time) error
	QueryFinishedBefore(ctx context.Context, cutoff time.Time, limit int32) ([]domain.ReminderRecord, error)
}

type dispatcher interface {
	Dispatch(ctx context.Context, uids []string, title, body string, data domain.Payload, persist bool) (*domain.DispatchResult, error)
}

type archiveStore interface {
	PutArchive(ctx context.Context, key string, body []byte) (string, error)
}

// ServiceDeps bundles the collaborators and tuning knobs for the reminder service.
type ServiceDeps struct {
	ReminderRepo  reminderStore
	Dispatcher    dispatcher
	ArchiveStore  archiveStore
	Location      *time.Location // zone the 09:00 anchor is evaluated in
	IntervalDays  int            // default step between reminders when a seed request omits it
	RetentionDays int            // age at which finished reminders are exported
}

type service struct {
	reminders     reminderStore
	dispatcher    dispatcher
	archive       archiveStore
	loc           *time.Location
	intervalDays  int
	retentionDays int
	clock         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	interval := deps.IntervalDays
	if interval <= 0 {
		interval = defaultIntervalDays
	}
	return &service{
		reminders:     deps.ReminderRepo,
		dispatcher:    deps.Dispatcher,
		archive:       deps.ArchiveStore,
		loc:           loc,
		intervalDays:  interval,
		retentionDays: deps.RetentionDays,
		clock:         time.Now,
	}
}

func (s *service) Seed(ctx context.Context, req domain.SeedRemindersRequest) (int, error) {
	interval := req.IntervalDays
	if interval <= 0 {
		interval = s.intervalDays
	}

	now := s.clock()
	sendAts := buildSchedule(now, req.EventDate, interval, req.TestEveryMinutes, s.loc)
	if len(sendAts) == 0 {
		return 0, nil
	}

	records := make([]domain.ReminderRecord, 0, len(sendAts))
	for _, at := range sendAts {
		records = append(records, domain.ReminderRecord{
			ReminderID: id.New(),
			UID:        req.UID,
			EventID:    req.EventID,
			EventTitle: req.EventTitle,
			SendAt:     at,
			Status:     domain.ReminderPending,
			CreatedAt:  now,
		})
	}
	if err := s.reminders.BulkPut(ctx, records); err != nil {
		return 0, fmt.Errorf("seed reminders: %w", err)
	}
	return len(records), nil
}

func (s *service) ProcessDue(ctx context.Context, limit int32) (int, error) {
	if limit <= 0 {
		limit = DefaultProcessLimit
	}
	due, err := s.reminders.QueryDue(ctx, s.clock(), limit)
	if err != nil {
		return 0, fmt.Errorf("query due reminders: %w", err)
	}

	processed := 0
	for _, rec := range due {
		claimed, err := s.reminders.Claim(ctx, rec.ReminderID)
		if err != nil {
			slog.Warn("could not claim reminder", "reminder_id", rec.ReminderID, "err", err)
			continue
		}
		if !claimed {
			// Another runner got there first.
			continue
		}

		if err := s.send(ctx, rec); err != nil {
			if mErr := s.reminders.MarkFailed(ctx, rec.ReminderID, err.Error(), s.clock()); mErr != nil {
				slog.Warn("could not mark reminder failed", "reminder_id", rec.ReminderID, "err", mErr)
			}
			continue
		}
		if err := s.reminders.MarkSent(ctx, rec.ReminderID, s.clock()); err != nil {
			slog.Warn("could not mark reminder sent", "reminder_id", rec.ReminderID, "err", err)
			continue
		}
		processed++
	}
	return processed, nil
}

func (s *service) send(ctx context.Context, rec domain.ReminderRecord) error {
	_, err := s.dispatcher.Dispatch(ctx,
		[]string{rec.UID},
		"Event reminder",
		fmt.Sprintf("%q is coming up", rec.EventTitle),
		domain.Payload{"type": "event_reminder", "event_id": rec.EventID},
		true,
	)
	return err
}

func (s *service) Get(ctx context.Context, reminderID string) (*domain.ReminderRecord, error) {
	return s.reminders.Get(ctx, reminderID)
}

func (s *service) Archive(ctx context.Context) (int, error) {
	cutoff := s.clock().AddDate(0, 0, -s.retentionDays)
	rows, err := s.reminders.QueryFinishedBefore(ctx, cutoff, archiveQueryLimit)
	if err != nil {
		return 0, fmt.Errorf("query finished reminders: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	var buf []byte
	for _, rec := range rows {
		line, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("marshal reminder %s: %w", rec.ReminderID, err)
		}
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}

	key := fmt.Sprintf("reminders/%s.jsonl", s.clock().UTC().Format("2006-01-02"))
	url, err := s.archive.PutArchive(ctx, key, buf)
	if err != nil {
		return 0, fmt.Errorf("upload archive: %w", err)
	}
	slog.Info("archived reminders", "count", len(rows), "object", url)
	return len(rows), nil
}
