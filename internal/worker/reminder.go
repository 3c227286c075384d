package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/event-reminder-api/internal/application/reminder"
	"github.com/robfig/cron/v3"
)

// scanTimeout bounds one due-reminder batch. The push call itself has no
// protocol-level timeout, so the deadline is applied here around the whole
// scan to keep a stuck gateway from piling up overlapping runs.
const scanTimeout = 50 * time.Second

// ReminderWorker drives the reminder service on a cron cadence: the due scan
// every minute and the archive export once a day. A single scheduler instance
// never runs two scans concurrently; across instances the per-record claim in
// ProcessDue keeps double-sends out.
type ReminderWorker struct {
	svc       reminder.Service
	scanLimit int32
	c         *cron.Cron
}

func NewReminderWorker(svc reminder.Service, loc *time.Location, scanLimit int) *ReminderWorker {
	if scanLimit <= 0 {
		scanLimit = reminder.DefaultProcessLimit
	}
	return &ReminderWorker{
		svc:       svc,
		scanLimit: int32(scanLimit),
		c:         cron.New(cron.WithLocation(loc)),
	}
}

// Start registers the jobs and launches the scheduler.
func (w *ReminderWorker) Start(scanSpec, archiveSpec string) error {
	if _, err := w.c.AddFunc(scanSpec, w.scan); err != nil {
		return err
	}
	if _, err := w.c.AddFunc(archiveSpec, w.archive); err != nil {
		return err
	}
	w.c.Start()
	return nil
}

// Stop halts scheduling and waits for any in-flight job, or gives up when ctx
// expires.
func (w *ReminderWorker) Stop(ctx context.Context) {
	select {
	case <-w.c.Stop().Done():
	case <-ctx.Done():
		slog.Warn("reminder worker stop timed out")
	}
}

func (w *ReminderWorker) scan() {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	processed, err := w.svc.ProcessDue(ctx, w.scanLimit)
	if err != nil {
		slog.Error("due-reminder scan failed", "err", err)
		return
	}
	if processed > 0 {
		slog.Info("sent due reminders", "processed", processed)
	}
}

func (w *ReminderWorker) archive() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := w.svc.Archive(ctx); err != nil {
		slog.Error("reminder archive export failed", "err", err)
	}
}
