package reminder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/event-reminder-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockReminderStore struct{ mock.Mock }

func (m *mockReminderStore) BulkPut(ctx context.Context, reminders []domain.ReminderRecord) error {
	return m.Called(ctx, reminders).Error(0)
}
func (m *mockReminderStore) Get(ctx context.Context, reminderID string) (*domain.ReminderRecord, error) {
	args := m.Called(ctx, reminderID)
	if rec, _ := args.Get(0).(*domain.ReminderRecord); rec != nil {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockReminderStore) QueryDue(ctx context.Context, now time.Time, limit int32) ([]domain.ReminderRecord, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]domain.ReminderRecord), args.Error(1)
}
func (m *mockReminderStore) Claim(ctx context.Context, reminderID string) (bool, error) {
	args := m.Called(ctx, reminderID)
	return args.Bool(0), args.Error(1)
}
func (m *mockReminderStore) MarkSent(ctx context.Context, reminderID string, at time.Time) error {
	return m.Called(ctx, reminderID, at).Error(0)
}
func (m *mockReminderStore) MarkFailed(ctx context.Context, reminderID, errMsg string, at time.Time) error {
	return m.Called(ctx, reminderID, errMsg, at).Error(0)
}
func (m *mockReminderStore) QueryFinishedBefore(ctx context.Context, cutoff time.Time, limit int32) ([]domain.ReminderRecord, error) {
	args := m.Called(ctx, cutoff, limit)
	return args.Get(0).([]domain.ReminderRecord), args.Error(1)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) Dispatch(ctx context.Context, uids []string, title, body string, data domain.Payload, persist bool) (*domain.DispatchResult, error) {
	args := m.Called(ctx, uids, title, body, data, persist)
	if r, _ := args.Get(0).(*domain.DispatchResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockArchiveStore struct{ mock.Mock }

func (m *mockArchiveStore) PutArchive(ctx context.Context, key string, body []byte) (string, error) {
	args := m.Called(ctx, key, body)
	return args.String(0), args.Error(1)
}

// --- helpers ---

var seedNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestService(rs *mockReminderStore, d *mockDispatcher, a *mockArchiveStore) *service {
	svc := NewService(ServiceDeps{
		ReminderRepo:  rs,
		Dispatcher:    d,
		ArchiveStore:  a,
		Location:      time.UTC,
		IntervalDays:  3,
		RetentionDays: 7,
	}).(*service)
	svc.clock = func() time.Time { return seedNow }
	return svc
}

func seedReq() domain.SeedRemindersRequest {
	return domain.SeedRemindersRequest{
		UID:        "uid-1",
		EventID:    "evt-1",
		EventTitle: "Tech Meetup",
		EventDate:  time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC),
	}
}

// --- Seed tests ---

func TestSeed_CreatesPendingRecordsAtomically(t *testing.T) {
	rs := &mockReminderStore{}
	var captured []domain.ReminderRecord
	rs.On("BulkPut", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).([]domain.ReminderRecord)
	}).Return(nil).Once()

	svc := newTestService(rs, nil, nil)
	created, err := svc.Seed(context.Background(), seedReq())

	require.NoError(t, err)
	assert.Equal(t, 4, created)
	require.Len(t, captured, 4)
	for i, rec := range captured {
		assert.NotEmpty(t, rec.ReminderID)
		assert.Equal(t, "uid-1", rec.UID)
		assert.Equal(t, "evt-1", rec.EventID)
		assert.Equal(t, "Tech Meetup", rec.EventTitle)
		assert.Equal(t, domain.ReminderPending, rec.Status)
		assert.Equal(t, seedNow, rec.CreatedAt)
		if i > 0 {
			assert.True(t, rec.SendAt.After(captured[i-1].SendAt))
		}
	}
	rs.AssertExpectations(t)
}

func TestSeed_TestMode_SixRecords(t *testing.T) {
	rs := &mockReminderStore{}
	rs.On("BulkPut", mock.Anything, mock.MatchedBy(func(recs []domain.ReminderRecord) bool {
		return len(recs) == 6
	})).Return(nil).Once()

	svc := newTestService(rs, nil, nil)
	req := seedReq()
	req.TestEveryMinutes = 2
	created, err := svc.Seed(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 6, created)
	rs.AssertExpectations(t)
}

func TestSeed_EventTooClose_NoWriteAtAll(t *testing.T) {
	rs := &mockReminderStore{}

	svc := newTestService(rs, nil, nil)
	req := seedReq()
	req.EventDate = seedNow.Add(90 * time.Minute)
	created, err := svc.Seed(context.Background(), req)

	require.NoError(t, err)
	assert.Zero(t, created)
	rs.AssertNotCalled(t, "BulkPut", mock.Anything, mock.Anything)
}

func TestSeed_StoreError_Propagates(t *testing.T) {
	rs := &mockReminderStore{}
	rs.On("BulkPut", mock.Anything, mock.Anything).Return(errors.New("transact canceled"))

	svc := newTestService(rs, nil, nil)
	_, err := svc.Seed(context.Background(), seedReq())

	require.Error(t, err)
	assert.ErrorContains(t, err, "transact canceled")
}

// --- ProcessDue tests ---

func dueRecord(id string) domain.ReminderRecord {
	return domain.ReminderRecord{
		ReminderID: id,
		UID:        "uid-" + id,
		EventID:    "evt-1",
		EventTitle: "Tech Meetup",
		SendAt:     seedNow.Add(-time.Minute),
		Status:     domain.ReminderPending,
	}
}

func TestProcessDue_SendsAndMarksSent(t *testing.T) {
	rs := &mockReminderStore{}
	d := &mockDispatcher{}
	rs.On("QueryDue", mock.Anything, seedNow, int32(50)).
		Return([]domain.ReminderRecord{dueRecord("r1")}, nil)
	rs.On("Claim", mock.Anything, "r1").Return(true, nil)
	d.On("Dispatch", mock.Anything, []string{"uid-r1"}, "Event reminder", `"Tech Meetup" is coming up`,
		domain.Payload{"type": "event_reminder", "event_id": "evt-1"}, true).
		Return(&domain.DispatchResult{}, nil)
	rs.On("MarkSent", mock.Anything, "r1", seedNow).Return(nil)

	svc := newTestService(rs, d, nil)
	processed, err := svc.ProcessDue(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	rs.AssertExpectations(t)
	d.AssertExpectations(t)
}

func TestProcessDue_LimitPassedThrough(t *testing.T) {
	rs := &mockReminderStore{}
	d := &mockDispatcher{}
	rs.On("QueryDue", mock.Anything, seedNow, int32(2)).
		Return([]domain.ReminderRecord{dueRecord("r1"), dueRecord("r2")}, nil)
	rs.On("Claim", mock.Anything, mock.Anything).Return(true, nil)
	d.On("Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, true).
		Return(&domain.DispatchResult{}, nil)
	rs.On("MarkSent", mock.Anything, mock.Anything, seedNow).Return(nil)

	svc := newTestService(rs, d, nil)
	processed, err := svc.ProcessDue(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, 2, processed)
}

func TestProcessDue_DispatchFailure_MarksFailedAndContinues(t *testing.T) {
	rs := &mockReminderStore{}
	d := &mockDispatcher{}
	rs.On("QueryDue", mock.Anything, seedNow, int32(50)).
		Return([]domain.ReminderRecord{dueRecord("r1"), dueRecord("r2")}, nil)
	rs.On("Claim", mock.Anything, "r1").Return(true, nil)
	rs.On("Claim", mock.Anything, "r2").Return(true, nil)
	d.On("Dispatch", mock.Anything, []string{"uid-r1"}, mock.Anything, mock.Anything, mock.Anything, true).
		Return(nil, errors.New("gateway unreachable"))
	d.On("Dispatch", mock.Anything, []string{"uid-r2"}, mock.Anything, mock.Anything, mock.Anything, true).
		Return(&domain.DispatchResult{}, nil)
	rs.On("MarkFailed", mock.Anything, "r1", mock.MatchedBy(func(msg string) bool {
		return strings.Contains(msg, "gateway unreachable")
	}), seedNow).Return(nil)
	rs.On("MarkSent", mock.Anything, "r2", seedNow).Return(nil)

	svc := newTestService(rs, d, nil)
	processed, err := svc.ProcessDue(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	rs.AssertExpectations(t)
	d.AssertExpectations(t)
}

func TestProcessDue_ClaimLost_SkipsRecord(t *testing.T) {
	rs := &mockReminderStore{}
	d := &mockDispatcher{}
	rs.On("QueryDue", mock.Anything, seedNow, int32(50)).
		Return([]domain.ReminderRecord{dueRecord("r1")}, nil)
	rs.On("Claim", mock.Anything, "r1").Return(false, nil)

	svc := newTestService(rs, d, nil)
	processed, err := svc.ProcessDue(context.Background(), 0)

	require.NoError(t, err)
	assert.Zero(t, processed)
	d.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	rs.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessDue_QueryError_Propagates(t *testing.T) {
	rs := &mockReminderStore{}
	rs.On("QueryDue", mock.Anything, seedNow, int32(50)).
		Return([]domain.ReminderRecord(nil), errors.New("throttled"))

	svc := newTestService(rs, nil, nil)
	_, err := svc.ProcessDue(context.Background(), 0)

	require.Error(t, err)
	assert.ErrorContains(t, err, "throttled")
}

// --- Archive tests ---

func TestArchive_ExportsFinishedRows(t *testing.T) {
	rs := &mockReminderStore{}
	a := &mockArchiveStore{}
	sentAt := seedNow.Add(-10 * 24 * time.Hour)
	rows := []domain.ReminderRecord{
		{ReminderID: "r1", Status: domain.ReminderSent, SentAt: &sentAt},
		{ReminderID: "r2", Status: domain.ReminderFailed, Error: "gateway unreachable"},
	}
	rs.On("QueryFinishedBefore", mock.Anything, seedNow.AddDate(0, 0, -7), int32(1000)).
		Return(rows, nil)
	a.On("PutArchive", mock.Anything, "reminders/2024-06-01.jsonl", mock.MatchedBy(func(body []byte) bool {
		lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
		return len(lines) == 2 && strings.Contains(lines[0], `"r1"`) && strings.Contains(lines[1], `"r2"`)
	})).Return("s3://archive/reminders/2024-06-01.jsonl", nil)

	svc := newTestService(rs, nil, a)
	count, err := svc.Archive(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	a.AssertExpectations(t)
}

func TestArchive_NothingToExport_NoUpload(t *testing.T) {
	rs := &mockReminderStore{}
	a := &mockArchiveStore{}
	rs.On("QueryFinishedBefore", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.ReminderRecord{}, nil)

	svc := newTestService(rs, nil, a)
	count, err := svc.Archive(context.Background())

	require.NoError(t, err)
	assert.Zero(t, count)
	a.AssertNotCalled(t, "PutArchive", mock.Anything, mock.Anything, mock.Anything)
}
