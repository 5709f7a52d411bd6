package reminders

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/brightpath-crm/notify-backend/internal/notifications"
	"github.com/brightpath-crm/notify-backend/pkg/db/models"
	"github.com/brightpath-crm/notify-backend/pkg/enums"
	pkgerrors "github.com/brightpath-crm/notify-backend/pkg/errors"
	"github.com/brightpath-crm/notify-backend/pkg/logger"
	"github.com/brightpath-crm/notify-backend/pkg/pagination"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type fakeRepo struct {
	mu        sync.Mutex
	reminders map[uuid.UUID]*models.FollowUpReminder

	flipRejects bool
}

func newFakeRepo(reminders ...*models.FollowUpReminder) *fakeRepo {
	repo := &fakeRepo{reminders: map[uuid.UUID]*models.FollowUpReminder{}}
	for _, reminder := range reminders {
		repo.reminders[reminder.ID] = reminder
	}
	return repo
}

func (f *fakeRepo) get(id uuid.UUID) *models.FollowUpReminder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reminders[id]
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, reminder *models.FollowUpReminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders[reminder.ID] = reminder
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FollowUpReminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reminder, ok := f.reminders[id]
	if !ok {
		return nil, nil
	}
	clone := *reminder
	return &clone, nil
}

func (f *fakeRepo) List(ctx context.Context, params listRemindersParams) ([]models.FollowUpReminder, *pagination.Cursor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.FollowUpReminder
	for _, reminder := range f.reminders {
		if params.CustomerID != "" && reminder.CustomerID != params.CustomerID {
			continue
		}
		if params.CreatedBy != "" && reminder.CreatedBy != params.CreatedBy {
			continue
		}
		if params.Status != "" && reminder.Status != params.Status {
			continue
		}
		out = append(out, *reminder)
	}
	return out, nil, nil
}

func (f *fakeRepo) Update(ctx context.Context, reminder *models.FollowUpReminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reminders[reminder.ID]; !ok {
		return errors.New("reminder not found")
	}
	clone := *reminder
	f.reminders[reminder.ID] = &clone
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reminders[id]; !ok {
		return false, nil
	}
	delete(f.reminders, id)
	return true, nil
}

func (f *fakeRepo) FindDueUnsent(ctx context.Context, now time.Time, limit int) ([]models.FollowUpReminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.FollowUpReminder
	for _, reminder := range f.reminders {
		if !reminder.Due(now) {
			continue
		}
		out = append(out, *reminder)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkNotificationSent(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flipRejects {
		return false, nil
	}
	reminder, ok := f.reminders[id]
	if !ok || reminder.NotificationSent {
		return false, nil
	}
	reminder.NotificationSent = true
	return true, nil
}

func (f *fakeRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, reminder := range f.reminders {
		if reminder.Status == enums.ReminderStatusPending && reminder.NotificationSent && reminder.ScheduledFor.Before(now) {
			reminder.Status = enums.ReminderStatusOverdue
			count++
		}
	}
	return count, nil
}

type fakeEnqueuer struct {
	mu      sync.Mutex
	created []notifications.CreateParams
	err     error
}

func (f *fakeEnqueuer) Create(ctx context.Context, params notifications.CreateParams) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, params)
	return &models.Notification{ID: uuid.New()}, nil
}

func newTestService(t *testing.T, repo Repository, enqueuer NotificationEnqueuer, now time.Time) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repository: repo,
		Notifier:   enqueuer,
		Logger:     testLogger(),
		Now:        func() time.Time { return now },
	})
	require.NoError(t, err)
	return svc
}

func dueReminder(now time.Time) *models.FollowUpReminder {
	return &models.FollowUpReminder{
		ID:             uuid.New(),
		CustomerID:     "cust-1",
		CustomerName:   "Acme Corp",
		CreatedBy:      "user-1",
		CreatedByName:  "Priya",
		CreatedByEmail: "priya@example.com",
		Title:          "Quarterly review",
		Description:    "Walk through renewal terms",
		ScheduledFor:   now.Add(-time.Minute),
		Priority:       enums.NotificationPriorityHigh,
		Status:         enums.ReminderStatusPending,
	}
}

func TestConvertDueEnqueuesNotification(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	reminder := dueReminder(now)
	repo := newFakeRepo(reminder)
	enqueuer := &fakeEnqueuer{}
	svc := newTestService(t, repo, enqueuer, now)

	converted, err := svc.ConvertDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, converted)
	require.Len(t, enqueuer.created, 1)

	params := enqueuer.created[0]
	assert.Equal(t, enums.NotificationTypeFollowUpReminder, params.Type)
	assert.Equal(t, enums.NotificationPriorityHigh, params.Priority)
	assert.Equal(t, "Follow-up reminder: Acme Corp", params.Title)
	assert.Contains(t, params.Message, "Quarterly review")
	assert.Contains(t, params.Message, "Walk through renewal terms")
	assert.Equal(t, "user-1", params.RecipientID)
	assert.Equal(t, "priya@example.com", params.RecipientEmail)
	assert.Equal(t, []enums.Channel{enums.ChannelEmail, enums.ChannelBrowser}, params.Channels)
	require.NotNil(t, params.ReminderID)
	assert.Equal(t, reminder.ID.String(), *params.ReminderID)

	assert.True(t, repo.get(reminder.ID).NotificationSent)
}

func TestConvertDueIsOneShot(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	reminder := dueReminder(now)
	repo := newFakeRepo(reminder)
	enqueuer := &fakeEnqueuer{}
	svc := newTestService(t, repo, enqueuer, now)

	converted, err := svc.ConvertDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, converted)

	converted, err = svc.ConvertDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, converted)
	assert.Len(t, enqueuer.created, 1, "a reminder must never produce two notifications")
}

func TestConvertDueSkipsWhenGateAlreadyFlipped(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	reminder := dueReminder(now)
	repo := newFakeRepo(reminder)
	repo.flipRejects = true
	enqueuer := &fakeEnqueuer{}
	svc := newTestService(t, repo, enqueuer, now)

	converted, err := svc.ConvertDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, converted)
	assert.Empty(t, enqueuer.created)
}

func TestConvertDueReportsEnqueueFailure(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	reminder := dueReminder(now)
	repo := newFakeRepo(reminder)
	enqueuer := &fakeEnqueuer{err: errors.New("queue down")}
	svc := newTestService(t, repo, enqueuer, now)

	converted, err := svc.ConvertDue(context.Background())
	require.Error(t, err)
	assert.Zero(t, converted)
	assert.True(t, repo.get(reminder.ID).NotificationSent, "gate stays flipped after failed enqueue")
}

func TestConvertDueIgnoresFutureReminders(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	reminder := dueReminder(now)
	reminder.ScheduledFor = now.Add(time.Hour)
	repo := newFakeRepo(reminder)
	enqueuer := &fakeEnqueuer{}
	svc := newTestService(t, repo, enqueuer, now)

	converted, err := svc.ConvertDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, converted)
}

func TestCreateValidation(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, newFakeRepo(), &fakeEnqueuer{}, now)

	valid := CreateParams{
		CustomerID:     "cust-1",
		CustomerName:   "Acme Corp",
		CreatedBy:      "user-1",
		CreatedByEmail: "priya@example.com",
		Title:          "Call back",
		ScheduledFor:   now.Add(time.Hour),
	}

	cases := []struct {
		name   string
		mutate func(*CreateParams)
	}{
		{"missing customer", func(p *CreateParams) { p.CustomerID = "" }},
		{"missing creator", func(p *CreateParams) { p.CreatedBy = "" }},
		{"missing creator email", func(p *CreateParams) { p.CreatedByEmail = "" }},
		{"missing title", func(p *CreateParams) { p.Title = "" }},
		{"missing schedule", func(p *CreateParams) { p.ScheduledFor = time.Time{} }},
		{"unknown priority", func(p *CreateParams) { p.Priority = enums.NotificationPriority("extreme") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := valid
			tc.mutate(&params)

			_, err := svc.Create(context.Background(), params)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}

	reminder, err := svc.Create(context.Background(), valid)
	require.NoError(t, err)
	assert.Equal(t, enums.ReminderStatusPending, reminder.Status)
	assert.Equal(t, enums.NotificationPriorityMedium, reminder.Priority)
	assert.False(t, reminder.NotificationSent)
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	reminder := dueReminder(now)
	repo := newFakeRepo(reminder)
	svc := newTestService(t, repo, &fakeEnqueuer{}, now)

	title := "Renewal call"
	status := enums.ReminderStatusCompleted
	updated, err := svc.Update(context.Background(), reminder.ID, UpdateParams{Title: &title, Status: &status})
	require.NoError(t, err)

	assert.Equal(t, "Renewal call", updated.Title)
	assert.Equal(t, enums.ReminderStatusCompleted, updated.Status)
	assert.Equal(t, reminder.Description, updated.Description, "unset fields stay put")
}

func TestUpdateRejectsEmptyTitle(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	reminder := dueReminder(now)
	svc := newTestService(t, newFakeRepo(reminder), &fakeEnqueuer{}, now)

	empty := ""
	_, err := svc.Update(context.Background(), reminder.ID, UpdateParams{Title: &empty})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestGetAndDeleteNotFound(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, newFakeRepo(), &fakeEnqueuer{}, now)

	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	err = svc.Delete(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestMarkOverdueTransitionsNotifiedReminders(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	notified := dueReminder(now)
	notified.NotificationSent = true
	fresh := dueReminder(now)
	repo := newFakeRepo(notified, fresh)
	svc := newTestService(t, repo, &fakeEnqueuer{}, now)

	count, err := svc.MarkOverdue(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, enums.ReminderStatusOverdue, repo.get(notified.ID).Status)
	assert.Equal(t, enums.ReminderStatusPending, repo.get(fresh.ID).Status, "unnotified reminders wait for conversion")
}
