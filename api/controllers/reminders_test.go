package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath-crm/notify-backend/internal/reminders"
	"github.com/brightpath-crm/notify-backend/pkg/db/models"
	"github.com/brightpath-crm/notify-backend/pkg/enums"
	pkgerrors "github.com/brightpath-crm/notify-backend/pkg/errors"
)

type fakeReminderService struct {
	createFn func(ctx context.Context, params reminders.CreateParams) (*models.FollowUpReminder, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*models.FollowUpReminder, error)
	listFn   func(ctx context.Context, params reminders.ListParams) (*reminders.ListResult, error)
	updateFn func(ctx context.Context, id uuid.UUID, params reminders.UpdateParams) (*models.FollowUpReminder, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
	getDueFn func(ctx context.Context) ([]models.FollowUpReminder, error)
}

func (f *fakeReminderService) Create(ctx context.Context, params reminders.CreateParams) (*models.FollowUpReminder, error) {
	return f.createFn(ctx, params)
}

func (f *fakeReminderService) Get(ctx context.Context, id uuid.UUID) (*models.FollowUpReminder, error) {
	return f.getFn(ctx, id)
}

func (f *fakeReminderService) List(ctx context.Context, params reminders.ListParams) (*reminders.ListResult, error) {
	return f.listFn(ctx, params)
}

func (f *fakeReminderService) Update(ctx context.Context, id uuid.UUID, params reminders.UpdateParams) (*models.FollowUpReminder, error) {
	return f.updateFn(ctx, id, params)
}

func (f *fakeReminderService) Delete(ctx context.Context, id uuid.UUID) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeReminderService) GetDue(ctx context.Context) ([]models.FollowUpReminder, error) {
	return f.getDueFn(ctx)
}

func (f *fakeReminderService) ConvertDue(ctx context.Context) (int, error) { return 0, nil }

func (f *fakeReminderService) MarkOverdue(ctx context.Context) (int64, error) { return 0, nil }

func TestListRemindersForwardsFilters(t *testing.T) {
	var got reminders.ListParams
	svc := &fakeReminderService{
		listFn: func(ctx context.Context, params reminders.ListParams) (*reminders.ListResult, error) {
			got = params
			return &reminders.ListResult{Items: []models.FollowUpReminder{}}, nil
		},
	}
	handler := ListReminders(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/follow-up-reminders?customerId=cust-1&userId=user-1&status=pending&limit=10", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.CustomerID != "cust-1" || got.CreatedBy != "user-1" || got.Status != enums.ReminderStatusPending || got.Limit != 10 {
		t.Fatalf("unexpected params %+v", got)
	}
}

func TestListRemindersGetDue(t *testing.T) {
	svc := &fakeReminderService{
		getDueFn: func(ctx context.Context) ([]models.FollowUpReminder, error) {
			return []models.FollowUpReminder{{ID: uuid.New()}}, nil
		},
	}
	handler := ListReminders(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/follow-up-reminders?getDue=true", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	if items := data["items"].([]any); len(items) != 1 {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestListRemindersRejectsUnknownStatus(t *testing.T) {
	handler := ListReminders(&fakeReminderService{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/follow-up-reminders?status=snoozed", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateReminder(t *testing.T) {
	var got reminders.CreateParams
	svc := &fakeReminderService{
		createFn: func(ctx context.Context, params reminders.CreateParams) (*models.FollowUpReminder, error) {
			got = params
			return &models.FollowUpReminder{ID: uuid.New()}, nil
		},
	}
	handler := CreateReminder(svc, testLogger())

	payload := `{
		"customerId":"cust-1","customerName":"Acme Corp",
		"userId":"user-1","userName":"Priya","userEmail":"priya@example.com",
		"title":"Quarterly review","scheduledFor":"2025-06-10T09:00:00Z","priority":"high"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/follow-up-reminders", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if got.CustomerID != "cust-1" || got.CreatedBy != "user-1" || got.CreatedByEmail != "priya@example.com" {
		t.Fatalf("unexpected params %+v", got)
	}
	want := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	if !got.ScheduledFor.Equal(want) {
		t.Fatalf("scheduledFor = %s, want %s", got.ScheduledFor, want)
	}
	if got.Priority != enums.NotificationPriorityHigh {
		t.Fatalf("unexpected priority %s", got.Priority)
	}
}

func TestCreateReminderRejectsBadSchedule(t *testing.T) {
	handler := CreateReminder(&fakeReminderService{}, testLogger())

	payload := `{
		"customerId":"cust-1","customerName":"Acme Corp",
		"userId":"user-1","userEmail":"priya@example.com",
		"title":"Call back","scheduledFor":"tomorrow"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/follow-up-reminders", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateReminderForwardsPartialFields(t *testing.T) {
	target := uuid.New()
	var gotID uuid.UUID
	var got reminders.UpdateParams
	svc := &fakeReminderService{
		updateFn: func(ctx context.Context, id uuid.UUID, params reminders.UpdateParams) (*models.FollowUpReminder, error) {
			gotID = id
			got = params
			return &models.FollowUpReminder{ID: id}, nil
		},
	}
	handler := UpdateReminder(svc, testLogger())

	payload := `{"reminderId":"` + target.String() + `","status":"completed"}`
	req := httptest.NewRequest(http.MethodPut, "/api/follow-up-reminders", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotID != target {
		t.Fatalf("unexpected id %s", gotID)
	}
	if got.Status == nil || *got.Status != enums.ReminderStatusCompleted {
		t.Fatalf("unexpected params %+v", got)
	}
	if got.Title != nil || got.ScheduledFor != nil {
		t.Fatal("unset fields must stay nil")
	}
}

func TestDeleteReminder(t *testing.T) {
	target := uuid.New()
	svc := &fakeReminderService{
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			if id != target {
				t.Fatalf("unexpected id %s", id)
			}
			return nil
		},
	}
	handler := DeleteReminder(svc, testLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/follow-up-reminders?reminderId="+target.String(), nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestDeleteReminderNotFound(t *testing.T) {
	svc := &fakeReminderService{
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			return pkgerrors.New(pkgerrors.CodeNotFound, "reminder not found")
		},
	}
	handler := DeleteReminder(svc, testLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/follow-up-reminders?reminderId="+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
