package notifications

import (
	"strings"
	"testing"

	"github.com/brightpath-crm/notify-backend/pkg/db/models"
	dbtypes "github.com/brightpath-crm/notify-backend/pkg/db/types"
	"github.com/brightpath-crm/notify-backend/pkg/enums"
)

func TestRenderBrowserUsesRecordVerbatim(t *testing.T) {
	record := &models.Notification{Title: "Heads up", Message: "Something happened"}

	rendered, ok := Render(enums.ChannelBrowser, record)
	if !ok {
		t.Fatal("browser channel must always render")
	}
	if rendered.Subject != "Heads up" || rendered.Text != "Something happened" {
		t.Fatalf("unexpected payload %+v", rendered)
	}
}

func TestRenderEmailCoverage(t *testing.T) {
	cases := []struct {
		typ  enums.NotificationType
		want bool
	}{
		{enums.NotificationTypeLeadAssigned, true},
		{enums.NotificationTypeWelcomeMessage, true},
		{enums.NotificationTypeFollowUpReminder, true},
		{enums.NotificationTypeCustomerUpdated, false},
		{enums.NotificationTypeSystemAlert, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.typ), func(t *testing.T) {
			record := &models.Notification{Type: tc.typ, Title: "t", Message: "m", RecipientName: "Priya"}
			rendered, ok := Render(enums.ChannelEmail, record)
			if ok != tc.want {
				t.Fatalf("Render(email, %s) ok = %v, want %v", tc.typ, ok, tc.want)
			}
			if ok && (rendered.Subject == "" || rendered.HTML == "" || rendered.Text == "") {
				t.Fatalf("email payload incomplete: %+v", rendered)
			}
		})
	}
}

func TestRenderWhatsAppUsesLeadName(t *testing.T) {
	record := &models.Notification{
		Type:     enums.NotificationTypeLeadAssigned,
		Title:    "New lead",
		Message:  "Call them today",
		Metadata: dbtypes.JSONMap{"leadName": "Acme Corp"},
	}

	rendered, ok := Render(enums.ChannelWhatsApp, record)
	if !ok {
		t.Fatal("expected whatsapp template for lead_assigned")
	}
	if rendered.Subject != "" {
		t.Fatalf("chat payload must not carry a subject, got %q", rendered.Subject)
	}
	if !strings.Contains(rendered.Text, "Acme Corp") {
		t.Fatalf("expected lead name in text, got %q", rendered.Text)
	}
}

func TestRenderUnknownChannel(t *testing.T) {
	record := &models.Notification{Type: enums.NotificationTypeLeadAssigned}
	if _, ok := Render(enums.ChannelSMS, record); ok {
		t.Fatal("sms has no templates yet")
	}
	if _, ok := Render(enums.Channel("pigeon"), record); ok {
		t.Fatal("unknown channels must not render")
	}
}
