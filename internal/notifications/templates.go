package notifications

import (
	"fmt"

	"github.com/brightpath-crm/notify-backend/pkg/db/models"
	"github.com/brightpath-crm/notify-backend/pkg/enums"
)

// Rendered is a channel-specific payload produced from a notification record.
// Email uses all three fields; chat channels use Text only.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// Render builds the delivery payload for one channel. The second return is
// false when no template exists for the type/channel pair; callers skip the
// channel without recording an attempt.
func Render(channel enums.Channel, n *models.Notification) (*Rendered, bool) {
	switch channel {
	case enums.ChannelBrowser:
		// The record itself is the browser payload.
		return &Rendered{Subject: n.Title, Text: n.Message}, true
	case enums.ChannelEmail:
		return renderEmail(n)
	case enums.ChannelWhatsApp:
		return renderWhatsApp(n)
	}
	return nil, false
}

func renderEmail(n *models.Notification) (*Rendered, bool) {
	greeting := n.RecipientName
	if greeting == "" {
		greeting = "there"
	}

	switch n.Type {
	case enums.NotificationTypeLeadAssigned:
		subject := "New lead assigned: " + subjectName(n)
		text := fmt.Sprintf(
			"Hi %s,\n\nA new lead has been assigned to you: %s.\n\n%s\n\nOpen the CRM to follow up.",
			greeting, subjectName(n), n.Message,
		)
		html := fmt.Sprintf(
			`<h2>New lead assigned</h2><p>Hi %s,</p><p>A new lead has been assigned to you: <strong>%s</strong>.</p><p>%s</p><p>Open the CRM to follow up.</p>`,
			greeting, subjectName(n), n.Message,
		)
		return &Rendered{Subject: subject, HTML: html, Text: text}, true

	case enums.NotificationTypeWelcomeMessage:
		subject := "Welcome aboard, " + subjectName(n)
		text := fmt.Sprintf(
			"Hi %s,\n\nWelcome! Your account is ready.\n\n%s\n\nWe're glad to have you with us.",
			subjectName(n), n.Message,
		)
		html := fmt.Sprintf(
			`<h2>Welcome aboard</h2><p>Hi %s,</p><p>Welcome! Your account is ready.</p><p>%s</p><p>We're glad to have you with us.</p>`,
			subjectName(n), n.Message,
		)
		return &Rendered{Subject: subject, HTML: html, Text: text}, true

	case enums.NotificationTypeFollowUpReminder:
		subject := "Follow-up due: " + subjectName(n)
		text := fmt.Sprintf(
			"Hi %s,\n\nYour follow-up with %s is due.\n\n%s\n\nOpen the CRM to see the details.",
			greeting, subjectName(n), n.Message,
		)
		html := fmt.Sprintf(
			`<h2>Follow-up due</h2><p>Hi %s,</p><p>Your follow-up with <strong>%s</strong> is due.</p><p>%s</p><p>Open the CRM to see the details.</p>`,
			greeting, subjectName(n), n.Message,
		)
		return &Rendered{Subject: subject, HTML: html, Text: text}, true
	}
	return nil, false
}

func renderWhatsApp(n *models.Notification) (*Rendered, bool) {
	switch n.Type {
	case enums.NotificationTypeLeadAssigned:
		text := fmt.Sprintf("*New lead assigned*\n%s\n\n%s", subjectName(n), n.Message)
		return &Rendered{Text: text}, true
	case enums.NotificationTypeWelcomeMessage:
		text := fmt.Sprintf("*Welcome, %s!*\n%s", subjectName(n), n.Message)
		return &Rendered{Text: text}, true
	case enums.NotificationTypeFollowUpReminder:
		text := fmt.Sprintf("*Follow-up due*\n%s\n\n%s", subjectName(n), n.Message)
		return &Rendered{Text: text}, true
	}
	return nil, false
}

// subjectName picks the most specific name available on the record.
func subjectName(n *models.Notification) string {
	if n.CustomerName != nil && *n.CustomerName != "" {
		return *n.CustomerName
	}
	if name := n.Metadata["leadName"]; name != "" {
		return name
	}
	if name := n.Metadata["customerName"]; name != "" {
		return name
	}
	if n.RecipientName != "" {
		return n.RecipientName
	}
	return n.Title
}
