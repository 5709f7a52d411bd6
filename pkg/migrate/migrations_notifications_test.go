package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestNotificationsMigrationContainsDeliveryColumns(t *testing.T) {
	content := readMigration(t, "*_create_notifications.sql")

	checks := []string{
		"CREATE TABLE notifications",
		"attempts integer NOT NULL DEFAULT 0",
		"max_attempts integer NOT NULL DEFAULT 3",
		"email_sent boolean NOT NULL DEFAULT false",
		"whatsapp_sent boolean NOT NULL DEFAULT false",
		"browser_sent boolean NOT NULL DEFAULT false",
		"errors jsonb NOT NULL DEFAULT '[]'",
		"WHERE status = 'pending'",
		"WHERE read_at IS NULL",
		"DROP TABLE notifications",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestRemindersMigrationContainsConversionGate(t *testing.T) {
	content := readMigration(t, "*_create_follow_up_reminders.sql")

	checks := []string{
		"CREATE TABLE follow_up_reminders",
		"created_by_email text NOT NULL",
		"notification_sent boolean NOT NULL DEFAULT false",
		"WHERE status = 'pending' AND notification_sent = false",
		"DROP TABLE follow_up_reminders",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
