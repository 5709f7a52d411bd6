package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

type row struct {
	createdAt time.Time
	id        uuid.UUID
}

func (r row) CursorKey() (time.Time, uuid.UUID) { return r.createdAt, r.id }

func makeRows(n int) []row {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]row, n)
	for i := range rows {
		rows[i] = row{createdAt: base.Add(-time.Duration(i) * time.Minute), id: uuid.New()}
	}
	return rows
}

func TestPageTrimsBufferedRow(t *testing.T) {
	rows := makeRows(6)

	page, next := Page(rows, 5)
	if len(page) != 5 {
		t.Fatalf("page size = %d, want 5", len(page))
	}
	if next == nil {
		t.Fatal("expected a next cursor when a buffered row exists")
	}
	if next.ID != rows[4].id || !next.CreatedAt.Equal(rows[4].createdAt) {
		t.Fatal("cursor must point at the last returned row")
	}
}

func TestPageCursorDoesNotSkipRows(t *testing.T) {
	rows := makeRows(8)

	page, next := Page(rows, 5)
	if len(page) != 5 || next == nil {
		t.Fatalf("unexpected first page: len=%d next=%v", len(page), next)
	}

	// Apply the repositories' filter: strictly below the cursor.
	var remaining []row
	for _, r := range rows {
		if r.createdAt.Before(next.CreatedAt) {
			remaining = append(remaining, r)
		}
	}
	if len(remaining) != 3 {
		t.Fatalf("expected 3 remaining rows, got %d", len(remaining))
	}
	if remaining[0].id != rows[5].id {
		t.Fatal("the row after the page boundary must open the next page")
	}
}

func TestPageLastPage(t *testing.T) {
	rows := makeRows(3)

	page, next := Page(rows, 5)
	if len(page) != 3 {
		t.Fatalf("page size = %d, want 3", len(page))
	}
	if next != nil {
		t.Fatal("no cursor expected on the last page")
	}
}

func TestNormalizeLimitBounds(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("NormalizeLimit(0) = %d", got)
	}
	if got := NormalizeLimit(1000); got != MaxLimit {
		t.Fatalf("NormalizeLimit(1000) = %d", got)
	}
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("LimitWithBuffer(10) = %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := Cursor{
		CreatedAt: time.Date(2025, 6, 1, 9, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	parsed, err := ParseCursor(EncodeCursor(cursor))
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	if !parsed.CreatedAt.Equal(cursor.CreatedAt) || parsed.ID != cursor.ID {
		t.Fatalf("round trip mismatch: %+v vs %+v", parsed, cursor)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	for _, value := range []string{"not-base64!!", "aGVsbG8=", "aGVsbG98d29ybGQ="} {
		if _, err := ParseCursor(value); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}
