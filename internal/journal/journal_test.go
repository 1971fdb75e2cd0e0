package journal

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("cannot open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalAppendAndRecent(t *testing.T) {
	j := openTestJournal(t)

	records := []Record{
		{URL: "https://cdn.test/a.js", Type: "script", Outcome: "loaded", Attempts: 1, Duration: 120 * time.Millisecond},
		{URL: "https://cdn.test/b.css", Type: "style", Outcome: "failed", Detail: "timeout after 10s", Attempts: 3, Duration: 30 * time.Second},
	}
	for _, r := range records {
		if err := j.Append(r); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	got, err := j.Recent(10)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	// Newest first
	if got[0].URL != "https://cdn.test/b.css" {
		t.Fatalf("expected newest record first, got %s", got[0].URL)
	}
	if got[0].Outcome != "failed" || got[0].Detail != "timeout after 10s" || got[0].Attempts != 3 {
		t.Fatalf("unexpected record %+v", got[0])
	}
	if got[0].Duration != 30*time.Second {
		t.Fatalf("expected duration round-trip, got %s", got[0].Duration)
	}
	if got[0].At.IsZero() {
		t.Fatal("expected a timestamp assigned on append")
	}
	if got[1].URL != "https://cdn.test/a.js" || got[1].Outcome != "loaded" {
		t.Fatalf("unexpected record %+v", got[1])
	}
}

func TestJournalRecentLimit(t *testing.T) {
	j := openTestJournal(t)
	for i := 0; i < 5; i++ {
		if err := j.Append(Record{URL: "u", Type: "fetch", Outcome: "loaded", Attempts: 1}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}
	got, err := j.Recent(3)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected the limit honored, got %d records", len(got))
	}
}

func TestJournalEmpty(t *testing.T) {
	j := openTestJournal(t)
	got, err := j.Recent(10)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no records, got %d", len(got))
	}
}

func TestJournalExplicitTimestamp(t *testing.T) {
	j := openTestJournal(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := j.Append(Record{URL: "u", Type: "fetch", Outcome: "loaded", Attempts: 1, At: at}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	got, err := j.Recent(1)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if !got[0].At.Equal(at) {
		t.Fatalf("expected %s, got %s", at, got[0].At)
	}
}
