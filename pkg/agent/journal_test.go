package agent

import (
	"path/filepath"
	"testing"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(filepath.Join(t.TempDir(), "agent", "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalStartsAtZero(t *testing.T) {
	j := openTestJournal(t)
	total, err := j.Traffic()
	if err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if total != 0 {
		t.Fatalf("fresh journal counter = %v, want 0", total)
	}
}

func TestJournalAccumulates(t *testing.T) {
	j := openTestJournal(t)
	if _, err := j.AddTraffic(1.5); err != nil {
		t.Fatalf("add: %v", err)
	}
	total, err := j.AddTraffic(2.5)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if total != 4 {
		t.Fatalf("total after adds = %v, want 4", total)
	}
}

func TestJournalSetOverwrites(t *testing.T) {
	j := openTestJournal(t)
	if _, err := j.AddTraffic(100); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := j.SetTraffic(7); err != nil {
		t.Fatalf("set: %v", err)
	}
	total, err := j.Traffic()
	if err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if total != 7 {
		t.Fatalf("total after set = %v, want 7", total)
	}
}

func TestJournalSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := OpenJournal(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	if _, err := j.AddTraffic(42); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	j, err = OpenJournal(path)
	if err != nil {
		t.Fatalf("reopen journal: %v", err)
	}
	defer j.Close()
	total, err := j.Traffic()
	if err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if total != 42 {
		t.Fatalf("total after reopen = %v, want 42", total)
	}
}
