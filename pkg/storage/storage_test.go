package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Logf("Warning: failed to close storage: %v", err)
		}
	})
	return s
}

func mustCreate(t *testing.T, s *Storage, draft EventDraft) *Event {
	t.Helper()

	ev, err := s.Create(context.Background(), draft)
	if err != nil {
		t.Fatalf("Failed to create event %q: %v", draft.Title, err)
	}
	return ev
}

func TestSchemaInitializationIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "events.db")

	s1, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	mustCreate(t, s1, EventDraft{
		Title:    "First",
		Location: "Lagos",
		Category: CategoryTech,
		Date:     "2025-10-01",
	})
	if err := s1.Close(); err != nil {
		t.Fatalf("Failed to close storage: %v", err)
	}

	// Reopening must not fail or lose data.
	s2, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen storage: %v", err)
	}
	defer func() {
		if err := s2.Close(); err != nil {
			t.Logf("Warning: failed to close storage: %v", err)
		}
	}()

	page, err := s2.Search(context.Background(), SearchFilter{})
	if err != nil {
		t.Fatalf("Search after reopen failed: %v", err)
	}
	if page.TotalCount != 1 {
		t.Errorf("Expected 1 event after reopen, got %d", page.TotalCount)
	}
}

func TestFullTextAvailable(t *testing.T) {
	s := newTestStorage(t)

	// The embedded SQLite build ships with FTS5.
	if !s.FullTextAvailable() {
		t.Error("Expected FTS5 to be available in the embedded build")
	}
}

func TestMaintenanceOperations(t *testing.T) {
	s := newTestStorage(t)
	mustCreate(t, s, EventDraft{
		Title:    "Maintenance fodder",
		Location: "Lagos",
		Category: CategoryTech,
		Date:     "2025-10-01",
	})

	ops := []struct {
		name string
		run  func() error
	}{
		{"IntegrityCheck", s.IntegrityCheck},
		{"FTSIntegrityCheck", s.FTSIntegrityCheck},
		{"FTSRebuild", s.FTSRebuild},
		{"Optimize", s.Optimize},
		{"Analyze", s.Analyze},
		{"WALCheckpoint", s.WALCheckpoint},
		{"Vacuum", s.Vacuum},
	}

	for _, op := range ops {
		if err := op.run(); err != nil {
			t.Errorf("%s failed: %v", op.name, err)
		}
	}
}

func TestFullTextIndexFollowsWrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	ev := mustCreate(t, s, EventDraft{
		Title:       "Jazz Night",
		Description: "An evening of saxophone",
		Location:    "Lagos",
		Category:    CategoryMusic,
		Date:        "2025-10-01",
	})

	// The insert trigger must make the row findable immediately.
	page, err := s.Search(ctx, SearchFilter{Keyword: "saxophone"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.TotalCount != 1 {
		t.Fatalf("Expected new event in full-text index, got %d matches", page.TotalCount)
	}

	// After an update the old tokens must stop matching and the new
	// ones must start.
	newTitle := "Highlife Evening"
	if _, err := s.Update(ctx, ev.ID, EventPatch{Title: &newTitle}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	page, err = s.Search(ctx, SearchFilter{Keyword: "jazz"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.TotalCount != 0 {
		t.Errorf("Expected stale title to be gone from the index, got %d matches", page.TotalCount)
	}

	page, err = s.Search(ctx, SearchFilter{Keyword: "highlife"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.TotalCount != 1 {
		t.Errorf("Expected updated title in the index, got %d matches", page.TotalCount)
	}

	// And after delete nothing must match.
	if err := s.Delete(ctx, ev.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	page, err = s.Search(ctx, SearchFilter{Keyword: "highlife"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.TotalCount != 0 {
		t.Errorf("Expected deleted event out of the index, got %d matches", page.TotalCount)
	}
}
