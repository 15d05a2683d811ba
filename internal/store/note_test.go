package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jharlan/notedeck/internal/database"
	"github.com/jharlan/notedeck/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNoteUpsertIdempotent(t *testing.T) {
	ns := NewNoteStore(setupTestDB(t))

	note, err := ns.Upsert(&model.Note{Title: "Groceries", Content: "milk, eggs", Tags: []string{"home"}})
	if err != nil {
		t.Fatalf("upsert note: %v", err)
	}
	if note.ID == "" {
		t.Fatal("expected generated id")
	}

	again, err := ns.Upsert(note)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if again.ID != note.ID {
		t.Errorf("id changed: %q -> %q", note.ID, again.ID)
	}

	notes, err := ns.ListActive()
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 note after double upsert, got %d", len(notes))
	}
	if notes[0].Title != "Groceries" || notes[0].Content != "milk, eggs" {
		t.Errorf("fields not preserved: %+v", notes[0])
	}
	if len(notes[0].Tags) != 1 || notes[0].Tags[0] != "home" {
		t.Errorf("tags = %v, want [home]", notes[0].Tags)
	}
}

func TestNoteUpsertFillsDefaults(t *testing.T) {
	ns := NewNoteStore(setupTestDB(t))

	note, err := ns.Upsert(&model.Note{Title: "Bare"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if note.Starred || note.Pinned || note.Deleted {
		t.Errorf("flags should default false: %+v", note)
	}
	if note.Tags == nil || len(note.Tags) != 0 {
		t.Errorf("tags = %v, want empty slice", note.Tags)
	}
	if note.CreatedAt.IsZero() || note.UpdatedAt.IsZero() {
		t.Error("timestamps should be filled")
	}
}

func TestNoteGetByIDMiss(t *testing.T) {
	ns := NewNoteStore(setupTestDB(t))

	got, err := ns.GetByID("nope")
	if err != nil {
		t.Fatalf("get note: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing note")
	}
}

func TestNoteSoftDeleteRestoreRoundTrip(t *testing.T) {
	ns := NewNoteStore(setupTestDB(t))

	note, _ := ns.Upsert(&model.Note{Title: "Keep me", Content: "body", Tags: []string{"a", "b"}})

	if err := ns.SoftDelete(note.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	trashed, _ := ns.GetByID(note.ID)
	if !trashed.Deleted {
		t.Error("expected deleted flag set")
	}
	if trashed.DeletedAt == nil {
		t.Fatal("expected deleted_at set")
	}

	if err := ns.Restore(note.ID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	restored, _ := ns.GetByID(note.ID)
	if restored.Deleted {
		t.Error("expected deleted flag cleared")
	}
	if restored.DeletedAt != nil {
		t.Errorf("deleted_at = %v, want nil after restore", restored.DeletedAt)
	}
	if restored.Title != note.Title || restored.Content != note.Content {
		t.Errorf("fields changed across round trip: %+v", restored)
	}
	if len(restored.Tags) != 2 {
		t.Errorf("tags = %v, want 2 entries", restored.Tags)
	}
}

func TestNoteSoftDeleteMissing(t *testing.T) {
	ns := NewNoteStore(setupTestDB(t))

	if err := ns.SoftDelete("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := ns.Restore("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestNoteActiveExcludesDeleted(t *testing.T) {
	ns := NewNoteStore(setupTestDB(t))

	kept, _ := ns.Upsert(&model.Note{Title: "Kept", WorkspaceID: "ws1", Starred: true})
	gone, _ := ns.Upsert(&model.Note{Title: "Gone", WorkspaceID: "ws1", Starred: true})
	ns.SoftDelete(gone.ID)

	active, err := ns.ListActive()
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != kept.ID {
		t.Fatalf("active = %v, want only %s", active, kept.ID)
	}

	// Secondary-index listings must apply the same deletion predicate.
	byWS, _ := ns.ListByWorkspace("ws1")
	if len(byWS) != 1 || byWS[0].ID != kept.ID {
		t.Errorf("workspace listing leaked a deleted note: %v", byWS)
	}
	starred, _ := ns.ListStarred()
	if len(starred) != 1 || starred[0].ID != kept.ID {
		t.Errorf("starred listing leaked a deleted note: %v", starred)
	}

	deleted, _ := ns.ListDeleted()
	if len(deleted) != 1 || deleted[0].ID != gone.ID {
		t.Errorf("deleted = %v, want only %s", deleted, gone.ID)
	}
}

func TestNotePinnedBeatsRecency(t *testing.T) {
	ns := NewNoteStore(setupTestDB(t))

	pinned, _ := ns.Upsert(&model.Note{Title: "A", Pinned: true})
	time.Sleep(5 * time.Millisecond)
	ns.Upsert(&model.Note{Title: "B"})

	notes, err := ns.ListActive()
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].ID != pinned.ID {
		t.Errorf("notes[0] = %q, want pinned note first despite older update", notes[0].Title)
	}
}

func TestNoteRecencyWithinPartition(t *testing.T) {
	ns := NewNoteStore(setupTestDB(t))

	older, _ := ns.Upsert(&model.Note{Title: "older"})
	time.Sleep(5 * time.Millisecond)
	newer, _ := ns.Upsert(&model.Note{Title: "newer"})

	notes, _ := ns.ListActive()
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].ID != newer.ID || notes[1].ID != older.ID {
		t.Errorf("order = [%s, %s], want newest first", notes[0].Title, notes[1].Title)
	}
}

func TestNoteHardDelete(t *testing.T) {
	ns := NewNoteStore(setupTestDB(t))

	note, _ := ns.Upsert(&model.Note{Title: "doomed"})
	if err := ns.Delete(note.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := ns.GetByID(note.ID)
	if got != nil {
		t.Error("expected nil after hard delete")
	}

	// Deleting again is a no-op, not an error.
	if err := ns.Delete(note.ID); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestNoteUpsertClearsStaleDeletedAt(t *testing.T) {
	ns := NewNoteStore(setupTestDB(t))

	now := time.Now().UTC()
	note, err := ns.Upsert(&model.Note{Title: "x", Deleted: false, DeletedAt: &now})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if note.DeletedAt != nil {
		t.Error("active note must not carry deleted_at")
	}
}
