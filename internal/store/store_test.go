package store

import (
	"os"
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "notively-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := New(dbPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to create store: %v", err)
	}

	cleanup := func() {
		s.Close()
		os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

func TestStoreCreation(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	if s == nil {
		t.Fatal("Store should not be nil")
	}
}

func TestCreateAndGetNote(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	created, err := s.CreateNote("Meeting notes")
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Created note should have an ID")
	}
	if created.Content != "" {
		t.Errorf("New note content should be empty, got %q", created.Content)
	}

	note, err := s.GetNote(created.ID)
	if err != nil {
		t.Fatalf("Failed to get note: %v", err)
	}
	if note == nil {
		t.Fatal("Note should exist")
	}
	if note.Title != "Meeting notes" {
		t.Errorf("Expected title 'Meeting notes', got %q", note.Title)
	}
}

func TestGetNoteNotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	note, err := s.GetNote("missing-id")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if note != nil {
		t.Error("Non-existent note should return nil")
	}
}

func TestUpdateContent(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	created, err := s.CreateNote("Draft")
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}

	updated, err := s.UpdateContent(created.ID, "hello world")
	if err != nil {
		t.Fatalf("Failed to update content: %v", err)
	}
	if updated == nil {
		t.Fatal("Updated note should not be nil")
	}
	if updated.Content != "hello world" {
		t.Errorf("Expected updated content, got %q", updated.Content)
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Error("UpdatedAt should not move backwards on update")
	}

	// Last write wins
	updated, err = s.UpdateContent(created.ID, "goodbye")
	if err != nil {
		t.Fatalf("Failed to update content again: %v", err)
	}
	if updated.Content != "goodbye" {
		t.Errorf("Expected latest content, got %q", updated.Content)
	}
}

func TestUpdateContentNotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	note, err := s.UpdateContent("missing-id", "content")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if note != nil {
		t.Error("Updating a non-existent note should return nil")
	}
}

func TestCountNotes(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	for i := 0; i < 3; i++ {
		if _, err := s.CreateNote("note"); err != nil {
			t.Fatalf("Failed to create note: %v", err)
		}
	}

	count, err := s.CountNotes()
	if err != nil {
		t.Fatalf("Failed to count notes: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 notes, got %d", count)
	}
}
