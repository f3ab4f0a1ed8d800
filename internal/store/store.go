package store

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store persists notes. Only the latest content of each note is kept;
// the live relay never touches this layer.
type Store struct {
	db *sql.DB
}

// Note mirrors the document shape the client consumes. The `_id` key
// is kept for wire compatibility with the original API.
type Note struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	log.Printf("Note store initialized at %s", dbPath)
	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CreateNote inserts a note with empty content and returns it.
func (s *Store) CreateNote(title string) (*Note, error) {
	note := &Note{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   "",
		UpdatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		"INSERT INTO notes (id, title, content, updated_at) VALUES (?, ?, ?, ?)",
		note.ID, note.Title, note.Content, note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return note, nil
}

// GetNote returns nil without error when the note does not exist.
func (s *Store) GetNote(id string) (*Note, error) {
	row := s.db.QueryRow(
		"SELECT id, title, content, updated_at FROM notes WHERE id = ?",
		id,
	)

	var note Note
	err := row.Scan(&note.ID, &note.Title, &note.Content, &note.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// UpdateContent overwrites a note's content (last write wins) and
// refreshes its timestamp. Returns the updated note, or nil if the
// note does not exist.
func (s *Store) UpdateContent(id, content string) (*Note, error) {
	now := time.Now().UTC()
	result, err := s.db.Exec(
		"UPDATE notes SET content = ?, updated_at = ? WHERE id = ?",
		content, now, id,
	)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}

	return s.GetNote(id)
}

// CountNotes returns the total number of stored notes.
func (s *Store) CountNotes() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&count)
	return count, err
}
