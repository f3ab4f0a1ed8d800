package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notively/notively/internal/relay"
	"github.com/notively/notively/internal/store"
)

type API struct {
	hub   *relay.Hub
	notes *store.Store
}

func New(hub *relay.Hub, notes *store.Store) *API {
	return &API{
		hub:   hub,
		notes: notes,
	}
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"active_rooms":   a.hub.GetRoomCount(),
		"active_clients": a.hub.GetClientCount(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}

	if a.notes != nil {
		if count, err := a.notes.CountNotes(); err == nil {
			stats["total_notes"] = count
		}
	}

	jsonResponse(w, http.StatusOK, stats)
}

// Note handlers

type CreateNoteRequest struct {
	Title string `json:"title"`
}

type UpdateNoteRequest struct {
	Content string `json:"content"`
}

func (a *API) CreateNoteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := a.notes.CreateNote(req.Title)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to create note")
		return
	}

	jsonResponse(w, http.StatusCreated, note)
}

func (a *API) GetNoteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	noteID, ok := noteIDFromPath(w, r)
	if !ok {
		return
	}

	note, err := a.notes.GetNote(noteID)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to get note")
		return
	}
	if note == nil {
		errorResponse(w, http.StatusNotFound, "Not found")
		return
	}

	jsonResponse(w, http.StatusOK, note)
}

// UpdateNoteHandler is the autosave target: it overwrites the note's
// content with whatever the client holds. Persistence failures stay on
// this request and never touch the relay path.
func (a *API) UpdateNoteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	noteID, ok := noteIDFromPath(w, r)
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := a.notes.UpdateContent(noteID, req.Content)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to update note")
		return
	}
	if note == nil {
		errorResponse(w, http.StatusNotFound, "Not found")
		return
	}

	jsonResponse(w, http.StatusOK, note)
}

// noteIDFromPath extracts and validates the note ID from /notes/{id}.
// Writes a 400 response and returns false for malformed IDs.
func noteIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	path := strings.TrimPrefix(r.URL.Path, "/notes/")
	noteID := strings.TrimSuffix(path, "/")

	if noteID == "" {
		errorResponse(w, http.StatusBadRequest, "Note ID is required")
		return "", false
	}
	if _, err := uuid.Parse(noteID); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid ID")
		return "", false
	}
	return noteID, true
}

func (a *API) NotesRouter(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/notes")

	// /notes or /notes/
	if path == "" || path == "/" {
		switch r.Method {
		case http.MethodPost:
			a.CreateNoteHandler(w, r)
		default:
			errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	// /notes/{id}
	switch r.Method {
	case http.MethodGet:
		a.GetNoteHandler(w, r)
	case http.MethodPut:
		a.UpdateNoteHandler(w, r)
	default:
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
