package relay

import (
	"encoding/json"
)

// Event names carried over the wire.
const (
	EventJoinNote    = "join_note"
	EventActiveUsers = "active_users"
	EventNoteUpdate  = "note_update"
)

// Envelope frames every relay message: an event name plus a payload
// decoded lazily by the handler for that event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// JoinNote registers the sender's presence in a note's room.
type JoinNote struct {
	NoteID   string `json:"noteId"`
	Username string `json:"username"`
}

// ActiveUsers is the presence snapshot pushed to a room after every
// join and leave. Users are listed in join order.
type ActiveUsers struct {
	NoteID string   `json:"noteId"`
	Users  []string `json:"users"`
}

// NoteUpdate carries the full note content, not a diff. The relay
// forwards it untouched to the sender's room peers.
type NoteUpdate struct {
	NoteID    string `json:"noteId"`
	Content   string `json:"content"`
	UpdatedBy string `json:"updatedBy"`
	UpdatedAt string `json:"updatedAt"`
}

func marshalEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
