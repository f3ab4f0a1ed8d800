package relay

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/notively/notively/internal/config"
	"github.com/notively/notively/internal/presence"
)

// Room joined when a client omits the note ID.
const defaultRoom = "default"

// Hub owns the connection lifecycle: it registers clients, dispatches
// their events one at a time, and broadcasts to rooms. All presence
// mutation happens on the Run goroutine; the registry itself is only
// read elsewhere.
type Hub struct {
	registry *presence.Registry
	cfg      *config.Config
	upgrader websocket.Upgrader

	// Connected clients by connection ID
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundEvent

	mu sync.RWMutex
}

type inboundEvent struct {
	sender   *Client
	envelope Envelope
}

func NewHub(cfg *config.Config, registry *presence.Registry) *Hub {
	h := &Hub{
		registry:   registry,
		cfg:        cfg,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundEvent),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case event := <-h.inbound:
			h.handleEvent(event.sender, event.envelope)
		}
	}
}

func (h *Hub) handleRegister(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	clientCount := len(h.clients)
	h.mu.Unlock()

	log.Printf("Client %s connected (total: %d)", c.id, clientCount)
}

// handleUnregister tears down every room membership the departing
// connection held, announcing refreshed presence to each room.
func (h *Hub) handleUnregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	clientCount := len(h.clients)
	h.mu.Unlock()

	close(c.send)

	for _, roomID := range h.registry.RoomsOf(c.id) {
		h.registry.Leave(roomID, c.id)
		h.announcePresence(roomID)
	}

	log.Printf("Client %s disconnected (total: %d)", c.id, clientCount)
}

func (h *Hub) handleEvent(sender *Client, env Envelope) {
	switch env.Event {
	case EventJoinNote:
		var join JoinNote
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &join); err != nil {
				log.Printf("Malformed join_note from %s: %v", sender.id, err)
			}
		}
		h.handleJoin(sender, join)

	case EventNoteUpdate:
		var update NoteUpdate
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &update); err != nil {
				log.Printf("Malformed note_update from %s: %v", sender.id, err)
			}
		}
		h.handleUpdate(sender, update)

	default:
		log.Printf("Ignoring unknown event %q from %s", env.Event, sender.id)
	}
}

// handleJoin registers presence and pushes the refreshed user list to
// the whole room, joiner included, so clients always see themselves
// in the count. Missing fields are defaulted, never rejected.
func (h *Hub) handleJoin(sender *Client, join JoinNote) {
	roomID := join.NoteID
	if roomID == "" {
		roomID = defaultRoom
	}
	username := join.Username
	if username == "" {
		username = guestName()
	}

	h.registry.Join(roomID, sender.id, username)
	h.announcePresence(roomID)
}

// handleUpdate relays the content to everyone else in the room. The
// sender already holds the value locally and gets no echo. Membership
// is deliberately not checked: any connection may publish into any
// room, matching the no-login share-the-ID model.
func (h *Hub) handleUpdate(sender *Client, update NoteUpdate) {
	if update.NoteID == "" {
		update.NoteID = defaultRoom
	}
	if update.UpdatedAt == "" {
		update.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	payload, err := marshalEvent(EventNoteUpdate, update)
	if err != nil {
		log.Printf("Failed to encode note_update: %v", err)
		return
	}

	h.broadcastToRoom(update.NoteID, payload, sender.id)
}

func (h *Hub) announcePresence(roomID string) {
	payload, err := marshalEvent(EventActiveUsers, ActiveUsers{
		NoteID: roomID,
		Users:  h.registry.Snapshot(roomID),
	})
	if err != nil {
		log.Printf("Failed to encode active_users: %v", err)
		return
	}

	h.broadcastToRoom(roomID, payload, "")
}

// broadcastToRoom delivers the payload to every room member except
// excludeID. Delivery is fire and forget: members that are gone or
// have a full send buffer are skipped for this message.
func (h *Hub) broadcastToRoom(roomID string, payload []byte, excludeID string) {
	for _, connID := range h.registry.Members(roomID) {
		if connID == excludeID {
			continue
		}

		h.mu.RLock()
		client, ok := h.clients[connID]
		h.mu.RUnlock()
		if !ok {
			continue
		}

		select {
		case client.send <- payload:
		default:
			log.Printf("Dropping message to client %s in room %s (send buffer full)", connID, roomID)
		}
	}
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if h.cfg.OriginAllowed(origin) {
		return true
	}

	log.Printf("Blocked WebSocket connection from disallowed origin: %q", origin)
	return false
}

// GetClientCount returns the number of live connections.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetRoomCount returns the number of rooms with at least one member.
func (h *Hub) GetRoomCount() int {
	return h.registry.RoomCount()
}

// GetActiveRooms returns member counts keyed by room ID.
func (h *Hub) GetActiveRooms() map[string]int {
	return h.registry.ActiveRooms()
}

func guestName() string {
	return "Guest-" + uuid.NewString()[:8]
}
