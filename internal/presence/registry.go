package presence

import (
	"sync"
)

// Tracks which connections are present in which room.
// Rooms are keyed by note ID; members are keyed by connection ID and
// carry the display name the client joined with.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry

	// Reverse index: connection ID -> set of joined rooms, so a
	// disconnect can clean up every membership without the caller
	// tracking rooms separately.
	memberships map[string]map[string]struct{}
}

type roomEntry struct {
	order []string          // connection IDs in join order
	names map[string]string // connection ID -> display name
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:       make(map[string]*roomEntry),
		memberships: make(map[string]map[string]struct{}),
	}
}

// Join adds or updates the (connection, name) entry for a room.
// Rejoining the same room only overwrites the display name; the
// member keeps its original position in the snapshot order.
func (r *Registry) Join(roomID, connID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[roomID]
	if !ok {
		entry = &roomEntry{names: make(map[string]string)}
		r.rooms[roomID] = entry
	}

	if _, exists := entry.names[connID]; !exists {
		entry.order = append(entry.order, connID)
	}
	entry.names[connID] = name

	rooms, ok := r.memberships[connID]
	if !ok {
		rooms = make(map[string]struct{})
		r.memberships[connID] = rooms
	}
	rooms[roomID] = struct{}{}
}

// Leave removes a connection from a room. Leaving a room the
// connection never joined is a no-op. Empty room entries are evicted
// so long-dead rooms do not accumulate.
func (r *Registry) Leave(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[roomID]
	if !ok {
		return
	}

	if _, exists := entry.names[connID]; !exists {
		return
	}

	delete(entry.names, connID)
	for i, id := range entry.order {
		if id == connID {
			entry.order = append(entry.order[:i], entry.order[i+1:]...)
			break
		}
	}
	if len(entry.names) == 0 {
		delete(r.rooms, roomID)
	}

	if rooms, ok := r.memberships[connID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(r.memberships, connID)
		}
	}
}

// Snapshot returns the display names of a room's members in join
// order. Returns an empty slice for unknown rooms.
func (r *Registry) Snapshot(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.rooms[roomID]
	if !ok {
		return []string{}
	}

	names := make([]string, 0, len(entry.order))
	for _, connID := range entry.order {
		names = append(names, entry.names[connID])
	}
	return names
}

// Members returns the connection IDs of a room's members in join
// order. Callers iterate the returned copy, never the live map.
func (r *Registry) Members(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.rooms[roomID]
	if !ok {
		return nil
	}

	ids := make([]string, len(entry.order))
	copy(ids, entry.order)
	return ids
}

// RoomsOf returns every room a connection currently belongs to.
func (r *Registry) RoomsOf(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms, ok := r.memberships[connID]
	if !ok {
		return nil
	}

	ids := make([]string, 0, len(rooms))
	for roomID := range rooms {
		ids = append(ids, roomID)
	}
	return ids
}

// RoomCount returns the number of rooms with at least one member.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// ActiveRooms returns member counts keyed by room ID.
func (r *Registry) ActiveRooms() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int, len(r.rooms))
	for roomID, entry := range r.rooms {
		counts[roomID] = len(entry.names)
	}
	return counts
}
