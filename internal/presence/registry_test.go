package presence

import (
	"sync"
	"testing"
)

func TestJoinAndSnapshot(t *testing.T) {
	reg := NewRegistry()

	reg.Join("doc1", "conn-x", "Alice")

	users := reg.Snapshot("doc1")
	if len(users) != 1 || users[0] != "Alice" {
		t.Errorf("Expected [Alice], got %v", users)
	}

	reg.Join("doc1", "conn-y", "Bob")

	users = reg.Snapshot("doc1")
	if len(users) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(users))
	}
	if users[0] != "Alice" || users[1] != "Bob" {
		t.Errorf("Expected join order [Alice Bob], got %v", users)
	}
}

func TestSnapshotUnknownRoom(t *testing.T) {
	reg := NewRegistry()

	users := reg.Snapshot("no-such-room")
	if len(users) != 0 {
		t.Errorf("Expected empty snapshot, got %v", users)
	}
}

func TestRejoinOverwritesName(t *testing.T) {
	reg := NewRegistry()

	reg.Join("doc1", "conn-x", "Alice")
	reg.Join("doc1", "conn-y", "Bob")
	reg.Join("doc1", "conn-x", "Alicia")

	users := reg.Snapshot("doc1")
	if len(users) != 2 {
		t.Fatalf("Rejoin should not duplicate, got %d members", len(users))
	}
	if users[0] != "Alicia" {
		t.Errorf("Rejoin should overwrite name in place, got %v", users)
	}
}

func TestCollidingNamesBothAppear(t *testing.T) {
	reg := NewRegistry()

	reg.Join("doc1", "conn-x", "Guest")
	reg.Join("doc1", "conn-y", "Guest")

	users := reg.Snapshot("doc1")
	if len(users) != 2 {
		t.Errorf("Colliding names should not dedupe, got %v", users)
	}
}

func TestLeave(t *testing.T) {
	reg := NewRegistry()

	reg.Join("doc1", "conn-x", "Alice")
	reg.Join("doc1", "conn-y", "Bob")
	reg.Leave("doc1", "conn-x")

	users := reg.Snapshot("doc1")
	if len(users) != 1 || users[0] != "Bob" {
		t.Errorf("Expected [Bob] after leave, got %v", users)
	}
}

func TestLeaveNonMemberIsNoop(t *testing.T) {
	reg := NewRegistry()

	reg.Join("doc1", "conn-x", "Alice")
	reg.Leave("doc1", "conn-z")
	reg.Leave("other-room", "conn-x")

	users := reg.Snapshot("doc1")
	if len(users) != 1 {
		t.Errorf("No-op leave changed membership: %v", users)
	}
}

func TestEmptyRoomEvicted(t *testing.T) {
	reg := NewRegistry()

	reg.Join("doc1", "conn-x", "Alice")
	reg.Leave("doc1", "conn-x")

	if reg.RoomCount() != 0 {
		t.Errorf("Expected empty room to be evicted, count %d", reg.RoomCount())
	}
	if rooms := reg.RoomsOf("conn-x"); len(rooms) != 0 {
		t.Errorf("Expected no memberships after leave, got %v", rooms)
	}
}

func TestRoomsOfMultipleRooms(t *testing.T) {
	reg := NewRegistry()

	reg.Join("doc-a", "conn-x", "Alice")
	reg.Join("doc-b", "conn-x", "Alice")
	reg.Join("doc-b", "conn-y", "Bob")

	rooms := reg.RoomsOf("conn-x")
	if len(rooms) != 2 {
		t.Fatalf("Expected 2 rooms, got %v", rooms)
	}

	seen := map[string]bool{}
	for _, id := range rooms {
		seen[id] = true
	}
	if !seen["doc-a"] || !seen["doc-b"] {
		t.Errorf("Expected doc-a and doc-b, got %v", rooms)
	}
}

func TestMembersOrder(t *testing.T) {
	reg := NewRegistry()

	reg.Join("doc1", "conn-1", "A")
	reg.Join("doc1", "conn-2", "B")
	reg.Join("doc1", "conn-3", "C")
	reg.Leave("doc1", "conn-2")

	members := reg.Members("doc1")
	if len(members) != 2 || members[0] != "conn-1" || members[1] != "conn-3" {
		t.Errorf("Expected [conn-1 conn-3], got %v", members)
	}
}

func TestActiveRooms(t *testing.T) {
	reg := NewRegistry()

	reg.Join("doc-a", "conn-1", "A")
	reg.Join("doc-a", "conn-2", "B")
	reg.Join("doc-b", "conn-3", "C")

	counts := reg.ActiveRooms()
	if counts["doc-a"] != 2 || counts["doc-b"] != 1 {
		t.Errorf("Unexpected counts: %v", counts)
	}
}

func TestConcurrentJoins(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg.Join("doc1", string(rune('a'+i%26))+string(rune('0'+i/26)), "user")
		}(i)
	}
	wg.Wait()

	users := reg.Snapshot("doc1")
	if len(users) != 100 {
		t.Errorf("Expected 100 members, got %d", len(users))
	}
}
