package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/SachinX01/WEBCHAT/domain/signaling"
)

// recordingObserver captures observer callbacks in dispatch order.
type recordingObserver struct {
	mu     sync.Mutex
	events []string
	joins  []signaling.Member
	leaves []signaling.Member
}

func (o *recordingObserver) MemberJoined(roomID string, joined signaling.Member, existing []signaling.Member, memberCount int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, fmt.Sprintf("join:%s:%s:%d", roomID, joined.DisplayName, memberCount))
	o.joins = append(o.joins, joined)
}

func (o *recordingObserver) MemberLeft(roomID string, left signaling.Member, remainingCount int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, fmt.Sprintf("leave:%s:%s:%d", roomID, left.DisplayName, remainingCount))
	o.leaves = append(o.leaves, left)
}

func TestRegistry_Join(t *testing.T) {
	r := New(nil)

	res := r.Join("room-1", "Alice", "session-a")

	if res.MemberID == "" {
		t.Fatal("Join() returned empty member ID")
	}
	if len(res.MemberID) != 8 {
		t.Errorf("Join() member ID length = %d, want 8", len(res.MemberID))
	}
	if len(res.ExistingMembers) != 0 {
		t.Errorf("Join() first joiner existing members = %d, want 0", len(res.ExistingMembers))
	}
	if res.MemberCount != 1 {
		t.Errorf("Join() member count = %d, want 1", res.MemberCount)
	}
	if r.RoomCount() != 1 {
		t.Errorf("RoomCount() = %d, want 1", r.RoomCount())
	}
}

func TestRegistry_JoinSnapshotExcludesJoiner(t *testing.T) {
	r := New(nil)

	alice := r.Join("room-1", "Alice", "session-a")
	bob := r.Join("room-1", "Bob", "session-b")

	if len(bob.ExistingMembers) != 1 {
		t.Fatalf("second joiner existing members = %d, want 1", len(bob.ExistingMembers))
	}
	if bob.ExistingMembers[0].ID != alice.MemberID {
		t.Errorf("existing member ID = %q, want %q", bob.ExistingMembers[0].ID, alice.MemberID)
	}
	if bob.ExistingMembers[0].SessionHandle != "session-a" {
		t.Errorf("existing member session = %q, want %q", bob.ExistingMembers[0].SessionHandle, "session-a")
	}
	for _, m := range bob.ExistingMembers {
		if m.ID == bob.MemberID {
			t.Error("joiner appears in its own snapshot")
		}
	}
	if bob.MemberCount != 2 {
		t.Errorf("member count = %d, want 2", bob.MemberCount)
	}
}

func TestRegistry_SnapshotJoinOrder(t *testing.T) {
	r := New(nil)

	names := []string{"Alice", "Bob", "Carol", "Dave"}
	for i, name := range names {
		r.Join("room-1", name, fmt.Sprintf("session-%d", i))
	}

	snap := r.Snapshot("room-1")
	if len(snap) != len(names) {
		t.Fatalf("Snapshot() length = %d, want %d", len(snap), len(names))
	}
	for i, name := range names {
		if snap[i].DisplayName != name {
			t.Errorf("Snapshot()[%d] = %q, want %q", i, snap[i].DisplayName, name)
		}
	}
}

func TestRegistry_SnapshotUnknownRoom(t *testing.T) {
	r := New(nil)

	snap := r.Snapshot("nowhere")
	if snap == nil {
		t.Fatal("Snapshot() for unknown room returned nil, want empty slice")
	}
	if len(snap) != 0 {
		t.Errorf("Snapshot() for unknown room length = %d, want 0", len(snap))
	}
}

func TestRegistry_Leave(t *testing.T) {
	r := New(nil)

	alice := r.Join("room-1", "Alice", "session-a")
	r.Join("room-1", "Bob", "session-b")

	removal, err := r.Leave("room-1", alice.MemberID)
	if err != nil {
		t.Fatalf("Leave() unexpected error: %v", err)
	}
	if removal.DisplayName != "Alice" {
		t.Errorf("Leave() display name = %q, want Alice", removal.DisplayName)
	}
	if removal.RemainingCount != 1 {
		t.Errorf("Leave() remaining = %d, want 1", removal.RemainingCount)
	}

	snap := r.Snapshot("room-1")
	if len(snap) != 1 || snap[0].DisplayName != "Bob" {
		t.Errorf("Snapshot() after leave = %v, want only Bob", snap)
	}
}

func TestRegistry_LeaveIsIdempotent(t *testing.T) {
	r := New(nil)

	alice := r.Join("room-1", "Alice", "session-a")
	r.Join("room-1", "Bob", "session-b")

	if _, err := r.Leave("room-1", alice.MemberID); err != nil {
		t.Fatalf("first Leave() unexpected error: %v", err)
	}

	// The loser of a leave/disconnect race resolves to a no-op.
	if _, err := r.Leave("room-1", alice.MemberID); err != ErrNotFound {
		t.Errorf("second Leave() error = %v, want ErrNotFound", err)
	}
	if _, err := r.RemoveBySession("session-a"); err != ErrNotFound {
		t.Errorf("RemoveBySession() after leave error = %v, want ErrNotFound", err)
	}

	if got := r.MemberCount(); got != 1 {
		t.Errorf("MemberCount() = %d, want 1", got)
	}
}

func TestRegistry_LastLeaveDeletesRoom(t *testing.T) {
	r := New(nil)

	alice := r.Join("room-1", "Alice", "session-a")
	if _, err := r.Leave("room-1", alice.MemberID); err != nil {
		t.Fatalf("Leave() unexpected error: %v", err)
	}

	if r.RoomCount() != 0 {
		t.Errorf("RoomCount() = %d, want 0", r.RoomCount())
	}
	if _, ok := r.Room("room-1"); ok {
		t.Error("Room() found a room that should be deleted")
	}

	// The same room ID is fresh on the next join.
	res := r.Join("room-1", "Carol", "session-c")
	if len(res.ExistingMembers) != 0 {
		t.Errorf("rejoined room existing members = %d, want 0", len(res.ExistingMembers))
	}
}

func TestRegistry_RemoveBySession(t *testing.T) {
	r := New(nil)

	r.Join("room-1", "Alice", "session-a")
	bob := r.Join("room-1", "Bob", "session-b")

	removal, err := r.RemoveBySession("session-b")
	if err != nil {
		t.Fatalf("RemoveBySession() unexpected error: %v", err)
	}
	if removal.MemberID != bob.MemberID {
		t.Errorf("RemoveBySession() member = %q, want %q", removal.MemberID, bob.MemberID)
	}
	if removal.RoomID != "room-1" {
		t.Errorf("RemoveBySession() room = %q, want room-1", removal.RoomID)
	}

	if _, err := r.RemoveBySession("session-untracked"); err != ErrNotFound {
		t.Errorf("RemoveBySession() unknown session error = %v, want ErrNotFound", err)
	}
}

func TestRegistry_RejoinReplacesMembership(t *testing.T) {
	r := New(nil)
	obs := &recordingObserver{}
	r.observer = obs

	first := r.Join("room-1", "Alice", "session-a")
	second := r.Join("room-2", "Alice", "session-a")

	if first.MemberID == second.MemberID {
		t.Error("rejoin reused the member ID")
	}
	if r.RoomCount() != 1 {
		t.Errorf("RoomCount() = %d, want 1 (old room reclaimed)", r.RoomCount())
	}
	if got := r.MemberCount(); got != 1 {
		t.Errorf("MemberCount() = %d, want 1 (one membership per session)", got)
	}

	want := []string{"join:room-1:Alice:1", "leave:room-1:Alice:0", "join:room-2:Alice:1"}
	if len(obs.events) != len(want) {
		t.Fatalf("observer events = %v, want %v", obs.events, want)
	}
	for i := range want {
		if obs.events[i] != want[i] {
			t.Errorf("observer event[%d] = %q, want %q", i, obs.events[i], want[i])
		}
	}
}

func TestRegistry_ObserverOrderMatchesMutationOrder(t *testing.T) {
	r := New(nil)
	obs := &recordingObserver{}
	r.observer = obs

	alice := r.Join("room-1", "Alice", "session-a")
	r.Join("room-1", "Bob", "session-b")
	r.Leave("room-1", alice.MemberID)
	r.RemoveBySession("session-b")

	want := []string{
		"join:room-1:Alice:1",
		"join:room-1:Bob:2",
		"leave:room-1:Alice:1",
		"leave:room-1:Bob:0",
	}
	if len(obs.events) != len(want) {
		t.Fatalf("observer events = %v, want %v", obs.events, want)
	}
	for i := range want {
		if obs.events[i] != want[i] {
			t.Errorf("observer event[%d] = %q, want %q", i, obs.events[i], want[i])
		}
	}
}

func TestRegistry_ConcurrentJoinLeave(t *testing.T) {
	r := New(&recordingObserver{})

	const workers = 16
	const rounds = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			roomID := fmt.Sprintf("room-%d", w%4)
			session := fmt.Sprintf("session-%d", w)
			for i := 0; i < rounds; i++ {
				res := r.Join(roomID, fmt.Sprintf("worker-%d", w), session)
				r.Snapshot(roomID)
				if i%2 == 0 {
					r.Leave(roomID, res.MemberID)
				} else {
					r.RemoveBySession(session)
				}
			}
		}(w)
	}
	wg.Wait()

	if got := r.MemberCount(); got != 0 {
		t.Errorf("MemberCount() after churn = %d, want 0", got)
	}
	if got := r.RoomCount(); got != 0 {
		t.Errorf("RoomCount() after churn = %d, want 0", got)
	}
}
