package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SachinX01/WEBCHAT/domain/signaling"
)

// ErrNotFound is returned when the room or member is already gone on a
// removal path. It is non-fatal: a second leave or a leave racing a
// disconnect resolves to a no-op for whichever path loses.
var ErrNotFound = errors.New("room or member not found")

// MembershipObserver receives membership mutations in the exact order they
// were applied to a room. Callbacks run inside the registry's critical
// section and must not block or perform I/O; implementations may only
// enqueue to bounded per-connection outboxes.
type MembershipObserver interface {
	MemberJoined(roomID string, joined signaling.Member, existing []signaling.Member, memberCount int)
	MemberLeft(roomID string, left signaling.Member, remainingCount int)
}

// JoinResult is returned to the joiner: its new member ID, a snapshot of the
// room taken before insertion, and the member count after insertion.
type JoinResult struct {
	MemberID        string             `json:"member_id"`
	ExistingMembers []signaling.Member `json:"existing_members"`
	MemberCount     int                `json:"member_count"`
}

// Removal describes a completed member removal.
type Removal struct {
	RoomID         string
	MemberID       string
	DisplayName    string
	RemainingCount int
}

// room state is only touched while Registry.mu is held.
type room struct {
	id        string
	createdAt time.Time
	members   []signaling.Member // join order
}

type memberRef struct {
	roomID   string
	memberID string
}

// Registry is the authoritative, race-free store of room membership. Rooms
// are created implicitly on first join and deleted when their last member
// leaves; a room with zero members never exists in the registry. A single
// mutex serializes every mutation, so snapshots never observe a member list
// mid-change. Lock hold times are bounded by list operations on one room.
type Registry struct {
	mu        sync.Mutex
	rooms     map[string]*room
	bySession map[string]memberRef
	observer  MembershipObserver
}

// New creates an empty registry. The observer may be nil.
func New(observer MembershipObserver) *Registry {
	return &Registry{
		rooms:     make(map[string]*room),
		bySession: make(map[string]memberRef),
		observer:  observer,
	}
}

func newMemberID() string {
	return uuid.New().String()[:8]
}

// Join adds a member to a room, creating the room if needed. The returned
// snapshot is taken before insertion so the joiner never sees itself in it.
// A session holds at most one membership at a time: a second join on the
// same session first removes the old membership, with its leave
// notification.
func (r *Registry) Join(roomID, displayName, sessionHandle string) JoinResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ref, ok := r.bySession[sessionHandle]; ok {
		r.removeLocked(ref.roomID, ref.memberID)
	}

	rm, ok := r.rooms[roomID]
	if !ok {
		rm = &room{id: roomID, createdAt: time.Now()}
		r.rooms[roomID] = rm
	}

	existing := make([]signaling.Member, len(rm.members))
	copy(existing, rm.members)

	member := signaling.Member{
		ID:            newMemberID(),
		DisplayName:   displayName,
		SessionHandle: sessionHandle,
	}
	rm.members = append(rm.members, member)
	r.bySession[sessionHandle] = memberRef{roomID: roomID, memberID: member.ID}

	if r.observer != nil {
		r.observer.MemberJoined(roomID, member, existing, len(rm.members))
	}

	return JoinResult{
		MemberID:        member.ID,
		ExistingMembers: existing,
		MemberCount:     len(rm.members),
	}
}

// Leave removes the member from the room. Returns ErrNotFound if the room or
// member is already gone; callers treat that as a no-op.
func (r *Registry) Leave(roomID, memberID string) (Removal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removal, ok := r.removeLocked(roomID, memberID)
	if !ok {
		return Removal{}, ErrNotFound
	}
	return removal, nil
}

// RemoveBySession removes the member bound to the session handle, if any.
// At most one member registry-wide can match a handle; the session index
// enforces that. Used on connection loss, once per terminated connection.
func (r *Registry) RemoveBySession(sessionHandle string) (Removal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref, ok := r.bySession[sessionHandle]
	if !ok {
		return Removal{}, ErrNotFound
	}
	removal, ok := r.removeLocked(ref.roomID, ref.memberID)
	if !ok {
		return Removal{}, ErrNotFound
	}
	return removal, nil
}

// removeLocked is the single removal routine shared by Leave and
// RemoveBySession, so both paths notify identically. First remover wins; a
// racing second removal finds nothing and reports false.
func (r *Registry) removeLocked(roomID, memberID string) (Removal, bool) {
	rm, ok := r.rooms[roomID]
	if !ok {
		return Removal{}, false
	}

	idx := -1
	for i, m := range rm.members {
		if m.ID == memberID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Removal{}, false
	}

	left := rm.members[idx]
	rm.members = append(rm.members[:idx], rm.members[idx+1:]...)
	delete(r.bySession, left.SessionHandle)

	remaining := len(rm.members)
	if remaining == 0 {
		delete(r.rooms, roomID)
	}

	if r.observer != nil {
		r.observer.MemberLeft(roomID, left, remaining)
	}

	return Removal{
		RoomID:         roomID,
		MemberID:       left.ID,
		DisplayName:    left.DisplayName,
		RemainingCount: remaining,
	}, true
}

// Snapshot returns the room's members in join order, or an empty slice if
// the room does not exist. Read-only.
func (r *Registry) Snapshot(roomID string) []signaling.Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return []signaling.Member{}
	}
	out := make([]signaling.Member, len(rm.members))
	copy(out, rm.members)
	return out
}

// Room returns room metadata by ID.
func (r *Registry) Room(roomID string) (signaling.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return signaling.Room{}, false
	}
	return signaling.Room{ID: rm.id, CreatedAt: rm.createdAt, MemberCount: len(rm.members)}, true
}

// Rooms returns metadata for all active rooms.
func (r *Registry) Rooms() []signaling.Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]signaling.Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, signaling.Room{ID: rm.id, CreatedAt: rm.createdAt, MemberCount: len(rm.members)})
	}
	return out
}

// RoomCount returns the number of active rooms.
func (r *Registry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// MemberCount returns the number of members across all rooms.
func (r *Registry) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bySession)
}
