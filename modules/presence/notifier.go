package presence

import (
	"time"

	"github.com/go-monolith/mono/pkg/types"

	"github.com/SachinX01/WEBCHAT/domain/signaling"
)

// Sender delivers an event to every live connection in a room, minus an
// optional excluded session. Implementations must be safe for concurrent use
// and must never block: delivery is at-most-once, fire-and-forget, and a
// slow recipient loses frames rather than stalling the caller. Returns the
// number of sessions the event was handed to.
type Sender interface {
	BroadcastToRoom(roomID, event string, payload any, excludeSession string) int
}

// JoinedNotice is sent to every member already in the room when a new member
// joins. The joiner itself gets the pre-join snapshot as its join reply
// instead.
type JoinedNotice struct {
	MemberID      string    `json:"member_id"`
	DisplayName   string    `json:"display_name"`
	SessionHandle string    `json:"session_handle"`
	Timestamp     time.Time `json:"timestamp"`
}

// LeftNotice is sent to every remaining member when a member leaves or its
// connection is lost.
type LeftNotice struct {
	MemberID       string `json:"member_id"`
	DisplayName    string `json:"display_name"`
	RemainingCount int    `json:"remaining_count"`
}

// Notifier translates registry mutations into presence events for the right
// audience. It implements the registry's membership observer: callbacks fire
// inside the registry's critical section, which is what guarantees that
// notifications for a room are dispatched in mutation order. The only work
// done here is enqueueing to session outboxes.
type Notifier struct {
	sender Sender
	logger types.Logger
	now    func() time.Time
}

// NewNotifier creates a presence notifier backed by the given sender.
func NewNotifier(sender Sender, logger types.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		logger: logger,
		now:    time.Now,
	}
}

// MemberJoined notifies every member that was already in the room. The
// joiner's session is excluded so it never hears about itself.
func (n *Notifier) MemberJoined(roomID string, joined signaling.Member, existing []signaling.Member, memberCount int) {
	if len(existing) == 0 {
		return
	}
	n.sender.BroadcastToRoom(roomID, signaling.EventUserJoined, JoinedNotice{
		MemberID:      joined.ID,
		DisplayName:   joined.DisplayName,
		SessionHandle: joined.SessionHandle,
		Timestamp:     n.now(),
	}, joined.SessionHandle)
}

// MemberLeft notifies every remaining member. The removed member's session
// is excluded; on the disconnect path it is already gone from the hub and
// the exclusion is a no-op.
func (n *Notifier) MemberLeft(roomID string, left signaling.Member, remainingCount int) {
	if remainingCount == 0 {
		return
	}
	n.sender.BroadcastToRoom(roomID, signaling.EventUserLeft, LeftNotice{
		MemberID:       left.ID,
		DisplayName:    left.DisplayName,
		RemainingCount: remainingCount,
	}, left.SessionHandle)
}
