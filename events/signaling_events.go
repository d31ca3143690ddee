package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// UserJoinedEvent is emitted when a member joins a room.
type UserJoinedEvent struct {
	RoomID        string    `json:"room_id"`
	MemberID      string    `json:"member_id"`
	DisplayName   string    `json:"display_name"`
	SessionHandle string    `json:"session_handle"`
	MemberCount   int       `json:"member_count"`
	Timestamp     time.Time `json:"timestamp"`
}

// UserLeftEvent is emitted when a member leaves a room or its connection is
// lost, whichever happens first.
type UserLeftEvent struct {
	RoomID         string    `json:"room_id"`
	MemberID       string    `json:"member_id"`
	DisplayName    string    `json:"display_name"`
	RemainingCount int       `json:"remaining_count"`
	Timestamp      time.Time `json:"timestamp"`
}

// MessageBroadcastEvent is emitted when a chat message is fanned out to a
// room. The payload itself is opaque to the server and not carried here.
type MessageBroadcastEvent struct {
	RoomID     string    `json:"room_id"`
	Recipients int       `json:"recipients"`
	Timestamp  time.Time `json:"timestamp"`
}

// Event definitions for the signaling domain.
var (
	UserJoinedV1 = helper.EventDefinition[UserJoinedEvent](
		"signaling",
		"UserJoined",
		"v1",
	)

	UserLeftV1 = helper.EventDefinition[UserLeftEvent](
		"signaling",
		"UserLeft",
		"v1",
	)

	MessageBroadcastV1 = helper.EventDefinition[MessageBroadcastEvent](
		"signaling",
		"MessageBroadcast",
		"v1",
	)
)
