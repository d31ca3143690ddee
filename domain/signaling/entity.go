package signaling

import "time"

// Member is a peer's membership record within one room. It is distinct from
// the underlying connection: the session handle only records which connection
// the member is reachable on.
type Member struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	SessionHandle string `json:"session_handle"`
}

// Room describes a named group of connected peers.
type Room struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	MemberCount int       `json:"member_count"`
}
