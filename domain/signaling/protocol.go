package signaling

// Wire event names. Inbound events arrive from clients; outbound events are
// emitted by the server. The negotiation events appear on both sides: they
// are forwarded verbatim under the same name.
const (
	EventJoin    = "join"
	EventLeave   = "leave"
	EventMessage = "message"

	EventSDPOffer     = "sdp_offer"
	EventSDPAnswer    = "sdp_answer"
	EventICECandidate = "ice_candidate"

	EventConnected  = "connected"
	EventJoined     = "joined"
	EventUserJoined = "user_joined"
	EventUserLeft   = "user_left"
	EventError      = "error"
)
