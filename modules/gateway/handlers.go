package gateway

import (
	"encoding/json"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/SachinX01/WEBCHAT/domain/signaling"
	"github.com/SachinX01/WEBCHAT/modules/registry"
	"github.com/SachinX01/WEBCHAT/modules/router"
	"github.com/SachinX01/WEBCHAT/modules/stats"
)

// JoinPayload is the inbound payload for joining a room.
type JoinPayload struct {
	DisplayName string `json:"display_name"`
	RoomID      string `json:"room_id"`
}

// LeavePayload is the inbound payload for leaving a room. DisplayName is
// accepted for wire compatibility but the registry record is authoritative.
type LeavePayload struct {
	DisplayName string `json:"display_name"`
	RoomID      string `json:"room_id"`
	MemberID    string `json:"member_id"`
}

// targetPayload extracts the one field the core reads out of a negotiation
// payload. Everything else stays opaque and is forwarded verbatim.
type targetPayload struct {
	TargetSession string `json:"target_session"`
}

// ConnectedPayload tells a fresh connection its own session handle, which
// peers will use to address negotiation messages at it.
type ConnectedPayload struct {
	SessionHandle string `json:"session_handle"`
}

// Handlers contains the WebSocket event dispatch and the REST handlers.
type Handlers struct {
	registry *registry.Module
	router   *router.Module
	hub      *Hub
	stats    stats.StatsPort
	roomID   func() string
	logger   types.Logger
}

// NewHandlers creates a handlers instance.
func NewHandlers(registryModule *registry.Module, routerModule *router.Module, hub *Hub, roomID func() string, logger types.Logger) *Handlers {
	return &Handlers{
		registry: registryModule,
		router:   routerModule,
		hub:      hub,
		roomID:   roomID,
		logger:   logger,
	}
}

// SetStats injects the stats adapter once the service container is wired.
func (h *Handlers) SetStats(port stats.StatsPort) {
	h.stats = port
}

// HandleWebSocket owns one client connection: it registers the session,
// pumps inbound frames into the dispatcher, and on any exit reconciles the
// disconnect exactly once.
func (h *Handlers) HandleWebSocket(c *websocket.Conn) {
	sessionID := uuid.New().String()
	sess := newSession(sessionID, c)
	h.hub.Register(sess)

	defer func() {
		h.hub.Unregister(sessionID)
		if _, err := h.registry.RemoveBySession(sessionID); err != nil && err != registry.ErrNotFound {
			h.logger.Error("Disconnect cleanup failed", "sessionID", sessionID, "error", err)
		}
		_ = c.Close()
	}()

	h.logger.Info("WebSocket connected", "sessionID", sessionID)

	h.hub.SendToSession(sessionID, signaling.EventConnected, ConnectedPayload{SessionHandle: sessionID})

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket error", "sessionID", sessionID, "error", err)
			}
			break
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.sendError(sessionID, "invalid message format")
			continue
		}

		h.dispatch(sessionID, frame)
	}

	h.logger.Info("WebSocket disconnected", "sessionID", sessionID)
}

// dispatch routes one inbound frame. Malformed payloads are answered here at
// the boundary; the core modules only ever see well-formed input.
func (h *Handlers) dispatch(sessionID string, frame Frame) {
	switch frame.Type {
	case signaling.EventJoin:
		h.handleJoin(sessionID, frame.Payload)
	case signaling.EventLeave:
		h.handleLeave(sessionID, frame.Payload)
	case signaling.EventSDPOffer, signaling.EventSDPAnswer, signaling.EventICECandidate:
		h.handleSignal(sessionID, frame.Type, frame.Payload)
	case signaling.EventMessage:
		h.handleMessage(sessionID, frame.Payload)
	default:
		h.sendError(sessionID, "unknown event type: "+frame.Type)
	}
}

func (h *Handlers) handleJoin(sessionID string, payload json.RawMessage) {
	var req JoinPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(sessionID, "invalid join payload")
		return
	}
	if req.RoomID == "" || req.DisplayName == "" {
		h.sendError(sessionID, "room_id and display_name are required")
		return
	}

	// The session enters the fan-out set before the registry mutation so
	// presence notifications fired during the mutation see the full room;
	// the joiner itself is excluded by session handle.
	h.hub.JoinRoom(sessionID, req.RoomID)
	res := h.registry.Join(req.RoomID, req.DisplayName, sessionID)

	h.hub.SendToSession(sessionID, signaling.EventJoined, res)
}

func (h *Handlers) handleLeave(sessionID string, payload json.RawMessage) {
	var req LeavePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(sessionID, "invalid leave payload")
		return
	}
	if req.RoomID == "" || req.MemberID == "" {
		h.sendError(sessionID, "room_id and member_id are required")
		return
	}

	// A leave that lost the race against disconnect cleanup is a no-op.
	_, _ = h.registry.Leave(req.RoomID, req.MemberID)
	h.hub.LeaveRoom(sessionID, req.RoomID)
}

func (h *Handlers) handleSignal(sessionID, event string, payload json.RawMessage) {
	var target targetPayload
	if err := json.Unmarshal(payload, &target); err != nil {
		h.sendError(sessionID, "invalid "+event+" payload")
		return
	}
	if target.TargetSession == "" {
		h.sendError(sessionID, "target_session is required")
		return
	}

	h.router.Forward(target.TargetSession, event, payload)
}

func (h *Handlers) handleMessage(sessionID string, payload json.RawMessage) {
	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		h.sendError(sessionID, "invalid message payload")
		return
	}
	roomID, _ := body["room_id"].(string)
	if roomID == "" {
		h.sendError(sessionID, "room_id is required")
		return
	}

	h.router.Broadcast(roomID, body)
}

func (h *Handlers) sendError(sessionID, message string) {
	h.hub.SendError(sessionID, message)
}

// REST handlers

// CreateRoomID handles GET /create: it returns a freshly generated room
// identifier. The room itself is created implicitly on first join.
func (h *Handlers) CreateRoomID(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"room_id": h.roomID(),
	})
}

// ListRooms handles GET /api/v1/rooms.
func (h *Handlers) ListRooms(c *fiber.Ctx) error {
	rooms := h.registry.Rooms()
	return c.JSON(fiber.Map{
		"rooms": rooms,
		"total": len(rooms),
	})
}

// RoomMembers handles GET /api/v1/rooms/:id/members.
func (h *Handlers) RoomMembers(c *fiber.Ctx) error {
	roomID := c.Params("id")
	if _, ok := h.registry.Room(roomID); !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Room not found",
		})
	}
	members := h.registry.Snapshot(roomID)
	return c.JSON(fiber.Map{
		"room_id": roomID,
		"members": members,
		"total":   len(members),
	})
}

// GetStats handles GET /api/v1/stats.
func (h *Handlers) GetStats(c *fiber.Ctx) error {
	if h.stats == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Stats not available",
		})
	}
	s, err := h.stats.GetStats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch stats",
		})
	}
	return c.JSON(s)
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"service":  "webchat-signaling",
		"sessions": h.hub.SessionCount(),
	})
}
