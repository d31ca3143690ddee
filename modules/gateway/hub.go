package gateway

import (
	"encoding/json"
	"sync"

	"github.com/go-monolith/mono/pkg/types"

	"github.com/SachinX01/WEBCHAT/domain/signaling"
)

// Hub tracks live sessions and their transport-level room grouping. It is
// the gateway's send surface: targeted delivery by session handle and room
// broadcast with an optional exclusion. Membership truth lives in the
// registry; the hub's room sets only group connections for fan-out.
//
// Hub methods are called from connection goroutines and, via the presence
// observer, from inside the registry's critical section. They only take the
// hub's own lock and enqueue to session outboxes, so they never block.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	rooms    map[string]map[string]bool // roomID -> set of session IDs
	logger   types.Logger
}

// NewHub creates an empty hub.
func NewHub(logger types.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		rooms:    make(map[string]map[string]bool),
		logger:   logger,
	}
}

// Register adds a session and starts its write pump.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()

	go s.writePump()
	h.logger.Debug("Session registered", "sessionID", s.ID)
}

// Unregister removes a session from the hub and any room set, and stops its
// write pump. Safe to call for an unknown session.
func (h *Hub) Unregister(sessionID string) {
	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	if ok {
		delete(h.sessions, sessionID)
		for roomID, members := range h.rooms {
			if members[sessionID] {
				delete(members, sessionID)
				if len(members) == 0 {
					delete(h.rooms, roomID)
				}
			}
		}
	}
	h.mu.Unlock()

	if ok {
		s.close()
		h.logger.Debug("Session unregistered", "sessionID", sessionID)
	}
}

// JoinRoom adds a session to a room's fan-out set, leaving any previous
// room first.
func (h *Hub) JoinRoom(sessionID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[sessionID]; !ok {
		return
	}

	for id, members := range h.rooms {
		if id != roomID && members[sessionID] {
			delete(members, sessionID)
			if len(members) == 0 {
				delete(h.rooms, id)
			}
		}
	}

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]bool)
	}
	h.rooms[roomID][sessionID] = true
}

// LeaveRoom removes a session from a room's fan-out set.
func (h *Hub) LeaveRoom(sessionID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

// SendToSession delivers one event to one session, at most once. An unknown
// handle reports false; the caller decides whether that matters.
func (h *Hub) SendToSession(sessionID, event string, payload any) bool {
	data, err := encodeFrame(event, payload)
	if err != nil {
		h.logger.Error("Failed to encode frame", "event", event, "error", err)
		return false
	}

	h.mu.RLock()
	s, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	if !s.enqueue(data) {
		h.logger.Warn("Outbox full, dropping frame", "sessionID", sessionID, "event", event)
	}
	return true
}

// BroadcastToRoom delivers one event to every session in the room's fan-out
// set except excludeSession. The frame is encoded once, so every recipient
// gets an identical copy. Returns the number of sessions the frame was
// handed to.
func (h *Hub) BroadcastToRoom(roomID, event string, payload any, excludeSession string) int {
	data, err := encodeFrame(event, payload)
	if err != nil {
		h.logger.Error("Failed to encode frame", "event", event, "error", err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	recipients := 0
	for sessionID := range h.rooms[roomID] {
		if sessionID == excludeSession {
			continue
		}
		s, ok := h.sessions[sessionID]
		if !ok {
			continue
		}
		if !s.enqueue(data) {
			h.logger.Warn("Outbox full, dropping frame", "sessionID", sessionID, "event", event)
			continue
		}
		recipients++
	}
	return recipients
}

// SendError delivers an error frame to one session. Best effort.
func (h *Hub) SendError(sessionID, message string) {
	data, err := json.Marshal(Frame{Type: signaling.EventError, Error: message})
	if err != nil {
		return
	}

	h.mu.RLock()
	s, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if ok {
		s.enqueue(data)
	}
}

// SessionCount returns the number of live sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// RoomSessionCount returns the size of a room's fan-out set.
func (h *Hub) RoomSessionCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// CloseAll tears down every session. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]*Session)
	h.rooms = make(map[string]map[string]bool)
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
		_ = s.conn.Close()
	}
}
