package registry

import (
	"context"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/SachinX01/WEBCHAT/domain/signaling"
	"github.com/SachinX01/WEBCHAT/events"
)

// Module wraps the Registry with the mono lifecycle and publishes membership
// events to the EventBus. Presence delivery does not go through the bus (its
// ordering is owed to the observer hook); bus events feed consumers whose
// ordering is not load-bearing, such as stats.
type Module struct {
	registry *Registry
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the registry module. The observer is invoked
// synchronously under the registry lock on every mutation.
func NewModule(observer MembershipObserver, logger types.Logger) *Module {
	return &Module{
		registry: New(observer),
		logger:   logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "registry"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.UserJoinedV1.ToBase(),
		events.UserLeftV1.ToBase(),
	}
}

// Start initializes the registry module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Registry module started")
	return nil
}

// Stop shuts down the registry module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Registry module stopped",
		"rooms", m.registry.RoomCount(),
		"members", m.registry.MemberCount())
	return nil
}

// Health returns the current health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"rooms":   m.registry.RoomCount(),
			"members": m.registry.MemberCount(),
		},
	}
}

// Join adds a member to a room and publishes a UserJoined event.
func (m *Module) Join(roomID, displayName, sessionHandle string) JoinResult {
	res := m.registry.Join(roomID, displayName, sessionHandle)

	m.publishJoined(roomID, displayName, sessionHandle, res)

	m.logger.Info("Member joined room",
		"roomID", roomID,
		"memberID", res.MemberID,
		"members", res.MemberCount)
	return res
}

// Leave removes a member from a room and publishes a UserLeft event. A
// removal that finds nothing is a no-op: the member already left or its
// connection loss was reconciled first.
func (m *Module) Leave(roomID, memberID string) (Removal, error) {
	removal, err := m.registry.Leave(roomID, memberID)
	if err != nil {
		m.logger.Debug("Leave for absent member", "roomID", roomID, "memberID", memberID)
		return Removal{}, err
	}

	m.publishLeft(removal)

	m.logger.Info("Member left room",
		"roomID", removal.RoomID,
		"memberID", removal.MemberID,
		"remaining", removal.RemainingCount)
	return removal, nil
}

// RemoveBySession reconciles a terminated connection and publishes a
// UserLeft event if a membership was found.
func (m *Module) RemoveBySession(sessionHandle string) (Removal, error) {
	removal, err := m.registry.RemoveBySession(sessionHandle)
	if err != nil {
		m.logger.Debug("Disconnect for session with no membership", "sessionHandle", sessionHandle)
		return Removal{}, err
	}

	m.publishLeft(removal)

	m.logger.Info("Member removed on disconnect",
		"roomID", removal.RoomID,
		"memberID", removal.MemberID,
		"remaining", removal.RemainingCount)
	return removal, nil
}

// Snapshot returns the room's members in join order.
func (m *Module) Snapshot(roomID string) []signaling.Member {
	return m.registry.Snapshot(roomID)
}

// Room returns room metadata by ID.
func (m *Module) Room(roomID string) (signaling.Room, bool) {
	return m.registry.Room(roomID)
}

// Rooms returns metadata for all active rooms.
func (m *Module) Rooms() []signaling.Room {
	return m.registry.Rooms()
}

func (m *Module) publishJoined(roomID, displayName, sessionHandle string, res JoinResult) {
	if m.eventBus == nil {
		return
	}
	event := events.UserJoinedEvent{
		RoomID:        roomID,
		MemberID:      res.MemberID,
		DisplayName:   displayName,
		SessionHandle: sessionHandle,
		MemberCount:   res.MemberCount,
		Timestamp:     time.Now(),
	}
	if err := events.UserJoinedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish UserJoined event", "error", err)
	}
}

func (m *Module) publishLeft(removal Removal) {
	if m.eventBus == nil {
		return
	}
	event := events.UserLeftEvent{
		RoomID:         removal.RoomID,
		MemberID:       removal.MemberID,
		DisplayName:    removal.DisplayName,
		RemainingCount: removal.RemainingCount,
		Timestamp:      time.Now(),
	}
	if err := events.UserLeftV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish UserLeft event", "error", err)
	}
}
