package router

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/SachinX01/WEBCHAT/domain/signaling"
	"github.com/SachinX01/WEBCHAT/events"
)

// Sender is the delivery surface the router needs from the gateway. Targeted
// sends report whether the handle resolved to a live session; broadcasts
// report the number of recipients.
type Sender interface {
	SendToSession(sessionHandle, event string, payload any) bool
	BroadcastToRoom(roomID, event string, payload any, excludeSession string) int
}

// Module is the stateless message router. Negotiation payloads (offers,
// answers, candidates) are opaque: they are forwarded verbatim to the
// session handle the sender named, with no check that the target belongs to
// any room, since negotiation may happen between peers still joining.
type Module struct {
	sender   Sender
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module              = (*Module)(nil)
	_ mono.EventBusAwareModule = (*Module)(nil)
	_ mono.EventEmitterModule  = (*Module)(nil)
)

// NewModule creates the router module.
func NewModule(sender Sender, logger types.Logger) *Module {
	return &Module{
		sender: sender,
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "router"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.MessageBroadcastV1.ToBase(),
	}
}

// Start initializes the router module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Router module started")
	return nil
}

// Stop shuts down the router module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Router module stopped")
	return nil
}

// Forward delivers a negotiation payload verbatim to exactly one session.
// A stale or unknown target is a silent no-op: reporting undeliverable sends
// is the gateway's concern, never the sender's call path.
func (m *Module) Forward(targetSession, event string, payload json.RawMessage) {
	if !m.sender.SendToSession(targetSession, event, payload) {
		m.logger.Debug("Dropped forward to unknown session",
			"event", event,
			"target", targetSession)
	}
}

// Broadcast fans a chat message out to every member of a room, sender
// included. The server stamps the delivery time once, overriding any
// client-supplied timestamp, so every copy carries the identical value.
func (m *Module) Broadcast(roomID string, payload map[string]any) {
	stamp := time.Now()
	payload["timestamp"] = stamp

	recipients := m.sender.BroadcastToRoom(roomID, signaling.EventMessage, payload, "")

	m.publishBroadcast(roomID, recipients, stamp)
}

func (m *Module) publishBroadcast(roomID string, recipients int, stamp time.Time) {
	if m.eventBus == nil {
		return
	}
	event := events.MessageBroadcastEvent{
		RoomID:     roomID,
		Recipients: recipients,
		Timestamp:  stamp,
	}
	if err := events.MessageBroadcastV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish MessageBroadcast event", "error", err)
	}
}
