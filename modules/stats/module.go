package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/SachinX01/WEBCHAT/events"
)

// Module implements the stats module. It consumes signaling events off the
// bus and serves aggregated counters over a request-reply service, so it
// never touches the registry or the hub directly. Cross-subject event
// ordering is not guaranteed, which is fine here: every counter update is
// commutative.
type Module struct {
	store  *StatsStore
	logger types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new stats module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		store:  NewStatsStore(),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "stats"
}

// Start initializes the stats module.
func (m *Module) Start(ctx context.Context) error {
	m.logger.Info("Stats module started")
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(ctx context.Context) error {
	m.logger.Info("Stats module stopped")
	return nil
}

// Store returns the underlying counter store.
func (m *Module) Store() *StatsStore {
	return m.store
}

// RegisterEventConsumers registers handlers for signaling events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserJoinedV1, m.handleUserJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register UserJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserLeftV1, m.handleUserLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register UserLeft consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageBroadcastV1, m.handleMessageBroadcast, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageBroadcast consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"UserJoined.v1", "UserLeft.v1", "MessageBroadcast.v1"})
	return nil
}

func (m *Module) handleUserJoined(_ context.Context, event events.UserJoinedEvent, _ *mono.Msg) error {
	m.store.RecordJoin(event.MemberCount, event.Timestamp)
	m.logger.Debug("Recorded join", "roomID", event.RoomID, "memberID", event.MemberID)
	return nil
}

func (m *Module) handleUserLeft(_ context.Context, event events.UserLeftEvent, _ *mono.Msg) error {
	m.store.RecordLeave(event.RemainingCount, event.Timestamp)
	m.logger.Debug("Recorded leave", "roomID", event.RoomID, "memberID", event.MemberID)
	return nil
}

func (m *Module) handleMessageBroadcast(_ context.Context, event events.MessageBroadcastEvent, _ *mono.Msg) error {
	m.store.RecordMessage(event.Timestamp)
	m.logger.Debug("Recorded message", "roomID", event.RoomID, "recipients", event.Recipients)
	return nil
}

// RegisterServices registers this module's services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := container.RegisterRequestReplyService("get-stats", m.handleGetStats); err != nil {
		return fmt.Errorf("failed to register get-stats service: %w", err)
	}

	m.logger.Info("Registered stats services", "services", []string{"get-stats"})
	return nil
}

// handleGetStats handles get-stats service requests.
func (m *Module) handleGetStats(ctx context.Context, msg *mono.Msg) ([]byte, error) {
	return json.Marshal(m.store.Snapshot())
}

// Health reports stats module health with current counters.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	snap := m.store.Snapshot()
	return mono.HealthStatus{
		Healthy: true,
		Message: "Stats module is running",
		Details: map[string]any{
			"total_joins":    snap.TotalJoins,
			"total_messages": snap.TotalMessages,
			"active_rooms":   snap.ActiveRooms,
		},
	}
}
