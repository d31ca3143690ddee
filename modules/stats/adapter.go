package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
)

// StatsPort defines the interface for reading server statistics.
// Consumers should use this interface instead of directly referencing the Module.
type StatsPort interface {
	GetStats(ctx context.Context) (*Stats, error)
}

// statsAdapter implements StatsPort using the service container.
type statsAdapter struct {
	container mono.ServiceContainer
}

// NewStatsAdapter creates a new adapter for the stats service.
func NewStatsAdapter(container mono.ServiceContainer) StatsPort {
	if container == nil {
		panic("stats adapter requires non-nil ServiceContainer")
	}
	return &statsAdapter{container: container}
}

// GetStats retrieves the current activity snapshot via the get-stats service.
func (a *statsAdapter) GetStats(ctx context.Context) (*Stats, error) {
	client, err := a.container.GetRequestReplyService("get-stats")
	if err != nil {
		return nil, fmt.Errorf("failed to get get-stats service: %w", err)
	}

	resp, err := client.Call(ctx, []byte{})
	if err != nil {
		return nil, fmt.Errorf("get-stats service call failed: %w", err)
	}

	var stats Stats
	if err := json.Unmarshal(resp.Data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}

	return &stats, nil
}
