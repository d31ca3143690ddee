package presence

import (
	"context"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Module gives the notifier a place in the application lifecycle. Dispatch
// itself is synchronous on the registry's mutation path, so there is nothing
// to run or drain here.
type Module struct {
	notifier *Notifier
	logger   types.Logger
}

var _ mono.Module = (*Module)(nil)

// NewModule creates the presence module.
func NewModule(notifier *Notifier, logger types.Logger) *Module {
	return &Module{
		notifier: notifier,
		logger:   logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "presence"
}

// Start initializes the presence module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Presence module started")
	return nil
}

// Stop shuts down the presence module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Presence module stopped")
	return nil
}

// Notifier returns the underlying notifier.
func (m *Module) Notifier() *Notifier {
	return m.notifier
}
