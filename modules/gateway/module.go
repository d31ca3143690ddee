package gateway

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jaevor/go-nanoid"

	"github.com/SachinX01/WEBCHAT/modules/registry"
	"github.com/SachinX01/WEBCHAT/modules/router"
	"github.com/SachinX01/WEBCHAT/modules/stats"
)

// roomIDAlphabet keeps generated room identifiers readable and URL-safe.
const roomIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Module implements the HTTP and WebSocket edge using the Fiber framework.
// It owns the session hub and translates wire frames into calls on the
// registry and router modules.
type Module struct {
	app      *fiber.App
	handlers *Handlers
	hub      *Hub
	addr     string

	registryModule *registry.Module
	routerModule   *router.Module
	statsPort      stats.StatsPort
	logger         types.Logger
}

// Ensure Module implements the framework interfaces
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new gateway module.
func NewModule(addr string, hub *Hub, registryModule *registry.Module, routerModule *router.Module, moduleLogger types.Logger) *Module {
	return &Module{
		addr:           addr,
		hub:            hub,
		registryModule: registryModule,
		routerModule:   routerModule,
		logger:         moduleLogger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "gateway"
}

// Hub exposes the session hub so presence and routing can send through it.
func (m *Module) Hub() *Hub {
	return m.hub
}

// Dependencies declares the modules whose services the gateway calls.
// The framework will call SetDependencyServiceContainer for each dependency.
func (m *Module) Dependencies() []string {
	return []string{"stats"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "stats":
		m.statsPort = stats.NewStatsAdapter(container)
	}
}

// Start initializes and starts the HTTP/WebSocket server.
func (m *Module) Start(ctx context.Context) error {
	// Create Fiber app with custom config
	m.app = fiber.New(fiber.Config{
		AppName:               "WebChat Signaling",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
	})

	// Add middleware
	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
	}))

	// CORS configuration
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Register routes
	m.registerRoutes()

	// Start server in goroutine with startup error detection
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			errCh <- err
		}
	}()

	// Wait briefly to catch immediate startup errors
	select {
	case err := <-errCh:
		return fmt.Errorf("gateway failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		// Server started successfully
	}

	m.logger.Info("Gateway started", "addr", m.addr)
	return nil
}

// Stop gracefully shuts down the server and tears down live sessions.
func (m *Module) Stop(ctx context.Context) error {
	if m.app != nil {
		if err := m.app.ShutdownWithContext(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}
	m.hub.CloseAll()
	m.logger.Info("Gateway stopped")
	return nil
}

// Health reports gateway health with live session details.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "Gateway is running",
		Details: map[string]any{
			"addr":     m.addr,
			"sessions": m.hub.SessionCount(),
		},
	}
}

// registerRoutes sets up all HTTP and WebSocket routes.
func (m *Module) registerRoutes() {
	roomID, err := nanoid.CustomASCII(roomIDAlphabet, 8)
	if err != nil {
		// Only possible with a bad alphabet or length, both constant here.
		panic(err)
	}

	m.handlers = NewHandlers(m.registryModule, m.routerModule, m.hub, roomID, m.logger)
	if m.statsPort != nil {
		m.handlers.SetStats(m.statsPort)
	}

	// Health check
	m.app.Get("/health", m.handlers.HealthCheck)

	// Room ID minting, the room itself appears on first join
	m.app.Get("/create", m.handlers.CreateRoomID)

	// WebSocket upgrade middleware
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket endpoint
	m.app.Get("/ws", websocket.New(m.handlers.HandleWebSocket))

	// REST API routes
	api := m.app.Group("/api/v1")
	api.Get("/rooms", m.handlers.ListRooms)
	api.Get("/rooms/:id/members", m.handlers.RoomMembers)
	api.Get("/stats", m.handlers.GetStats)
}

// errorHandler handles errors globally.
func (m *Module) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	m.logger.Error("HTTP error", "code", code, "message", message, "error", err)

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
