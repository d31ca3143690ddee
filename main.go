package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/joho/godotenv"

	"github.com/SachinX01/WEBCHAT/modules/gateway"
	"github.com/SachinX01/WEBCHAT/modules/presence"
	"github.com/SachinX01/WEBCHAT/modules/registry"
	"github.com/SachinX01/WEBCHAT/modules/router"
	"github.com/SachinX01/WEBCHAT/modules/stats"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== WebChat Signaling Server ===")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	addr := ":" + envOr("PORT", "8080")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	logger := app.Logger()

	// Create modules. The hub and the presence notifier are wired by hand:
	// presence delivery must follow registry mutation order, so the notifier
	// hangs off the registry's observer hook instead of the event bus.
	hub := gateway.NewHub(logger)
	notifier := presence.NewNotifier(hub, logger)
	registryModule := registry.NewModule(notifier, logger)
	routerModule := router.NewModule(hub, logger)
	presenceModule := presence.NewModule(notifier, logger)
	statsModule := stats.NewModule(logger)
	gatewayModule := gateway.NewModule(addr, hub, registryModule, routerModule, logger)

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	app.Register(registryModule)
	app.Register(presenceModule)
	app.Register(routerModule)
	app.Register(statsModule)
	app.Register(gatewayModule) // depends on stats

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(addr)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printStartupInfo(addr string) {
	log.Println("")
	log.Println("Signaling server started successfully!")
	log.Println("")
	log.Printf("WebSocket endpoint: ws://localhost%s/ws", addr)
	log.Println("")
	log.Println("WebSocket events:")
	log.Println("  join          - Join a room (display_name, room_id)")
	log.Println("  leave         - Leave a room (room_id, member_id)")
	log.Println("  sdp_offer     - Forward an SDP offer to target_session")
	log.Println("  sdp_answer    - Forward an SDP answer to target_session")
	log.Println("  ice_candidate - Forward an ICE candidate to target_session")
	log.Println("  message       - Broadcast a chat message to a room")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost%s):", addr)
	log.Println("  GET /create                  - Mint a room ID")
	log.Println("  GET /api/v1/rooms            - List active rooms")
	log.Println("  GET /api/v1/rooms/:id/members - List room members")
	log.Println("  GET /api/v1/stats            - Server activity counters")
	log.Println("  GET /health                  - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
