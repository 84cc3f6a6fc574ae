package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-room/moderation"
	"chat-room/runtime"
	"chat-room/runtime/workers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so deferred cleanup always executes.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Moderation dictionary (optional)
	mask, err := characterRune(config.ModerationCharReplacement)
	if err != nil {
		return err
	}
	moderator, err := moderation.NewModerator(splitWords(config.CensoredWords), mask, log)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}

	// 3. Listener & chat core
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	registry := runtime.NewRegistry()
	broadcaster := runtime.NewBroadcaster(registry, log)
	server := runtime.NewServer(listener, registry, broadcaster, moderator,
		config.ConnectionBufferSize, log)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(server, workers.NewTelemetryWorker(log, registry, config.TelemetryInterval))

	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	<-ctx.Done()
	log.Info("Shutting down gracefully...")

	// 6. Final cleanup: notify clients, close handles, drain sessions
	server.Close()
	if err := server.Drain(config.ShutdownTimeout); err != nil {
		log.Warn("Sessions still draining after timeout")
	}
	sup.Stop()
	<-done
	log.Info("Program stopped cleanly")

	return nil
}

func splitWords(csv string) []string {
	var words []string
	for _, w := range strings.Split(csv, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func characterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MODERATION_CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
