package main

import (
	"chat-presence/api"
	"chat-presence/moderation"
	"chat-presence/runtime/workers"
	"chat-presence/services"
	"chat-presence/storage"
	"chat-presence/validation"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Netflix/go-env"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

// run wires every component and blocks until a shutdown signal has been handled.
// It returns the exit code computed by the shutdown sequence.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return 1, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Store
	backend, err := storage.Connect(context.Background(), storage.Config{
		Driver:         storage.Driver(config.StoreDriver),
		BadgerFilepath: config.BadgerFilepath,
		MongoURL:       config.MongoURL,
		MongoDatabase:  config.MongoDatabase,
	}, log)
	if err != nil {
		return 1, fmt.Errorf("store opening failed: %w", err)
	}

	// 3. Services
	censor, err := moderation.NewCensor(config.censoredWords(), config.censorRune())
	if err != nil {
		_ = backend.Close(context.Background())
		return 1, fmt.Errorf("censor setup failed: %w", err)
	}
	sanitizer := validation.NewSanitizer(config.MaxTextLength)
	presence := services.NewPresenceService(log, backend.Participants, backend.Messages, sanitizer, time.Now).
		AllowReservedNames(config.AllowReservedNames)
	messages := services.NewMessageService(log, backend.Participants, backend.Messages, sanitizer, censor, time.Now)

	// 4. Supervised eviction sweep
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewEvictionWorker(log, presence, config.SweepInterval, config.ParticipantTimeout, time.Now))
	supCtx, stopSup := context.WithCancel(context.Background())
	supDone := make(chan struct{})
	go func() {
		sup.Run(supCtx)
		close(supDone)
	}()

	// 5. HTTP server
	server := api.NewServer(api.Config{CorsOrigins: config.corsOrigins()}, log, presence, messages, backend)
	go func() {
		if err := server.Listen(config.Address()); err != nil {
			log.Error("HTTP server stopped", "err", err)
		}
	}()

	// 6. On a signal stop HTTP and the sweep, then close the store
	wait := gfshutdown.GracefulShutdown(context.Background(), config.ShutdownTimeout, map[string]gfshutdown.Operation{
		"http": func(ctx context.Context) error {
			return server.Shutdown()
		},
		"supervisor": func(ctx context.Context) error {
			stopSup()
			select {
			case <-supDone:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
	code := <-wait

	if err := backend.Close(context.Background()); err != nil {
		log.Error("Store close failed", "err", err)
		code = 1
	}
	log.Info("Program stopped", "code", code)
	return code, nil
}
