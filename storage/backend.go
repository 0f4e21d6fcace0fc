// Package storage opens the configured store and owns its lifecycle.
package storage

import (
	"chat-presence/repositories"
	chatmongo "chat-presence/repositories/mongo"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
)

type Driver string

const (
	DriverBadger Driver = "badger"
	DriverMongo  Driver = "mongo"
)

type Config struct {
	Driver         Driver
	BadgerFilepath string
	MongoURL       string
	MongoDatabase  string
}

type State int32

const (
	StateConnecting State = iota
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Backend groups the repositories of one store connection.
type Backend struct {
	Participants repositories.IParticipantRepository
	Messages     repositories.IMessageRepository

	state     atomic.Int32
	closeOnce sync.Once
	closeErr  error
	closers   []func(ctx context.Context) error
	log       *slog.Logger
}

// Connect opens the store named by cfg.Driver and returns a ready Backend.
func Connect(ctx context.Context, cfg Config, log *slog.Logger) (*Backend, error) {
	b := &Backend{log: log}
	b.state.Store(int32(StateConnecting))

	var err error
	switch cfg.Driver {
	case DriverBadger, "":
		err = b.openBadger(cfg)
	case DriverMongo:
		err = b.openMongo(ctx, cfg)
	default:
		err = fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		_ = b.Close(ctx)
		return nil, err
	}

	b.state.Store(int32(StateReady))
	log.Info("Store ready", "driver", cfg.Driver)
	return b, nil
}

func (b *Backend) openBadger(cfg Config) error {
	db, err := badger.Open(badger.DefaultOptions(cfg.BadgerFilepath).WithLogger(nil))
	if err != nil {
		return fmt.Errorf("open badger %q: %w", cfg.BadgerFilepath, err)
	}
	b.closers = append(b.closers, func(context.Context) error { return db.Close() })

	messages, err := repositories.NewMessageRepository(db, b.log)
	if err != nil {
		return err
	}
	// Closers run in reverse, so the sequence is released before the DB closes.
	b.closers = append(b.closers, func(context.Context) error { return messages.Close() })

	b.Participants = repositories.NewParticipantRepository(db)
	b.Messages = messages
	return nil
}

func (b *Backend) openMongo(ctx context.Context, cfg Config) error {
	db, err := chatmongo.NewDB(ctx, cfg.MongoURL, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	b.closers = append(b.closers, func(ctx context.Context) error { return db.Client().Disconnect(ctx) })

	participants, err := chatmongo.NewParticipantRepository(ctx, db)
	if err != nil {
		return err
	}
	messages, err := chatmongo.NewMessageRepository(ctx, db)
	if err != nil {
		return err
	}
	b.Participants = participants
	b.Messages = messages
	return nil
}

func (b *Backend) State() State {
	return State(b.state.Load())
}

// Close releases the store. Calling it more than once returns the first result.
func (b *Backend) Close(ctx context.Context) error {
	b.closeOnce.Do(func() {
		b.state.Store(int32(StateClosed))
		var errs []error
		for i := len(b.closers) - 1; i >= 0; i-- {
			if err := b.closers[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
		b.closeErr = stderrors.Join(errs...)
		if b.log != nil {
			b.log.Info("Store closed", "err", b.closeErr)
		}
	})
	return b.closeErr
}
