// Package mongo stores participants and messages in MongoDB, the database the chat
// originally ran on. Records use the same bson layout as the badger store.
package mongo

import (
	"chat-presence/errors"
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	participantCollection = "participants"
	messageCollection     = "messages"
	counterCollection     = "counters"
	pingTimeout           = 2 * time.Second
)

// NewDB connects to MongoDB and pings the primary before returning the database.
func NewDB(ctx context.Context, connectionString, database string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client.Database(database), nil
}

func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, errors.ErrNotFound),
		stderrors.Is(err, errors.ErrConflict),
		stderrors.Is(err, errors.ErrStore):
		return err
	case stderrors.Is(err, mongo.ErrClientDisconnected):
		return fmt.Errorf("%s: %w", op, errors.ErrStoreClosed)
	default:
		return fmt.Errorf("%s: %w: %w", op, errors.ErrStore, err)
	}
}
