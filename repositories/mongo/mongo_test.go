package mongo

import (
	"chat-presence/domain"
	"chat-presence/errors"
	"chat-presence/repositories"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestMessageFilter_Document(t *testing.T) {
	req := require.New(t)

	req.Equal(bson.M{}, messageFilter(repositories.MessageFilter{}))
	req.Equal(bson.M{"to": "Ana"}, messageFilter(repositories.MessageFilter{To: lo.ToPtr("Ana")}))
	req.Equal(bson.M{"to": "Ana", "from": "Bob"},
		messageFilter(repositories.MessageFilter{To: lo.ToPtr("Ana"), From: lo.ToPtr("Bob")}))
}

func TestInactiveFilter_IncludesCutoff(t *testing.T) {
	cutoff := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	require.Equal(t, bson.M{"lastStatus": bson.M{"$lte": cutoff}}, inactiveFilter(cutoff))
	require.Equal(t, bson.M{"lastStatus": bson.M{"$lte": cutoff}}, inactiveFilter(cutoff.Add(600*time.Microsecond)))
}

func TestPatchDocument_UsesStoredFieldNames(t *testing.T) {
	doc := patchDocument(repositories.MessagePatch{From: "Ana", To: "Bob", Text: "hi", Kind: domain.KindPrivateMessage, Time: "10:00:00"})
	require.Equal(t, bson.M{
		"from": "Ana",
		"to":   "Bob",
		"text": "hi",
		"type": domain.KindPrivateMessage,
		"time": "10:00:00",
	}, doc)
}

// openMongo connects to the database named by MONGO_URL; the test is skipped otherwise.
func openMongo(t *testing.T) *mongo.Database {
	t.Helper()
	url := os.Getenv("MONGO_URL")
	if url == "" {
		t.Skip("MONGO_URL not set")
	}
	ctx := context.Background()
	db, err := NewDB(ctx, url, fmt.Sprintf("chat_test_%s", uuid.NewString()[:8]))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = db.Client().Disconnect(ctx)
	})
	return db
}

func TestParticipantRepository_Mongo(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository, err := NewParticipantRepository(ctx, openMongo(t))
	req.NoError(err)
	now := time.Now().UTC().Truncate(time.Millisecond)
	cutoff := now.Add(-10 * time.Second)

	req.NoError(repository.CreateParticipant(ctx, domain.NewParticipant("Ana", now)))
	req.ErrorIs(repository.CreateParticipant(ctx, domain.NewParticipant("Ana", now)), errors.ErrConflict)
	req.NoError(repository.CreateParticipant(ctx, domain.NewParticipant("Bob", now.Add(-time.Minute))))

	_, err = repository.GetParticipant(ctx, "ghost")
	req.ErrorIs(err, errors.ErrNotFound)
	req.ErrorIs(repository.TouchParticipant(ctx, "ghost", now), errors.ErrNotFound)

	inactive, err := repository.ListInactive(ctx, cutoff)
	req.NoError(err)
	req.Len(inactive, 1)
	req.Equal("Bob", inactive[0].Name)

	deleted, err := repository.DeleteInactive(ctx, cutoff)
	req.NoError(err)
	req.Equal(1, deleted)

	all, err := repository.ListParticipants(ctx)
	req.NoError(err)
	req.Len(all, 1)
}

func TestMessageRepository_Mongo(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository, err := NewMessageRepository(ctx, openMongo(t))
	req.NoError(err)
	at := time.Now()

	first, err := repository.StoreMessage(ctx, domain.NewJoinNotice("Ana", at))
	req.NoError(err)
	batch, err := repository.StoreMessages(ctx, []domain.Message{
		domain.NewUserMessage("Ana", "Bob", "psst", domain.KindPrivateMessage, at),
		domain.NewLeaveNotice("Clara", at),
	})
	req.NoError(err)
	req.Equal(first.Seq+1, batch[0].Seq)
	req.Equal(first.Seq+2, batch[1].Seq)

	toBob, err := repository.FindMessages(ctx, repositories.MessageFilter{To: lo.ToPtr("Bob")})
	req.NoError(err)
	req.Len(toBob, 1)
	req.Equal(batch[0], toBob[0])

	updated, err := repository.UpdateMessage(ctx, batch[0].ID, repositories.MessagePatch{From: "Ana", To: domain.BroadcastTarget, Text: "hello", Kind: domain.KindMessage, Time: "10:00:00"})
	req.NoError(err)
	req.Equal(batch[0].Seq, updated.Seq)
	req.Equal("hello", updated.Text)

	req.NoError(repository.DeleteMessage(ctx, first.ID))
	req.ErrorIs(repository.DeleteMessage(ctx, first.ID), errors.ErrNotFound)
	_, err = repository.GetMessage(ctx, first.ID)
	req.ErrorIs(err, errors.ErrNotFound)
}
