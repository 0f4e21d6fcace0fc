package repositories

import (
	"chat-presence/domain"
	"chat-presence/errors"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newMessageRepository(t *testing.T) *MessageRepository {
	t.Helper()
	repository, err := NewMessageRepository(openBadger(t), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close() })
	return repository
}

func Test_Store_Assigns_Id_And_Increasing_Seq(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newMessageRepository(t)
	at := time.Now()

	first, err := repository.StoreMessage(ctx, domain.NewUserMessage("Ana", domain.BroadcastTarget, "hi", domain.KindMessage, at))
	req.NoError(err)
	second, err := repository.StoreMessage(ctx, domain.NewUserMessage("Bob", domain.BroadcastTarget, "hey", domain.KindMessage, at))
	req.NoError(err)

	req.NotEmpty(first.ID)
	req.NotEqual(first.ID, second.ID)
	req.Greater(second.Seq, first.Seq)

	fetched, err := repository.GetMessage(ctx, first.ID)
	req.NoError(err)
	req.Equal(first, fetched)
}

func Test_Find_Messages_In_Insertion_Order(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newMessageRepository(t)
	at := time.Now()

	var stored []domain.Message
	for i, m := range []domain.Message{
		domain.NewUserMessage("Ana", "Bob", "one", domain.KindPrivateMessage, at),
		domain.NewUserMessage("Bob", domain.BroadcastTarget, "two", domain.KindMessage, at),
		domain.NewUserMessage("Clara", "Bob", "three", domain.KindPrivateMessage, at),
		domain.NewUserMessage("Ana", domain.BroadcastTarget, "four", domain.KindMessage, at),
	} {
		message, err := repository.StoreMessage(ctx, m)
		req.NoError(err, "message %d", i)
		stored = append(stored, message)
	}

	all, err := repository.FindMessages(ctx, MessageFilter{})
	req.NoError(err)
	req.Equal(stored, all)

	toBob, err := repository.FindMessages(ctx, MessageFilter{To: lo.ToPtr("Bob")})
	req.NoError(err)
	req.Equal([]string{"one", "three"}, texts(toBob))

	fromAna, err := repository.FindMessages(ctx, MessageFilter{From: lo.ToPtr("Ana")})
	req.NoError(err)
	req.Equal([]string{"one", "four"}, texts(fromAna))

	anaToBob, err := repository.FindMessages(ctx, MessageFilter{From: lo.ToPtr("Ana"), To: lo.ToPtr("Bob")})
	req.NoError(err)
	req.Equal([]string{"one"}, texts(anaToBob))

	none, err := repository.FindMessages(ctx, MessageFilter{To: lo.ToPtr("nobody")})
	req.NoError(err)
	req.NotNil(none)
	req.Empty(none)
}

func Test_Store_Messages_Batch(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newMessageRepository(t)
	at := time.Now()

	before, err := repository.StoreMessage(ctx, domain.NewJoinNotice("Ana", at))
	req.NoError(err)

	stored, err := repository.StoreMessages(ctx, []domain.Message{
		domain.NewLeaveNotice("Bob", at),
		domain.NewLeaveNotice("Clara", at),
	})
	req.NoError(err)
	req.Len(stored, 2)
	req.Greater(stored[0].Seq, before.Seq)
	req.Greater(stored[1].Seq, stored[0].Seq)

	all, err := repository.FindMessages(ctx, MessageFilter{})
	req.NoError(err)
	req.Equal([]string{"Ana joined", "Bob left", "Clara left"}, texts(all))

	for _, m := range stored {
		fetched, err := repository.GetMessage(ctx, m.ID)
		req.NoError(err)
		req.Equal(m, fetched)
	}

	empty, err := repository.StoreMessages(ctx, nil)
	req.NoError(err)
	req.Empty(empty)
}

func Test_Update_Message_Keeps_Identity(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newMessageRepository(t)

	original, err := repository.StoreMessage(ctx, domain.NewUserMessage("Ana", domain.BroadcastTarget, "hi", domain.KindMessage, time.Now()))
	req.NoError(err)

	updated, err := repository.UpdateMessage(ctx, original.ID, MessagePatch{
		From: "Ana",
		To:   "Bob",
		Text: "hi Bob",
		Kind: domain.KindPrivateMessage,
		Time: "10:00:00",
	})
	req.NoError(err)
	req.Equal(original.ID, updated.ID)
	req.Equal(original.Seq, updated.Seq)
	req.Equal("hi Bob", updated.Text)

	fetched, err := repository.GetMessage(ctx, original.ID)
	req.NoError(err)
	req.Equal(updated, fetched)

	_, err = repository.UpdateMessage(ctx, "missing", MessagePatch{})
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_Delete_Message(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newMessageRepository(t)

	message, err := repository.StoreMessage(ctx, domain.NewUserMessage("Ana", domain.BroadcastTarget, "hi", domain.KindMessage, time.Now()))
	req.NoError(err)

	req.NoError(repository.DeleteMessage(ctx, message.ID))

	_, err = repository.GetMessage(ctx, message.ID)
	req.ErrorIs(err, errors.ErrNotFound)
	req.ErrorIs(repository.DeleteMessage(ctx, message.ID), errors.ErrNotFound)

	all, err := repository.FindMessages(ctx, MessageFilter{})
	req.NoError(err)
	req.Empty(all)
}

func texts(messages []domain.Message) []string {
	return lo.Map(messages, func(m domain.Message, _ int) string { return m.Text })
}
