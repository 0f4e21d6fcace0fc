package workers

import (
	"chat-presence/errors"
	"chat-presence/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEvictionWorker_Sweeps_On_Every_Tick(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	presence := mocks.NewMockIPresenceService(ctrl)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	swept := make(chan struct{}, 3)
	notify := func(context.Context, time.Time, time.Duration) {
		select {
		case swept <- struct{}{}:
		default:
		}
	}

	// Then a failing sweep does not stop the next ones
	gomock.InOrder(
		presence.EXPECT().
			EvictInactive(gomock.Any(), now, 10*time.Second).
			Return(nil, errors.ErrStore).
			Do(notify),
		presence.EXPECT().
			EvictInactive(gomock.Any(), now, 10*time.Second).
			Return([]string{"Ana"}, nil).
			Do(notify),
		presence.EXPECT().
			EvictInactive(gomock.Any(), now, 10*time.Second).
			Return(nil, nil).
			Do(notify).
			AnyTimes(),
	)

	worker := NewEvictionWorker(log, presence, 10*time.Millisecond, 10*time.Second, func() time.Time { return now })

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- worker.Run(ctx) }()

	for i := 0; i < 3; i++ {
		select {
		case <-swept:
		case <-time.After(time.Second):
			req.FailNow("sweep not triggered", "sweep %d", i)
		}
	}
	cancel()

	select {
	case err := <-result:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		req.Fail("worker should stop when its context is canceled")
	}
}

func TestEvictionWorker_Sweep_Has_Deadline(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	presence := mocks.NewMockIPresenceService(ctrl)

	presence.EXPECT().
		EvictInactive(gomock.Any(), gomock.Any(), time.Minute).
		DoAndReturn(func(ctx context.Context, _ time.Time, _ time.Duration) ([]string, error) {
			_, ok := ctx.Deadline()
			req.True(ok)
			return nil, nil
		})

	worker := NewEvictionWorker(slog.Default(), presence, time.Second, time.Minute, nil)
	worker.sweep(context.Background())
}
