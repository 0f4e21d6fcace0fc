package e2e

import (
	"chat-presence/api"
	"chat-presence/client"
	"chat-presence/moderation"
	"chat-presence/runtime/workers"
	"chat-presence/services"
	"chat-presence/storage"
	"chat-presence/validation"
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

const sweepInterval = 100 * time.Millisecond

type BaseHTTPSuite struct {
	suite.Suite
	Config  Config
	Timeout time.Duration
	baseURL string
	stop    func()
}

// SetupSuite loads the configuration and, without E2E_SERVER_URL, boots a
// full server on a random local port with a fast eviction sweep.
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.Timeout, err = time.ParseDuration(s.Config.ParticipantTimeout)
	s.Require().NoError(err)

	if s.Config.ServerURL != "" {
		s.baseURL = s.Config.ServerURL
		s.stop = func() {}
		return
	}
	s.baseURL, s.stop = s.startServer()
}

func (s *BaseHTTPSuite) TearDownSuite() {
	if s.stop != nil {
		s.stop()
	}
}

func (s *BaseHTTPSuite) startServer() (string, func()) {
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	backend, err := storage.Connect(ctx, storage.Config{Driver: storage.DriverBadger, BadgerFilepath: s.T().TempDir()}, log)
	s.Require().NoError(err)

	censor, err := moderation.NewCensor([]string{"badger"}, '*')
	s.Require().NoError(err)
	sanitizer := validation.NewSanitizer(500)
	presence := services.NewPresenceService(log, backend.Participants, backend.Messages, sanitizer, time.Now)
	messages := services.NewMessageService(log, backend.Participants, backend.Messages, sanitizer, censor, time.Now)

	sup := workers.NewSupervisor(log, 50*time.Millisecond)
	sup.Add(workers.NewEvictionWorker(log, presence, sweepInterval, s.Timeout, time.Now))
	supCtx, stopSup := context.WithCancel(ctx)
	supDone := make(chan struct{})
	go func() {
		sup.Run(supCtx)
		close(supDone)
	}()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	server := api.NewServer(api.Config{}, log, presence, messages, backend)
	go func() { _ = server.Serve(ln) }()

	return "http://" + ln.Addr().String(), func() {
		_ = server.Shutdown()
		stopSup()
		<-supDone
		_ = backend.Close(ctx)
	}
}

// As runs fn with a client acting as user, under a step header.
func (s *BaseHTTPSuite) As(user, step string, fn func(c *client.Client)) {
	header := fmt.Sprintf("  ====== %s: %s ======", user, step)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
	fn(client.New(s.baseURL, user))
}
