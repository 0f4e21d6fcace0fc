// Package api exposes presence and messaging over HTTP. The caller's identity
// travels in the User header.
package api

import (
	"chat-presence/services"
	"chat-presence/storage"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const userHeader = "User"

// IStoreState reports the store lifecycle for /health.
type IStoreState interface {
	State() storage.State
}

type Config struct {
	CorsOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	app      *fiber.App
	log      *slog.Logger
	presence services.IPresenceService
	messages services.IMessageService
	store    IStoreState
}

func NewServer(
	cfg Config,
	log *slog.Logger,
	presence services.IPresenceService,
	messages services.IMessageService,
	store IStoreState,
) *Server {
	s := &Server{log: log, presence: presence, messages: messages, store: store}

	// Immutable copies request values, handlers pass them to the store
	s.app = fiber.New(fiber.Config{
		AppName:               "chat-presence",
		DisableStartupMessage: true,
		Immutable:             true,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler:          s.errorHandler,
	})

	s.app.Use(recover.New())
	s.app.Use(requestLogger(log))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins(cfg.CorsOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, " + userHeader,
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Post("/participants", s.register)
	s.app.Get("/participants", s.listParticipants)
	s.app.Post("/messages", s.sendMessage)
	s.app.Get("/messages", s.listMessages)
	s.app.Put("/messages/:id", s.editMessage)
	s.app.Delete("/messages/:id", s.deleteMessage)
	s.app.Post("/status", s.heartbeat)
	s.app.Get("/health", s.health)
}

// App exposes the fiber app, mostly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.log.Info("HTTP server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Serve accepts connections on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("HTTP server listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func allowOrigins(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}
