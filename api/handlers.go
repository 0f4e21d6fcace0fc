package api

import (
	"chat-presence/domain"
	"chat-presence/domain/chat"
	"chat-presence/storage"
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shirou/gopsutil/process"
)

func (s *Server) register(c *fiber.Ctx) error {
	var req ParticipantRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if _, err := s.presence.Register(c.UserContext(), req.Name); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusCreated)
}

func (s *Server) listParticipants(c *fiber.Ctx) error {
	participants, err := s.presence.ListParticipants(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(toParticipantResponses(participants))
}

func (s *Server) sendMessage(c *fiber.Ctx) error {
	var req MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	message, err := s.messages.Send(c.UserContext(), chat.PostMessageCommand{
		From: c.Get(userHeader),
		To:   req.To,
		Text: req.Text,
		Kind: domain.MessageKind(req.Type),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toMessageResponse(message))
}

func (s *Server) listMessages(c *fiber.Ctx) error {
	messages, err := s.messages.ListFor(c.UserContext(), chat.ListMessagesCommand{
		User:  c.Get(userHeader),
		Limit: parseLimit(c.Query("limit")),
	})
	if err != nil {
		return err
	}
	return c.JSON(toMessageResponses(messages))
}

func (s *Server) editMessage(c *fiber.Ctx) error {
	var req MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	message, err := s.messages.Edit(c.UserContext(), chat.EditMessageCommand{
		ID:        c.Params("id"),
		Requester: c.Get(userHeader),
		To:        req.To,
		Text:      req.Text,
		Kind:      domain.MessageKind(req.Type),
	})
	if err != nil {
		return err
	}
	return c.JSON(toMessageResponse(message))
}

func (s *Server) deleteMessage(c *fiber.Ctx) error {
	err := s.messages.Delete(c.UserContext(), chat.DeleteMessageCommand{
		ID:        c.Params("id"),
		Requester: c.Get(userHeader),
	})
	if err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) heartbeat(c *fiber.Ctx) error {
	if err := s.presence.Heartbeat(c.UserContext(), c.Get(userHeader)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) health(c *fiber.Ctx) error {
	state := s.store.State()
	resp := HealthResponse{Status: "ok", Store: state.String(), Pid: int32(os.Getpid())}

	if p, err := process.NewProcess(resp.Pid); err == nil {
		if mem, err := p.MemoryInfo(); err == nil {
			resp.RSSBytes = mem.RSS
		}
		if cpu, err := p.CPUPercent(); err == nil {
			resp.CPUPercent = cpu
		}
	}

	if state != storage.StateReady {
		resp.Status = "unavailable"
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

// parseLimit returns nil for an absent, non-numeric or negative limit,
// meaning no limit at all.
func parseLimit(raw string) *int {
	if raw == "" {
		return nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return nil
	}
	return &limit
}
