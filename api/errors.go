package api

import (
	"chat-presence/errors"
	"chat-presence/validation"
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
)

// toErrorResponse maps service errors to a status code and body.
// ErrSenderNotRegistered is checked first since it also wraps ErrNotFound.
func toErrorResponse(err error) (int, ErrorResponse) {
	var fe *fiber.Error
	switch {
	case stderrors.Is(err, errors.ErrValidation):
		return fiber.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_failed",
			Message: "request is invalid",
			Details: validation.Details(err),
		}
	case stderrors.Is(err, errors.ErrSenderNotRegistered):
		return fiber.StatusUnprocessableEntity, ErrorResponse{Error: "sender_not_registered", Message: err.Error()}
	case stderrors.Is(err, errors.ErrConflict):
		return fiber.StatusConflict, ErrorResponse{Error: "conflict", Message: err.Error()}
	case stderrors.Is(err, errors.ErrNotFound):
		return fiber.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()}
	case stderrors.Is(err, errors.ErrForbidden):
		return fiber.StatusUnauthorized, ErrorResponse{Error: "forbidden", Message: err.Error()}
	case stderrors.Is(err, errors.ErrStoreClosed):
		return fiber.StatusServiceUnavailable, ErrorResponse{Error: "store_unavailable", Message: "store is closed"}
	case stderrors.As(err, &fe):
		return fe.Code, ErrorResponse{Error: "http_error", Message: fe.Message}
	default:
		return fiber.StatusInternalServerError, ErrorResponse{Error: "internal", Message: "internal server error"}
	}
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code, body := toErrorResponse(err)
	if code >= fiber.StatusInternalServerError {
		s.log.Error("Request failed", "method", c.Method(), "path", c.Path(), "err", err)
	}
	return c.Status(code).JSON(body)
}
