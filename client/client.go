// Package client calls the chat HTTP API on behalf of one user.
package client

import (
	"chat-presence/api"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultTimeout = 5 * time.Second

// Client is bound to one user name, sent in the User header.
type Client struct {
	baseURL string
	user    string
	timeout time.Duration
}

func New(baseURL, user string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), user: user, timeout: defaultTimeout}
}

func (c *Client) User() string {
	return c.user
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status int
	Body   api.ErrorResponse
}

func (e *APIError) Error() string {
	if len(e.Body.Details) > 0 {
		return fmt.Sprintf("%d %s: %s (%s)", e.Status, e.Body.Error, e.Body.Message, strings.Join(e.Body.Details, "; "))
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Body.Error, e.Body.Message)
}

// StatusOf returns the HTTP status carried by err, 0 when err is not an APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Join registers the user. The server answers 201 without a body.
func (c *Client) Join() error {
	return c.do(fiber.Post(c.url("/participants")).JSON(api.ParticipantRequest{Name: c.user}), nil)
}

func (c *Client) Participants() ([]api.ParticipantResponse, error) {
	var out []api.ParticipantResponse
	err := c.do(fiber.Get(c.url("/participants")), &out)
	return out, err
}

func (c *Client) Health() (api.HealthResponse, error) {
	var out api.HealthResponse
	err := c.do(fiber.Get(c.url("/health")), &out)
	return out, err
}

func (c *Client) Heartbeat() error {
	return c.do(fiber.Post(c.url("/status")), nil)
}

// Say broadcasts text to every participant.
func (c *Client) Say(text string) (api.MessageResponse, error) {
	return c.send(api.MessageRequest{To: "Todos", Text: text, Type: "message"})
}

func (c *Client) Whisper(to, text string) (api.MessageResponse, error) {
	return c.send(api.MessageRequest{To: to, Text: text, Type: "private_message"})
}

// Messages lists what the user can read. A negative limit asks for everything.
func (c *Client) Messages(limit int) ([]api.MessageResponse, error) {
	path := "/messages"
	if limit >= 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []api.MessageResponse
	err := c.do(fiber.Get(c.url(path)), &out)
	return out, err
}

func (c *Client) Edit(id string, req api.MessageRequest) (api.MessageResponse, error) {
	var out api.MessageResponse
	err := c.do(fiber.Put(c.url("/messages/"+id)).JSON(req), &out)
	return out, err
}

func (c *Client) Delete(id string) error {
	return c.do(fiber.Delete(c.url("/messages/"+id)), nil)
}

func (c *Client) send(req api.MessageRequest) (api.MessageResponse, error) {
	var out api.MessageResponse
	err := c.do(fiber.Post(c.url("/messages")).JSON(req), &out)
	return out, err
}

// do sends the request with the User header and decodes a 2xx body into out.
func (c *Client) do(agent *fiber.Agent, out any) error {
	code, body, errs := agent.Set("User", c.user).Timeout(c.timeout).Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("request failed: %w", stderrors.Join(errs...))
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		apiErr := &APIError{Status: code}
		if err := json.Unmarshal(body, &apiErr.Body); err != nil {
			apiErr.Body.Message = strings.TrimSpace(string(body))
		}
		return apiErr
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}
