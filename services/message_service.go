//go:generate go run go.uber.org/mock/mockgen -source=message_service.go -destination=../mocks/mock_message_service.go -package=mocks
package services

import (
	"chat-presence/domain"
	"chat-presence/domain/chat"
	"chat-presence/errors"
	"chat-presence/repositories"
	"chat-presence/validation"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/lo"
)

type IMessageService interface {
	Send(ctx context.Context, cmd chat.PostMessageCommand) (domain.Message, error)
	ListFor(ctx context.Context, cmd chat.ListMessagesCommand) ([]domain.Message, error)
	Edit(ctx context.Context, cmd chat.EditMessageCommand) (domain.Message, error)
	Delete(ctx context.Context, cmd chat.DeleteMessageCommand) error
}

// ITextFilter rewrites message text before it is stored.
type ITextFilter interface {
	Censor(text string) (string, []string)
}

type MessageService struct {
	log          *slog.Logger
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	sanitizer    *validation.Sanitizer
	filter       ITextFilter
	clock        func() time.Time
}

// NewMessageService builds the router. filter may be nil.
func NewMessageService(
	log *slog.Logger,
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	sanitizer *validation.Sanitizer,
	filter ITextFilter,
	clock func() time.Time,
) *MessageService {
	if clock == nil {
		clock = time.Now
	}
	return &MessageService{
		log:          log,
		participants: participants,
		messages:     messages,
		sanitizer:    sanitizer,
		filter:       filter,
		clock:        clock,
	}
}

func (s *MessageService) Send(ctx context.Context, cmd chat.PostMessageCommand) (domain.Message, error) {
	req, err := s.sanitizer.Message(validation.MessageRequest{To: cmd.To, Text: cmd.Text, Type: cmd.Kind})
	if err != nil {
		return domain.Message{}, err
	}
	if _, err := s.participants.GetParticipant(ctx, cmd.From); err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return domain.Message{}, fmt.Errorf("%q: %w", cmd.From, errors.ErrSenderNotRegistered)
		}
		return domain.Message{}, err
	}

	message := domain.NewUserMessage(cmd.From, req.To, s.censor(req.Text), req.Type, s.clock())
	return s.messages.StoreMessage(ctx, message)
}

// ListFor merges the messages sent to the user, sent by the user and broadcast,
// without duplicates and in insertion order. A non-nil limit keeps the last entries.
func (s *MessageService) ListFor(ctx context.Context, cmd chat.ListMessagesCommand) ([]domain.Message, error) {
	if cmd.User == "" {
		return nil, fmt.Errorf("user is required: %w", errors.ErrValidation)
	}

	var merged []domain.Message
	for _, filter := range []repositories.MessageFilter{
		{To: lo.ToPtr(cmd.User)},
		{From: lo.ToPtr(cmd.User)},
		{To: lo.ToPtr(domain.BroadcastTarget)},
	} {
		found, err := s.messages.FindMessages(ctx, filter)
		if err != nil {
			return nil, err
		}
		merged = append(merged, found...)
	}

	visible := lo.UniqBy(merged, func(m domain.Message) string { return m.ID })
	slices.SortStableFunc(visible, func(a, b domain.Message) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})

	if cmd.Limit != nil && *cmd.Limit >= 0 && *cmd.Limit < len(visible) {
		visible = visible[len(visible)-*cmd.Limit:]
	}
	if visible == nil {
		visible = make([]domain.Message, 0)
	}
	return visible, nil
}

func (s *MessageService) Edit(ctx context.Context, cmd chat.EditMessageCommand) (domain.Message, error) {
	req, err := s.sanitizer.Message(validation.MessageRequest{To: cmd.To, Text: cmd.Text, Type: cmd.Kind})
	if err != nil {
		return domain.Message{}, err
	}
	if err := s.authorize(ctx, cmd.ID, cmd.Requester); err != nil {
		return domain.Message{}, err
	}

	return s.messages.UpdateMessage(ctx, cmd.ID, repositories.MessagePatch{
		From: cmd.Requester,
		To:   req.To,
		Text: s.censor(req.Text),
		Kind: req.Type,
		Time: domain.FormatClock(s.clock()),
	})
}

func (s *MessageService) Delete(ctx context.Context, cmd chat.DeleteMessageCommand) error {
	if err := s.authorize(ctx, cmd.ID, cmd.Requester); err != nil {
		return err
	}
	return s.messages.DeleteMessage(ctx, cmd.ID)
}

// authorize loads the message and checks that requester sent it.
func (s *MessageService) authorize(ctx context.Context, id, requester string) error {
	message, err := s.messages.GetMessage(ctx, id)
	if err != nil {
		return err
	}
	if message.From != requester {
		s.log.Debug("Rejected change by non-sender", "id", id, "requester", requester)
		return errors.ErrForbidden
	}
	return nil
}

func (s *MessageService) censor(text string) string {
	if s.filter == nil {
		return text
	}
	censored, words := s.filter.Censor(text)
	if len(words) > 0 {
		s.log.Debug("Censored message text", "words", len(words))
	}
	return censored
}
