//go:generate go run go.uber.org/mock/mockgen -source=presence_service.go -destination=../mocks/mock_presence_service.go -package=mocks
package services

import (
	"chat-presence/domain"
	"chat-presence/errors"
	"chat-presence/repositories"
	"chat-presence/validation"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
)

type IPresenceService interface {
	Register(ctx context.Context, name string) (domain.Participant, error)
	Heartbeat(ctx context.Context, name string) error
	ListParticipants(ctx context.Context) ([]domain.Participant, error)
	// EvictInactive removes every participant not seen since now-timeout
	// and returns the names it announced as gone.
	EvictInactive(ctx context.Context, now time.Time, timeout time.Duration) ([]string, error)
}

type PresenceService struct {
	log          *slog.Logger
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	sanitizer    *validation.Sanitizer
	clock        func() time.Time

	// allowReserved lets "System" and "Todos" register like any other name
	allowReserved bool
}

func NewPresenceService(
	log *slog.Logger,
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	sanitizer *validation.Sanitizer,
	clock func() time.Time,
) *PresenceService {
	if clock == nil {
		clock = time.Now
	}
	return &PresenceService{
		log:          log,
		participants: participants,
		messages:     messages,
		sanitizer:    sanitizer,
		clock:        clock,
	}
}

// AllowReservedNames toggles registration of "System" and "Todos". A participant
// named System may then edit and delete status messages.
func (s *PresenceService) AllowReservedNames(allow bool) *PresenceService {
	s.allowReserved = allow
	return s
}

// Register adds a participant and broadcasts "<name> joined".
// The participant stays registered when the notice cannot be written.
func (s *PresenceService) Register(ctx context.Context, name string) (domain.Participant, error) {
	req, err := s.sanitizer.Participant(validation.ParticipantRequest{Name: name})
	if err != nil {
		return domain.Participant{}, err
	}
	if !s.allowReserved && domain.IsReservedName(req.Name) {
		return domain.Participant{}, fmt.Errorf("%q is reserved: %w", req.Name, errors.ErrConflict)
	}

	now := s.clock()
	participant := domain.NewParticipant(req.Name, now)
	if err := s.participants.CreateParticipant(ctx, participant); err != nil {
		return domain.Participant{}, err
	}

	if _, err := s.messages.StoreMessage(ctx, domain.NewJoinNotice(participant.Name, now)); err != nil {
		s.log.Error("Failed to announce participant", "name", participant.Name, "err", err)
		return participant, err
	}
	s.log.Debug("Participant registered", "name", participant.Name)
	return participant, nil
}

func (s *PresenceService) Heartbeat(ctx context.Context, name string) error {
	return s.participants.TouchParticipant(ctx, name, s.clock())
}

func (s *PresenceService) ListParticipants(ctx context.Context) ([]domain.Participant, error) {
	return s.participants.ListParticipants(ctx)
}

// EvictInactive writes the "left" notices before deleting, so a participant refreshed
// between the two steps is kept but still announced as gone.
func (s *PresenceService) EvictInactive(ctx context.Context, now time.Time, timeout time.Duration) ([]string, error) {
	cutoff := domain.TruncateSeen(now.Add(-timeout))

	// 1. Select the stale participants
	stale, err := s.participants.ListInactive(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if len(stale) == 0 {
		return nil, nil
	}
	names := lo.Map(stale, func(p domain.Participant, _ int) string { return p.Name })

	// 2. Announce them in one batch
	notices := lo.Map(names, func(name string, _ int) domain.Message {
		return domain.NewLeaveNotice(name, now)
	})
	if _, err := s.messages.StoreMessages(ctx, notices); err != nil {
		return nil, err
	}

	// 3. Delete with the same cutoff, re-checked by the store
	deleted, err := s.participants.DeleteInactive(ctx, cutoff)
	if err != nil {
		return names, err
	}
	if deleted < len(names) {
		s.log.Warn("Participant refreshed during eviction", "announced", len(names), "deleted", deleted)
	}
	s.log.Info("Evicted inactive participants", "evicted", names)
	return names, nil
}
