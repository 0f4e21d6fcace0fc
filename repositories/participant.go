//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repositories

import (
	"chat-presence/domain"
	"chat-presence/errors"
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.mongodb.org/mongo-driver/bson"
)

const participantPrefix = "participant:"

type IParticipantRepository interface {
	// CreateParticipant fails with errors.ErrConflict when the name is taken,
	// including when a concurrent registration of the same name wins the race.
	CreateParticipant(ctx context.Context, participant domain.Participant) error
	GetParticipant(ctx context.Context, name string) (domain.Participant, error)
	TouchParticipant(ctx context.Context, name string, at time.Time) error
	ListParticipants(ctx context.Context) ([]domain.Participant, error)
	ListInactive(ctx context.Context, cutoff time.Time) ([]domain.Participant, error)
	// DeleteInactive removes participants still inactive at cutoff when the delete runs
	// and returns how many were removed.
	DeleteInactive(ctx context.Context, cutoff time.Time) (int, error)
}

type ParticipantRepository struct {
	db *badger.DB
}

func NewParticipantRepository(db *badger.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// CreateParticipant checks and writes "participant:{name}" in the same transaction.
// Badger's conflict detection rejects the later of two overlapping transactions that
// both read the missing key, so the name stays unique without an in-process lock.
func (r *ParticipantRepository) CreateParticipant(_ context.Context, participant domain.Participant) error {
	participant.LastSeenAt = domain.TruncateSeen(participant.LastSeenAt)
	data, err := bson.Marshal(participant)
	if err != nil {
		return fmt.Errorf("marshal participant: %w", err)
	}
	key := participantKey(participant.Name)
	err = r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return errors.ErrConflict
		case !stderrors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(key, data)
	})
	if stderrors.Is(err, badger.ErrConflict) {
		return errors.ErrConflict
	}
	return storeError("create participant", err)
}

func (r *ParticipantRepository) GetParticipant(_ context.Context, name string) (domain.Participant, error) {
	var participant domain.Participant
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		participant, err = getParticipant(txn, name)
		return err
	})
	return participant, storeError("get participant", err)
}

func (r *ParticipantRepository) TouchParticipant(_ context.Context, name string, at time.Time) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		participant, err := getParticipant(txn, name)
		if err != nil {
			return err
		}
		participant.LastSeenAt = domain.TruncateSeen(at)
		data, err := bson.Marshal(participant)
		if err != nil {
			return err
		}
		return txn.Set(participantKey(name), data)
	})
	return storeError("touch participant", err)
}

func (r *ParticipantRepository) ListParticipants(_ context.Context) ([]domain.Participant, error) {
	return r.scan(func(domain.Participant) bool { return true })
}

func (r *ParticipantRepository) ListInactive(_ context.Context, cutoff time.Time) ([]domain.Participant, error) {
	cutoff = domain.TruncateSeen(cutoff)
	return r.scan(func(p domain.Participant) bool { return p.IsInactiveSince(cutoff) })
}

// DeleteInactive re-reads every participant inside the write transaction, so one
// refreshed after ListInactive returned is kept.
func (r *ParticipantRepository) DeleteInactive(_ context.Context, cutoff time.Time) (int, error) {
	cutoff = domain.TruncateSeen(cutoff)
	deleted := 0
	err := r.db.Update(func(txn *badger.Txn) error {
		var stale [][]byte
		err := iterateParticipants(txn, func(key []byte, p domain.Participant) {
			if p.IsInactiveSince(cutoff) {
				stale = append(stale, key)
			}
		})
		if err != nil {
			return err
		}
		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		deleted = len(stale)
		return nil
	})
	if err != nil {
		return 0, storeError("delete inactive participants", err)
	}
	return deleted, nil
}

func (r *ParticipantRepository) scan(keep func(domain.Participant) bool) ([]domain.Participant, error) {
	participants := make([]domain.Participant, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		return iterateParticipants(txn, func(_ []byte, p domain.Participant) {
			if keep(p) {
				participants = append(participants, p)
			}
		})
	})
	if err != nil {
		return nil, storeError("list participants", err)
	}
	return participants, nil
}

func iterateParticipants(txn *badger.Txn, fn func(key []byte, p domain.Participant)) error {
	prefix := []byte(participantPrefix)
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		var participant domain.Participant
		err := item.Value(func(val []byte) error {
			return bson.Unmarshal(val, &participant)
		})
		if err != nil {
			return err
		}
		fn(item.KeyCopy(nil), participant)
	}
	return nil
}

func getParticipant(txn *badger.Txn, name string) (domain.Participant, error) {
	var participant domain.Participant
	item, err := txn.Get(participantKey(name))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return participant, fmt.Errorf("participant %q: %w", name, errors.ErrNotFound)
	}
	if err != nil {
		return participant, err
	}
	err = item.Value(func(val []byte) error {
		return bson.Unmarshal(val, &participant)
	})
	return participant, err
}

func participantKey(name string) []byte {
	return []byte(participantPrefix + name)
}
