//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-presence/domain"
	"chat-presence/errors"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	messagePrefix      = "msg:"
	messageIndexPrefix = "msgid:"
	messageSequenceKey = "seq:msg"
	sequenceBandwidth  = 100
)

type IMessageRepository interface {
	// StoreMessage assigns ID and Seq and returns the stored message.
	StoreMessage(ctx context.Context, message domain.Message) (domain.Message, error)
	StoreMessages(ctx context.Context, messages []domain.Message) ([]domain.Message, error)
	// FindMessages returns matching messages in insertion order.
	FindMessages(ctx context.Context, filter MessageFilter) ([]domain.Message, error)
	GetMessage(ctx context.Context, id string) (domain.Message, error)
	UpdateMessage(ctx context.Context, id string, patch MessagePatch) (domain.Message, error)
	DeleteMessage(ctx context.Context, id string) error
}

type MessageRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte(messageSequenceKey), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	return &MessageRepository{db: db, seq: seq, log: log}, nil
}

// Close hands the unused sequence lease back to badger. It must run before the DB closes.
func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

// StoreMessage persists a message under "msg:{seq_padded}" with a "msgid:{id}" index.
// The 19-digit zero padding keeps lexicographical key order equal to insertion order.
func (m *MessageRepository) StoreMessage(_ context.Context, message domain.Message) (domain.Message, error) {
	message, err := m.assign(message)
	if err != nil {
		return domain.Message{}, err
	}
	data, err := bson.Marshal(message)
	if err != nil {
		return domain.Message{}, fmt.Errorf("marshal message: %w", err)
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		key := messageKey(message.Seq)
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(messageIndexKey(message.ID), key)
	})
	if err != nil {
		return domain.Message{}, storeError("store message", err)
	}
	return message, nil
}

// StoreMessages writes a batch through a WriteBatch. A failure may leave part of
// the batch written.
func (m *MessageRepository) StoreMessages(_ context.Context, messages []domain.Message) ([]domain.Message, error) {
	if len(messages) == 0 {
		return nil, nil
	}
	wb := m.db.NewWriteBatch()
	defer wb.Cancel()

	stored := make([]domain.Message, 0, len(messages))
	for _, message := range messages {
		message, err := m.assign(message)
		if err != nil {
			return nil, err
		}
		data, err := bson.Marshal(message)
		if err != nil {
			return nil, fmt.Errorf("marshal message: %w", err)
		}
		key := messageKey(message.Seq)
		if err := wb.Set(key, data); err != nil {
			return nil, storeError("store messages", err)
		}
		if err := wb.Set(messageIndexKey(message.ID), key); err != nil {
			return nil, storeError("store messages", err)
		}
		stored = append(stored, message)
	}
	if err := wb.Flush(); err != nil {
		return nil, storeError("store messages", err)
	}
	m.log.Debug("Stored message batch", "count", len(stored))
	return stored, nil
}

func (m *MessageRepository) FindMessages(_ context.Context, filter MessageFilter) ([]domain.Message, error) {
	messages := make([]domain.Message, 0)
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var message domain.Message
			err := it.Item().Value(func(val []byte) error {
				return bson.Unmarshal(val, &message)
			})
			if err != nil {
				return err
			}
			if filter.Match(message) {
				messages = append(messages, message)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeError("find messages", err)
	}
	return messages, nil
}

func (m *MessageRepository) GetMessage(_ context.Context, id string) (domain.Message, error) {
	var message domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		var err error
		message, _, err = getMessage(txn, id)
		return err
	})
	return message, storeError("get message", err)
}

func (m *MessageRepository) UpdateMessage(_ context.Context, id string, patch MessagePatch) (domain.Message, error) {
	var updated domain.Message
	err := m.db.Update(func(txn *badger.Txn) error {
		message, key, err := getMessage(txn, id)
		if err != nil {
			return err
		}
		updated = patch.Apply(message)
		data, err := bson.Marshal(updated)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return domain.Message{}, storeError("update message", err)
	}
	return updated, nil
}

func (m *MessageRepository) DeleteMessage(_ context.Context, id string) error {
	err := m.db.Update(func(txn *badger.Txn) error {
		_, key, err := getMessage(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(messageIndexKey(id))
	})
	return storeError("delete message", err)
}

func (m *MessageRepository) assign(message domain.Message) (domain.Message, error) {
	next, err := m.seq.Next()
	if err != nil {
		return domain.Message{}, storeError("next message sequence", err)
	}
	// Sequence starts at 0; keep 0 meaning "not stored yet".
	message.Seq = int64(next) + 1
	message.ID = uuid.NewString()
	return message, nil
}

// getMessage resolves the id index and returns the message with its primary key.
func getMessage(txn *badger.Txn, id string) (domain.Message, []byte, error) {
	var message domain.Message
	idx, err := txn.Get(messageIndexKey(id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return message, nil, fmt.Errorf("message %q: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return message, nil, err
	}
	key, err := idx.ValueCopy(nil)
	if err != nil {
		return message, nil, err
	}
	item, err := txn.Get(key)
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return message, nil, fmt.Errorf("message %q: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return message, nil, err
	}
	err = item.Value(func(val []byte) error {
		return bson.Unmarshal(val, &message)
	})
	return message, key, err
}

func messageKey(seq int64) []byte {
	return []byte(fmt.Sprintf("%s%019d", messagePrefix, seq))
}

func messageIndexKey(id string) []byte {
	return []byte(messageIndexPrefix + id)
}
