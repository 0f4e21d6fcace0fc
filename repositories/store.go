package repositories

import (
	"chat-presence/domain"
	"chat-presence/errors"
	stderrors "errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// MessageFilter selects messages whose non-nil fields all match.
// An empty filter matches every message.
type MessageFilter struct {
	To   *string
	From *string
}

func (f MessageFilter) Match(m domain.Message) bool {
	if f.To != nil && m.To != *f.To {
		return false
	}
	if f.From != nil && m.From != *f.From {
		return false
	}
	return true
}

// MessagePatch holds the fields an authorized edit may overwrite.
// ID and Seq are never patched.
type MessagePatch struct {
	From string
	To   string
	Text string
	Kind domain.MessageKind
	Time string
}

func (p MessagePatch) Apply(m domain.Message) domain.Message {
	m.From = p.From
	m.To = p.To
	m.Text = p.Text
	m.Kind = p.Kind
	m.Time = p.Time
	return m
}

// storeError maps badger failures onto the domain taxonomy.
// Domain errors returned from inside a transaction pass through untouched.
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, errors.ErrNotFound),
		stderrors.Is(err, errors.ErrConflict),
		stderrors.Is(err, errors.ErrStore):
		return err
	case stderrors.Is(err, badger.ErrDBClosed):
		return fmt.Errorf("%s: %w", op, errors.ErrStoreClosed)
	default:
		return fmt.Errorf("%s: %w: %w", op, errors.ErrStore, err)
	}
}
