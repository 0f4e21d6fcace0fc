// Package domain contains core concepts of the chat system.
// This file defines Message records and related rules.
package domain

import (
	"fmt"
	"time"
)

// BroadcastTarget is the reserved recipient meaning "all participants".
const BroadcastTarget = "Todos"

type MessageKind string

const (
	KindStatus         MessageKind = "status"
	KindMessage        MessageKind = "message"
	KindPrivateMessage MessageKind = "private_message"
)

// IsUserKind reports whether a client may author a message of this kind.
func (k MessageKind) IsUserKind() bool {
	return k == KindMessage || k == KindPrivateMessage
}

// Message is a chat record. ID and Seq are assigned by the store on insert;
// Seq grows with insertion order and is the only authoritative ordering.
// Time is a human-readable clock captured at creation.
type Message struct {
	ID   string      `bson:"_id"`
	Seq  int64       `bson:"seq"`
	From string      `bson:"from"`
	To   string      `bson:"to"`
	Text string      `bson:"text"`
	Kind MessageKind `bson:"type"`
	Time string      `bson:"time"`
}

// IsBroadcast reports whether every participant can read the message.
func (m Message) IsBroadcast() bool {
	return m.To == BroadcastTarget
}

// IsVisibleTo reports whether user is the sender or recipient, or the message is broadcast.
func (m Message) IsVisibleTo(user string) bool {
	return m.To == user || m.From == user || m.IsBroadcast()
}

func NewUserMessage(from, to, text string, kind MessageKind, at time.Time) Message {
	return Message{
		From: from,
		To:   to,
		Text: text,
		Kind: kind,
		Time: FormatClock(at),
	}
}

// NewJoinNotice is the status message broadcast when name registers.
func NewJoinNotice(name string, at time.Time) Message {
	return newStatusMessage(fmt.Sprintf("%s joined", name), at)
}

// NewLeaveNotice is the status message broadcast when name is evicted.
func NewLeaveNotice(name string, at time.Time) Message {
	return newStatusMessage(fmt.Sprintf("%s left", name), at)
}

func newStatusMessage(text string, at time.Time) Message {
	return Message{
		From: SystemAuthor,
		To:   BroadcastTarget,
		Text: text,
		Kind: KindStatus,
		Time: FormatClock(at),
	}
}

// FormatClock renders the HH:MM:SS timestamp stored on messages.
func FormatClock(at time.Time) string {
	return at.Format(time.TimeOnly)
}
