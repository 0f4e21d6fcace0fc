// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"strings"
	"time"
)

// SystemAuthor signs every status message. It can never be registered.
const SystemAuthor = "System"

// Participant is a registered chat identity with a liveness timestamp.
// Name is the unique key: at most one Participant exists per name.
type Participant struct {
	Name       string    `bson:"name"`
	LastSeenAt time.Time `bson:"lastStatus"`
}

// SeenPrecision is the resolution both stores keep for LastSeenAt.
const SeenPrecision = time.Millisecond

// TruncateSeen drops what the stores cannot keep, so a participant compares
// the same against a cutoff before and after a round trip.
func TruncateSeen(at time.Time) time.Time {
	return at.Truncate(SeenPrecision)
}

func NewParticipant(name string, at time.Time) Participant {
	return Participant{Name: name, LastSeenAt: TruncateSeen(at)}
}

// IsInactiveSince reports whether the participant has not been refreshed after cutoff.
// A participant seen exactly at cutoff is inactive.
func (p Participant) IsInactiveSince(cutoff time.Time) bool {
	return !p.LastSeenAt.After(cutoff)
}

// IsReservedName reports names that would let a client impersonate the system
// or collide with the broadcast target.
func IsReservedName(name string) bool {
	name = strings.TrimSpace(name)
	return name == SystemAuthor || name == BroadcastTarget
}
