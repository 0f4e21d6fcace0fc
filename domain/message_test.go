package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMessage_IsVisibleTo(t *testing.T) {
	tests := []struct {
		name    string
		message Message
		user    string
		visible bool
	}{
		{"broadcast from someone else", Message{From: "Bob", To: BroadcastTarget}, "Ana", true},
		{"private to user", Message{From: "Bob", To: "Ana"}, "Ana", true},
		{"sent by user", Message{From: "Ana", To: "Bob"}, "Ana", true},
		{"private between others", Message{From: "Bob", To: "Clara"}, "Ana", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.visible, tt.message.IsVisibleTo(tt.user))
		})
	}
}

func TestStatusNotices(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 5, 1, 9, 3, 7, 0, time.UTC)

	join := NewJoinNotice("Ana", at)
	req.Equal(SystemAuthor, join.From)
	req.Equal(BroadcastTarget, join.To)
	req.Equal(KindStatus, join.Kind)
	req.Equal("Ana joined", join.Text)
	req.Equal("09:03:07", join.Time)

	leave := NewLeaveNotice("Ana", at)
	req.Equal("Ana left", leave.Text)
	req.False(leave.Kind.IsUserKind())
}

func TestParticipant_IsInactiveSince(t *testing.T) {
	req := require.New(t)
	cutoff := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	req.True(NewParticipant("Ana", cutoff).IsInactiveSince(cutoff))
	req.True(NewParticipant("Ana", cutoff.Add(-time.Second)).IsInactiveSince(cutoff))
	req.False(NewParticipant("Ana", cutoff.Add(time.Millisecond)).IsInactiveSince(cutoff))
}

func TestNewParticipant_Keeps_Stored_Precision(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 5, 1, 9, 0, 0, 1_500_000, time.UTC)

	req.Equal(time.Date(2024, 5, 1, 9, 0, 0, 1_000_000, time.UTC), NewParticipant("Ana", at).LastSeenAt)
	req.Equal(TruncateSeen(at), TruncateSeen(TruncateSeen(at)))
}

func TestIsReservedName(t *testing.T) {
	req := require.New(t)
	req.True(IsReservedName("System"))
	req.True(IsReservedName(" Todos "))
	req.False(IsReservedName("system"))
	req.False(IsReservedName("Ana"))
}
