package validation

import (
	"chat-presence/domain"
	"chat-presence/errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizer_Clean(t *testing.T) {
	s := NewSanitizer(0)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain text", input: "hello", expected: "hello"},
		{name: "surrounding whitespace", input: "  Ana \n", expected: "Ana"},
		{name: "script tag removed", input: "<script>alert(1)</script>hi", expected: "hi"},
		{name: "inline markup removed", input: "<b>bold</b> move", expected: "bold move"},
		{name: "entities kept readable", input: "Tom & Jerry's", expected: "Tom & Jerry's"},
		{name: "only markup", input: "<p></p>", expected: ""},
		{name: "encoded script removed", input: "&lt;script&gt;alert(1)&lt;/script&gt;hi", expected: "hi"},
		{name: "encoded tag removed", input: "&lt;img src=x onerror=alert(1)&gt;ok", expected: "ok"},
		{name: "lone angle bracket stays escaped", input: "a < b", expected: "a &lt; b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, s.Clean(tt.input))
		})
	}
}

func TestSanitizer_Participant(t *testing.T) {
	s := NewSanitizer(0)

	t.Run("should trim the name", func(t *testing.T) {
		req := require.New(t)
		cleaned, err := s.Participant(ParticipantRequest{Name: "  Ana  "})
		req.NoError(err)
		req.Equal("Ana", cleaned.Name)
	})

	t.Run("should reject a name made of markup and blanks", func(t *testing.T) {
		req := require.New(t)
		_, err := s.Participant(ParticipantRequest{Name: " <i></i> "})
		req.ErrorIs(err, errors.ErrValidation)
		req.Equal([]string{"name is required"}, Details(err))
	})
}

func TestSanitizer_Message(t *testing.T) {
	s := NewSanitizer(10)

	t.Run("should strip entity encoded markup from stored text", func(t *testing.T) {
		req := require.New(t)
		cleaned, err := s.Message(MessageRequest{To: "Bob", Text: "&lt;img src=x onerror=alert(1)&gt;hey", Type: domain.KindPrivateMessage})
		req.NoError(err)
		req.Equal("hey", cleaned.Text)
		req.NotContains(cleaned.Text, "<img")
	})

	t.Run("should accept a broadcast", func(t *testing.T) {
		req := require.New(t)
		cleaned, err := s.Message(MessageRequest{To: domain.BroadcastTarget, Text: " hi ", Type: domain.KindMessage})
		req.NoError(err)
		req.Equal("hi", cleaned.Text)
	})

	t.Run("should reject status as a user message type", func(t *testing.T) {
		req := require.New(t)
		_, err := s.Message(MessageRequest{To: "Bob", Text: "x", Type: domain.KindStatus})
		req.ErrorIs(err, errors.ErrValidation)
		req.Equal([]string{"type must be one of [message private_message]"}, Details(err))
	})

	t.Run("should report every missing field", func(t *testing.T) {
		req := require.New(t)
		_, err := s.Message(MessageRequest{})
		req.ErrorIs(err, errors.ErrValidation)
		req.ElementsMatch([]string{"to is required", "text is required", "type is required"}, Details(err))
	})

	t.Run("should reject text over the maximum length", func(t *testing.T) {
		req := require.New(t)
		_, err := s.Message(MessageRequest{To: "Bob", Text: strings.Repeat("é", 11), Type: domain.KindPrivateMessage})
		req.ErrorIs(err, errors.ErrValidation)
		req.Equal([]string{"text must be at most 10 characters"}, Details(err))
	})
}

func TestDetails_Other_Error(t *testing.T) {
	require.Nil(t, Details(errors.ErrNotFound))
}
