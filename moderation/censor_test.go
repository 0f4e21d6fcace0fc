package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const mask = '*'

// Dictionary words are picked so none is a substring of ordinary chat words
func TestCensor_Censor(t *testing.T) {
	censor, err := NewCensor([]string{"badger", "snake", "mushroom"}, mask)
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{
			name:     "single word keeps spacing",
			input:    "The badger is here",
			expected: "The ****** is here",
			words:    []string{"badger"},
		},
		{
			name:     "repeated word",
			input:    "snake snake",
			expected: "***** *****",
			words:    []string{"snake", "snake"},
		},
		{
			name:     "leet speak with inner punctuation",
			input:    "Look at B.4.d.g.€r !",
			expected: "Look at ********** !",
			words:    []string{"badger"},
		},
		{
			name:     "upper case with dashes",
			input:    "S-N-A-K-E and MUSHROOM",
			expected: "********* and ********",
			words:    []string{"snake", "mushroom"},
		},
		{
			name:     "accents around a match",
			input:    "Un été avec un badger",
			expected: "Un été avec un ******",
			words:    []string{"badger"},
		},
		{
			name:     "trailing punctuation kept",
			input:    "I love badger!",
			expected: "I love ******!",
			words:    []string{"badger"},
		},
		{
			name:     "nothing to mask",
			input:    "see you at lunch",
			expected: "see you at lunch",
		},
		{
			name:     "empty text",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			text, words := censor.Censor(tt.input)
			req.Equal(tt.expected, text)
			req.Equal(tt.words, words)
		})
	}
}

func TestCensor_Ignores_Words_Without_Letters(t *testing.T) {
	req := require.New(t)

	censor, err := NewCensor([]string{"...", ",,,", "", "badger"}, mask)
	req.NoError(err)

	text, words := censor.Censor("Hello ... badger")
	req.Equal("Hello ... ******", text)
	req.Equal([]string{"badger"}, words)
}

func TestCensor_Empty_Dictionary(t *testing.T) {
	req := require.New(t)

	censor, err := NewCensor(nil, mask)
	req.NoError(err)
	text, words := censor.Censor("anything goes")
	req.Equal("anything goes", text)
	req.Nil(words)

	var disabled *Censor
	text, _ = disabled.Censor("anything goes")
	req.Equal("anything goes", text)
}
