// Package moderation masks forbidden words in message text.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Censor matches forbidden words after folding case, leet speak and punctuation,
// then masks the matching runes of the original text.
type Censor struct {
	machine *goahocorasick.Machine
	mask    rune
}

// folded is the searchable form of a text; positions[i] is the index in the
// original runes of folded rune i.
type folded struct {
	runes     []rune
	positions []int
}

// NewCensor builds the matcher. Words that fold to nothing are ignored; with no
// usable word the censor leaves every text untouched.
func NewCensor(words []string, mask rune) (*Censor, error) {
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		if f := fold(word); len(f.runes) > 0 {
			patterns = append(patterns, f.runes)
		}
	}
	c := &Censor{mask: mask}
	if len(patterns) == 0 {
		return c, nil
	}
	c.machine = new(goahocorasick.Machine)
	if err := c.machine.Build(patterns); err != nil {
		return nil, err
	}
	return c, nil
}

// Censor returns the masked text and the folded words that were found, in order.
func (c *Censor) Censor(text string) (string, []string) {
	if c == nil || c.machine == nil {
		return text, nil
	}
	f := fold(text)
	if len(f.runes) == 0 {
		return text, nil
	}
	terms := c.machine.MultiPatternSearch(f.runes, false)
	if len(terms) == 0 {
		return text, nil
	}

	original := []rune(text)
	var found []string
	for _, term := range terms {
		end := term.Pos + len(term.Word)
		if term.Pos < 0 || end > len(f.positions) {
			continue
		}
		// Noise between the first and last matched rune is masked as well
		for i := f.positions[term.Pos]; i <= f.positions[end-1]; i++ {
			original[i] = c.mask
		}
		found = append(found, string(term.Word))
	}
	return string(original), found
}

func fold(text string) folded {
	original := []rune(text)
	f := folded{
		runes:     make([]rune, 0, len(original)),
		positions: make([]int, 0, len(original)),
	}
	for i, r := range original {
		r = unleet(r)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		f.runes = append(f.runes, unicode.ToLower(r))
		f.positions = append(f.positions, i)
	}
	return f
}

func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	}
	return r
}
