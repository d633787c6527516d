// Package wordbank holds the theme table: pairs of related words grouped by
// category. Each round one pair is drawn and one of its two words becomes
// the citizens' secret word.
package wordbank

import (
	"errors"
	"math/rand"
)

var ErrNoThemes = errors.New("no themes available")

// Theme is one word pair within a category group.
type Theme struct {
	Group string
	WordA string
	WordB string
}

// Bank is a read-only collection of themes.
type Bank struct {
	themes []Theme
}

func New(themes []Theme) *Bank {
	return &Bank{themes: themes}
}

// Default returns a bank seeded with the built-in theme table.
func Default() *Bank {
	return New(defaultThemes)
}

// Size returns the number of themes in the bank.
func (b *Bank) Size() int {
	return len(b.themes)
}

// Groups returns the distinct theme groups in the bank.
func (b *Bank) Groups() []string {
	seen := make(map[string]bool)
	var groups []string
	for _, t := range b.themes {
		if !seen[t.Group] {
			seen[t.Group] = true
			groups = append(groups, t.Group)
		}
	}
	return groups
}

// Random draws a uniformly random theme from group, or from the whole bank
// when group is empty or has no themes.
func (b *Bank) Random(group string) (Theme, error) {
	if len(b.themes) == 0 {
		return Theme{}, ErrNoThemes
	}
	if group != "" {
		var matches []Theme
		for _, t := range b.themes {
			if t.Group == group {
				matches = append(matches, t)
			}
		}
		if len(matches) > 0 {
			return matches[rand.Intn(len(matches))], nil
		}
	}
	return b.themes[rand.Intn(len(b.themes))], nil
}
