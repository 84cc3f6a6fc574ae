// Package moderation censors forbidden words in chat bodies before they are
// broadcast. Matching runs on a normalized view of the text (lowercased,
// leet characters folded, punctuation and spacing skipped) so split or
// obfuscated words are still caught, while masking applies to the original
// runes and preserves spacing.
package moderation

import (
	"log/slog"
	"unicode"

	"github.com/abadojack/whatlanggo"
	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	machine *goahocorasick.Machine
	mask    rune
	log     *slog.Logger
}

// NewModerator builds the Aho-Corasick automaton over the normalized word
// list. An empty list yields a nil Moderator, which disables moderation.
func NewModerator(words []string, mask rune, log *slog.Logger) (*Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, w := range words {
		p, _ := fold([]rune(w))
		if len(p) > 0 {
			patterns = append(patterns, p)
		}
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{machine: machine, mask: mask, log: log}, nil
}

// Censor masks every dictionary hit in text and returns the sanitized text
// with the list of matched (normalized) words.
func (m *Moderator) Censor(text string) (string, []string) {
	orig := []rune(text)
	norm, idx := fold(orig)
	if len(norm) == 0 {
		return text, nil
	}

	terms := m.machine.MultiPatternSearch(norm, false)
	if len(terms) == 0 {
		return text, nil
	}

	var hits []string
	for _, t := range terms {
		start := t.Pos
		end := start + len(t.Word)
		if start < 0 || end > len(idx) {
			continue
		}
		hits = append(hits, string(t.Word))
		// mask the whole original span, noise runes included
		for i := idx[start]; i <= idx[end-1]; i++ {
			orig[i] = m.mask
		}
	}
	return string(orig), hits
}

// Language reports the ISO 639-1 code of the detected language of text,
// used for log context only.
func Language(text string) string {
	info := whatlanggo.Detect(text)
	return info.Lang.Iso6391()
}

// fold lowercases and de-leets the input, drops noise runes, and keeps a
// mapping from each normalized rune back to its original index.
func fold(in []rune) ([]rune, []int) {
	norm := make([]rune, 0, len(in))
	idx := make([]int, 0, len(in))
	for i, r := range in {
		r = deleet(r)
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		norm = append(norm, unicode.ToLower(r))
		idx = append(idx, i)
	}
	return norm, idx
}

func deleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	}
	return r
}
