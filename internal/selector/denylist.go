package selector

import "strings"

// Denylist is the set of sensitive or offensive terms that must never be
// blanked. It is seeded from the database at startup.
type Denylist struct {
	words map[string]struct{}
}

// NewDenylist builds a denylist from words, lowercased.
func NewDenylist(words []string) *Denylist {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			m[w] = struct{}{}
		}
	}
	return &Denylist{words: m}
}

// Contains reports whether word is denied.
func (d *Denylist) Contains(word string) bool {
	if d == nil || d.words == nil {
		return false
	}
	_, ok := d.words[strings.ToLower(word)]
	return ok
}

// Len returns the number of denied words.
func (d *Denylist) Len() int {
	if d == nil {
		return 0
	}
	return len(d.words)
}
