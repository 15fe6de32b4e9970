// Package selector chooses which words of a passage to blank. Selection is
// an ordered list of strategies with a uniform contract; the generative
// strategy runs first and the deterministic fallback guarantees availability
// when the service misbehaves.
package selector

import (
	"context"
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"clozereader/internal/cloze"
	"clozereader/internal/models"
)

// ErrSelectionUnavailable reports that every strategy produced zero valid
// candidates. This is the one selection failure that surfaces as a
// user-visible round failure: no blanks can be constructed.
var ErrSelectionUnavailable = errors.New("no selection strategy produced valid candidates")

// minTokenIndex keeps blanks out of the passage's opening clause.
const minTokenIndex = 10

// Request carries one selection task to a strategy.
type Request struct {
	Passage models.Passage
	Count   int
	Level   int
}

// Strategy proposes candidate words for a request. Implementations return
// however many valid candidates they found; the selector decides whether
// that is enough.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, req Request) ([]models.CandidateWord, error)
}

// Selector walks its strategies in order until one produces a full set of
// candidates, keeping the best partial result as a last resort.
type Selector struct {
	strategies []Strategy
}

// New creates a selector that tries the given strategies in order.
func New(strategies ...Strategy) *Selector {
	return &Selector{strategies: strategies}
}

// Select produces count candidate words for the passage. Strategy errors
// and shortfalls are absorbed by moving down the list; only total
// exhaustion returns ErrSelectionUnavailable.
func (s *Selector) Select(ctx context.Context, passage models.Passage, count, level int) ([]models.CandidateWord, error) {
	req := Request{Passage: passage, Count: count, Level: level}

	var best []models.CandidateWord
	for _, st := range s.strategies {
		cands, err := st.Attempt(ctx, req)
		if err != nil {
			log.Printf("selection strategy %s failed: %v", st.Name(), err)
			continue
		}
		if len(cands) >= count {
			return cands[:count], nil
		}
		if len(cands) > len(best) {
			best = cands
		}
	}

	if len(best) == 0 {
		return nil, ErrSelectionUnavailable
	}
	return best, nil
}

// lengthBounds returns the difficulty-indexed word length constraints.
func lengthBounds(level int) (min, max int) {
	switch {
	case level <= 2:
		return 4, 7
	case level <= 4:
		return 4, 10
	default:
		return 5, 14
	}
}

// validator re-checks every proposed word against the actual passage:
// verbatim case-sensitive occurrence, token position, capitalization,
// length, and the denylist. Failing candidates are dropped, never fatal.
type validator struct {
	tokens   []cloze.Token
	minLen   int
	maxLen   int
	denylist *Denylist
	claimed  map[int]bool
	chosen   map[string]bool
}

func newValidator(passage models.Passage, level int, denylist *Denylist) *validator {
	min, max := lengthBounds(level)
	return &validator{
		tokens:   cloze.Tokenize(passage.Text),
		minLen:   min,
		maxLen:   max,
		denylist: denylist,
		claimed:  make(map[int]bool),
		chosen:   make(map[string]bool),
	}
}

// accept validates word and, on success, records its claim so later
// candidates cannot reuse the same occurrence or surface form.
func (v *validator) accept(word string) (models.CandidateWord, bool) {
	word = strings.TrimSpace(word)
	if !cloze.IsLowercaseWord(word) || v.chosen[word] {
		return models.CandidateWord{}, false
	}
	if n := utf8.RuneCountInString(word); n < v.minLen || n > v.maxLen {
		return models.CandidateWord{}, false
	}
	if v.denylist.Contains(word) {
		return models.CandidateWord{}, false
	}

	for _, tok := range v.tokens {
		if tok.Index < minTokenIndex || tok.Word != word || v.claimed[tok.WordOffset] {
			continue
		}
		v.claimed[tok.WordOffset] = true
		v.chosen[word] = true
		return models.CandidateWord{
			SurfaceForm: word,
			ByteOffset:  tok.WordOffset,
			TokenIndex:  tok.Index,
		}, true
	}
	return models.CandidateWord{}, false
}
