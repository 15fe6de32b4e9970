package selector

import (
	"context"
	"math/rand"
	"unicode/utf8"

	"clozereader/internal/cloze"
	"clozereader/internal/models"
)

// Content words for the manual strategy: a fixed length band, independent of
// the level-indexed bounds the generative path uses.
const (
	manualMinLen = 4
	manualMaxLen = 12
)

// Manual is the deterministic fallback strategy. It partitions the passage
// into count roughly equal sections and picks a random content word from
// each, spreading blanks across the passage instead of clustering them.
type Manual struct {
	rng      *rand.Rand
	denylist *Denylist
}

// NewManual creates the manual selection strategy.
func NewManual(rng *rand.Rand, denylist *Denylist) *Manual {
	return &Manual{rng: rng, denylist: denylist}
}

func (m *Manual) Name() string {
	return "manual"
}

// Attempt never calls out; its only failure mode is a passage with no
// eligible content words at all.
func (m *Manual) Attempt(_ context.Context, req Request) ([]models.CandidateWord, error) {
	tokens := cloze.Tokenize(req.Passage.Text)

	var eligible []cloze.Token
	for _, tok := range tokens {
		if m.isEligible(tok) {
			eligible = append(eligible, tok)
		}
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	chosen := make(map[string]bool)
	claimed := make(map[int]bool)
	var cands []models.CandidateWord

	pick := func(pool []cloze.Token) bool {
		// Random start, linear probe: random choice without retry loops.
		if len(pool) == 0 {
			return false
		}
		start := m.rng.Intn(len(pool))
		for i := 0; i < len(pool); i++ {
			tok := pool[(start+i)%len(pool)]
			if chosen[tok.Word] || claimed[tok.WordOffset] {
				continue
			}
			chosen[tok.Word] = true
			claimed[tok.WordOffset] = true
			cands = append(cands, models.CandidateWord{
				SurfaceForm: tok.Word,
				ByteOffset:  tok.WordOffset,
				TokenIndex:  tok.Index,
			})
			return true
		}
		return false
	}

	// One pick per section for spatial distribution.
	sectionSize := len(eligible) / req.Count
	if sectionSize == 0 {
		sectionSize = len(eligible)
	}
	for s := 0; s < req.Count && len(cands) < req.Count; s++ {
		lo := s * sectionSize
		hi := lo + sectionSize
		if s == req.Count-1 || hi > len(eligible) {
			hi = len(eligible)
		}
		if lo >= hi {
			break
		}
		pick(eligible[lo:hi])
	}

	// Fill remaining slots from anywhere in the passage.
	for len(cands) < req.Count {
		if !pick(eligible) {
			break
		}
	}

	return cands, nil
}

func (m *Manual) isEligible(tok cloze.Token) bool {
	if tok.Index < minTokenIndex || !cloze.IsLowercaseWord(tok.Word) {
		return false
	}
	if n := utf8.RuneCountInString(tok.Word); n < manualMinLen || n > manualMaxLen {
		return false
	}
	if isStopword(tok.Word) || m.denylist.Contains(tok.Word) {
		return false
	}
	return true
}
