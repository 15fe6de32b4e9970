package selector

import (
	"context"
	"fmt"

	"clozereader/internal/llm"
	"clozereader/internal/models"
	"clozereader/internal/normalize"
)

const selectionSystemPrompt = "You choose vocabulary words for a fill-in-the-blank reading exercise. " +
	"Respond with JSON only, in the shape {\"words\": [...], \"context\": \"...\"}."

// Generative asks the generative-text service for candidate words and
// re-validates every one of them against the passage. Invalid candidates are
// dropped silently; the response is never trusted.
type Generative struct {
	provider llm.Provider
	denylist *Denylist
}

// NewGenerative creates the generative selection strategy.
func NewGenerative(provider llm.Provider, denylist *Denylist) *Generative {
	return &Generative{provider: provider, denylist: denylist}
}

func (g *Generative) Name() string {
	return "generative"
}

// Attempt requests candidates with explicit count and constraint
// descriptions, normalizes the response, and keeps only candidates that
// survive validation.
func (g *Generative) Attempt(ctx context.Context, req Request) ([]models.CandidateWord, error) {
	minLen, maxLen := lengthBounds(req.Level)

	prompt := fmt.Sprintf(
		"Passage:\n%s\n\nChoose exactly %d words to blank out of this passage. Rules:\n"+
			"- each word must appear in the passage exactly as written, in lowercase\n"+
			"- each word must be %d to %d letters long\n"+
			"- never pick a word from the first ten words of the passage\n"+
			"- never pick a proper noun or capitalized word\n"+
			"Also write one sentence of context about the excerpt without revealing the chosen words.",
		req.Passage.Text, req.Count, minLen, maxLen,
	)

	resp, err := g.provider.Generate(ctx, llm.UserPrompt(selectionSystemPrompt, prompt))
	if err != nil {
		return nil, fmt.Errorf("generative selection request failed: %w", err)
	}

	parsed, err := normalize.Normalize(resp.Content, normalize.Meta{
		Title:  req.Passage.Title,
		Author: req.Passage.Author,
	})
	if err != nil {
		return nil, fmt.Errorf("generative selection response unusable: %w", err)
	}

	v := newValidator(req.Passage, req.Level, g.denylist)
	var cands []models.CandidateWord
	for _, word := range parsed.Words {
		if c, ok := v.accept(word); ok {
			cands = append(cands, c)
			if len(cands) == req.Count {
				break
			}
		}
	}
	return cands, nil
}
