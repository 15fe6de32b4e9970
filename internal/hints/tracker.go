// Package hints answers per-blank questions about the word hidden behind a
// blank. Hint text comes from the generative-text provider when it is
// available and from canned fallbacks when it is not; asking for a hint can
// never fail.
package hints

import (
	"context"
	"fmt"
	"log"
	"sync"

	"clozereader/internal/cloze"
	"clozereader/internal/llm"
	"clozereader/internal/models"
)

// QuestionType names one kind of hint the player can ask for.
type QuestionType string

const (
	QuestionMeaning QuestionType = "meaning"
	QuestionUsage   QuestionType = "usage"
	QuestionGrammar QuestionType = "grammar"
	QuestionOrigin  QuestionType = "origin"
)

// fallbacks are returned whenever the provider errors or the blank is
// unknown. They are generic on purpose: a canned hint must work for any word.
var fallbacks = map[QuestionType]string{
	QuestionMeaning: "Think about what idea would make sense in this part of the story.",
	QuestionUsage:   "Read the sentence out loud and listen for the kind of word that fits the gap.",
	QuestionGrammar: "Look at the words on either side of the blank to work out what part of speech fits.",
	QuestionOrigin:  "Many English words come from older languages; the surrounding sentence may echo that history.",
}

const genericFallback = "Read the whole sentence again and think about what would fit."

// questionPrompts describe each question type to the provider. The answer
// word is included so the provider can reason about it, which is exactly why
// every response is scrubbed before it leaves this package.
var questionPrompts = map[QuestionType]string{
	QuestionMeaning: "In one or two short sentences, explain the meaning of the word %q as used in this sentence, without using the word itself or any form of it: %q",
	QuestionUsage:   "In one or two short sentences, describe a situation where someone would use the word %q, without using the word itself or any form of it. The word appears in this sentence: %q",
	QuestionGrammar: "In one short sentence, say what part of speech the word %q is in this sentence and what role it plays, without using the word itself or any form of it: %q",
	QuestionOrigin:  "In one or two short sentences, describe the origin or history of the word %q, without using the word itself or any form of it. It appears in this sentence: %q",
}

const hintSystemPrompt = "You help a young reader guess a hidden word in a fill-in-the-blank " +
	"exercise. Never write the hidden word or any form of it. Keep answers short and friendly."

// Key identifies one blank's conversation within one round.
type Key struct {
	RoundID    string
	BlankIndex int
}

// HintContext is the conversational state for one blank.
type HintContext struct {
	TargetWord string
	Sentence   string
	BookTitle  string
	Author     string

	usedQuestionTypes map[QuestionType]bool
}

// Tracker owns hint state for the current rounds. State is created when a
// round starts and dropped when it ends so that nothing leaks into the next
// passage.
type Tracker struct {
	provider llm.Provider

	mu       sync.Mutex
	contexts map[Key]*HintContext
}

// NewTracker creates a tracker backed by the given provider.
func NewTracker(provider llm.Provider) *Tracker {
	return &Tracker{
		provider: provider,
		contexts: make(map[Key]*HintContext),
	}
}

// OnRoundStart registers a hint context for every blank of a freshly
// assembled passage.
func (t *Tracker) OnRoundStart(roundID string, passage models.Passage, blanks []models.Blank) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, b := range blanks {
		t.contexts[Key{RoundID: roundID, BlankIndex: b.Index}] = &HintContext{
			TargetWord:        b.OriginalWord,
			Sentence:          cloze.SentenceAround(passage.Text, b.ByteOffset),
			BookTitle:         passage.Title,
			Author:            passage.Author,
			usedQuestionTypes: make(map[QuestionType]bool),
		}
	}
}

// OnRoundEnd clears every hint context belonging to the round.
func (t *Tracker) OnRoundEnd(roundID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.contexts {
		if k.RoundID == roundID {
			delete(t.contexts, k)
		}
	}
}

// Ask answers one hint question. It never fails: unknown blanks, provider
// errors, and empty responses all produce a canned fallback instead.
func (t *Tracker) Ask(ctx context.Context, roundID string, blankIndex int, qt QuestionType) string {
	t.mu.Lock()
	hc, ok := t.contexts[Key{RoundID: roundID, BlankIndex: blankIndex}]
	if ok {
		hc.usedQuestionTypes[qt] = true
	}
	t.mu.Unlock()

	if !ok {
		return fallbackFor(qt)
	}

	tmpl, ok := questionPrompts[qt]
	if !ok {
		return genericFallback
	}
	prompt := fmt.Sprintf(tmpl, hc.TargetWord, hc.Sentence)
	if hc.BookTitle != "" {
		prompt += fmt.Sprintf(" The sentence is from %s by %s.", hc.BookTitle, hc.Author)
	}

	resp, err := t.provider.Generate(ctx, llm.UserPrompt(hintSystemPrompt, prompt))
	if err != nil {
		log.Printf("hint generation failed for blank %d: %v", blankIndex, err)
		return fallbackFor(qt)
	}

	hint := Scrub(resp.Content, hc.TargetWord)
	if hint == "" {
		return fallbackFor(qt)
	}
	return hint
}

// Len reports how many hint contexts are live.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.contexts)
}

// UsedQuestionTypes reports which question types have been asked for a
// blank, letting the UI discourage (not block) repetition.
func (t *Tracker) UsedQuestionTypes(roundID string, blankIndex int) []QuestionType {
	t.mu.Lock()
	defer t.mu.Unlock()
	hc, ok := t.contexts[Key{RoundID: roundID, BlankIndex: blankIndex}]
	if !ok {
		return nil
	}
	var used []QuestionType
	for _, qt := range []QuestionType{QuestionMeaning, QuestionUsage, QuestionGrammar, QuestionOrigin} {
		if hc.usedQuestionTypes[qt] {
			used = append(used, qt)
		}
	}
	return used
}

func fallbackFor(qt QuestionType) string {
	if f, ok := fallbacks[qt]; ok {
		return f
	}
	return genericFallback
}
