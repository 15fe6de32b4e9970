// Package game is the progression engine: it owns round and level state,
// builds two-passage rounds from the corpus, scores submissions, and decides
// advancement. No other component may alter level or pass counters.
package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"clozereader/internal/cloze"
	"clozereader/internal/hints"
	"clozereader/internal/models"
)

// PassagesPerRound is fixed: every round presents two independent passages.
const PassagesPerRound = 2

// DefaultBatchTimeout bounds the concurrent candidate-word request for both
// passages before the engine falls back to slower sequential requests.
const DefaultBatchTimeout = 20 * time.Second

// ErrRoundNotReady is returned when a round operation arrives before
// StartRound has built one.
var ErrRoundNotReady = errors.New("no active round")

// DocumentSource supplies one corpus document per request.
type DocumentSource interface {
	DocumentByLevel(ctx context.Context, level int) (models.Document, error)
}

// PassageExtractor samples a scored excerpt from a document.
type PassageExtractor interface {
	Extract(doc models.Document) (models.Passage, error)
}

// WordSelector produces candidate words for a passage.
type WordSelector interface {
	Select(ctx context.Context, passage models.Passage, count, level int) ([]models.CandidateWord, error)
}

// RoundPassage is one of a round's two slots, as presented to the player.
type RoundPassage struct {
	Passage           models.Passage
	ClozeText         string
	Blanks            []models.Blank
	Contextualization string

	score     *models.PassageScore
	submitted bool
}

// Round is one two-passage exercise.
type Round struct {
	ID       string
	Number   int
	Level    int
	Passages [PassagesPerRound]*RoundPassage
}

// Deps are the engine's collaborators. All are injected so tests can supply
// deterministic stand-ins.
type Deps struct {
	Documents    DocumentSource
	Extractor    PassageExtractor
	Selector     WordSelector
	Hints        *hints.Tracker
	BatchTimeout time.Duration
}

// Engine runs one player's game. All methods are safe for concurrent use;
// round and level state is mutated only at round setup and submission time.
type Engine struct {
	docs         DocumentSource
	extractor    PassageExtractor
	selector     WordSelector
	hints        *hints.Tracker
	batchTimeout time.Duration

	mu             sync.Mutex
	state          models.RoundState
	round          *Round
	roundScored    bool
	passagesPassed int
}

// NewEngine creates an engine starting at level 1, round 1.
func NewEngine(deps Deps) *Engine {
	timeout := deps.BatchTimeout
	if timeout <= 0 {
		timeout = DefaultBatchTimeout
	}
	return &Engine{
		docs:         deps.Documents,
		extractor:    deps.Extractor,
		selector:     deps.Selector,
		hints:        deps.Hints,
		batchTimeout: timeout,
		state: models.RoundState{
			Level:            1,
			RoundNumber:      1,
			BlanksPerPassage: BlanksForLevel(1),
		},
	}
}

// State returns a copy of the current round state.
func (e *Engine) State() models.RoundState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// CurrentRound returns the active round, or ErrRoundNotReady before the
// first StartRound.
func (e *Engine) CurrentRound() (*Round, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.round == nil {
		return nil, ErrRoundNotReady
	}
	return e.round, nil
}

// StartRound builds the next two-passage round: two independent documents,
// one extracted passage each, blanks selected and assembled per the current
// level. The previous round's hint state is cleared first.
func (e *Engine) StartRound(ctx context.Context) (*Round, error) {
	e.mu.Lock()
	if e.round != nil && !e.roundScored {
		r := e.round
		e.mu.Unlock()
		return r, nil
	}
	prev := e.round
	state := e.state
	e.mu.Unlock()

	if prev != nil && e.hints != nil {
		for slot := range prev.Passages {
			e.hints.OnRoundEnd(hintRoundID(prev.ID, slot))
		}
	}

	round := &Round{
		ID:     uuid.New().String(),
		Number: state.RoundNumber,
		Level:  state.Level,
	}

	passages := make([]models.Passage, PassagesPerRound)
	for i := range passages {
		doc, err := e.docs.DocumentByLevel(ctx, state.Level)
		if err != nil {
			return nil, fmt.Errorf("fetching document for slot %d: %w", i, err)
		}
		p, err := e.extractor.Extract(doc)
		if err != nil && p.Text == "" {
			return nil, fmt.Errorf("extracting passage for slot %d: %w", i, err)
		}
		if err != nil {
			log.Printf("passage extraction degraded for slot %d: %v", i, err)
		}
		passages[i] = p
	}

	count := BlanksForLevel(state.Level)
	candidates, err := e.selectBoth(ctx, passages, count, state.Level)
	if err != nil {
		return nil, err
	}

	for i, p := range passages {
		asm, err := cloze.Assemble(p, candidates[i], state.Level)
		if err != nil {
			return nil, fmt.Errorf("assembling passage for slot %d: %w", i, err)
		}
		round.Passages[i] = &RoundPassage{
			Passage:           p,
			ClozeText:         asm.ClozeText,
			Blanks:            asm.Blanks,
			Contextualization: contextualization(p),
		}
		if e.hints != nil {
			e.hints.OnRoundStart(hintRoundID(round.ID, i), p, asm.Blanks)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// A concurrent StartRound may have won; keep the round already in play
	// and release the discarded round's hint contexts.
	if e.round != nil && !e.roundScored {
		if e.hints != nil {
			for slot := range round.Passages {
				e.hints.OnRoundEnd(hintRoundID(round.ID, slot))
			}
		}
		return e.round, nil
	}
	e.round = round
	e.roundScored = false
	e.state.BlanksPerPassage = count
	return round, nil
}

// selectBoth requests candidate words for both passages concurrently under
// a batch timeout; the slots are disjoint so the goroutines share nothing.
// On timeout it falls back to two independent sequential requests.
func (e *Engine) selectBoth(ctx context.Context, passages []models.Passage, count, level int) ([][]models.CandidateWord, error) {
	candidates := make([][]models.CandidateWord, len(passages))

	batchCtx, cancel := context.WithTimeout(ctx, e.batchTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(batchCtx)
	for i := range passages {
		g.Go(func() error {
			cands, err := e.selector.Select(gctx, passages[i], count, level)
			if err != nil {
				return err
			}
			candidates[i] = cands
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		return candidates, nil
	}
	if !errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return nil, err
	}

	log.Printf("batch candidate selection timed out, retrying per passage")
	for i := range passages {
		cands, err := e.selector.Select(ctx, passages[i], count, level)
		if err != nil {
			return nil, err
		}
		candidates[i] = cands
	}
	return candidates, nil
}

// SubmitAnswers grades one passage slot. Answers are matched to blanks by
// position. Re-submitting a slot returns the already-recorded score. Once
// both slots are graded the round is settled: the round passes when at
// least one passage passes, and two passed rounds advance the level.
func (e *Engine) SubmitAnswers(slot int, answers []string) (models.PassageScore, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.round == nil {
		return models.PassageScore{}, ErrRoundNotReady
	}
	if slot < 0 || slot >= PassagesPerRound {
		return models.PassageScore{}, fmt.Errorf("passage slot %d out of range", slot)
	}

	rp := e.round.Passages[slot]
	if rp.submitted {
		return *rp.score, nil
	}

	score := ScorePassage(rp.Blanks, answers)
	rp.score = &score
	rp.submitted = true

	if e.allSubmitted() && !e.roundScored {
		e.settleRound()
	}
	return score, nil
}

func (e *Engine) allSubmitted() bool {
	for _, rp := range e.round.Passages {
		if rp == nil || !rp.submitted {
			return false
		}
	}
	return true
}

// settleRound applies round results to the ladder. Called with e.mu held.
// A failed round costs the round, never accumulated progress: the pass
// counter only moves up.
func (e *Engine) settleRound() {
	e.roundScored = true

	roundPassed := false
	for _, rp := range e.round.Passages {
		if rp.score.Passed {
			roundPassed = true
			e.passagesPassed++
		}
	}

	if roundPassed {
		e.state.PassesAtCurrentLevel++
		if e.state.PassesAtCurrentLevel >= 2 {
			e.state.Level++
			e.state.PassesAtCurrentLevel = 0
			e.state.BlanksPerPassage = BlanksForLevel(e.state.Level)
		}
	}
	e.state.RoundNumber++
}

// Hint answers a hint question for one blank of the active round.
func (e *Engine) Hint(ctx context.Context, slot, blankIndex int, qt hints.QuestionType) (string, error) {
	e.mu.Lock()
	round := e.round
	e.mu.Unlock()

	if round == nil {
		return "", ErrRoundNotReady
	}
	if slot < 0 || slot >= PassagesPerRound {
		return "", fmt.Errorf("passage slot %d out of range", slot)
	}
	if e.hints == nil {
		return "", errors.New("hints not configured")
	}
	return e.hints.Ask(ctx, hintRoundID(round.ID, slot), blankIndex, qt), nil
}

// UsedQuestionTypes reports which hint questions have been asked for a
// blank of the active round.
func (e *Engine) UsedQuestionTypes(slot, blankIndex int) []hints.QuestionType {
	e.mu.Lock()
	round := e.round
	e.mu.Unlock()
	if round == nil || e.hints == nil || slot < 0 || slot >= PassagesPerRound {
		return nil
	}
	return e.hints.UsedQuestionTypes(hintRoundID(round.ID, slot), blankIndex)
}

// Outcome summarizes the game so far for the leaderboard.
func (e *Engine) Outcome() models.GameOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return models.GameOutcome{
		Level:          e.state.Level,
		Round:          e.state.RoundNumber,
		PassagesPassed: e.passagesPassed,
	}
}

// hintRoundID scopes hint conversations per passage slot, so the two
// passages' blank indices never collide.
func hintRoundID(roundID string, slot int) string {
	return fmt.Sprintf("%s/%d", roundID, slot)
}

// contextualization is the one line of framing shown above a passage.
func contextualization(p models.Passage) string {
	switch {
	case p.Title != "" && p.Author != "":
		return fmt.Sprintf("An excerpt from %s by %s.", p.Title, p.Author)
	case p.Title != "":
		return fmt.Sprintf("An excerpt from %s.", p.Title)
	default:
		return "An excerpt from a classic story."
	}
}
