package handlers

import (
	"errors"
	"net/http"

	"clozereader/internal/game"
	"clozereader/internal/hints"
	"clozereader/internal/models"
	"clozereader/internal/selector"
)

// OutcomeSigner issues the signed token a finished game presents to the
// leaderboard.
type OutcomeSigner interface {
	SignOutcome(outcome models.GameOutcome) (string, error)
}

// GameHandler serves the game API. Each session gets its own engine built by
// the injected factory.
type GameHandler struct {
	sessions  *SessionStore
	newEngine func() *game.Engine
	signer    OutcomeSigner
}

// NewGameHandler creates a new game handler.
func NewGameHandler(sessions *SessionStore, newEngine func() *game.Engine, signer OutcomeSigner) *GameHandler {
	return &GameHandler{sessions: sessions, newEngine: newEngine, signer: signer}
}

// Create handles POST /api/game: it starts a new game session and returns
// the first round.
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	engine := h.newEngine()

	round, err := engine.StartRound(r.Context())
	if err != nil {
		respondGameError(w, err)
		return
	}

	id := h.sessions.Put(engine)
	respondWithJSON(w, http.StatusCreated, newRoundView(id, round, engine.State()))
}

// Current handles GET /api/game/{id}: it returns the round in play.
func (h *GameHandler) Current(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engineFor(w, r)
	if !ok {
		return
	}

	round, err := engine.CurrentRound()
	if err != nil {
		respondWithError(w, http.StatusConflict, "No round in play", "", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newRoundView(r.PathValue("id"), round, engine.State()))
}

// Submit handles POST /api/game/{id}/submit: it grades one passage's
// answers.
func (h *GameHandler) Submit(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engineFor(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	score, err := engine.SubmitAnswers(req.Passage, req.Answers)
	if err != nil {
		if errors.Is(err, game.ErrRoundNotReady) {
			respondWithError(w, http.StatusConflict, "No round in play", "", err)
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid submission", "", err)
		return
	}

	state := engine.State()
	round, _ := engine.CurrentRound()
	respondWithJSON(w, http.StatusOK, submitResponse{
		Score:         score,
		RoundComplete: round != nil && state.RoundNumber > round.Number,
		Level:         state.Level,
		PassesAtLevel: state.PassesAtCurrentLevel,
	})
}

// Next handles POST /api/game/{id}/next: it builds the next round once the
// current one is settled.
func (h *GameHandler) Next(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engineFor(w, r)
	if !ok {
		return
	}

	round, err := engine.StartRound(r.Context())
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newRoundView(r.PathValue("id"), round, engine.State()))
}

// Hint handles POST /api/game/{id}/hint: it answers one blank question.
func (h *GameHandler) Hint(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engineFor(w, r)
	if !ok {
		return
	}

	var req hintRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	hint, err := engine.Hint(r.Context(), req.Passage, req.BlankIndex, hints.QuestionType(req.QuestionType))
	if err != nil {
		respondWithError(w, http.StatusConflict, "No round in play", "", err)
		return
	}

	var used []string
	for _, qt := range engine.UsedQuestionTypes(req.Passage, req.BlankIndex) {
		used = append(used, string(qt))
	}
	respondWithJSON(w, http.StatusOK, hintResponse{Hint: hint, UsedQuestionTypes: used})
}

// End handles POST /api/game/{id}/end: it closes the session and returns
// the signed outcome for leaderboard submission.
func (h *GameHandler) End(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engineFor(w, r)
	if !ok {
		return
	}

	outcome := engine.Outcome()
	token, err := h.signer.SignOutcome(outcome)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to sign outcome", err)
		return
	}

	h.sessions.Delete(r.PathValue("id"))
	respondWithJSON(w, http.StatusOK, outcomeResponse{Outcome: outcome, Token: token})
}

func (h *GameHandler) engineFor(w http.ResponseWriter, r *http.Request) (*game.Engine, bool) {
	engine, ok := h.sessions.Get(r.PathValue("id"))
	if !ok {
		respondWithError(w, http.StatusNotFound, ErrGameNotFound, "", nil)
		return nil, false
	}
	return engine, true
}

// respondGameError maps round-setup failures onto the generic user-visible
// message; the stage that failed stays in the logs only.
func respondGameError(w http.ResponseWriter, err error) {
	if errors.Is(err, selector.ErrSelectionUnavailable) {
		respondWithError(w, http.StatusServiceUnavailable, ErrPassageUnavailable, "no blanks could be constructed", err)
		return
	}
	respondWithError(w, http.StatusBadGateway, ErrPassageUnavailable, "round setup failed", err)
}
