package handlers

import (
	"errors"
	"net/http"

	"clozereader/internal/service"
)

// LeaderboardHandler serves the leaderboard API.
type LeaderboardHandler struct {
	leaderboard *service.LeaderboardService
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(leaderboard *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// Top handles GET /api/leaderboard: it returns the board, best first.
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboard.Top()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to load leaderboard", err)
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}

// Submit handles POST /api/leaderboard: it records a verified game outcome
// under the player's initials.
func (h *LeaderboardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req leaderboardSubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	entry, err := h.leaderboard.Submit(req.Token, req.Initials)
	switch {
	case errors.Is(err, service.ErrInvalidOutcomeToken):
		respondWithError(w, http.StatusUnauthorized, "Invalid or expired game token", "", err)
		return
	case errors.Is(err, service.ErrInvalidInitials):
		respondWithError(w, http.StatusBadRequest, "Initials must be 1-3 letters", "", err)
		return
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to record entry", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, entry)
}
