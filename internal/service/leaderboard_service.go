package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"clozereader/internal/models"
	"clozereader/internal/repository"
)

// ErrInvalidInitials is returned when submitted initials are not 1-3 letters.
var ErrInvalidInitials = errors.New("initials must be 1-3 letters")

// LeaderboardSize is how many entries the board keeps.
const LeaderboardSize = 10

// LeaderboardService handles leaderboard business logic: it verifies signed
// game outcomes, records entries, and keeps only the top scores.
type LeaderboardService struct {
	repo   *repository.LeaderboardRepository
	signer *OutcomeSigner
}

// NewLeaderboardService creates a new leaderboard service.
func NewLeaderboardService(repo *repository.LeaderboardRepository, signer *OutcomeSigner) *LeaderboardService {
	return &LeaderboardService{repo: repo, signer: signer}
}

// Submit verifies the outcome token, records the entry under the given
// initials, and trims the board back to its size.
func (s *LeaderboardService) Submit(tokenString, initials string) (models.LeaderboardEntry, error) {
	outcome, err := s.signer.Verify(tokenString)
	if err != nil {
		return models.LeaderboardEntry{}, err
	}

	initials, err = normalizeInitials(initials)
	if err != nil {
		return models.LeaderboardEntry{}, err
	}

	entry, err := s.repo.Insert(models.LeaderboardEntry{
		Initials:       initials,
		Level:          outcome.Level,
		Round:          outcome.Round,
		PassagesPassed: outcome.PassagesPassed,
		Date:           time.Now(),
	})
	if err != nil {
		return models.LeaderboardEntry{}, fmt.Errorf("failed to record leaderboard entry: %w", err)
	}

	if err := s.repo.TrimBeyondTop(LeaderboardSize); err != nil {
		// The entry made it in; a failed trim only means extra rows linger.
		log.Printf("leaderboard trim failed: %v", err)
	}

	log.Printf("Leaderboard entry recorded: %s - level %d round %d", entry.Initials, entry.Level, entry.Round)
	return entry, nil
}

// Top returns the current board, best first.
func (s *LeaderboardService) Top() ([]models.LeaderboardEntry, error) {
	entries, err := s.repo.TopEntries(LeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return entries, nil
}

// SignOutcome issues the token a client presents when submitting its score.
func (s *LeaderboardService) SignOutcome(outcome models.GameOutcome) (string, error) {
	return s.signer.Sign(outcome)
}

// normalizeInitials uppercases and validates player initials.
func normalizeInitials(initials string) (string, error) {
	initials = strings.ToUpper(strings.TrimSpace(initials))
	if len(initials) < 1 || len(initials) > 3 {
		return "", ErrInvalidInitials
	}
	for _, r := range initials {
		if !unicode.IsLetter(r) {
			return "", ErrInvalidInitials
		}
	}
	return initials, nil
}
