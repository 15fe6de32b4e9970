package service

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"clozereader/internal/database"
	"clozereader/internal/models"
	"clozereader/internal/repository"
)

func TestNormalizeInitials(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "lowercase uppercased", input: "abc", expected: "ABC"},
		{name: "trimmed", input: " JD ", expected: "JD"},
		{name: "single letter", input: "q", expected: "Q"},
		{name: "empty", input: "", wantErr: true},
		{name: "too long", input: "ABCD", wantErr: true},
		{name: "digits rejected", input: "A1", wantErr: true},
		{name: "punctuation rejected", input: "A.B", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := normalizeInitials(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInitials) {
					t.Errorf("normalizeInitials(%q) err = %v, want ErrInvalidInitials", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeInitials(%q) err = %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("normalizeInitials(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestOutcomeSignerRoundTrip(t *testing.T) {
	signer := NewOutcomeSigner("test-secret", time.Minute)
	outcome := models.GameOutcome{Level: 4, Round: 9, PassagesPassed: 11}

	token, err := signer.Sign(outcome)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	got, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if got != outcome {
		t.Errorf("Verify() = %+v, want %+v", got, outcome)
	}
}

func TestOutcomeSignerRejectsTampering(t *testing.T) {
	signer := NewOutcomeSigner("test-secret", time.Minute)
	other := NewOutcomeSigner("other-secret", time.Minute)

	token, err := other.Sign(models.GameOutcome{Level: 99, Round: 99, PassagesPassed: 99})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if _, err := signer.Verify(token); !errors.Is(err, ErrInvalidOutcomeToken) {
		t.Errorf("Verify err = %v, want ErrInvalidOutcomeToken", err)
	}
	if _, err := signer.Verify("not.a.token"); !errors.Is(err, ErrInvalidOutcomeToken) {
		t.Errorf("Verify garbage err = %v, want ErrInvalidOutcomeToken", err)
	}
}

func TestOutcomeSignerRejectsExpired(t *testing.T) {
	signer := NewOutcomeSigner("test-secret", time.Minute)
	token, err := signer.Sign(models.GameOutcome{Level: 2, Round: 3, PassagesPassed: 2})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	// Shift the verifier's clock past the TTL.
	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := signer.Verify(token); !errors.Is(err, ErrInvalidOutcomeToken) {
		t.Errorf("Verify err = %v, want ErrInvalidOutcomeToken for expired token", err)
	}
}

func newTestLeaderboard(t *testing.T) *LeaderboardService {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	repo := repository.NewLeaderboardRepository(db)
	return NewLeaderboardService(repo, NewOutcomeSigner("test-secret", time.Minute))
}

func TestSubmitAndTop(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	svc := newTestLeaderboard(t)

	token, err := svc.SignOutcome(models.GameOutcome{Level: 3, Round: 8, PassagesPassed: 10})
	if err != nil {
		t.Fatalf("SignOutcome failed: %v", err)
	}

	entry, err := svc.Submit(token, "jd")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if entry.Initials != "JD" || entry.Level != 3 || entry.Round != 8 || entry.PassagesPassed != 10 {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.ID <= 0 {
		t.Errorf("entry ID = %d, want positive", entry.ID)
	}

	top, err := svc.Top()
	if err != nil {
		t.Fatalf("Top failed: %v", err)
	}
	if len(top) != 1 || top[0].Initials != "JD" {
		t.Errorf("Top() = %+v, want the submitted entry", top)
	}
}

func TestSubmitRejectsForgedToken(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	svc := newTestLeaderboard(t)

	if _, err := svc.Submit("forged", "JD"); !errors.Is(err, ErrInvalidOutcomeToken) {
		t.Errorf("Submit err = %v, want ErrInvalidOutcomeToken", err)
	}
}

func TestLeaderboardKeepsTopTen(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	svc := newTestLeaderboard(t)

	// Twelve entries at ascending levels; only the ten best survive.
	for level := 1; level <= 12; level++ {
		token, err := svc.SignOutcome(models.GameOutcome{Level: level, Round: level, PassagesPassed: level})
		if err != nil {
			t.Fatalf("SignOutcome failed: %v", err)
		}
		if _, err := svc.Submit(token, "AAA"); err != nil {
			t.Fatalf("Submit failed at level %d: %v", level, err)
		}
	}

	top, err := svc.Top()
	if err != nil {
		t.Fatalf("Top failed: %v", err)
	}
	if len(top) != LeaderboardSize {
		t.Fatalf("board has %d entries, want %d", len(top), LeaderboardSize)
	}
	if top[0].Level != 12 {
		t.Errorf("best entry level = %d, want 12", top[0].Level)
	}
	if top[len(top)-1].Level != 3 {
		t.Errorf("worst kept entry level = %d, want 3 (levels 1 and 2 trimmed)", top[len(top)-1].Level)
	}
	for i := 1; i < len(top); i++ {
		if top[i].Level > top[i-1].Level {
			t.Errorf("board out of order at index %d", i)
		}
	}
}
