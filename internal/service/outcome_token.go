package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clozereader/internal/models"
)

// ErrInvalidOutcomeToken is returned when a leaderboard submission carries a
// missing, expired, or tampered outcome token.
var ErrInvalidOutcomeToken = errors.New("invalid game outcome token")

// DefaultOutcomeTTL is how long a finished game may wait before its score is
// submitted to the leaderboard.
const DefaultOutcomeTTL = time.Hour

// OutcomeSigner issues and verifies signed game outcomes. The server signs
// the outcome when a game ends; the leaderboard only accepts entries whose
// scores it can verify, so clients cannot forge results.
type OutcomeSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewOutcomeSigner creates a signer with the given HMAC secret.
func NewOutcomeSigner(secret string, ttl time.Duration) *OutcomeSigner {
	if ttl <= 0 {
		ttl = DefaultOutcomeTTL
	}
	return &OutcomeSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

type outcomeClaims struct {
	Level          int `json:"level"`
	Round          int `json:"round"`
	PassagesPassed int `json:"passagesPassed"`
	jwt.RegisteredClaims
}

// Sign wraps a game outcome in a signed, expiring token.
func (s *OutcomeSigner) Sign(outcome models.GameOutcome) (string, error) {
	now := s.now()
	claims := outcomeClaims{
		Level:          outcome.Level,
		Round:          outcome.Round,
		PassagesPassed: outcome.PassagesPassed,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign outcome: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiry and returns the outcome it
// carries.
func (s *OutcomeSigner) Verify(tokenString string) (models.GameOutcome, error) {
	var claims outcomeClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return models.GameOutcome{}, ErrInvalidOutcomeToken
	}

	return models.GameOutcome{
		Level:          claims.Level,
		Round:          claims.Round,
		PassagesPassed: claims.PassagesPassed,
	}, nil
}
