package models

// RoundState tracks the player's position on the difficulty ladder.
// It is owned exclusively by the progression engine: level only moves up on
// an explicit advancement, and PassesAtCurrentLevel never goes down on a
// failed round.
type RoundState struct {
	Level                int
	RoundNumber          int
	BlanksPerPassage     int
	PassesAtCurrentLevel int
}

// BlankResult is the scoring outcome for one blank in a submitted passage.
// CorrectAnswer is always populated so a failed passage can reveal its
// answers to the player.
type BlankResult struct {
	BlankIndex    int    `json:"blankIndex"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// PassageScore aggregates the blank results for one passage submission.
type PassageScore struct {
	Results         []BlankResult `json:"results"`
	CorrectCount    int           `json:"correctCount"`
	Total           int           `json:"total"`
	RequiredCorrect int           `json:"requiredCorrect"`
	Passed          bool          `json:"passed"`
}

// GameOutcome is the final summary of a finished game, handed to the
// leaderboard.
type GameOutcome struct {
	Level          int `json:"level"`
	Round          int `json:"round"`
	PassagesPassed int `json:"passagesPassed"`
}
