package game

import (
	"strings"

	"clozereader/internal/models"
)

// BlanksForLevel returns how many words are blanked per passage at a level.
func BlanksForLevel(level int) int {
	switch {
	case level <= 5:
		return 1
	case level <= 10:
		return 2
	default:
		return 3
	}
}

// RequiredCorrect returns how many of total blanks must be answered
// correctly for a passage to pass. Odd counts above one tolerate exactly one
// miss; even counts tolerate none.
func RequiredCorrect(total int) int {
	switch {
	case total <= 1:
		return 1
	case total%2 == 1:
		return total - 1
	default:
		return total
	}
}

// ScorePassage grades answers against blanks, matched by position. It is a
// pure function: scoring the same submission twice yields the same result.
// Correct answers are always included so a failed passage can reveal them.
func ScorePassage(blanks []models.Blank, answers []string) models.PassageScore {
	score := models.PassageScore{
		Total:           len(blanks),
		RequiredCorrect: RequiredCorrect(len(blanks)),
	}
	for i, b := range blanks {
		var answer string
		if i < len(answers) {
			answer = answers[i]
		}
		correct := normalizeAnswer(answer) == normalizeAnswer(b.OriginalWord)
		if correct {
			score.CorrectCount++
		}
		score.Results = append(score.Results, models.BlankResult{
			BlankIndex:    b.Index,
			UserAnswer:    answer,
			CorrectAnswer: b.OriginalWord,
			IsCorrect:     correct,
		})
	}
	score.Passed = score.CorrectCount >= score.RequiredCorrect
	return score
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
