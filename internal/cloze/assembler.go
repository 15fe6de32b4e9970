// Package cloze turns a passage and its selected words into display text
// with numbered blanks and structural hints.
package cloze

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"clozereader/internal/models"
)

// Assembly is the renderable form of a cloze passage.
type Assembly struct {
	ClozeText string
	Blanks    []models.Blank
}

// Assemble replaces each candidate's occurrence with a numbered placeholder,
// preserving the original whitespace and punctuation layout, and attaches a
// structural hint per blank. Deterministic given its inputs.
func Assemble(passage models.Passage, candidates []models.CandidateWord, level int) (Assembly, error) {
	if len(candidates) == 0 {
		return Assembly{}, fmt.Errorf("no candidates to assemble")
	}

	// Blanks are numbered in passage order; indices stay stable for the
	// whole round.
	sorted := make([]models.CandidateWord, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ByteOffset < sorted[j].ByteOffset })

	text := passage.Text
	var b strings.Builder
	blanks := make([]models.Blank, 0, len(sorted))
	cursor := 0
	claimed := -1

	for i, cand := range sorted {
		end := cand.ByteOffset + len(cand.SurfaceForm)
		if cand.ByteOffset < cursor || cand.ByteOffset <= claimed || end > len(text) {
			return Assembly{}, fmt.Errorf("candidate %q claims an invalid or already blanked offset %d", cand.SurfaceForm, cand.ByteOffset)
		}
		if text[cand.ByteOffset:end] != cand.SurfaceForm {
			return Assembly{}, fmt.Errorf("candidate %q does not occur at offset %d", cand.SurfaceForm, cand.ByteOffset)
		}

		b.WriteString(text[cursor:cand.ByteOffset])
		b.WriteString(Placeholder(i))
		cursor = end
		claimed = cand.ByteOffset

		blanks = append(blanks, models.Blank{
			Index:          i,
			OriginalWord:   cand.SurfaceForm,
			ByteOffset:     cand.ByteOffset,
			StructuralHint: structuralHint(cand.SurfaceForm, level),
		})
	}
	b.WriteString(text[cursor:])

	return Assembly{ClozeText: b.String(), Blanks: blanks}, nil
}

// Placeholder is the marker inserted for blank i.
func Placeholder(i int) string {
	return fmt.Sprintf("{{%d}}", i+1)
}

// structuralHint reveals word shape. Early levels get the last letter too:
// richer scaffolding while the mechanic is new.
func structuralHint(word string, level int) string {
	runes := []rune(word)
	length := utf8.RuneCountInString(word)
	if level <= 2 && length > 1 {
		return fmt.Sprintf("%d letters, starts with %q, ends with %q", length, runes[0], runes[length-1])
	}
	return fmt.Sprintf("%d letters, starts with %q", length, runes[0])
}
