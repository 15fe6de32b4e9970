package cloze

import (
	"strings"
	"testing"

	"clozereader/internal/models"
)

const samplePassage = "The gulls wheeled over the harbor while the fishermen hauled their nets, and the morning light settled slowly across the water."

func candidateAt(t *testing.T, text, word string) models.CandidateWord {
	t.Helper()
	for _, tok := range Tokenize(text) {
		if tok.Word == word {
			return models.CandidateWord{SurfaceForm: word, ByteOffset: tok.WordOffset, TokenIndex: tok.Index}
		}
	}
	t.Fatalf("word %q not found in passage", word)
	return models.CandidateWord{}
}

func TestAssemblePreservesLayout(t *testing.T) {
	passage := models.Passage{Text: samplePassage}
	cands := []models.CandidateWord{
		candidateAt(t, samplePassage, "settled"),
		candidateAt(t, samplePassage, "harbor"),
	}

	a, err := Assemble(passage, cands, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Blanks are numbered in passage order regardless of input order.
	if a.Blanks[0].OriginalWord != "harbor" || a.Blanks[1].OriginalWord != "settled" {
		t.Errorf("blank order = %q, %q", a.Blanks[0].OriginalWord, a.Blanks[1].OriginalWord)
	}

	want := strings.Replace(samplePassage, "harbor", "{{1}}", 1)
	want = strings.Replace(want, "settled", "{{2}}", 1)
	if a.ClozeText != want {
		t.Errorf("cloze text = %q, want %q", a.ClozeText, want)
	}

	// Punctuation and whitespace survive around the placeholders.
	if !strings.Contains(a.ClozeText, "{{1}} while") || !strings.Contains(a.ClozeText, "light {{2}} slowly") {
		t.Errorf("layout damaged: %q", a.ClozeText)
	}
}

func TestAssembleRejectsDoubleClaim(t *testing.T) {
	passage := models.Passage{Text: samplePassage}
	c := candidateAt(t, samplePassage, "harbor")

	if _, err := Assemble(passage, []models.CandidateWord{c, c}, 1); err == nil {
		t.Fatal("expected error for duplicate offsets")
	}
}

func TestAssembleRejectsMismatchedOffset(t *testing.T) {
	passage := models.Passage{Text: samplePassage}
	c := models.CandidateWord{SurfaceForm: "harbor", ByteOffset: 0}

	if _, err := Assemble(passage, []models.CandidateWord{c}, 1); err == nil {
		t.Fatal("expected error for offset that does not hold the word")
	}
}

func TestStructuralHintByLevel(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{1, `7 letters, starts with 's', ends with 'd'`},
		{2, `7 letters, starts with 's', ends with 'd'`},
		{3, `7 letters, starts with 's'`},
		{11, `7 letters, starts with 's'`},
	}

	for _, tt := range tests {
		if got := structuralHint("settled", tt.level); got != tt.want {
			t.Errorf("structuralHint(level %d) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestTokenizeOffsets(t *testing.T) {
	text := "A  small,\nquiet place."
	tokens := Tokenize(text)

	if len(tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %d", len(tokens))
	}

	small := tokens[1]
	if small.Word != "small" || small.Raw != "small," {
		t.Errorf("token = %+v", small)
	}
	if text[small.WordOffset:small.WordOffset+len(small.Word)] != "small" {
		t.Errorf("word offset %d does not point at the word", small.WordOffset)
	}

	place := tokens[3]
	if place.Word != "place" || place.Index != 3 {
		t.Errorf("token = %+v", place)
	}
}

func TestIsLowercaseWord(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{"settled", true},
		{"o'clock", true},
		{"well-worn", true},
		{"Settled", false},
		{"", false},
		{"wor1d", false},
	}

	for _, tt := range tests {
		if got := IsLowercaseWord(tt.word); got != tt.want {
			t.Errorf("IsLowercaseWord(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}

func TestSentenceAround(t *testing.T) {
	text := "First sentence here. Second one with target word. Third trails off."
	offset := strings.Index(text, "target")

	got := SentenceAround(text, offset)
	if got != "Second one with target word." {
		t.Errorf("SentenceAround() = %q", got)
	}
}
