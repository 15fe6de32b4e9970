package passage

import (
	"errors"
	"math/rand"
	"strings"
	"unicode"

	"clozereader/internal/models"
	"clozereader/internal/quality"
)

// ErrExtractionExhausted reports that every resampling attempt was rejected
// and the degraded fallback window was returned instead. The passage that
// accompanies it is still usable; availability wins over strict quality.
var ErrExtractionExhausted = errors.New("passage extraction exhausted, returned fallback window")

// Config holds the sampling parameters for the extractor.
type Config struct {
	WindowSize  int     // characters per sampled window
	MinLength   int     // minimum accepted passage length
	MaxAttempts int     // resampling attempts before the fallback
	SpanStart   float64 // fraction of the document where sampling begins
	SpanEnd     float64 // fraction of the document where sampling ends
}

// DefaultConfig returns the reference sampling parameters.
func DefaultConfig() Config {
	return Config{
		WindowSize:  1000,
		MinLength:   400,
		MaxAttempts: 5,
		SpanStart:   0.30,
		SpanEnd:     0.80,
	}
}

// Extractor samples sentence-trimmed excerpts from a document until one
// passes the quality scorer.
type Extractor struct {
	scorer *quality.Scorer
	rng    *rand.Rand
	cfg    Config
}

// NewExtractor creates an extractor. The random source is injected so tests
// can seed it.
func NewExtractor(scorer *quality.Scorer, rng *rand.Rand, cfg Config) *Extractor {
	return &Extractor{scorer: scorer, rng: rng, cfg: cfg}
}

// Extract samples random windows from the middle span of the document,
// skipping front and back matter, until one passes quality and length
// thresholds. When every attempt is rejected it falls back to the first
// sentence boundary near the start of the document and returns the window
// alongside ErrExtractionExhausted.
func (e *Extractor) Extract(doc models.Document) (models.Passage, error) {
	text := doc.RawText
	if len(text) < e.cfg.MinLength {
		return models.Passage{}, errors.New("document too short to extract a passage")
	}

	// A short trimmed window earns one extra attempt before the fallback.
	attempts := e.cfg.MaxAttempts
	retriedShort := false

	for i := 0; i < attempts; i++ {
		start := e.sampleOffset(len(text))
		window := sliceWindow(text, start, e.cfg.WindowSize)
		trimmed := trimToSentences(window)

		if len(trimmed) < e.cfg.MinLength {
			if !retriedShort {
				retriedShort = true
				attempts++
			}
			continue
		}

		res := e.scorer.Score(trimmed)
		if res.Accepted {
			return models.Passage{
				Text:         trimmed,
				Title:        doc.Title,
				Author:       doc.Author,
				QualityScore: res.Score,
			}, nil
		}
	}

	fallback := e.fallbackWindow(text)
	res := e.scorer.Score(fallback)
	return models.Passage{
		Text:         fallback,
		Title:        doc.Title,
		Author:       doc.Author,
		QualityScore: res.Score,
	}, ErrExtractionExhausted
}

// sampleOffset picks a random start inside the middle span of the document.
func (e *Extractor) sampleOffset(length int) int {
	lo := int(float64(length) * e.cfg.SpanStart)
	hi := int(float64(length) * e.cfg.SpanEnd)
	if hi <= lo {
		return lo
	}
	return lo + e.rng.Intn(hi-lo)
}

// fallbackWindow returns a sentence-trimmed window anchored at the first
// sentence boundary near the start of the document.
func (e *Extractor) fallbackWindow(text string) string {
	start := 0
	if idx := firstSentenceStart(text); idx > 0 {
		start = idx
	}
	return trimToSentences(sliceWindow(text, start, e.cfg.WindowSize))
}

func sliceWindow(text string, start, size int) string {
	if start >= len(text) {
		start = len(text) - 1
	}
	end := start + size
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}

// firstSentenceStart finds the first capitalized sentence opening after a
// terminator, which skips whatever header text precedes the body.
func firstSentenceStart(text string) int {
	limit := len(text)
	if limit > 5000 {
		limit = 5000
	}
	for i := 0; i < limit-2; i++ {
		if isTerminator(rune(text[i])) && text[i+1] == ' ' {
			r := rune(text[i+2])
			if unicode.IsUpper(r) {
				return i + 2
			}
		}
	}
	return 0
}

// trimToSentences cuts the window to whole sentences: forward to the first
// capitalized sentence start, backward past a possibly-incomplete trailing
// sentence.
func trimToSentences(window string) string {
	runes := []rune(window)

	start := 0
	for i := 0; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && (i == 0 || isSentenceBoundary(runes, i)) {
			start = i
			break
		}
	}

	end := -1
	for i := len(runes) - 1; i > start; i-- {
		if isTerminator(runes[i]) {
			end = i + 1
			break
		}
	}
	if end <= start {
		return strings.TrimSpace(string(runes[start:]))
	}
	return strings.TrimSpace(string(runes[start:end]))
}

// isSentenceBoundary reports whether the rune at i opens a sentence: the
// preceding non-space rune is a terminator, or only whitespace precedes it.
func isSentenceBoundary(runes []rune, i int) bool {
	for j := i - 1; j >= 0; j-- {
		if unicode.IsSpace(runes[j]) {
			continue
		}
		return isTerminator(runes[j]) || runes[j] == '"' || runes[j] == '\''
	}
	return true
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
