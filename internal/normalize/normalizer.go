// Package normalize repairs the malformed JSON that generative-text services
// habitually return: markdown fences, trailing commas, unbalanced quotes and
// braces, and content trailing past the closing brace. Its output is a
// best-effort structure and must never be trusted as complete; callers
// re-validate every semantic constraint.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnparsableResponse reports that no structure could be salvaged at all.
var ErrUnparsableResponse = errors.New("response could not be parsed or salvaged")

// Meta carries document metadata used to template fallback values for fields
// the response was missing.
type Meta struct {
	Title  string
	Author string
}

// Parsed is the best-effort structure recovered from a raw response.
type Parsed struct {
	Words   []string
	Context string
	Hint    string
}

var (
	fenceRe         = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	wordsFieldRe    = regexp.MustCompile(`"words"\s*:\s*\[([^\]]*)`)
	quotedStringRe  = regexp.MustCompile(`"([^"]*)"`)
	contextFieldRe  = regexp.MustCompile(`"context"\s*:\s*"([^"]*)`)
	hintFieldRe     = regexp.MustCompile(`"hint"\s*:\s*"([^"]*)`)
)

// Normalize repairs raw into a Parsed structure. Repairs are applied in
// order: strip fences, drop trailing commas, balance quotes, balance braces,
// truncate past the last balanced brace, then parse. If parsing still fails,
// targeted regex extraction rebuilds what it can; missing fields default to
// empty collections or a context templated from meta.
func Normalize(raw string, meta Meta) (Parsed, error) {
	cleaned := stripFences(raw)
	cleaned = trailingCommaRe.ReplaceAllString(cleaned, "$1")
	cleaned = balanceQuotes(cleaned)
	cleaned = balanceBraces(cleaned)
	cleaned = truncateAfterBalanced(cleaned)

	if p, ok := parseJSON(cleaned); ok {
		return applyDefaults(p, meta), nil
	}

	p, ok := extractFragments(raw)
	if !ok {
		return Parsed{}, fmt.Errorf("%w: %q", ErrUnparsableResponse, truncateForLog(raw))
	}
	return applyDefaults(p, meta), nil
}

func stripFences(raw string) string {
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	// An opening fence whose closer was cut off by truncation.
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		return strings.TrimSpace(trimmed)
	}
	return raw
}

// balanceQuotes appends a closing quote when the count of unescaped quotes
// is odd.
func balanceQuotes(s string) string {
	count := 0
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			count++
		}
	}
	if count%2 == 1 {
		return s + `"`
	}
	return s
}

// balanceBraces appends missing closing braces, ignoring braces inside
// string literals.
func balanceBraces(s string) string {
	depth := 0
	inString := false
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inString = !inString
		case !inString && r == '{':
			depth++
		case !inString && r == '}':
			depth--
		}
	}
	for ; depth > 0; depth-- {
		s += "}"
	}
	return s
}

// truncateAfterBalanced cuts anything after the brace that closes the first
// object.
func truncateAfterBalanced(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return s
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}

func parseJSON(s string) (Parsed, bool) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return Parsed{}, false
	}

	p := Parsed{}
	if words, ok := fields["words"].([]any); ok {
		for _, w := range words {
			if str, ok := w.(string); ok && str != "" {
				p.Words = append(p.Words, str)
			}
		}
	}
	if ctx, ok := fields["context"].(string); ok {
		p.Context = ctx
	}
	if hint, ok := fields["hint"].(string); ok {
		p.Hint = hint
	}
	return p, true
}

// extractFragments pulls known fields out of text that never became valid
// JSON.
func extractFragments(raw string) (Parsed, bool) {
	p := Parsed{}
	found := false

	if m := wordsFieldRe.FindStringSubmatch(raw); m != nil {
		for _, q := range quotedStringRe.FindAllStringSubmatch(m[1], -1) {
			if q[1] != "" {
				p.Words = append(p.Words, q[1])
			}
		}
		if len(p.Words) > 0 {
			found = true
		}
	}
	if m := contextFieldRe.FindStringSubmatch(raw); m != nil && m[1] != "" {
		p.Context = m[1]
		found = true
	}
	if m := hintFieldRe.FindStringSubmatch(raw); m != nil && m[1] != "" {
		p.Hint = m[1]
		found = true
	}

	return p, found
}

func applyDefaults(p Parsed, meta Meta) Parsed {
	if p.Words == nil {
		p.Words = []string{}
	}
	if p.Context == "" && meta.Title != "" {
		if meta.Author != "" {
			p.Context = fmt.Sprintf("An excerpt from %s by %s.", meta.Title, meta.Author)
		} else {
			p.Context = fmt.Sprintf("An excerpt from %s.", meta.Title)
		}
	}
	return p
}

func truncateForLog(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
