package hints

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// scrubPlaceholder replaces any token that would give away the answer.
const scrubPlaceholder = "_____"

// morphological suffixes stripped when comparing a hint token against the
// target word.
var suffixes = []string{"ing", "ed", "s"}

// Scrub removes the target word and its common morphological variants from
// hint text, replacing each match with a neutral placeholder. A hint that
// reveals the answer defeats the exercise, so this runs on every generated
// hint before it reaches the user. Whitespace between tokens, including
// newlines, passes through untouched.
func Scrub(hint, target string) string {
	stems := stemsOf(target)
	if len(stems) == 0 {
		return hint
	}

	var b strings.Builder
	b.Grow(len(hint))
	changed := false
	rest := hint
	for len(rest) > 0 {
		space := spanFunc(rest, unicode.IsSpace)
		b.WriteString(rest[:space])
		rest = rest[space:]

		n := spanFunc(rest, func(r rune) bool { return !unicode.IsSpace(r) })
		tok := rest[:n]
		rest = rest[n:]

		word, lead, trail := splitPunct(tok)
		if word != "" && matchesStem(strings.ToLower(word), stems) {
			b.WriteString(lead)
			b.WriteString(scrubPlaceholder)
			b.WriteString(trail)
			changed = true
		} else {
			b.WriteString(tok)
		}
	}
	if !changed {
		return hint
	}
	return b.String()
}

// spanFunc returns the length in bytes of the leading run of s whose runes
// satisfy pred.
func spanFunc(s string, pred func(rune) bool) int {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !pred(r) {
			return i
		}
		i += size
	}
	return len(s)
}

// stemsOf returns the lowercase target plus its suffix-stripped forms.
func stemsOf(target string) map[string]bool {
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" {
		return nil
	}
	stems := map[string]bool{target: true}
	for _, suf := range suffixes {
		s, ok := strings.CutSuffix(target, suf)
		if !ok || len(s) < 3 {
			continue
		}
		stems[s] = true
		// settled -> settl -> settle, so "settles" is caught too.
		if suf != "s" {
			stems[s+"e"] = true
		}
	}
	return stems
}

// matchesStem reports whether word, or word with a suffix stripped, is one
// of the target's stems.
func matchesStem(word string, stems map[string]bool) bool {
	if stems[word] {
		return true
	}
	for _, suf := range suffixes {
		if s, ok := strings.CutSuffix(word, suf); ok && len(s) >= 3 && stems[s] {
			return true
		}
	}
	return false
}

// splitPunct separates leading and trailing punctuation from a token so the
// placeholder keeps the surrounding punctuation intact.
func splitPunct(tok string) (word, lead, trail string) {
	start := 0
	for start < len(tok) && !isWordByte(tok[start]) {
		start++
	}
	end := len(tok)
	for end > start && !isWordByte(tok[end-1]) {
		end--
	}
	return tok[start:end], tok[:start], tok[end:]
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b == '\'' || b == '-'
}
