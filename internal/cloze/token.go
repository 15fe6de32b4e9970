package cloze

import (
	"strings"
	"unicode"
)

// Token is one whitespace-delimited token of a passage, with the byte
// offsets needed to blank it in place.
type Token struct {
	Raw        string // token as it appears, punctuation included
	Word       string // Raw stripped of surrounding punctuation
	Offset     int    // byte offset of Raw in the passage
	WordOffset int    // byte offset of Word in the passage
	Index      int    // zero-based token index
}

// Tokenize splits text on whitespace while recording byte offsets, so the
// original layout can be reconstructed exactly.
func Tokenize(text string) []Token {
	var tokens []Token
	i := 0
	for i < len(text) {
		// Skip whitespace.
		for i < len(text) && isSpaceByte(text[i]) {
			i++
		}
		if i >= len(text) {
			break
		}
		start := i
		for i < len(text) && !isSpaceByte(text[i]) {
			i++
		}
		raw := text[start:i]
		word, lead := stripPunct(raw)
		tokens = append(tokens, Token{
			Raw:        raw,
			Word:       word,
			Offset:     start,
			WordOffset: start + lead,
			Index:      len(tokens),
		})
	}
	return tokens
}

// IsLowercaseWord reports whether the word starts with a lowercase letter
// and contains only letters (apostrophes and hyphens allowed inside).
func IsLowercaseWord(word string) bool {
	if word == "" {
		return false
	}
	for i, r := range word {
		if i == 0 {
			if !unicode.IsLower(r) {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && r != '\'' && r != '-' {
			return false
		}
	}
	return true
}

// stripPunct removes leading and trailing punctuation from a raw token,
// returning the core word and the number of leading bytes removed.
func stripPunct(raw string) (string, int) {
	start := 0
	for start < len(raw) {
		r := rune(raw[start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			break
		}
		start++
	}
	end := len(raw)
	for end > start {
		r := rune(raw[end-1])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			break
		}
		end--
	}
	return raw[start:end], start
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// SentenceAround returns the sentence of text containing the byte offset,
// used to give hint conversations local context.
func SentenceAround(text string, offset int) string {
	if offset < 0 || offset >= len(text) {
		return text
	}
	start := 0
	for i := offset; i > 0; i-- {
		if isTerminatorByte(text[i-1]) {
			start = i
			break
		}
	}
	end := len(text)
	for i := offset; i < len(text); i++ {
		if isTerminatorByte(text[i]) {
			end = i + 1
			break
		}
	}
	return strings.TrimSpace(text[start:end])
}

func isTerminatorByte(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}
