package quality

import (
	"regexp"
	"strings"
	"unicode"
)

// Result is the scorer's verdict on an excerpt. Score is the cumulative
// penalty; Issues names each exceeded threshold. Accepted is false when the
// penalty passed the ceiling or a hard-rejection condition fired.
type Result struct {
	Score    float64
	Issues   []string
	Accepted bool
}

// Scorer rates an excerpt of prose for narrative suitability. It penalizes
// the telltale shapes of reference material: tables of contents, indices,
// glossaries and heavily formatted text. Score is a pure function and always
// returns a result.
type Scorer struct {
	t Thresholds
}

// NewScorer creates a scorer with the given thresholds.
func NewScorer(t Thresholds) *Scorer {
	return &Scorer{t: t}
}

var (
	separatorRunRe  = regexp.MustCompile(`-{3,}|[*_=]{3,}`)
	numberedLineRe  = regexp.MustCompile(`(?m)^\s*\d+[.)]\s`)
	abbreviationRe  = regexp.MustCompile(`\b(?:n|v|adj|adv|pron|prep|conj|interj|viz|cf|ibid|op|loc)\.`)
	etymologyRe     = regexp.MustCompile(`\[(?:[A-Z][a-z]{1,3}\.|OE|ME|L\.|Gr\.|Fr\.)[^\]]*\]`)
	citationRe      = regexp.MustCompile(`\(\d{4}\)|\bp{1,2}\.\s*\d+|\bvol\.\s*\d+`)
	romanNumeralRe  = regexp.MustCompile(`^\s*[IVXLC]+\.\s`)
	tablePipeRe     = regexp.MustCompile(`\|`)
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
)

// Score rates the excerpt. It never fails; an empty excerpt earns an
// immediate rejection.
func (s *Scorer) Score(excerpt string) Result {
	tokens := strings.Fields(excerpt)
	if len(tokens) == 0 {
		return Result{Score: s.t.MaxPenalty + 1, Issues: []string{"empty excerpt"}}
	}

	res := Result{}
	total := float64(len(tokens))

	var capsCount, digitCount, shortCount, punctRunes, letterRunes, bracketCount int
	for _, tok := range tokens {
		letters := 0
		upper := 0
		hasDigit := false
		for _, r := range tok {
			switch {
			case unicode.IsLetter(r):
				letters++
				letterRunes++
				if unicode.IsUpper(r) {
					upper++
				}
			case unicode.IsDigit(r):
				hasDigit = true
			case unicode.IsPunct(r) || unicode.IsSymbol(r):
				punctRunes++
				if r == '(' || r == ')' || r == '[' || r == ']' {
					bracketCount++
				}
			}
		}
		if letters >= 2 && upper == letters {
			capsCount++
		}
		if hasDigit {
			digitCount++
		}
		if letters > 0 && letters <= 3 {
			shortCount++
		}
	}

	capsRatio := float64(capsCount) / total
	if capsRatio > s.t.RejectCapsRatio {
		res.Issues = append(res.Issues, "excessive all-caps tokens")
		res.Score = s.t.MaxPenalty + 1
		return res
	}
	if n := consecutiveCapsLines(excerpt); n >= s.t.RejectCapsLines {
		res.Issues = append(res.Issues, "consecutive all-caps lines")
		res.Score = s.t.MaxPenalty + 1
		return res
	}

	if capsRatio > s.t.CapsRatio {
		res.penalize(s.t.CapsWeight, "high all-caps ratio")
	}
	if float64(digitCount)/total > s.t.DigitRatio {
		res.penalize(s.t.DigitWeight, "high digit-token ratio")
	}
	if float64(shortCount)/total > s.t.ShortRatio {
		res.penalize(s.t.ShortWeight, "mostly short tokens")
	}
	if letterRunes > 0 && float64(punctRunes)/float64(punctRunes+letterRunes) > s.t.PunctDensity {
		res.penalize(s.t.PunctWeight, "high punctuation density")
	}

	avg := averageSentenceLength(excerpt)
	if avg < s.t.MinSentenceLen || avg > s.t.MaxSentenceLen {
		res.penalize(s.t.SentenceWeight, "abnormal sentence length")
	}

	structural := len(separatorRunRe.FindAllString(excerpt, -1)) +
		len(numberedLineRe.FindAllString(excerpt, -1)) +
		len(tablePipeRe.FindAllString(excerpt, -1)) +
		len(romanNumeralRe.FindAllString(excerpt, -1)) +
		bracketCount/4
	if float64(structural)/total*100 > s.t.StructuralPer100 {
		res.penalize(s.t.StructuralWeight, "structural formatting markers")
	}

	glossary := len(abbreviationRe.FindAllString(excerpt, -1)) +
		len(etymologyRe.FindAllString(excerpt, -1)) +
		len(citationRe.FindAllString(excerpt, -1))
	if float64(glossary)/total*100 > s.t.GlossaryPer100 {
		res.penalize(s.t.GlossaryWeight, "glossary or citation markers")
	}

	res.Accepted = res.Score <= s.t.MaxPenalty
	return res
}

// Accepts reports whether the excerpt clears the penalty ceiling.
func (s *Scorer) Accepts(excerpt string) bool {
	return s.Score(excerpt).Accepted
}

func (r *Result) penalize(weight float64, issue string) {
	r.Score += weight
	r.Issues = append(r.Issues, issue)
}

// consecutiveCapsLines returns the longest run of lines written entirely in
// capitals. Headings and tables of contents produce such runs; narrative
// prose does not.
func consecutiveCapsLines(excerpt string) int {
	longest, run := 0, 0
	for _, line := range strings.Split(excerpt, "\n") {
		letters, upper := 0, 0
		for _, r := range line {
			if unicode.IsLetter(r) {
				letters++
				if unicode.IsUpper(r) {
					upper++
				}
			}
		}
		if letters >= 3 && upper == letters {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

// averageSentenceLength counts tokens between sentence terminators.
func averageSentenceLength(excerpt string) float64 {
	sentences := sentenceSplitRe.Split(excerpt, -1)
	count := 0
	tokens := 0
	for _, s := range sentences {
		n := len(strings.Fields(s))
		if n == 0 {
			continue
		}
		count++
		tokens += n
	}
	if count == 0 {
		return 0
	}
	return float64(tokens) / float64(count)
}
