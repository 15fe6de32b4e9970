package models

// Document is the raw text of a book plus its metadata, as returned by the
// corpus service. It is immutable and lives only for the round that uses it.
type Document struct {
	Title   string
	Author  string
	RawText string
}

// Passage is a contiguous excerpt of a Document, trimmed to sentence
// boundaries by the extractor.
type Passage struct {
	Text         string
	Title        string
	Author       string
	QualityScore float64
}

// CandidateWord is a token proposed for blanking. Every accepted candidate
// occurs verbatim (case-sensitive) in its source passage at ByteOffset.
type CandidateWord struct {
	SurfaceForm string
	ByteOffset  int
	TokenIndex  int
}

// Blank is a single removed-word slot in an assembled cloze passage.
// Indices are stable for the lifetime of the round.
type Blank struct {
	Index          int
	OriginalWord   string
	ByteOffset     int
	StructuralHint string
}
