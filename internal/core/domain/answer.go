package domain

import (
	"strings"
	"time"
	"unicode"
)

// AnswerTier identifies which strategy of the fallback chain produced
// an answer.
type AnswerTier string

// Answer production tiers, in the order they are attempted.
const (
	// TierGrounded is generation conditioned on retrieved context.
	TierGrounded AnswerTier = "grounded"

	// TierUngrounded is generation from the model alone.
	TierUngrounded AnswerTier = "ungrounded"

	// TierVerbatim is the best retrieved chunk text, unmodified.
	TierVerbatim AnswerTier = "verbatim"

	// TierSafe is the fixed configuration-supplied response.
	TierSafe AnswerTier = "safe"
)

// IsValid returns true if the tier is recognised.
func (t AnswerTier) IsValid() bool {
	switch t {
	case TierGrounded, TierUngrounded, TierVerbatim, TierSafe:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t AnswerTier) String() string {
	return string(t)
}

// Answer is a composed response to a single query.
type Answer struct {
	// Text is the answer shown to the user.
	Text string

	// Tier records which fallback strategy produced the text.
	Tier AnswerTier

	// BestScore is the top retrieval similarity for the query,
	// zero when nothing was retrieved.
	BestScore float64

	// Hits are the retrieval results that informed the answer.
	Hits []SearchHit
}

// ConversationTurn is one user query and the produced answer.
// Turns are append-only; they are never mutated after creation.
type ConversationTurn struct {
	// ID is the unique identifier for the turn.
	ID string `json:"id"`

	// Timestamp is when the answer was produced.
	Timestamp time.Time `json:"ts"`

	// Query is the user utterance.
	Query string `json:"query"`

	// Answer is the produced answer text.
	Answer string `json:"answer"`

	// Tier records the fallback strategy that produced the answer.
	Tier AnswerTier `json:"tier"`

	// Retrieved references the chunks retrieved for the query.
	Retrieved []ChunkRef `json:"retrieved,omitempty"`

	// Feedback is an optional user rating: "up", "down" or empty.
	Feedback string `json:"feedback,omitempty"`
}

// AnswerBand is the accepted character-length band for generated
// answers. Text outside the band is rejected by the composer.
type AnswerBand struct {
	Min int
	Max int
}

// DefaultAnswerBand accepts answers of 15 to 400 characters.
var DefaultAnswerBand = AnswerBand{Min: 15, Max: 400}

// Accepts reports whether the text, after trimming whitespace and
// control characters, falls within the band. Length is counted in
// runes so multi-byte text is not penalised.
func (b AnswerBand) Accepts(text string) bool {
	cleaned := CleanAnswer(text)
	if cleaned == "" {
		return false
	}
	n := len([]rune(cleaned))
	return n >= b.Min && n <= b.Max
}

// CleanAnswer strips control characters and trims surrounding
// whitespace from generated text.
func CleanAnswer(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(cleaned)
}
