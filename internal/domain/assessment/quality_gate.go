package assessment

import (
	"fmt"
	"regexp"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUALITY GATE
// Cheap pre-checks run before any coach call. The gate saves an expensive
// evaluation round-trip and gives the child a fast, friendly response.
// It is a UX affordance, not a security boundary.
// ══════════════════════════════════════════════════════════════════════════════

// Gate rejection codes, stable for clients.
const (
	GateErrorTooShort  = "too_short"
	GateErrorGibberish = "gibberish"
	GateErrorEmpty     = "empty"
)

// minUniqueWordRatio is the floor for distinct-word share in longer texts.
// Real children's writing repeats words, but never this much.
const minUniqueWordRatio = 0.2

// uniqueRatioMinWords is the length below which the unique-word ratio is
// not checked. Short texts legitimately have tiny vocabularies.
const uniqueRatioMinWords = 10

// wordTokenRe matches a recognizable word: at least two letters in a row.
var wordTokenRe = regexp.MustCompile(`[a-zA-Z]{2,}`)

// GateResult is the structured outcome of a quality check. A rejection is
// an expected result, not an error value.
type GateResult struct {
	Valid     bool   `json:"valid"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
	WordCount int    `json:"word_count"`
	MinWords  int    `json:"min_words"`
}

// QualityGate validates submissions against a lesson's word range and a
// gibberish heuristic.
type QualityGate struct{}

// NewQualityGate creates the gate.
func NewQualityGate() *QualityGate {
	return &QualityGate{}
}

// Check runs the gate on trimmed submission text. minWords comes from the
// lesson rubric; zero means no minimum applies.
func (g *QualityGate) Check(text string, minWords int) GateResult {
	trimmed := strings.TrimSpace(text)
	words := CountWords(trimmed)

	result := GateResult{WordCount: words, MinWords: minWords}

	if trimmed == "" {
		result.Error = GateErrorEmpty
		result.Message = "It looks like your writing is empty. Give it a try!"
		return result
	}

	if minWords > 0 && words < minWords {
		result.Error = GateErrorTooShort
		result.Message = fmt.Sprintf(
			"Your writing has %d words, but this lesson asks for at least %d. Add a little more!",
			words, minWords)
		return result
	}

	if !wordTokenRe.MatchString(trimmed) {
		result.Error = GateErrorGibberish
		result.Message = "Hmm, that doesn't look like words yet. Try writing in full sentences!"
		return result
	}

	if words >= uniqueRatioMinWords && uniqueWordRatio(trimmed) < minUniqueWordRatio {
		result.Error = GateErrorGibberish
		result.Message = "It looks like the same words repeat a lot. Try telling us more!"
		return result
	}

	result.Valid = true
	return result
}

// CountWords counts whitespace-separated tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// uniqueWordRatio returns distinct words over total words, case-insensitive.
func uniqueWordRatio(text string) float64 {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		seen[f] = struct{}{}
	}
	return float64(len(seen)) / float64(len(fields))
}
