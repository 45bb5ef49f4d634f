package session

import (
	"regexp"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARKER PROTOCOL
// The coach model embeds control markers in its free-text replies:
//
//	[PHASE_TRANSITION: guided]      request a phase advance
//	[COMPREHENSION_CHECK: passed]   comprehension gate satisfied
//	[HINT_GIVEN]                    a hint was issued
//	[WRITING_PROMPT: "..."]         show a micro-writing exercise
//	[EXPECTS_RESPONSE]              collect a short answer, no Continue button
//
// Each family is independent, optional, and order-insensitive. Malformed
// marker values are treated as the marker being absent, never as an error.
// ══════════════════════════════════════════════════════════════════════════════

// Marker regexes. Values are matched loosely and validated afterward so a
// malformed value still gets stripped from the display text.
var (
	phaseTransitionRe = regexp.MustCompile(`\[PHASE_TRANSITION:\s*([a-zA-Z_]*)\s*\]`)
	comprehensionRe   = regexp.MustCompile(`\[COMPREHENSION_CHECK:\s*([a-zA-Z_]*)\s*\]`)
	hintGivenRe       = regexp.MustCompile(`\[HINT_GIVEN\]`)
	writingPromptRe   = regexp.MustCompile(`\[WRITING_PROMPT:\s*"((?:[^"\\]|\\.)*)"\s*\]`)
	expectsResponseRe = regexp.MustCompile(`\[EXPECTS_RESPONSE\]`)

	// collapses runs of whitespace left behind by stripped markers
	multiSpaceRe = regexp.MustCompile(`[ \t]{2,}`)
	multiBlankRe = regexp.MustCompile(`\n{3,}`)
)

// MarkerResult is the typed interpretation of one coach reply.
type MarkerResult struct {
	// DisplayText is the reply with all marker syntax removed.
	DisplayText string

	// TransitionRequest is the requested target phase, empty if none or
	// if the marker value was not a recognized phase.
	TransitionRequest Phase

	// ComprehensionPassed is true when a valid comprehension marker appeared.
	ComprehensionPassed bool

	// HintCount is the number of hint markers in the reply. Each one
	// counts toward the session's hint total.
	HintCount int

	// WritingPrompt is the embedded micro-exercise text, empty if none.
	WritingPrompt string

	// ExpectsResponse signals the UI to collect a short answer.
	ExpectsResponse bool
}

// InterpretMarkers parses and strips all control markers from raw coach text.
// Stripping is idempotent: interpreting already-clean text returns it unchanged.
func InterpretMarkers(raw string) MarkerResult {
	result := MarkerResult{}
	text := raw

	if m := phaseTransitionRe.FindStringSubmatch(text); m != nil {
		target := Phase(strings.ToLower(m[1]))
		// Only guided and assessment are valid transition targets. Anything
		// else is stripped but ignored.
		if target == PhaseGuided || target == PhaseAssessment {
			result.TransitionRequest = target
		}
	}
	text = phaseTransitionRe.ReplaceAllString(text, "")

	if m := comprehensionRe.FindStringSubmatch(text); m != nil {
		result.ComprehensionPassed = strings.EqualFold(m[1], "passed")
	}
	text = comprehensionRe.ReplaceAllString(text, "")

	result.HintCount = len(hintGivenRe.FindAllString(text, -1))
	text = hintGivenRe.ReplaceAllString(text, "")

	if m := writingPromptRe.FindStringSubmatch(text); m != nil {
		result.WritingPrompt = unescapePrompt(m[1])
	}
	text = writingPromptRe.ReplaceAllString(text, "")

	if expectsResponseRe.MatchString(text) {
		result.ExpectsResponse = true
	}
	text = expectsResponseRe.ReplaceAllString(text, "")

	result.DisplayText = tidyDisplayText(text)
	return result
}

// StripMarkers returns only the display text, discarding the interpretation.
func StripMarkers(raw string) string {
	return InterpretMarkers(raw).DisplayText
}

func unescapePrompt(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

// tidyDisplayText cleans up the whitespace holes stripped markers leave.
// Every step here is a fixpoint normalization, so running the stripper
// twice yields the same text as once.
func tidyDisplayText(s string) string {
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = multiBlankRe.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(s)
}
