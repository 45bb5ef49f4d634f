package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpretMarkers_PhaseTransition(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantText   string
		wantTarget Phase
	}{
		{
			name:       "guided transition",
			input:      "Great job! [PHASE_TRANSITION: guided]",
			wantText:   "Great job!",
			wantTarget: PhaseGuided,
		},
		{
			name:       "assessment transition",
			input:      "[PHASE_TRANSITION: assessment] Time to write your story.",
			wantText:   "Time to write your story.",
			wantTarget: PhaseAssessment,
		},
		{
			name:       "unknown target stripped but ignored",
			input:      "Hmm. [PHASE_TRANSITION: banana]",
			wantText:   "Hmm.",
			wantTarget: "",
		},
		{
			name:       "feedback is not a requestable target",
			input:      "Done! [PHASE_TRANSITION: feedback]",
			wantText:   "Done!",
			wantTarget: "",
		},
		{
			name:       "empty value treated as absent",
			input:      "Okay [PHASE_TRANSITION: ]",
			wantText:   "Okay",
			wantTarget: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InterpretMarkers(tt.input)
			assert.Equal(t, tt.wantText, got.DisplayText)
			assert.Equal(t, tt.wantTarget, got.TransitionRequest)
		})
	}
}

func TestInterpretMarkers_Comprehension(t *testing.T) {
	got := InterpretMarkers("Exactly right! [COMPREHENSION_CHECK: passed] Let's practice.")
	assert.True(t, got.ComprehensionPassed)
	assert.Equal(t, "Exactly right! Let's practice.", got.DisplayText)

	// Any value other than "passed" is stripped but does not satisfy the gate.
	got = InterpretMarkers("Not quite. [COMPREHENSION_CHECK: failed]")
	assert.False(t, got.ComprehensionPassed)
	assert.Equal(t, "Not quite.", got.DisplayText)
}

func TestInterpretMarkers_HintAndExpectsResponse(t *testing.T) {
	got := InterpretMarkers("Try starting with 'One day...' [HINT_GIVEN] [EXPECTS_RESPONSE]")
	assert.Equal(t, 1, got.HintCount)
	assert.True(t, got.ExpectsResponse)
	assert.Equal(t, "Try starting with 'One day...'", got.DisplayText)
}

func TestInterpretMarkers_EveryHintMarkerCounts(t *testing.T) {
	got := InterpretMarkers("First idea. [HINT_GIVEN] And another. [HINT_GIVEN]")
	assert.Equal(t, 2, got.HintCount)
	assert.Equal(t, "First idea. And another.", got.DisplayText)
}

func TestInterpretMarkers_WritingPrompt(t *testing.T) {
	got := InterpretMarkers(`Here we go. [WRITING_PROMPT: "Describe your favorite place."]`)
	assert.Equal(t, "Describe your favorite place.", got.WritingPrompt)
	assert.Equal(t, "Here we go.", got.DisplayText)

	// Escaped quotes inside the prompt survive extraction.
	got = InterpretMarkers(`[WRITING_PROMPT: "Write a \"thank you\" note."] Ready?`)
	assert.Equal(t, `Write a "thank you" note.`, got.WritingPrompt)
	assert.Equal(t, "Ready?", got.DisplayText)
}

func TestInterpretMarkers_AllFamiliesTogether(t *testing.T) {
	raw := `Wonderful! [COMPREHENSION_CHECK: passed] [PHASE_TRANSITION: guided] ` +
		`[HINT_GIVEN] Now try this. [WRITING_PROMPT: "Write one sentence about rain."] [EXPECTS_RESPONSE]`
	got := InterpretMarkers(raw)
	assert.True(t, got.ComprehensionPassed)
	assert.Equal(t, PhaseGuided, got.TransitionRequest)
	assert.Equal(t, 1, got.HintCount)
	assert.Equal(t, "Write one sentence about rain.", got.WritingPrompt)
	assert.True(t, got.ExpectsResponse)
	assert.Equal(t, "Wonderful! Now try this.", got.DisplayText)
}

func TestStripMarkers_Idempotent(t *testing.T) {
	inputs := []string{
		"Great job! [PHASE_TRANSITION: guided]",
		"plain text",
		"multi\n\n\nline [HINT_GIVEN] text",
		`[WRITING_PROMPT: "x"] [EXPECTS_RESPONSE] [COMPREHENSION_CHECK: passed]`,
	}
	for _, in := range inputs {
		once := StripMarkers(in)
		twice := StripMarkers(once)
		assert.Equal(t, once, twice, "stripping must be idempotent for %q", in)
		assert.NotContains(t, once, "[PHASE_TRANSITION")
		assert.NotContains(t, once, "[COMPREHENSION_CHECK")
		assert.NotContains(t, once, "[HINT_GIVEN]")
		assert.NotContains(t, once, "[WRITING_PROMPT")
		assert.NotContains(t, once, "[EXPECTS_RESPONSE]")
	}
}

func TestStripMarkers_PlainTextIdentity(t *testing.T) {
	assert.Equal(t, "plain text", StripMarkers("plain text"))
}

func TestStripMarkers_AuthorBracketsLeftAlone(t *testing.T) {
	// Ordinary square brackets that are not marker syntax stay put.
	in := "Lists use brackets [like this] in some styles."
	assert.Equal(t, in, StripMarkers(in))
}
