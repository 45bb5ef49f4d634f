package coach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

const goodEvaluation = `{
	"scores": {"organization": 3.0, "ideas": 3.5, "word_choice": 2.5, "conventions": 2.0},
	"overall_score": 2.9,
	"praise": "Great story structure!",
	"improvements": ["Check your punctuation."],
	"encouragement": "Keep it up!"
}`

var rubricCriteria = []string{"organization", "ideas", "word_choice", "conventions"}

func TestParseEvaluation_CleanJSON(t *testing.T) {
	eval, err := parseEvaluation(goodEvaluation, rubricCriteria)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, eval.Scores["organization"], 1e-9)
	assert.InDelta(t, 2.9, eval.OverallScore, 1e-9)
	assert.Equal(t, "Great story structure!", eval.Feedback.Praise)
	assert.Equal(t, []string{"Check your punctuation."}, eval.Feedback.Improvements)
}

func TestParseEvaluation_CodeFencedJSON(t *testing.T) {
	raw := "Here is my evaluation:\n```json\n" + goodEvaluation + "\n```\nHope that helps!"
	eval, err := parseEvaluation(raw, rubricCriteria)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, eval.Scores["ideas"], 1e-9)
}

func TestParseEvaluation_SurroundingChatter(t *testing.T) {
	raw := "Sure! " + goodEvaluation + " Let me know if you need anything else."
	_, err := parseEvaluation(raw, rubricCriteria)
	require.NoError(t, err)
}

func TestParseEvaluation_ClampsOutOfRangeScores(t *testing.T) {
	raw := `{"scores": {"organization": 7.0, "ideas": -1.0, "word_choice": 2.0, "conventions": 2.0},
		"overall_score": 9.9, "praise": "p", "improvements": [], "encouragement": "e"}`
	eval, err := parseEvaluation(raw, rubricCriteria)
	require.NoError(t, err)

	assert.InDelta(t, 4.0, eval.Scores["organization"], 1e-9)
	assert.InDelta(t, 0.0, eval.Scores["ideas"], 1e-9)
	assert.InDelta(t, 4.0, eval.OverallScore, 1e-9)
}

func TestParseEvaluation_MissingCriterionFailsClosed(t *testing.T) {
	raw := `{"scores": {"organization": 3.0}, "overall_score": 3.0}`
	_, err := parseEvaluation(raw, rubricCriteria)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrMalformedResponse)
}

func TestParseEvaluation_UnknownCriteriaDropped(t *testing.T) {
	raw := `{"scores": {"organization": 3.0, "ideas": 3.0, "word_choice": 3.0, "conventions": 3.0,
		"creativity": 4.0}, "overall_score": 3.0}`
	eval, err := parseEvaluation(raw, rubricCriteria)
	require.NoError(t, err)
	_, hasExtra := eval.Scores["creativity"]
	assert.False(t, hasExtra)
}

func TestParseEvaluation_GarbageFailsClosed(t *testing.T) {
	for _, raw := range []string{"", "I could not score this.", "{not json", `{"scores": {}}`} {
		_, err := parseEvaluation(raw, rubricCriteria)
		require.Error(t, err, "input %q must fail", raw)
		assert.ErrorIs(t, err, shared.ErrMalformedResponse)
	}
}

func TestParseWeekPlans_ValidPlan(t *testing.T) {
	raw := "```json\n" + `[
		{"weekNumber": 3, "theme": "Adventure stories", "lessonIds": ["narrative-3", "narrative-4"]},
		{"weekNumber": 4, "theme": "Strong opinions", "lessonIds": ["opinion-3"]}
	]` + "\n```"

	allowed := map[int]bool{3: true, 4: true}
	known := func(shared.LessonID) bool { return true }

	plans, err := parseWeekPlans(raw, allowed, known)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, 3, plans[0].WeekNumber)
	assert.Equal(t, "Adventure stories", plans[0].Theme)
	assert.Len(t, plans[0].LessonIDs, 2)
}

func TestParseWeekPlans_UnknownLessonIDsDropped(t *testing.T) {
	raw := `[{"weekNumber": 3, "theme": "x", "lessonIds": ["narrative-3", "made-up-99", "opinion-3"]}]`
	allowed := map[int]bool{3: true}
	known := func(id shared.LessonID) bool { return id != "made-up-99" }

	plans, err := parseWeekPlans(raw, allowed, known)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Len(t, plans[0].LessonIDs, 2)
}

func TestParseWeekPlans_NonPendingWeeksDiscarded(t *testing.T) {
	raw := `[
		{"weekNumber": 1, "theme": "done already", "lessonIds": ["narrative-1"]},
		{"weekNumber": 3, "theme": "ok", "lessonIds": ["narrative-3"]}
	]`
	allowed := map[int]bool{3: true}
	known := func(shared.LessonID) bool { return true }

	plans, err := parseWeekPlans(raw, allowed, known)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, 3, plans[0].WeekNumber)
}

func TestParseWeekPlans_NothingUsableFailsClosed(t *testing.T) {
	raw := `[{"weekNumber": 1, "theme": "x", "lessonIds": ["junk"]}]`
	allowed := map[int]bool{3: true}
	known := func(shared.LessonID) bool { return false }

	_, err := parseWeekPlans(raw, allowed, known)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrMalformedResponse)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`{"a":1}`, `{"a":1}`, true},
		{"```json\n[1,2]\n```", "[1,2]", true},
		{"prefix {\"a\":1} suffix", `{"a":1}`, true},
		{"no json here", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := extractJSON(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if ok {
			assert.Equal(t, tt.want, got)
		}
	}
}
