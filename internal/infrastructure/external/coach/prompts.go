package coach

import (
	"fmt"
	"strings"

	domaincoach "github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/coach"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROMPTS
// ══════════════════════════════════════════════════════════════════════════════

const markerInstructions = `You may embed these control markers anywhere in your reply; they are stripped before the child sees the text:
[PHASE_TRANSITION: guided] or [PHASE_TRANSITION: assessment] - move the lesson to the next phase when the child is ready.
[COMPREHENSION_CHECK: passed] - the child has shown they understand the concept.
[HINT_GIVEN] - include once each time you give a concrete hint.
[WRITING_PROMPT: "..."] - a short practice exercise to display instead of free chat.
[EXPECTS_RESPONSE] - the UI should collect a short answer from the child.
Never mention the markers or the lesson phases to the child.`

func tierVoice(tier shared.Tier) string {
	switch tier {
	case shared.Tier1:
		return "Use very short sentences and simple words a 6-8 year old knows. Be playful and warm."
	case shared.Tier2:
		return "Use clear, friendly language for a 9-11 year old. Encourage independence."
	default:
		return "Talk to a 12-14 year old as a capable young writer. Be encouraging but not babyish."
	}
}

// buildTurnPrompt renders the full tutoring prompt for one turn.
func buildTurnPrompt(tc domaincoach.TurnContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a writing coach for %s, age %d.\n", tc.ChildName, tc.Age)
	b.WriteString(tierVoice(tc.Tier))
	b.WriteString("\n\n")

	if tc.Lesson != nil {
		fmt.Fprintf(&b, "Lesson: %s (%s writing).\nObjective: %s\n",
			tc.Lesson.Title, tc.Lesson.WritingType, tc.Lesson.Objective)
	}
	fmt.Fprintf(&b, "Current lesson phase: %s.\n\n", tc.Phase)

	if len(tc.ConnectionPoints) > 0 {
		b.WriteString("Coaching notes for this child:\n")
		for _, p := range tc.ConnectionPoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
		b.WriteString("\n")
	}

	b.WriteString(markerInstructions)
	b.WriteString("\n\nConversation so far:\n")
	for _, turn := range tc.History {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
	}
	fmt.Fprintf(&b, "student: %s\ncoach:", tc.StudentMessage)

	return b.String()
}

// buildRubricPrompt asks for strict-JSON rubric scoring.
func buildRubricPrompt(l *lesson.Lesson, text string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Score this %s writing by a child against the rubric below. ", l.WritingType)
	b.WriteString("Scores are on a 0-4 scale. Be encouraging in feedback but honest in scores.\n\nRubric:\n")
	for _, c := range l.Rubric.Criteria {
		fmt.Fprintf(&b, "- %s (weight %.1f): %s\n", c.Name, c.Weight, c.Description)
	}

	b.WriteString("\nRespond with ONLY a JSON object, no other text:\n")
	b.WriteString(`{"scores": {`)
	names := l.Rubric.CriterionNames()
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: 0.0", name)
	}
	b.WriteString(`}, "overall_score": 0.0, "praise": "...", "improvements": ["..."], "encouragement": "..."}`)

	fmt.Fprintf(&b, "\n\nThe child's writing:\n%s\n", text)
	return b.String()
}

// generalCriteria are scored when a lesson has no rubric.
var generalCriteria = []string{"ideas", "organization", "voice", "conventions"}

// buildGeneralPrompt asks for strict-JSON general scoring.
func buildGeneralPrompt(l *lesson.Lesson, text string) string {
	var b strings.Builder

	b.WriteString("Score this piece of writing by a child on a 0-4 scale for each of: ")
	b.WriteString(strings.Join(generalCriteria, ", "))
	b.WriteString(".\nBe encouraging in feedback but honest in scores.\n")
	if l != nil {
		fmt.Fprintf(&b, "The writing was for the lesson %q (%s).\n", l.Title, l.Objective)
	}

	b.WriteString("\nRespond with ONLY a JSON object, no other text:\n")
	b.WriteString(`{"scores": {"ideas": 0.0, "organization": 0.0, "voice": 0.0, "conventions": 0.0}, ` +
		`"overall_score": 0.0, "praise": "...", "improvements": ["..."], "encouragement": "..."}`)

	fmt.Fprintf(&b, "\n\nThe child's writing:\n%s\n", text)
	return b.String()
}

// buildPlanPrompt asks for a strict-JSON curriculum revision.
func buildPlanPrompt(catalog *lesson.Catalog, tier shared.Tier, pendingWeeks []int, reason, description string) string {
	var b strings.Builder

	b.WriteString("Revise a child's writing curriculum. ")
	fmt.Fprintf(&b, "Reason: %s. Details: %s\n\n", reason, description)

	fmt.Fprintf(&b, "You may only plan these week numbers: %v.\n", pendingWeeks)
	b.WriteString("Choose lesson ids only from this catalog:\n")
	for _, l := range catalog.ForTier(tier) {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", l.ID, l.Title, l.WritingType)
	}

	b.WriteString("\nRespond with ONLY a JSON array, no other text:\n")
	b.WriteString(`[{"weekNumber": 1, "theme": "...", "lessonIds": ["narrative-1"]}]`)
	return b.String()
}
