// Package coach defines the interface to the external writing coach model.
// The implementation lives in infrastructure; the domain only knows the
// contract and the result shapes.
package coach

import (
	"context"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/assessment"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// TurnContext carries what the coach needs to produce the next reply.
type TurnContext struct {
	ChildName string
	Age       int
	Tier      shared.Tier

	Lesson *lesson.Lesson
	Phase  string

	// History is the session conversation so far, display text only.
	History []Turn

	// ConnectionPoints are short coaching strategies from the learner
	// profile, injected verbatim into the prompt.
	ConnectionPoints []string

	// StudentMessage is the newest student turn.
	StudentMessage string
}

// Turn is one prior conversational exchange.
type Turn struct {
	Role    string
	Content string
}

// Evaluation is a parsed scoring result. Scores are on the 0-4 scale,
// keyed by criterion name.
type Evaluation struct {
	Scores       map[string]float64
	OverallScore float64
	Feedback     assessment.Feedback
}

// WeekPlan is one generated curriculum week.
type WeekPlan struct {
	WeekNumber int
	Theme      string
	LessonIDs  []shared.LessonID
}

// Coach is the external model behind tutoring and scoring. Calls may fail
// or return malformed output; callers own fallback policy.
type Coach interface {
	// Reply produces the coach's next free-text turn, raw markers included.
	Reply(ctx context.Context, tc TurnContext) (string, error)

	// EvaluateRubric scores a submission against a lesson rubric.
	EvaluateRubric(ctx context.Context, l *lesson.Lesson, text string) (*Evaluation, error)

	// EvaluateGeneral scores a submission without a rubric.
	EvaluateGeneral(ctx context.Context, l *lesson.Lesson, text string) (*Evaluation, error)

	// PlanWeeks asks for a curriculum revision restricted to the given
	// pending week numbers. Returns shared.ErrMalformedResponse when the
	// model's output cannot be parsed; callers fall back to the
	// deterministic planner.
	PlanWeeks(ctx context.Context, tier shared.Tier, pendingWeeks []int, reason, description string) ([]WeekPlan, error)
}
