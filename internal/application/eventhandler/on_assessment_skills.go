// Package eventhandler contains the best-effort subscribers behind the
// assessment pipeline. Every handler here is fire-and-forget: a failure is
// logged and swallowed, never surfaced to the child mid-lesson.
package eventhandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/skill"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON ASSESSMENT RECORDED: SKILL AGGREGATION
// Folds the overall score into every skill the lesson develops using the
// 0.7/0.3 rolling average.
// ═══════════════════════════════════════════════════════════════════════════

// OnAssessmentSkillsHandler updates skill progress from recorded assessments.
type OnAssessmentSkillsHandler struct {
	skillRepo skill.Repository
	logger    *slog.Logger
}

// NewOnAssessmentSkillsHandler creates the skill aggregation handler.
func NewOnAssessmentSkillsHandler(skillRepo skill.Repository, logger *slog.Logger) *OnAssessmentSkillsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnAssessmentSkillsHandler{
		skillRepo: skillRepo,
		logger:    logger.With("handler", "on_assessment_skills"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnAssessmentSkillsHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	rec, ok := event.(shared.AssessmentRecordedEvent)
	if !ok {
		h.logger.Warn("received unexpected event", "event_type", event.EventType())
		return nil
	}

	childID := shared.ChildID(rec.ChildID)
	wt := shared.WritingType(rec.WritingType)
	now := time.Now().UTC()

	refs := lesson.SkillsFor(wt, rec.UnitNumber)
	for _, ref := range refs {
		if err := h.applyOne(ctx, childID, ref, rec.OverallScore, now); err != nil {
			h.logger.Error("failed to update skill",
				"child_id", rec.ChildID,
				"skill", ref.Name,
				"error", err,
			)
			continue
		}
	}

	h.logger.Info("skill progress updated",
		"child_id", rec.ChildID,
		"lesson_id", rec.LessonID,
		"skills", len(refs),
	)
	return nil
}

func (h *OnAssessmentSkillsHandler) applyOne(ctx context.Context, childID shared.ChildID,
	ref lesson.SkillRef, overall float64, now time.Time) error {
	p, err := h.skillRepo.Get(ctx, childID, ref.Category, ref.Name)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("get skill: %w", err)
		}
		p = skill.NewProgress(childID, ref.Category, ref.Name, overall, now)
	} else {
		p.ApplyScore(overall, now)
	}
	if err := h.skillRepo.Save(ctx, p); err != nil {
		return fmt.Errorf("save skill: %w", err)
	}
	return nil
}

// EventType returns the event type this handler subscribes to.
func (h *OnAssessmentSkillsHandler) EventType() shared.EventType {
	return shared.EventAssessmentRecorded
}
