package eventhandler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/assessment"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/curriculum"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON ASSESSMENT RECORDED: CURRICULUM ADAPTATION
// Feeds recent history into the adaptation engine. When a trigger fires,
// the rewritten plan and its revision snapshot land in one transaction.
// ═══════════════════════════════════════════════════════════════════════════

// adaptationHistoryLimit bounds the history query; the engine applies its
// own window on top.
const adaptationHistoryLimit = 10

// OnAssessmentAdaptationHandler adapts curricula from assessment performance.
type OnAssessmentAdaptationHandler struct {
	assessmentRepo assessment.Repository
	curriculumRepo curriculum.Repository
	engine         *curriculum.Engine
	publisher      shared.EventPublisher
	logger         *slog.Logger
}

// NewOnAssessmentAdaptationHandler creates the adaptation handler.
func NewOnAssessmentAdaptationHandler(
	assessmentRepo assessment.Repository,
	curriculumRepo curriculum.Repository,
	engine *curriculum.Engine,
	publisher shared.EventPublisher,
	logger *slog.Logger,
) *OnAssessmentAdaptationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnAssessmentAdaptationHandler{
		assessmentRepo: assessmentRepo,
		curriculumRepo: curriculumRepo,
		engine:         engine,
		publisher:      publisher,
		logger:         logger.With("handler", "on_assessment_adaptation"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnAssessmentAdaptationHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	rec, ok := event.(shared.AssessmentRecordedEvent)
	if !ok {
		h.logger.Warn("received unexpected event", "event_type", event.EventType())
		return nil
	}

	childID := shared.ChildID(rec.ChildID)
	cur, err := h.curriculumRepo.GetActive(ctx, childID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("failed to load curriculum", "child_id", rec.ChildID, "error", err)
		}
		return nil
	}

	records, err := h.assessmentRepo.RecentByChild(ctx, childID, adaptationHistoryLimit)
	if err != nil {
		h.logger.Error("failed to load assessment history", "child_id", rec.ChildID, "error", err)
		return nil
	}

	history := make([]curriculum.ScoreRecord, len(records))
	for i, r := range records {
		history[i] = curriculum.ScoreRecord{
			OverallScore: r.Assessment.OverallScore,
			WritingType:  r.WritingType,
			UnitNumber:   r.UnitNumber,
		}
	}

	result := h.engine.Adapt(cur, history, time.Now().UTC())
	if !result.Fired() {
		return nil
	}

	if err := h.curriculumRepo.SaveWithRevision(ctx, cur, result.Revision); err != nil {
		h.logger.Error("failed to save adapted curriculum",
			"child_id", rec.ChildID,
			"trigger", string(result.Trigger),
			"error", err,
		)
		return nil
	}

	h.logger.Info("curriculum adapted",
		"child_id", rec.ChildID,
		"trigger", string(result.Trigger),
		"weeks_changed", result.WeeksChanged,
	)

	if h.publisher != nil {
		_ = h.publisher.Publish(shared.NewCurriculumAdaptedEvent(
			rec.ChildID, cur.ID, string(result.Trigger), result.WeeksChanged))
	}
	return nil
}

// EventType returns the event type this handler subscribes to.
func (h *OnAssessmentAdaptationHandler) EventType() shared.EventType {
	return shared.EventAssessmentRecorded
}
