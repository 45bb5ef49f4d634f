package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/badge"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON ASSESSMENT RECORDED: BADGE EVALUATION
// Re-runs the condition engine over the fresh fact batch. The submission
// path already evaluates synchronously for the in-response celebration;
// this handler is the safety net that catches anything that path missed,
// e.g. a streak that matured while no submission was in flight.
// ═══════════════════════════════════════════════════════════════════════════

// OnAssessmentBadgesHandler awards badges after recorded assessments.
type OnAssessmentBadgesHandler struct {
	badgeRepo   badge.Repository
	factsLoader badge.FactsLoader
	publisher   shared.EventPublisher
	logger      *slog.Logger
}

// NewOnAssessmentBadgesHandler creates the badge evaluation handler.
func NewOnAssessmentBadgesHandler(
	badgeRepo badge.Repository,
	factsLoader badge.FactsLoader,
	publisher shared.EventPublisher,
	logger *slog.Logger,
) *OnAssessmentBadgesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnAssessmentBadgesHandler{
		badgeRepo:   badgeRepo,
		factsLoader: factsLoader,
		publisher:   publisher,
		logger:      logger.With("handler", "on_assessment_badges"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnAssessmentBadgesHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	rec, ok := event.(shared.AssessmentRecordedEvent)
	if !ok {
		h.logger.Warn("received unexpected event", "event_type", event.EventType())
		return nil
	}

	childID := shared.ChildID(rec.ChildID)
	facts, err := h.factsLoader.Load(ctx, childID)
	if err != nil {
		h.logger.Error("failed to load badge facts", "child_id", rec.ChildID, "error", err)
		return nil
	}
	earned, err := h.badgeRepo.EarnedIDs(ctx, childID)
	if err != nil {
		h.logger.Error("failed to load earned badges", "child_id", rec.ChildID, "error", err)
		return nil
	}

	onPanic := func(badgeID string, v interface{}) {
		h.logger.Error("badge predicate panicked", "badge_id", badgeID, "panic", v)
	}

	now := time.Now().UTC()
	for _, id := range badge.Evaluate(facts, earned, onPanic) {
		if err := h.badgeRepo.Award(ctx, &badge.Achievement{
			ChildID: childID, BadgeID: id, EarnedAt: now,
		}); err != nil {
			h.logger.Error("failed to award badge", "badge_id", id, "error", err)
			continue
		}
		h.logger.Info("badge unlocked", "child_id", rec.ChildID, "badge_id", id)
		if h.publisher != nil {
			_ = h.publisher.Publish(shared.NewBadgeUnlockedEvent(rec.ChildID, id))
		}
	}
	return nil
}

// EventType returns the event type this handler subscribes to.
func (h *OnAssessmentBadgesHandler) EventType() shared.EventType {
	return shared.EventAssessmentRecorded
}
