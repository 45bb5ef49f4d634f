package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/assessment"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/learner"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON ASSESSMENT RECORDED: LEARNER PROFILE REBUILD
// Rebuilds the profile snapshot from scratch on every recorded assessment.
// The build is a pure aggregation over at most twenty records, so a full
// rebuild is cheaper than keeping the snapshot incrementally consistent.
// ═══════════════════════════════════════════════════════════════════════════

// profileHistoryLimit bounds the history query for profile builds.
const profileHistoryLimit = 20

// ReportCacheInvalidator drops a child's cached progress report.
type ReportCacheInvalidator interface {
	Invalidate(ctx context.Context, childID string) error
}

// OnAssessmentProfileHandler rebuilds learner profiles after assessments.
type OnAssessmentProfileHandler struct {
	assessmentRepo assessment.Repository
	learnerRepo    learner.Repository
	builder        *learner.Builder
	reportCache    ReportCacheInvalidator
	logger         *slog.Logger
}

// NewOnAssessmentProfileHandler creates the profile rebuild handler.
func NewOnAssessmentProfileHandler(
	assessmentRepo assessment.Repository,
	learnerRepo learner.Repository,
	reportCache ReportCacheInvalidator,
	logger *slog.Logger,
) *OnAssessmentProfileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnAssessmentProfileHandler{
		assessmentRepo: assessmentRepo,
		learnerRepo:    learnerRepo,
		builder:        learner.NewBuilder(),
		reportCache:    reportCache,
		logger:         logger.With("handler", "on_assessment_profile"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnAssessmentProfileHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	rec, ok := event.(shared.AssessmentRecordedEvent)
	if !ok {
		h.logger.Warn("received unexpected event", "event_type", event.EventType())
		return nil
	}

	childID := shared.ChildID(rec.ChildID)
	records, err := h.assessmentRepo.RecentByChild(ctx, childID, profileHistoryLimit)
	if err != nil {
		h.logger.Error("failed to load assessment history", "child_id", rec.ChildID, "error", err)
		return nil
	}

	history := make([]learner.CompletionRecord, len(records))
	for i, r := range records {
		history[i] = learner.CompletionRecord{
			OverallScore: r.Assessment.OverallScore,
			Scores:       r.Assessment.Scores,
			WritingType:  r.WritingType,
			HintsGiven:   r.HintsGiven,
			TimeSpentSec: r.TimeSpent,
			WordCount:    r.WordCount,
			CompletedAt:  r.Assessment.CreatedAt,
		}
	}

	profile := h.builder.Build(childID, history, time.Now().UTC())
	if err := h.learnerRepo.Upsert(ctx, profile); err != nil {
		h.logger.Error("failed to save profile", "child_id", rec.ChildID, "error", err)
		return nil
	}

	if h.reportCache != nil {
		if err := h.reportCache.Invalidate(ctx, rec.ChildID); err != nil {
			h.logger.Warn("failed to invalidate report cache", "child_id", rec.ChildID, "error", err)
		}
	}

	h.logger.Info("learner profile rebuilt",
		"child_id", rec.ChildID,
		"samples", profile.SampleCount,
	)
	return nil
}

// EventType returns the event type this handler subscribes to.
func (h *OnAssessmentProfileHandler) EventType() shared.EventType {
	return shared.EventAssessmentRecorded
}
