package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/child"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/coach"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/curriculum"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REVISE CURRICULUM COMMAND
// A parent-requested plan change. The PIN gates it; the coach proposes new
// pending weeks; the deterministic planner backstops a malformed proposal.
// ══════════════════════════════════════════════════════════════════════════════

// ErrInvalidPIN is returned when the parent PIN does not match.
var ErrInvalidPIN = errors.New("revise_curriculum: invalid parent PIN")

// ReviseCurriculumCommand requests a plan revision.
type ReviseCurriculumCommand struct {
	ChildID string

	// ParentPIN authorizes the change.
	ParentPIN string

	// Reason categorizes the change for the revision audit record.
	// Empty defaults to parent_request.
	Reason string

	// Description is the parent's free-text request, passed to the coach
	// and stored on the revision record.
	Description string
}

// RevisionReason resolves the reason, applying the default.
func (c ReviseCurriculumCommand) RevisionReason() curriculum.RevisionReason {
	if c.Reason == "" {
		return curriculum.ReasonParentRequest
	}
	return curriculum.RevisionReason(c.Reason)
}

// Validate validates the command.
func (c ReviseCurriculumCommand) Validate() error {
	if !shared.ChildID(c.ChildID).IsValid() {
		return errors.New("revise_curriculum: valid child_id is required")
	}
	if c.ParentPIN == "" {
		return errors.New("revise_curriculum: parent_pin is required")
	}
	if !c.RevisionReason().IsValid() {
		return errors.New("revise_curriculum: unknown reason")
	}
	return nil
}

// ReviseCurriculumResult is the outcome of a revision request.
type ReviseCurriculumResult struct {
	CurriculumID string
	RevisionID   string
	WeeksChanged int
	Weeks        []curriculum.Week

	// UsedFallback is true when the coach proposal was unusable and the
	// deterministic planner filled the weeks instead.
	UsedFallback bool
}

// ReviseCurriculumHandler handles ReviseCurriculumCommand.
type ReviseCurriculumHandler struct {
	childRepo      child.Repository
	curriculumRepo curriculum.Repository
	catalog        *lesson.Catalog
	coach          coach.Coach
	planner        *curriculum.FallbackPlanner
	publisher      shared.EventPublisher
}

// NewReviseCurriculumHandler creates a new ReviseCurriculumHandler.
func NewReviseCurriculumHandler(
	childRepo child.Repository,
	curriculumRepo curriculum.Repository,
	catalog *lesson.Catalog,
	coachClient coach.Coach,
	publisher shared.EventPublisher,
) *ReviseCurriculumHandler {
	return &ReviseCurriculumHandler{
		childRepo:      childRepo,
		curriculumRepo: curriculumRepo,
		catalog:        catalog,
		coach:          coachClient,
		planner:        curriculum.NewFallbackPlanner(catalog),
		publisher:      publisher,
	}
}

// Handle applies a parent-requested revision to the pending weeks only.
// Completed and in-progress weeks are history and never rewritten.
func (h *ReviseCurriculumHandler) Handle(ctx context.Context, cmd ReviseCurriculumCommand) (*ReviseCurriculumResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	childID := shared.ChildID(cmd.ChildID)
	ch, err := h.childRepo.GetByID(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("revise_curriculum: failed to get child: %w", err)
	}
	if !ch.VerifyPIN(cmd.ParentPIN) {
		return nil, ErrInvalidPIN
	}

	cur, err := h.curriculumRepo.GetActive(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("revise_curriculum: failed to get curriculum: %w", err)
	}

	pending := cur.PendingWeeks()
	if len(pending) == 0 {
		return nil, shared.NewDomainError("curriculum", "Revise", shared.ErrInvalidState,
			"no pending weeks left to revise")
	}
	pendingNumbers := make([]int, len(pending))
	for i, w := range pending {
		pendingNumbers[i] = w.WeekNumber
	}

	previous := cur.Snapshot()
	now := time.Now().UTC()

	reason := cmd.RevisionReason()

	usedFallback := false
	planned, err := h.coach.PlanWeeks(ctx, cur.Tier, pendingNumbers,
		string(reason), cmd.Description)
	if err != nil {
		if !errors.Is(err, shared.ErrMalformedResponse) {
			return nil, fmt.Errorf("revise_curriculum: plan generation failed: %w", err)
		}
		usedFallback = true
	}

	byNumber := make(map[int]coach.WeekPlan, len(planned))
	for _, wp := range planned {
		byNumber[wp.WeekNumber] = wp
	}

	changed := 0
	var fallbackWeeks []int
	for _, w := range pending {
		wp, ok := byNumber[w.WeekNumber]
		if !ok || len(wp.LessonIDs) == 0 {
			fallbackWeeks = append(fallbackWeeks, w.WeekNumber)
			continue
		}
		w.Theme = wp.Theme
		w.LessonIDs = wp.LessonIDs
		changed++
	}

	if len(fallbackWeeks) > 0 {
		usedFallback = true
		scheduled := cur.ScheduledLessonIDs()
		for _, fw := range h.planner.PlanWeeks(cur.Tier, fallbackWeeks, scheduled) {
			for _, w := range pending {
				if w.WeekNumber == fw.WeekNumber {
					w.Theme = fw.Theme
					w.LessonIDs = fw.LessonIDs
					changed++
				}
			}
		}
	}

	cur.UpdatedAt = now
	rev := curriculum.NewRevision(cur, reason, cmd.Description,
		previous, cur.Snapshot(), now)
	if err := h.curriculumRepo.SaveWithRevision(ctx, cur, rev); err != nil {
		return nil, fmt.Errorf("revise_curriculum: failed to save revision: %w", err)
	}

	if h.publisher != nil {
		event := shared.NewCurriculumAdaptedEvent(childID.String(), cur.ID,
			string(reason), changed)
		event.Type = shared.EventCurriculumRevised
		_ = h.publisher.Publish(event)
	}

	return &ReviseCurriculumResult{
		CurriculumID: cur.ID,
		RevisionID:   rev.ID,
		WeeksChanged: changed,
		Weeks:        cur.Weeks,
		UsedFallback: usedFallback,
	}, nil
}
