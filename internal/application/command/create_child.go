package command

import (
	"context"
	"fmt"
	"time"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/child"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/curriculum"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE CHILD COMMAND
// Onboarding: create the profile and seed the first curriculum.
// ══════════════════════════════════════════════════════════════════════════════

// initialPlanWeeks is how many weeks the onboarding curriculum covers.
const initialPlanWeeks = 4

// CreateChildCommand registers a new child.
type CreateChildCommand struct {
	Name      string
	Age       int
	Interests []string

	// ParentPIN is the 4-6 digit PIN guarding parent actions.
	ParentPIN string

	// WeeklyLessonGoal overrides the default when positive.
	WeeklyLessonGoal int
}

// CreateChildResult is the outcome of onboarding.
type CreateChildResult struct {
	ChildID      string
	Tier         int
	CurriculumID string
	Weeks        []curriculum.Week
}

// CreateChildHandler handles CreateChildCommand.
type CreateChildHandler struct {
	childRepo      child.Repository
	curriculumRepo curriculum.Repository
	planner        *curriculum.FallbackPlanner
	catalog        *lesson.Catalog
}

// NewCreateChildHandler creates a new CreateChildHandler.
func NewCreateChildHandler(
	childRepo child.Repository,
	curriculumRepo curriculum.Repository,
	catalog *lesson.Catalog,
) *CreateChildHandler {
	return &CreateChildHandler{
		childRepo:      childRepo,
		curriculumRepo: curriculumRepo,
		planner:        curriculum.NewFallbackPlanner(catalog),
		catalog:        catalog,
	}
}

// Handle creates the profile and a deterministic starter curriculum. The
// plan personalizes later through adaptation and parent revisions.
func (h *CreateChildHandler) Handle(ctx context.Context, cmd CreateChildCommand) (*CreateChildResult, error) {
	ch, err := child.NewChild(cmd.Name, cmd.Age, cmd.Interests, cmd.ParentPIN)
	if err != nil {
		return nil, err
	}
	if cmd.WeeklyLessonGoal > 0 {
		ch.WeeklyLessonGoal = cmd.WeeklyLessonGoal
	}

	if err := h.childRepo.Create(ctx, ch); err != nil {
		return nil, fmt.Errorf("create_child: failed to create child: %w", err)
	}

	weekNumbers := make([]int, initialPlanWeeks)
	for i := range weekNumbers {
		weekNumbers[i] = i + 1
	}
	weeks := h.planner.PlanWeeks(ch.Tier, weekNumbers, nil)

	now := time.Now().UTC()
	cur := curriculum.NewCurriculum(ch.ID, ch.Tier, weeks, now)
	if err := h.curriculumRepo.Create(ctx, cur); err != nil {
		return nil, fmt.Errorf("create_child: failed to create curriculum: %w", err)
	}

	return &CreateChildResult{
		ChildID:      ch.ID.String(),
		Tier:         int(ch.Tier),
		CurriculumID: cur.ID,
		Weeks:        cur.Weeks,
	}, nil
}
