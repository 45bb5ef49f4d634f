package curriculum

import (
	"fmt"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// lessonsPerWeek is the default pacing for generated plans.
const lessonsPerWeek = 2

// FallbackPlanner slices the lesson catalog sequentially into weeks. It is
// the deterministic safety net behind model-generated plans: whatever the
// model returns, the child always ends up with a valid curriculum.
type FallbackPlanner struct {
	catalog *lesson.Catalog
}

// NewFallbackPlanner creates the planner.
func NewFallbackPlanner(catalog *lesson.Catalog) *FallbackPlanner {
	return &FallbackPlanner{catalog: catalog}
}

// PlanWeeks fills the given week numbers with tier-appropriate lessons in
// catalog order, skipping anything already scheduled elsewhere in the plan.
func (p *FallbackPlanner) PlanWeeks(tier shared.Tier, weekNumbers []int,
	alreadyScheduled map[shared.LessonID]bool) []Week {
	pool := p.catalog.ForTier(tier)

	var available []*lesson.Lesson
	for _, l := range pool {
		if !alreadyScheduled[l.ID] {
			available = append(available, l)
		}
	}

	weeks := make([]Week, 0, len(weekNumbers))
	cursor := 0
	for _, num := range weekNumbers {
		var ids []shared.LessonID
		var theme string
		for len(ids) < lessonsPerWeek && cursor < len(available) {
			l := available[cursor]
			cursor++
			ids = append(ids, l.ID)
			if theme == "" {
				theme = fmt.Sprintf("%s writing", l.WritingType)
			}
		}
		if len(ids) == 0 {
			// Catalog exhausted: recycle from the start of the pool so a
			// long plan still gets filled.
			for _, l := range pool {
				ids = append(ids, l.ID)
				if len(ids) == lessonsPerWeek {
					break
				}
			}
			theme = "Review and practice"
		}
		weeks = append(weeks, Week{
			WeekNumber: num,
			Theme:      theme,
			Status:     WeekPending,
			LessonIDs:  ids,
		})
	}
	return weeks
}
