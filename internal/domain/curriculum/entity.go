// Package curriculum contains the child's lesson plan: ordered weeks of
// lessons, the immutable revision audit trail, and the adaptation engine
// that rewrites pending weeks from assessment performance.
package curriculum

import (
	"time"

	"github.com/google/uuid"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// WEEK
// ══════════════════════════════════════════════════════════════════════════════

// WeekStatus is the lifecycle state of one curriculum week.
type WeekStatus string

const (
	// WeekPending - not started. The only status adaptation may touch.
	WeekPending WeekStatus = "pending"
	// WeekInProgress - the child is working through this week.
	WeekInProgress WeekStatus = "in_progress"
	// WeekCompleted - every lesson in the week is finished.
	WeekCompleted WeekStatus = "completed"
)

// IsValid checks that the status is one of the known values.
func (s WeekStatus) IsValid() bool {
	switch s {
	case WeekPending, WeekInProgress, WeekCompleted:
		return true
	default:
		return false
	}
}

// Week is one planned week of lessons. LessonIDs is ordered.
type Week struct {
	WeekNumber int               `json:"week_number"`
	Theme      string            `json:"theme"`
	Status     WeekStatus        `json:"status"`
	LessonIDs  []shared.LessonID `json:"lesson_ids"`
}

// clonePlan deep-copies a week list for snapshots.
func clonePlan(weeks []Week) []Week {
	out := make([]Week, len(weeks))
	for i, w := range weeks {
		ids := make([]shared.LessonID, len(w.LessonIDs))
		copy(ids, w.LessonIDs)
		out[i] = Week{WeekNumber: w.WeekNumber, Theme: w.Theme, Status: w.Status, LessonIDs: ids}
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// CURRICULUM
// ══════════════════════════════════════════════════════════════════════════════

// Curriculum is a child's active lesson plan.
type Curriculum struct {
	ID      string
	ChildID shared.ChildID
	Tier    shared.Tier

	// Weeks is ordered by WeekNumber.
	Weeks []Week

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCurriculum creates an active plan from generated weeks.
func NewCurriculum(childID shared.ChildID, tier shared.Tier, weeks []Week, at time.Time) *Curriculum {
	return &Curriculum{
		ID:        uuid.NewString(),
		ChildID:   childID,
		Tier:      tier,
		Weeks:     weeks,
		Active:    true,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// PendingWeeks returns pointers to the weeks adaptation may mutate, in
// week order.
func (c *Curriculum) PendingWeeks() []*Week {
	var out []*Week
	for i := range c.Weeks {
		if c.Weeks[i].Status == WeekPending {
			out = append(out, &c.Weeks[i])
		}
	}
	return out
}

// Snapshot returns a deep copy of the current plan for revision records.
func (c *Curriculum) Snapshot() []Week {
	return clonePlan(c.Weeks)
}

// ScheduledLessonIDs returns the set of every lesson id anywhere in the plan.
func (c *Curriculum) ScheduledLessonIDs() map[shared.LessonID]bool {
	scheduled := make(map[shared.LessonID]bool)
	for _, w := range c.Weeks {
		for _, id := range w.LessonIDs {
			scheduled[id] = true
		}
	}
	return scheduled
}

// ══════════════════════════════════════════════════════════════════════════════
// REVISION
// ══════════════════════════════════════════════════════════════════════════════

// RevisionReason says why a plan changed.
type RevisionReason string

const (
	// ReasonParentRequest - a parent asked for the change.
	ReasonParentRequest RevisionReason = "parent_request"
	// ReasonAdaptStruggling - automatic: recent scores all low.
	ReasonAdaptStruggling RevisionReason = "adapt_struggling"
	// ReasonAdaptExcelling - automatic: recent scores all high.
	ReasonAdaptExcelling RevisionReason = "adapt_excelling"
	// ReasonAdaptTypeWeakness - automatic: one writing type lagging.
	ReasonAdaptTypeWeakness RevisionReason = "adapt_type_weakness"
)

// IsValid checks that the reason is one of the known values.
func (r RevisionReason) IsValid() bool {
	switch r {
	case ReasonParentRequest, ReasonAdaptStruggling, ReasonAdaptExcelling, ReasonAdaptTypeWeakness:
		return true
	default:
		return false
	}
}

// Revision is an immutable audit record written before every plan
// mutation, automatic or parent-requested alike.
type Revision struct {
	ID           string
	CurriculumID string
	ChildID      shared.ChildID

	Reason      RevisionReason
	Description string

	// PreviousPlan and NewPlan are full-plan snapshots.
	PreviousPlan []Week
	NewPlan      []Week

	CreatedAt time.Time
}

// NewRevision snapshots a plan change.
func NewRevision(c *Curriculum, reason RevisionReason, description string,
	previous, next []Week, at time.Time) *Revision {
	return &Revision{
		ID:           uuid.NewString(),
		CurriculumID: c.ID,
		ChildID:      c.ChildID,
		Reason:       reason,
		Description:  description,
		PreviousPlan: clonePlan(previous),
		NewPlan:      clonePlan(next),
		CreatedAt:    at,
	}
}
