// Package badge contains the achievement model and the badge condition
// engine. Badges are evaluated in batch over precomputed facts; every
// predicate is pure and isolated so one bad rule cannot sink the rest.
package badge

import (
	"time"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// Achievement records that a child earned a badge. The (child, badge) pair
// is unique; re-evaluating never duplicates it.
type Achievement struct {
	ChildID  shared.ChildID
	BadgeID  string
	EarnedAt time.Time
}

// Definition is the static, child-facing description of a badge.
type Definition struct {
	ID          string
	Title       string
	Description string
}

// NewAchievement records a freshly earned badge.
func NewAchievement(childID shared.ChildID, badgeID string, at time.Time) *Achievement {
	return &Achievement{ChildID: childID, BadgeID: badgeID, EarnedAt: at}
}
