package badge

import (
	"context"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// Repository defines the persistence interface for achievements.
type Repository interface {
	// Award persists an achievement. Awarding an already-earned badge is
	// a no-op, never an error.
	Award(ctx context.Context, a *Achievement) error

	// EarnedIDs returns the set of badge ids the child already holds.
	EarnedIDs(ctx context.Context, childID shared.ChildID) (map[string]bool, error)

	// ListByChild returns all achievements for a child, newest first.
	ListByChild(ctx context.Context, childID shared.ChildID) ([]*Achievement, error)
}

// FactsLoader fetches the precomputed fact batch for one child.
type FactsLoader interface {
	Load(ctx context.Context, childID shared.ChildID) (*Facts, error)
}
