package learner

import (
	"context"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// Repository defines the persistence interface for profile snapshots.
type Repository interface {
	// Get returns the latest profile snapshot for a child.
	// Returns shared.ErrNotFound when no snapshot exists yet.
	Get(ctx context.Context, childID shared.ChildID) (*Profile, error)

	// Upsert replaces the child's profile snapshot.
	Upsert(ctx context.Context, p *Profile) error
}
