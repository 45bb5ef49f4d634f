package curriculum

import (
	"context"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// Repository defines the persistence interface for curricula and their
// revision audit trail.
type Repository interface {
	// GetActive returns the child's active curriculum with all weeks.
	// Returns shared.ErrNotFound when the child has no active plan.
	GetActive(ctx context.Context, childID shared.ChildID) (*Curriculum, error)

	// Create persists a new curriculum and deactivates any prior one.
	Create(ctx context.Context, c *Curriculum) error

	// SaveWithRevision persists updated weeks and the revision snapshot
	// in one transaction. The plan is never updated without its audit
	// record.
	SaveWithRevision(ctx context.Context, c *Curriculum, rev *Revision) error

	// ListRevisions returns a curriculum's revisions, newest first.
	ListRevisions(ctx context.Context, curriculumID string) ([]*Revision, error)
}
