package skill

import (
	"context"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// Repository defines the persistence interface for skill progress.
type Repository interface {
	// Get returns the progress record for one skill.
	// Returns shared.ErrNotFound when the skill has never been assessed.
	Get(ctx context.Context, childID shared.ChildID, category shared.WritingType, name string) (*Progress, error)

	// Save creates or updates a skill progress record.
	Save(ctx context.Context, p *Progress) error

	// ListByChild returns all skill progress records for a child.
	ListByChild(ctx context.Context, childID shared.ChildID) ([]*Progress, error)
}
