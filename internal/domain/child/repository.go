package child

import (
	"context"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// Repository defines the persistence interface for child profiles.
type Repository interface {
	// GetByID returns a child profile.
	// Returns shared.ErrNotFound if the child does not exist.
	GetByID(ctx context.Context, id shared.ChildID) (*Child, error)

	// Create persists a new child profile.
	Create(ctx context.Context, c *Child) error

	// Save persists profile changes.
	Save(ctx context.Context, c *Child) error
}
