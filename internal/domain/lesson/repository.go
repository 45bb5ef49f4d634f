package lesson

import (
	"context"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ProgressRepository defines the persistence interface for lesson progress.
type ProgressRepository interface {
	// Get returns the progress record for a child and lesson.
	// Returns shared.ErrNotFound if no record exists yet.
	Get(ctx context.Context, childID shared.ChildID, lessonID shared.LessonID) (*Progress, error)

	// Save creates or updates a progress record.
	Save(ctx context.Context, progress *Progress) error

	// ListByChild returns all progress records for a child.
	ListByChild(ctx context.Context, childID shared.ChildID) ([]*Progress, error)

	// CountCompleted returns the number of lessons the child has completed.
	CountCompleted(ctx context.Context, childID shared.ChildID) (int, error)
}
