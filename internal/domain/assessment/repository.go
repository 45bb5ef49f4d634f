package assessment

import (
	"context"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// AssessmentRecord is the denormalized row shape the aggregators read:
// an assessment joined with the writing type and unit of its lesson and
// the hints used in its session.
type AssessmentRecord struct {
	Assessment  *Assessment
	WritingType shared.WritingType
	UnitNumber  int
	HintsGiven  int
	WordCount   int
	TimeSpent   int
}

// Repository defines the persistence interface for assessments and
// submissions.
type Repository interface {
	// SavePair persists an assessment and its submission atomically.
	// Neither is ever written without the other.
	SavePair(ctx context.Context, a *Assessment, sub *Submission) error

	// GetByID returns an assessment. Returns shared.ErrNotFound if missing.
	GetByID(ctx context.Context, id string) (*Assessment, error)

	// LatestForSession returns the most recent assessment in a session,
	// or shared.ErrNotFound when the session has none yet.
	LatestForSession(ctx context.Context, sessionID shared.SessionID) (*Assessment, error)

	// RecentByChild returns up to limit assessment records for a child,
	// most recent first.
	RecentByChild(ctx context.Context, childID shared.ChildID, limit int) ([]*AssessmentRecord, error)

	// CountByChild returns the total number of assessments for a child.
	CountByChild(ctx context.Context, childID shared.ChildID) (int, error)
}
