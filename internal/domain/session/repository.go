package session

import (
	"context"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// Repository defines the persistence interface for lesson sessions.
type Repository interface {
	// GetByID returns a session with its full conversation history.
	// Returns shared.ErrNotFound if the session does not exist.
	GetByID(ctx context.Context, id shared.SessionID) (*Session, error)

	// GetActive returns the child's active (non-feedback) session for a
	// lesson, or shared.ErrNotFound if none exists.
	GetActive(ctx context.Context, childID shared.ChildID, lessonID shared.LessonID) (*Session, error)

	// Create persists a new session.
	Create(ctx context.Context, s *Session) error

	// Save persists phase, phase state, and any newly appended messages.
	// Returns shared.ErrConcurrentModification when the stored version
	// does not match s.Version.
	Save(ctx context.Context, s *Session) error
}
