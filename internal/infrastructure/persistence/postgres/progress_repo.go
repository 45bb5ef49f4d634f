package postgres

import (
	"context"
	"fmt"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LESSON PROGRESS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProgressRepository implements lesson.ProgressRepository for PostgreSQL.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

// Get returns the progress record for a child and lesson.
func (r *ProgressRepository) Get(ctx context.Context, childID shared.ChildID, lessonID shared.LessonID) (*lesson.Progress, error) {
	row := r.conn.QueryRow(ctx, `
		SELECT child_id, lesson_id, status, current_phase, best_score, completed_at, updated_at
		FROM lesson_progress
		WHERE child_id = $1 AND lesson_id = $2
	`, childID.String(), lessonID.String())

	p, err := scanProgress(row.Scan)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("lesson", "GetProgress", shared.ErrNotFound, "progress not found")
		}
		return nil, fmt.Errorf("failed to scan progress: %w", err)
	}
	return p, nil
}

// Save upserts a progress record.
func (r *ProgressRepository) Save(ctx context.Context, p *lesson.Progress) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO lesson_progress (child_id, lesson_id, status, current_phase, best_score, completed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (child_id, lesson_id) DO UPDATE SET
			status = EXCLUDED.status,
			current_phase = EXCLUDED.current_phase,
			best_score = EXCLUDED.best_score,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at
	`,
		p.ChildID.String(), p.LessonID.String(), string(p.Status), p.CurrentPhase,
		p.BestScore, p.CompletedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// ListByChild returns all progress records for a child.
func (r *ProgressRepository) ListByChild(ctx context.Context, childID shared.ChildID) ([]*lesson.Progress, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT child_id, lesson_id, status, current_phase, best_score, completed_at, updated_at
		FROM lesson_progress
		WHERE child_id = $1
		ORDER BY updated_at DESC
	`, childID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var out []*lesson.Progress
	for rows.Next() {
		p, err := scanProgress(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountCompleted returns the number of completed lessons for a child.
func (r *ProgressRepository) CountCompleted(ctx context.Context, childID shared.ChildID) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `
		SELECT COUNT(*) FROM lesson_progress
		WHERE child_id = $1 AND status = $2
	`, childID.String(), string(lesson.StatusCompleted)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed lessons: %w", err)
	}
	return count, nil
}

func scanProgress(scan func(dest ...interface{}) error) (*lesson.Progress, error) {
	var p lesson.Progress
	var childID, lessonID, status string
	if err := scan(&childID, &lessonID, &status, &p.CurrentPhase,
		&p.BestScore, &p.CompletedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ChildID = shared.ChildID(childID)
	p.LessonID = shared.LessonID(lessonID)
	p.Status = lesson.ProgressStatus(status)
	return &p, nil
}
