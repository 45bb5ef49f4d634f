package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/curriculum"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CURRICULUM REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CurriculumRepository implements curriculum.Repository for PostgreSQL.
// Weeks live in their own table for queryability; revision snapshots are
// stored whole as JSONB because they are read back only for audit display.
type CurriculumRepository struct {
	conn *Connection
}

// NewCurriculumRepository creates a new CurriculumRepository.
func NewCurriculumRepository(conn *Connection) *CurriculumRepository {
	return &CurriculumRepository{conn: conn}
}

// GetActive returns the child's active curriculum with all weeks.
func (r *CurriculumRepository) GetActive(ctx context.Context, childID shared.ChildID) (*curriculum.Curriculum, error) {
	var c curriculum.Curriculum
	var cid string
	var tier int
	err := r.conn.QueryRow(ctx, `
		SELECT id, child_id, tier, active, created_at, updated_at
		FROM curricula WHERE child_id = $1 AND active
	`, childID.String()).Scan(&c.ID, &cid, &tier, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("curriculum", "GetActive", shared.ErrNotFound,
				"no active curriculum")
		}
		return nil, fmt.Errorf("failed to scan curriculum: %w", err)
	}
	c.ChildID = shared.ChildID(cid)
	c.Tier = shared.Tier(tier)

	weeks, err := r.loadWeeks(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Weeks = weeks
	return &c, nil
}

// Create persists a new curriculum with its weeks and deactivates any
// prior active plan in the same transaction.
func (r *CurriculumRepository) Create(ctx context.Context, c *curriculum.Curriculum) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			"UPDATE curricula SET active = FALSE, updated_at = $2 WHERE child_id = $1 AND active",
			c.ChildID.String(), c.CreatedAt); err != nil {
			return fmt.Errorf("failed to deactivate prior curricula: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO curricula (id, child_id, tier, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, c.ID, c.ChildID.String(), int(c.Tier), c.Active, c.CreatedAt, c.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert curriculum: %w", err)
		}
		return insertWeeks(ctx, tx, c.ID, c.Weeks)
	})
}

// SaveWithRevision persists updated weeks and the revision snapshot in one
// transaction.
func (r *CurriculumRepository) SaveWithRevision(ctx context.Context, c *curriculum.Curriculum, rev *curriculum.Revision) error {
	prevJSON, err := json.Marshal(rev.PreviousPlan)
	if err != nil {
		return fmt.Errorf("failed to marshal previous plan: %w", err)
	}
	newJSON, err := json.Marshal(rev.NewPlan)
	if err != nil {
		return fmt.Errorf("failed to marshal new plan: %w", err)
	}

	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			"UPDATE curricula SET updated_at = $2 WHERE id = $1", c.ID, c.UpdatedAt); err != nil {
			return fmt.Errorf("failed to touch curriculum: %w", err)
		}
		if _, err := tx.Exec(ctx,
			"DELETE FROM curriculum_weeks WHERE curriculum_id = $1", c.ID); err != nil {
			return fmt.Errorf("failed to clear weeks: %w", err)
		}
		if err := insertWeeks(ctx, tx, c.ID, c.Weeks); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO curriculum_revisions (
				id, curriculum_id, child_id, reason, description,
				previous_plan, new_plan, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			rev.ID, rev.CurriculumID, rev.ChildID.String(), string(rev.Reason),
			rev.Description, prevJSON, newJSON, rev.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert revision: %w", err)
		}
		return nil
	})
}

// ListRevisions returns a curriculum's revisions, newest first.
func (r *CurriculumRepository) ListRevisions(ctx context.Context, curriculumID string) ([]*curriculum.Revision, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, curriculum_id, child_id, reason, description,
			previous_plan, new_plan, created_at
		FROM curriculum_revisions
		WHERE curriculum_id = $1
		ORDER BY created_at DESC
	`, curriculumID)
	if err != nil {
		return nil, fmt.Errorf("failed to query revisions: %w", err)
	}
	defer rows.Close()

	var out []*curriculum.Revision
	for rows.Next() {
		var rev curriculum.Revision
		var childID, reason string
		var prevJSON, newJSON []byte
		if err := rows.Scan(&rev.ID, &rev.CurriculumID, &childID, &reason,
			&rev.Description, &prevJSON, &newJSON, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		rev.ChildID = shared.ChildID(childID)
		rev.Reason = curriculum.RevisionReason(reason)
		if err := json.Unmarshal(prevJSON, &rev.PreviousPlan); err != nil {
			return nil, fmt.Errorf("failed to unmarshal previous plan: %w", err)
		}
		if err := json.Unmarshal(newJSON, &rev.NewPlan); err != nil {
			return nil, fmt.Errorf("failed to unmarshal new plan: %w", err)
		}
		out = append(out, &rev)
	}
	return out, rows.Err()
}

func (r *CurriculumRepository) loadWeeks(ctx context.Context, curriculumID string) ([]curriculum.Week, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT week_number, theme, status, lesson_ids
		FROM curriculum_weeks
		WHERE curriculum_id = $1
		ORDER BY week_number
	`, curriculumID)
	if err != nil {
		return nil, fmt.Errorf("failed to query weeks: %w", err)
	}
	defer rows.Close()

	var weeks []curriculum.Week
	for rows.Next() {
		var w curriculum.Week
		var status string
		var ids []string
		if err := rows.Scan(&w.WeekNumber, &w.Theme, &status, &ids); err != nil {
			return nil, fmt.Errorf("failed to scan week: %w", err)
		}
		w.Status = curriculum.WeekStatus(status)
		w.LessonIDs = make([]shared.LessonID, len(ids))
		for i, id := range ids {
			w.LessonIDs[i] = shared.LessonID(id)
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

func insertWeeks(ctx context.Context, tx pgx.Tx, curriculumID string, weeks []curriculum.Week) error {
	for _, w := range weeks {
		ids := make([]string, len(w.LessonIDs))
		for i, id := range w.LessonIDs {
			ids[i] = id.String()
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO curriculum_weeks (curriculum_id, week_number, theme, status, lesson_ids)
			VALUES ($1, $2, $3, $4, $5)
		`, curriculumID, w.WeekNumber, w.Theme, string(w.Status), ids); err != nil {
			return fmt.Errorf("failed to insert week %d: %w", w.WeekNumber, err)
		}
	}
	return nil
}
