package postgres

import (
	"context"
	"fmt"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/child"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHILD REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ChildRepository implements child.Repository for PostgreSQL.
type ChildRepository struct {
	conn *Connection
}

// NewChildRepository creates a new ChildRepository.
func NewChildRepository(conn *Connection) *ChildRepository {
	return &ChildRepository{conn: conn}
}

// GetByID returns a child profile.
func (r *ChildRepository) GetByID(ctx context.Context, id shared.ChildID) (*child.Child, error) {
	var c child.Child
	var cid string
	var tier int
	err := r.conn.QueryRow(ctx, `
		SELECT id, name, age, tier, interests, weekly_lesson_goal, parent_pin_hash,
			created_at, updated_at
		FROM children WHERE id = $1
	`, id.String()).Scan(&cid, &c.Name, &c.Age, &tier, &c.Interests,
		&c.WeeklyLessonGoal, &c.ParentPINHash, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("child", "GetByID", shared.ErrNotFound, "child not found")
		}
		return nil, fmt.Errorf("failed to scan child: %w", err)
	}
	c.ID = shared.ChildID(cid)
	c.Tier = shared.Tier(tier)
	return &c, nil
}

// Create persists a new child profile.
func (r *ChildRepository) Create(ctx context.Context, c *child.Child) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO children (id, name, age, tier, interests, weekly_lesson_goal,
			parent_pin_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		c.ID.String(), c.Name, c.Age, int(c.Tier), c.Interests,
		c.WeeklyLessonGoal, c.ParentPINHash, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.WrapError("child", "Create", shared.ErrAlreadyExists, "child exists", err)
		}
		return fmt.Errorf("failed to create child: %w", err)
	}
	return nil
}

// Save persists profile changes.
func (r *ChildRepository) Save(ctx context.Context, c *child.Child) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE children SET name = $2, age = $3, tier = $4, interests = $5,
			weekly_lesson_goal = $6, parent_pin_hash = $7, updated_at = $8
		WHERE id = $1
	`,
		c.ID.String(), c.Name, c.Age, int(c.Tier), c.Interests,
		c.WeeklyLessonGoal, c.ParentPINHash, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save child: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("child", "Save", shared.ErrNotFound, "child not found")
	}
	return nil
}
