package postgres

import (
	"context"
	"fmt"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/badge"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// BadgeRepository implements badge.Repository for PostgreSQL.
type BadgeRepository struct {
	conn *Connection
}

// NewBadgeRepository creates a new BadgeRepository.
func NewBadgeRepository(conn *Connection) *BadgeRepository {
	return &BadgeRepository{conn: conn}
}

// Award persists an achievement. The composite primary key makes awarding
// an already-earned badge a silent no-op.
func (r *BadgeRepository) Award(ctx context.Context, a *badge.Achievement) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO achievements (child_id, badge_id, earned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (child_id, badge_id) DO NOTHING
	`, a.ChildID.String(), a.BadgeID, a.EarnedAt)
	if err != nil {
		return fmt.Errorf("failed to award badge: %w", err)
	}
	return nil
}

// EarnedIDs returns the set of badge ids the child already holds.
func (r *BadgeRepository) EarnedIDs(ctx context.Context, childID shared.ChildID) (map[string]bool, error) {
	rows, err := r.conn.Query(ctx,
		"SELECT badge_id FROM achievements WHERE child_id = $1", childID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query earned badges: %w", err)
	}
	defer rows.Close()

	earned := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan badge id: %w", err)
		}
		earned[id] = true
	}
	return earned, rows.Err()
}

// ListByChild returns all achievements for a child, newest first.
func (r *BadgeRepository) ListByChild(ctx context.Context, childID shared.ChildID) ([]*badge.Achievement, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT child_id, badge_id, earned_at FROM achievements
		WHERE child_id = $1 ORDER BY earned_at DESC
	`, childID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	var out []*badge.Achievement
	for rows.Next() {
		var a badge.Achievement
		var cid string
		if err := rows.Scan(&cid, &a.BadgeID, &a.EarnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		a.ChildID = shared.ChildID(cid)
		out = append(out, &a)
	}
	return out, rows.Err()
}
