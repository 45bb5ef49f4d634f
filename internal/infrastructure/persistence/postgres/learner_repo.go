package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/learner"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEARNER PROFILE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LearnerRepository implements learner.Repository for PostgreSQL. The
// profile is a rebuildable snapshot, so it is stored whole as JSONB.
type LearnerRepository struct {
	conn *Connection
}

// NewLearnerRepository creates a new LearnerRepository.
func NewLearnerRepository(conn *Connection) *LearnerRepository {
	return &LearnerRepository{conn: conn}
}

// Get returns the latest profile snapshot for a child.
func (r *LearnerRepository) Get(ctx context.Context, childID shared.ChildID) (*learner.Profile, error) {
	var raw []byte
	err := r.conn.QueryRow(ctx,
		"SELECT profile FROM learner_profiles WHERE child_id = $1",
		childID.String()).Scan(&raw)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("learner", "Get", shared.ErrNotFound, "profile not found")
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var p learner.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	p.ChildID = childID
	return &p, nil
}

// Upsert replaces the child's profile snapshot.
func (r *LearnerRepository) Upsert(ctx context.Context, p *learner.Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	_, err = r.conn.Exec(ctx, `
		INSERT INTO learner_profiles (child_id, profile, built_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (child_id) DO UPDATE SET
			profile = EXCLUDED.profile,
			built_at = EXCLUDED.built_at
	`, p.ChildID.String(), raw, p.BuiltAt)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
