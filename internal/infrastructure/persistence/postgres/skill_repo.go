package postgres

import (
	"context"
	"fmt"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/skill"
)

// ══════════════════════════════════════════════════════════════════════════════
// SKILL PROGRESS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SkillRepository implements skill.Repository for PostgreSQL.
type SkillRepository struct {
	conn *Connection
}

// NewSkillRepository creates a new SkillRepository.
func NewSkillRepository(conn *Connection) *SkillRepository {
	return &SkillRepository{conn: conn}
}

// Get returns the progress record for one skill.
func (r *SkillRepository) Get(ctx context.Context, childID shared.ChildID, category shared.WritingType, name string) (*skill.Progress, error) {
	row := r.conn.QueryRow(ctx, `
		SELECT child_id, category, name, score, best_score, level, total_attempts, updated_at
		FROM skill_progress
		WHERE child_id = $1 AND category = $2 AND name = $3
	`, childID.String(), string(category), name)

	p, err := scanSkill(row.Scan)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("skill", "Get", shared.ErrNotFound, "skill not found")
		}
		return nil, fmt.Errorf("failed to scan skill: %w", err)
	}
	return p, nil
}

// Save upserts a skill progress record.
func (r *SkillRepository) Save(ctx context.Context, p *skill.Progress) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO skill_progress (child_id, category, name, score, best_score, level, total_attempts, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (child_id, category, name) DO UPDATE SET
			score = EXCLUDED.score,
			best_score = EXCLUDED.best_score,
			level = EXCLUDED.level,
			total_attempts = EXCLUDED.total_attempts,
			updated_at = EXCLUDED.updated_at
	`,
		p.ChildID.String(), string(p.Category), p.Name,
		p.Score, p.BestScore, string(p.Level), p.TotalAttempts, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save skill: %w", err)
	}
	return nil
}

// ListByChild returns all skill progress records for a child.
func (r *SkillRepository) ListByChild(ctx context.Context, childID shared.ChildID) ([]*skill.Progress, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT child_id, category, name, score, best_score, level, total_attempts, updated_at
		FROM skill_progress
		WHERE child_id = $1
		ORDER BY category, name
	`, childID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query skills: %w", err)
	}
	defer rows.Close()

	var out []*skill.Progress
	for rows.Next() {
		p, err := scanSkill(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanSkill(scan func(dest ...interface{}) error) (*skill.Progress, error) {
	var p skill.Progress
	var childID, category, level string
	if err := scan(&childID, &category, &p.Name, &p.Score, &p.BestScore,
		&level, &p.TotalAttempts, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ChildID = shared.ChildID(childID)
	p.Category = shared.WritingType(category)
	p.Level = skill.Level(level)
	return &p, nil
}
