package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CHILDREN
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS children (
    id UUID PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    age INTEGER NOT NULL,
    tier INTEGER NOT NULL,
    interests TEXT[] NOT NULL DEFAULT '{}',
    weekly_lesson_goal INTEGER NOT NULL DEFAULT 3,
    parent_pin_hash TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_age CHECK (age BETWEEN 6 AND 14),
    CONSTRAINT valid_tier CHECK (tier BETWEEN 1 AND 3)
);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: SESSIONS AND MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS sessions (
    id UUID PRIMARY KEY,
    child_id UUID NOT NULL REFERENCES children(id),
    lesson_id VARCHAR(30) NOT NULL,
    phase VARCHAR(20) NOT NULL DEFAULT 'instruction',

    -- Structured phase state, one column per field.
    instruction_completed BOOLEAN NOT NULL DEFAULT FALSE,
    comprehension_check_passed BOOLEAN NOT NULL DEFAULT FALSE,
    guided_attempts INTEGER NOT NULL DEFAULT 0,
    hints_given INTEGER NOT NULL DEFAULT 0,
    guided_complete BOOLEAN NOT NULL DEFAULT FALSE,
    writing_started_at TIMESTAMP WITH TIME ZONE,
    revisions_used INTEGER NOT NULL DEFAULT 0,

    version INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_phase CHECK (phase IN ('instruction', 'guided', 'assessment', 'feedback')),
    CONSTRAINT valid_revisions CHECK (revisions_used >= 0)
);

CREATE INDEX IF NOT EXISTS idx_sessions_child_lesson ON sessions(child_id, lesson_id);

CREATE TABLE IF NOT EXISTS session_messages (
    id BIGSERIAL PRIMARY KEY,
    session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    role VARCHAR(10) NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,

    CONSTRAINT valid_role CHECK (role IN ('coach', 'student')),
    CONSTRAINT unique_seq UNIQUE (session_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON session_messages(session_id, seq);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: SUBMISSIONS AND ASSESSMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
CREATE TABLE IF NOT EXISTS submissions (
    id UUID PRIMARY KEY,
    session_id UUID NOT NULL REFERENCES sessions(id),
    child_id UUID NOT NULL REFERENCES children(id),
    lesson_id VARCHAR(30) NOT NULL,
    text TEXT NOT NULL,
    word_count INTEGER NOT NULL,
    time_spent_sec INTEGER NOT NULL DEFAULT 0,
    revision_number INTEGER NOT NULL DEFAULT 0,
    submitted_at TIMESTAMP WITH TIME ZONE NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submissions_child ON submissions(child_id, submitted_at DESC);

CREATE TABLE IF NOT EXISTS assessments (
    id UUID PRIMARY KEY,
    submission_id UUID NOT NULL REFERENCES submissions(id),
    session_id UUID NOT NULL REFERENCES sessions(id),
    child_id UUID NOT NULL REFERENCES children(id),
    lesson_id VARCHAR(30) NOT NULL,
    scores JSONB NOT NULL,
    overall_score DECIMAL(3,2) NOT NULL,
    feedback JSONB NOT NULL,
    revision_number INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,

    CONSTRAINT valid_overall CHECK (overall_score >= 0 AND overall_score <= 4)
);

CREATE INDEX IF NOT EXISTS idx_assessments_child ON assessments(child_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_assessments_session ON assessments(session_id, created_at DESC);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: LESSON PROGRESS AND SKILLS
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
CREATE TABLE IF NOT EXISTS lesson_progress (
    child_id UUID NOT NULL REFERENCES children(id),
    lesson_id VARCHAR(30) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    current_phase VARCHAR(20) NOT NULL DEFAULT '',
    best_score DECIMAL(3,2) NOT NULL DEFAULT 0,
    completed_at TIMESTAMP WITH TIME ZONE,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (child_id, lesson_id),
    CONSTRAINT valid_status CHECK (status IN ('pending', 'in_progress', 'completed', 'needs_improvement'))
);

CREATE TABLE IF NOT EXISTS skill_progress (
    child_id UUID NOT NULL REFERENCES children(id),
    category VARCHAR(20) NOT NULL,
    name VARCHAR(50) NOT NULL,
    score DECIMAL(3,2) NOT NULL,
    best_score DECIMAL(3,2) NOT NULL,
    level VARCHAR(15) NOT NULL,
    total_attempts INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (child_id, category, name),
    CONSTRAINT valid_level CHECK (level IN ('EMERGING', 'DEVELOPING', 'PROFICIENT', 'ADVANCED'))
);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 005: ACHIEVEMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration005Up = `
CREATE TABLE IF NOT EXISTS achievements (
    child_id UUID NOT NULL REFERENCES children(id),
    badge_id VARCHAR(40) NOT NULL,
    earned_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (child_id, badge_id)
);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 006: CURRICULA
// ══════════════════════════════════════════════════════════════════════════════

const migration006Up = `
CREATE TABLE IF NOT EXISTS curricula (
    id UUID PRIMARY KEY,
    child_id UUID NOT NULL REFERENCES children(id),
    tier INTEGER NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_curriculum
    ON curricula(child_id) WHERE active;

CREATE TABLE IF NOT EXISTS curriculum_weeks (
    curriculum_id UUID NOT NULL REFERENCES curricula(id) ON DELETE CASCADE,
    week_number INTEGER NOT NULL,
    theme VARCHAR(120) NOT NULL DEFAULT '',
    status VARCHAR(15) NOT NULL DEFAULT 'pending',
    lesson_ids VARCHAR(30)[] NOT NULL DEFAULT '{}',

    PRIMARY KEY (curriculum_id, week_number),
    CONSTRAINT valid_week_status CHECK (status IN ('pending', 'in_progress', 'completed'))
);

CREATE TABLE IF NOT EXISTS curriculum_revisions (
    id UUID PRIMARY KEY,
    curriculum_id UUID NOT NULL REFERENCES curricula(id),
    child_id UUID NOT NULL REFERENCES children(id),
    reason VARCHAR(30) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    previous_plan JSONB NOT NULL,
    new_plan JSONB NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_revisions_curriculum ON curriculum_revisions(curriculum_id, created_at DESC);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 007: LEARNER PROFILES
// ══════════════════════════════════════════════════════════════════════════════

const migration007Up = `
CREATE TABLE IF NOT EXISTS learner_profiles (
    child_id UUID PRIMARY KEY REFERENCES children(id),
    profile JSONB NOT NULL,
    built_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATOR
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
}

// GetMigrations returns all migrations in order.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_children", UpSQL: migration001Up},
		{Version: 2, Name: "create_sessions", UpSQL: migration002Up},
		{Version: 3, Name: "create_assessments", UpSQL: migration003Up},
		{Version: 4, Name: "create_progress_and_skills", UpSQL: migration004Up},
		{Version: 5, Name: "create_achievements", UpSQL: migration005Up},
		{Version: 6, Name: "create_curricula", UpSQL: migration006Up},
		{Version: 7, Name: "create_learner_profiles", UpSQL: migration007Up},
	}
}

// Migrator applies embedded migrations.
type Migrator struct {
	conn      *Connection
	tableName string
}

// NewMigrator creates a migrator.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn, tableName: "schema_migrations"}
}

// Migrate applies all pending migrations in order, each in its own
// transaction.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}
	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, mig := range GetMigrations() {
		if _, ok := applied[mig.Version]; ok {
			continue
		}
		err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
			}
			_, err := tx.Exec(ctx,
				fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName),
				mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}
	return nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)
	if _, err := m.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[int]time.Time, error) {
	rows, err := m.conn.Query(ctx,
		fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName))
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var at time.Time
		if err := rows.Scan(&version, &at); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = at
	}
	return applied, rows.Err()
}
