package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/session"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SessionRepository implements session.Repository for PostgreSQL.
type SessionRepository struct {
	conn *Connection
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(conn *Connection) *SessionRepository {
	return &SessionRepository{conn: conn}
}

const sessionColumns = `id, child_id, lesson_id, phase,
	instruction_completed, comprehension_check_passed, guided_attempts,
	hints_given, guided_complete, writing_started_at, revisions_used,
	version, created_at, updated_at`

// GetByID returns a session with its full conversation history.
func (r *SessionRepository) GetByID(ctx context.Context, id shared.SessionID) (*session.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE id = $1", sessionColumns)
	s, err := r.scanSession(r.conn.QueryRow(ctx, query, id.String()))
	if err != nil {
		return nil, err
	}
	if err := r.loadHistory(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// GetActive returns the child's non-feedback session for a lesson.
func (r *SessionRepository) GetActive(ctx context.Context, childID shared.ChildID, lessonID shared.LessonID) (*session.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions
		WHERE child_id = $1 AND lesson_id = $2 AND phase != 'feedback'
		ORDER BY created_at DESC LIMIT 1`, sessionColumns)
	s, err := r.scanSession(r.conn.QueryRow(ctx, query, childID.String(), lessonID.String()))
	if err != nil {
		return nil, err
	}
	if err := r.loadHistory(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Create persists a new session.
func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	query := `
		INSERT INTO sessions (
			id, child_id, lesson_id, phase,
			instruction_completed, comprehension_check_passed, guided_attempts,
			hints_given, guided_complete, writing_started_at, revisions_used,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.conn.Exec(ctx, query,
		s.ID.String(), s.ChildID.String(), s.LessonID.String(), string(s.Phase),
		s.PhaseState.InstructionCompleted, s.PhaseState.ComprehensionCheckPassed,
		s.PhaseState.GuidedAttempts, s.PhaseState.HintsGiven, s.PhaseState.GuidedComplete,
		s.PhaseState.WritingStartedAt, s.PhaseState.RevisionsUsed,
		s.Version, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.WrapError("session", "Create", shared.ErrAlreadyExists, "session exists", err)
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Save persists phase, phase state, and newly appended messages under
// optimistic locking on the version column.
func (r *SessionRepository) Save(ctx context.Context, s *session.Session) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE sessions SET
				phase = $1,
				instruction_completed = $2,
				comprehension_check_passed = $3,
				guided_attempts = $4,
				hints_given = $5,
				guided_complete = $6,
				writing_started_at = $7,
				revisions_used = $8,
				version = version + 1,
				updated_at = $9
			WHERE id = $10 AND version = $11
		`,
			string(s.Phase),
			s.PhaseState.InstructionCompleted, s.PhaseState.ComprehensionCheckPassed,
			s.PhaseState.GuidedAttempts, s.PhaseState.HintsGiven, s.PhaseState.GuidedComplete,
			s.PhaseState.WritingStartedAt, s.PhaseState.RevisionsUsed,
			s.UpdatedAt, s.ID.String(), s.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return shared.NewDomainError("session", "Save", shared.ErrConcurrentModification,
				"session was modified concurrently")
		}

		// The history is append-only, so persisting messages from the
		// current persisted count onward is safe.
		var persisted int
		if err := tx.QueryRow(ctx,
			"SELECT COUNT(*) FROM session_messages WHERE session_id = $1",
			s.ID.String()).Scan(&persisted); err != nil {
			return fmt.Errorf("failed to count messages: %w", err)
		}
		for i := persisted; i < len(s.History); i++ {
			msg := s.History[i]
			if _, err := tx.Exec(ctx, `
				INSERT INTO session_messages (session_id, seq, role, content, created_at)
				VALUES ($1, $2, $3, $4, $5)
			`, s.ID.String(), i, string(msg.Role), msg.Content, msg.Timestamp); err != nil {
				return fmt.Errorf("failed to insert message: %w", err)
			}
		}

		s.Version++
		return nil
	})
}

func (r *SessionRepository) scanSession(row pgx.Row) (*session.Session, error) {
	var s session.Session
	var phase, childID, lessonID, id string

	err := row.Scan(
		&id, &childID, &lessonID, &phase,
		&s.PhaseState.InstructionCompleted, &s.PhaseState.ComprehensionCheckPassed,
		&s.PhaseState.GuidedAttempts, &s.PhaseState.HintsGiven, &s.PhaseState.GuidedComplete,
		&s.PhaseState.WritingStartedAt, &s.PhaseState.RevisionsUsed,
		&s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("session", "Get", shared.ErrNotFound, "session not found")
		}
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	s.ID = shared.SessionID(id)
	s.ChildID = shared.ChildID(childID)
	s.LessonID = shared.LessonID(lessonID)
	s.Phase = session.Phase(phase)
	return &s, nil
}

func (r *SessionRepository) loadHistory(ctx context.Context, s *session.Session) error {
	rows, err := r.conn.Query(ctx, `
		SELECT role, content, created_at FROM session_messages
		WHERE session_id = $1 ORDER BY seq
	`, s.ID.String())
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg session.Message
		var role string
		if err := rows.Scan(&role, &msg.Content, &msg.Timestamp); err != nil {
			return fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = session.Role(role)
		s.History = append(s.History, msg)
	}
	return rows.Err()
}
