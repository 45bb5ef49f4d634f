package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/assessment"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSESSMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AssessmentRepository implements assessment.Repository for PostgreSQL.
// It carries the lesson catalog to annotate records with writing type and
// unit number, which are derived from the lesson id rather than stored.
type AssessmentRepository struct {
	conn    *Connection
	catalog *lesson.Catalog
}

// NewAssessmentRepository creates a new AssessmentRepository.
func NewAssessmentRepository(conn *Connection, catalog *lesson.Catalog) *AssessmentRepository {
	return &AssessmentRepository{conn: conn, catalog: catalog}
}

// SavePair persists a submission and its assessment in one transaction.
func (r *AssessmentRepository) SavePair(ctx context.Context, a *assessment.Assessment, sub *assessment.Submission) error {
	scoresJSON, err := json.Marshal(a.Scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}
	feedbackJSON, err := json.Marshal(a.Feedback)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %w", err)
	}

	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO submissions (
				id, session_id, child_id, lesson_id, text, word_count,
				time_spent_sec, revision_number, submitted_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			sub.ID, sub.SessionID.String(), sub.ChildID.String(), sub.LessonID.String(),
			sub.Text, sub.WordCount, sub.TimeSpentSec, sub.RevisionNumber, sub.SubmittedAt,
		); err != nil {
			return fmt.Errorf("failed to insert submission: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO assessments (
				id, submission_id, session_id, child_id, lesson_id,
				scores, overall_score, feedback, revision_number, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			a.ID, a.SubmissionID, a.SessionID.String(), a.ChildID.String(), a.LessonID.String(),
			scoresJSON, a.OverallScore, feedbackJSON, a.RevisionNumber, a.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert assessment: %w", err)
		}
		return nil
	})
}

const assessmentColumns = `id, submission_id, session_id, child_id, lesson_id,
	scores, overall_score, feedback, revision_number, created_at`

// GetByID returns an assessment by its id.
func (r *AssessmentRepository) GetByID(ctx context.Context, id string) (*assessment.Assessment, error) {
	query := fmt.Sprintf("SELECT %s FROM assessments WHERE id = $1", assessmentColumns)
	return scanAssessment(r.conn.QueryRow(ctx, query, id))
}

// LatestForSession returns the most recent assessment in a session.
func (r *AssessmentRepository) LatestForSession(ctx context.Context, sessionID shared.SessionID) (*assessment.Assessment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assessments
		WHERE session_id = $1 ORDER BY created_at DESC LIMIT 1`, assessmentColumns)
	return scanAssessment(r.conn.QueryRow(ctx, query, sessionID.String()))
}

// RecentByChild returns up to limit assessment records for a child, most
// recent first, joined with submission metrics and session hint counts.
func (r *AssessmentRepository) RecentByChild(ctx context.Context, childID shared.ChildID, limit int) ([]*assessment.AssessmentRecord, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT a.id, a.submission_id, a.session_id, a.child_id, a.lesson_id,
			a.scores, a.overall_score, a.feedback, a.revision_number, a.created_at,
			sub.word_count, sub.time_spent_sec, s.hints_given
		FROM assessments a
		JOIN submissions sub ON sub.id = a.submission_id
		JOIN sessions s ON s.id = a.session_id
		WHERE a.child_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2
	`, childID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent assessments: %w", err)
	}
	defer rows.Close()

	var records []*assessment.AssessmentRecord
	for rows.Next() {
		var a assessment.Assessment
		var sessionID, cid, lessonID string
		var scoresJSON, feedbackJSON []byte
		rec := &assessment.AssessmentRecord{}

		if err := rows.Scan(
			&a.ID, &a.SubmissionID, &sessionID, &cid, &lessonID,
			&scoresJSON, &a.OverallScore, &feedbackJSON, &a.RevisionNumber, &a.CreatedAt,
			&rec.WordCount, &rec.TimeSpent, &rec.HintsGiven,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assessment record: %w", err)
		}
		a.SessionID = shared.SessionID(sessionID)
		a.ChildID = shared.ChildID(cid)
		a.LessonID = shared.LessonID(lessonID)
		if err := json.Unmarshal(scoresJSON, &a.Scores); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scores: %w", err)
		}
		if err := json.Unmarshal(feedbackJSON, &a.Feedback); err != nil {
			return nil, fmt.Errorf("failed to unmarshal feedback: %w", err)
		}

		rec.Assessment = &a
		if l := r.catalog.Get(a.LessonID); l != nil {
			rec.WritingType = l.WritingType
			rec.UnitNumber = l.UnitNumber
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByChild returns the total number of assessments for a child.
func (r *AssessmentRepository) CountByChild(ctx context.Context, childID shared.ChildID) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM assessments WHERE child_id = $1",
		childID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assessments: %w", err)
	}
	return count, nil
}

func scanAssessment(row pgx.Row) (*assessment.Assessment, error) {
	var a assessment.Assessment
	var sessionID, childID, lessonID string
	var scoresJSON, feedbackJSON []byte

	err := row.Scan(
		&a.ID, &a.SubmissionID, &sessionID, &childID, &lessonID,
		&scoresJSON, &a.OverallScore, &feedbackJSON, &a.RevisionNumber, &a.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("assessment", "Get", shared.ErrNotFound, "assessment not found")
		}
		return nil, fmt.Errorf("failed to scan assessment: %w", err)
	}

	a.SessionID = shared.SessionID(sessionID)
	a.ChildID = shared.ChildID(childID)
	a.LessonID = shared.LessonID(lessonID)
	if err := json.Unmarshal(scoresJSON, &a.Scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scores: %w", err)
	}
	if err := json.Unmarshal(feedbackJSON, &a.Feedback); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feedback: %w", err)
	}
	return &a, nil
}
