package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/badge"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/skill"
	"github.com/karthikjanagiraman/WritingCoach-sub001/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE FACTS LOADER
// ══════════════════════════════════════════════════════════════════════════════

// FactsLoader assembles the badge fact batch from a handful of aggregate
// queries. One Load call per badge evaluation keeps the predicates pure.
type FactsLoader struct {
	conn    *Connection
	catalog *lesson.Catalog
}

// NewFactsLoader creates a new FactsLoader.
func NewFactsLoader(conn *Connection, catalog *lesson.Catalog) *FactsLoader {
	return &FactsLoader{conn: conn, catalog: catalog}
}

// Load fetches everything the badge predicates can see for one child.
func (l *FactsLoader) Load(ctx context.Context, childID shared.ChildID) (*badge.Facts, error) {
	f := &badge.Facts{
		CompletedByType:     make(map[shared.WritingType]bool),
		BestScoreByCategory: make(map[shared.WritingType]float64),
	}

	if err := l.loadSubmissionFacts(ctx, childID, f); err != nil {
		return nil, err
	}
	if err := l.loadScoreFacts(ctx, childID, f); err != nil {
		return nil, err
	}
	if err := l.loadCompletionFacts(ctx, childID, f); err != nil {
		return nil, err
	}
	if err := l.loadSkillFacts(ctx, childID, f); err != nil {
		return nil, err
	}
	if err := l.loadStreakFacts(ctx, childID, f); err != nil {
		return nil, err
	}
	if err := l.loadWeeklyGoalFact(ctx, childID, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (l *FactsLoader) loadSubmissionFacts(ctx context.Context, childID shared.ChildID, f *badge.Facts) error {
	err := l.conn.QueryRow(ctx, `
		SELECT COALESCE(MAX(word_count), 0),
			COALESCE(BOOL_OR(revision_number > 0), FALSE)
		FROM submissions WHERE child_id = $1
	`, childID.String()).Scan(&f.MaxWordCount, &f.HasRevised)
	if err != nil {
		return fmt.Errorf("failed to load submission facts: %w", err)
	}
	return nil
}

func (l *FactsLoader) loadScoreFacts(ctx context.Context, childID shared.ChildID, f *badge.Facts) error {
	err := l.conn.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE overall_score >= 3.5),
			COALESCE(BOOL_OR(overall_score >= 4.0), FALSE)
		FROM assessments WHERE child_id = $1
	`, childID.String()).Scan(&f.HighScoreCount, &f.HasPerfectScore)
	if err != nil {
		return fmt.Errorf("failed to load score facts: %w", err)
	}
	return nil
}

func (l *FactsLoader) loadCompletionFacts(ctx context.Context, childID shared.ChildID, f *badge.Facts) error {
	rows, err := l.conn.Query(ctx, `
		SELECT lesson_id, completed_at FROM lesson_progress
		WHERE child_id = $1 AND status = 'completed'
	`, childID.String())
	if err != nil {
		return fmt.Errorf("failed to load completion facts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lessonID string
		var completedAt *time.Time
		if err := rows.Scan(&lessonID, &completedAt); err != nil {
			return fmt.Errorf("failed to scan completion: %w", err)
		}
		f.CompletedLessons++
		if entry := l.catalog.Get(shared.LessonID(lessonID)); entry != nil {
			f.CompletedByType[entry.WritingType] = true
		}
		if completedAt != nil {
			if timeutil.IsEarlyBird(*completedAt) {
				f.EarlyBirdCompletion = true
			}
			if timeutil.IsNightOwl(*completedAt) {
				f.NightOwlCompletion = true
			}
		}
	}
	return rows.Err()
}

func (l *FactsLoader) loadSkillFacts(ctx context.Context, childID shared.ChildID, f *badge.Facts) error {
	rows, err := l.conn.Query(ctx, `
		SELECT category, level, best_score FROM skill_progress
		WHERE child_id = $1
	`, childID.String())
	if err != nil {
		return fmt.Errorf("failed to load skill facts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category, level string
		var best float64
		if err := rows.Scan(&category, &level, &best); err != nil {
			return fmt.Errorf("failed to scan skill fact: %w", err)
		}
		if skill.Level(level).IsStrong() {
			f.ProficientSkills++
		}
		wt := shared.WritingType(category)
		if best > f.BestScoreByCategory[wt] {
			f.BestScoreByCategory[wt] = best
		}
	}
	return rows.Err()
}

// loadStreakFacts derives day streaks from the distinct calendar days the
// child submitted an assessment.
func (l *FactsLoader) loadStreakFacts(ctx context.Context, childID shared.ChildID, f *badge.Facts) error {
	rows, err := l.conn.Query(ctx, `
		SELECT DISTINCT DATE(created_at) FROM assessments
		WHERE child_id = $1 ORDER BY DATE(created_at)
	`, childID.String())
	if err != nil {
		return fmt.Errorf("failed to load activity days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return fmt.Errorf("failed to scan activity day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	f.CurrentStreak, f.LongestStreak = streaks(days)
	return nil
}

func (l *FactsLoader) loadWeeklyGoalFact(ctx context.Context, childID shared.ChildID, f *badge.Facts) error {
	weekStart := timeutil.StartOfWeek(timeutil.Now())
	err := l.conn.QueryRow(ctx, `
		SELECT COALESCE((
			SELECT COUNT(*) FROM lesson_progress
			WHERE child_id = $1 AND status = 'completed' AND completed_at >= $2
		), 0) >= c.weekly_lesson_goal
		FROM children c WHERE c.id = $1
	`, childID.String(), weekStart).Scan(&f.WeeklyGoalMet)
	if err != nil {
		if IsNoRows(err) {
			return shared.NewDomainError("badge", "LoadFacts", shared.ErrNotFound, "child not found")
		}
		return fmt.Errorf("failed to load weekly goal fact: %w", err)
	}
	return nil
}

// streaks walks sorted distinct activity days and returns the current and
// longest run of consecutive days. A current streak only counts when the
// last activity was today or yesterday.
func streaks(days []time.Time) (current, longest int) {
	if len(days) == 0 {
		return 0, 0
	}

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if timeutil.DaysBetween(days[i-1], days[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	last := days[len(days)-1]
	if timeutil.IsToday(last) || timeutil.IsYesterday(last) {
		current = run
	}
	return current, longest
}
