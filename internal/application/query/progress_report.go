// Package query contains the read-side operations of the service.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/assessment"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/badge"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/child"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/curriculum"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/learner"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/skill"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS REPORT QUERY
// The parent-facing dashboard aggregate: lessons, skills, badges, trends,
// and the upcoming plan in one read, cached in Redis between assessments.
// ══════════════════════════════════════════════════════════════════════════════

// recentAssessmentLimit caps the recent-work section of the report.
const recentAssessmentLimit = 5

// ProgressReport is the aggregated dashboard payload.
type ProgressReport struct {
	ChildID   string `json:"child_id"`
	ChildName string `json:"child_name"`
	Age       int    `json:"age"`
	Tier      int    `json:"tier"`

	LessonsCompleted int `json:"lessons_completed"`
	WeeklyGoal       int `json:"weekly_goal"`

	Skills []SkillSummary `json:"skills"`
	Badges []BadgeSummary `json:"badges"`
	Recent []RecentWork   `json:"recent"`

	// Profile is the learner profile snapshot, nil until the child has
	// assessed work.
	Profile *learner.Profile `json:"profile,omitempty"`

	// UpcomingWeeks are the pending curriculum weeks, in order.
	UpcomingWeeks []curriculum.Week `json:"upcoming_weeks"`

	GeneratedAt time.Time `json:"generated_at"`
}

// SkillSummary is one skill line on the dashboard.
type SkillSummary struct {
	Category string  `json:"category"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Level    string  `json:"level"`
	Attempts int     `json:"attempts"`
}

// BadgeSummary is one earned badge.
type BadgeSummary struct {
	BadgeID  string    `json:"badge_id"`
	Title    string    `json:"title"`
	EarnedAt time.Time `json:"earned_at"`
}

// RecentWork is one recent assessment line.
type RecentWork struct {
	LessonID     string    `json:"lesson_id"`
	LessonTitle  string    `json:"lesson_title"`
	OverallScore float64   `json:"overall_score"`
	WordCount    int       `json:"word_count"`
	IsRevision   bool      `json:"is_revision"`
	CreatedAt    time.Time `json:"created_at"`
}

// Cache is the subset of the Redis cache the report query needs.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ReportCache is a typed wrapper over the generic cache for reports.
type ReportCache struct {
	cache Cache
	ttl   time.Duration
}

// NewReportCache creates a report cache with the given TTL.
func NewReportCache(cache Cache, ttl time.Duration) *ReportCache {
	return &ReportCache{cache: cache, ttl: ttl}
}

func (c *ReportCache) key(childID string) string {
	return "report:" + childID
}

// Get returns the cached report, or false on any miss or error.
func (c *ReportCache) Get(ctx context.Context, childID string) (*ProgressReport, bool) {
	if c == nil || c.cache == nil {
		return nil, false
	}
	var r ProgressReport
	if err := c.cache.Get(ctx, c.key(childID), &r); err != nil {
		return nil, false
	}
	return &r, true
}

// Set stores the report, best effort.
func (c *ReportCache) Set(ctx context.Context, childID string, r *ProgressReport) {
	if c == nil || c.cache == nil {
		return
	}
	_ = c.cache.Set(ctx, c.key(childID), r, c.ttl)
}

// Invalidate drops the cached report. Implements the invalidator used by
// the profile rebuild event handler.
func (c *ReportCache) Invalidate(ctx context.Context, childID string) error {
	if c == nil || c.cache == nil {
		return nil
	}
	return c.cache.Delete(ctx, c.key(childID))
}

// ProgressReportQuery assembles the dashboard.
type ProgressReportQuery struct {
	childRepo      child.Repository
	progressRepo   lesson.ProgressRepository
	skillRepo      skill.Repository
	badgeRepo      badge.Repository
	assessmentRepo assessment.Repository
	curriculumRepo curriculum.Repository
	learnerRepo    learner.Repository
	catalog        *lesson.Catalog
	reportCache    *ReportCache
	logger         *slog.Logger
}

// NewProgressReportQuery creates the query.
func NewProgressReportQuery(
	childRepo child.Repository,
	progressRepo lesson.ProgressRepository,
	skillRepo skill.Repository,
	badgeRepo badge.Repository,
	assessmentRepo assessment.Repository,
	curriculumRepo curriculum.Repository,
	learnerRepo learner.Repository,
	catalog *lesson.Catalog,
	reportCache *ReportCache,
	logger *slog.Logger,
) *ProgressReportQuery {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressReportQuery{
		childRepo:      childRepo,
		progressRepo:   progressRepo,
		skillRepo:      skillRepo,
		badgeRepo:      badgeRepo,
		assessmentRepo: assessmentRepo,
		curriculumRepo: curriculumRepo,
		learnerRepo:    learnerRepo,
		catalog:        catalog,
		reportCache:    reportCache,
		logger:         logger.With("query", "progress_report"),
	}
}

// Handle builds the report, serving from cache when possible.
func (q *ProgressReportQuery) Handle(ctx context.Context, childID string) (*ProgressReport, error) {
	if !shared.ChildID(childID).IsValid() {
		return nil, errors.New("progress_report: valid child_id is required")
	}

	if cached, ok := q.reportCache.Get(ctx, childID); ok {
		return cached, nil
	}

	cid := shared.ChildID(childID)
	ch, err := q.childRepo.GetByID(ctx, cid)
	if err != nil {
		return nil, fmt.Errorf("progress_report: failed to get child: %w", err)
	}

	report := &ProgressReport{
		ChildID:     childID,
		ChildName:   ch.Name,
		Age:         ch.Age,
		Tier:        int(ch.Tier),
		WeeklyGoal:  ch.WeeklyLessonGoal,
		GeneratedAt: time.Now().UTC(),
	}

	if completed, err := q.progressRepo.CountCompleted(ctx, cid); err == nil {
		report.LessonsCompleted = completed
	}

	if skills, err := q.skillRepo.ListByChild(ctx, cid); err == nil {
		for _, s := range skills {
			report.Skills = append(report.Skills, SkillSummary{
				Category: s.Category.String(),
				Name:     s.Name,
				Score:    s.Score,
				Level:    string(s.Level),
				Attempts: s.TotalAttempts,
			})
		}
	}

	if achievements, err := q.badgeRepo.ListByChild(ctx, cid); err == nil {
		defs := badge.Definitions()
		for _, a := range achievements {
			summary := BadgeSummary{BadgeID: a.BadgeID, EarnedAt: a.EarnedAt}
			if def, ok := defs[a.BadgeID]; ok {
				summary.Title = def.Title
			}
			report.Badges = append(report.Badges, summary)
		}
	}

	if records, err := q.assessmentRepo.RecentByChild(ctx, cid, recentAssessmentLimit); err == nil {
		for _, r := range records {
			work := RecentWork{
				LessonID:     r.Assessment.LessonID.String(),
				OverallScore: r.Assessment.OverallScore,
				WordCount:    r.WordCount,
				IsRevision:   r.Assessment.IsRevision(),
				CreatedAt:    r.Assessment.CreatedAt,
			}
			if l := q.catalog.Get(r.Assessment.LessonID); l != nil {
				work.LessonTitle = l.Title
			}
			report.Recent = append(report.Recent, work)
		}
	}

	if profile, err := q.learnerRepo.Get(ctx, cid); err == nil {
		report.Profile = profile
	}

	if cur, err := q.curriculumRepo.GetActive(ctx, cid); err == nil {
		for _, w := range cur.Weeks {
			if w.Status == curriculum.WeekPending {
				report.UpcomingWeeks = append(report.UpcomingWeeks, w)
			}
		}
	}

	q.reportCache.Set(ctx, childID, report)
	return report, nil
}
