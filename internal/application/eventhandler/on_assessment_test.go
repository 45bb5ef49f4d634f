package eventhandler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/assessment"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/badge"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/curriculum"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/skill"
)

func TestOnAssessmentSkills_CreatesAndSmooths(t *testing.T) {
	repo := newFakeSkillRepo()
	h := NewOnAssessmentSkillsHandler(repo, nil)

	childID := uuid.NewString()
	event := recordedEvent(childID)
	event.OverallScore = 3.0

	require.NoError(t, h.Handle(event))

	// narrative unit 2 develops two skills; both start at the raw score.
	refs := lesson.SkillsFor(shared.WritingNarrative, 2)
	require.Len(t, refs, 2)
	for _, ref := range refs {
		p, err := repo.Get(context.Background(), shared.ChildID(childID), ref.Category, ref.Name)
		require.NoError(t, err)
		assert.InDelta(t, 3.0, p.Score, 0.001)
		assert.Equal(t, 1, p.TotalAttempts)
	}

	// A second assessment folds in with the 0.7/0.3 weighting.
	event2 := recordedEvent(childID)
	event2.OverallScore = 2.0
	require.NoError(t, h.Handle(event2))

	p, err := repo.Get(context.Background(), shared.ChildID(childID), refs[0].Category, refs[0].Name)
	require.NoError(t, err)
	assert.InDelta(t, 0.7*2.0+0.3*3.0, p.Score, 0.001)
	assert.Equal(t, 2, p.TotalAttempts)
	assert.Equal(t, skill.LevelDeveloping, p.Level)
}

func TestOnAssessmentSkills_IgnoresForeignEvents(t *testing.T) {
	repo := newFakeSkillRepo()
	h := NewOnAssessmentSkillsHandler(repo, nil)

	require.NoError(t, h.Handle(shared.NewBadgeUnlockedEvent(uuid.NewString(), "first-steps")))
	assert.Empty(t, repo.records)
}

func TestOnAssessmentBadges_AwardsAndPublishes(t *testing.T) {
	badges := newFakeBadgeRepo()
	badges.earned["first-steps"] = true
	facts := &badge.Facts{
		CompletedLessons:    5,
		CompletedByType:     map[shared.WritingType]bool{shared.WritingNarrative: true},
		BestScoreByCategory: map[shared.WritingType]float64{},
	}
	pub := &fakePublisher{}
	h := NewOnAssessmentBadgesHandler(badges, &fakeFactsLoader{facts: facts}, pub, nil)

	require.NoError(t, h.Handle(recordedEvent(uuid.NewString())))

	assert.True(t, badges.earned["getting-going"])
	assert.True(t, badges.earned["story-spinner"])

	var unlocked []string
	for _, e := range pub.events {
		if b, ok := e.(shared.BadgeUnlockedEvent); ok {
			unlocked = append(unlocked, b.BadgeID)
		}
	}
	assert.Contains(t, unlocked, "getting-going")
	assert.NotContains(t, unlocked, "first-steps")
}

func adaptableCurriculum(childID shared.ChildID) *curriculum.Curriculum {
	weeks := []curriculum.Week{
		{WeekNumber: 1, Theme: "Stories", Status: curriculum.WeekInProgress,
			LessonIDs: []shared.LessonID{"narrative-1"}},
		{WeekNumber: 2, Theme: "More stories", Status: curriculum.WeekPending,
			LessonIDs: []shared.LessonID{"narrative-3", "narrative-4"}},
		{WeekNumber: 3, Theme: "Opinions", Status: curriculum.WeekPending,
			LessonIDs: []shared.LessonID{"opinion-3", "opinion-4"}},
	}
	return curriculum.NewCurriculum(childID, shared.Tier2, weeks, time.Now().UTC())
}

func strugglingHistory(childID string) []*assessment.AssessmentRecord {
	var out []*assessment.AssessmentRecord
	for i := 0; i < 3; i++ {
		out = append(out, &assessment.AssessmentRecord{
			Assessment: &assessment.Assessment{
				ID:           uuid.NewString(),
				ChildID:      shared.ChildID(childID),
				LessonID:     "narrative-3",
				OverallScore: 1.5,
			},
			WritingType: shared.WritingNarrative,
			UnitNumber:  3,
		})
	}
	return out
}

func TestOnAssessmentAdaptation_StrugglingTriggerEasesPlan(t *testing.T) {
	childID := uuid.NewString()
	cur := adaptableCurriculum(shared.ChildID(childID))
	curricula := newFakeCurriculumRepo(cur)
	assessments := &fakeAssessmentRepo{records: strugglingHistory(childID)}
	pub := &fakePublisher{}
	h := NewOnAssessmentAdaptationHandler(assessments, curricula,
		curriculum.NewEngine(lesson.NewCatalog()), pub, nil)

	require.NoError(t, h.Handle(recordedEvent(childID)))

	require.Len(t, curricula.revisions, 1)
	rev := curricula.revisions[0]
	assert.Equal(t, curriculum.ReasonAdaptStruggling, rev.Reason)

	// Pending weeks were eased; the in-progress week is untouched.
	saved := curricula.active[shared.ChildID(childID)]
	assert.Equal(t, []shared.LessonID{"narrative-1"}, saved.Weeks[0].LessonIDs)
	assert.NotEqual(t, rev.PreviousPlan[1].LessonIDs, saved.Weeks[1].LessonIDs)

	var adapted int
	for _, e := range pub.events {
		if e.EventType() == shared.EventCurriculumAdapted {
			adapted++
		}
	}
	assert.Equal(t, 1, adapted)
}

func TestOnAssessmentAdaptation_NoTriggerNoRevision(t *testing.T) {
	childID := uuid.NewString()
	cur := adaptableCurriculum(shared.ChildID(childID))
	curricula := newFakeCurriculumRepo(cur)

	// Mixed scores match no trigger.
	records := strugglingHistory(childID)
	records[1].Assessment.OverallScore = 3.2

	h := NewOnAssessmentAdaptationHandler(&fakeAssessmentRepo{records: records},
		curricula, curriculum.NewEngine(lesson.NewCatalog()), nil, nil)

	require.NoError(t, h.Handle(recordedEvent(childID)))
	assert.Empty(t, curricula.revisions)
}

func TestOnAssessmentAdaptation_NoActiveCurriculum(t *testing.T) {
	childID := uuid.NewString()
	curricula := newFakeCurriculumRepo()
	h := NewOnAssessmentAdaptationHandler(&fakeAssessmentRepo{records: strugglingHistory(childID)},
		curricula, curriculum.NewEngine(lesson.NewCatalog()), nil, nil)

	require.NoError(t, h.Handle(recordedEvent(childID)))
	assert.Empty(t, curricula.revisions)
}

func TestOnAssessmentProfile_RebuildsAndInvalidatesCache(t *testing.T) {
	childID := uuid.NewString()
	records := strugglingHistory(childID)
	learners := newFakeLearnerRepo()
	invalidator := &fakeInvalidator{}
	h := NewOnAssessmentProfileHandler(&fakeAssessmentRepo{records: records},
		learners, invalidator, nil)

	require.NoError(t, h.Handle(recordedEvent(childID)))

	profile, err := learners.Get(context.Background(), shared.ChildID(childID))
	require.NoError(t, err)
	assert.Equal(t, len(records), profile.SampleCount)
	assert.Equal(t, []string{childID}, invalidator.invalidated)
}
