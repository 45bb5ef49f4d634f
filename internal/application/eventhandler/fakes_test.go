package eventhandler

import (
	"context"

	"github.com/google/uuid"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/assessment"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/badge"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/curriculum"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/learner"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/skill"
)

// In-memory fakes for the event handler tests.

func recordedEvent(childID string) shared.AssessmentRecordedEvent {
	return shared.AssessmentRecordedEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventAssessmentRecorded, uuid.NewString()),
		AssessmentID: uuid.NewString(),
		SessionID:    uuid.NewString(),
		ChildID:      childID,
		LessonID:     "narrative-2",
		WritingType:  "narrative",
		UnitNumber:   2,
		OverallScore: 3.0,
		WordCount:    80,
	}
}

type fakeSkillRepo struct {
	records map[string]*skill.Progress
}

func newFakeSkillRepo() *fakeSkillRepo {
	return &fakeSkillRepo{records: map[string]*skill.Progress{}}
}

func skillKey(childID shared.ChildID, category shared.WritingType, name string) string {
	return childID.String() + "/" + category.String() + "/" + name
}

func (r *fakeSkillRepo) Get(_ context.Context, childID shared.ChildID, category shared.WritingType, name string) (*skill.Progress, error) {
	p, ok := r.records[skillKey(childID, category, name)]
	if !ok {
		return nil, shared.NewDomainError("skill", "Get", shared.ErrNotFound, "skill not found")
	}
	return p, nil
}

func (r *fakeSkillRepo) Save(_ context.Context, p *skill.Progress) error {
	r.records[skillKey(p.ChildID, p.Category, p.Name)] = p
	return nil
}

func (r *fakeSkillRepo) ListByChild(_ context.Context, childID shared.ChildID) ([]*skill.Progress, error) {
	var out []*skill.Progress
	for _, p := range r.records {
		if p.ChildID == childID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeAssessmentRepo struct {
	records []*assessment.AssessmentRecord
}

func (r *fakeAssessmentRepo) SavePair(_ context.Context, _ *assessment.Assessment, _ *assessment.Submission) error {
	return nil
}

func (r *fakeAssessmentRepo) GetByID(_ context.Context, _ string) (*assessment.Assessment, error) {
	return nil, shared.NewDomainError("assessment", "Get", shared.ErrNotFound, "not found")
}

func (r *fakeAssessmentRepo) LatestForSession(_ context.Context, _ shared.SessionID) (*assessment.Assessment, error) {
	return nil, shared.NewDomainError("assessment", "Latest", shared.ErrNotFound, "not found")
}

func (r *fakeAssessmentRepo) RecentByChild(_ context.Context, _ shared.ChildID, limit int) ([]*assessment.AssessmentRecord, error) {
	if len(r.records) > limit {
		return r.records[:limit], nil
	}
	return r.records, nil
}

func (r *fakeAssessmentRepo) CountByChild(_ context.Context, _ shared.ChildID) (int, error) {
	return len(r.records), nil
}

type fakeCurriculumRepo struct {
	active    map[shared.ChildID]*curriculum.Curriculum
	revisions []*curriculum.Revision
}

func newFakeCurriculumRepo(curricula ...*curriculum.Curriculum) *fakeCurriculumRepo {
	repo := &fakeCurriculumRepo{active: map[shared.ChildID]*curriculum.Curriculum{}}
	for _, c := range curricula {
		repo.active[c.ChildID] = c
	}
	return repo
}

func (r *fakeCurriculumRepo) GetActive(_ context.Context, childID shared.ChildID) (*curriculum.Curriculum, error) {
	c, ok := r.active[childID]
	if !ok {
		return nil, shared.NewDomainError("curriculum", "GetActive", shared.ErrNotFound, "none")
	}
	return c, nil
}

func (r *fakeCurriculumRepo) Create(_ context.Context, c *curriculum.Curriculum) error {
	r.active[c.ChildID] = c
	return nil
}

func (r *fakeCurriculumRepo) SaveWithRevision(_ context.Context, c *curriculum.Curriculum, rev *curriculum.Revision) error {
	r.active[c.ChildID] = c
	r.revisions = append(r.revisions, rev)
	return nil
}

func (r *fakeCurriculumRepo) ListRevisions(_ context.Context, _ string) ([]*curriculum.Revision, error) {
	return r.revisions, nil
}

type fakeLearnerRepo struct {
	profiles map[shared.ChildID]*learner.Profile
}

func newFakeLearnerRepo() *fakeLearnerRepo {
	return &fakeLearnerRepo{profiles: map[shared.ChildID]*learner.Profile{}}
}

func (r *fakeLearnerRepo) Get(_ context.Context, childID shared.ChildID) (*learner.Profile, error) {
	p, ok := r.profiles[childID]
	if !ok {
		return nil, shared.NewDomainError("learner", "Get", shared.ErrNotFound, "profile not found")
	}
	return p, nil
}

func (r *fakeLearnerRepo) Upsert(_ context.Context, p *learner.Profile) error {
	r.profiles[p.ChildID] = p
	return nil
}

type fakeBadgeRepo struct {
	earned map[string]bool
}

func newFakeBadgeRepo() *fakeBadgeRepo {
	return &fakeBadgeRepo{earned: map[string]bool{}}
}

func (r *fakeBadgeRepo) Award(_ context.Context, a *badge.Achievement) error {
	r.earned[a.BadgeID] = true
	return nil
}

func (r *fakeBadgeRepo) EarnedIDs(_ context.Context, _ shared.ChildID) (map[string]bool, error) {
	out := make(map[string]bool, len(r.earned))
	for id := range r.earned {
		out[id] = true
	}
	return out, nil
}

func (r *fakeBadgeRepo) ListByChild(_ context.Context, _ shared.ChildID) ([]*badge.Achievement, error) {
	return nil, nil
}

type fakeFactsLoader struct {
	facts *badge.Facts
}

func (l *fakeFactsLoader) Load(_ context.Context, _ shared.ChildID) (*badge.Facts, error) {
	return l.facts, nil
}

type fakeInvalidator struct {
	invalidated []string
}

func (i *fakeInvalidator) Invalidate(_ context.Context, childID string) error {
	i.invalidated = append(i.invalidated, childID)
	return nil
}

type fakePublisher struct {
	events []shared.Event
}

func (p *fakePublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}
