package command

import (
	"context"
	"sync"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/assessment"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/badge"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/child"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/coach"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/curriculum"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/learner"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/session"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// In-memory fakes shared by the command handler tests.

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[shared.SessionID]*session.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[shared.SessionID]*session.Session{}}
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id shared.SessionID) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, shared.NewDomainError("session", "Get", shared.ErrNotFound, "session not found")
	}
	return s, nil
}

func (r *fakeSessionRepo) GetActive(_ context.Context, childID shared.ChildID, lessonID shared.LessonID) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ChildID == childID && s.LessonID == lessonID && s.Phase != session.PhaseFeedback {
			return s, nil
		}
	}
	return nil, shared.NewDomainError("session", "GetActive", shared.ErrNotFound, "no active session")
}

func (r *fakeSessionRepo) Create(_ context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeSessionRepo) Save(_ context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	s.Version++
	return nil
}

type fakeChildRepo struct {
	children map[shared.ChildID]*child.Child
}

func newFakeChildRepo(children ...*child.Child) *fakeChildRepo {
	repo := &fakeChildRepo{children: map[shared.ChildID]*child.Child{}}
	for _, c := range children {
		repo.children[c.ID] = c
	}
	return repo
}

func (r *fakeChildRepo) GetByID(_ context.Context, id shared.ChildID) (*child.Child, error) {
	c, ok := r.children[id]
	if !ok {
		return nil, shared.NewDomainError("child", "GetByID", shared.ErrNotFound, "child not found")
	}
	return c, nil
}

func (r *fakeChildRepo) Create(_ context.Context, c *child.Child) error {
	r.children[c.ID] = c
	return nil
}

func (r *fakeChildRepo) Save(_ context.Context, c *child.Child) error {
	r.children[c.ID] = c
	return nil
}

type fakeProgressRepo struct {
	records map[string]*lesson.Progress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: map[string]*lesson.Progress{}}
}

func progressKey(childID shared.ChildID, lessonID shared.LessonID) string {
	return childID.String() + "/" + lessonID.String()
}

func (r *fakeProgressRepo) Get(_ context.Context, childID shared.ChildID, lessonID shared.LessonID) (*lesson.Progress, error) {
	p, ok := r.records[progressKey(childID, lessonID)]
	if !ok {
		return nil, shared.NewDomainError("lesson", "GetProgress", shared.ErrNotFound, "progress not found")
	}
	return p, nil
}

func (r *fakeProgressRepo) Save(_ context.Context, p *lesson.Progress) error {
	r.records[progressKey(p.ChildID, p.LessonID)] = p
	return nil
}

func (r *fakeProgressRepo) ListByChild(_ context.Context, childID shared.ChildID) ([]*lesson.Progress, error) {
	var out []*lesson.Progress
	for _, p := range r.records {
		if p.ChildID == childID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) CountCompleted(_ context.Context, childID shared.ChildID) (int, error) {
	count := 0
	for _, p := range r.records {
		if p.ChildID == childID && p.Status == lesson.StatusCompleted {
			count++
		}
	}
	return count, nil
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

type fakeAssessmentRepo struct {
	pairs []*assessment.Assessment
}

func (r *fakeAssessmentRepo) SavePair(_ context.Context, a *assessment.Assessment, _ *assessment.Submission) error {
	r.pairs = append(r.pairs, a)
	return nil
}

func (r *fakeAssessmentRepo) GetByID(_ context.Context, id string) (*assessment.Assessment, error) {
	for _, a := range r.pairs {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, shared.NewDomainError("assessment", "Get", shared.ErrNotFound, "not found")
}

func (r *fakeAssessmentRepo) LatestForSession(_ context.Context, sessionID shared.SessionID) (*assessment.Assessment, error) {
	for i := len(r.pairs) - 1; i >= 0; i-- {
		if r.pairs[i].SessionID == sessionID {
			return r.pairs[i], nil
		}
	}
	return nil, shared.NewDomainError("assessment", "Latest", shared.ErrNotFound, "not found")
}

func (r *fakeAssessmentRepo) RecentByChild(_ context.Context, childID shared.ChildID, limit int) ([]*assessment.AssessmentRecord, error) {
	var out []*assessment.AssessmentRecord
	for i := len(r.pairs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.pairs[i].ChildID == childID {
			out = append(out, &assessment.AssessmentRecord{Assessment: r.pairs[i]})
		}
	}
	return out, nil
}

func (r *fakeAssessmentRepo) CountByChild(_ context.Context, childID shared.ChildID) (int, error) {
	count := 0
	for _, a := range r.pairs {
		if a.ChildID == childID {
			count++
		}
	}
	return count, nil
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

// fakeCoach returns scripted responses.
type fakeCoach struct {
	reply    string
	replyErr error

	evaluation *coach.Evaluation
	evalErr    error
	evalCalls  int

	plans   []coach.WeekPlan
	planErr error
}

func (c *fakeCoach) Reply(_ context.Context, _ coach.TurnContext) (string, error) {
	return c.reply, c.replyErr
}

func (c *fakeCoach) EvaluateRubric(_ context.Context, _ *lesson.Lesson, _ string) (*coach.Evaluation, error) {
	c.evalCalls++
	return c.evaluation, c.evalErr
}

func (c *fakeCoach) EvaluateGeneral(_ context.Context, _ *lesson.Lesson, _ string) (*coach.Evaluation, error) {
	c.evalCalls++
	return c.evaluation, c.evalErr
}

func (c *fakeCoach) PlanWeeks(_ context.Context, _ shared.Tier, _ []int, _, _ string) ([]coach.WeekPlan, error) {
	return c.plans, c.planErr
}

type fakePublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *fakePublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) byType(t shared.EventType) []shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.Event
	for _, e := range p.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}
