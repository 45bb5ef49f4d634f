package badge

import (
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// Facts is everything the badge predicates can see, fetched in one batch
// per evaluation. Predicates never touch a repository; adding a badge that
// needs new data means extending Facts and its loader together.
type Facts struct {
	// CompletedLessons is the number of lessons with completed status.
	CompletedLessons int

	// MaxWordCount is the longest submission the child ever wrote.
	MaxWordCount int

	// HasRevised is true when the child has submitted at least one revision.
	HasRevised bool

	// CompletedByType flags which writing types have at least one
	// completed lesson.
	CompletedByType map[shared.WritingType]bool

	// HighScoreCount counts assessments with an overall score of 3.5 or more.
	HighScoreCount int

	// HasPerfectScore is true when any assessment scored 4.0 overall.
	HasPerfectScore bool

	// ProficientSkills counts skills at PROFICIENT or ADVANCED level.
	ProficientSkills int

	// BestScoreByCategory is each writing type's best rolling skill score.
	// Missing categories mean the child has no skill record there yet.
	BestScoreByCategory map[shared.WritingType]float64

	// CurrentStreak and LongestStreak count consecutive active days.
	CurrentStreak int
	LongestStreak int

	// WeeklyGoalMet is true when this week's lesson goal has been reached.
	WeeklyGoalMet bool

	// EarlyBirdCompletion and NightOwlCompletion flag whether any lesson
	// completion happened before 9am or after 8pm local time.
	EarlyBirdCompletion bool
	NightOwlCompletion  bool
}

// WellRounded reports whether every writing type has a best skill score of
// at least 2.0.
func (f *Facts) WellRounded() bool {
	for _, wt := range shared.AllWritingTypes() {
		if f.BestScoreByCategory[wt] < 2.0 {
			return false
		}
	}
	return true
}

// CompletedAllTypes reports whether every writing type has at least one
// completed lesson.
func (f *Facts) CompletedAllTypes() bool {
	for _, wt := range shared.AllWritingTypes() {
		if !f.CompletedByType[wt] {
			return false
		}
	}
	return true
}
