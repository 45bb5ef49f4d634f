package badge

import (
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE CATALOG
// Each badge id maps to one pure predicate over Facts. Evaluation order is
// irrelevant. Predicates run inside their own recover boundary so a panic
// in one rule never blocks the others.
// ══════════════════════════════════════════════════════════════════════════════

// Predicate decides whether a badge's condition holds for the given facts.
type Predicate func(f *Facts) bool

// Badge pairs a definition with its predicate.
type Badge struct {
	Definition
	Holds Predicate
}

// Catalog returns the full badge catalog.
func Catalog() []Badge {
	return []Badge{
		// Milestone badges
		{Definition{"first-steps", "First Steps", "Complete your first lesson"},
			func(f *Facts) bool { return f.CompletedLessons >= 1 }},
		{Definition{"getting-going", "Getting Going", "Complete 5 lessons"},
			func(f *Facts) bool { return f.CompletedLessons >= 5 }},
		{Definition{"dedicated-writer", "Dedicated Writer", "Complete 10 lessons"},
			func(f *Facts) bool { return f.CompletedLessons >= 10 }},
		{Definition{"prolific-author", "Prolific Author", "Complete 25 lessons"},
			func(f *Facts) bool { return f.CompletedLessons >= 25 }},
		{Definition{"writing-legend", "Writing Legend", "Complete 50 lessons"},
			func(f *Facts) bool { return f.CompletedLessons >= 50 }},

		// Length badges
		{Definition{"wordsmith", "Wordsmith", "Write a piece of 100 words or more"},
			func(f *Facts) bool { return f.MaxWordCount >= 100 }},
		{Definition{"storyteller", "Storyteller", "Write a piece of 250 words or more"},
			func(f *Facts) bool { return f.MaxWordCount >= 250 }},
		{Definition{"novelist-in-training", "Novelist in Training", "Write a piece of 500 words or more"},
			func(f *Facts) bool { return f.MaxWordCount >= 500 }},

		// Craft badges
		{Definition{"second-draft", "Second Draft", "Revise a piece of writing"},
			func(f *Facts) bool { return f.HasRevised }},
		{Definition{"rising-star", "Rising Star", "Score 3.5 or higher on an assessment"},
			func(f *Facts) bool { return f.HighScoreCount >= 1 }},
		{Definition{"consistent-star", "Consistent Star", "Score 3.5 or higher five times"},
			func(f *Facts) bool { return f.HighScoreCount >= 5 }},
		{Definition{"perfect-score", "Perfect Score", "Earn a perfect 4.0 on an assessment"},
			func(f *Facts) bool { return f.HasPerfectScore }},

		// Genre badges
		{Definition{"story-spinner", "Story Spinner", "Complete a narrative lesson"},
			func(f *Facts) bool { return f.CompletedByType[shared.WritingNarrative] }},
		{Definition{"opinion-champion", "Opinion Champion", "Complete an opinion lesson"},
			func(f *Facts) bool { return f.CompletedByType[shared.WritingOpinion] }},
		{Definition{"fact-finder", "Fact Finder", "Complete an informative lesson"},
			func(f *Facts) bool { return f.CompletedByType[shared.WritingInformative] }},
		{Definition{"scene-painter", "Scene Painter", "Complete a descriptive lesson"},
			func(f *Facts) bool { return f.CompletedByType[shared.WritingDescriptive] }},
		{Definition{"genre-explorer", "Genre Explorer", "Complete a lesson in every writing type"},
			func(f *Facts) bool { return f.CompletedAllTypes() }},

		// Skill badges
		{Definition{"skill-builder", "Skill Builder", "Reach proficient level in a skill"},
			func(f *Facts) bool { return f.ProficientSkills >= 1 }},
		{Definition{"well-rounded", "Well-Rounded Writer", "Build every writing type skill to 2.0 or higher"},
			func(f *Facts) bool { return f.WellRounded() }},

		// Habit badges
		{Definition{"three-day-streak", "On a Roll", "Write three days in a row"},
			func(f *Facts) bool { return f.CurrentStreak >= 3 || f.LongestStreak >= 3 }},
		{Definition{"week-streak", "Unstoppable", "Write seven days in a row"},
			func(f *Facts) bool { return f.CurrentStreak >= 7 || f.LongestStreak >= 7 }},
		{Definition{"weekly-goal", "Goal Getter", "Meet your weekly lesson goal"},
			func(f *Facts) bool { return f.WeeklyGoalMet }},
		{Definition{"early-bird", "Early Bird", "Finish a lesson before 9 in the morning"},
			func(f *Facts) bool { return f.EarlyBirdCompletion }},
		{Definition{"night-owl", "Night Owl", "Finish a lesson after 8 in the evening"},
			func(f *Facts) bool { return f.NightOwlCompletion }},
	}
}

// Definitions returns the catalog's definitions keyed by badge id, for
// display lookups.
func Definitions() map[string]Definition {
	catalog := Catalog()
	defs := make(map[string]Definition, len(catalog))
	for _, b := range catalog {
		defs[b.ID] = b.Definition
	}
	return defs
}

// Evaluate runs every predicate over the facts and returns the ids of
// badges that hold but are not yet earned. A panicking predicate counts
// as not holding; the caller logs it and the rest still run.
func Evaluate(f *Facts, earned map[string]bool, onPanic func(badgeID string, v interface{})) []string {
	var unlocked []string
	for _, b := range Catalog() {
		if earned[b.ID] {
			continue
		}
		if safeHolds(b, f, onPanic) {
			unlocked = append(unlocked, b.ID)
		}
	}
	return unlocked
}

func safeHolds(b Badge, f *Facts, onPanic func(badgeID string, v interface{})) (holds bool) {
	defer func() {
		if r := recover(); r != nil {
			holds = false
			if onPanic != nil {
				onPanic(b.ID, r)
			}
		}
	}()
	return b.Holds(f)
}
