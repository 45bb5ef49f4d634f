package lesson

import (
	"fmt"
	"sort"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG
// The lesson catalog is static: four writing types, six units each, split
// across three tiers (units 1-2 → tier 1, 3-4 → tier 2, 5-6 → tier 3).
// Curriculum plans and the adaptation engine select from this catalog.
// ══════════════════════════════════════════════════════════════════════════════

// UnitsPerType is the number of units in each writing type track.
const UnitsPerType = 6

// Catalog holds every lesson and answers lookup queries for the curriculum
// and adaptation engines.
type Catalog struct {
	byID    map[shared.LessonID]*Lesson
	ordered []*Lesson
}

// NewCatalog builds the default lesson catalog.
func NewCatalog() *Catalog {
	c := &Catalog{byID: make(map[shared.LessonID]*Lesson)}
	for _, wt := range shared.AllWritingTypes() {
		for unit := 1; unit <= UnitsPerType; unit++ {
			l := buildLesson(wt, unit)
			c.byID[l.ID] = l
			c.ordered = append(c.ordered, l)
		}
	}
	sort.Slice(c.ordered, func(i, j int) bool {
		a, b := c.ordered[i], c.ordered[j]
		if a.UnitNumber != b.UnitNumber {
			return a.UnitNumber < b.UnitNumber
		}
		return a.WritingType < b.WritingType
	})
	return c
}

// LessonIDFor builds the canonical lesson slug for a writing type and unit.
func LessonIDFor(wt shared.WritingType, unit int) shared.LessonID {
	return shared.LessonID(fmt.Sprintf("%s-%d", wt, unit))
}

func tierForUnit(unit int) shared.Tier {
	switch {
	case unit <= 2:
		return shared.Tier1
	case unit <= 4:
		return shared.Tier2
	default:
		return shared.Tier3
	}
}

func buildLesson(wt shared.WritingType, unit int) *Lesson {
	tier := tierForUnit(unit)
	return &Lesson{
		ID:          LessonIDFor(wt, unit),
		Title:       lessonTitles[wt][unit-1],
		WritingType: wt,
		UnitNumber:  unit,
		Tier:        tier,
		Objective:   lessonObjectives[wt][unit-1],
		Rubric:      rubricFor(wt, tier),
	}
}

// Get returns the lesson with the given id, or nil if unknown.
func (c *Catalog) Get(id shared.LessonID) *Lesson {
	return c.byID[id]
}

// Contains reports whether the id names a known lesson.
func (c *Catalog) Contains(id shared.LessonID) bool {
	_, ok := c.byID[id]
	return ok
}

// All returns every lesson in unit order.
func (c *Catalog) All() []*Lesson {
	out := make([]*Lesson, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// ForTier returns every lesson whose tier is at or below the given tier,
// in unit order. Children can always revisit easier material.
func (c *Catalog) ForTier(tier shared.Tier) []*Lesson {
	var out []*Lesson
	for _, l := range c.ordered {
		if l.Tier <= tier {
			out = append(out, l)
		}
	}
	return out
}

// ByType returns every lesson of a writing type, in unit order.
func (c *Catalog) ByType(wt shared.WritingType) []*Lesson {
	var out []*Lesson
	for _, l := range c.ordered {
		if l.WritingType == wt {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnitNumber < out[j].UnitNumber })
	return out
}

// Foundational returns lessons of the given type with a unit number strictly
// below the given unit, easiest first.
func (c *Catalog) Foundational(wt shared.WritingType, belowUnit int) []*Lesson {
	var out []*Lesson
	for _, l := range c.ByType(wt) {
		if l.UnitNumber < belowUnit {
			out = append(out, l)
		}
	}
	return out
}

// Advanced returns lessons of the given type with a unit number strictly
// above the given unit, easiest first.
func (c *Catalog) Advanced(wt shared.WritingType, aboveUnit int) []*Lesson {
	var out []*Lesson
	for _, l := range c.ByType(wt) {
		if l.UnitNumber > aboveUnit {
			out = append(out, l)
		}
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// LESSON → SKILL TABLE
// Each lesson develops one or two named skills. The table is keyed by
// (writing type, unit number) and drives the skill progress aggregator.
// ══════════════════════════════════════════════════════════════════════════════

var skillTable = map[shared.WritingType][UnitsPerType][]string{
	shared.WritingNarrative: {
		{"story structure"},
		{"story structure", "character detail"},
		{"character detail", "dialogue"},
		{"plot development"},
		{"plot development", "narrative voice"},
		{"narrative voice", "pacing"},
	},
	shared.WritingOpinion: {
		{"stating opinions"},
		{"stating opinions", "supporting reasons"},
		{"supporting reasons", "evidence use"},
		{"counterarguments"},
		{"counterarguments", "persuasive language"},
		{"persuasive language", "call to action"},
	},
	shared.WritingInformative: {
		{"topic focus"},
		{"topic focus", "facts and details"},
		{"facts and details", "paragraph structure"},
		{"explaining processes"},
		{"explaining processes", "comparing ideas"},
		{"comparing ideas", "source synthesis"},
	},
	shared.WritingDescriptive: {
		{"sensory details"},
		{"sensory details", "precise words"},
		{"precise words", "figurative language"},
		{"setting description"},
		{"setting description", "mood and tone"},
		{"mood and tone", "showing not telling"},
	},
}

// SkillsFor returns the 1-2 skills a lesson develops. Unknown combinations
// return nil rather than an error - the aggregator just skips them.
func SkillsFor(wt shared.WritingType, unit int) []SkillRef {
	units, ok := skillTable[wt]
	if !ok || unit < 1 || unit > UnitsPerType {
		return nil
	}
	names := units[unit-1]
	refs := make([]SkillRef, 0, len(names))
	for _, name := range names {
		refs = append(refs, SkillRef{Category: wt, Name: name})
	}
	return refs
}

// ══════════════════════════════════════════════════════════════════════════════
// STATIC CONTENT
// ══════════════════════════════════════════════════════════════════════════════

var lessonTitles = map[shared.WritingType][UnitsPerType]string{
	shared.WritingNarrative: {
		"Tell a Story from Start to Finish",
		"Bring Your Characters to Life",
		"Make Your Characters Talk",
		"Build an Exciting Plot",
		"Find Your Storytelling Voice",
		"Master the Art of Pacing",
	},
	shared.WritingOpinion: {
		"Say What You Think",
		"Back It Up with Reasons",
		"Prove It with Evidence",
		"See the Other Side",
		"Words That Persuade",
		"Move Your Reader to Act",
	},
	shared.WritingInformative: {
		"Pick a Topic and Stick to It",
		"Fill It with Facts",
		"Build Strong Paragraphs",
		"Explain How Things Work",
		"Compare and Contrast",
		"Weave Sources Together",
	},
	shared.WritingDescriptive: {
		"Use All Five Senses",
		"Choose the Perfect Word",
		"Paint with Comparisons",
		"Describe a Place",
		"Set the Mood",
		"Show, Don't Tell",
	},
}

var lessonObjectives = map[shared.WritingType][UnitsPerType]string{
	shared.WritingNarrative: {
		"Write a story with a clear beginning, middle, and end",
		"Describe characters with specific, memorable details",
		"Use dialogue to reveal character and move the story forward",
		"Build rising action toward a satisfying climax",
		"Develop a consistent narrative voice",
		"Control pacing by varying sentence and scene length",
	},
	shared.WritingOpinion: {
		"State a clear opinion in an opening sentence",
		"Support an opinion with at least two reasons",
		"Strengthen reasons with concrete evidence or examples",
		"Acknowledge and respond to an opposing view",
		"Use persuasive words and phrases deliberately",
		"Close with a call to action that fits the argument",
	},
	shared.WritingInformative: {
		"Introduce a topic and keep every sentence on it",
		"Support a topic with accurate facts and details",
		"Organize facts into well-structured paragraphs",
		"Explain a process in clear sequential steps",
		"Compare two subjects using parallel structure",
		"Combine information from multiple sources",
	},
	shared.WritingDescriptive: {
		"Describe a subject using at least three senses",
		"Replace vague words with precise ones",
		"Use similes and metaphors to sharpen images",
		"Describe a place so a reader can stand in it",
		"Create a mood through word choice",
		"Convey feelings through actions and details instead of labels",
	},
}

// rubricFor builds the rubric for a writing type at a tier. Criteria are
// fixed per type; word ranges widen with tier.
func rubricFor(wt shared.WritingType, tier shared.Tier) *Rubric {
	minWords, maxWords := wordRangeForTier(tier)
	criteria, ok := rubricCriteria[wt]
	if !ok {
		return nil
	}
	return &Rubric{
		Name:     fmt.Sprintf("%s-tier%d", wt, tier),
		Criteria: criteria,
		MinWords: minWords,
		MaxWords: maxWords,
	}
}

func wordRangeForTier(tier shared.Tier) (int, int) {
	switch tier {
	case shared.Tier1:
		return 20, 100
	case shared.Tier2:
		return 50, 200
	default:
		return 80, 300
	}
}

var rubricCriteria = map[shared.WritingType][]Criterion{
	shared.WritingNarrative: {
		{Name: "organization", Weight: 0.3, Description: "Clear beginning, middle, and end"},
		{Name: "ideas", Weight: 0.3, Description: "Original, developed story ideas"},
		{Name: "word_choice", Weight: 0.2, Description: "Vivid, specific vocabulary"},
		{Name: "conventions", Weight: 0.2, Description: "Spelling, punctuation, grammar"},
	},
	shared.WritingOpinion: {
		{Name: "opinion_clarity", Weight: 0.3, Description: "Opinion stated clearly up front"},
		{Name: "reasons_evidence", Weight: 0.3, Description: "Reasons backed by evidence"},
		{Name: "organization", Weight: 0.2, Description: "Logical flow from opinion to conclusion"},
		{Name: "conventions", Weight: 0.2, Description: "Spelling, punctuation, grammar"},
	},
	shared.WritingInformative: {
		{Name: "focus", Weight: 0.3, Description: "Stays on topic throughout"},
		{Name: "facts_details", Weight: 0.3, Description: "Accurate supporting facts and details"},
		{Name: "organization", Weight: 0.2, Description: "Grouped, ordered information"},
		{Name: "conventions", Weight: 0.2, Description: "Spelling, punctuation, grammar"},
	},
	shared.WritingDescriptive: {
		{Name: "sensory_details", Weight: 0.3, Description: "Engages multiple senses"},
		{Name: "word_choice", Weight: 0.3, Description: "Precise, evocative vocabulary"},
		{Name: "organization", Weight: 0.2, Description: "Details arranged purposefully"},
		{Name: "conventions", Weight: 0.2, Description: "Spelling, punctuation, grammar"},
	},
}
