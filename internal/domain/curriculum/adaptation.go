package curriculum

import (
	"fmt"
	"time"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADAPTATION ENGINE
// Runs after every assessment write. Tests three triggers in fixed
// priority order and fires at most one per invocation. Only pending
// weeks are ever touched, and only the next two of them.
// ══════════════════════════════════════════════════════════════════════════════

// Trigger identifies which adaptation rule fired.
type Trigger string

const (
	TriggerNone         Trigger = ""
	TriggerStruggling   Trigger = "struggling"
	TriggerExcelling    Trigger = "excelling"
	TriggerTypeWeakness Trigger = "type_weakness"
)

// Adaptation thresholds and windows.
const (
	// minAssessments is the history size below which adaptation never runs.
	minAssessments = 3

	// historyWindow caps how much recent history the triggers examine.
	historyWindow = 10

	// strugglingWindow and strugglingCeiling: the last 3 scores all below 2.0.
	strugglingWindow  = 3
	strugglingCeiling = 2.0

	// excellingWindow and excellingFloor: the last 5 scores all above 3.5.
	excellingWindow = 5
	excellingFloor  = 3.5

	// weakTypeMinSamples and weakTypeCeiling: a writing type averaging
	// below 2.0 across at least 3 recent assessments.
	weakTypeMinSamples = 3
	weakTypeCeiling    = 2.0

	// adaptWeekSpan is how many upcoming pending weeks one adaptation
	// may rewrite.
	adaptWeekSpan = 2
)

// ScoreRecord is the slice of assessment history the engine consumes,
// most recent first.
type ScoreRecord struct {
	OverallScore float64
	WritingType  shared.WritingType
	UnitNumber   int
}

// Result describes what an adaptation did.
type Result struct {
	Trigger      Trigger
	WeeksChanged int
	Revision     *Revision
}

// Fired reports whether any trigger matched and changed the plan.
func (r Result) Fired() bool { return r.Trigger != TriggerNone && r.WeeksChanged > 0 }

// Engine rewrites pending curriculum weeks from assessment performance.
type Engine struct {
	catalog *lesson.Catalog
}

// NewEngine creates the adaptation engine over a lesson catalog.
func NewEngine(catalog *lesson.Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Adapt examines recent history and, when a trigger fires, mutates the
// curriculum's next pending weeks in place. A Revision snapshot is taken
// before any week is touched and returned in the result; the caller
// persists both. History must be ordered most recent first.
func (e *Engine) Adapt(cur *Curriculum, history []ScoreRecord, now time.Time) Result {
	if cur == nil || !cur.Active || len(history) < minAssessments {
		return Result{}
	}
	if len(history) > historyWindow {
		history = history[:historyWindow]
	}

	trigger, weakType := e.detectTrigger(history)
	if trigger == TriggerNone {
		return Result{}
	}

	pending := cur.PendingWeeks()
	if len(pending) == 0 {
		return Result{}
	}
	if len(pending) > adaptWeekSpan {
		pending = pending[:adaptWeekSpan]
	}

	previous := cur.Snapshot()
	scheduled := cur.ScheduledLessonIDs()

	var changed int
	switch trigger {
	case TriggerStruggling:
		changed = e.easeWeeks(pending, scheduled)
	case TriggerExcelling:
		changed = e.stretchWeeks(pending, scheduled)
	case TriggerTypeWeakness:
		changed = e.reinforceType(pending, scheduled, weakType)
	}

	if changed == 0 {
		return Result{}
	}

	rev := NewRevision(cur, reasonForTrigger(trigger), describeTrigger(trigger, weakType),
		previous, cur.Snapshot(), now)
	cur.UpdatedAt = now

	return Result{Trigger: trigger, WeeksChanged: changed, Revision: rev}
}

// detectTrigger tests the three rules in priority order.
func (e *Engine) detectTrigger(history []ScoreRecord) (Trigger, shared.WritingType) {
	if allBelow(history, strugglingWindow, strugglingCeiling) {
		return TriggerStruggling, ""
	}
	if allAbove(history, excellingWindow, excellingFloor) {
		return TriggerExcelling, ""
	}
	if weak, ok := e.weakestType(history); ok {
		return TriggerTypeWeakness, weak
	}
	return TriggerNone, ""
}

func allBelow(history []ScoreRecord, window int, ceiling float64) bool {
	if len(history) < window {
		return false
	}
	for _, rec := range history[:window] {
		if rec.OverallScore >= ceiling {
			return false
		}
	}
	return true
}

func allAbove(history []ScoreRecord, window int, floor float64) bool {
	if len(history) < window {
		return false
	}
	for _, rec := range history[:window] {
		if rec.OverallScore <= floor {
			return false
		}
	}
	return true
}

// weakestType finds the writing type with the lowest average score among
// types with enough recent samples, if that average is under the ceiling.
func (e *Engine) weakestType(history []ScoreRecord) (shared.WritingType, bool) {
	sums := map[shared.WritingType]float64{}
	counts := map[shared.WritingType]int{}
	for _, rec := range history {
		sums[rec.WritingType] += rec.OverallScore
		counts[rec.WritingType]++
	}

	var weak shared.WritingType
	lowest := weakTypeCeiling
	for _, wt := range shared.AllWritingTypes() {
		if counts[wt] < weakTypeMinSamples {
			continue
		}
		avg := sums[wt] / float64(counts[wt])
		if avg < lowest {
			lowest = avg
			weak = wt
		}
	}
	return weak, weak != ""
}

// easeWeeks swaps roughly half of each week's lessons, front first, for
// foundational lessons of the same writing types.
func (e *Engine) easeWeeks(pending []*Week, scheduled map[shared.LessonID]bool) int {
	var weeksChanged int
	for _, week := range pending {
		target := len(week.LessonIDs) / 2
		if target == 0 && len(week.LessonIDs) > 0 {
			target = 1
		}
		var swapped int
		for i := 0; i < len(week.LessonIDs) && swapped < target; i++ {
			current := e.catalog.Get(week.LessonIDs[i])
			if current == nil {
				continue
			}
			replacement := pickReplacement(
				e.catalog.Foundational(current.WritingType, current.UnitNumber), scheduled)
			if replacement == nil {
				continue
			}
			e.swap(week, i, replacement.ID, scheduled)
			swapped++
		}
		if swapped > 0 {
			weeksChanged++
		}
	}
	return weeksChanged
}

// stretchWeeks swaps roughly half of each week's lessons, back first, for
// advanced lessons of the same writing types.
func (e *Engine) stretchWeeks(pending []*Week, scheduled map[shared.LessonID]bool) int {
	var weeksChanged int
	for _, week := range pending {
		target := len(week.LessonIDs) / 2
		if target == 0 && len(week.LessonIDs) > 0 {
			target = 1
		}
		var swapped int
		for i := len(week.LessonIDs) - 1; i >= 0 && swapped < target; i-- {
			current := e.catalog.Get(week.LessonIDs[i])
			if current == nil {
				continue
			}
			replacement := pickReplacement(
				e.catalog.Advanced(current.WritingType, current.UnitNumber), scheduled)
			if replacement == nil {
				continue
			}
			e.swap(week, i, replacement.ID, scheduled)
			swapped++
		}
		if swapped > 0 {
			weeksChanged++
		}
	}
	return weeksChanged
}

// reinforceType replaces, per week, the first lesson not of the weak type
// with an unscheduled lesson of the weak type.
func (e *Engine) reinforceType(pending []*Week, scheduled map[shared.LessonID]bool,
	weak shared.WritingType) int {
	var weeksChanged int
	for _, week := range pending {
		for i, id := range week.LessonIDs {
			current := e.catalog.Get(id)
			if current == nil || current.WritingType == weak {
				continue
			}
			replacement := unscheduledOfType(e.catalog.ByType(weak), scheduled)
			if replacement == nil {
				break
			}
			e.swap(week, i, replacement.ID, scheduled)
			weeksChanged++
			break
		}
	}
	return weeksChanged
}

// pickReplacement prefers an unscheduled candidate; when every candidate
// is already on the plan it falls back to the easiest one.
func pickReplacement(candidates []*lesson.Lesson, scheduled map[shared.LessonID]bool) *lesson.Lesson {
	if len(candidates) == 0 {
		return nil
	}
	for _, c := range candidates {
		if !scheduled[c.ID] {
			return c
		}
	}
	return candidates[0]
}

// unscheduledOfType returns the first candidate not already on the plan,
// or nil. Unlike pickReplacement there is no fallback: scheduling the
// same weak-type lesson twice helps nobody.
func unscheduledOfType(candidates []*lesson.Lesson, scheduled map[shared.LessonID]bool) *lesson.Lesson {
	for _, c := range candidates {
		if !scheduled[c.ID] {
			return c
		}
	}
	return nil
}

// swap replaces one slot in a week's lesson list and keeps the scheduled
// set current so later swaps see the change.
func (e *Engine) swap(week *Week, i int, newID shared.LessonID, scheduled map[shared.LessonID]bool) {
	old := week.LessonIDs[i]
	week.LessonIDs[i] = newID
	delete(scheduled, old)
	scheduled[newID] = true
}

func reasonForTrigger(t Trigger) RevisionReason {
	switch t {
	case TriggerStruggling:
		return ReasonAdaptStruggling
	case TriggerExcelling:
		return ReasonAdaptExcelling
	default:
		return ReasonAdaptTypeWeakness
	}
}

func describeTrigger(t Trigger, weak shared.WritingType) string {
	switch t {
	case TriggerStruggling:
		return "recent scores low; eased upcoming weeks with foundational lessons"
	case TriggerExcelling:
		return "recent scores high; stretched upcoming weeks with advanced lessons"
	default:
		return fmt.Sprintf("%s scores lagging; reinforced upcoming weeks with %s lessons", weak, weak)
	}
}
