// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import "time"

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Session events
	EventSessionStarted       EventType = "session.started"
	EventPhaseAdvanced        EventType = "session.phase_advanced"
	EventComprehensionPassed  EventType = "session.comprehension_passed"

	// Assessment events
	EventAssessmentRecorded EventType = "assessment.recorded"
	EventAssessmentRevised  EventType = "assessment.revised"

	// Lesson events
	EventLessonCompleted EventType = "lesson.completed"

	// Skill events
	EventSkillUpdated EventType = "skill.updated"

	// Badge events
	EventBadgeUnlocked EventType = "badge.unlocked"

	// Curriculum events
	EventCurriculumAdapted EventType = "curriculum.adapted"
	EventCurriculumRevised EventType = "curriculum.revised"

	// Learner profile events
	EventProfileRebuilt EventType = "profile.rebuilt"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Session Events
// ═══════════════════════════════════════════════════════════════════════════

// PhaseAdvancedEvent is emitted when a session moves to a new phase.
type PhaseAdvancedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	ChildID   string `json:"child_id"`
	LessonID  string `json:"lesson_id"`
	FromPhase string `json:"from_phase"`
	ToPhase   string `json:"to_phase"`
}

// Payload implements Event interface.
func (e PhaseAdvancedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id": e.SessionID,
		"child_id":   e.ChildID,
		"lesson_id":  e.LessonID,
		"from_phase": e.FromPhase,
		"to_phase":   e.ToPhase,
	}
}

// NewPhaseAdvancedEvent creates a new PhaseAdvancedEvent.
func NewPhaseAdvancedEvent(sessionID, childID, lessonID, from, to string) PhaseAdvancedEvent {
	return PhaseAdvancedEvent{
		BaseEvent: NewBaseEvent(EventPhaseAdvanced, sessionID),
		SessionID: sessionID,
		ChildID:   childID,
		LessonID:  lessonID,
		FromPhase: from,
		ToPhase:   to,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Assessment Events
// ═══════════════════════════════════════════════════════════════════════════

// AssessmentRecordedEvent is emitted after an assessment (original or
// revision) has been persisted. The four downstream aggregators subscribe to
// this event; everything they need is carried in the payload so each handler
// can run without re-reading the session.
type AssessmentRecordedEvent struct {
	BaseEvent
	AssessmentID   string             `json:"assessment_id"`
	SessionID      string             `json:"session_id"`
	ChildID        string             `json:"child_id"`
	LessonID       string             `json:"lesson_id"`
	WritingType    string             `json:"writing_type"`
	UnitNumber     int                `json:"unit_number"`
	Scores         map[string]float64 `json:"scores"`
	OverallScore   float64            `json:"overall_score"`
	WordCount      int                `json:"word_count"`
	HintsGiven     int                `json:"hints_given"`
	RevisionNumber int                `json:"revision_number"`
	TimeSpentSec   int                `json:"time_spent_sec"`
	LessonComplete bool               `json:"lesson_complete"`
}

// Payload implements Event interface.
func (e AssessmentRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"assessment_id":   e.AssessmentID,
		"session_id":      e.SessionID,
		"child_id":        e.ChildID,
		"lesson_id":       e.LessonID,
		"writing_type":    e.WritingType,
		"unit_number":     e.UnitNumber,
		"overall_score":   e.OverallScore,
		"word_count":      e.WordCount,
		"hints_given":     e.HintsGiven,
		"revision_number": e.RevisionNumber,
		"time_spent_sec":  e.TimeSpentSec,
		"lesson_complete": e.LessonComplete,
	}
}

// IsRevision reports whether this event was produced by a revision.
func (e AssessmentRecordedEvent) IsRevision() bool {
	return e.RevisionNumber > 0
}

// ═══════════════════════════════════════════════════════════════════════════
// Badge Events
// ═══════════════════════════════════════════════════════════════════════════

// BadgeUnlockedEvent is emitted when a child earns a badge.
type BadgeUnlockedEvent struct {
	BaseEvent
	ChildID string `json:"child_id"`
	BadgeID string `json:"badge_id"`
}

// Payload implements Event interface.
func (e BadgeUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"child_id": e.ChildID,
		"badge_id": e.BadgeID,
	}
}

// NewBadgeUnlockedEvent creates a new BadgeUnlockedEvent.
func NewBadgeUnlockedEvent(childID, badgeID string) BadgeUnlockedEvent {
	return BadgeUnlockedEvent{
		BaseEvent: NewBaseEvent(EventBadgeUnlocked, childID),
		ChildID:   childID,
		BadgeID:   badgeID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Curriculum Events
// ═══════════════════════════════════════════════════════════════════════════

// CurriculumAdaptedEvent is emitted when the adaptation engine rewrites
// pending weeks of a child's curriculum.
type CurriculumAdaptedEvent struct {
	BaseEvent
	ChildID      string `json:"child_id"`
	CurriculumID string `json:"curriculum_id"`
	Trigger      string `json:"trigger"`
	WeeksChanged int    `json:"weeks_changed"`
}

// Payload implements Event interface.
func (e CurriculumAdaptedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"child_id":      e.ChildID,
		"curriculum_id": e.CurriculumID,
		"trigger":       e.Trigger,
		"weeks_changed": e.WeeksChanged,
	}
}

// NewCurriculumAdaptedEvent creates a new CurriculumAdaptedEvent.
func NewCurriculumAdaptedEvent(childID, curriculumID, trigger string, weeksChanged int) CurriculumAdaptedEvent {
	return CurriculumAdaptedEvent{
		BaseEvent:    NewBaseEvent(EventCurriculumAdapted, curriculumID),
		ChildID:      childID,
		CurriculumID: curriculumID,
		Trigger:      trigger,
		WeeksChanged: weeksChanged,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Bus Interfaces
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
