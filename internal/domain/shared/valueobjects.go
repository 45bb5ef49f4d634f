// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"errors"
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// ErrInvalidUUID is returned when an identifier is not a valid UUID.
var ErrInvalidUUID = errors.New("invalid UUID format")

// IsUUID reports whether s looks like a UUID.
func IsUUID(s string) bool {
	return uuidRegex.MatchString(s)
}

// ChildID identifies a child profile (UUID format).
type ChildID string

// IsValid checks if the child ID is a valid UUID.
func (c ChildID) IsValid() bool { return IsUUID(string(c)) }

// String returns the string representation.
func (c ChildID) String() string { return string(c) }

// SessionID identifies a lesson session (UUID format).
type SessionID string

// IsValid checks if the session ID is a valid UUID.
func (s SessionID) IsValid() bool { return IsUUID(string(s)) }

// String returns the string representation.
func (s SessionID) String() string { return string(s) }

// LessonID identifies a catalog lesson, e.g. "narrative-3".
// Lesson ids are human-readable slugs rather than UUIDs so curriculum plans
// stay legible in the database and in coach prompts.
type LessonID string

var lessonIDRegex = regexp.MustCompile(`^[a-z]+-[0-9]{1,2}$`)

// IsValid checks the lesson ID slug format.
func (l LessonID) IsValid() bool { return lessonIDRegex.MatchString(string(l)) }

// String returns the string representation.
func (l LessonID) String() string { return string(l) }

// ═══════════════════════════════════════════════════════════════════════════
// Writing Types
// ═══════════════════════════════════════════════════════════════════════════

// WritingType is one of the four writing genres the curriculum teaches.
type WritingType string

const (
	WritingNarrative   WritingType = "narrative"
	WritingOpinion     WritingType = "opinion"
	WritingInformative WritingType = "informative"
	WritingDescriptive WritingType = "descriptive"
)

// AllWritingTypes lists every genre in canonical order.
func AllWritingTypes() []WritingType {
	return []WritingType{WritingNarrative, WritingOpinion, WritingInformative, WritingDescriptive}
}

// IsValid checks that the writing type is one of the four genres.
func (w WritingType) IsValid() bool {
	switch w {
	case WritingNarrative, WritingOpinion, WritingInformative, WritingDescriptive:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (w WritingType) String() string { return string(w) }

// ParseWritingType parses a writing type from a string, case-insensitively.
func ParseWritingType(s string) (WritingType, error) {
	w := WritingType(strings.ToLower(strings.TrimSpace(s)))
	if !w.IsValid() {
		return "", NewDomainError("shared", "ParseWritingType", ErrInvalidInput, "unknown writing type: "+s)
	}
	return w, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Tier
// ═══════════════════════════════════════════════════════════════════════════

// Tier is a coarse difficulty/age band governing lesson selection and coach tone.
type Tier int

const (
	Tier1 Tier = 1 // ages 6-8
	Tier2 Tier = 2 // ages 9-11
	Tier3 Tier = 3 // ages 12-14
)

// IsValid checks that the tier is in the supported band.
func (t Tier) IsValid() bool { return t >= Tier1 && t <= Tier3 }

// TierForAge derives the default tier for a child's age.
func TierForAge(age int) Tier {
	switch {
	case age <= 8:
		return Tier1
	case age <= 11:
		return Tier2
	default:
		return Tier3
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Score
// ═══════════════════════════════════════════════════════════════════════════

// Score is a rubric score on the 0-4 scale.
type Score float64

const (
	// MinScore is the lowest rubric score.
	MinScore Score = 0.0
	// MaxScore is the highest rubric score.
	MaxScore Score = 4.0
	// PassingScore is the threshold at which a lesson counts as completed.
	PassingScore Score = 1.5
)

// IsValid checks that the score lies on the rubric scale.
func (s Score) IsValid() bool { return s >= MinScore && s <= MaxScore }

// Clamp forces the score onto the rubric scale. Model output occasionally
// wanders outside 0-4 and is clamped rather than rejected.
func (s Score) Clamp() Score {
	if s < MinScore {
		return MinScore
	}
	if s > MaxScore {
		return MaxScore
	}
	return s
}

// Passing reports whether the score meets the lesson-completion threshold.
func (s Score) Passing() bool { return s >= PassingScore }

// Float returns the underlying float64 value.
func (s Score) Float() float64 { return float64(s) }
