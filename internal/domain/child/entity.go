// Package child contains the child profile: identity, age-derived tier,
// preferences, and the parent PIN that guards grown-up actions.
package child

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// Age limits for the product.
const (
	MinAge = 6
	MaxAge = 14
)

// Child is one learner's profile.
type Child struct {
	ID   shared.ChildID
	Name string
	Age  int

	// Tier is derived from age at creation and can be overridden by
	// placement results.
	Tier shared.Tier

	// Interests seed writing prompt topics, e.g. "dinosaurs", "soccer".
	Interests []string

	// WeeklyLessonGoal is how many lessons the child aims to finish per
	// week. Drives the weekly-goal badge.
	WeeklyLessonGoal int

	// ParentPINHash is the bcrypt hash of the parent's 4-6 digit PIN.
	// Never exposed through the API.
	ParentPINHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// defaultWeeklyGoal applies when a parent does not set one.
const defaultWeeklyGoal = 3

// NewChild creates a profile with the tier derived from age.
func NewChild(name string, age int, interests []string, parentPIN string) (*Child, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("child", "NewChild", shared.ErrEmptyValue, "name is required")
	}
	if age < MinAge || age > MaxAge {
		return nil, shared.NewDomainError("child", "NewChild", shared.ErrValueOutOfRange,
			"age must be between 6 and 14")
	}
	hash, err := HashPIN(parentPIN)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Child{
		ID:               shared.ChildID(uuid.NewString()),
		Name:             name,
		Age:              age,
		Tier:             shared.TierForAge(age),
		Interests:        interests,
		WeeklyLessonGoal: defaultWeeklyGoal,
		ParentPINHash:    hash,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// HashPIN validates and hashes a parent PIN.
func HashPIN(pin string) (string, error) {
	if len(pin) < 4 || len(pin) > 6 {
		return "", shared.NewDomainError("child", "HashPIN", shared.ErrValidation,
			"PIN must be 4-6 digits")
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return "", shared.NewDomainError("child", "HashPIN", shared.ErrValidation,
				"PIN must be 4-6 digits")
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", shared.WrapError("child", "HashPIN", shared.ErrValidation, "hashing PIN", err)
	}
	return string(hash), nil
}

// VerifyPIN checks a PIN attempt against the stored hash.
func (c *Child) VerifyPIN(pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.ParentPINHash), []byte(pin)) == nil
}

// SetTier applies a placement-test tier override.
func (c *Child) SetTier(t shared.Tier) error {
	if !t.IsValid() {
		return shared.NewDomainError("child", "SetTier", shared.ErrValueOutOfRange, "unknown tier")
	}
	c.Tier = t
	c.UpdatedAt = time.Now().UTC()
	return nil
}
