package assessment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualityGate_AcceptsNormalWriting(t *testing.T) {
	gate := NewQualityGate()

	text := "One day my dog ran into the park and found a shiny red ball " +
		"under the old oak tree. He barked twice and brought it home to me."
	result := gate.Check(text, 20)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Error)
	assert.Equal(t, 28, result.WordCount)
	assert.Equal(t, 20, result.MinWords)
}

func TestQualityGate_RejectsEmpty(t *testing.T) {
	gate := NewQualityGate()

	for _, text := range []string{"", "   ", "\n\t "} {
		result := gate.Check(text, 20)
		assert.False(t, result.Valid)
		assert.Equal(t, GateErrorEmpty, result.Error)
		assert.Equal(t, 0, result.WordCount)
	}
}

func TestQualityGate_RejectsTooShort(t *testing.T) {
	gate := NewQualityGate()

	result := gate.Check("My dog is nice.", 20)
	assert.False(t, result.Valid)
	assert.Equal(t, GateErrorTooShort, result.Error)
	assert.Equal(t, 4, result.WordCount)
	assert.Equal(t, 20, result.MinWords)
	assert.Contains(t, result.Message, "4 words")
	assert.Contains(t, result.Message, "at least 20")
}

func TestQualityGate_NoMinimumSkipsLengthCheck(t *testing.T) {
	gate := NewQualityGate()

	result := gate.Check("My dog is nice.", 0)
	assert.True(t, result.Valid)
}

func TestQualityGate_RejectsNoWordTokens(t *testing.T) {
	gate := NewQualityGate()

	result := gate.Check("!!! ??? 123 456 ...", 0)
	assert.False(t, result.Valid)
	assert.Equal(t, GateErrorGibberish, result.Error)
}

func TestQualityGate_RejectsLowUniqueRatio(t *testing.T) {
	gate := NewQualityGate()

	// 30 words, 2 distinct: ratio well under the floor.
	text := strings.TrimSpace(strings.Repeat("blah blah ", 15))
	result := gate.Check(text, 0)
	assert.False(t, result.Valid)
	assert.Equal(t, GateErrorGibberish, result.Error)
}

func TestQualityGate_ShortRepetitionAllowed(t *testing.T) {
	gate := NewQualityGate()

	// Under the ratio-check threshold; short chants are legitimate writing.
	result := gate.Check("go go go dog go", 0)
	assert.True(t, result.Valid)
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 3, CountWords("  one   two\nthree "))
}
