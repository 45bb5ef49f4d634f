package coach

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/assessment"
	domaincoach "github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/coach"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE PARSING
// The model is asked for strict JSON but routinely wraps it in code fences
// or chatter. Extraction is lenient; validation is strict. Anything that
// fails validation becomes shared.ErrMalformedResponse and the operation
// fails closed.
// ══════════════════════════════════════════════════════════════════════════════

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// extractJSON pulls the first JSON object or array out of raw model text.
func extractJSON(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)

	if m := codeFenceRe.FindStringSubmatch(raw); m != nil {
		raw = strings.TrimSpace(m[1])
	}

	start := strings.IndexAny(raw, "{[")
	if start < 0 {
		return "", false
	}
	closer := byte('}')
	if raw[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(raw, closer)
	if end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// evaluationPayload is the JSON shape the scoring prompts request.
type evaluationPayload struct {
	Scores        map[string]float64 `json:"scores"`
	OverallScore  float64            `json:"overall_score"`
	Praise        string             `json:"praise"`
	Improvements  []string           `json:"improvements"`
	Encouragement string             `json:"encouragement"`
}

// parseEvaluation turns raw model text into a validated evaluation.
// expectedCriteria, when non-empty, restricts the score map: unknown keys
// are dropped, missing keys fail the parse.
func parseEvaluation(raw string, expectedCriteria []string) (*domaincoach.Evaluation, error) {
	blob, ok := extractJSON(raw)
	if !ok {
		return nil, shared.NewDomainError("coach", "parseEvaluation",
			shared.ErrMalformedResponse, "no JSON found in model output")
	}

	var payload evaluationPayload
	if err := json.Unmarshal([]byte(blob), &payload); err != nil {
		return nil, shared.WrapError("coach", "parseEvaluation",
			shared.ErrMalformedResponse, "invalid JSON in model output", err)
	}
	if len(payload.Scores) == 0 {
		return nil, shared.NewDomainError("coach", "parseEvaluation",
			shared.ErrMalformedResponse, "model output has no scores")
	}

	scores := make(map[string]float64, len(payload.Scores))
	if len(expectedCriteria) > 0 {
		for _, name := range expectedCriteria {
			v, found := payload.Scores[name]
			if !found {
				return nil, shared.NewDomainError("coach", "parseEvaluation",
					shared.ErrMalformedResponse, "model output missing criterion: "+name)
			}
			scores[name] = shared.Score(v).Clamp().Float()
		}
	} else {
		for name, v := range payload.Scores {
			scores[name] = shared.Score(v).Clamp().Float()
		}
	}

	return &domaincoach.Evaluation{
		Scores:       scores,
		OverallScore: shared.Score(payload.OverallScore).Clamp().Float(),
		Feedback: assessment.Feedback{
			Praise:        strings.TrimSpace(payload.Praise),
			Improvements:  payload.Improvements,
			Encouragement: strings.TrimSpace(payload.Encouragement),
		},
	}, nil
}

// weekPayload is one element of the JSON array the planning prompt requests.
type weekPayload struct {
	WeekNumber int      `json:"weekNumber"`
	Theme      string   `json:"theme"`
	LessonIDs  []string `json:"lessonIds"`
}

// parseWeekPlans turns raw model text into validated week plans. Unknown
// lesson ids are silently dropped, never inserted; weeks outside the
// allowed set are discarded whole.
func parseWeekPlans(raw string, allowedWeeks map[int]bool, knownLesson func(shared.LessonID) bool) ([]domaincoach.WeekPlan, error) {
	blob, ok := extractJSON(raw)
	if !ok {
		return nil, shared.NewDomainError("coach", "parseWeekPlans",
			shared.ErrMalformedResponse, "no JSON found in model output")
	}

	var payload []weekPayload
	if err := json.Unmarshal([]byte(blob), &payload); err != nil {
		return nil, shared.WrapError("coach", "parseWeekPlans",
			shared.ErrMalformedResponse, "invalid JSON in model output", err)
	}

	var plans []domaincoach.WeekPlan
	for _, w := range payload {
		if !allowedWeeks[w.WeekNumber] {
			continue
		}
		var ids []shared.LessonID
		for _, s := range w.LessonIDs {
			id := shared.LessonID(strings.TrimSpace(s))
			if id.IsValid() && knownLesson(id) {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}
		plans = append(plans, domaincoach.WeekPlan{
			WeekNumber: w.WeekNumber,
			Theme:      strings.TrimSpace(w.Theme),
			LessonIDs:  ids,
		})
	}

	if len(plans) == 0 {
		return nil, shared.NewDomainError("coach", "parseWeekPlans",
			shared.ErrMalformedResponse, "model output contained no usable weeks")
	}
	return plans, nil
}
