// Package coach implements the writing coach against an OpenAI-compatible
// chat API via langchaingo. Calls are rate limited, retried on transient
// failures, and guarded by a circuit breaker so a flapping model API
// cannot pile up goroutines behind it.
package coach

import (
	"context"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	domaincoach "github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/coach"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
	"github.com/karthikjanagiraman/WritingCoach-sub001/pkg/circuitbreaker"
	"github.com/karthikjanagiraman/WritingCoach-sub001/pkg/retry"
)

// Config configures the coach client.
type Config struct {
	// APIKey authenticates against the model API.
	APIKey string

	// BaseURL points at an OpenAI-compatible endpoint.
	BaseURL string

	// Model is the chat model name.
	Model string

	// RequestsPerSecond and Burst bound outbound call rate.
	RequestsPerSecond float64
	Burst             int

	// Timeout bounds a single model call.
	Timeout time.Duration

	Logger *slog.Logger
}

// Client implements coach.Coach over langchaingo.
type Client struct {
	llm     llms.Model
	catalog *lesson.Catalog
	limiter *rate.Limiter
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient builds the coach client.
func NewClient(cfg Config, catalog *lesson.Catalog) (*Client, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, shared.WrapError("coach", "NewClient", shared.ErrExternalService,
			"creating model client", err)
	}

	logger := cfg.Logger
	return &Client{
		llm:     llm,
		catalog: catalog,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		retrier: retry.CoachAPIRetrier(),
		breaker: circuitbreaker.CoachAPIBreaker(func(name string, from, to circuitbreaker.State) {
			logger.Warn("coach breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		}),
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

// complete runs one guarded model call: rate limit, breaker, retry, timeout.
func (c *Client) complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", shared.WrapError("coach", "complete", shared.ErrServiceUnavailable,
			"rate limiter", err)
	}

	var out string
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			resp, err := llms.GenerateFromSinglePrompt(callCtx, c.llm, prompt,
				llms.WithTemperature(temperature),
				llms.WithMaxTokens(maxTokens),
			)
			if err != nil {
				return retry.Retryable(err)
			}
			out = resp
			return nil
		})
	})
	if err != nil {
		return "", shared.WrapError("coach", "complete", shared.ErrExternalService,
			"model call failed", err)
	}
	return out, nil
}

// Reply produces the coach's next tutoring turn, raw markers included.
func (c *Client) Reply(ctx context.Context, tc domaincoach.TurnContext) (string, error) {
	return c.complete(ctx, buildTurnPrompt(tc), 0.7, 1024)
}

// EvaluateRubric scores a submission against the lesson rubric.
func (c *Client) EvaluateRubric(ctx context.Context, l *lesson.Lesson, text string) (*domaincoach.Evaluation, error) {
	raw, err := c.complete(ctx, buildRubricPrompt(l, text), 0.2, 1024)
	if err != nil {
		return nil, err
	}
	eval, err := parseEvaluation(raw, l.Rubric.CriterionNames())
	if err != nil {
		c.logger.Error("rubric evaluation unparseable", "lesson_id", l.ID, "error", err)
		return nil, err
	}
	// The model's own overall is advisory; the rubric's weighting wins.
	eval.OverallScore = shared.Score(l.Rubric.OverallScore(eval.Scores)).Clamp().Float()
	return eval, nil
}

// EvaluateGeneral scores a submission without a rubric.
func (c *Client) EvaluateGeneral(ctx context.Context, l *lesson.Lesson, text string) (*domaincoach.Evaluation, error) {
	raw, err := c.complete(ctx, buildGeneralPrompt(l, text), 0.2, 1024)
	if err != nil {
		return nil, err
	}
	eval, err := parseEvaluation(raw, generalCriteria)
	if err != nil {
		return nil, err
	}
	if eval.OverallScore == 0 {
		var sum float64
		for _, v := range eval.Scores {
			sum += v
		}
		eval.OverallScore = shared.Score(sum / float64(len(eval.Scores))).Clamp().Float()
	}
	return eval, nil
}

// PlanWeeks asks the model for a curriculum revision over pending weeks.
func (c *Client) PlanWeeks(ctx context.Context, tier shared.Tier, pendingWeeks []int,
	reason, description string) ([]domaincoach.WeekPlan, error) {
	raw, err := c.complete(ctx, buildPlanPrompt(c.catalog, tier, pendingWeeks, reason, description), 0.4, 1024)
	if err != nil {
		return nil, err
	}

	allowed := make(map[int]bool, len(pendingWeeks))
	for _, w := range pendingWeeks {
		allowed[w] = true
	}
	return parseWeekPlans(raw, allowed, c.catalog.Contains)
}

var _ domaincoach.Coach = (*Client)(nil)
