package judge

import (
	"context"
	"fmt"
	"log"

	"vpnvalidator/internal/domain"
	"vpnvalidator/internal/port"
)

// FallbackJudge tries the primary judge with retries and degrades to
// the rule-based judge when the primary cannot produce a verdict. It
// never returns an error: a judge failure must not fail the pipeline.
type FallbackJudge struct {
	primary    port.Judge
	fallback   *RuleBasedJudge
	maxRetries int
}

// NewFallbackJudge creates a FallbackJudge. maxRetries is the number of
// additional attempts after the first primary call.
func NewFallbackJudge(primary port.Judge, fallback *RuleBasedJudge, maxRetries int) *FallbackJudge {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &FallbackJudge{primary: primary, fallback: fallback, maxRetries: maxRetries}
}

func (f *FallbackJudge) Evaluate(ctx context.Context, input port.JudgeInput) (*domain.JudgeVerdict, error) {
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		verdict, err := f.primary.Evaluate(ctx, input)
		if err == nil {
			return verdict, nil
		}
		lastErr = err
		log.Printf("judge.FallbackJudge: primary attempt %d/%d failed: %v", attempt+1, f.maxRetries+1, err)

		if ctx.Err() != nil {
			break
		}
	}

	verdict, _ := f.fallback.Evaluate(ctx, input)
	verdict.Reasoning = fmt.Sprintf("Fallback evaluation due to: %v", lastErr)
	return verdict, nil
}
