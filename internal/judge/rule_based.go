package judge

import (
	"context"
	"fmt"

	"vpnvalidator/internal/domain"
	"vpnvalidator/internal/port"
	"vpnvalidator/internal/rules"
)

// RuleBasedJudge renders a verdict from the deterministic rule engine
// alone, with no external calls. It backs the fallback path and can be
// configured as the sole judge for offline deployments.
type RuleBasedJudge struct {
	engine *rules.Engine
}

// NewRuleBasedJudge creates a RuleBasedJudge on top of a rule engine.
func NewRuleBasedJudge(engine *rules.Engine) *RuleBasedJudge {
	return &RuleBasedJudge{engine: engine}
}

// Evaluate never errors. Its confidence is fixed low to signal that no
// semantic evaluation took place.
func (j *RuleBasedJudge) Evaluate(_ context.Context, input port.JudgeInput) (*domain.JudgeVerdict, error) {
	ruleVerdict := j.engine.Evaluate(input.Fields, input.Signatures)

	issues := make([]string, 0, len(ruleVerdict.Issues))
	for _, issue := range ruleVerdict.Issues {
		issues = append(issues, issue.Message)
	}

	status := domain.StatusRejected
	if ruleVerdict.PreliminaryValid {
		status = domain.StatusApproved
	}

	var recommendations []string
	if len(ruleVerdict.MissingFields) > 0 {
		recommendations = append(recommendations, "Complete all required form fields before resubmitting")
	}
	if !input.Signatures.Valid {
		recommendations = append(recommendations, "Collect signatures from the requester, the manager, and IT")
	}

	return &domain.JudgeVerdict{
		IsValid:       ruleVerdict.PreliminaryValid,
		Status:        string(status),
		Confidence:    0.3,
		Issues:        issues,
		Reasoning:     "Rule-based evaluation without semantic review",
		MissingFields: ruleVerdict.MissingFields,
		SignatureAnalysis: domain.SignatureAnalysis{
			Count:       input.Signatures.Count,
			Sufficient:  input.Signatures.Valid,
			Description: fmt.Sprintf("Found %d signatures", input.Signatures.Count),
		},
		DocumentTypeAnalysis: domain.DocumentTypeAnalysis{
			DetectedType: string(input.DocType.Label),
			Confidence:   input.DocType.Confidence,
			Description:  "Keyword-based classification",
		},
		Recommendations: recommendations,
	}, nil
}
