package port

import (
	"context"

	"vpnvalidator/internal/domain"
)

// JudgeInput carries everything the semantic judge is shown: the
// extracted fields, the signature evidence, the detected document type,
// the raw text, and the rule engine's findings as context.
type JudgeInput struct {
	Fields     domain.FieldSet
	Signatures *domain.SignatureEvidence
	DocType    domain.TypeVerdict
	RawText    string
	RuleIssues []domain.Issue
}

// Judge abstracts the external semantic evaluator. Implementations are
// interchangeable: a real LLM judge, a deterministic rule-based judge,
// or a test double.
type Judge interface {
	Evaluate(ctx context.Context, input JudgeInput) (*domain.JudgeVerdict, error)
}
