package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"vpnvalidator/internal/classify"
	"vpnvalidator/internal/domain"
	"vpnvalidator/internal/fields"
	"vpnvalidator/internal/port"
	"vpnvalidator/internal/rules"
)

// maxMessageIssues caps how many issues the rejection message carries.
const maxMessageIssues = 3

// SignatureDetector counts signature-like marks in a document.
type SignatureDetector interface {
	Detect(data []byte) *domain.SignatureEvidence
}

// Validator drives one document through the full validation pipeline:
// extraction, classification, field scraping, signature detection, rule
// checks, judge evaluation, final decision. Runs are independent; the
// same bytes always walk the same path.
type Validator struct {
	extractor  port.TextExtractor
	classifier *classify.Classifier
	scraper    *fields.Extractor
	signatures SignatureDetector
	rules      *rules.Engine
	judge      port.Judge
	traces     port.TraceSink
}

// NewValidator wires a Validator from its stages.
func NewValidator(
	extractor port.TextExtractor,
	classifier *classify.Classifier,
	scraper *fields.Extractor,
	signatures SignatureDetector,
	engine *rules.Engine,
	judge port.Judge,
	traces port.TraceSink,
) *Validator {
	return &Validator{
		extractor:  extractor,
		classifier: classifier,
		scraper:    scraper,
		signatures: signatures,
		rules:      engine,
		judge:      judge,
		traces:     traces,
	}
}

// Validate runs the pipeline on one document. It never returns an
// error: failures surface as a FinalVerdict with status "error" and a
// run in the failed state.
func (v *Validator) Validate(ctx context.Context, document string, data []byte) *domain.PipelineRun {
	start := time.Now()
	run := &domain.PipelineRun{
		ID:        uuid.New(),
		Document:  document,
		State:     domain.RunPending,
		StartedAt: start,
	}
	defer func() {
		run.ElapsedSeconds = time.Since(start).Seconds()
		v.sendTrace(ctx, run)
	}()

	run.State = domain.RunExtracting
	idx := beginStep(run, domain.StepExtraction)
	content, err := v.extractor.Extract(data)
	if err != nil {
		v.fail(run, idx, fmt.Sprintf("PDF processing failed: %v", err))
		return run
	}
	endStep(run, idx, domain.StepCompleted)

	run.State = domain.RunClassifying
	idx = beginStep(run, domain.StepClassification)
	docType := v.classifier.Classify(content.RawText)
	endStep(run, idx, domain.StepCompleted)

	idx = beginStep(run, domain.StepFieldExtraction)
	fieldSet := v.scraper.Extract(content.RawText)
	endStep(run, idx, domain.StepCompleted)

	run.State = domain.RunDetectingSignatures
	idx = beginStep(run, domain.StepSignatureDetection)
	evidence := v.signatures.Detect(data)
	endStep(run, idx, domain.StepCompleted)

	run.State = domain.RunRuleChecking
	idx = beginStep(run, domain.StepRuleEvaluation)
	ruleVerdict := v.rules.Evaluate(fieldSet, evidence)
	endStep(run, idx, domain.StepCompleted)

	run.State = domain.RunJudging
	idx = beginStep(run, domain.StepJudgeEvaluation)
	judgeVerdict, err := v.judge.Evaluate(ctx, port.JudgeInput{
		Fields:     fieldSet,
		Signatures: evidence,
		DocType:    docType,
		RawText:    content.RawText,
		RuleIssues: ruleVerdict.Issues,
	})
	if err != nil {
		v.fail(run, idx, fmt.Sprintf("Validation failed: %v", err))
		return run
	}
	endStep(run, idx, domain.StepCompleted)

	idx = beginStep(run, domain.StepFinalDecision)
	run.Verdict = v.combine(docType, evidence, ruleVerdict, judgeVerdict, fieldSet)
	endStep(run, idx, domain.StepCompleted)
	run.State = domain.RunDecided

	return run
}

// combine fuses the judge's opinion with the mechanical evidence. The
// verdict trusts the judge on semantics but a document without enough
// signatures is never approved, whatever the judge said. The rule
// engine's preliminary flag already reached the judge as context and is
// deliberately not re-applied here.
func (v *Validator) combine(
	docType domain.TypeVerdict,
	evidence *domain.SignatureEvidence,
	ruleVerdict *domain.RuleVerdict,
	judgeVerdict *domain.JudgeVerdict,
	fieldSet domain.FieldSet,
) *domain.FinalVerdict {
	isValid := judgeVerdict.IsValid && evidence.Valid
	merged := mergeIssues(ruleVerdict.Messages(), judgeVerdict.Issues)

	var status domain.VerdictStatus
	var message string
	if isValid {
		status = domain.StatusApproved
		message = fmt.Sprintf("Document approved. Type: %s, Signatures: %d, Confidence: %.2f",
			docType.Label, evidence.Count, judgeVerdict.Confidence)
	} else {
		status = domain.StatusRejected
		message = rejectionMessage(evidence, v.rules.MinSignatures(), merged)
	}

	return &domain.FinalVerdict{
		IsValid:           isValid,
		Status:            status,
		Message:           message,
		Confidence:        judgeVerdict.Confidence,
		DocumentType:      docType.Label,
		SignatureCount:    evidence.Count,
		SignatureValid:    evidence.Valid,
		Issues:            merged,
		Reasoning:         judgeVerdict.Reasoning,
		Recommendations:   judgeVerdict.Recommendations,
		FieldCompleteness: fieldSet.Completeness(v.scraper.Schema()),
	}
}

// rejectionMessage leads with the signature shortfall when there is one
// and then lists up to the first three other issues.
func rejectionMessage(evidence *domain.SignatureEvidence, minSignatures int, merged []string) string {
	var reasons []string
	var sigReason string
	if !evidence.Valid {
		sigReason = fmt.Sprintf("insufficient signatures: %d/%d required", evidence.Count, minSignatures)
		reasons = append(reasons, sigReason)
	}
	added := 0
	for _, issue := range merged {
		if issue == sigReason {
			continue
		}
		reasons = append(reasons, issue)
		if added++; added == maxMessageIssues {
			break
		}
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Document does not meet validation criteria")
	}
	return "Document rejected. Reasons: " + strings.Join(reasons, "; ")
}

// mergeIssues concatenates rule issues before judge issues, dropping
// exact duplicates while preserving first-seen order.
func mergeIssues(ruleIssues, judgeIssues []string) []string {
	seen := make(map[string]struct{}, len(ruleIssues)+len(judgeIssues))
	var merged []string
	for _, issue := range append(append([]string{}, ruleIssues...), judgeIssues...) {
		if _, ok := seen[issue]; ok {
			continue
		}
		seen[issue] = struct{}{}
		merged = append(merged, issue)
	}
	return merged
}

func (v *Validator) fail(run *domain.PipelineRun, idx int, message string) {
	endStep(run, idx, domain.StepFailed)
	run.State = domain.RunFailed
	run.Verdict = &domain.FinalVerdict{
		IsValid:      false,
		Status:       domain.StatusError,
		Message:      message,
		DocumentType: domain.DocTypeUnknown,
	}
}

func beginStep(run *domain.PipelineRun, name domain.StepName) int {
	run.Steps = append(run.Steps, domain.StepRecord{
		Name:      name,
		Status:    domain.StepStarted,
		Timestamp: time.Now(),
	})
	return len(run.Steps) - 1
}

func endStep(run *domain.PipelineRun, idx int, status domain.StepStatus) {
	run.Steps[idx].Status = status
	run.Steps[idx].Timestamp = time.Now()
}

// sendTrace reports the finished run to the trace sink. Trace failures
// are logged and never affect the verdict.
func (v *Validator) sendTrace(ctx context.Context, run *domain.PipelineRun) {
	if v.traces == nil {
		return
	}
	trace := port.Trace{
		Name:  "pdf_validation",
		Input: map[string]interface{}{"document": run.Document},
		Metadata: map[string]interface{}{
			"run_id":                  run.ID.String(),
			"state":                   string(run.State),
			"processing_time_seconds": run.ElapsedSeconds,
		},
	}
	if run.Verdict != nil {
		trace.Output = map[string]interface{}{
			"is_valid":        run.Verdict.IsValid,
			"status":          string(run.Verdict.Status),
			"confidence":      run.Verdict.Confidence,
			"document_type":   string(run.Verdict.DocumentType),
			"signature_count": run.Verdict.SignatureCount,
		}
	}
	if err := v.traces.Send(ctx, trace); err != nil {
		log.Printf("pipeline.Validator: trace send failed: %v", err)
	}
}
