package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vpnvalidator/internal/classify"
	"vpnvalidator/internal/config"
	"vpnvalidator/internal/domain"
	"vpnvalidator/internal/extract"
	"vpnvalidator/internal/fields"
	"vpnvalidator/internal/port"
	"vpnvalidator/internal/rules"
)

const completeFormText = `FORMULIR PERMOHONAN VPN BARU
NIK : 123456
Nama : Budi Santoso
No Tel : 081234567890
Email : budi.santoso@infomedia.co.id
Departement : IT Operations
Manager : Siti Rahayu
Range Tanggal : 01 Jan 2025 ` + "–" + ` 31 Mar 2025
Range Waktu : 08:00:00-17:00:00
Approved by : Agus Wibowo
User VPN : Budi Santoso
`

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Extract(_ []byte) (*domain.Content, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Content{RawText: s.text, Method: extract.MethodStructured}, nil
}

type stubDetector struct {
	evidence *domain.SignatureEvidence
}

func (s *stubDetector) Detect(_ []byte) *domain.SignatureEvidence { return s.evidence }

type stubJudge struct {
	verdict *domain.JudgeVerdict
	err     error
	input   port.JudgeInput
}

func (s *stubJudge) Evaluate(_ context.Context, input port.JudgeInput) (*domain.JudgeVerdict, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return s.verdict, nil
}

type recordingSink struct {
	traces []port.Trace
}

func (r *recordingSink) Send(_ context.Context, trace port.Trace) error {
	r.traces = append(r.traces, trace)
	return nil
}

func signatures(count int, valid bool) *domain.SignatureEvidence {
	return &domain.SignatureEvidence{Count: count, Valid: valid}
}

func newValidator(ex *stubExtractor, det *stubDetector, j *stubJudge, sink port.TraceSink) *Validator {
	return NewValidator(
		ex,
		classify.NewClassifier(),
		fields.NewExtractor(config.DefaultRequiredFields),
		det,
		rules.NewEngine(config.DefaultRequiredFields, "@infomedia.co.id", 3),
		j,
		sink,
	)
}

func TestValidateApprovesCleanDocument(t *testing.T) {
	j := &stubJudge{verdict: &domain.JudgeVerdict{
		IsValid:    true,
		Status:     string(domain.StatusApproved),
		Confidence: 0.9,
		Reasoning:  "semua kriteria terpenuhi",
	}}
	sink := &recordingSink{}
	v := newValidator(&stubExtractor{text: completeFormText}, &stubDetector{evidence: signatures(3, true)}, j, sink)

	run := v.Validate(context.Background(), "request.pdf", []byte("pdf"))

	require.NotNil(t, run.Verdict)
	assert.Equal(t, domain.RunDecided, run.State)
	assert.True(t, run.Verdict.IsValid)
	assert.Equal(t, domain.StatusApproved, run.Verdict.Status)
	assert.Equal(t, domain.DocTypeNewRequest, run.Verdict.DocumentType)
	assert.Equal(t, "Document approved. Type: new_request, Signatures: 3, Confidence: 0.90", run.Verdict.Message)
	assert.Equal(t, 3, run.Verdict.SignatureCount)
	assert.InDelta(t, 1.0, run.Verdict.FieldCompleteness, 1e-9)
	assert.Empty(t, run.Verdict.Issues)

	require.Len(t, run.Steps, 7)
	for _, step := range run.Steps {
		assert.Equal(t, domain.StepCompleted, step.Status, "step %s", step.Name)
	}

	// judge saw the scraped fields and the rule findings
	email, ok := j.input.Fields.Get(fields.FieldEmail)
	require.True(t, ok)
	assert.Equal(t, "budi.santoso@infomedia.co.id", email)
	assert.Empty(t, j.input.RuleIssues)

	require.Len(t, sink.traces, 1)
	assert.Equal(t, "pdf_validation", sink.traces[0].Name)
	assert.Equal(t, true, sink.traces[0].Output["is_valid"])
}

func TestValidateRejectsMissingFieldAndSignatures(t *testing.T) {
	text := strings.Replace(completeFormText, "Email : budi.santoso@infomedia.co.id\n", "", 1)
	j := &stubJudge{verdict: &domain.JudgeVerdict{
		IsValid:    false,
		Status:     string(domain.StatusRejected),
		Confidence: 0.85,
		Issues:     []string{"Email tidak diisi", "field Email is missing"},
	}}
	v := newValidator(&stubExtractor{text: text}, &stubDetector{evidence: signatures(2, false)}, j, nil)

	run := v.Validate(context.Background(), "request.pdf", []byte("pdf"))

	require.NotNil(t, run.Verdict)
	assert.False(t, run.Verdict.IsValid)
	assert.Equal(t, domain.StatusRejected, run.Verdict.Status)
	assert.False(t, run.Verdict.SignatureValid)
	assert.InDelta(t, 0.9, run.Verdict.FieldCompleteness, 1e-9)

	// rule issues first, judge duplicates dropped
	require.GreaterOrEqual(t, len(run.Verdict.Issues), 3)
	assert.Equal(t, "field Email is missing", run.Verdict.Issues[0])
	assert.Equal(t, "insufficient signatures: 2/3 required", run.Verdict.Issues[1])
	assert.Equal(t, "Email tidak diisi", run.Verdict.Issues[2])
	assert.Equal(t, 1, countOccurrences(run.Verdict.Issues, "field Email is missing"))

	assert.True(t, strings.HasPrefix(run.Verdict.Message, "Document rejected. Reasons: insufficient signatures: 2/3 required; "))
	assert.Contains(t, run.Verdict.Message, "field Email is missing")
}

func TestValidateJudgeCannotOverrideSignatures(t *testing.T) {
	j := &stubJudge{verdict: &domain.JudgeVerdict{IsValid: true, Confidence: 0.95}}
	v := newValidator(&stubExtractor{text: completeFormText}, &stubDetector{evidence: signatures(1, false)}, j, nil)

	run := v.Validate(context.Background(), "request.pdf", []byte("pdf"))

	require.NotNil(t, run.Verdict)
	assert.False(t, run.Verdict.IsValid)
	assert.Equal(t, domain.StatusRejected, run.Verdict.Status)
	assert.Contains(t, run.Verdict.Message, "insufficient signatures: 1/3 required")
}

func TestValidateExtractionFailure(t *testing.T) {
	v := newValidator(
		&stubExtractor{err: domain.ErrExtractionFailed},
		&stubDetector{evidence: signatures(0, false)},
		&stubJudge{verdict: &domain.JudgeVerdict{}},
		nil,
	)

	run := v.Validate(context.Background(), "broken.pdf", []byte("junk"))

	assert.Equal(t, domain.RunFailed, run.State)
	require.NotNil(t, run.Verdict)
	assert.False(t, run.Verdict.IsValid)
	assert.Equal(t, domain.StatusError, run.Verdict.Status)
	assert.Contains(t, run.Verdict.Message, "PDF processing failed")

	require.Len(t, run.Steps, 1)
	assert.Equal(t, domain.StepExtraction, run.Steps[0].Name)
	assert.Equal(t, domain.StepFailed, run.Steps[0].Status)
}

func TestValidateJudgeFailure(t *testing.T) {
	v := newValidator(
		&stubExtractor{text: completeFormText},
		&stubDetector{evidence: signatures(3, true)},
		&stubJudge{err: errors.New("judge exploded")},
		nil,
	)

	run := v.Validate(context.Background(), "request.pdf", []byte("pdf"))

	assert.Equal(t, domain.RunFailed, run.State)
	require.NotNil(t, run.Verdict)
	assert.Equal(t, domain.StatusError, run.Verdict.Status)
	assert.Contains(t, run.Verdict.Message, "judge exploded")
}

func TestValidateIsDeterministic(t *testing.T) {
	j := &stubJudge{verdict: &domain.JudgeVerdict{IsValid: true, Confidence: 0.9}}
	det := &stubDetector{evidence: signatures(3, true)}
	v := newValidator(&stubExtractor{text: completeFormText}, det, j, nil)

	first := v.Validate(context.Background(), "request.pdf", []byte("pdf"))
	second := v.Validate(context.Background(), "request.pdf", []byte("pdf"))

	assert.Equal(t, first.Verdict.Message, second.Verdict.Message)
	assert.Equal(t, first.Verdict.Issues, second.Verdict.Issues)
	assert.Equal(t, first.Verdict.FieldCompleteness, second.Verdict.FieldCompleteness)
}

func TestValidateBatchSummary(t *testing.T) {
	approve := &stubJudge{verdict: &domain.JudgeVerdict{IsValid: true, Confidence: 0.9}}
	v := newValidator(&stubExtractor{text: completeFormText}, &stubDetector{evidence: signatures(3, true)}, approve, nil)

	result := v.ValidateBatch(context.Background(), []BatchItem{
		{Name: "a.pdf", Data: []byte("x")},
		{Name: "b.pdf", Data: []byte("y")},
	})

	require.Len(t, result.Runs, 2)
	assert.Equal(t, 2, result.Summary.Total)
	assert.Equal(t, 2, result.Summary.Approved)
	assert.Equal(t, 0, result.Summary.Rejected)
	assert.Equal(t, 0, result.Summary.Errors)
	assert.InDelta(t, 1.0, result.Summary.ApprovalRate, 1e-9)
}

func TestSummarizeCountsErrors(t *testing.T) {
	runs := []*domain.PipelineRun{
		{Verdict: &domain.FinalVerdict{Status: domain.StatusApproved}},
		{Verdict: &domain.FinalVerdict{Status: domain.StatusError}},
		{Verdict: nil},
	}
	summary := Summarize(runs)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Approved)
	assert.Equal(t, 2, summary.Errors)
}

func countOccurrences(items []string, target string) int {
	n := 0
	for _, item := range items {
		if item == target {
			n++
		}
	}
	return n
}
