package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Page holds the extracted text of a single document page. Rows is only
// populated by the structured extraction backend and preserves the
// row/column layout of tabular regions.
type Page struct {
	Number int        `json:"page_number"` // 1-based
	Text   string     `json:"text"`
	Rows   [][]string `json:"rows,omitempty"`
}

// Content is the immutable result of text extraction over one document.
type Content struct {
	RawText string `json:"raw_text"`
	Pages   []Page `json:"pages"`
	Method  string `json:"extraction_method"`
}

// FieldSet maps schema field names to extracted values. A field that did
// not match its pattern is absent from the map, never an empty string.
type FieldSet map[string]string

// Get returns the value for a field and whether it was extracted at all.
func (f FieldSet) Get(name string) (string, bool) {
	v, ok := f[name]
	return v, ok
}

// NonBlank reports whether the field is present with a non-blank value.
func (f FieldSet) NonBlank(name string) bool {
	v, ok := f[name]
	return ok && strings.TrimSpace(v) != ""
}

// Completeness returns the ratio of non-blank schema fields to schema size.
func (f FieldSet) Completeness(schema []string) float64 {
	if len(schema) == 0 {
		return 0
	}
	filled := 0
	for _, name := range schema {
		if f.NonBlank(name) {
			filled++
		}
	}
	return float64(filled) / float64(len(schema))
}

// TypeVerdict is the classifier's output for one document.
type TypeVerdict struct {
	Label           DocumentType `json:"document_type"`
	Confidence      float64      `json:"confidence"`
	NewRequestScore int          `json:"new_request_score"`
	ExtensionScore  int          `json:"extension_score"`
}

// SignatureInstance is one detected signature-like mark.
type SignatureInstance struct {
	Page       int     `json:"page"` // 1-based
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Area       int     `json:"area"`
	Confidence float64 `json:"confidence"`
}

// SignatureEvidence aggregates signature detection over a whole document.
type SignatureEvidence struct {
	Count     int                 `json:"signature_count"`
	Instances []SignatureInstance `json:"signature_details"`
	Valid     bool                `json:"signature_valid"`
}

// Issue is a single finding from the rule engine.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// RuleVerdict is the rule engine's output: ordered issues, the
// rule-only validity determination, and the set of missing fields.
type RuleVerdict struct {
	Issues           []Issue  `json:"issues"`
	PreliminaryValid bool     `json:"preliminary_valid"`
	MissingFields    []string `json:"missing_fields"`
}

// Messages returns the issue messages in rule order.
func (r *RuleVerdict) Messages() []string {
	out := make([]string, 0, len(r.Issues))
	for _, is := range r.Issues {
		out = append(out, is.Message)
	}
	return out
}

// SignatureAnalysis is the judge's view of the signature evidence.
type SignatureAnalysis struct {
	Count       int    `json:"count"`
	Sufficient  bool   `json:"sufficient"`
	Description string `json:"description"`
}

// DocumentTypeAnalysis is the judge's view of the detected document type.
type DocumentTypeAnalysis struct {
	DetectedType string  `json:"detected_type"`
	Confidence   float64 `json:"confidence"`
	Description  string  `json:"description"`
}

// JudgeVerdict is the external judge's holistic opinion. This core never
// inspects how it was produced, only this contract.
type JudgeVerdict struct {
	IsValid              bool                 `json:"is_valid"`
	Status               string               `json:"status"`
	Confidence           float64              `json:"confidence"`
	Issues               []string             `json:"issues"`
	Reasoning            string               `json:"reasoning"`
	MissingFields        []string             `json:"missing_fields"`
	SignatureAnalysis    SignatureAnalysis    `json:"signature_analysis"`
	DocumentTypeAnalysis DocumentTypeAnalysis `json:"document_type_analysis"`
	Recommendations      []string             `json:"recommendations"`
}

// FinalVerdict is the fused decision returned to the caller.
type FinalVerdict struct {
	IsValid           bool          `json:"is_valid"`
	Status            VerdictStatus `json:"status"`
	Message           string        `json:"message"`
	Confidence        float64       `json:"confidence"`
	DocumentType      DocumentType  `json:"document_type"`
	SignatureCount    int           `json:"signature_count"`
	SignatureValid    bool          `json:"signature_valid"`
	Issues            []string      `json:"issues"`
	Reasoning         string        `json:"reasoning"`
	Recommendations   []string      `json:"recommendations"`
	FieldCompleteness float64       `json:"field_completeness_ratio"`
}

// StepRecord tracks one pipeline step of a run.
type StepRecord struct {
	Name      StepName   `json:"step"`
	Status    StepStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
}

// PipelineRun is the full record of validating one document. It is
// created when validation starts, mutated only by the pipeline, and
// holds no state shared across runs.
type PipelineRun struct {
	ID             uuid.UUID     `json:"run_id"`
	Document       string        `json:"document"`
	State          RunState      `json:"state"`
	Steps          []StepRecord  `json:"processing_steps"`
	StartedAt      time.Time     `json:"timestamp"`
	ElapsedSeconds float64       `json:"processing_time_seconds"`
	Verdict        *FinalVerdict `json:"final_result"`
}
