package pipeline

import (
	"context"
	"log"
	"time"

	"vpnvalidator/internal/domain"
)

// BatchItem is one document submitted for batch validation.
type BatchItem struct {
	Name string
	Data []byte
}

// BatchSummary aggregates the outcomes of a batch run.
type BatchSummary struct {
	Total             int       `json:"total_documents"`
	Approved          int       `json:"approved"`
	Rejected          int       `json:"rejected"`
	Errors            int       `json:"errors"`
	ApprovalRate      float64   `json:"approval_rate"`
	AvgElapsedSeconds float64   `json:"avg_processing_time"`
	Timestamp         time.Time `json:"timestamp"`
}

// BatchResult pairs per-document runs with the batch summary.
type BatchResult struct {
	Runs    []*domain.PipelineRun `json:"results"`
	Summary BatchSummary          `json:"summary"`
}

// ValidateBatch runs the pipeline over each item in order. A document
// that fails does not stop the batch.
func (v *Validator) ValidateBatch(ctx context.Context, items []BatchItem) *BatchResult {
	runs := make([]*domain.PipelineRun, 0, len(items))
	for i, item := range items {
		log.Printf("pipeline.Validator: processing document %d/%d: %s", i+1, len(items), item.Name)
		runs = append(runs, v.Validate(ctx, item.Name, item.Data))
	}
	return &BatchResult{Runs: runs, Summary: Summarize(runs)}
}

// Summarize computes the batch summary for a set of finished runs.
func Summarize(runs []*domain.PipelineRun) BatchSummary {
	summary := BatchSummary{Total: len(runs), Timestamp: time.Now()}
	var elapsed float64
	for _, run := range runs {
		elapsed += run.ElapsedSeconds
		if run.Verdict == nil {
			summary.Errors++
			continue
		}
		switch run.Verdict.Status {
		case domain.StatusApproved:
			summary.Approved++
		case domain.StatusRejected:
			summary.Rejected++
		default:
			summary.Errors++
		}
	}
	if summary.Total > 0 {
		summary.ApprovalRate = float64(summary.Approved) / float64(summary.Total)
		summary.AvgElapsedSeconds = elapsed / float64(summary.Total)
	}
	return summary
}
