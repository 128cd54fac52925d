package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"vpnvalidator/internal/domain"
	"vpnvalidator/internal/port"
)

// Archiver persists finished runs: the original PDF and the run record
// as JSON, keyed by run ID.
type Archiver struct {
	store port.ObjectStorage
}

// NewArchiver creates an Archiver over the given storage.
func NewArchiver(store port.ObjectStorage) *Archiver {
	return &Archiver{store: store}
}

// Archive stores the document and its run record. Errors wrap
// domain.ErrArchiveFailed so callers can treat archival as advisory.
func (a *Archiver) Archive(ctx context.Context, run *domain.PipelineRun, pdf []byte) error {
	record, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshaling run: %v", domain.ErrArchiveFailed, err)
	}

	if err := a.store.Put(ctx, port.PutInput{
		Key:         fmt.Sprintf("runs/%s/document.pdf", run.ID),
		Body:        bytes.NewReader(pdf),
		ContentType: "application/pdf",
	}); err != nil {
		return fmt.Errorf("%w: storing document: %v", domain.ErrArchiveFailed, err)
	}

	if err := a.store.Put(ctx, port.PutInput{
		Key:         fmt.Sprintf("runs/%s/verdict.json", run.ID),
		Body:        bytes.NewReader(record),
		ContentType: "application/json",
	}); err != nil {
		return fmt.Errorf("%w: storing verdict: %v", domain.ErrArchiveFailed, err)
	}
	return nil
}
