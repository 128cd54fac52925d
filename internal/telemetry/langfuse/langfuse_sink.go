package langfuse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"vpnvalidator/internal/config"
	"vpnvalidator/internal/port"
)

const ingestionPath = "/api/public/ingestion"

// Sink sends traces to Langfuse through its batch ingestion endpoint.
// It implements port.TraceSink.
type Sink struct {
	publicKey string
	secretKey string
	endpoint  string
	client    *http.Client
}

// NewSink creates a Langfuse sink from the telemetry config.
func NewSink(cfg *config.TelemetryConfig) *Sink {
	return NewSinkWithEndpoint(cfg, cfg.Host+ingestionPath)
}

// NewSinkWithEndpoint creates a sink pointing at a custom endpoint (for testing).
func NewSinkWithEndpoint(cfg *config.TelemetryConfig, endpoint string) *Sink {
	return &Sink{
		publicKey: cfg.PublicKey,
		secretKey: cfg.SecretKey,
		endpoint:  endpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// ingestionEvent is one entry in the Langfuse batch ingestion payload.
type ingestionEvent struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"`
	Body      interface{} `json:"body"`
}

// Send posts a single trace. The caller treats failures as advisory;
// Send returns them so the caller can decide whether to log.
func (s *Sink) Send(ctx context.Context, trace port.Trace) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	body := map[string]interface{}{
		"id":        uuid.New().String(),
		"name":      trace.Name,
		"timestamp": now,
		"input":     trace.Input,
		"output":    trace.Output,
		"metadata":  trace.Metadata,
	}
	payload := map[string]interface{}{
		"batch": []ingestionEvent{
			{
				ID:        uuid.New().String(),
				Type:      "trace-create",
				Timestamp: now,
				Body:      body,
			},
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling trace: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.publicKey, s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending trace: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("langfuse ingestion status %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}
