package noop

import (
	"context"

	"vpnvalidator/internal/port"
)

type noopSink struct{}

// NewNoopSink creates a TraceSink that discards every trace. It is used
// when Langfuse credentials are not configured.
func NewNoopSink() port.TraceSink {
	return &noopSink{}
}

func (s *noopSink) Send(_ context.Context, _ port.Trace) error {
	return nil
}
