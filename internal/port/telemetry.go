package port

import "context"

// Trace is one fire-and-forget observability event.
type Trace struct {
	Name     string
	Input    map[string]interface{}
	Output   map[string]interface{}
	Metadata map[string]interface{}
}

// TraceSink accepts traces. Send failures must never affect verdicts;
// implementations log and move on.
type TraceSink interface {
	Send(ctx context.Context, trace Trace) error
}
