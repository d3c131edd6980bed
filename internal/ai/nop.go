package ai

import "context"

// NopStreamer is used when ai.enabled is false. It completes immediately
// with a single explanatory chunk and no LLM calls.
type NopStreamer struct{}

// NewNopStreamer returns a NopStreamer.
func NewNopStreamer() *NopStreamer {
	return &NopStreamer{}
}

// StreamCompletion emits one hint chunk and finishes.
func (n *NopStreamer) StreamCompletion(_ context.Context, _ string) (<-chan StreamEvent, context.CancelFunc, error) {
	events := make(chan StreamEvent, 2)
	events <- StreamEvent{Chunk: "AI assistance is not enabled — set ai.enabled: true in config.yaml"}
	events <- StreamEvent{Done: true}
	close(events)
	return events, func() {}, nil
}
