package ai

import "context"

// StreamEvent is one observation from a completion stream: a text chunk, the
// end of the stream, or a terminal error. Exactly one of the three is set.
type StreamEvent struct {
	Chunk string
	Done  bool
	Err   error
}

// Streamer produces a completion as a stream of text chunks. The returned
// cancel function stops chunk production; after cancellation the event
// channel is closed without a Done event. The engine treats chunks as opaque
// candidate text and never parses them.
type Streamer interface {
	StreamCompletion(ctx context.Context, prompt string) (<-chan StreamEvent, context.CancelFunc, error)
}
