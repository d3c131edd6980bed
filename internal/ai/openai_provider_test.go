package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// sseHandler writes a scripted SSE response for a streamed chat completion.
func sseHandler(t *testing.T, lines []string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization header = %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "data: %s\n\n", line)
		}
	}
}

func collect(t *testing.T, events <-chan StreamEvent) (chunks []string, done bool, streamErr error) {
	t.Helper()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return chunks, done, streamErr
			}
			switch {
			case ev.Err != nil:
				streamErr = ev.Err
			case ev.Done:
				done = true
			default:
				chunks = append(chunks, ev.Chunk)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for stream events")
		}
	}
}

func TestStreamCompletionRelaysChunks(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, []string{
		`{"choices":[{"delta":{"content":"Hel"}}]}`,
		`{"choices":[{"delta":{"content":"lo"}}]}`,
		`[DONE]`,
	}))
	defer srv.Close()

	p := NewOpenAIStreamer(srv.URL, "sk-test", "gpt-4o-mini", srv.Client())
	events, cancel, err := p.StreamCompletion(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("StreamCompletion: %v", err)
	}
	defer cancel()

	chunks, done, streamErr := collect(t, events)
	if streamErr != nil {
		t.Fatalf("stream error: %v", streamErr)
	}
	if !done {
		t.Fatal("expected a Done event")
	}
	if got := strings.Join(chunks, ""); got != "Hello" {
		t.Fatalf("assembled chunks = %q, want Hello", got)
	}
}

func TestStreamCompletionFinishReasonEndsStream(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, []string{
		`{"choices":[{"delta":{"content":"done"}}]}`,
		`{"choices":[{"delta":{},"finish_reason":"stop"}]}`,
	}))
	defer srv.Close()

	p := NewOpenAIStreamer(srv.URL, "sk-test", "gpt-4o-mini", srv.Client())
	events, cancel, err := p.StreamCompletion(context.Background(), "x")
	if err != nil {
		t.Fatalf("StreamCompletion: %v", err)
	}
	defer cancel()

	chunks, done, streamErr := collect(t, events)
	if streamErr != nil || !done {
		t.Fatalf("done = %v, err = %v", done, streamErr)
	}
	if len(chunks) != 1 || chunks[0] != "done" {
		t.Fatalf("chunks = %v", chunks)
	}
}

func TestStreamCompletionAPIError(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, []string{
		`{"error":{"message":"rate limited","type":"rate_limit_error"}}`,
	}))
	defer srv.Close()

	p := NewOpenAIStreamer(srv.URL, "sk-test", "gpt-4o-mini", srv.Client())
	events, cancel, err := p.StreamCompletion(context.Background(), "x")
	if err != nil {
		t.Fatalf("StreamCompletion: %v", err)
	}
	defer cancel()

	_, done, streamErr := collect(t, events)
	if streamErr == nil {
		t.Fatal("expected a stream error event")
	}
	if !strings.Contains(streamErr.Error(), "rate limited") {
		t.Fatalf("stream error = %v", streamErr)
	}
	if done {
		t.Fatal("failed stream must not also report Done")
	}
}

func TestStreamCompletionNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewOpenAIStreamer(srv.URL, "sk-bad", "gpt-4o-mini", srv.Client())
	_, _, err := p.StreamCompletion(context.Background(), "x")
	if err == nil {
		t.Fatal("expected an error for HTTP 401")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("err = %v, want HTTP status mentioned", err)
	}
}

func TestNopStreamerCompletesImmediately(t *testing.T) {
	events, cancel, err := NewNopStreamer().StreamCompletion(context.Background(), "anything")
	if err != nil {
		t.Fatalf("StreamCompletion: %v", err)
	}
	defer cancel()

	chunks, done, streamErr := collect(t, events)
	if streamErr != nil || !done {
		t.Fatalf("done = %v, err = %v", done, streamErr)
	}
	if len(chunks) != 1 || !strings.Contains(chunks[0], "not enabled") {
		t.Fatalf("chunks = %v", chunks)
	}
}

func TestRewriteTemplate(t *testing.T) {
	var b strings.Builder
	err := RewriteTemplate.Execute(&b, RewriteInput{
		Instruction: "make it concise",
		Selection:   "a long winded passage",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "make it concise") || !strings.Contains(out, "a long winded passage") {
		t.Fatalf("rendered prompt missing inputs:\n%s", out)
	}

	b.Reset()
	err = RewriteTemplate.Execute(&b, RewriteInput{
		Instruction: "rework it",
		Document:    "whole document text",
	})
	if err != nil {
		t.Fatalf("Execute whole-document: %v", err)
	}
	if !strings.Contains(b.String(), "whole document") {
		t.Fatalf("whole-document prompt missing document text:\n%s", b.String())
	}
}
