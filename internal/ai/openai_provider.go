package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAIStreamer calls the OpenAI /v1/chat/completions endpoint with
// stream: true and relays SSE delta chunks.
type OpenAIStreamer struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAIStreamer creates a streamer targeting an OpenAI-compatible API.
func NewOpenAIStreamer(baseURL, apiKey, model string, httpClient *http.Client) *OpenAIStreamer {
	return &OpenAIStreamer{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

// chatRequest mirrors the OpenAI /v1/chat/completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// streamChunk mirrors one SSE data payload of a streamed response.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// StreamCompletion opens the SSE stream and relays chunks until the server
// finishes, an error occurs, or cancel is called. The events channel is
// always closed when the stream ends for any reason.
func (p *OpenAIStreamer) StreamCompletion(ctx context.Context, prompt string) (<-chan StreamEvent, context.CancelFunc, error) {
	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a precise writing assistant. Reply with the rewritten text only, no preamble."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.4,
		MaxTokens:   2048,
		Stream:      true,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal llm request: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	url := p.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("create llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("llm request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		respBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()
		return nil, nil, fmt.Errorf("llm returned HTTP %d: %s", resp.StatusCode, string(respBytes))
	}

	events := make(chan StreamEvent, 16)
	go p.relay(resp.Body, events, ctx)
	return events, cancel, nil
}

// relay reads SSE lines off the response body and forwards them as events.
func (p *OpenAIStreamer) relay(body io.ReadCloser, events chan<- StreamEvent, ctx context.Context) {
	defer close(events)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			p.send(ctx, events, StreamEvent{Done: true})
			return
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			p.send(ctx, events, StreamEvent{Err: fmt.Errorf("parse stream chunk: %w", err)})
			return
		}
		if chunk.Error != nil {
			p.send(ctx, events, StreamEvent{Err: fmt.Errorf("llm error (%s): %s", chunk.Error.Type, chunk.Error.Message)})
			return
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			if !p.send(ctx, events, StreamEvent{Chunk: content}) {
				return
			}
		}
		if fr := chunk.Choices[0].FinishReason; fr != nil && *fr != "" {
			p.send(ctx, events, StreamEvent{Done: true})
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		p.send(ctx, events, StreamEvent{Err: fmt.Errorf("read llm stream: %w", err)})
	}
	// Cancelled streams end with a plain channel close, no Done event.
}

func (p *OpenAIStreamer) send(ctx context.Context, events chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
