package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/VitaliiLakusta/OpenCoach/internal/api"
	"github.com/VitaliiLakusta/OpenCoach/internal/reminder"
)

const extractionSystemPrompt = `You extract reminders from a user's personal coaching notes.

Find every commitment, task, or event with a concrete time and respond with ONLY a JSON array, no prose and no markdown:

[{"dateTime": "2025-01-15T09:00:00Z", "reminderText": "Morning run with Alex"}]

Rules:
- dateTime must be RFC3339 (ISO-8601 with offset).
- Resolve relative expressions ("tomorrow morning", "next Friday") against the reference time in the user message.
- reminderText is a short human-readable sentence.
- If the notes contain no reminders, respond with [].`

// LLMExtractor implements Extractor on top of an api.Provider.
type LLMExtractor struct {
	provider    api.Provider
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

// NewLLMExtractor creates an extractor using the given provider and model
// settings. timeout bounds each extraction call; a timed-out call is an
// extraction failure like any other.
func NewLLMExtractor(provider api.Provider, model string, maxTokens int, temperature float64, timeout time.Duration) *LLMExtractor {
	return &LLMExtractor{
		provider:    provider,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
	}
}

func (e *LLMExtractor) Extract(ctx context.Context, text string, now time.Time) ([]reminder.Candidate, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	prompt := fmt.Sprintf("Reference time: %s\n\nNotes:\n%s", now.Format(time.RFC3339), text)

	resp, err := e.provider.SendMessage(ctx, api.MessageRequest{
		Messages:    []api.Message{{Role: "user", Content: prompt}},
		System:      extractionSystemPrompt,
		Model:       e.model,
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}

	candidates, err := ParseCandidates(resp.Content)
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// ParseCandidates parses the model's JSON output into candidates. Models wrap
// JSON in markdown fences or prose often enough that the parser cuts the
// outermost array out of the response before decoding.
func ParseCandidates(raw string) ([]reminder.Candidate, error) {
	s := strings.TrimSpace(raw)

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("malformed extraction output: no JSON array in %q", truncate(s, 120))
	}
	s = s[start : end+1]

	var candidates []reminder.Candidate
	if err := json.Unmarshal([]byte(s), &candidates); err != nil {
		return nil, fmt.Errorf("malformed extraction output: %w", err)
	}

	for _, c := range candidates {
		if c.DateTime == "" || c.ReminderText == "" {
			return nil, fmt.Errorf("malformed extraction output: candidate missing dateTime or reminderText")
		}
		if _, err := time.Parse(time.RFC3339, c.DateTime); err != nil {
			return nil, fmt.Errorf("malformed extraction output: bad dateTime %q: %w", c.DateTime, err)
		}
	}

	return candidates, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
