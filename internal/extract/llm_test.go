package extract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaliiLakusta/OpenCoach/internal/api"
	"github.com/VitaliiLakusta/OpenCoach/internal/reminder"
)

func TestParseCandidates_PlainArray(t *testing.T) {
	raw := `[{"dateTime": "2025-01-15T09:00:00Z", "reminderText": "Morning run"}]`

	got, err := ParseCandidates(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, reminder.Candidate{DateTime: "2025-01-15T09:00:00Z", ReminderText: "Morning run"}, got[0])
}

func TestParseCandidates_FencedOutput(t *testing.T) {
	raw := "Here are the reminders:\n```json\n[{\"dateTime\": \"2025-01-15T09:00:00Z\", \"reminderText\": \"Morning run\"}]\n```\n"

	got, err := ParseCandidates(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Morning run", got[0].ReminderText)
}

func TestParseCandidates_EmptyArray(t *testing.T) {
	got, err := ParseCandidates("[]")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseCandidates_Malformed(t *testing.T) {
	cases := map[string]string{
		"no json":        "I could not find any reminders.",
		"not an array":   `{"dateTime": "2025-01-15T09:00:00Z"}`,
		"missing text":   `[{"dateTime": "2025-01-15T09:00:00Z"}]`,
		"bad timestamp":  `[{"dateTime": "tomorrow", "reminderText": "x"}]`,
		"truncated json": `[{"dateTime": "2025-01-15T09:00:00Z", "reminderText": "x"]`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCandidates(raw)
			assert.Error(t, err)
		})
	}
}

type stubProvider struct {
	lastReq api.MessageRequest
	content string
	err     error
}

func (s *stubProvider) SendMessage(_ context.Context, req api.MessageRequest) (*api.MessageResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &api.MessageResponse{Content: s.content}, nil
}

func (s *stubProvider) Name() string { return "stub" }
func (s *stubProvider) Close() error { return nil }

func TestLLMExtractor_InjectsReferenceTime(t *testing.T) {
	provider := &stubProvider{content: `[]`}
	ex := NewLLMExtractor(provider, "deepseek-chat", 2048, 0, time.Minute)

	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	_, err := ex.Extract(context.Background(), "some notes", now)
	require.NoError(t, err)

	require.Len(t, provider.lastReq.Messages, 1)
	assert.Contains(t, provider.lastReq.Messages[0].Content, "2025-01-15T10:00:00Z")
	assert.Contains(t, provider.lastReq.Messages[0].Content, "some notes")
	assert.Equal(t, "deepseek-chat", provider.lastReq.Model)
}

func TestLLMExtractor_ProviderError(t *testing.T) {
	provider := &stubProvider{err: assert.AnError}
	ex := NewLLMExtractor(provider, "deepseek-chat", 2048, 0, time.Minute)

	_, err := ex.Extract(context.Background(), "notes", time.Now())
	assert.Error(t, err)
}
