package nlu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/dukerupert/autoagenda/internal/temporal"
)

var ErrEmptyResponse = errors.New("empty completion")

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIExtractor asks a chat completion model for JSON-object output.
type OpenAIExtractor struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewOpenAIExtractor(cfg OpenAIConfig, logger *slog.Logger) *OpenAIExtractor {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4.1-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIExtractor{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

func (e *OpenAIExtractor) complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}

	e.logger.Debug("completion received",
		"model", e.model,
		"latency_ms", time.Since(start).Milliseconds(),
		"tokens", resp.Usage.TotalTokens,
	)
	return stripFence(resp.Choices[0].Message.Content), nil
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

type taskPayload struct {
	Tasks []struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		DateText    *string `json:"date_text"`
		TimeText    *string `json:"time_text"`
		DayPart     *string `json:"day_part"`
		Channel     *string `json:"channel"`
	} `json:"tasks"`
}

func (e *OpenAIExtractor) ExtractTasks(ctx context.Context, req Request) ([]TaskDraft, error) {
	content, err := e.complete(ctx,
		taskSystemPrompt(req.Now.In(req.Zone), zoneName(req.Zone)),
		fmt.Sprintf("Nota: %q", req.Text),
	)
	if err != nil {
		return nil, err
	}

	var payload taskPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	drafts := make([]TaskDraft, 0, len(payload.Tasks))
	for _, t := range payload.Tasks {
		drafts = append(drafts, TaskDraft{
			Title:       orDefault(t.Title, shortTitle(req.Text)),
			Description: orDefault(t.Description, strings.TrimSpace(req.Text)),
			Phrase: temporal.Phrase{
				DateText: deref(t.DateText),
				TimeText: deref(t.TimeText),
				DayPart:  temporal.DayPart(deref(t.DayPart)),
			},
			Channel: deref(t.Channel),
		})
	}
	if len(drafts) == 0 {
		return Passthrough{}.ExtractTasks(ctx, req)
	}
	return drafts, nil
}

type eventPayload struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	DateText        *string `json:"date_text"`
	StartTime       *string `json:"start_time"`
	EndTime         *string `json:"end_time"`
	DurationMinutes *int    `json:"duration_minutes"`
	RRule           *string `json:"rrule"`
	Timezone        *string `json:"timezone"`
}

func (e *OpenAIExtractor) ExtractEvent(ctx context.Context, req Request) (EventDraft, error) {
	content, err := e.complete(ctx,
		eventSystemPrompt(req.Now.In(req.Zone), zoneName(req.Zone)),
		fmt.Sprintf("Texto: %q", req.Text),
	)
	if err != nil {
		return EventDraft{}, err
	}

	var p eventPayload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return EventDraft{}, fmt.Errorf("decode event: %w", err)
	}

	duration := defaultDuration
	if p.DurationMinutes != nil && *p.DurationMinutes > 0 {
		duration = *p.DurationMinutes
	}
	return EventDraft{
		Title:           orDefault(p.Title, shortTitle(req.Text)),
		Description:     orDefault(p.Description, strings.TrimSpace(req.Text)),
		DateText:        deref(p.DateText),
		StartTime:       deref(p.StartTime),
		EndTime:         deref(p.EndTime),
		DurationMinutes: duration,
		RRule:           deref(p.RRule),
		Timezone:        orDefault(deref(p.Timezone), zoneName(req.Zone)),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
