// Package nlu extracts structured scheduling fields from free text.
package nlu

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dukerupert/autoagenda/internal/temporal"
)

const (
	titleLimit      = 60
	defaultDuration = 30
)

// Request is one piece of user text plus the moment and zone it was written
// in.
type Request struct {
	Text string
	Now  time.Time
	Zone *time.Location
}

// TaskDraft is a task as extracted from text, before its date is resolved.
type TaskDraft struct {
	Title       string
	Description string
	Phrase      temporal.Phrase
	Channel     string
}

// EventDraft is an event as extracted from text. StartTime and EndTime are
// loose time-of-day strings.
type EventDraft struct {
	Title           string
	Description     string
	DateText        string
	StartTime       string
	EndTime         string
	DurationMinutes int
	RRule           string
	Timezone        string
}

// Extractor turns free text into drafts.
type Extractor interface {
	ExtractTasks(ctx context.Context, req Request) ([]TaskDraft, error)
	ExtractEvent(ctx context.Context, req Request) (EventDraft, error)
}

// Passthrough wraps the raw text as a single untimed draft. It never fails.
type Passthrough struct{}

func (Passthrough) ExtractTasks(_ context.Context, req Request) ([]TaskDraft, error) {
	return []TaskDraft{{
		Title:       shortTitle(req.Text),
		Description: strings.TrimSpace(req.Text),
	}}, nil
}

func (Passthrough) ExtractEvent(_ context.Context, req Request) (EventDraft, error) {
	return EventDraft{
		Title:           shortTitle(req.Text),
		Description:     strings.TrimSpace(req.Text),
		DurationMinutes: defaultDuration,
		Timezone:        zoneName(req.Zone),
	}, nil
}

// fallback serves from primary and switches to secondary for any request the
// primary fails.
type fallback struct {
	primary   Extractor
	secondary Extractor
	logger    *slog.Logger
}

// WithFallback returns an Extractor that answers from secondary whenever
// primary returns an error.
func WithFallback(primary, secondary Extractor, logger *slog.Logger) Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &fallback{primary: primary, secondary: secondary, logger: logger}
}

func (f *fallback) ExtractTasks(ctx context.Context, req Request) ([]TaskDraft, error) {
	drafts, err := f.primary.ExtractTasks(ctx, req)
	if err == nil {
		return drafts, nil
	}
	f.logger.Warn("task extraction failed, using fallback", "error", err)
	return f.secondary.ExtractTasks(ctx, req)
}

func (f *fallback) ExtractEvent(ctx context.Context, req Request) (EventDraft, error) {
	draft, err := f.primary.ExtractEvent(ctx, req)
	if err == nil {
		return draft, nil
	}
	f.logger.Warn("event extraction failed, using fallback", "error", err)
	return f.secondary.ExtractEvent(ctx, req)
}

func shortTitle(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= titleLimit {
		return text
	}
	return strings.TrimSpace(string([]rune(text)[:titleLimit]))
}

func zoneName(loc *time.Location) string {
	if loc == nil {
		return ""
	}
	return loc.String()
}
