package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/autoagenda/internal/agenda"
	"github.com/dukerupert/autoagenda/internal/intake"
	"github.com/dukerupert/autoagenda/internal/recurrence"
)

func TestFixOffset(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2024-03-11T00:00:00 01:00", "2024-03-11T00:00:00+01:00"},
		{"2024-03-11T00:00 02:00", "2024-03-11T00:00+02:00"},
		{"2024-03-11T00:00:00+01:00", "2024-03-11T00:00:00+01:00"},
		{"2024-03-11 00:00:00", "2024-03-11 00:00:00"},
		{"2024-03-11", "2024-03-11"},
	}
	for _, tt := range tests {
		if got := fixOffset(tt.in); got != tt.want {
			t.Errorf("fixOffset(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadText(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		body    string
		want    string
		wantErr bool
	}{
		{"query", "/x?text=hola", "", "hola", false},
		{"json string", "/x", `"  llamar a Eva  "`, "llamar a Eva", false},
		{"json object", "/x", `{"text":"comprar pan"}`, "comprar pan", false},
		{"empty string", "/x", `""`, "", true},
		{"no body", "/x", "", "", true},
		{"wrong shape", "/x", `[1,2]`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			got, err := readText(httptest.NewRecorder(), r)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("readText: %v", err)
			}
			if got != tt.want {
				t.Errorf("readText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIntakeStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{intake.ErrMissingStartTime, http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", intake.ErrUnresolvableDate), http.StatusUnprocessableEntity},
		{intake.ErrEndBeforeStart, http.StatusUnprocessableEntity},
		{intake.ErrNoFirstOccurrence, http.StatusUnprocessableEntity},
		{&agenda.PhaseError{Phase: agenda.PhaseEvaluation, Err: recurrence.ErrMalformedRule}, http.StatusUnprocessableEntity},
		{&agenda.PhaseError{Phase: agenda.PhaseResolution, Err: errors.New("bad bound")}, http.StatusBadRequest},
		{&agenda.PhaseError{Phase: agenda.PhaseStorage, Err: errors.New("disk")}, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got, _ := intakeStatus(tt.err); got != tt.want {
			t.Errorf("intakeStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusTeapot, "short and stout")
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"error":"short and stout"}` {
		t.Errorf("body = %s", body)
	}
}
