package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AUTOAGENDA_TIMEZONE", "Europe/Madrid")
	t.Setenv("AUTOAGENDA_LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestResolveCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"weekday", []string{"--date", "el lunes", "--time", "17"}, "2024-03-18T17:00:00"},
		{"day part", []string{"--date", "el viernes", "--part", "night"}, "2024-03-15T20:00:00"},
		{"nothing", nil, "unresolvable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"resolve", "--now", "2024-03-13T10:00:00+01:00"}, tt.args...)
			got, err := runCLI(t, args...)
			if err != nil {
				t.Fatalf("resolve: %v (%s)", err, got)
			}
			if got != tt.want {
				t.Errorf("resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveRejectsBadNow(t *testing.T) {
	if _, err := runCLI(t, "resolve", "--now", "yesterday"); err == nil {
		t.Fatal("expected error for invalid --now")
	}
}

func TestAgendaCommandEmptyDatabase(t *testing.T) {
	t.Setenv("AUTOAGENDA_DB_PATH", filepath.Join(t.TempDir(), "agenda.db"))
	got, err := runCLI(t, "agenda", "--owner", "1", "--from", "2024-03-01", "--to", "2024-03-31")
	if err != nil {
		t.Fatalf("agenda: %v (%s)", err, got)
	}
	if got != "[]" {
		t.Errorf("agenda = %q, want []", got)
	}
}
