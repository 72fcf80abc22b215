package recurrence

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func madrid(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return loc
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"FREQ=WEEKLY;BYDAY=MO", "FREQ=WEEKLY;BYDAY=MO"},
		{" FREQ = WEEKLY ; BYDAY = MO , WE \n", "FREQ=WEEKLY;BYDAY=MO,WE"},
		{"freq=daily", "FREQ=DAILY"},
		{"RRULE:FREQ=DAILY;COUNT=3", "FREQ=DAILY;COUNT=3"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := []string{
		"FREQ=DAILY",
		"FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE,FR",
		"FREQ=MONTHLY;BYMONTHDAY=15;COUNT=6",
		"FREQ=YEARLY;UNTIL=20301231T000000Z",
		"rrule: freq=weekly; byday=tu",
	}
	for _, rule := range valid {
		if err := Validate(rule); err != nil {
			t.Errorf("Validate(%q) error: %v", rule, err)
		}
	}

	invalid := []string{
		"",
		"   ",
		"BYDAY=MO",
		"FREQ=FORTNIGHTLY",
		"FREQ=WEEKLY;BYDAY=XX",
		"not a rule",
	}
	for _, rule := range invalid {
		err := Validate(rule)
		if err == nil {
			t.Errorf("Validate(%q) expected error", rule)
			continue
		}
		if !errors.Is(err, ErrMalformedRule) {
			t.Errorf("Validate(%q) error %v is not ErrMalformedRule", rule, err)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		rule string
		want string
	}{
		{"FREQ=DAILY", "Repeats daily"},
		{"FREQ=DAILY;INTERVAL=3", "Repeats every 3 days"},
		{"FREQ=WEEKLY", "Repeats weekly"},
		{"FREQ=WEEKLY;INTERVAL=2", "Repeats every 2 weeks"},
		{"FREQ=WEEKLY;BYDAY=MO,WE,FR", "Repeats weekly on Mon, Wed, Fri"},
		{"FREQ=WEEKLY;BYDAY=SU;COUNT=4", "Repeats weekly on Sun, 4 times"},
		{"FREQ=MONTHLY", "Repeats monthly"},
		{"FREQ=MONTHLY;BYMONTHDAY=15", "Repeats monthly on day 15"},
		{"FREQ=YEARLY", "Repeats yearly"},
		{"FREQ=HOURLY;INTERVAL=6", "Repeats every 6 hours"},
		{"FREQ=DAILY;UNTIL=20240331T000000Z", "Repeats daily, until Mar 31, 2024"},
		{"garbage", ""},
	}

	for _, tt := range tests {
		if got := Describe(tt.rule); got != tt.want {
			t.Errorf("Describe(%q) = %q, want %q", tt.rule, got, tt.want)
		}
	}
}

func TestBetweenWeeklyMonday(t *testing.T) {
	loc := madrid(t)
	e := NewRRuleEvaluator(0, nil)

	anchor := time.Date(2024, 3, 4, 9, 0, 0, 0, loc)
	lo := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)
	hi := time.Date(2024, 3, 31, 23, 59, 0, 0, loc)

	got, err := e.Between(anchor, "FREQ=WEEKLY;BYDAY=MO", lo, hi)
	if err != nil {
		t.Fatalf("Between error: %v", err)
	}

	want := []int{4, 11, 18, 25}
	if len(got) != len(want) {
		t.Fatalf("got %d instants, want %d: %v", len(got), len(want), got)
	}
	for i, inst := range got {
		local := inst.In(loc)
		if local.Day() != want[i] || local.Hour() != 9 || local.Minute() != 0 {
			t.Errorf("instant[%d] = %v, want March %d 09:00", i, local, want[i])
		}
	}
}

func TestBetweenKeepsWallClockAcrossDST(t *testing.T) {
	loc := madrid(t)
	e := NewRRuleEvaluator(0, nil)

	// Madrid moves to summer time on 2024-03-31.
	anchor := time.Date(2024, 3, 29, 9, 0, 0, 0, loc)
	lo := time.Date(2024, 3, 29, 0, 0, 0, 0, loc)
	hi := time.Date(2024, 4, 2, 23, 0, 0, 0, loc)

	got, err := e.Between(anchor, "FREQ=DAILY", lo, hi)
	if err != nil {
		t.Fatalf("Between error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d instants, want 5", len(got))
	}
	for i, inst := range got {
		if h := inst.In(loc).Hour(); h != 9 {
			t.Errorf("instant[%d] local hour = %d, want 9", i, h)
		}
	}
	if got[0].UTC().Hour() != 8 || got[4].UTC().Hour() != 7 {
		t.Errorf("UTC hours = %d, %d, want 8, 7", got[0].UTC().Hour(), got[4].UTC().Hour())
	}
}

func TestBetweenInclusiveBounds(t *testing.T) {
	e := NewRRuleEvaluator(0, nil)
	anchor := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	got, err := e.Between(anchor, "FREQ=DAILY",
		time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Between error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d instants, want 3 (Feb 2, 3, 4)", len(got))
	}
	if got[0].Day() != 2 || got[2].Day() != 4 {
		t.Errorf("bounds not inclusive: %v", got)
	}
}

func TestBetweenRespectsCountAndUntil(t *testing.T) {
	e := NewRRuleEvaluator(0, nil)
	anchor := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	lo := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	got, err := e.Between(anchor, "FREQ=WEEKLY;COUNT=3", lo, hi)
	if err != nil {
		t.Fatalf("Between error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("COUNT=3 gave %d instants", len(got))
	}

	got, err = e.Between(anchor, "FREQ=DAILY;UNTIL=20260205T100000Z", lo, hi)
	if err != nil {
		t.Fatalf("Between error: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("UNTIL gave %d instants, want 5", len(got))
	}
}

func TestBetweenBeforeAnchor(t *testing.T) {
	e := NewRRuleEvaluator(0, nil)
	anchor := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	got, err := e.Between(anchor, "FREQ=DAILY",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Between error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d instants before the anchor", len(got))
	}
}

func TestBetweenInvertedWindow(t *testing.T) {
	e := NewRRuleEvaluator(0, nil)
	anchor := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	got, err := e.Between(anchor, "FREQ=DAILY", anchor.AddDate(0, 0, 5), anchor)
	if err != nil || len(got) != 0 {
		t.Errorf("inverted window = %v, %v", got, err)
	}
}

func TestBetweenTruncates(t *testing.T) {
	e := NewRRuleEvaluator(100, nil)
	anchor := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	got, err := e.Between(anchor, "FREQ=MINUTELY", anchor, anchor.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Between error: %v", err)
	}
	if len(got) != 100 {
		t.Errorf("got %d instants, want 100", len(got))
	}
}

func TestBetweenStopsWalkingAtLimit(t *testing.T) {
	e := NewRRuleEvaluator(10, slog.New(slog.NewTextHandler(io.Discard, nil)))
	anchor := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	hi := anchor.Add(30 * 24 * time.Hour)

	var got []time.Time
	allocs := testing.AllocsPerRun(5, func() {
		var err error
		got, err = e.Between(anchor, "FREQ=SECONDLY", anchor, hi)
		if err != nil {
			t.Fatalf("Between error: %v", err)
		}
	})
	if len(got) != 10 {
		t.Fatalf("got %d instants, want 10", len(got))
	}
	if !got[9].Equal(anchor.Add(9 * time.Second)) {
		t.Errorf("last instant = %v, want %v", got[9], anchor.Add(9*time.Second))
	}
	// A full expansion of this window is 2.6 million instants.
	if allocs > 10000 {
		t.Errorf("Between allocated %.0f times per call, expansion is not bounded", allocs)
	}
}

func TestBetweenMalformed(t *testing.T) {
	e := NewRRuleEvaluator(0, nil)
	anchor := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	_, err := e.Between(anchor, "FREQ=SOMETIMES", anchor, anchor.AddDate(0, 1, 0))
	if !errors.Is(err, ErrMalformedRule) {
		t.Errorf("error = %v, want ErrMalformedRule", err)
	}
}

func TestFirstAtOrAfter(t *testing.T) {
	loc := madrid(t)
	e := NewRRuleEvaluator(0, nil)

	// Thursday anchor, rule only fires on Mondays.
	anchor := time.Date(2024, 3, 14, 9, 0, 0, 0, loc)
	got, ok, err := e.FirstAtOrAfter(anchor, "FREQ=WEEKLY;BYDAY=MO", anchor)
	if err != nil || !ok {
		t.Fatalf("FirstAtOrAfter = %v, %v, %v", got, ok, err)
	}
	want := time.Date(2024, 3, 18, 9, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("FirstAtOrAfter = %v, want %v", got, want)
	}
}

func TestFirstAtOrAfterInclusive(t *testing.T) {
	e := NewRRuleEvaluator(0, nil)
	anchor := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)

	got, ok, err := e.FirstAtOrAfter(anchor, "FREQ=DAILY", anchor)
	if err != nil || !ok || !got.Equal(anchor) {
		t.Errorf("FirstAtOrAfter = %v, %v, %v, want the anchor itself", got, ok, err)
	}
}

func TestFirstAtOrAfterExhausted(t *testing.T) {
	e := NewRRuleEvaluator(0, nil)
	anchor := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	_, ok, err := e.FirstAtOrAfter(anchor, "FREQ=DAILY;COUNT=2", anchor.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("FirstAtOrAfter error: %v", err)
	}
	if ok {
		t.Error("expected no instant after the rule is exhausted")
	}
}
