package handler

import (
	"errors"
	"net/http"

	"github.com/dukerupert/autoagenda/internal/agenda"
	"github.com/dukerupert/autoagenda/internal/intake"
	"github.com/dukerupert/autoagenda/internal/recurrence"
)

// intakeStatus maps an intake or agenda failure to a status code and a
// client-facing message.
func intakeStatus(err error) (int, string) {
	switch {
	case errors.Is(err, intake.ErrMissingStartTime),
		errors.Is(err, intake.ErrUnresolvableDate),
		errors.Is(err, intake.ErrEndBeforeStart),
		errors.Is(err, intake.ErrNoFirstOccurrence):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, recurrence.ErrMalformedRule):
		return http.StatusUnprocessableEntity, "invalid recurrence rule"
	}

	var pe *agenda.PhaseError
	if errors.As(err, &pe) {
		switch pe.Phase {
		case agenda.PhaseResolution:
			return http.StatusBadRequest, pe.Err.Error()
		case agenda.PhaseEvaluation:
			return http.StatusUnprocessableEntity, pe.Error()
		}
	}
	return http.StatusInternalServerError, "internal error"
}
