package handler

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/dukerupert/autoagenda/internal/agenda"
	"github.com/dukerupert/autoagenda/internal/auth"
	"github.com/dukerupert/autoagenda/internal/logging"
	"github.com/dukerupert/autoagenda/internal/walltime"
)

// A "+" in an unescaped query offset arrives as a space.
var spacedOffset = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?) (\d{2}:\d{2})$`)

type AgendaHandler struct {
	materializer *agenda.Materializer
	now          func() time.Time
}

func NewAgendaHandler(m *agenda.Materializer) *AgendaHandler {
	return &AgendaHandler{materializer: m, now: time.Now}
}

func (h *AgendaHandler) window(w http.ResponseWriter, r *http.Request) (walltime.Time, walltime.Time, bool) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to query parameters are required")
		return walltime.Time{}, walltime.Time{}, false
	}

	f, t, err := h.materializer.Bounds(fixOffset(from), fixOffset(to))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from and to must be ISO 8601 timestamps or dates")
		return walltime.Time{}, walltime.Time{}, false
	}
	if t.Before(f) {
		writeError(w, http.StatusBadRequest, "to must not be before from")
		return walltime.Time{}, walltime.Time{}, false
	}
	return f, t, true
}

func fixOffset(s string) string {
	return spacedOffset.ReplaceAllString(s, "$1+$2")
}

func (h *AgendaHandler) materialize(w http.ResponseWriter, r *http.Request) ([]agenda.Item, bool) {
	from, to, ok := h.window(w, r)
	if !ok {
		return nil, false
	}

	items, err := h.materializer.Materialize(auth.UserID(r.Context()), from, to)
	if err != nil {
		logging.FromContext(r.Context()).Error("materialize agenda", "error", err)
		var pe *agenda.PhaseError
		if errors.As(err, &pe) && pe.Phase == agenda.PhaseEvaluation {
			writeError(w, http.StatusUnprocessableEntity, pe.Error())
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "failed to build agenda")
		return nil, false
	}
	return items, true
}

func (h *AgendaHandler) List(w http.ResponseWriter, r *http.Request) {
	items, ok := h.materialize(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ICS serves the same window as an iCalendar feed.
func (h *AgendaHandler) ICS(w http.ResponseWriter, r *http.Request) {
	items, ok := h.materialize(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="agenda.ics"`)
	if err := agenda.WriteICS(w, items, h.materializer.Zone(), h.now()); err != nil {
		logging.FromContext(r.Context()).Error("write ics", "error", err)
	}
}
