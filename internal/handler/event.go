package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/autoagenda/internal/auth"
	"github.com/dukerupert/autoagenda/internal/intake"
	"github.com/dukerupert/autoagenda/internal/logging"
	"github.com/dukerupert/autoagenda/internal/model"
	"github.com/dukerupert/autoagenda/internal/recurrence"
	"github.com/dukerupert/autoagenda/internal/store"
	"github.com/dukerupert/autoagenda/internal/walltime"
	"github.com/dukerupert/autoagenda/internal/websocket"
)

type EventHandler struct {
	eventStore  *store.EventStore
	intake      *intake.Service
	notifier    Notifier
	defaultZone string
}

func NewEventHandler(es *store.EventStore, svc *intake.Service, n Notifier, zone *time.Location) *EventHandler {
	return &EventHandler{eventStore: es, intake: svc, notifier: orNop(n), defaultZone: zone.String()}
}

type eventRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	StartAt     walltime.Time `json:"start_at"`
	EndAt       walltime.Time `json:"end_at"`
	RRule       string        `json:"rrule"`
	Timezone    string        `json:"timezone"`
}

func (h *EventHandler) parseAndValidate(r *http.Request, w http.ResponseWriter) (*eventRequest, bool) {
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return nil, false
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return nil, false
	}
	if req.StartAt.IsZero() || req.EndAt.IsZero() {
		writeError(w, http.StatusBadRequest, "start_at and end_at are required")
		return nil, false
	}
	if !req.EndAt.After(req.StartAt) {
		writeError(w, http.StatusBadRequest, "end_at must be after start_at")
		return nil, false
	}

	req.RRule = recurrence.Normalize(req.RRule)
	if req.RRule != "" {
		if err := recurrence.Validate(req.RRule); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
	}

	req.Timezone = strings.TrimSpace(req.Timezone)
	if req.Timezone == "" {
		req.Timezone = h.defaultZone
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		writeError(w, http.StatusBadRequest, "unknown timezone")
		return nil, false
	}

	return &req, true
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseAndValidate(r, w)
	if !ok {
		return
	}

	ownerID := auth.UserID(r.Context())
	event, err := h.eventStore.Create(ownerID, req.Title, req.Description, req.StartAt, req.EndAt, req.RRule, req.Timezone)
	if err != nil {
		logging.FromContext(r.Context()).Error("create event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	h.notifier.Broadcast(ownerID, websocket.NewMessage(websocket.EntityEvent, websocket.ActionCreated, event.ID))
	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventStore.ListByOwner(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	event, err := h.eventStore.GetByID(auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	req, ok := h.parseAndValidate(r, w)
	if !ok {
		return
	}

	ownerID := auth.UserID(r.Context())
	event, err := h.eventStore.Update(ownerID, id, req.Title, req.Description, req.StartAt, req.EndAt, req.RRule, req.Timezone)
	if err != nil {
		logging.FromContext(r.Context()).Error("update event", "event_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update event")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	h.notifier.Broadcast(ownerID, websocket.NewMessage(websocket.EntityEvent, websocket.ActionUpdated, event.ID))
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	ownerID := auth.UserID(r.Context())
	event, err := h.eventStore.GetByID(ownerID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	if err := h.eventStore.Delete(ownerID, id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	h.notifier.Broadcast(ownerID, websocket.NewMessage(websocket.EntityEvent, websocket.ActionDeleted, id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) FromText(w http.ResponseWriter, r *http.Request) {
	text, err := readText(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ownerID := auth.UserID(r.Context())
	event, err := h.intake.EventFromText(r.Context(), ownerID, text)
	if err != nil {
		status, msg := intakeStatus(err)
		if status >= http.StatusInternalServerError {
			logging.FromContext(r.Context()).Error("event from text", "error", err)
		}
		writeError(w, status, msg)
		return
	}

	h.notifier.Broadcast(ownerID, websocket.NewMessage(websocket.EntityEvent, websocket.ActionCreated, event.ID))
	writeJSON(w, http.StatusCreated, event)
}
