package handler

import (
	"net/http"
	"strings"

	"github.com/dukerupert/autoagenda/internal/auth"
	"github.com/dukerupert/autoagenda/internal/logging"
	"github.com/dukerupert/autoagenda/internal/model"
	"github.com/dukerupert/autoagenda/internal/recurrence"
	"github.com/dukerupert/autoagenda/internal/store"
	"github.com/dukerupert/autoagenda/internal/walltime"
	"github.com/dukerupert/autoagenda/internal/websocket"
)

type ReminderHandler struct {
	reminderStore *store.ReminderStore
	taskStore     *store.TaskStore
	notifier      Notifier
}

func NewReminderHandler(rs *store.ReminderStore, ts *store.TaskStore, n Notifier) *ReminderHandler {
	return &ReminderHandler{reminderStore: rs, taskStore: ts, notifier: orNop(n)}
}

type reminderRequest struct {
	TaskID      *int64        `json:"task_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Deadline    walltime.Time `json:"deadline"`
	RemindAt    walltime.Time `json:"remind_at"`
	RRule       string        `json:"rrule"`
}

func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	ownerID := auth.UserID(r.Context())
	if req.TaskID != nil {
		task, err := h.taskStore.GetByID(ownerID, *req.TaskID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to check task")
			return
		}
		if task == nil {
			writeError(w, http.StatusBadRequest, "task not found")
			return
		}
	}

	frequency := model.FrequencyOnce
	rule := recurrence.Normalize(req.RRule)
	if rule != "" {
		if err := recurrence.Validate(rule); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.RemindAt.IsZero() {
			writeError(w, http.StatusBadRequest, "remind_at is required for a recurring reminder")
			return
		}
		frequency = model.FrequencyRecurring
	}

	reminder, err := h.reminderStore.Create(model.Reminder{
		OwnerID:     ownerID,
		TaskID:      req.TaskID,
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		RemindAt:    req.RemindAt,
		Frequency:   frequency,
		RRule:       rule,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("create reminder", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create reminder")
		return
	}

	h.notifier.Broadcast(ownerID, websocket.NewMessage(websocket.EntityReminder, websocket.ActionCreated, reminder.ID))
	writeJSON(w, http.StatusCreated, reminder)
}

func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.reminderStore.ListByOwner(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reminders")
		return
	}
	if reminders == nil {
		reminders = []model.Reminder{}
	}
	writeJSON(w, http.StatusOK, reminders)
}

func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	ownerID := auth.UserID(r.Context())
	reminder, err := h.reminderStore.GetByID(ownerID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get reminder")
		return
	}
	if reminder == nil {
		writeError(w, http.StatusNotFound, "reminder not found")
		return
	}

	if err := h.reminderStore.Delete(ownerID, id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete reminder")
		return
	}

	h.notifier.Broadcast(ownerID, websocket.NewMessage(websocket.EntityReminder, websocket.ActionDeleted, id))
	w.WriteHeader(http.StatusNoContent)
}
