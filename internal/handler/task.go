package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/autoagenda/internal/auth"
	"github.com/dukerupert/autoagenda/internal/intake"
	"github.com/dukerupert/autoagenda/internal/logging"
	"github.com/dukerupert/autoagenda/internal/model"
	"github.com/dukerupert/autoagenda/internal/store"
	"github.com/dukerupert/autoagenda/internal/walltime"
	"github.com/dukerupert/autoagenda/internal/websocket"
)

type TaskHandler struct {
	taskStore *store.TaskStore
	intake    *intake.Service
	notifier  Notifier
	now       func() time.Time
}

func NewTaskHandler(ts *store.TaskStore, svc *intake.Service, n Notifier) *TaskHandler {
	return &TaskHandler{taskStore: ts, intake: svc, notifier: orNop(n), now: time.Now}
}

type taskRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Date        walltime.Time `json:"date"`
	Channel     string        `json:"channel"`
}

type fromTextResponse struct {
	Message string       `json:"message"`
	Count   int          `json:"count"`
	Tasks   []model.Task `json:"tasks"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	ownerID := auth.UserID(r.Context())
	task, err := h.taskStore.Create(ownerID, req.Title, req.Description, req.Date, strings.TrimSpace(req.Channel))
	if err != nil {
		logging.FromContext(r.Context()).Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.notifier.Broadcast(ownerID, websocket.NewMessage(websocket.EntityTask, websocket.ActionCreated, task.ID))
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskStore.ListByOwner(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	task, err := h.taskStore.GetByID(auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, websocket.ActionCompleted, func(ownerID, id int64) (*model.Task, error) {
		return h.taskStore.Complete(ownerID, id, h.now())
	})
}

func (h *TaskHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, websocket.ActionReopened, h.taskStore.Reopen)
}

func (h *TaskHandler) setStatus(w http.ResponseWriter, r *http.Request, action string, apply func(ownerID, id int64) (*model.Task, error)) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	ownerID := auth.UserID(r.Context())
	task, err := apply(ownerID, id)
	if err != nil {
		logging.FromContext(r.Context()).Error("update task status", "task_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	h.notifier.Broadcast(ownerID, websocket.NewMessage(websocket.EntityTask, action, task.ID))
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	ownerID := auth.UserID(r.Context())
	task, err := h.taskStore.GetByID(ownerID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	if err := h.taskStore.Delete(ownerID, id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	h.notifier.Broadcast(ownerID, websocket.NewMessage(websocket.EntityTask, websocket.ActionDeleted, id))
	w.WriteHeader(http.StatusNoContent)
}

// FromText creates one task per item the text describes.
func (h *TaskHandler) FromText(w http.ResponseWriter, r *http.Request) {
	h.fromText(w, r, "tasks created from text")
}

// FromNote is FromText for the notes endpoint.
func (h *TaskHandler) FromNote(w http.ResponseWriter, r *http.Request) {
	h.fromText(w, r, "tasks created from note")
}

func (h *TaskHandler) fromText(w http.ResponseWriter, r *http.Request, message string) {
	text, err := readText(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ownerID := auth.UserID(r.Context())
	tasks, err := h.intake.TasksFromText(r.Context(), ownerID, text)
	if err != nil {
		logging.FromContext(r.Context()).Error("tasks from text", "error", err)
		status, msg := intakeStatus(err)
		writeError(w, status, msg)
		return
	}

	for _, t := range tasks {
		h.notifier.Broadcast(ownerID, websocket.NewMessage(websocket.EntityTask, websocket.ActionCreated, t.ID))
	}
	writeJSON(w, http.StatusOK, fromTextResponse{Message: message, Count: len(tasks), Tasks: tasks})
}
