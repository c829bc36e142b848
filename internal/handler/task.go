package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-crud-api/internal/model"
	"github.com/BuzzLyutic/task-crud-api/internal/repo"
	"github.com/BuzzLyutic/task-crud-api/internal/service"
	"github.com/BuzzLyutic/task-crud-api/pkg/respond"
)

const msgTaskNotFound = "Task not found"

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

// Routes mounts the task endpoints on r.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Patch("/{id}", h.Update)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req model.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	task, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.handleErrors(w, r, "create", http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Location", "/tasks/"+task.ID)
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := model.TaskFilter{Keyword: q.Get("keyword")}
	if status := q.Get("status"); status != "" {
		s := model.Status(status)
		filter.Status = &s
	}
	// Unparseable values are left at zero and replaced with defaults by the service.
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	tasks, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.handleErrors(w, r, "list", http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// A missing body is an empty patch.
	var patch model.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	task, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		h.handleErrors(w, r, "update", http.StatusBadRequest, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleErrors(w, r, "delete", http.StatusInternalServerError, err)
		return
	}
	respond.Message(w, r, http.StatusOK, "Task deleted successfully")
}

// handleErrors maps err to a response. Errors outside the known taxonomy get
// the operation's fallback code with the underlying message.
func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, op string, fallback int, err error) {
	var (
		validationErr *service.ValidationError
		schemaErr     *repo.SchemaError
	)
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, msgTaskNotFound)
	case errors.As(err, &validationErr):
		respond.Error(w, r, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &schemaErr):
		respond.Error(w, r, http.StatusBadRequest, schemaErr.Message)
	default:
		h.logger.Error("task operation failed", zap.String("op", op), zap.Error(err))
		respond.Error(w, r, fallback, err.Error())
	}
}
