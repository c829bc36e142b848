package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/BuzzLyutic/task-crud-api/internal/model"
	"github.com/BuzzLyutic/task-crud-api/internal/repo"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxPage      = math.MaxInt32

	msgInvalidStatus = "Invalid status value"
)

var ErrValidation = errors.New("validation error")

// ValidationError carries the message returned to the client. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
		return model.Status(fl.Field().String()).Valid()
	})
	if err != nil {
		panic(fmt.Sprintf("register task_status validation: %v", err))
	}
	return v
}

type TaskService struct {
	repo repo.TaskRepository
}

func NewTaskService(repo repo.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) Create(ctx context.Context, in model.CreateTaskInput) (model.Task, error) {
	if err := validate.Struct(in); err != nil {
		return model.Task{}, &ValidationError{Message: msgInvalidStatus}
	}

	return s.repo.Create(ctx, model.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
	})
}

// List normalises pagination and drops an unknown status before querying.
func (s *TaskService) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	filter.Page, filter.Limit = NormalizePage(filter.Page, filter.Limit)
	if filter.Status != nil && !filter.Status.Valid() {
		filter.Status = nil
	}
	return s.repo.List(ctx, filter)
}

func (s *TaskService) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	if err := validate.Struct(patch); err != nil {
		return model.Task{}, &ValidationError{Message: msgInvalidStatus}
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	_, err := s.repo.Delete(ctx, id)
	return err
}

// NormalizePage replaces a page or limit below 1 with its default and clamps
// both to their maximums.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}
