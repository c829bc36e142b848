package repo

import (
	"context"

	"github.com/BuzzLyutic/task-crud-api/internal/model"
)

// TaskRepository is the task collection: create with schema validation,
// filtered listing, and find-and-modify by id.
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	// Update applies patch to the task with the given id and returns the
	// post-update document, or ErrorNotFound.
	Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
	// Delete removes the task and returns it, or ErrorNotFound.
	Delete(ctx context.Context, id string) (model.Task, error)
}
