package repo

import (
	"errors"
	"strings"

	"github.com/BuzzLyutic/task-crud-api/internal/model"
)

var ErrorNotFound = errors.New("not found")

// SchemaError is returned when a document is rejected by the collection schema.
type SchemaError struct {
	Message string
}

func (e *SchemaError) Error() string {
	return e.Message
}

// checkDocument enforces the task schema on a full document before insert.
func checkDocument(t model.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return &SchemaError{Message: "title is required"}
	}
	if !t.Status.Valid() {
		return &SchemaError{Message: "`" + string(t.Status) + "` is not a valid status"}
	}
	return nil
}

// checkPatch enforces the same schema on the fields a patch sets.
func checkPatch(p model.TaskPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &SchemaError{Message: "title is required"}
	}
	if p.Status != nil && !p.Status.Valid() {
		return &SchemaError{Message: "`" + string(*p.Status) + "` is not a valid status"}
	}
	return nil
}

// applyDefaults fills in the fields the schema defaults.
func applyDefaults(t model.Task) model.Task {
	if t.Status == "" {
		t.Status = model.StatusPending
	}
	return t
}
