package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BuzzLyutic/task-crud-api/internal/model"
)

func TestCheckDocument(t *testing.T) {
	tests := []struct {
		name    string
		task    model.Task
		wantErr string
	}{
		{name: "valid", task: model.Task{Title: "A", Status: model.StatusCompleted}},
		{name: "empty title", task: model.Task{Title: "", Status: model.StatusPending}, wantErr: "title is required"},
		{name: "whitespace title", task: model.Task{Title: "   ", Status: model.StatusPending}, wantErr: "title is required"},
		{name: "bad status", task: model.Task{Title: "A", Status: "later"}, wantErr: "`later` is not a valid status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkDocument(tt.task)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var schemaErr *SchemaError
			assert.ErrorAs(t, err, &schemaErr)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestCheckPatch(t *testing.T) {
	assert.NoError(t, checkPatch(model.TaskPatch{}))
	assert.NoError(t, checkPatch(model.TaskPatch{Description: strPtr("")}))
	assert.Error(t, checkPatch(model.TaskPatch{Title: strPtr("")}))
	assert.Error(t, checkPatch(model.TaskPatch{Status: statusPtr("")}))
}

func TestApplyDefaults(t *testing.T) {
	assert.Equal(t, model.StatusPending, applyDefaults(model.Task{}).Status)
	assert.Equal(t, model.StatusCompleted, applyDefaults(model.Task{Status: model.StatusCompleted}).Status)
}
