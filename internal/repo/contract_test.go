package repo

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-crud-api/internal/model"
)

const integrationEnv = "TASKAPI_INTEGRATION"

func requireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv(integrationEnv) == "" {
		t.Skip(integrationEnv + " not set")
	}
}

func strPtr(s string) *string { return &s }

func statusPtr(s model.Status) *model.Status { return &s }

// contract describes one TaskRepository implementation under test.
type contract struct {
	// newRepo returns an empty repository.
	newRepo func(t *testing.T) TaskRepository
	// missingID returns a well-formed id that matches no task.
	missingID func() string
}

func titlesOf(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func runContract(t *testing.T, c contract) {
	ctx := context.Background()

	t.Run("create assigns id, createdAt and default status", func(t *testing.T) {
		r := c.newRepo(t)

		created, err := r.Create(ctx, model.Task{Title: "A", Description: "B"})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())
		assert.Equal(t, model.StatusPending, created.Status)
		assert.Equal(t, "B", created.Description)
	})

	t.Run("create rejects a document without title", func(t *testing.T) {
		r := c.newRepo(t)

		_, err := r.Create(ctx, model.Task{Description: "no title"})
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "title is required", schemaErr.Message)
	})

	t.Run("list filters and sorts", func(t *testing.T) {
		r := c.newRepo(t)

		_, err := r.Create(ctx, model.Task{Title: "Buy milk"})
		require.NoError(t, err)
		_, err = r.Create(ctx, model.Task{Title: "Walk dog", Description: "Milk the neighbours' goat", Status: model.StatusCompleted})
		require.NoError(t, err)
		_, err = r.Create(ctx, model.Task{Title: "Read book"})
		require.NoError(t, err)

		tests := []struct {
			name   string
			filter model.TaskFilter
			want   []string
		}{
			{name: "all", filter: model.TaskFilter{Page: 1, Limit: 10}, want: []string{"Read book", "Walk dog", "Buy milk"}},
			{name: "keyword in title or description", filter: model.TaskFilter{Keyword: "MILK", Page: 1, Limit: 10}, want: []string{"Walk dog", "Buy milk"}},
			{name: "keyword pattern", filter: model.TaskFilter{Keyword: "^buy", Page: 1, Limit: 10}, want: []string{"Buy milk"}},
			{name: "status", filter: model.TaskFilter{Status: statusPtr(model.StatusPending), Page: 1, Limit: 10}, want: []string{"Read book", "Buy milk"}},
			{name: "keyword and status", filter: model.TaskFilter{Keyword: "milk", Status: statusPtr(model.StatusPending), Page: 1, Limit: 10}, want: []string{"Buy milk"}},
			{name: "no match", filter: model.TaskFilter{Keyword: "zebra", Page: 1, Limit: 10}, want: []string{}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tasks, err := r.List(ctx, tt.filter)
				require.NoError(t, err)
				assert.Equal(t, tt.want, titlesOf(tasks))
			})
		}
	})

	t.Run("list paginates", func(t *testing.T) {
		r := c.newRepo(t)
		for i := 0; i < 15; i++ {
			_, err := r.Create(ctx, model.Task{Title: fmt.Sprintf("Task %d", i)})
			require.NoError(t, err)
		}

		tasks, err := r.List(ctx, model.TaskFilter{Page: 2, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"Task 4", "Task 3", "Task 2", "Task 1", "Task 0"}, titlesOf(tasks))

		tasks, err = r.List(ctx, model.TaskFilter{Page: 3, Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, []string{"Task 4", "Task 3", "Task 2", "Task 1", "Task 0"}, titlesOf(tasks))
	})

	t.Run("update applies the patch", func(t *testing.T) {
		r := c.newRepo(t)
		created, err := r.Create(ctx, model.Task{Title: "Original", Description: "keep"})
		require.NoError(t, err)

		updated, err := r.Update(ctx, created.ID, model.TaskPatch{Title: strPtr("Renamed"), Status: statusPtr(model.StatusInProgress)})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, "keep", updated.Description)
		assert.Equal(t, model.StatusInProgress, updated.Status)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

		same, err := r.Update(ctx, created.ID, model.TaskPatch{})
		require.NoError(t, err)
		assert.Equal(t, updated, same)
	})

	t.Run("update enforces the schema", func(t *testing.T) {
		r := c.newRepo(t)
		created, err := r.Create(ctx, model.Task{Title: "Original"})
		require.NoError(t, err)

		_, err = r.Update(ctx, created.ID, model.TaskPatch{Title: strPtr("  ")})
		var schemaErr *SchemaError
		assert.ErrorAs(t, err, &schemaErr)
	})

	t.Run("update and delete of unknown ids", func(t *testing.T) {
		r := c.newRepo(t)

		for _, id := range []string{c.missingID(), "not-an-id"} {
			_, err := r.Update(ctx, id, model.TaskPatch{Title: strPtr("x")})
			assert.ErrorIs(t, err, ErrorNotFound, "update %s", id)

			_, err = r.Delete(ctx, id)
			assert.ErrorIs(t, err, ErrorNotFound, "delete %s", id)
		}
	})

	t.Run("schema is checked before the id", func(t *testing.T) {
		r := c.newRepo(t)

		for _, id := range []string{c.missingID(), "not-an-id"} {
			_, err := r.Update(ctx, id, model.TaskPatch{Title: strPtr("")})
			var schemaErr *SchemaError
			assert.ErrorAs(t, err, &schemaErr, "update %s", id)
		}
	})

	t.Run("delete returns the removed task once", func(t *testing.T) {
		r := c.newRepo(t)
		created, err := r.Create(ctx, model.Task{Title: "Doomed"})
		require.NoError(t, err)

		deleted, err := r.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, deleted.ID)

		_, err = r.Delete(ctx, created.ID)
		assert.ErrorIs(t, err, ErrorNotFound)

		tasks, err := r.List(ctx, model.TaskFilter{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}
