package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-crud-api/internal/model"
)

const pgCheckViolation = "23514"

// pgDocument is the JSONB body of a row in the tasks table.
type pgDocument struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
}

// PostgresTaskRepo stores tasks as JSONB documents in Postgres.
type PostgresTaskRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresTaskRepo(pool *pgxpool.Pool) *PostgresTaskRepo {
	return &PostgresTaskRepo{
		pool: pool,
	}
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		t   model.Task
		raw []byte
	)
	if err := row.Scan(&t.ID, &raw, &t.CreatedAt); err != nil {
		return model.Task{}, err
	}

	var doc pgDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.Task{}, fmt.Errorf("decode task document: %w", err)
	}
	t.Title = doc.Title
	t.Description = doc.Description
	t.Status = model.Status(doc.Status)
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func (r *PostgresTaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	t = applyDefaults(t)
	if err := checkDocument(t); err != nil {
		return model.Task{}, err
	}

	raw, err := json.Marshal(pgDocument{Title: t.Title, Description: t.Description, Status: string(t.Status)})
	if err != nil {
		return model.Task{}, err
	}

	created, err := scanTask(r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, doc)
		VALUES ($1, $2)
		RETURNING id::text, doc, created_at
	`, uuid.NewString(), raw))
	return created, r.mapError(err)
}

// listQuery selects one page of tasks. NULL parameters disable their filter;
// the keyword is matched as a case-insensitive POSIX regular expression.
const listQuery = `
	SELECT id::text, doc, created_at
	FROM tasks
	WHERE ($1::text IS NULL OR doc->>'title' ~* $1 OR coalesce(doc->>'description', '') ~* $1)
	  AND ($2::text IS NULL OR doc->>'status' = $2)
	ORDER BY created_at DESC, id DESC
	OFFSET $3
	LIMIT $4
`

func listArgs(filter model.TaskFilter) []any {
	var keyword, status *string
	if filter.Keyword != "" {
		keyword = &filter.Keyword
	}
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}
	return []any{keyword, status, filter.Skip(), filter.Limit}
}

func (r *PostgresTaskRepo) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, listQuery, listArgs(filter)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0, filter.Limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// patchDocument returns the JSON object merged into the stored document.
func patchDocument(patch model.TaskPatch) ([]byte, error) {
	set := make(map[string]string, 3)
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	return json.Marshal(set)
}

func (r *PostgresTaskRepo) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	if err := checkPatch(patch); err != nil {
		return model.Task{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return model.Task{}, ErrorNotFound
	}

	if patch.Empty() {
		t, err := scanTask(r.pool.QueryRow(ctx, `
			SELECT id::text, doc, created_at FROM tasks WHERE id = $1
		`, parsed.String()))
		return t, r.mapError(err)
	}

	raw, err := patchDocument(patch)
	if err != nil {
		return model.Task{}, err
	}
	t, err := scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET doc = doc || $2::jsonb
		WHERE id = $1
		RETURNING id::text, doc, created_at
	`, parsed.String(), raw))
	return t, r.mapError(err)
}

func (r *PostgresTaskRepo) Delete(ctx context.Context, id string) (model.Task, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return model.Task{}, ErrorNotFound
	}

	t, err := scanTask(r.pool.QueryRow(ctx, `
		DELETE FROM tasks WHERE id = $1
		RETURNING id::text, doc, created_at
	`, parsed.String()))
	return t, r.mapError(err)
}

func (r *PostgresTaskRepo) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
		return &SchemaError{Message: fmt.Sprintf("task violates %s", pgErr.ConstraintName)}
	}
	return err
}
