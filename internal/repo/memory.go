package repo

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-crud-api/internal/model"
)

type memoryRecord struct {
	task model.Task
	seq  uint64
}

// MemoryTaskRepo keeps tasks in process memory. Used by the memory storage
// driver and by handler tests.
type MemoryTaskRepo struct {
	mu    sync.RWMutex
	tasks map[string]memoryRecord
	seq   uint64
	now   func() time.Time
}

func NewMemoryTaskRepo() *MemoryTaskRepo {
	return &MemoryTaskRepo{
		tasks: make(map[string]memoryRecord),
		now:   time.Now,
	}
}

// WithClock replaces the time source used for createdAt.
func (r *MemoryTaskRepo) WithClock(now func() time.Time) *MemoryTaskRepo {
	r.now = now
	return r
}

func (r *MemoryTaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	t = applyDefaults(t)
	if err := checkDocument(t); err != nil {
		return model.Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	t.ID = uuid.NewString()
	t.CreatedAt = r.now().UTC()
	r.tasks[t.ID] = memoryRecord{task: t, seq: r.seq}
	return t, nil
}

func (r *MemoryTaskRepo) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	var pattern *regexp.Regexp
	if filter.Keyword != "" {
		re, err := regexp.Compile("(?i)" + filter.Keyword)
		if err != nil {
			return nil, fmt.Errorf("invalid keyword pattern: %w", err)
		}
		pattern = re
	}

	r.mu.RLock()
	matched := make([]memoryRecord, 0, len(r.tasks))
	for _, rec := range r.tasks {
		if pattern != nil && !pattern.MatchString(rec.task.Title) && !pattern.MatchString(rec.task.Description) {
			continue
		}
		if filter.Status != nil && rec.task.Status != *filter.Status {
			continue
		}
		matched = append(matched, rec)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.task.CreatedAt.Equal(b.task.CreatedAt) {
			return a.task.CreatedAt.After(b.task.CreatedAt)
		}
		return a.seq > b.seq
	})

	tasks := make([]model.Task, 0, filter.Limit)
	for i := filter.Skip(); i < len(matched) && len(tasks) < filter.Limit; i++ {
		tasks = append(tasks, matched[i].task)
	}
	return tasks, nil
}

func (r *MemoryTaskRepo) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	if err := checkPatch(patch); err != nil {
		return model.Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.tasks[id]
	if !ok {
		return model.Task{}, ErrorNotFound
	}
	if patch.Title != nil {
		rec.task.Title = *patch.Title
	}
	if patch.Description != nil {
		rec.task.Description = *patch.Description
	}
	if patch.Status != nil {
		rec.task.Status = *patch.Status
	}
	r.tasks[id] = rec
	return rec.task, nil
}

func (r *MemoryTaskRepo) Delete(ctx context.Context, id string) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.tasks[id]
	if !ok {
		return model.Task{}, ErrorNotFound
	}
	delete(r.tasks, id)
	return rec.task, nil
}
