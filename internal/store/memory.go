package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ludvigisaksen/PA-AI/internal/domain"
)

// memoryStores keeps everything in process memory. Contents are lost on
// restart.
type memoryStores struct {
	tasks    *memoryTaskStore
	projects *memoryProjectStore
}

func NewMemoryStores() Stores {
	return &memoryStores{
		tasks:    &memoryTaskStore{index: map[string]int{}},
		projects: &memoryProjectStore{index: map[string]int{}},
	}
}

func (s *memoryStores) Tasks() TaskStore       { return s.tasks }
func (s *memoryStores) Projects() ProjectStore { return s.projects }

type memoryTaskStore struct {
	mu     sync.RWMutex
	rows   []domain.Task
	index  map[string]int
	nextID int
}

func (s *memoryTaskStore) List(ctx context.Context) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *memoryTaskStore) Upsert(ctx context.Context, task domain.Task) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowUTC()
	if task.ID == nil {
		s.nextID++
		id := fmt.Sprintf("t_%d", s.nextID)
		task.ID = &id
		task.CreatedAt = &now
		task.UpdatedAt = &now
		s.index[id] = len(s.rows)
		s.rows = append(s.rows, task)
		return task, nil
	}

	i, ok := s.index[*task.ID]
	if !ok {
		return domain.Task{}, ErrNotFound
	}
	task.CreatedAt = s.rows[i].CreatedAt
	task.UpdatedAt = &now
	s.rows[i] = task
	return task, nil
}

type memoryProjectStore struct {
	mu     sync.RWMutex
	rows   []domain.Project
	index  map[string]int
	nextID int
}

func (s *memoryProjectStore) List(ctx context.Context) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Project, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *memoryProjectStore) Upsert(ctx context.Context, project domain.Project) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowUTC()
	if project.ID == nil {
		s.nextID++
		id := fmt.Sprintf("p_%d", s.nextID)
		project.ID = &id
		project.CreatedAt = &now
		project.UpdatedAt = &now
		s.index[id] = len(s.rows)
		s.rows = append(s.rows, project)
		return project, nil
	}

	i, ok := s.index[*project.ID]
	if !ok {
		return domain.Project{}, ErrNotFound
	}
	project.CreatedAt = s.rows[i].CreatedAt
	project.UpdatedAt = &now
	s.rows[i] = project
	return project, nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
