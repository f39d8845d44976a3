package store

import (
	"context"
	"errors"

	"github.com/ludvigisaksen/PA-AI/internal/domain"
)

// ErrNotFound is returned when an update names an id the store does not hold
var ErrNotFound = errors.New("not found")

// TaskStore defines the contract for task data access.
// Upsert creates a task when ID is nil and replaces the stored one otherwise.
type TaskStore interface {
	List(ctx context.Context) ([]domain.Task, error)
	Upsert(ctx context.Context, task domain.Task) (domain.Task, error)
}

// ProjectStore defines the contract for project data access
type ProjectStore interface {
	List(ctx context.Context) ([]domain.Project, error)
	Upsert(ctx context.Context, project domain.Project) (domain.Project, error)
}

// Stores is the set of tables the state API serves.
type Stores interface {
	Tasks() TaskStore
	Projects() ProjectStore
}
