package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ludvigisaksen/PA-AI/core/db"
	"github.com/ludvigisaksen/PA-AI/internal/domain"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS pa_tasks (
		id            BIGSERIAL PRIMARY KEY,
		title         TEXT NOT NULL,
		context       TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'open',
		due           DATE,
		priority_hint TEXT,
		project_id    TEXT,
		project_hint  TEXT,
		source_ref    TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS pa_tasks_status_idx ON pa_tasks (status)`,
	`CREATE TABLE IF NOT EXISTS pa_projects (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'active',
		deadline    DATE,
		milestones  JSONB NOT NULL DEFAULT '[]'::jsonb,
		risks       JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

type postgresStores struct {
	tasks    *postgresTaskStore
	projects *postgresProjectStore
}

// NewPostgresStores creates the tables if they are missing and returns stores
// over them. Ids are BIGSERIAL values rendered as strings.
func NewPostgresStores(ctx context.Context, database *db.DB) (Stores, error) {
	err := database.WithTx(ctx, func(tx pgx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return &postgresStores{
		tasks:    &postgresTaskStore{db: database},
		projects: &postgresProjectStore{db: database},
	}, nil
}

func (s *postgresStores) Tasks() TaskStore       { return s.tasks }
func (s *postgresStores) Projects() ProjectStore { return s.projects }

const taskColumns = `id, title, context, status, due, priority_hint, project_id, project_hint, source_ref, created_at, updated_at`

type postgresTaskStore struct {
	db *db.DB
}

func (s *postgresTaskStore) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.Pool().Query(ctx, `SELECT `+taskColumns+` FROM pa_tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (s *postgresTaskStore) Upsert(ctx context.Context, task domain.Task) (domain.Task, error) {
	var priority *string
	if task.PriorityHint != nil {
		p := string(*task.PriorityHint)
		priority = &p
	}
	args := []any{task.Title, task.Context, string(task.Status), toDate(task.Due), priority, task.ProjectID, task.ProjectHint, task.SourceRef}

	if task.ID == nil {
		row := s.db.Pool().QueryRow(ctx, `
			INSERT INTO pa_tasks (title, context, status, due, priority_hint, project_id, project_hint, source_ref)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+taskColumns, args...)
		return scanTask(row)
	}

	id, ok := parseID(*task.ID)
	if !ok {
		return domain.Task{}, ErrNotFound
	}
	row := s.db.Pool().QueryRow(ctx, `
		UPDATE pa_tasks
		SET title = $1, context = $2, status = $3, due = $4, priority_hint = $5,
		    project_id = $6, project_hint = $7, source_ref = $8, updated_at = now()
		WHERE id = $9
		RETURNING `+taskColumns, append(args, id)...)
	return scanTask(row)
}

func scanTask(row pgx.Row) (domain.Task, error) {
	var (
		t        domain.Task
		id       int64
		status   string
		due      pgtype.Date
		priority *string
		created  time.Time
		updated  time.Time
	)
	err := row.Scan(&id, &t.Title, &t.Context, &status, &due, &priority, &t.ProjectID, &t.ProjectHint, &t.SourceRef, &created, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, ErrNotFound
		}
		return domain.Task{}, fmt.Errorf("scanning task: %w", err)
	}
	idStr := strconv.FormatInt(id, 10)
	t.ID = &idStr
	t.Status = domain.TaskStatus(status)
	t.Due = fromDate(due)
	if priority != nil {
		p := domain.PriorityHint(*priority)
		t.PriorityHint = &p
	}
	t.CreatedAt = &created
	t.UpdatedAt = &updated
	return t, nil
}

const projectColumns = `id, name, description, status, deadline, milestones, risks, created_at, updated_at`

type postgresProjectStore struct {
	db *db.DB
}

func (s *postgresProjectStore) List(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.db.Pool().Query(ctx, `SELECT `+projectColumns+` FROM pa_projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

func (s *postgresProjectStore) Upsert(ctx context.Context, project domain.Project) (domain.Project, error) {
	milestones, err := json.Marshal(orEmpty(project.Milestones))
	if err != nil {
		return domain.Project{}, fmt.Errorf("encoding milestones: %w", err)
	}
	risks, err := json.Marshal(orEmpty(project.Risks))
	if err != nil {
		return domain.Project{}, fmt.Errorf("encoding risks: %w", err)
	}
	args := []any{project.Name, project.Description, project.Status, toDate(project.Deadline), milestones, risks}

	if project.ID == nil {
		row := s.db.Pool().QueryRow(ctx, `
			INSERT INTO pa_projects (name, description, status, deadline, milestones, risks)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+projectColumns, args...)
		return scanProject(row)
	}

	id, ok := parseID(*project.ID)
	if !ok {
		return domain.Project{}, ErrNotFound
	}
	row := s.db.Pool().QueryRow(ctx, `
		UPDATE pa_projects
		SET name = $1, description = $2, status = $3, deadline = $4,
		    milestones = $5, risks = $6, updated_at = now()
		WHERE id = $7
		RETURNING `+projectColumns, append(args, id)...)
	return scanProject(row)
}

func scanProject(row pgx.Row) (domain.Project, error) {
	var (
		p          domain.Project
		id         int64
		deadline   pgtype.Date
		milestones []byte
		risks      []byte
		created    time.Time
		updated    time.Time
	)
	err := row.Scan(&id, &p.Name, &p.Description, &p.Status, &deadline, &milestones, &risks, &created, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Project{}, ErrNotFound
		}
		return domain.Project{}, fmt.Errorf("scanning project: %w", err)
	}
	idStr := strconv.FormatInt(id, 10)
	p.ID = &idStr
	p.Deadline = fromDate(deadline)
	if err := json.Unmarshal(milestones, &p.Milestones); err != nil {
		return domain.Project{}, fmt.Errorf("decoding milestones: %w", err)
	}
	if err := json.Unmarshal(risks, &p.Risks); err != nil {
		return domain.Project{}, fmt.Errorf("decoding risks: %w", err)
	}
	p.Milestones = orEmpty(p.Milestones)
	p.Risks = orEmpty(p.Risks)
	p.CreatedAt = &created
	p.UpdatedAt = &updated
	return p, nil
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}

func toDate(s *string) pgtype.Date {
	if s == nil {
		return pgtype.Date{}
	}
	t, err := time.Parse(domain.DateLayout, *s)
	if err != nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

// fromDate renders a DATE column as YYYY-MM-DD.
func fromDate(d pgtype.Date) *string {
	if !d.Valid {
		return nil
	}
	s := d.Time.Format(domain.DateLayout)
	return &s
}

func orEmpty(v []any) []any {
	if v == nil {
		return []any{}
	}
	return v
}
