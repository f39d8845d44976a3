// Package stateapi is the outbound client of the task/project state service.
// Every failure is returned as an error; nothing is swallowed into an empty
// result.
package stateapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ludvigisaksen/PA-AI/internal/domain"
)

var (
	ErrNotConfigured     = errors.New("state api base url not configured")
	ErrMalformedResponse = errors.New("state api returned a malformed response")
	ErrEmptyResult       = errors.New("state api returned no records")
)

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

const (
	tasksPath    = "/state/tasks"
	projectsPath = "/state/projects"
	maxErrorBody = 512
)

type Client interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	// UpsertTasks creates tasks without an id and updates those with one.
	// It returns the records as stored.
	UpsertTasks(ctx context.Context, tasks []domain.Task) ([]domain.Task, error)
	// ListProjects and UpsertProjects cover /state/projects for callers
	// outside the chat flow, which only tags tasks via project_hint.
	ListProjects(ctx context.Context) ([]domain.Project, error)
	UpsertProjects(ctx context.Context, projects []domain.Project) ([]domain.Project, error)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type client struct {
	baseURL string
	http    *retryablehttp.Client
}

// New builds a client. Reads are retried with backoff; writes are sent once
// since a retried POST could create the same tasks twice.
func New(cfg Config) Client {
	rc := retryablehttp.NewClient()
	rc.Logger = slog.Default()
	rc.RetryMax = 3
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}
	return &client{baseURL: cfg.BaseURL, http: rc}
}

type tasksEnvelope struct {
	Tasks *[]domain.Task `json:"tasks"`
}

type projectsEnvelope struct {
	Projects *[]domain.Project `json:"projects"`
}

func (c *client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var out tasksEnvelope
	if err := c.get(ctx, tasksPath, &out); err != nil {
		return nil, err
	}
	if out.Tasks == nil {
		return nil, fmt.Errorf("GET %s: missing tasks array: %w", tasksPath, ErrMalformedResponse)
	}
	return *out.Tasks, nil
}

func (c *client) UpsertTasks(ctx context.Context, tasks []domain.Task) ([]domain.Task, error) {
	if len(tasks) == 0 {
		return []domain.Task{}, nil
	}
	var out tasksEnvelope
	if err := c.post(ctx, tasksPath, tasksEnvelope{Tasks: &tasks}, &out); err != nil {
		return nil, err
	}
	if out.Tasks == nil {
		return nil, fmt.Errorf("POST %s: missing tasks array: %w", tasksPath, ErrMalformedResponse)
	}
	if len(*out.Tasks) == 0 {
		return nil, fmt.Errorf("POST %s: %w", tasksPath, ErrEmptyResult)
	}
	return *out.Tasks, nil
}

func (c *client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var out projectsEnvelope
	if err := c.get(ctx, projectsPath, &out); err != nil {
		return nil, err
	}
	if out.Projects == nil {
		return nil, fmt.Errorf("GET %s: missing projects array: %w", projectsPath, ErrMalformedResponse)
	}
	return *out.Projects, nil
}

func (c *client) UpsertProjects(ctx context.Context, projects []domain.Project) ([]domain.Project, error) {
	if len(projects) == 0 {
		return []domain.Project{}, nil
	}
	var out projectsEnvelope
	if err := c.post(ctx, projectsPath, projectsEnvelope{Projects: &projects}, &out); err != nil {
		return nil, err
	}
	if out.Projects == nil {
		return nil, fmt.Errorf("POST %s: missing projects array: %w", projectsPath, ErrMalformedResponse)
	}
	if len(*out.Projects) == 0 {
		return nil, fmt.Errorf("POST %s: %w", projectsPath, ErrEmptyResult)
	}
	return *out.Projects, nil
}

func (c *client) get(ctx context.Context, path string, out any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building GET %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return decodeResponse(resp, http.MethodGet, path, out)
}

func (c *client) post(ctx context.Context, path string, body, out any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding POST %s body: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building POST %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	return decodeResponse(resp, http.MethodPost, path, out)
}

func decodeResponse(resp *http.Response, method, path string, out any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s %s response: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(body)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: text}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrMalformedResponse, err)
	}
	return nil
}
