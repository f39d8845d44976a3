package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ludvigisaksen/PA-AI/internal/domain"
	"github.com/ludvigisaksen/PA-AI/internal/http/dto"
	"github.com/ludvigisaksen/PA-AI/internal/normalize"
	"github.com/ludvigisaksen/PA-AI/internal/store"
)

// StateHandler serves the task and project tables.
type StateHandler struct {
	tasks    store.TaskStore
	projects store.ProjectStore
}

func NewStateHandler(stores store.Stores) *StateHandler {
	return &StateHandler{tasks: stores.Tasks(), projects: stores.Projects()}
}

func (h *StateHandler) ListTasks(c *gin.Context) {
	ctx := c.Request.Context()

	tasks, err := h.tasks.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "listing tasks failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: dto.MsgInternalError})
		return
	}
	c.JSON(http.StatusOK, dto.TasksResponse{Tasks: tasks})
}

// UpsertTasks creates entries without an id and updates the rest. Entries
// that are not objects, lack a title or name an unknown id are skipped.
func (h *StateHandler) UpsertTasks(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpsertTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: dto.BindErrorMessage(err, "tasks")})
		return
	}

	saved := make([]domain.Task, 0, len(req.Tasks))
	for i, item := range req.Tasks {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		task, ok := normalize.Task(m)
		if !ok {
			continue
		}
		stored, err := h.tasks.Upsert(ctx, task)
		if errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "skipping update of unknown task", "index", i, "id", domain.Deref(task.ID))
			continue
		}
		if err != nil {
			slog.ErrorContext(ctx, "upserting task failed", "index", i, "error", err)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: dto.MsgInternalError})
			return
		}
		saved = append(saved, stored)
	}

	slog.InfoContext(ctx, "tasks upserted", "incoming", len(req.Tasks), "persisted", len(saved))

	if len(saved) == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: dto.NoValidEntitiesMessage("tasks")})
		return
	}
	c.JSON(http.StatusOK, dto.TasksResponse{Tasks: saved})
}

func (h *StateHandler) ListProjects(c *gin.Context) {
	ctx := c.Request.Context()

	projects, err := h.projects.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "listing projects failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: dto.MsgInternalError})
		return
	}
	c.JSON(http.StatusOK, dto.ProjectsResponse{Projects: projects})
}

func (h *StateHandler) UpsertProjects(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpsertProjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: dto.BindErrorMessage(err, "projects")})
		return
	}

	saved := make([]domain.Project, 0, len(req.Projects))
	for i, item := range req.Projects {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		project, ok := normalize.Project(m)
		if !ok {
			continue
		}
		stored, err := h.projects.Upsert(ctx, project)
		if errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "skipping update of unknown project", "index", i, "id", domain.Deref(project.ID))
			continue
		}
		if err != nil {
			slog.ErrorContext(ctx, "upserting project failed", "index", i, "error", err)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: dto.MsgInternalError})
			return
		}
		saved = append(saved, stored)
	}

	slog.InfoContext(ctx, "projects upserted", "incoming", len(req.Projects), "persisted", len(saved))

	if len(saved) == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: dto.NoValidEntitiesMessage("projects")})
		return
	}
	c.JSON(http.StatusOK, dto.ProjectsResponse{Projects: saved})
}
