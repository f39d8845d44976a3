package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ludvigisaksen/PA-AI/internal/domain"
)

const (
	MsgInvalidJSON     = "Invalid JSON body"
	MsgNotFound        = "Not found"
	MsgInternalError   = "Internal server error"
	msgMissingArray    = "Body must include %s array"
	msgNoValidEntities = "No valid %s provided"
)

// Entries are decoded loosely; each one is sanitized on its own and invalid
// ones are skipped.
type UpsertTasksRequest struct {
	Tasks []any `json:"tasks" binding:"required"`
}

type UpsertProjectsRequest struct {
	Projects []any `json:"projects" binding:"required"`
}

type TasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

type ProjectsResponse struct {
	Projects []domain.Project `json:"projects"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// BindErrorMessage maps a JSON binding failure to the client-facing message.
// Broken JSON is reported as such; anything else means the collection array
// was missing or had the wrong type.
func BindErrorMessage(err error, collection string) string {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return MsgInvalidJSON
	}
	return fmt.Sprintf(msgMissingArray, collection)
}

func NoValidEntitiesMessage(collection string) string {
	return fmt.Sprintf(msgNoValidEntities, collection)
}
