package llm

import (
	"errors"

	"github.com/invopop/jsonschema"
)

// ErrEmptyResponse is returned when the model answers with no choices or
// blank content.
var ErrEmptyResponse = errors.New("llm returned empty content")

// Config holds LLM client configuration.
type Config struct {
	APIKey  string // Required: API key for the provider
	BaseURL string // Optional: custom API endpoint
	Model   string // Model name (e.g., "gpt-4.1-nano")
}

// Request is a single system+user completion.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	Schema       any // Optional: JSON schema hint, nil = plain JSON object mode
	MaxTokens    int
	Temperature  *float64 // nil = model default, explicit 0 = deterministic
}

// Response carries the raw text the model produced. Callers own parsing;
// nothing here assumes the text is valid JSON.
type Response struct {
	Content          string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
}

// GenerateSchema reflects a JSON schema for T to send as a response format hint.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func Temp(t float64) *float64 {
	return &t
}
