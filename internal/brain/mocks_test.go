package brain_test

import (
	"context"

	"github.com/ludvigisaksen/PA-AI/common/llm"
)

type mockLLMClient struct {
	completeFn func(ctx context.Context, req llm.Request) (*llm.Response, error)
	requests   []llm.Request
}

func (m *mockLLMClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	m.requests = append(m.requests, req)
	if m.completeFn != nil {
		return m.completeFn(ctx, req)
	}
	return &llm.Response{Content: "{}"}, nil
}

func (m *mockLLMClient) Model() string {
	return "test-model"
}

func respondWith(content string) func(context.Context, llm.Request) (*llm.Response, error) {
	return func(context.Context, llm.Request) (*llm.Response, error) {
		return &llm.Response{Content: content}, nil
	}
}
