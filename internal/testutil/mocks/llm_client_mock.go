package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/chunkrecall/trainer/internal/llm"
)

// MockLLMClient is a mock implementation of the llm.Client methods used by
// the exercise generator and service.
type MockLLMClient struct {
	mock.Mock
}

// CompleteJSON records the call. Use .Run to fill out in tests.
func (m *MockLLMClient) CompleteJSON(ctx context.Context, apiKey string, messages []llm.Message, schema llm.Schema, out any) error {
	args := m.Called(ctx, apiKey, messages, schema, out)
	return args.Error(0)
}

func (m *MockLLMClient) Transcribe(ctx context.Context, apiKey, filename string, audio io.Reader) (string, error) {
	args := m.Called(ctx, apiKey, filename, audio)
	return args.String(0), args.Error(1)
}
