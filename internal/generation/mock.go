package generation

import (
	"context"
	"fmt"
)

// MockGenerator answers by echoing the context. Useful for development and
// tests where no generation backend is available.
type MockGenerator struct{}

// NewMockGenerator creates a mock generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns a deterministic answer built from the inputs.
func (m *MockGenerator) Generate(_ context.Context, query, contextText string) (string, error) {
	if contextText == "" {
		return EmptyAnswer, nil
	}
	return fmt.Sprintf("Based on the available documents: %s", contextText), nil
}

// Close is a no-op.
func (m *MockGenerator) Close() error {
	return nil
}
