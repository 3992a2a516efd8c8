// Package mocks provides testify mocks for the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	m "argstate.dev/pkg/argstate/internal/model"
)

// MockPipeline is a mock implementation of domain.Pipeline.
type MockPipeline struct {
	mock.Mock
}

// NewMockPipeline creates a new MockPipeline that asserts its expectations
// on test cleanup.
func NewMockPipeline(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPipeline {
	mockObj := &MockPipeline{}
	mockObj.Mock.Test(t)

	t.Cleanup(func() { mockObj.AssertExpectations(t) })

	return mockObj
}

// Run implements domain.Pipeline.
func (mp *MockPipeline) Run(ctx context.Context, cfg *m.RunConfig) (*m.RunSummary, error) {
	args := mp.Called(ctx, cfg)

	var summary *m.RunSummary
	if v := args.Get(0); v != nil {
		summary = v.(*m.RunSummary)
	}

	return summary, args.Error(1)
}
