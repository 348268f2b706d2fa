package mocks

import (
	"context"

	"github.com/pageza/nutriwise/backend/internal/oracle"
	"github.com/stretchr/testify/mock"
)

// MockOracle is a mock implementation of oracle.Client. Call options are not
// passed to the mock.
type MockOracle struct {
	mock.Mock
}

func (m *MockOracle) Generate(ctx context.Context, prompt string, _ ...oracle.CallOption) (*oracle.Response, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oracle.Response), args.Error(1)
}

func (m *MockOracle) Close() error {
	return m.Called().Error(0)
}
