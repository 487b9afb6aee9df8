package testutil

import (
	"context"

	"github.com/arthur-debert/bcforge/pkg/runner"
	"github.com/stretchr/testify/mock"
)

// MockRunner implements runner.Runner for testing.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, cmd runner.Command) (runner.Result, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(runner.Result), args.Error(1)
}

// CommandNamed matches a runner.Command by executable name.
func CommandNamed(name string) interface{} {
	return mock.MatchedBy(func(cmd runner.Command) bool {
		return cmd.Name == name
	})
}
