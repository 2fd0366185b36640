package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ecotrack/internal/cli"
	"github.com/rshade/ecotrack/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.String())
		require.NotNil(t, root)
		assert.Equal(t, "ecotrack", root.Use)
	})
}

func TestExtractBudgetExitCode(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantExitCode int
		wantIsBudget bool
	}{
		{
			name:         "BudgetExitError with exit code 2",
			err:          &cli.BudgetExitError{ExitCode: 2, Reason: "budget exceeded"},
			wantExitCode: 2,
			wantIsBudget: true,
		},
		{
			name:         "wrapped BudgetExitError",
			err:          errors.Join(errors.New("outer"), &cli.BudgetExitError{ExitCode: 3, Reason: "wrapped budget"}),
			wantExitCode: 3,
			wantIsBudget: true,
		},
		{
			name:         "non-BudgetExitError falls through",
			err:          errors.New("generic error"),
			wantExitCode: 1,
		},
		{
			name:         "nil error returns 0",
			err:          nil,
			wantExitCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantExitCode, extractBudgetExitCode(tt.err))

			var budgetErr *cli.BudgetExitError
			assert.Equal(t, tt.wantIsBudget, errors.As(tt.err, &budgetErr))
		})
	}
}
