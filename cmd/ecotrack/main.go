// Command ecotrack is a personal carbon footprint tracker.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rshade/ecotrack/internal/cli"
	"github.com/rshade/ecotrack/pkg/version"
)

func main() {
	os.Exit(extractBudgetExitCode(run()))
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(version.String())
	if err := root.ExecuteContext(ctx); err != nil {
		var budgetErr *cli.BudgetExitError
		if errors.As(err, &budgetErr) {
			fmt.Fprintln(os.Stderr, budgetErr.Reason)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}

// extractBudgetExitCode maps err to the process exit code: 0 for nil, the
// carried code for a budget threshold violation, 1 otherwise.
func extractBudgetExitCode(err error) int {
	if err == nil {
		return 0
	}
	var budgetErr *cli.BudgetExitError
	if errors.As(err, &budgetErr) {
		return budgetErr.ExitCode
	}
	return 1
}
