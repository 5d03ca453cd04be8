package resource

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ksyq12/sslvhost/internal/engine"
	"github.com/ksyq12/sslvhost/internal/errors"
	"github.com/ksyq12/sslvhost/internal/executor"
)

// Exec runs a command.
//
// With Creates set, the command is considered done once that path exists.
// A RefreshOnly command never runs on its own; it runs when a resource it
// subscribes to changes.
type Exec struct {
	Name        string
	Command     string
	Args        []string
	Creates     string
	RefreshOnly bool
	Executor    executor.CommandExecutor
}

// ID implements engine.Resource.
func (e *Exec) ID() engine.ID {
	return engine.MakeID("Exec", e.Name)
}

// CommandLine returns the command as it would be typed.
func (e *Exec) CommandLine() string {
	return executor.CommandLine(e.Command, e.Args...)
}

// Check implements engine.Resource.
func (e *Exec) Check(ctx context.Context) (string, error) {
	if e.RefreshOnly || e.created() {
		return "", nil
	}
	return "would run " + e.CommandLine(), nil
}

// Apply implements engine.Resource.
func (e *Exec) Apply(ctx context.Context) error {
	if err := e.run(ctx); err != nil {
		return err
	}
	if e.Creates != "" && !e.created() {
		return errors.Wrap(errors.ErrCodeResource, "command did not create its marker",
			fmt.Errorf("%s: %s", e.CommandLine(), e.Creates))
	}
	return nil
}

// Refresh implements engine.Refresher.
func (e *Exec) Refresh(ctx context.Context) error {
	if e.created() {
		return nil
	}
	return e.run(ctx)
}

func (e *Exec) created() bool {
	if e.Creates == "" {
		return false
	}
	_, err := os.Stat(e.Creates)
	return err == nil
}

func (e *Exec) run(ctx context.Context) error {
	exec := e.Executor
	if exec == nil {
		exec = executor.NewSystemExecutor()
	}
	output, err := exec.Execute(ctx, e.Command, e.Args...)
	if err != nil {
		return fmt.Errorf("%s failed: %s: %w", e.CommandLine(), strings.TrimSpace(string(output)), err)
	}
	return nil
}
