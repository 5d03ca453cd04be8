package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sslvhost/internal/config"
	"github.com/ksyq12/sslvhost/internal/driver"
	"github.com/ksyq12/sslvhost/internal/engine"
	"github.com/ksyq12/sslvhost/internal/errors"
	"github.com/ksyq12/sslvhost/internal/input"
	"github.com/ksyq12/sslvhost/internal/logger"
	"github.com/ksyq12/sslvhost/internal/output"
	"github.com/ksyq12/sslvhost/internal/platform"
	"github.com/ksyq12/sslvhost/internal/resource"
	"github.com/ksyq12/sslvhost/internal/state"
	"github.com/ksyq12/sslvhost/internal/vhostssl"
)

// loadConfig loads the manifest selected by --config
func loadConfig() (*config.Config, error) {
	cfg, err := deps.ConfigLoader.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// loadConfigAndDriver loads the manifest, resolves the platform and returns
// the matching Apache driver
func loadConfigAndDriver() (*config.Config, platform.Params, driver.Driver, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, platform.Params{}, nil, err
	}

	params, err := deps.PlatformDetector.Detect(cfg.Site)
	if err != nil {
		return nil, platform.Params{}, nil, err
	}

	drv, err := deps.DriverFactory.Create(params, deps.Executor)
	if err != nil {
		return nil, platform.Params{}, nil, fmt.Errorf("failed to create driver: %w", err)
	}

	return cfg, params, drv, nil
}

// runOptions controls one convergence run
type runOptions struct {
	names  []string
	noop   bool
	record bool
}

// converge builds the catalog for the manifest and applies it. Reports of
// recorded runs go to the state store; a store failure only warns.
func converge(ctx context.Context, cfg *config.Config, params platform.Params, drv driver.Driver, opts runOptions) (*engine.Report, error) {
	privileged := deps.RootChecker.RequireRoot() == nil
	if !privileged && !opts.noop {
		logger.Warn("not running as root, file ownership will not be enforced")
	}
	defer resource.SetManageOwnership(privileged)()

	cat, err := vhostssl.Build(cfg, params, vhostssl.Deps{
		Driver:   drv,
		Executor: deps.Executor,
		Fetcher:  deps.Fetcher,
	}, opts.names...)
	if err != nil {
		return nil, err
	}

	report, err := engine.Apply(ctx, cat, engine.Options{Noop: opts.noop})
	if report == nil {
		return nil, err
	}

	if opts.record {
		if recErr := recordReport(cfg, report); recErr != nil {
			output.Warn("Run %s not recorded: %v", report.RunID, recErr)
		}
	}
	return report, err
}

// recordReport stores report in the run history
func recordReport(cfg *config.Config, report *engine.Report) error {
	store, err := state.Open(cfg.StatePath())
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(report)
}

// printReport shows the events of a run, omitting unchanged resources
// unless verbose is set
func printReport(report *engine.Report) error {
	if jsonOutput {
		return output.JSON(report)
	}

	rows := make([][]string, 0, len(report.Events))
	for _, ev := range report.Events {
		if ev.Status == engine.StatusUnchanged && !verbose {
			continue
		}
		rows = append(rows, []string{string(ev.ID), output.Status(string(ev.Status)), ev.Message})
	}
	if len(rows) > 0 {
		output.Table([]string{"RESOURCE", "STATUS", "MESSAGE"}, rows)
		output.Print("")
	}

	summary := summarize(report)
	switch {
	case report.Failed():
		output.Error("Run %s: %s", report.RunID, summary)
	case report.Noop && report.Changed():
		output.Warn("Run %s (noop): %s", report.RunID, summary)
	case report.Changed():
		output.Success("Run %s: %s", report.RunID, summary)
	default:
		output.Success("Run %s: in sync (%d resources)", report.RunID, len(report.Events))
	}
	return nil
}

// summarize renders the non-zero status counts in a fixed order
func summarize(report *engine.Report) string {
	counts := report.Counts()
	var parts []string
	for _, s := range []engine.Status{
		engine.StatusChanged,
		engine.StatusRefreshed,
		engine.StatusNoop,
		engine.StatusUnchanged,
		engine.StatusFailed,
		engine.StatusSkipped,
	} {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	return strings.Join(parts, ", ") + fmt.Sprintf(" in %s", report.Duration().Round(time.Millisecond))
}

// saveConfig saves the config and returns error instead of just warning
func saveConfig(cfg *config.Config) error {
	if err := deps.ConfigLoader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}

// validateName checks a vhost name given on the command line
func validateName(name string) error {
	if !config.ValidName(name) {
		return errors.Validation(fmt.Sprintf("invalid vhost name %q", name))
	}
	return nil
}

// confirm asks a yes/no question on stdin; anything but y or yes is no
func confirm(format string, args ...interface{}) bool {
	output.Print(format+" [y/N]: ", args...)
	return input.Confirm(deps.StdinReader)
}

// commandContext returns the command's context, or Background when the
// command is invoked directly from tests
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// CommandResult represents a common result structure for CLI commands
type CommandResult struct {
	Success bool   `json:"success"`
	Name    string `json:"name"`
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
	RunID   string `json:"run_id,omitempty"`
}

// newSuccessResult creates a success result
func newSuccessResult(name, action string) CommandResult {
	return CommandResult{
		Success: true,
		Name:    name,
		Action:  action,
	}
}
