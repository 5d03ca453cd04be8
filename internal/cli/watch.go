package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/ksyq12/sslvhost/internal/config"
	"github.com/ksyq12/sslvhost/internal/errors"
	"github.com/ksyq12/sslvhost/internal/logger"
	"github.com/ksyq12/sslvhost/internal/output"
	"github.com/ksyq12/sslvhost/internal/state"
)

var (
	watchSchedule string
	watchKeep     int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Converge on a schedule",
	Long: `Run apply periodically until interrupted. The manifest is re-read for
every run and runs never overlap: a tick that fires while the previous run
is still busy is skipped.

The schedule is a cron expression or a descriptor such as "@every 30m" or
"@hourly". It defaults to the site schedule, then to every 30 minutes.

Examples:
  sslvhost watch
  sslvhost watch --schedule "0 */6 * * *" --keep 200`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchSchedule, "schedule", "s", "", "Cron schedule (default: site schedule)")
	watchCmd.Flags().IntVar(&watchKeep, "keep", 100, "Number of runs kept in the history (0 keeps all)")

	rootCmd.AddCommand(watchCmd)
}

// cronLogger routes scheduler messages to the package logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.DebugFields("cron: "+msg, kvFields(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kvFields(keysAndValues)
	fields["error"] = err
	logger.ErrorFields("cron: "+msg, fields)
}

func kvFields(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			fields[k] = kv[i+1]
		}
	}
	return fields
}

// newScheduler returns a cron scheduler running job on spec, skipping ticks
// while a previous job is still running
func newScheduler(spec string, job func()) (*cron.Cron, error) {
	log := cronLogger{}
	c := cron.New(
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)
	if _, err := c.AddFunc(spec, job); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, "invalid schedule "+spec, err)
	}
	return c, nil
}

// scheduleFor picks the flag, then the site schedule, then the default
func scheduleFor(cfg *config.Config) string {
	switch {
	case watchSchedule != "":
		return watchSchedule
	case cfg.Site.Schedule != "":
		return cfg.Site.Schedule
	default:
		return config.DefaultSchedule
	}
}

// watchTick performs one scheduled run and trims the history. Failures are
// logged; the watch keeps going.
func watchTick(ctx context.Context) {
	cfg, params, drv, err := loadConfigAndDriver()
	if err != nil {
		logger.LogError(err, "scheduled run not started")
		return
	}

	report, err := converge(ctx, cfg, params, drv, runOptions{record: true})
	if report == nil {
		logger.LogError(err, "scheduled run not started")
		return
	}
	fields := map[string]interface{}{
		"run":      report.RunID,
		"duration": report.Duration().String(),
		"changed":  report.Changed(),
		"failed":   report.Failed(),
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.ErrorFields("scheduled run finished with failures", fields)
	} else {
		logger.InfoFields("scheduled run finished", fields)
	}

	if watchKeep > 0 {
		pruneHistory(cfg, watchKeep)
	}
}

func pruneHistory(cfg *config.Config, keep int) {
	store, err := state.Open(cfg.StatePath())
	if err != nil {
		logger.LogError(err, "history not pruned")
		return
	}
	defer store.Close()
	if n, err := store.Prune(keep); err != nil {
		logger.LogError(err, "history not pruned")
	} else if n > 0 {
		logger.Debug("pruned %d runs from history", n)
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	spec := scheduleFor(cfg)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := newScheduler(spec, func() { watchTick(ctx) })
	if err != nil {
		return err
	}

	output.Info("Watching %s on schedule %q (Ctrl+C to stop)", cfg.Path(), spec)
	c.Start()
	<-ctx.Done()

	output.Info("Shutting down, waiting for the current run...")
	<-c.Stop().Done()
	return nil
}
