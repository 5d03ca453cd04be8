package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sslvhost/internal/engine"
	"github.com/ksyq12/sslvhost/internal/output"
	"github.com/ksyq12/sslvhost/internal/state"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show past convergence runs",
	Long: `List recorded apply and watch runs, newest first, or show the events of
one run.

Examples:
  sslvhost history
  sslvhost history --limit 5 --json
  sslvhost history 0b6c1f7e-4d0a-4a53-9c55-2f1f0d0c9a11`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Number of runs to list (0 lists all)")

	rootCmd.AddCommand(historyCmd)
}

// historyItem summarises one run
type historyItem struct {
	RunID    string               `json:"run_id"`
	Started  string               `json:"started"`
	Duration string               `json:"duration"`
	Noop     bool                 `json:"noop"`
	Counts   map[engine.Status]int `json:"counts"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := state.Open(cfg.StatePath())
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 {
		report, err := store.Get(args[0])
		if err != nil {
			return err
		}
		verboseBefore := verbose
		verbose = true
		defer func() { verbose = verboseBefore }()
		return printReport(report)
	}

	reports, err := store.Recent(historyLimit)
	if err != nil {
		return err
	}

	items := make([]historyItem, 0, len(reports))
	for _, r := range reports {
		items = append(items, historyItem{
			RunID:    r.RunID,
			Started:  r.Started.Local().Format("2006-01-02 15:04:05"),
			Duration: r.Duration().String(),
			Noop:     r.Noop,
			Counts:   r.Counts(),
		})
	}

	if jsonOutput {
		return output.JSON(items)
	}
	if len(items) == 0 {
		output.Info("No runs recorded")
		return nil
	}

	headers := []string{"RUN", "STARTED", "DURATION", "CHANGED", "FAILED", "SKIPPED"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		changed := item.Counts[engine.StatusChanged] + item.Counts[engine.StatusRefreshed]
		rows = append(rows, []string{
			item.RunID,
			item.Started,
			item.Duration,
			strconv.Itoa(changed),
			strconv.Itoa(item.Counts[engine.StatusFailed]),
			strconv.Itoa(item.Counts[engine.StatusSkipped]),
		})
	}
	output.Table(headers, rows)
	return nil
}
