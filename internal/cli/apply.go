package cli

import (
	"github.com/spf13/cobra"

	"github.com/ksyq12/sslvhost/internal/output"
)

var noopRun bool

var applyCmd = &cobra.Command{
	Use:   "apply [name...]",
	Short: "Converge virtual hosts to the manifest",
	Long: `Converge every virtual host in the manifest, or only the named ones.

Resources are processed in dependency order. A failed resource skips
everything that depends on it; Apache is reloaded once at most.

Examples:
  sslvhost apply
  sslvhost apply example.com www.example.org
  sslvhost apply --noop --json`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().BoolVarP(&noopRun, "noop", "n", false, "Report what would change without changing anything")

	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	for _, name := range args {
		if err := validateName(name); err != nil {
			return err
		}
	}

	cfg, params, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	if len(cfg.VHosts) == 0 && !jsonOutput {
		output.Info("No virtual hosts configured")
	}

	report, err := converge(commandContext(cmd), cfg, params, drv, runOptions{
		names:  args,
		noop:   noopRun,
		record: !noopRun,
	})
	if report == nil {
		return err
	}
	if printErr := printReport(report); printErr != nil {
		return printErr
	}
	return err
}
