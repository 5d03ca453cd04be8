package cli

import (
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [name...]",
	Short: "Show what apply would change",
	Long: `Check every resource against the system without changing anything.
Plans are not recorded in the run history.

Examples:
  sslvhost plan
  sslvhost plan example.com -v`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	for _, name := range args {
		if err := validateName(name); err != nil {
			return err
		}
	}

	cfg, params, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	report, err := converge(commandContext(cmd), cfg, params, drv, runOptions{
		names: args,
		noop:  true,
	})
	if report == nil {
		return err
	}
	if printErr := printReport(report); printErr != nil {
		return printErr
	}
	return err
}
