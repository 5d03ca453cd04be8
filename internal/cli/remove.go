package cli

import (
	"github.com/spf13/cobra"

	"github.com/ksyq12/sslvhost/internal/config"
	"github.com/ksyq12/sslvhost/internal/output"
)

var (
	forceRemove bool
	keepSite    bool
)

var removeCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a virtual host",
	Long: `Deregister a virtual host from Apache and drop it from the manifest.

The vhost directory with its certificate material is left in place.

Examples:
  sslvhost remove example.com
  sslvhost rm example.com --force
  sslvhost rm example.com --keep-site`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&forceRemove, "force", "f", false, "Force removal without confirmation")
	removeCmd.Flags().BoolVar(&keepSite, "keep-site", false, "Only drop the manifest entry, leave Apache untouched")

	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	if err := validateName(name); err != nil {
		return err
	}

	cfg, params, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	vhost, err := cfg.GetVHost(name)
	if err != nil {
		return err
	}

	if !forceRemove && !confirm("Are you sure you want to remove vhost '%s'?", name) {
		output.Info("Removal cancelled")
		return nil
	}

	result := newSuccessResult(name, "removed")
	if !keepSite {
		vhost.Ensure = config.EnsureAbsent
		report, err := converge(commandContext(cmd), cfg, params, drv, runOptions{
			names:  []string{name},
			record: true,
		})
		if report != nil {
			result.RunID = report.RunID
		}
		if err != nil {
			// Keep the entry, now marked absent, so a later apply retries
			if report != nil && !jsonOutput {
				_ = printReport(report)
			}
			if saveErr := saveConfig(cfg); saveErr != nil {
				output.Warn("%v", saveErr)
			}
			return err
		}
	}

	if err := cfg.RemoveVHost(name); err != nil {
		return err
	}
	if err := saveConfig(cfg); err != nil {
		output.Warn("VHost removed but config save failed: %v", err)
	}

	return outputResult(result, "VHost %s removed", name)
}
