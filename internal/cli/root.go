package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sslvhost/internal/errors"
	"github.com/ksyq12/sslvhost/internal/logger"
	"github.com/ksyq12/sslvhost/internal/output"
)

var (
	configPath string
	jsonOutput bool
	verbose    bool
	version    = "dev"
)

// Process exit codes. A run where some resource failed exits differently
// from a command that could not start, so cron wrappers can tell them apart.
// An interrupted run exits like a shell job killed by SIGINT.
const (
	exitOK          = 0
	exitError       = 1
	exitRunFailed   = 2
	exitUnsupported = 3
	exitCancelled   = 130
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sslvhost",
	Short: "Declarative SSL virtual host provisioning for Apache",
	Long: `sslvhost converges SSL-enabled Apache virtual hosts to the state declared
in a YAML manifest.

For every vhost it manages the document tree, the ssl directory with its
request configuration, the certificate generation script run, the
certificate material, an optional published CSR and the Apache site
registration. Apache is gracefully reloaded when anything it reads changes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(verbose)
	},
}

// Execute runs the root command and exits with a code describing the failure
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		output.Error("%v", err)
	}
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errors.ErrRunCancelled):
		return exitCancelled
	case errors.Is(err, errors.ErrResourceFailed):
		return exitRunFailed
	case errors.Is(err, errors.ErrUnsupportedFamily):
		return exitUnsupported
	default:
		return exitError
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.SetVersionTemplate("sslvhost {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Manifest path (default ~/.config/sslvhost/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
}
