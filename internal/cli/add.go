package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sslvhost/internal/config"
	"github.com/ksyq12/sslvhost/internal/output"
	"github.com/ksyq12/sslvhost/internal/tristate"
)

var (
	addAliases    []string
	addAdmin      string
	addUser       string
	addGroup      string
	addMode       string
	addDays       int
	addSSLOnly    bool
	addDocRoot    string
	addCGIBin     string
	addCertFile   string
	addCertKey    string
	addCACert     string
	addCertChain  string
	addCertCN     string
	addPublishCSR string
	addApply      bool
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Declare a new SSL virtual host",
	Long: `Add a virtual host to the manifest.

Tri-state flags (--docroot, --cgibin, --cacert, --certchain, --certcn,
--publish-csr, --certfile, --certkey) take "true" for the default value
or an explicit path, source or name.

Examples:
  sslvhost add example.com --alias www.example.com --apply
  sslvhost add example.com --sslonly --publish-csr true
  sslvhost add example.com --cacert https://ca.example.net/ca.crt`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringSliceVarP(&addAliases, "alias", "a", nil, "Alias name, also added to the certificate (repeatable)")
	addCmd.Flags().StringVar(&addAdmin, "admin", "", "ServerAdmin address")
	addCmd.Flags().StringVarP(&addUser, "user", "u", "", "Owner of the vhost tree (default: web server user)")
	addCmd.Flags().StringVarP(&addGroup, "group", "g", "", "Group of the vhost tree (default root)")
	addCmd.Flags().StringVarP(&addMode, "mode", "m", "", "Mode of the vhost root directory (default 2570)")
	addCmd.Flags().IntVar(&addDays, "days", 0, "Certificate validity in days (default: site days)")
	addCmd.Flags().BoolVar(&addSSLOnly, "sslonly", false, "Serve only over SSL")
	addCmd.Flags().StringVar(&addDocRoot, "docroot", "", "Document root")
	addCmd.Flags().StringVar(&addCGIBin, "cgibin", "", "CGI directory")
	addCmd.Flags().StringVar(&addCertFile, "certfile", "", "Certificate source")
	addCmd.Flags().StringVar(&addCertKey, "certkey", "", "Private key source")
	addCmd.Flags().StringVar(&addCACert, "cacert", "", "CA certificate source")
	addCmd.Flags().StringVar(&addCertChain, "certchain", "", "Certificate chain source")
	addCmd.Flags().StringVar(&addCertCN, "certcn", "", "Certificate common name")
	addCmd.Flags().StringVar(&addPublishCSR, "publish-csr", "", "Publish the CSR in the document root")
	addCmd.Flags().BoolVar(&addApply, "apply", false, "Converge the new vhost right away")

	rootCmd.AddCommand(addCmd)
}

// newVHostFromFlags builds the manifest entry for name from the add flags
func newVHostFromFlags(name string) *config.VHost {
	return &config.VHost{
		Name:       name,
		Aliases:    addAliases,
		Admin:      addAdmin,
		User:       addUser,
		Group:      addGroup,
		Mode:       addMode,
		Days:       addDays,
		SSLOnly:    addSSLOnly,
		DocRoot:    tristate.Parse(addDocRoot),
		CGIBin:     tristate.Parse(addCGIBin),
		CertFile:   tristate.Parse(addCertFile),
		CertKey:    tristate.Parse(addCertKey),
		CACert:     tristate.Parse(addCACert),
		CertChain:  tristate.Parse(addCertChain),
		CertCN:     tristate.Parse(addCertCN),
		PublishCSR: tristate.Parse(addPublishCSR),
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	if err := validateName(name); err != nil {
		return err
	}

	vhost := newVHostFromFlags(name)
	if err := vhost.Validate(); err != nil {
		return err
	}

	cfg, params, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	if err := cfg.AddVHost(vhost); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		delete(cfg.VHosts, name)
		return err
	}

	if err := saveConfig(cfg); err != nil {
		return err
	}

	result := newSuccessResult(name, "added")
	if !addApply {
		if !jsonOutput {
			output.Info("Run 'sslvhost apply %s' to converge it", name)
		}
		return outputResult(result, "VHost %s added", name)
	}

	report, err := converge(commandContext(cmd), cfg, params, drv, runOptions{
		names:  []string{name},
		record: true,
	})
	if report == nil {
		return err
	}
	result.RunID = report.RunID
	if err != nil {
		_ = printReport(report)
		return err
	}

	if !jsonOutput {
		if err := printReport(report); err != nil {
			return err
		}
	}
	return outputResult(result, "VHost %s added and converged", name)
}
