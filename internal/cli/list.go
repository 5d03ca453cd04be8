package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sslvhost/internal/output"
	"github.com/ksyq12/sslvhost/internal/vhostssl"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all virtual hosts",
	Long: `List the virtual hosts of the manifest together with the sites Apache
knows about that the manifest does not declare.

Examples:
  sslvhost list
  sslvhost ls
  sslvhost list --json`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

type vhostListItem struct {
	Name       string `json:"name"`
	Ensure     string `json:"ensure"`
	CommonName string `json:"common_name,omitempty"`
	SSLOnly    bool   `json:"sslonly"`
	PublishCSR bool   `json:"publish_csr"`
	Enabled    bool   `json:"enabled"`
	Managed    bool   `json:"managed"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, params, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	// Get list from driver (to find sites the manifest does not declare)
	driverSites, err := drv.List()
	if err != nil {
		output.Warn("Could not read from %s: %v", drv.Name(), err)
	}

	items := make([]vhostListItem, 0, len(cfg.VHosts))
	for _, v := range cfg.ListVHosts() {
		enabled, _ := drv.IsEnabled(v.Name)
		item := vhostListItem{
			Name:    v.Name,
			Ensure:  v.EnsureOrDefault(),
			SSLOnly: v.SSLOnly,
			Enabled: enabled,
			Managed: true,
		}
		if s, err := vhostssl.Resolve(v, cfg.Site, params); err == nil {
			item.CommonName = s.CommonName
			item.PublishCSR = s.Publish.Publish
		} else {
			output.Warn("%v", err)
		}
		items = append(items, item)
	}

	for _, name := range driverSites {
		if _, exists := cfg.VHosts[name]; exists {
			continue
		}
		enabled, _ := drv.IsEnabled(name)
		items = append(items, vhostListItem{
			Name:    name,
			Ensure:  "unmanaged",
			Enabled: enabled,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})

	if len(items) == 0 {
		if jsonOutput {
			return output.JSON([]vhostListItem{})
		}
		output.Info("No virtual hosts configured")
		return nil
	}

	if jsonOutput {
		return output.JSON(items)
	}

	headers := []string{"NAME", "ENSURE", "CN", "SSLONLY", "CSR", "ENABLED"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.Name,
			item.Ensure,
			item.CommonName,
			yesNo(item.SSLOnly),
			yesNo(item.PublishCSR),
			yesNo(item.Enabled),
		})
	}

	output.Table(headers, rows)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
