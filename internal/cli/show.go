package cli

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sslvhost/internal/output"
	"github.com/ksyq12/sslvhost/internal/resource"
	"github.com/ksyq12/sslvhost/internal/vhostssl"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the resolved settings of a virtual host",
	Long: `Show a virtual host with every default resolved: paths, ports,
certificate material and CSR publication.

Examples:
  sslvhost show example.com
  sslvhost show example.com --json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

// showDetail represents the detailed vhost information for output
type showDetail struct {
	Name       string     `json:"name"`
	Ensure     string     `json:"ensure"`
	Family     string     `json:"os_family"`
	CommonName string     `json:"common_name"`
	Aliases    []string   `json:"aliases,omitempty"`
	Admin      string     `json:"admin"`
	Ports      []string   `json:"ports,omitempty"`
	SSLPorts   []string   `json:"sslports"`
	SSLOnly    bool       `json:"sslonly"`
	Dir        string     `json:"dir"`
	DocRoot    string     `json:"docroot"`
	CGIBin     string     `json:"cgibin"`
	Owner      string     `json:"owner"`
	Mode       string     `json:"mode"`
	Days       int        `json:"days"`
	SSLeay     string     `json:"ssleay"`
	Cert       string     `json:"cert"`
	Key        string     `json:"key"`
	CACert     string     `json:"cacert"`
	Chain      string     `json:"certchain,omitempty"`
	CSR        string     `json:"csr"`
	PublishCSR string     `json:"publish_csr,omitempty"`
	Expires    *time.Time `json:"expires,omitempty"`
	Enabled    bool       `json:"enabled"`
	CreatedAt  time.Time  `json:"created_at,omitempty"`
}

func runShow(cmd *cobra.Command, args []string) error {
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

	s, err := vhostssl.Resolve(vhost, cfg.Site, params)
	if err != nil {
		return err
	}

	enabled, err := drv.IsEnabled(name)
	if err != nil {
		output.Warn("Could not determine enabled status: %v", err)
	}

	detail := showDetail{
		Name:       s.Name,
		Ensure:     vhost.EnsureOrDefault(),
		Family:     s.Family.String(),
		CommonName: s.CommonName,
		Aliases:    s.Aliases,
		Admin:      s.Admin,
		SSLPorts:   s.SSLPorts,
		SSLOnly:    s.SSLOnly,
		Dir:        s.Dir,
		DocRoot:    s.DocRoot,
		CGIBin:     s.CGIBin,
		Owner:      s.User + ":" + s.Group,
		Mode:       resource.FormatMode(s.Mode),
		Days:       s.Days,
		SSLeay:     s.SSLeay,
		Cert:       slotLabel(s.Cert),
		Key:        slotLabel(s.Key),
		CACert:     slotLabel(s.CACert),
		Chain:      slotLabel(s.Chain),
		CSR:        s.CSR,
		Enabled:    enabled,
		CreatedAt:  vhost.CreatedAt,
	}
	if !s.SSLOnly {
		detail.Ports = s.Ports
	}
	if s.Publish.Publish {
		detail.PublishCSR = s.Publish.Path
	}
	if expiry, err := certExpiry(s.Cert.Path); err == nil {
		detail.Expires = &expiry
	}

	if jsonOutput {
		return output.JSON(detail)
	}

	output.Print("")
	output.Print("Name:       %s (%s)", detail.Name, detail.Ensure)
	output.Print("Platform:   %s", detail.Family)
	output.Print("CN:         %s", detail.CommonName)
	if len(detail.Aliases) > 0 {
		output.Print("Aliases:    %s", strings.Join(detail.Aliases, ", "))
	}
	output.Print("Admin:      %s", detail.Admin)
	if len(detail.Ports) > 0 {
		output.Print("Ports:      %s", strings.Join(detail.Ports, ", "))
	}
	output.Print("SSL ports:  %s", strings.Join(detail.SSLPorts, ", "))
	output.Print("Directory:  %s (%s, %s)", detail.Dir, detail.Owner, detail.Mode)
	output.Print("DocRoot:    %s", detail.DocRoot)
	output.Print("CGI:        %s", detail.CGIBin)
	output.Print("SSL:")
	output.Print("  Config:   %s", detail.SSLeay)
	output.Print("  Cert:     %s", detail.Cert)
	output.Print("  Key:      %s", detail.Key)
	output.Print("  CA:       %s", detail.CACert)
	if detail.Chain != "" {
		output.Print("  Chain:    %s", detail.Chain)
	}
	output.Print("  CSR:      %s", detail.CSR)
	if detail.PublishCSR != "" {
		output.Print("  Published: %s", detail.PublishCSR)
	}
	output.Print("  Days:     %d", detail.Days)
	if detail.Expires != nil {
		output.Print("  Expires:  %s", detail.Expires.Format("2006-01-02"))
	}
	output.Print("Enabled:    %s", yesNo(detail.Enabled))
	if !detail.CreatedAt.IsZero() {
		output.Print("Created:    %s", detail.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	output.Print("")

	return nil
}

// slotLabel describes where a piece of certificate material comes from
func slotLabel(slot vhostssl.Slot) string {
	switch {
	case slot.Path == "":
		return ""
	case !slot.Managed:
		return slot.Path + " (system)"
	case slot.Source != "":
		return slot.Path + " <- " + slot.Source
	default:
		return slot.Path
	}
}

// certExpiry returns the NotAfter date of the PEM certificate at path
func certExpiry(path string) (time.Time, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, err
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return time.Time{}, fmt.Errorf("%s: no PEM data", path)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return time.Time{}, err
	}
	return cert.NotAfter, nil
}
