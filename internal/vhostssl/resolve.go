package vhostssl

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ksyq12/sslvhost/internal/config"
	"github.com/ksyq12/sslvhost/internal/csrfile"
	"github.com/ksyq12/sslvhost/internal/errors"
	"github.com/ksyq12/sslvhost/internal/platform"
	"github.com/ksyq12/sslvhost/internal/resource"
	"github.com/ksyq12/sslvhost/internal/tristate"
)

// Slot is one piece of certificate material.
type Slot struct {
	// Path is where Apache reads the file.
	Path string
	// Managed is false when Path belongs to the OS (the CA bundle).
	Managed bool
	// Source is fetched into Path when set. Without it the file is
	// produced by the generation script or placed out of band.
	Source string
}

// Settings is a vhost with every default resolved.
type Settings struct {
	Name    string
	Present bool
	Family  platform.Family

	Dir     string
	SSLDir  string
	DocRoot string
	CGIBin  string
	ConfDir string
	LogDir  string
	Readme  string

	// DocRootManaged and CGIBinManaged are false for explicit paths.
	DocRootManaged bool
	CGIBinManaged  bool

	User  string
	Group string
	Mode  os.FileMode
	Admin string

	IPAddress       string
	Ports           []string
	SSLPorts        []string
	Aliases         []string
	AccessLogFormat string
	SSLOnly         bool
	ConfigContent   string

	CommonName   string
	Country      string
	Organisation string
	Days         int
	Script       string

	SSLeay string
	CSR    string
	Cert   Slot
	Key    Slot
	CACert Slot
	// Chain.Path is empty when no chain is configured.
	Chain Slot

	Publish csrfile.Target
}

// Resolve applies the site defaults and the OS family parameters to v.
func Resolve(v *config.VHost, site config.Site, params platform.Params) (*Settings, error) {
	if v.Name == "" {
		return nil, errors.ErrInvalidDomain
	}

	root := site.Root
	if root == "" {
		root = params.Root
	}
	dir := filepath.Join(root, v.Name)
	sslDir := filepath.Join(dir, "ssl")

	mode, err := resource.ParseMode(orDefault(v.Mode, config.DefaultMode))
	if err != nil {
		return nil, errors.WrapDomain(errors.ErrCodeValidation, v.Name, err)
	}

	ip := orDefault(v.IPAddress, config.DefaultIPAddress)
	ports := v.Ports
	if len(ports) == 0 {
		ports = []string{ip + ":80"}
	}
	sslPorts := v.SSLPorts
	if len(sslPorts) == 0 {
		sslPorts = []string{ip + ":443"}
	}

	admin := v.Admin
	if admin == "" {
		admin = site.Admin
	}
	if admin == "" {
		admin = "webmaster@" + v.Name
	}

	days := v.Days
	if days == 0 {
		days = site.Days
	}

	s := &Settings{
		Name:    v.Name,
		Present: v.IsPresent(),
		Family:  params.Family,

		Dir:     dir,
		SSLDir:  sslDir,
		DocRoot: v.DocRoot.Or(filepath.Join(dir, "htdocs")),
		CGIBin:  dirSlash(v.CGIBin.Or(filepath.Join(dir, "cgi-bin"))),
		ConfDir: filepath.Join(dir, "conf"),
		LogDir:  filepath.Join(dir, "logs"),
		Readme:  v.Readme,

		DocRootManaged: v.DocRoot.Kind() != tristate.Explicit,
		CGIBinManaged:  v.CGIBin.Kind() != tristate.Explicit,

		User:  orDefault(v.User, params.WWWUser),
		Group: orDefault(v.Group, config.DefaultGroup),
		Mode:  mode,
		Admin: admin,

		IPAddress:       ip,
		Ports:           ports,
		SSLPorts:        sslPorts,
		Aliases:         v.Aliases,
		AccessLogFormat: orDefault(v.AccessLogFormat, config.DefaultAccessLogFormat),
		SSLOnly:         v.SSLOnly,
		ConfigContent:   v.ConfigContent,

		CommonName:   v.CertCN.Or(v.Name),
		Country:      site.Country,
		Organisation: site.Organisation,
		Days:         days,
		Script:       site.Script,

		SSLeay: filepath.Join(sslDir, "ssleay.cnf"),
		CSR:    filepath.Join(sslDir, v.Name+".csr"),
		Cert:   sourced(filepath.Join(sslDir, v.Name+".crt"), v.CertFile),
		Key:    sourced(filepath.Join(sslDir, v.Name+".key"), v.CertKey),

		Publish: csrfile.Resolve(v.PublishCSR, root, v.Name),
	}

	if v.CACert.IsUnset() {
		s.CACert = Slot{Path: params.CABundle}
	} else {
		s.CACert = sourced(filepath.Join(sslDir, "cacert.crt"), v.CACert)
	}
	if v.CertChain.IsSet() {
		s.Chain = sourced(filepath.Join(sslDir, "certchain.crt"), v.CertChain)
	}

	return s, nil
}

func sourced(path string, src tristate.Value) Slot {
	source, _ := src.Explicit()
	return Slot{Path: path, Managed: true, Source: source}
}

// dirSlash ends path with a slash, matching the "ScriptAlias /cgi-bin/"
// alias it is the target of.
func dirSlash(path string) string {
	if strings.HasSuffix(path, "/") {
		return path
	}
	return path + "/"
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// DaysArg is the validity argument passed to the generation script.
func (s *Settings) DaysArg() string {
	return strconv.Itoa(s.Days)
}
