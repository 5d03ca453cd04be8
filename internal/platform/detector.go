// Package platform maps the host OS family to the Apache and certificate
// parameters that differ between distributions.
package platform

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/ksyq12/sslvhost/internal/errors"
)

// Family is a distribution family with its own Apache layout.
type Family int

// Supported families. Every Family listed in Families must have an entry
// in the params table; init panics otherwise.
const (
	Debian Family = iota + 1
	RedHat
)

// Families returns all supported families.
func Families() []Family {
	return []Family{Debian, RedHat}
}

// String returns the manifest spelling of the family.
func (f Family) String() string {
	switch f {
	case Debian:
		return "debian"
	case RedHat:
		return "redhat"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Params contains the per-family defaults.
type Params struct {
	Family         Family
	CABundle       string // distribution CA bundle
	WWWUser        string // user Apache runs as
	Root           string // parent of all vhost directories
	SitesAvailable string
	SitesEnabled   string // same as SitesAvailable when there is no a2ensite layout
	Ctl            string // apachectl binary
}

var params = map[Family]Params{
	Debian: {
		Family:         Debian,
		CABundle:       "/etc/ssl/certs/ca-certificates.crt",
		WWWUser:        "www-data",
		Root:           "/var/www",
		SitesAvailable: "/etc/apache2/sites-available",
		SitesEnabled:   "/etc/apache2/sites-enabled",
		Ctl:            "apache2ctl",
	},
	RedHat: {
		Family:         RedHat,
		CABundle:       "/etc/pki/tls/certs/ca-bundle.crt",
		WWWUser:        "apache",
		Root:           "/var/www/vhosts",
		SitesAvailable: "/etc/httpd/conf.d",
		SitesEnabled:   "/etc/httpd/conf.d",
		Ctl:            "apachectl",
	},
}

func init() {
	if err := checkExhaustive(params); err != nil {
		panic(err)
	}
}

// checkExhaustive verifies every supported family has complete parameters.
func checkExhaustive(table map[Family]Params) error {
	for _, f := range Families() {
		p, ok := table[f]
		if !ok {
			return fmt.Errorf("platform: no parameters for family %s", f)
		}
		if p.CABundle == "" || p.WWWUser == "" || p.Root == "" || p.SitesAvailable == "" || p.SitesEnabled == "" || p.Ctl == "" {
			return fmt.Errorf("platform: incomplete parameters for family %s", f)
		}
	}
	return nil
}

// ParamsFor returns the parameters of a family.
func ParamsFor(f Family) (Params, error) {
	p, ok := params[f]
	if !ok {
		return Params{}, errors.Wrap(errors.ErrCodePlatform, "unsupported OS family", fmt.Errorf("%s", f))
	}
	return p, nil
}

// ParseFamily maps an os-release ID, ID_LIKE token or manifest value to a
// Family.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debian", "ubuntu", "raspbian", "linuxmint":
		return Debian, nil
	case "redhat", "rhel", "centos", "fedora", "rocky", "almalinux", "ol", "amzn":
		return RedHat, nil
	default:
		return 0, errors.Wrap(errors.ErrCodePlatform, "unsupported OS family", fmt.Errorf("%q", s))
	}
}

// osReleasePath is replaced in tests.
var osReleasePath = "/etc/os-release"

// DetectFamily identifies the host family from /etc/os-release, trying ID
// before each ID_LIKE entry. Hosts that match no family get an error rather
// than a guessed default.
func DetectFamily() (Family, error) {
	if runtime.GOOS != "linux" {
		return 0, errors.Wrap(errors.ErrCodePlatform, "unsupported OS family", fmt.Errorf("unsupported platform: %s", runtime.GOOS))
	}

	id, like, err := readOSRelease(osReleasePath)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeDetect, "cannot detect OS family", err)
	}

	for _, candidate := range append([]string{id}, like...) {
		if f, err := ParseFamily(candidate); err == nil {
			return f, nil
		}
	}
	return 0, errors.Wrap(errors.ErrCodePlatform, "unsupported OS family", fmt.Errorf("ID=%q ID_LIKE=%q", id, strings.Join(like, " ")))
}

// readOSRelease extracts ID and ID_LIKE from an os-release file.
func readOSRelease(path string) (string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	var id string
	var like []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"'`)
		switch key {
		case "ID":
			id = value
		case "ID_LIKE":
			like = strings.Fields(value)
		}
	}
	return id, like, sc.Err()
}

// Platform returns a string describing the current platform.
func Platform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}
