package config

import (
	"time"

	"github.com/ksyq12/sslvhost/internal/tristate"
)

// VHost declares one SSL virtual host.
//
// The tri-state fields distinguish "not given" from "use the default" and
// from an explicit value; see the tristate package.
type VHost struct {
	Name   string `yaml:"name" validate:"required,vhostname"`
	Ensure string `yaml:"ensure,omitempty" validate:"omitempty,oneof=present absent"`

	IPAddress string   `yaml:"ip_address,omitempty"`
	Ports     []string `yaml:"ports,omitempty" validate:"dive,required"`
	SSLPorts  []string `yaml:"sslports,omitempty" validate:"dive,required"`
	Aliases   []string `yaml:"aliases,omitempty" validate:"dive,vhostname"`

	DocRoot tristate.Value `yaml:"docroot,omitempty"`
	CGIBin  tristate.Value `yaml:"cgibin,omitempty"`
	Readme  string         `yaml:"readme,omitempty"`

	User  string `yaml:"user,omitempty"`
	Group string `yaml:"group,omitempty"`
	Mode  string `yaml:"mode,omitempty" validate:"omitempty,filemode"`
	Admin string `yaml:"admin,omitempty" validate:"omitempty,email"`

	AccessLogFormat string `yaml:"accesslog_format,omitempty"`
	Days            int    `yaml:"days,omitempty" validate:"omitempty,gt=0"`
	SSLOnly         bool   `yaml:"sslonly,omitempty"`
	ConfigContent   string `yaml:"config_content,omitempty"`

	CertFile   tristate.Value `yaml:"certfile,omitempty"`
	CertKey    tristate.Value `yaml:"certkey,omitempty"`
	CACert     tristate.Value `yaml:"cacert,omitempty"`
	CertChain  tristate.Value `yaml:"certchain,omitempty"`
	CertCN     tristate.Value `yaml:"certcn,omitempty"`
	PublishCSR tristate.Value `yaml:"publish_csr,omitempty"`

	CreatedAt time.Time `yaml:"created_at,omitempty"`
}

// Ensure values
const (
	EnsurePresent = "present"
	EnsureAbsent  = "absent"
)

// Defaults for vhost attributes the manifest leaves empty.
const (
	DefaultIPAddress       = "*"
	DefaultPort            = "*:80"
	DefaultSSLPort         = "*:443"
	DefaultGroup           = "root"
	DefaultMode            = "2570"
	DefaultAccessLogFormat = "combined"
)

// IsPresent reports whether the vhost should exist.
func (v *VHost) IsPresent() bool {
	return v.Ensure != EnsureAbsent
}

// EnsureOrDefault returns the ensure value with the default applied.
func (v *VHost) EnsureOrDefault() string {
	if v.Ensure == "" {
		return EnsurePresent
	}
	return v.Ensure
}

// ValidEnsures returns the accepted ensure values
func ValidEnsures() []string {
	return []string{EnsurePresent, EnsureAbsent}
}

// IsValidEnsure checks if the given ensure value is valid
func IsValidEnsure(e string) bool {
	for _, valid := range ValidEnsures() {
		if e == valid {
			return true
		}
	}
	return false
}
