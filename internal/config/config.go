package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ksyq12/sslvhost/internal/errors"
)

// Config is the manifest: site-wide defaults plus the declared vhosts.
type Config struct {
	Site   Site              `yaml:"site"`
	VHosts map[string]*VHost `yaml:"vhosts"`

	path string
}

// Site holds defaults shared by every vhost on the host.
type Site struct {
	Country      string `yaml:"country" validate:"required,len=2,alpha"`
	Organisation string `yaml:"organisation" validate:"required"`
	Admin        string `yaml:"admin,omitempty" validate:"omitempty,email"`
	Root         string `yaml:"root,omitempty" validate:"omitempty,abspath"`
	Script       string `yaml:"script" validate:"required,abspath"`
	Days         int    `yaml:"days" validate:"gt=0"`
	OSFamily     string `yaml:"os_family,omitempty" validate:"omitempty,oneof=debian redhat"`
	StateDB      string `yaml:"state_db,omitempty" validate:"omitempty,abspath"`
	Schedule     string `yaml:"schedule,omitempty"`
}

// Defaults applied when the manifest leaves them out.
const (
	DefaultCountry      = "CH"
	DefaultOrganisation = "Example Organisation"
	DefaultDays         = 3650
	DefaultScript       = "/usr/local/sbin/generate-ssl-cert.sh"
	DefaultSchedule     = "@every 30m"
)

// Environment variables overriding site settings.
const (
	EnvCountry      = "SSLVHOST_COUNTRY"
	EnvOrganisation = "SSLVHOST_ORGANISATION"
	EnvAdmin        = "SSLVHOST_ADMIN"
	EnvOSFamily     = "SSLVHOST_OS_FAMILY"
	EnvRoot         = "SSLVHOST_ROOT"
)

// configDir is the default config directory
const configDir = ".config/sslvhost"
const configFile = "config.yaml"
const stateFile = "state.db"

// New creates a new Config with default values
func New() *Config {
	return &Config{
		Site: Site{
			Country:      DefaultCountry,
			Organisation: DefaultOrganisation,
			Script:       DefaultScript,
			Days:         DefaultDays,
		},
		VHosts: make(map[string]*VHost),
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

// ConfigPath returns the config file path
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config from the default path.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. A missing file yields the defaults.
// A .env file next to the config is loaded first; variables already in the
// environment win over it. Environment overrides are applied last.
func LoadFrom(path string) (*Config, error) {
	loadDotEnv(filepath.Join(filepath.Dir(path), ".env"))

	cfg := New()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfig, "failed to parse config", err)
		}
	}

	// Initialize VHosts map if nil
	if cfg.VHosts == nil {
		cfg.VHosts = make(map[string]*VHost)
	}
	for name, v := range cfg.VHosts {
		if v == nil {
			v = &VHost{}
			cfg.VHosts[name] = v
		}
		if v.Name == "" {
			v.Name = name
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func loadDotEnv(path string) {
	if _, err := os.Stat(path); err == nil {
		_ = godotenv.Load(path)
	}
}

func (c *Config) applyEnv() {
	for env, dst := range map[string]*string{
		EnvCountry:      &c.Site.Country,
		EnvOrganisation: &c.Site.Organisation,
		EnvAdmin:        &c.Site.Admin,
		EnvOSFamily:     &c.Site.OSFamily,
		EnvRoot:         &c.Site.Root,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*dst = v
		}
	}
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// StatePath returns the run history database path.
func (c *Config) StatePath() string {
	if c.Site.StateDB != "" {
		return c.Site.StateDB
	}
	if c.path != "" {
		return filepath.Join(filepath.Dir(c.path), stateFile)
	}
	dir, err := ConfigDir()
	if err != nil {
		return stateFile
	}
	return filepath.Join(dir, stateFile)
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return err
		}
		c.path = path
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// AddVHost adds a vhost to the config
func (c *Config) AddVHost(vhost *VHost) error {
	if _, exists := c.VHosts[vhost.Name]; exists {
		return errors.AlreadyExists(vhost.Name)
	}
	c.VHosts[vhost.Name] = vhost
	return nil
}

// GetVHost returns a vhost by name
func (c *Config) GetVHost(name string) (*VHost, error) {
	vhost, exists := c.VHosts[name]
	if !exists {
		return nil, errors.NotFound(name)
	}
	return vhost, nil
}

// RemoveVHost removes a vhost from the config
func (c *Config) RemoveVHost(name string) error {
	if _, exists := c.VHosts[name]; !exists {
		return errors.NotFound(name)
	}
	delete(c.VHosts, name)
	return nil
}

// ListVHosts returns all vhosts sorted by name
func (c *Config) ListVHosts() []*VHost {
	vhosts := make([]*VHost, 0, len(c.VHosts))
	for _, v := range c.VHosts {
		vhosts = append(vhosts, v)
	}
	sort.Slice(vhosts, func(i, j int) bool { return vhosts[i].Name < vhosts[j].Name })
	return vhosts
}
