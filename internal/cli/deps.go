package cli

import (
	"os"

	"github.com/ksyq12/sslvhost/internal/config"
	"github.com/ksyq12/sslvhost/internal/driver"
	"github.com/ksyq12/sslvhost/internal/errors"
	"github.com/ksyq12/sslvhost/internal/executor"
	"github.com/ksyq12/sslvhost/internal/fetch"
	"github.com/ksyq12/sslvhost/internal/input"
	"github.com/ksyq12/sslvhost/internal/platform"
	"github.com/ksyq12/sslvhost/internal/vhostssl"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader     ConfigLoader
	PlatformDetector PlatformDetector
	DriverFactory    DriverFactory
	RootChecker      RootChecker
	StdinReader      StdinReader
	Executor         executor.CommandExecutor
	Fetcher          fetch.Fetcher
}

// ConfigLoader handles manifest loading and saving
type ConfigLoader interface {
	// Load reads the manifest at path, or the default one when path is empty
	Load(path string) (*config.Config, error)
	Save(cfg *config.Config) error
}

// PlatformDetector resolves the OS family parameters for a site
type PlatformDetector interface {
	Detect(site config.Site) (platform.Params, error)
}

// DriverFactory creates the Apache driver for a platform
type DriverFactory interface {
	Create(params platform.Params, exec executor.CommandExecutor) (driver.Driver, error)
}

// RootChecker checks root privileges
type RootChecker interface {
	RequireRoot() error
}

// StdinReader reads from stdin
type StdinReader interface {
	ReadString(delim byte) (string, error)
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader:     &realConfigLoader{},
	PlatformDetector: &realPlatformDetector{},
	DriverFactory:    &realDriverFactory{},
	RootChecker:      &realRootChecker{},
	StdinReader:      input.NewStdinReader(),
	Executor:         executor.NewSystemExecutor(),
	Fetcher:          fetch.New(),
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

// Real implementations that delegate to existing functions

type realConfigLoader struct{}

func (r *realConfigLoader) Load(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func (r *realConfigLoader) Save(cfg *config.Config) error {
	return cfg.Save()
}

type realPlatformDetector struct{}

func (r *realPlatformDetector) Detect(site config.Site) (platform.Params, error) {
	return vhostssl.ParamsFor(site)
}

type realDriverFactory struct{}

func (r *realDriverFactory) Create(params platform.Params, exec executor.CommandExecutor) (driver.Driver, error) {
	return driver.NewApache(params, exec), nil
}

type realRootChecker struct{}

func (r *realRootChecker) RequireRoot() error {
	if os.Geteuid() != 0 {
		return errors.ErrRootRequired
	}
	return nil
}
