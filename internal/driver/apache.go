package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ksyq12/sslvhost/internal/executor"
	"github.com/ksyq12/sslvhost/internal/platform"
)

// disabledSuffix marks a site config that was switched off in a layout
// without a separate enabled directory.
const disabledSuffix = ".disabled"

// ApacheDriver implements the Driver interface for Apache httpd
type ApacheDriver struct {
	paths Paths
	ctl   string
	exec  executor.CommandExecutor
}

// NewApache creates an Apache driver for the given OS family parameters
func NewApache(p platform.Params, exec executor.CommandExecutor) *ApacheDriver {
	return NewApacheWithExecutor(p.SitesAvailable, p.SitesEnabled, p.Ctl, exec)
}

// NewApacheWithPaths creates a new Apache driver with custom paths
func NewApacheWithPaths(available, enabled string) *ApacheDriver {
	return NewApacheWithExecutor(available, enabled, "apache2ctl", executor.NewSystemExecutor())
}

// NewApacheWithExecutor creates an Apache driver with custom paths, control
// binary and executor (for testing)
func NewApacheWithExecutor(available, enabled, ctl string, exec executor.CommandExecutor) *ApacheDriver {
	return &ApacheDriver{
		paths: Paths{
			Available: available,
			Enabled:   enabled,
		},
		ctl:  ctl,
		exec: exec,
	}
}

// Name returns the driver name
func (a *ApacheDriver) Name() string {
	return "apache"
}

// Paths returns the config paths
func (a *ApacheDriver) Paths() Paths {
	return a.paths
}

// configFileName returns the config file name with .conf extension
func (a *ApacheDriver) configFileName(name string) string {
	return name + ".conf"
}

func (a *ApacheDriver) availablePath(name string) string {
	return filepath.Join(a.paths.Available, a.configFileName(name))
}

// Add writes a site config file
func (a *ApacheDriver) Add(name, configContent string) error {
	if err := os.MkdirAll(a.paths.Available, 0755); err != nil {
		return fmt.Errorf("failed to create sites-available directory: %w", err)
	}
	if a.paths.Linked() {
		if err := os.MkdirAll(a.paths.Enabled, 0755); err != nil {
			return fmt.Errorf("failed to create sites-enabled directory: %w", err)
		}
	}

	target := a.availablePath(name)
	if !a.paths.Linked() {
		// keep a disabled site disabled across rewrites
		if _, err := os.Stat(target + disabledSuffix); err == nil {
			target += disabledSuffix
		}
	}

	if err := os.WriteFile(target, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Read returns the site config content
func (a *ApacheDriver) Read(name string) (string, error) {
	data, err := os.ReadFile(a.availablePath(name))
	if os.IsNotExist(err) && !a.paths.Linked() {
		data, err = os.ReadFile(a.availablePath(name) + disabledSuffix)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Remove deletes a site config
func (a *ApacheDriver) Remove(name string) error {
	if enabled, _ := a.IsEnabled(name); enabled && a.paths.Linked() {
		if err := a.Disable(name); err != nil {
			return err
		}
	}

	removed := false
	for _, p := range []string{a.availablePath(name), a.availablePath(name) + disabledSuffix} {
		err := os.Remove(p)
		if err == nil {
			removed = true
			continue
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove config file: %w", err)
		}
	}
	if !removed {
		return fmt.Errorf("vhost %s not found", name)
	}
	return nil
}

// Enable activates a site. With a symlink layout it links the config into
// sites-enabled; otherwise it restores a config disabled by Disable.
func (a *ApacheDriver) Enable(name string) error {
	source := a.availablePath(name)

	if !a.paths.Linked() {
		if _, err := os.Stat(source); err == nil {
			return nil
		}
		if err := os.Rename(source+disabledSuffix, source); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("vhost %s not found in %s", name, a.paths.Available)
			}
			return fmt.Errorf("failed to enable vhost: %w", err)
		}
		return nil
	}

	target := filepath.Join(a.paths.Enabled, a.configFileName(name))

	if _, err := os.Stat(source); os.IsNotExist(err) {
		return fmt.Errorf("vhost %s not found in sites-available", name)
	}

	if _, err := os.Lstat(target); err == nil {
		return fmt.Errorf("vhost %s is already enabled", name)
	}

	if err := os.Symlink(source, target); err != nil {
		return fmt.Errorf("failed to enable vhost: %w", err)
	}
	return nil
}

// Disable deactivates a site
func (a *ApacheDriver) Disable(name string) error {
	if !a.paths.Linked() {
		source := a.availablePath(name)
		if _, err := os.Stat(source); os.IsNotExist(err) {
			return fmt.Errorf("vhost %s is not enabled", name)
		}
		if err := os.Rename(source, source+disabledSuffix); err != nil {
			return fmt.Errorf("failed to disable vhost: %w", err)
		}
		return nil
	}

	target := filepath.Join(a.paths.Enabled, a.configFileName(name))

	info, err := os.Lstat(target)
	if os.IsNotExist(err) {
		return fmt.Errorf("vhost %s is not enabled", name)
	}
	if err != nil {
		return fmt.Errorf("failed to check vhost status: %w", err)
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return fmt.Errorf("vhost %s is not a symlink, refusing to remove", name)
	}

	if err := os.Remove(target); err != nil {
		return fmt.Errorf("failed to disable vhost: %w", err)
	}
	return nil
}

// List returns all site names from sites-available
func (a *ApacheDriver) List() ([]string, error) {
	entries, err := os.ReadDir(a.paths.Available)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read sites-available: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), disabledSuffix)
		// Only include .conf files (not directories or hidden files)
		if !entry.IsDir() && !strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".conf") {
			names = append(names, strings.TrimSuffix(name, ".conf"))
		}
	}
	return names, nil
}

// IsEnabled checks if a site is enabled
func (a *ApacheDriver) IsEnabled(name string) (bool, error) {
	target := filepath.Join(a.paths.Enabled, a.configFileName(name))
	_, err := os.Lstat(target)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check vhost status: %w", err)
	}
	return true, nil
}

// Test validates the apache config syntax
func (a *ApacheDriver) Test(ctx context.Context) error {
	output, err := a.exec.Execute(ctx, a.ctl, "configtest")
	if err != nil {
		return fmt.Errorf("apache config test failed: %s", strings.TrimSpace(string(output)))
	}
	return nil
}

// Reload gracefully restarts apache so new certificates and sites are
// picked up without dropping connections
func (a *ApacheDriver) Reload(ctx context.Context) error {
	output, err := a.exec.Execute(ctx, a.ctl, "graceful")
	if err != nil {
		return fmt.Errorf("failed to reload apache: %s", strings.TrimSpace(string(output)))
	}
	return nil
}
