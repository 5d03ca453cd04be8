package driver

import "context"

// Driver is the interface the site resource uses to register a virtual
// host with the web server.
type Driver interface {
	// Name returns the driver name
	Name() string

	// Add writes the site config, replacing any previous content
	Add(name, configContent string) error

	// Read returns the current site config; the error satisfies
	// os.IsNotExist when there is none
	Read(name string) (string, error)

	// Remove deletes a site config, disabling it first
	Remove(name string) error

	// Enable activates a site
	Enable(name string) error

	// Disable deactivates a site
	Disable(name string) error

	// List returns all site names known to the web server
	List() ([]string, error)

	// IsEnabled checks if a site is enabled
	IsEnabled(name string) (bool, error)

	// Test validates the web server config syntax
	Test(ctx context.Context) error

	// Reload gracefully restarts the web server
	Reload(ctx context.Context) error

	// Paths returns the driver's config paths
	Paths() Paths
}

// Paths contains the web server config directory paths
type Paths struct {
	Available string // config available directory
	Enabled   string // config enabled directory
}

// Linked reports whether sites are activated by symlinking from Available
// into Enabled.
func (p Paths) Linked() bool {
	return p.Available != p.Enabled
}
