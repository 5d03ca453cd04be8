// Package vhost declares the parent virtual host: the document tree under
// <root>/<name> and the Apache site that serves it.
package vhost

import (
	"os"
	"path/filepath"

	"github.com/ksyq12/sslvhost/internal/driver"
	"github.com/ksyq12/sslvhost/internal/engine"
	"github.com/ksyq12/sslvhost/internal/resource"
)

// Spec is a fully resolved parent vhost.
type Spec struct {
	Name    string
	Present bool

	// Dir is <root>/<name>.
	Dir     string
	DocRoot string
	CGIBin  string
	ConfDir string
	LogDir  string
	// ManageDocRoot and ManageCGIBin are false when the path was given
	// explicitly and lives outside the tree.
	ManageDocRoot bool
	ManageCGIBin  bool
	Readme        string

	User  string
	Group string
	Mode  os.FileMode

	// Content is the Apache config body.
	Content string
	Driver  driver.Driver
	// Reload is notified when the site config changes.
	Reload engine.ID
}

// Declared holds the ids other units hang their resources off.
type Declared struct {
	Dir  engine.ID
	Site engine.ID
}

// SiteID returns the id of the site resource for name.
func SiteID(name string) engine.ID {
	return engine.MakeID("Site", name)
}

// Declare adds the parent vhost's resources to cat. An absent vhost only
// deregisters the site; the document tree is left in place.
func Declare(cat *engine.Catalog, spec Spec) (Declared, error) {
	var notify []engine.Option
	if spec.Reload != "" {
		notify = append(notify, engine.Notifies(spec.Reload))
	}

	if !spec.Present {
		site := &resource.Site{Name: spec.Name, Ensure: resource.Absent, Driver: spec.Driver}
		if err := cat.Add(site, notify...); err != nil {
			return Declared{}, err
		}
		return Declared{Site: site.ID()}, nil
	}

	root := &resource.File{
		Path:   spec.Dir,
		Ensure: resource.Directory,
		Owner:  spec.User,
		Group:  spec.Group,
		Mode:   spec.Mode,
	}
	if err := cat.Add(root); err != nil {
		return Declared{}, err
	}

	var tree []engine.ID
	addDir := func(path string, mode os.FileMode) error {
		d := &resource.File{
			Path:   filepath.Clean(path),
			Ensure: resource.Directory,
			Owner:  spec.User,
			Group:  spec.Group,
			Mode:   mode,
		}
		if err := cat.Add(d, engine.Requires(root.ID())); err != nil {
			return err
		}
		tree = append(tree, d.ID())
		return nil
	}

	if err := addDir(spec.ConfDir, 0750); err != nil {
		return Declared{}, err
	}
	if spec.ManageDocRoot {
		if err := addDir(spec.DocRoot, 0750); err != nil {
			return Declared{}, err
		}
	}
	if spec.ManageCGIBin {
		if err := addDir(spec.CGIBin, 0750); err != nil {
			return Declared{}, err
		}
	}
	if err := addDir(spec.LogDir, 0750); err != nil {
		return Declared{}, err
	}

	if spec.Readme != "" {
		readme := &resource.File{
			Path:    filepath.Join(spec.Dir, "README"),
			Ensure:  resource.Present,
			Content: []byte(spec.Readme),
			Owner:   "root",
			Group:   spec.Group,
			Mode:    0644,
		}
		if err := cat.Add(readme, engine.Requires(root.ID())); err != nil {
			return Declared{}, err
		}
	}

	site := &resource.Site{Name: spec.Name, Ensure: resource.Present, Content: spec.Content, Driver: spec.Driver}
	opts := append([]engine.Option{engine.Requires(tree...)}, notify...)
	if err := cat.Add(site, opts...); err != nil {
		return Declared{}, err
	}

	return Declared{Dir: root.ID(), Site: site.ID()}, nil
}
