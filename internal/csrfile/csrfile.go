// Package csrfile publishes a vhost's certificate signing request.
//
// The request is generated inside the vhost's ssl directory. Publishing
// copies it to a path under the document root (or anywhere else) so the
// signing authority can fetch it. A target that is not published is kept
// absent, so turning publication off removes an earlier copy.
package csrfile

import (
	"fmt"
	"path/filepath"

	"github.com/ksyq12/sslvhost/internal/engine"
	"github.com/ksyq12/sslvhost/internal/resource"
	"github.com/ksyq12/sslvhost/internal/tristate"
)

// Target is where the request is published, and whether it is.
type Target struct {
	Publish bool
	Path    string
}

// DefaultPath returns <root>/<name>/htdocs/<name>.csr.
func DefaultPath(root, name string) string {
	return filepath.Join(root, name, "htdocs", name+".csr")
}

// Resolve maps the publish_csr setting to a target. Unset keeps the default
// path absent, Default publishes to it and an explicit value publishes to
// that path.
func Resolve(publish tristate.Value, root, name string) Target {
	switch publish.Kind() {
	case tristate.Default:
		return Target{Publish: true, Path: DefaultPath(root, name)}
	case tristate.Explicit:
		p, _ := publish.Explicit()
		return Target{Publish: true, Path: p}
	default:
		return Target{Publish: false, Path: DefaultPath(root, name)}
	}
}

// Spec describes one publication.
type Spec struct {
	Target Target
	// Source is the generated request, <ssl>/<name>.csr.
	Source string
	Owner  string
	Group  string
	// Requires lists resources that must converge first: the generating
	// exec and the certificate files.
	Requires []engine.ID
	// Dir, when set, is the directory holding the target. It is declared
	// (requiring DirRequires) unless the catalog already manages it.
	Dir         string
	DirRequires []engine.ID
}

// Declare adds the publication resource to cat and returns its id.
func Declare(cat *engine.Catalog, spec Spec) (engine.ID, error) {
	if spec.Target.Path == "" {
		return "", fmt.Errorf("csr publication path is empty")
	}

	requires := spec.Requires
	f := &resource.File{Path: spec.Target.Path, Ensure: resource.Absent}
	if spec.Target.Publish {
		f.Ensure = resource.Present
		f.CopyFrom = spec.Source
		f.Owner = spec.Owner
		f.Group = spec.Group
		f.Mode = 0644

		if spec.Dir != "" {
			dir, err := declareDir(cat, spec)
			if err != nil {
				return "", err
			}
			requires = append(requires[:len(requires):len(requires)], dir)
		}
	}

	if err := cat.Add(f, engine.Requires(requires...)); err != nil {
		return "", err
	}
	return f.ID(), nil
}

func declareDir(cat *engine.Catalog, spec Spec) (engine.ID, error) {
	d := &resource.File{
		Path:   filepath.Clean(spec.Dir),
		Ensure: resource.Directory,
		Owner:  spec.Owner,
		Group:  spec.Group,
		Mode:   0750,
	}
	if cat.Has(d.ID()) {
		return d.ID(), nil
	}
	if err := cat.Add(d, engine.Requires(spec.DirRequires...)); err != nil {
		return "", err
	}
	return d.ID(), nil
}
