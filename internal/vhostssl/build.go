package vhostssl

import (
	"fmt"

	"github.com/ksyq12/sslvhost/internal/config"
	"github.com/ksyq12/sslvhost/internal/engine"
	"github.com/ksyq12/sslvhost/internal/platform"
	"github.com/ksyq12/sslvhost/internal/resource"
)

// Build resolves every vhost in cfg and declares them into one catalog with
// a single shared reload. Only the named vhosts are declared when names is
// non-empty.
func Build(cfg *config.Config, params platform.Params, deps Deps, names ...string) (*engine.Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	vhosts := cfg.ListVHosts()
	if len(names) > 0 {
		vhosts = vhosts[:0:0]
		for _, name := range names {
			v, err := cfg.GetVHost(name)
			if err != nil {
				return nil, err
			}
			vhosts = append(vhosts, v)
		}
	}

	cat := engine.NewCatalog()
	if err := cat.Add(&resource.Reload{Name: ReloadName, Driver: deps.Driver}); err != nil {
		return nil, err
	}

	for _, v := range vhosts {
		s, err := Resolve(v, cfg.Site, params)
		if err != nil {
			return nil, err
		}
		if err := Declare(cat, s, deps); err != nil {
			return nil, err
		}
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// ParamsFor returns the platform parameters for the site: the configured
// os_family when set, otherwise the detected one.
func ParamsFor(site config.Site) (platform.Params, error) {
	var (
		family platform.Family
		err    error
	)
	if site.OSFamily != "" {
		family, err = platform.ParseFamily(site.OSFamily)
	} else {
		family, err = platform.DetectFamily()
	}
	if err != nil {
		return platform.Params{}, fmt.Errorf("cannot determine OS family: %w", err)
	}
	return platform.ParamsFor(family)
}
