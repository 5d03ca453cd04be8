package resource

import (
	"context"
	"fmt"
	"os"

	"github.com/ksyq12/sslvhost/internal/driver"
	"github.com/ksyq12/sslvhost/internal/engine"
)

// Site registers an Apache site through a driver. A present site is in sync
// when its config matches Content and it is enabled.
type Site struct {
	Name    string
	Ensure  Ensure
	Content string
	Driver  driver.Driver
}

// ID implements engine.Resource.
func (s *Site) ID() engine.ID {
	return engine.MakeID("Site", s.Name)
}

func (s *Site) state() (exists bool, current string, enabled bool, err error) {
	current, err = s.Driver.Read(s.Name)
	if os.IsNotExist(err) {
		return false, "", false, nil
	}
	if err != nil {
		return false, "", false, fmt.Errorf("read site %s: %w", s.Name, err)
	}
	enabled, err = s.Driver.IsEnabled(s.Name)
	if err != nil {
		return false, "", false, fmt.Errorf("site %s: %w", s.Name, err)
	}
	return true, current, enabled, nil
}

// Check implements engine.Resource.
func (s *Site) Check(ctx context.Context) (string, error) {
	exists, current, enabled, err := s.state()
	if err != nil {
		return "", err
	}

	if s.Ensure == Absent {
		if exists {
			return "site registered, should be absent", nil
		}
		return "", nil
	}

	switch {
	case !exists:
		return "site config missing", nil
	case current != s.Content:
		return "site config changed", nil
	case !enabled:
		return "site disabled", nil
	}
	return "", nil
}

// Apply implements engine.Resource.
func (s *Site) Apply(ctx context.Context) error {
	exists, current, enabled, err := s.state()
	if err != nil {
		return err
	}

	if s.Ensure == Absent {
		if exists {
			return s.Driver.Remove(s.Name)
		}
		return nil
	}

	if !exists || current != s.Content {
		if err := s.Driver.Add(s.Name, s.Content); err != nil {
			return err
		}
	}
	if !enabled {
		if err := s.Driver.Enable(s.Name); err != nil {
			return err
		}
	}
	return nil
}

// Reload validates and gracefully reloads the web server when notified.
// On its own it is always in sync.
type Reload struct {
	Name   string
	Driver driver.Driver
}

// ID implements engine.Resource.
func (r *Reload) ID() engine.ID {
	return engine.MakeID("Exec", r.Name)
}

// Check implements engine.Resource.
func (r *Reload) Check(context.Context) (string, error) {
	return "", nil
}

// Apply implements engine.Resource.
func (r *Reload) Apply(context.Context) error {
	return nil
}

// Refresh implements engine.Refresher.
func (r *Reload) Refresh(ctx context.Context) error {
	if err := r.Driver.Test(ctx); err != nil {
		return err
	}
	return r.Driver.Reload(ctx)
}
