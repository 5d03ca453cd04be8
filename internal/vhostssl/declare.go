package vhostssl

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ksyq12/sslvhost/internal/csrfile"
	"github.com/ksyq12/sslvhost/internal/driver"
	"github.com/ksyq12/sslvhost/internal/engine"
	"github.com/ksyq12/sslvhost/internal/errors"
	"github.com/ksyq12/sslvhost/internal/executor"
	"github.com/ksyq12/sslvhost/internal/fetch"
	"github.com/ksyq12/sslvhost/internal/resource"
	"github.com/ksyq12/sslvhost/internal/template"
	"github.com/ksyq12/sslvhost/internal/vhost"
)

// ReloadName is the title of the graceful reload every vhost notifies.
const ReloadName = "apache-graceful"

// ReloadID is the catalog id of the shared reload.
var ReloadID = engine.MakeID("Exec", ReloadName)

// Deps are the collaborators the declared resources act through.
type Deps struct {
	Driver   driver.Driver
	Executor executor.CommandExecutor
	Fetcher  fetch.Fetcher
}

// GenerateExecName returns the title of the generation exec for name.
func GenerateExecName(name string) string {
	return "generate-ssl-cert-" + name
}

// SiteConfig returns the Apache config body: config_content verbatim when
// given, otherwise the SSL template alone for sslonly vhosts and the plain
// template followed by the SSL one for the rest.
func (s *Settings) SiteConfig() (string, error) {
	if s.ConfigContent != "" {
		return s.ConfigContent, nil
	}
	body, err := template.RenderVHost(template.VHostData{
		Name:            s.Name,
		Aliases:         s.Aliases,
		Admin:           s.Admin,
		Ports:           s.Ports,
		SSLPorts:        s.SSLPorts,
		DocRoot:         s.DocRoot,
		CGIBin:          s.CGIBin,
		ConfDir:         s.ConfDir,
		LogDir:          s.LogDir,
		AccessLogFormat: s.AccessLogFormat,
		CertFile:        s.Cert.Path,
		KeyFile:         s.Key.Path,
		CACertFile:      s.CACert.Path,
		ChainFile:       s.Chain.Path,
	}, s.SSLOnly)
	if err != nil {
		return "", errors.WrapDomain(errors.ErrCodeInternal, s.Name, err)
	}
	return body, nil
}

// SSLeayConfig renders the request configuration for the generation script.
func (s *Settings) SSLeayConfig() (string, error) {
	body, err := template.RenderSSLeay(template.SSLeayData{
		Country:      s.Country,
		Organisation: s.Organisation,
		CommonName:   s.CommonName,
		Aliases:      s.Aliases,
	})
	if err != nil {
		return "", errors.WrapDomain(errors.ErrCodeInternal, s.Name, err)
	}
	return body, nil
}

// Declare adds the vhost and its certificate lifecycle to cat. The reload
// resource (ReloadID) must be in the catalog by the time it is validated.
//
// For a present vhost the resources converge in this order: the parent
// site, the ssl directory, ssleay.cnf, the generation script, the
// certificate material and finally the CSR publication. An absent vhost only
// deregisters its site.
func Declare(cat *engine.Catalog, s *Settings, deps Deps) error {
	content := ""
	if s.Present {
		var err error
		if content, err = s.SiteConfig(); err != nil {
			return err
		}
	}

	parent, err := vhost.Declare(cat, vhost.Spec{
		Name:          s.Name,
		Present:       s.Present,
		Dir:           s.Dir,
		DocRoot:       s.DocRoot,
		CGIBin:        s.CGIBin,
		ConfDir:       s.ConfDir,
		LogDir:        s.LogDir,
		ManageDocRoot: s.DocRootManaged,
		ManageCGIBin:  s.CGIBinManaged,
		Readme:        s.Readme,
		User:          s.User,
		Group:         s.Group,
		Mode:          s.Mode,
		Content:       content,
		Driver:        deps.Driver,
		Reload:        ReloadID,
	})
	if err != nil {
		return errors.WrapDomain(errors.ErrCodeDependency, s.Name, err)
	}
	if !s.Present {
		return nil
	}

	sslDir := &resource.File{
		Path:   s.SSLDir,
		Ensure: resource.Directory,
		Owner:  "root",
		Group:  "root",
		Mode:   0700,
	}
	if err := cat.Add(sslDir, engine.Requires(parent.Site, parent.Dir)); err != nil {
		return errors.WrapDomain(errors.ErrCodeDependency, s.Name, err)
	}

	sslConf, err := s.SSLeayConfig()
	if err != nil {
		return err
	}
	ssleay := &resource.File{
		Path:    s.SSLeay,
		Ensure:  resource.Present,
		Content: []byte(sslConf),
		Owner:   "root",
		Group:   "root",
		Mode:    0640,
	}
	if err := cat.Add(ssleay, engine.Requires(sslDir.ID())); err != nil {
		return errors.WrapDomain(errors.ErrCodeDependency, s.Name, err)
	}

	gen := &resource.Exec{
		Name:     GenerateExecName(s.Name),
		Command:  s.Script,
		Args:     []string{s.Name, s.SSLeay, s.SSLDir + "/", s.DaysArg()},
		Creates:  s.CSR,
		Executor: deps.Executor,
	}
	if err := cat.Add(gen, engine.Requires(ssleay.ID()), engine.Notifies(ReloadID)); err != nil {
		return errors.WrapDomain(errors.ErrCodeDependency, s.Name, err)
	}

	material := []struct {
		slot Slot
		mode os.FileMode
	}{
		{s.Cert, 0640},
		{s.Key, 0600},
		{s.CACert, 0640},
		{s.Chain, 0640},
	}
	requires := []engine.ID{gen.ID()}
	for _, m := range material {
		if !m.slot.Managed || m.slot.Path == "" {
			continue
		}
		f := &resource.File{
			Path:    m.slot.Path,
			Ensure:  resource.Present,
			Source:  m.slot.Source,
			Fetcher: deps.Fetcher,
			Owner:   "root",
			Group:   "root",
			Mode:    m.mode,
		}
		if err := cat.Add(f, engine.Requires(gen.ID()), engine.Notifies(ReloadID)); err != nil {
			return errors.WrapDomain(errors.ErrCodeDependency, s.Name, err)
		}
		requires = append(requires, f.ID())
	}

	publish := csrfile.Spec{
		Target:   s.Publish,
		Source:   s.CSR,
		Owner:    s.User,
		Group:    s.Group,
		Requires: requires,
	}
	// The default target sits in <dir>/htdocs, which is not declared when
	// the docroot points elsewhere.
	if dir := filepath.Dir(s.Publish.Path); strings.HasPrefix(dir, filepath.Clean(s.Dir)+"/") {
		publish.Dir = dir
		publish.DirRequires = []engine.ID{parent.Dir}
	}
	if _, err := csrfile.Declare(cat, publish); err != nil {
		return errors.WrapDomain(errors.ErrCodeDependency, s.Name, err)
	}
	return nil
}
