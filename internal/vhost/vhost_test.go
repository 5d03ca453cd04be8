package vhost

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksyq12/sslvhost/internal/driver"
	"github.com/ksyq12/sslvhost/internal/engine"
	"github.com/ksyq12/sslvhost/internal/resource"
)

const reloadName = "apache-graceful"

var reloadID = engine.MakeID("Exec", reloadName)

func testSpec(root string, drv driver.Driver) Spec {
	dir := filepath.Join(root, "example.com")
	return Spec{
		Name:          "example.com",
		Present:       true,
		Dir:           dir,
		DocRoot:       filepath.Join(dir, "htdocs"),
		CGIBin:        filepath.Join(dir, "cgi-bin") + "/",
		ConfDir:       filepath.Join(dir, "conf"),
		LogDir:        filepath.Join(dir, "logs"),
		ManageDocRoot: true,
		ManageCGIBin:  true,
		User:          "www-data",
		Group:         "root",
		Mode:          0750,
		Content:       "<VirtualHost *:443>\n</VirtualHost>\n",
		Driver:        drv,
		Reload:        reloadID,
	}
}

func newCatalog(t *testing.T, drv driver.Driver) *engine.Catalog {
	t.Helper()
	cat := engine.NewCatalog()
	require.NoError(t, cat.Add(&resource.Reload{Name: reloadName, Driver: drv}))
	return cat
}

func TestDeclarePresent(t *testing.T) {
	drv := driver.NewMockDriver("mock", "", "")
	cat := newCatalog(t, drv)
	spec := testSpec("/var/www", drv)
	spec.Readme = "hello\n"

	got, err := Declare(cat, spec)
	require.NoError(t, err)
	require.NoError(t, cat.Validate())

	dir := engine.MakeID("File", "/var/www/example.com")
	assert.Equal(t, dir, got.Dir)
	assert.Equal(t, SiteID("example.com"), got.Site)

	tree := []engine.ID{
		engine.MakeID("File", "/var/www/example.com/conf"),
		engine.MakeID("File", "/var/www/example.com/htdocs"),
		engine.MakeID("File", "/var/www/example.com/cgi-bin"),
		engine.MakeID("File", "/var/www/example.com/logs"),
	}
	for _, id := range tree {
		assert.True(t, cat.Has(id), "missing %s", id)
		assert.Equal(t, []engine.ID{dir}, cat.Requirements(id))
	}
	assert.True(t, cat.Has(engine.MakeID("File", "/var/www/example.com/README")))

	assert.ElementsMatch(t, tree, cat.Requirements(got.Site))
	assert.Equal(t, []engine.ID{reloadID}, cat.Notifications(got.Site))
}

func TestDeclareExplicitPaths(t *testing.T) {
	drv := driver.NewMockDriver("mock", "", "")
	cat := newCatalog(t, drv)
	spec := testSpec("/var/www", drv)
	spec.DocRoot = "/srv/shared/htdocs"
	spec.ManageDocRoot = false
	spec.CGIBin = "/usr/lib/cgi-bin"
	spec.ManageCGIBin = false

	_, err := Declare(cat, spec)
	require.NoError(t, err)

	assert.False(t, cat.Has(engine.MakeID("File", "/srv/shared/htdocs")))
	assert.False(t, cat.Has(engine.MakeID("File", "/usr/lib/cgi-bin")))
	assert.False(t, cat.Has(engine.MakeID("File", "/var/www/example.com/htdocs")))
	assert.False(t, cat.Has(engine.MakeID("File", "/var/www/example.com/README")))
	assert.True(t, cat.Has(engine.MakeID("File", "/var/www/example.com/conf")))
}

func TestDeclareAbsent(t *testing.T) {
	drv := driver.NewMockDriver("mock", "", "")
	cat := newCatalog(t, drv)
	spec := testSpec("/var/www", drv)
	spec.Present = false

	got, err := Declare(cat, spec)
	require.NoError(t, err)

	assert.Equal(t, 2, cat.Len(), "only the site and the reload")
	assert.Empty(t, got.Dir)
	assert.Equal(t, []engine.ID{reloadID}, cat.Notifications(got.Site))
}

func TestDeclareTwice(t *testing.T) {
	drv := driver.NewMockDriver("mock", "", "")
	cat := newCatalog(t, drv)
	spec := testSpec("/var/www", drv)

	_, err := Declare(cat, spec)
	require.NoError(t, err)
	_, err = Declare(cat, spec)
	assert.Error(t, err)
}

func TestConverge(t *testing.T) {
	defer resource.SetManageOwnership(false)()
	root := t.TempDir()
	drv := driver.NewMockDriver("mock", "", "")
	spec := testSpec(root, drv)
	spec.Readme = "managed by sslvhost\n"

	run := func(spec Spec) *engine.Report {
		t.Helper()
		cat := newCatalog(t, drv)
		_, err := Declare(cat, spec)
		require.NoError(t, err)
		report, err := engine.Apply(context.Background(), cat, engine.Options{})
		require.NoError(t, err)
		return report
	}

	report := run(spec)
	assert.True(t, report.Changed())
	for _, d := range []string{"", "conf", "htdocs", "cgi-bin", "logs"} {
		info, err := os.Stat(filepath.Join(spec.Dir, d))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	readme, err := os.ReadFile(filepath.Join(spec.Dir, "README"))
	require.NoError(t, err)
	assert.Equal(t, spec.Readme, string(readme))
	assert.Equal(t, spec.Content, drv.Configs["example.com"])
	assert.True(t, drv.Enabled["example.com"])
	assert.Equal(t, 1, drv.ReloadCalls)

	report = run(spec)
	assert.False(t, report.Changed())
	assert.Equal(t, 1, drv.ReloadCalls)

	spec.Content = "<VirtualHost *:8443>\n</VirtualHost>\n"
	report = run(spec)
	ev, ok := report.Event(SiteID("example.com"))
	require.True(t, ok)
	assert.Equal(t, engine.StatusChanged, ev.Status)
	assert.Equal(t, 2, drv.ReloadCalls)

	spec.Present = false
	run(spec)
	assert.NotContains(t, drv.Configs, "example.com")
	assert.Equal(t, 3, drv.ReloadCalls)
	_, err = os.Stat(spec.Dir)
	assert.NoError(t, err, "the tree stays when the vhost is absent")
}
