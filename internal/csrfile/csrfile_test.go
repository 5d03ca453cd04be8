package csrfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksyq12/sslvhost/internal/engine"
	"github.com/ksyq12/sslvhost/internal/resource"
	"github.com/ksyq12/sslvhost/internal/tristate"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		publish tristate.Value
		want    Target
	}{
		{"unset keeps default absent", tristate.Off(), Target{Publish: false, Path: "/var/www/example.com/htdocs/example.com.csr"}},
		{"default publishes to default", tristate.On(), Target{Publish: true, Path: "/var/www/example.com/htdocs/example.com.csr"}},
		{"explicit publishes to override", tristate.Of("/srv/pub/example.csr"), Target{Publish: true, Path: "/srv/pub/example.csr"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.publish, "/var/www", "example.com"))
		})
	}
}

func TestDeclare(t *testing.T) {
	cat := engine.NewCatalog()
	gen := engine.MakeID("Exec", "generate-ssl-cert-example.com")

	id, err := Declare(cat, Spec{
		Target:   Target{Publish: true, Path: "/var/www/example.com/htdocs/example.com.csr"},
		Source:   "/var/www/example.com/ssl/example.com.csr",
		Requires: []engine.ID{gen},
	})
	require.NoError(t, err)
	assert.Equal(t, engine.ID("File[/var/www/example.com/htdocs/example.com.csr]"), id)
	assert.Equal(t, []engine.ID{gen}, cat.Requirements(id))

	res, ok := cat.Get(id)
	require.True(t, ok)
	f := res.(*resource.File)
	assert.Equal(t, resource.Present, f.Ensure)
	assert.Equal(t, "/var/www/example.com/ssl/example.com.csr", f.CopyFrom)

	_, err = Declare(cat, Spec{})
	assert.Error(t, err)
}

func TestDeclareAbsent(t *testing.T) {
	cat := engine.NewCatalog()
	id, err := Declare(cat, Spec{
		Target: Target{Publish: false, Path: "/var/www/example.com/htdocs/example.com.csr"},
		Source: "/var/www/example.com/ssl/example.com.csr",
	})
	require.NoError(t, err)

	res, _ := cat.Get(id)
	f := res.(*resource.File)
	assert.Equal(t, resource.Absent, f.Ensure)
	assert.Empty(t, f.CopyFrom)
}

func TestPublishAndRetract(t *testing.T) {
	defer resource.SetManageOwnership(false)()
	dir := t.TempDir()
	src := filepath.Join(dir, "ssl", "example.com.csr")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0700))
	require.NoError(t, os.WriteFile(src, []byte("-----BEGIN CERTIFICATE REQUEST-----\n"), 0600))
	dst := filepath.Join(dir, "example.com.csr")

	run := func(publish bool) {
		cat := engine.NewCatalog()
		_, err := Declare(cat, Spec{Target: Target{Publish: publish, Path: dst}, Source: src})
		require.NoError(t, err)
		_, err = engine.Apply(context.Background(), cat, engine.Options{})
		require.NoError(t, err)
	}

	run(true)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "-----BEGIN CERTIFICATE REQUEST-----\n", string(data))

	run(false)
	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}

func TestDeclareDir(t *testing.T) {
	root := engine.MakeID("File", "/var/www/example.com")
	dir := engine.MakeID("File", "/var/www/example.com/htdocs")
	spec := Spec{
		Target:      Target{Publish: true, Path: "/var/www/example.com/htdocs/example.com.csr"},
		Source:      "/var/www/example.com/ssl/example.com.csr",
		Owner:       "www-data",
		Group:       "root",
		Dir:         "/var/www/example.com/htdocs",
		DirRequires: []engine.ID{root},
	}

	t.Run("declared when missing", func(t *testing.T) {
		cat := engine.NewCatalog()
		id, err := Declare(cat, spec)
		require.NoError(t, err)
		require.True(t, cat.Has(dir))
		assert.Equal(t, []engine.ID{root}, cat.Requirements(dir))
		assert.Equal(t, []engine.ID{dir}, cat.Requirements(id))

		res, _ := cat.Get(dir)
		f := res.(*resource.File)
		assert.Equal(t, resource.Directory, f.Ensure)
		assert.Equal(t, "www-data", f.Owner)
	})

	t.Run("reused when already managed", func(t *testing.T) {
		cat := engine.NewCatalog()
		require.NoError(t, cat.Add(&resource.File{Path: "/var/www/example.com/htdocs", Ensure: resource.Directory}))
		id, err := Declare(cat, spec)
		require.NoError(t, err)
		assert.Equal(t, 2, cat.Len())
		assert.Equal(t, []engine.ID{dir}, cat.Requirements(id))
		assert.Empty(t, cat.Requirements(dir))
	})

	t.Run("not declared when unpublished", func(t *testing.T) {
		cat := engine.NewCatalog()
		off := spec
		off.Target.Publish = false
		_, err := Declare(cat, off)
		require.NoError(t, err)
		assert.False(t, cat.Has(dir))
	})
}
