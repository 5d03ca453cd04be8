package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ksyq12/sslvhost/internal/config"
	"github.com/ksyq12/sslvhost/internal/driver"
	"github.com/ksyq12/sslvhost/internal/engine"
	"github.com/ksyq12/sslvhost/internal/executor"
	"github.com/ksyq12/sslvhost/internal/output"
	"github.com/ksyq12/sslvhost/internal/state"
)

// testEnv bundles the doubles one CLI test runs against
type testEnv struct {
	cfg    *config.Config
	loader *MockConfigLoader
	drv    *driver.MockDriver
	script *executor.MockExecutor
	root   string
}

// newTestEnv installs mock dependencies with a manifest rooted in a temp
// dir and a script double that writes the key, certificate and CSR.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	resetFlags()

	root := t.TempDir()
	cfg := config.New()
	cfg.Site.Root = root
	cfg.Site.StateDB = filepath.Join(t.TempDir(), "state.db")

	env := &testEnv{
		cfg:    cfg,
		loader: &MockConfigLoader{Cfg: cfg},
		drv:    driver.NewMockDriver("apache", "", ""),
		script: &executor.MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				cn, dir := args[0], args[2]
				for _, ext := range []string{".key", ".crt", ".csr"} {
					if err := os.WriteFile(filepath.Join(dir, cn+ext), []byte(ext), 0600); err != nil {
						return nil, err
					}
				}
				return nil, nil
			},
		},
		root: root,
	}

	output.SetOutput(io.Discard)
	oldDeps := deps
	deps = NewMockDeps().
		WithConfigLoader(env.loader).
		WithDriver(env.drv).
		WithExecutor(env.script).
		Build()
	t.Cleanup(func() {
		deps = oldDeps
		resetFlags()
		output.SetOutput(nil)
	})
	return env
}

// addVHost declares name with a mode the test user can write below
func (e *testEnv) addVHost(name string) *config.VHost {
	v := &config.VHost{Name: name, Mode: "0750"}
	e.cfg.VHosts[name] = v
	return v
}

func (e *testEnv) history(t *testing.T) []*engine.Report {
	t.Helper()
	store, err := state.Open(e.cfg.StatePath())
	if err != nil {
		t.Fatalf("open state: %v", err)
	}
	defer store.Close()
	reports, err := store.Recent(0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	return reports
}

// resetFlags restores every package-level flag to its default
func resetFlags() {
	configPath = ""
	jsonOutput = false
	verbose = false
	noopRun = false
	forceRemove = false
	keepSite = false
	historyLimit = 20
	watchSchedule = ""
	watchKeep = 100

	addAliases = nil
	addAdmin = ""
	addUser = ""
	addGroup = ""
	addMode = ""
	addDays = 0
	addSSLOnly = false
	addDocRoot = ""
	addCGIBin = ""
	addCertFile = ""
	addCertKey = ""
	addCACert = ""
	addCertChain = ""
	addCertCN = ""
	addPublishCSR = ""
	addApply = false
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		vhost   string
		wantErr bool
	}{
		{"simple name", "example.com", false},
		{"subdomain", "www.example.com", false},
		{"wildcard", "*.example.com", false},
		{"single label", "localhost", false},
		{"empty", "", true},
		{"with space", "my site.com", true},
		{"leading hyphen", "-example.com", true},
		{"trailing hyphen", "example-.com", true},
		{"inner wildcard", "www.*.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateName(tt.vhost)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateName(%q) error = %v, wantErr %v", tt.vhost, err, tt.wantErr)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	report := &engine.Report{
		Started:  start,
		Finished: start.Add(1500 * time.Millisecond),
		Events: []engine.Event{
			{ID: "File[/a]", Status: engine.StatusChanged},
			{ID: "File[/b]", Status: engine.StatusUnchanged},
			{ID: "File[/c]", Status: engine.StatusUnchanged},
			{ID: "Exec[x]", Status: engine.StatusFailed},
			{ID: "Site[y]", Status: engine.StatusSkipped},
		},
	}

	got := summarize(report)
	want := "1 changed, 2 unchanged, 1 failed, 1 skipped in 1.5s"
	if got != want {
		t.Errorf("summarize() = %q, want %q", got, want)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{"  YES \n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			oldDeps := deps
			deps = NewMockDeps().WithStdinInput(tt.input).Build()
			defer func() { deps = oldDeps }()

			if got := confirm("Proceed?"); got != tt.want {
				t.Errorf("confirm() with %q = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfirmEOF(t *testing.T) {
	oldDeps := deps
	deps = NewMockDeps().WithStdinInput().Build()
	defer func() { deps = oldDeps }()

	if confirm("Proceed?") {
		t.Error("confirm() on closed stdin should be false")
	}
}
