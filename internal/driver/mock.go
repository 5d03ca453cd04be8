package driver

import (
	"context"
	"os"
	"sort"
)

// MockDriver is a test double for Driver interface. Without function
// overrides it keeps site configs and enabled state in memory.
type MockDriver struct {
	name  string
	paths Paths

	// In-memory state used by the default implementations
	Configs map[string]string
	Enabled map[string]bool

	// Function mocks - set these to customize behavior
	AddFunc     func(name, configContent string) error
	RemoveFunc  func(name string) error
	EnableFunc  func(name string) error
	DisableFunc func(name string) error
	TestFunc    func() error
	ReloadFunc  func() error

	// Call tracking - check these to verify interactions
	AddCalls     []AddCall
	RemoveCalls  []string
	EnableCalls  []string
	DisableCalls []string
	TestCalls    int
	ReloadCalls  int
}

// AddCall records arguments passed to Add
type AddCall struct {
	Name    string
	Content string
}

// NewMockDriver creates a new MockDriver with in-memory defaults
func NewMockDriver(name, availableDir, enabledDir string) *MockDriver {
	return &MockDriver{
		name: name,
		paths: Paths{
			Available: availableDir,
			Enabled:   enabledDir,
		},
		Configs:      make(map[string]string),
		Enabled:      make(map[string]bool),
		AddCalls:     make([]AddCall, 0),
		RemoveCalls:  make([]string, 0),
		EnableCalls:  make([]string, 0),
		DisableCalls: make([]string, 0),
	}
}

// Name returns the driver name
func (m *MockDriver) Name() string {
	return m.name
}

// Paths returns the configured paths
func (m *MockDriver) Paths() Paths {
	return m.paths
}

// Add records the call and stores the config
func (m *MockDriver) Add(name, configContent string) error {
	m.AddCalls = append(m.AddCalls, AddCall{Name: name, Content: configContent})
	if m.AddFunc != nil {
		return m.AddFunc(name, configContent)
	}
	m.Configs[name] = configContent
	return nil
}

// Read returns the stored config
func (m *MockDriver) Read(name string) (string, error) {
	c, ok := m.Configs[name]
	if !ok {
		return "", &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	}
	return c, nil
}

// Remove records the call and forgets the site
func (m *MockDriver) Remove(name string) error {
	m.RemoveCalls = append(m.RemoveCalls, name)
	if m.RemoveFunc != nil {
		return m.RemoveFunc(name)
	}
	delete(m.Configs, name)
	delete(m.Enabled, name)
	return nil
}

// Enable records the call and marks the site enabled
func (m *MockDriver) Enable(name string) error {
	m.EnableCalls = append(m.EnableCalls, name)
	if m.EnableFunc != nil {
		return m.EnableFunc(name)
	}
	m.Enabled[name] = true
	return nil
}

// Disable records the call and marks the site disabled
func (m *MockDriver) Disable(name string) error {
	m.DisableCalls = append(m.DisableCalls, name)
	if m.DisableFunc != nil {
		return m.DisableFunc(name)
	}
	delete(m.Enabled, name)
	return nil
}

// List returns the stored site names
func (m *MockDriver) List() ([]string, error) {
	names := make([]string, 0, len(m.Configs))
	for n := range m.Configs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// IsEnabled reports the stored enabled state
func (m *MockDriver) IsEnabled(name string) (bool, error) {
	return m.Enabled[name], nil
}

// Test records the call and invokes the mock function if set
func (m *MockDriver) Test(ctx context.Context) error {
	m.TestCalls++
	if m.TestFunc != nil {
		return m.TestFunc()
	}
	return nil
}

// Reload records the call and invokes the mock function if set
func (m *MockDriver) Reload(ctx context.Context) error {
	m.ReloadCalls++
	if m.ReloadFunc != nil {
		return m.ReloadFunc()
	}
	return nil
}

// Reset clears all call tracking
func (m *MockDriver) Reset() {
	m.AddCalls = make([]AddCall, 0)
	m.RemoveCalls = make([]string, 0)
	m.EnableCalls = make([]string, 0)
	m.DisableCalls = make([]string, 0)
	m.TestCalls = 0
	m.ReloadCalls = 0
}
