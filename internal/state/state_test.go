package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksyq12/sslvhost/internal/engine"
	"github.com/ksyq12/sslvhost/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func report(id string, started time.Time, status engine.Status) *engine.Report {
	return &engine.Report{
		RunID:    id,
		Started:  started,
		Finished: started.Add(time.Second),
		Events:   []engine.Event{{ID: "Site[example.com]", Status: status, Duration: time.Millisecond}},
	}
}

func TestRecordAndRecent(t *testing.T) {
	s := newTestStore(t)

	empty, err := s.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(report("run-2", base.Add(time.Hour), engine.StatusUnchanged)))
	require.NoError(t, s.Record(report("run-1", base, engine.StatusChanged)))
	require.NoError(t, s.Record(report("run-3", base.Add(2*time.Hour), engine.StatusFailed)))

	recent, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "run-3", recent[0].RunID)
	assert.Equal(t, "run-2", recent[1].RunID)
	assert.True(t, recent[0].Failed())

	all, err := s.Recent(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "run-1", all[2].RunID)
}

func TestGet(t *testing.T) {
	s := newTestStore(t)
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(report("abc", started, engine.StatusChanged)))

	r, err := s.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusChanged, r.Events[0].Status)
	assert.True(t, r.Started.Equal(started))

	_, err = s.Get("missing")
	assert.True(t, errors.Is(err, errors.ErrVHostNotFound))
}

func TestPrune(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.Record(report(id, base.Add(time.Duration(i)*time.Minute), engine.StatusUnchanged)))
	}

	n, err := s.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := s.Recent(0)
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, "d", left[0].RunID)
	assert.Equal(t, "c", left[1].RunID)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(report("persisted", time.Now(), engine.StatusChanged)))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	r, err := s.Get("persisted")
	require.NoError(t, err)
	assert.Equal(t, "persisted", r.RunID)
}
