// Package state keeps the history of convergence runs in a BBolt database.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/ksyq12/sslvhost/internal/engine"
	"github.com/ksyq12/sslvhost/internal/errors"
)

var runsBucket = []byte("runs")

// Store records run reports. Keys sort by start time so the newest run is
// last.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying BBolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

func key(r *engine.Report) []byte {
	return []byte(r.Started.UTC().Format("20060102T150405.000000000Z") + ":" + r.RunID)
}

// Record stores a report.
func (s *Store) Record(r *engine.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(runsBucket)
		if err != nil {
			return err
		}
		return b.Put(key(r), data)
	})
}

// Recent returns up to n reports, newest first. n <= 0 returns all.
func (s *Store) Recent(n int) ([]*engine.Report, error) {
	var reports []*engine.Report
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(runsBucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var r engine.Report
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decoding run %s: %w", k, err)
			}
			reports = append(reports, &r)
			if n > 0 && len(reports) == n {
				break
			}
		}
		return nil
	})
	return reports, err
}

// Get returns the report of one run.
func (s *Store) Get(runID string) (*engine.Report, error) {
	var found *engine.Report
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(runsBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var r engine.Report
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			if r.RunID == runID {
				found = &r
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, &errors.VHostError{Code: errors.ErrCodeNotFound, Message: "run not found", Err: fmt.Errorf("%s", runID)}
	}
	return found, nil
}

// Prune keeps the newest keep reports and deletes the rest. It returns the
// number deleted.
func (s *Store) Prune(keep int) (int, error) {
	deleted := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(runsBucket)
		if b == nil {
			return nil
		}
		var stale [][]byte
		seen := 0
		c := b.Cursor()
		for k, _ := c.Last(); k != nil; k, _ = c.Prev() {
			seen++
			if seen > keep {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		deleted = len(stale)
		return nil
	})
	return deleted, err
}
