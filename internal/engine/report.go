package engine

import (
	"time"
)

// Status is the outcome of one resource in a run.
type Status string

const (
	StatusUnchanged Status = "unchanged"
	StatusChanged   Status = "changed"
	StatusRefreshed Status = "refreshed"
	StatusNoop      Status = "noop"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Event records what happened to a resource.
type Event struct {
	ID       ID            `json:"id"`
	Status   Status        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report is the result of a convergence run.
type Report struct {
	RunID    string    `json:"run_id"`
	Noop     bool      `json:"noop"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Events   []Event   `json:"events"`
}

// Counts returns the number of events per status.
func (r *Report) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, ev := range r.Events {
		counts[ev.Status]++
	}
	return counts
}

// Failed reports whether any resource failed.
func (r *Report) Failed() bool {
	for _, ev := range r.Events {
		if ev.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Changed reports whether the run changed (or in noop mode would have
// changed) anything.
func (r *Report) Changed() bool {
	for _, ev := range r.Events {
		switch ev.Status {
		case StatusChanged, StatusRefreshed, StatusNoop:
			return true
		}
	}
	return false
}

// Event returns the event recorded for id.
func (r *Report) Event(id ID) (Event, bool) {
	for _, ev := range r.Events {
		if ev.ID == id {
			return ev, true
		}
	}
	return Event{}, false
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}
