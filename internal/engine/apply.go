package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ksyq12/sslvhost/internal/errors"
	"github.com/ksyq12/sslvhost/internal/logger"
)

// Options controls a run.
type Options struct {
	// Noop checks every resource and reports what would change without
	// touching anything.
	Noop bool
}

// Apply converges the catalog. Resources are processed one at a time in
// topological order. A failed resource causes everything that depends on it
// to be skipped. The report is returned even when err is non-nil, except
// when the catalog itself is invalid.
func Apply(ctx context.Context, cat *Catalog, opts Options) (*Report, error) {
	order, err := cat.Order()
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:   uuid.NewString(),
		Noop:    opts.Noop,
		Started: time.Now(),
	}
	logger.InfoFields("run started", map[string]any{
		"run":       report.RunID,
		"resources": len(order),
		"noop":      opts.Noop,
	})

	preds := cat.predecessors()
	broken := make(map[ID]ID)  // resource -> failed ancestor
	refresh := make(map[ID]ID) // resource -> first notifier

	for i, id := range order {
		if ctx.Err() != nil {
			for _, rest := range order[i:] {
				report.Events = append(report.Events, Event{ID: rest, Status: StatusSkipped, Message: "run cancelled"})
			}
			report.Finished = time.Now()
			return report, errors.Wrap(errors.ErrCodeCancelled, "run cancelled", ctx.Err())
		}

		if cause, ok := brokenPredecessor(id, preds, broken); ok {
			broken[id] = cause
			report.Events = append(report.Events, Event{
				ID:      id,
				Status:  StatusSkipped,
				Message: fmt.Sprintf("dependency %s failed", cause),
			})
			logger.WarnFields("skipping resource", map[string]any{"run": report.RunID, "resource": id, "cause": cause})
			continue
		}

		ev := converge(ctx, cat.nodes[id].res, refresh, opts.Noop)
		report.Events = append(report.Events, ev)

		switch ev.Status {
		case StatusFailed:
			broken[id] = id
			logger.ErrorFields("resource failed", map[string]any{"run": report.RunID, "resource": id, "error": ev.Message})
		case StatusChanged, StatusNoop:
			for _, target := range cat.nodes[id].notifies {
				if _, scheduled := refresh[target]; !scheduled {
					refresh[target] = id
				}
			}
			logger.InfoFields("resource "+string(ev.Status), map[string]any{"run": report.RunID, "resource": id, "change": ev.Message})
		case StatusRefreshed:
			logger.InfoFields("resource refreshed", map[string]any{"run": report.RunID, "resource": id, "by": refresh[id]})
		default:
			logger.DebugFields("resource in sync", map[string]any{"run": report.RunID, "resource": id})
		}
	}

	report.Finished = time.Now()
	counts := report.Counts()
	logger.InfoFields("run finished", map[string]any{
		"run":     report.RunID,
		"changed": counts[StatusChanged] + counts[StatusRefreshed],
		"failed":  counts[StatusFailed],
		"skipped": counts[StatusSkipped],
	})

	if counts[StatusFailed] > 0 {
		return report, errors.Wrap(errors.ErrCodeResource, "resource failed",
			fmt.Errorf("%d of %d resources failed", counts[StatusFailed], len(order)))
	}
	return report, nil
}

func brokenPredecessor(id ID, preds map[ID][]ID, broken map[ID]ID) (ID, bool) {
	for _, p := range preds[id] {
		if cause, ok := broken[p]; ok {
			return cause, true
		}
	}
	return "", false
}

// converge checks one resource, applies it when out of sync and runs a
// pending refresh.
func converge(ctx context.Context, res Resource, refresh map[ID]ID, noop bool) Event {
	start := time.Now()
	ev := Event{ID: res.ID(), Status: StatusUnchanged}

	change, err := res.Check(ctx)
	if err != nil {
		ev.Status, ev.Message = StatusFailed, err.Error()
		ev.Duration = time.Since(start)
		return ev
	}

	if change != "" {
		if noop {
			ev.Status, ev.Message = StatusNoop, change
		} else if err := res.Apply(ctx); err != nil {
			ev.Status, ev.Message = StatusFailed, err.Error()
			ev.Duration = time.Since(start)
			return ev
		} else {
			ev.Status, ev.Message = StatusChanged, change
		}
	}

	notifier, pending := refresh[ev.ID]
	r, refreshable := res.(Refresher)
	if pending && refreshable {
		switch {
		case noop:
			ev.Status = StatusNoop
			if ev.Message == "" {
				ev.Message = fmt.Sprintf("would refresh (notified by %s)", notifier)
			}
		default:
			if err := r.Refresh(ctx); err != nil {
				ev.Status, ev.Message = StatusFailed, fmt.Sprintf("refresh failed: %v", err)
				ev.Duration = time.Since(start)
				return ev
			}
			if ev.Status == StatusUnchanged {
				ev.Status = StatusRefreshed
				ev.Message = fmt.Sprintf("refreshed (notified by %s)", notifier)
			}
		}
	}

	ev.Duration = time.Since(start)
	return ev
}
