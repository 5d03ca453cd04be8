package cli

import (
	"context"
	"fmt"
	"testing"

	"github.com/ksyq12/sslvhost/internal/config"
	"github.com/ksyq12/sslvhost/internal/errors"
)

func TestScheduleFor(t *testing.T) {
	tests := []struct {
		name string
		flag string
		site string
		want string
	}{
		{"default", "", "", config.DefaultSchedule},
		{"site schedule", "", "@hourly", "@hourly"},
		{"flag wins", "*/5 * * * *", "@hourly", "*/5 * * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			defer resetFlags()
			watchSchedule = tt.flag
			cfg := config.New()
			cfg.Site.Schedule = tt.site

			if got := scheduleFor(cfg); got != tt.want {
				t.Errorf("scheduleFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewScheduler(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"@every 30m", false},
		{"@daily", false},
		{"0 */6 * * *", false},
		{"every now and then", true},
		{"61 * * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			c, err := newScheduler(tt.spec, func() {})
			if tt.wantErr {
				if !errors.Is(err, errors.ErrConfigInvalid) {
					t.Errorf("newScheduler(%q) error = %v, want CONFIG error", tt.spec, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("newScheduler(%q): %v", tt.spec, err)
			}
			if n := len(c.Entries()); n != 1 {
				t.Errorf("expected 1 entry, got %d", n)
			}
		})
	}
}

func TestWatchTick(t *testing.T) {
	env := newTestEnv(t)
	env.addVHost("example.com")
	watchKeep = 2

	for i := 0; i < 3; i++ {
		watchTick(context.Background())
	}

	if got := len(env.script.Calls); got != 1 {
		t.Errorf("expected 1 script run over 3 ticks, got %d", got)
	}
	if runs := env.history(t); len(runs) != 2 {
		t.Errorf("history should be pruned to 2 runs, got %d", len(runs))
	}
}

func TestWatchTickSurvivesFailures(t *testing.T) {
	env := newTestEnv(t)
	env.addVHost("example.com")

	env.loader.LoadErr = fmt.Errorf("manifest unreadable")
	watchTick(context.Background())
	if runs := env.history(t); len(runs) != 0 {
		t.Errorf("no run should be recorded without a manifest, got %d", len(runs))
	}

	env.loader.LoadErr = nil
	env.script.ExecuteFunc = func(name string, args ...string) ([]byte, error) {
		return nil, fmt.Errorf("exit status 1")
	}
	watchTick(context.Background())
	runs := env.history(t)
	if len(runs) != 1 || !runs[0].Failed() {
		t.Fatalf("failed run should be recorded: %+v", runs)
	}
}

func TestWatchTickCancelled(t *testing.T) {
	env := newTestEnv(t)
	env.addVHost("example.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	watchTick(ctx)

	if len(env.script.Calls) != 0 {
		t.Error("cancelled run executed the script")
	}
	runs := env.history(t)
	if len(runs) != 1 {
		t.Fatalf("expected the cancelled run to be recorded, got %d", len(runs))
	}
	if c := runs[0].Counts(); c["skipped"] != len(runs[0].Events) {
		t.Errorf("every resource should be skipped: %v", c)
	}
}

func TestKVFields(t *testing.T) {
	fields := kvFields([]interface{}{"entry", 1, "next", "soon", "dangling"})
	if len(fields) != 2 || fields["entry"] != 1 || fields["next"] != "soon" {
		t.Errorf("kvFields() = %v", fields)
	}
}
