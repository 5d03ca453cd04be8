package cli

import (
	"testing"

	"github.com/ksyq12/sslvhost/internal/errors"
)

func TestRunHistory(t *testing.T) {
	env := newTestEnv(t)

	if err := runHistory(nil, nil); err != nil {
		t.Fatalf("empty history: %v", err)
	}

	env.addVHost("example.com")
	if err := runApply(nil, nil); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := runApply(nil, nil); err != nil {
		t.Fatalf("apply: %v", err)
	}

	runs := env.history(t)
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	tests := []struct {
		name    string
		args    []string
		limit   int
		json    bool
		wantErr error
	}{
		{name: "list", limit: 20},
		{name: "list all as json", limit: 0, json: true},
		{name: "one run", args: []string{runs[1].RunID}},
		{name: "one run as json", args: []string{runs[0].RunID}, json: true},
		{name: "unknown run", args: []string{"no-such-run"}, wantErr: errors.ErrVHostNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			historyLimit = tt.limit
			jsonOutput = tt.json
			defer func() { jsonOutput = false }()

			err := runHistory(nil, tt.args)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error %v is not %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if verbose {
				t.Error("showing a run must restore the verbose flag")
			}
		})
	}
}
