package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/ksyq12/sslvhost/internal/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"failed run", fmt.Errorf("apply: %w", errors.ErrResourceFailed), exitRunFailed},
		{"unknown family", errors.Wrap(errors.ErrCodePlatform, "os_family slackware", nil), exitUnsupported},
		{"cancelled run", errors.Wrap(errors.ErrCodeCancelled, "run cancelled", context.Canceled), exitCancelled},
		{"os-release unreadable", fmt.Errorf("cannot determine OS family: %w", errors.Wrap(errors.ErrCodeDetect, "cannot detect OS family", os.ErrNotExist)), exitError},
		{"bad manifest", errors.ErrConfigInvalid, exitError},
		{"plain error", fmt.Errorf("unknown command"), exitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestVersionFlag(t *testing.T) {
	oldVersion := version
	defer SetVersion(oldVersion)
	SetVersion("1.4.0")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"--version"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	}()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if got := buf.String(); got != "sslvhost 1.4.0\n" {
		t.Errorf("version output = %q", got)
	}
}
