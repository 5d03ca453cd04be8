package cli

import (
	"strings"
	"testing"

	"github.com/ksyq12/sslvhost/internal/errors"
	"github.com/ksyq12/sslvhost/internal/tristate"
)

func TestRunAdd(t *testing.T) {
	tests := []struct {
		name        string
		vhost       string
		setupFlags  func()
		setup       func(*testEnv)
		wantErr     error
		errContains string
		validate    func(*testing.T, *testEnv)
	}{
		{
			name:  "add with defaults",
			vhost: "example.com",
			validate: func(t *testing.T, e *testEnv) {
				v, ok := e.cfg.VHosts["example.com"]
				if !ok {
					t.Fatal("vhost not added to config")
				}
				if e.loader.SaveCalls != 1 {
					t.Errorf("expected 1 Save call, got %d", e.loader.SaveCalls)
				}
				if !v.PublishCSR.IsUnset() || !v.CACert.IsUnset() {
					t.Error("tri-state fields should stay unset without flags")
				}
				if v.CreatedAt.IsZero() {
					t.Error("created_at not set")
				}
				if len(e.drv.AddCalls) != 0 || len(e.script.Calls) != 0 {
					t.Error("add without --apply should not converge")
				}
			},
		},
		{
			name:  "tri-state flags",
			vhost: "shop.example.com",
			setupFlags: func() {
				addAliases = []string{"www.shop.example.com"}
				addPublishCSR = "true"
				addCACert = "/etc/ssl/private/ca.crt"
				addCertCN = "example.com"
				addSSLOnly = true
			},
			validate: func(t *testing.T, e *testEnv) {
				v := e.cfg.VHosts["shop.example.com"]
				if v.PublishCSR.Kind() != tristate.Default {
					t.Errorf("publish_csr kind = %v, want default", v.PublishCSR.Kind())
				}
				if src, ok := v.CACert.Explicit(); !ok || src != "/etc/ssl/private/ca.crt" {
					t.Errorf("cacert = %v", v.CACert)
				}
				if cn, _ := v.CertCN.Explicit(); cn != "example.com" {
					t.Errorf("certcn = %q", cn)
				}
				if !v.SSLOnly || len(v.Aliases) != 1 {
					t.Errorf("unexpected vhost %+v", v)
				}
			},
		},
		{
			name:  "add and apply",
			vhost: "example.com",
			setupFlags: func() {
				addMode = "0750"
				addApply = true
			},
			validate: func(t *testing.T, e *testEnv) {
				if len(e.drv.AddCalls) != 1 {
					t.Errorf("expected 1 site Add call, got %d", len(e.drv.AddCalls))
				}
				if len(e.script.Calls) != 1 {
					t.Errorf("expected 1 script run, got %d", len(e.script.Calls))
				}
				if e.drv.ReloadCalls != 1 {
					t.Errorf("expected 1 reload, got %d", e.drv.ReloadCalls)
				}
				if runs := e.history(t); len(runs) != 1 {
					t.Errorf("expected 1 recorded run, got %d", len(runs))
				}
			},
		},
		{
			name:  "duplicate vhost",
			vhost: "example.com",
			setup: func(e *testEnv) {
				e.addVHost("example.com")
			},
			wantErr: errors.ErrVHostExists,
			validate: func(t *testing.T, e *testEnv) {
				if e.loader.SaveCalls != 0 {
					t.Error("config saved after a failed add")
				}
			},
		},
		{
			name:    "invalid name",
			vhost:   "not a host",
			wantErr: errors.ErrInvalidDomain,
		},
		{
			name:  "relative publish path",
			vhost: "example.com",
			setupFlags: func() {
				addPublishCSR = "htdocs/req.csr"
			},
			wantErr:     errors.ErrInvalidDomain,
			errContains: "publish_csr",
		},
		{
			name:  "bad mode",
			vhost: "example.com",
			setupFlags: func() {
				addMode = "rwx"
			},
			wantErr:     errors.ErrInvalidDomain,
			errContains: "mode",
		},
		{
			name:  "unsupported source scheme",
			vhost: "example.com",
			setupFlags: func() {
				addCertFile = "ftp://example.com/cert.pem"
			},
			wantErr:     errors.ErrInvalidDomain,
			errContains: "certfile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.setupFlags != nil {
				tt.setupFlags()
			}
			if tt.setup != nil {
				tt.setup(env)
			}

			err := runAdd(nil, []string{tt.vhost})

			if tt.wantErr != nil {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error %v is not %v", err, tt.wantErr)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.validate != nil {
				tt.validate(t, env)
			}
		})
	}
}
