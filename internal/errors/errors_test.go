package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestVHostErrorMessage(t *testing.T) {
	cause := fmt.Errorf("exit status 1")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"sentinel", ErrResourceFailed, "resource failed"},
		{"validation", Validation(`mode "99" is not octal`), `mode "99" is not octal`},
		{"not found names the vhost", NotFound("example.com"), "vhost example.com: vhost not found"},
		{"already exists", AlreadyExists("example.com"), "vhost example.com: vhost already exists"},
		{"wrap", Wrap(ErrCodeDriver, "configtest failed", cause), "configtest failed: exit status 1"},
		{"wrap domain falls back to code", WrapDomain(ErrCodeResource, "example.com", cause), "vhost example.com: RESOURCE: exit status 1"},
		{"empty error prints its code", &VHostError{Code: ErrCodeInternal}, "INTERNAL"},
		{
			"all parts",
			&VHostError{Code: ErrCodeSSL, Message: "fetch key", Domain: "shop.example.com", Err: cause},
			"vhost shop.example.com: fetch key: exit status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCodeMatching(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"not found matches sentinel", NotFound("a.example.com"), ErrVHostNotFound, true},
		{"exists matches sentinel", AlreadyExists("a.example.com"), ErrVHostExists, true},
		{"validation shares a code", Validation("bad"), ErrInvalidDomain, true},
		{"validation matches invalid path too", Validation("bad"), ErrInvalidPath, true},
		{"root and permission share a code", ErrRootRequired, ErrPermissionDenied, true},
		{"resource is not dependency", Wrap(ErrCodeResource, "run", nil), ErrDependencyCycle, false},
		{"wrapped in fmt chain", fmt.Errorf("apply: %w", Wrap(ErrCodePlatform, "detect", nil)), ErrUnsupportedFamily, true},
		{"cancellation is not a failed resource", Wrap(ErrCodeCancelled, "run cancelled", nil), ErrResourceFailed, false},
		{"unreadable os-release is not unsupported", Wrap(ErrCodeDetect, "read", nil), ErrUnsupportedFamily, false},
		{"plain error", errors.New("boom"), ErrDriverFailed, false},
		{"non vhost target", NotFound("a.example.com"), errors.New("vhost not found"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.target); got != tt.want {
				t.Errorf("Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.want)
			}
		})
	}
}

func TestUnwrapReachesCause(t *testing.T) {
	sentinel := errors.New("no such host")
	err := fmt.Errorf("converge: %w", WrapDomain(ErrCodeSSL, "example.com", Wrap(ErrCodeSSL, "fetch", sentinel)))

	if !Is(err, sentinel) {
		t.Error("cause lost in the chain")
	}
	if !Is(err, ErrSourceUnavailable) {
		t.Error("code lost in the chain")
	}

	var vErr *VHostError
	if !As(err, &vErr) {
		t.Fatal("As did not find a VHostError")
	}
	if vErr.Domain != "example.com" || vErr.Code != ErrCodeSSL {
		t.Errorf("As found %+v, want the outermost vhost error", vErr)
	}

	if (&VHostError{Code: ErrCodeConfig}).Unwrap() != nil {
		t.Error("Unwrap without cause should be nil")
	}
}

func TestSentinelCodes(t *testing.T) {
	want := map[*VHostError]ErrorCode{
		ErrVHostNotFound:     ErrCodeNotFound,
		ErrVHostExists:       ErrCodeAlreadyExists,
		ErrInvalidDomain:     ErrCodeValidation,
		ErrInvalidPath:       ErrCodeValidation,
		ErrPermissionDenied:  ErrCodePermission,
		ErrConfigInvalid:     ErrCodeConfig,
		ErrDriverFailed:      ErrCodeDriver,
		ErrSourceUnavailable: ErrCodeSSL,
		ErrUnsupportedFamily: ErrCodePlatform,
		ErrResourceFailed:    ErrCodeResource,
		ErrDependencyCycle:   ErrCodeDependency,
		ErrRunCancelled:      ErrCodeCancelled,
		ErrDetectFailed:      ErrCodeDetect,
		ErrRootRequired:      ErrCodePermission,
	}
	for sentinel, code := range want {
		if sentinel.Code != code {
			t.Errorf("%q has code %s, want %s", sentinel.Message, sentinel.Code, code)
		}
		if sentinel.Message == "" {
			t.Errorf("sentinel with code %s has no message", code)
		}
	}
}
