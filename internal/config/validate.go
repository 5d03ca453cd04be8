package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ksyq12/sslvhost/internal/errors"
	"github.com/ksyq12/sslvhost/internal/fetch"
)

var (
	modePattern     = regexp.MustCompile(`^[0-7]{3,4}$`)
	hostnamePattern = regexp.MustCompile(`^(\*\.)?([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report yaml field names rather than Go names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("abspath", func(fl validator.FieldLevel) bool {
		return filepath.IsAbs(fl.Field().String())
	})
	_ = v.RegisterValidation("filemode", func(fl validator.FieldLevel) bool {
		return modePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("vhostname", func(fl validator.FieldLevel) bool {
		return ValidName(fl.Field().String())
	})
	return v
}

// ValidName reports whether name is a usable host name, optionally with a
// leading wildcard label.
func ValidName(name string) bool {
	return len(name) <= 253 && hostnamePattern.MatchString(name)
}

// Validate checks site settings and every vhost.
func (c *Config) Validate() error {
	if err := validate.Struct(c.Site); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, "invalid site settings", describe(err))
	}

	names := make([]string, 0, len(c.VHosts))
	for name := range c.VHosts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := c.VHosts[name]
		if v.Name != name {
			return errors.WrapDomain(errors.ErrCodeConfig, name,
				fmt.Errorf("declared under key %q but named %q", name, v.Name))
		}
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a single vhost declaration.
func (v *VHost) Validate() error {
	if err := validate.Struct(v); err != nil {
		return &errors.VHostError{
			Code:    errors.ErrCodeValidation,
			Message: "invalid declaration",
			Domain:  v.Name,
			Err:     describe(err),
		}
	}

	for field, src := range map[string]string{
		"certfile":  explicit(v.CertFile),
		"certkey":   explicit(v.CertKey),
		"cacert":    explicit(v.CACert),
		"certchain": explicit(v.CertChain),
	} {
		if src == "" {
			continue
		}
		if err := fetch.Validate(src); err != nil {
			return errors.WrapDomain(errors.ErrCodeValidation, v.Name, fmt.Errorf("%s: %w", field, err))
		}
	}

	if cn, ok := v.CertCN.Explicit(); ok && !ValidName(cn) {
		return errors.WrapDomain(errors.ErrCodeValidation, v.Name, fmt.Errorf("certcn: invalid name %q", cn))
	}
	if p, ok := v.PublishCSR.Explicit(); ok && !filepath.IsAbs(p) {
		return errors.WrapDomain(errors.ErrCodeValidation, v.Name, fmt.Errorf("publish_csr: path must be absolute: %q", p))
	}
	for field, t := range map[string]string{"docroot": explicit(v.DocRoot), "cgibin": explicit(v.CGIBin)} {
		if t != "" && !filepath.IsAbs(t) {
			return errors.WrapDomain(errors.ErrCodeValidation, v.Name, fmt.Errorf("%s: path must be absolute: %q", field, t))
		}
	}
	return nil
}

func explicit(t interface{ Explicit() (string, bool) }) string {
	s, _ := t.Explicit()
	return s
}

// describe flattens validator output into one readable error.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
