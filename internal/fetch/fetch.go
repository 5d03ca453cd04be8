// Package fetch retrieves certificate material from a source location.
//
// Supported sources are http:// and https:// URLs, file:// URLs and
// absolute local paths.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ksyq12/sslvhost/internal/errors"
)

// maxSize bounds remote downloads; certificate bundles are far smaller.
const maxSize = 4 << 20

// Fetcher reads the content behind a source.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// Client implements Fetcher over HTTP and the local filesystem.
type Client struct {
	HTTP *http.Client
}

// New creates a Client with a bounded HTTP timeout.
func New() *Client {
	return &Client{HTTP: &http.Client{Timeout: 30 * time.Second}}
}

// Validate reports whether source has a supported form.
func Validate(source string) error {
	u, err := url.Parse(source)
	if err != nil {
		return errors.Validation(fmt.Sprintf("invalid source %q: %v", source, err))
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return errors.Validation(fmt.Sprintf("invalid source %q: missing host", source))
		}
		return nil
	case "file":
		if (u.Host != "" && u.Host != "localhost") || !filepath.IsAbs(u.Path) {
			return errors.Validation(fmt.Sprintf("invalid source %q: file path must be absolute", source))
		}
		return nil
	case "":
		if !filepath.IsAbs(source) {
			return errors.Validation(fmt.Sprintf("invalid source %q: path must be absolute", source))
		}
		return nil
	default:
		return errors.Validation(fmt.Sprintf("invalid source %q: unsupported scheme %s", source, u.Scheme))
	}
}

// Fetch returns the content behind source.
func (c *Client) Fetch(ctx context.Context, source string) ([]byte, error) {
	if err := Validate(source); err != nil {
		return nil, err
	}
	u, _ := url.Parse(source)

	var data []byte
	var err error
	switch u.Scheme {
	case "http", "https":
		data, err = c.fetchHTTP(ctx, source)
	case "file":
		data, err = os.ReadFile(u.Path)
	default:
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSSL, fmt.Sprintf("certificate source unavailable: %s", source), err)
	}
	return data, nil
}

func (c *Client) fetchHTTP(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("expected response status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxSize {
		return nil, fmt.Errorf("response exceeds %d bytes", maxSize)
	}
	return data, nil
}
