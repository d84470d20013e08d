// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tap is a minimal Table Access Protocol client: it lists an
// archive's tables through the VOSI tables endpoint and runs synchronous
// ADQL queries, decoding VOTable TABLEDATA responses into rows.
package tap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/tapfetch/internal/httputil"
	"github.com/pdiddy/tapfetch/pkg/types"
)

// ErrQueryFailed marks a query the service accepted but reported as failed
// through its QUERY_STATUS.
var ErrQueryFailed = errors.New("TAP query failed")

// Row is one result row, indexable by field name.
type Row map[string]string

// Client opens TAP services. The zero value is not usable; HTTP must be set.
type Client struct {
	HTTP       *http.Client
	UserAgent  string
	MaxRetries int
}

// NewClient returns a Client built from the shared HTTP settings.
func NewClient(cfg types.HTTPConfig) *Client {
	return &Client{
		HTTP:       &http.Client{Timeout: cfg.Timeout},
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
	}
}

// Service is a handle on one TAP endpoint.
type Service struct {
	client  *Client
	baseURL string
}

// Open returns a Service for accessURL. No request is made; the URL is only
// checked for being an absolute http(s) URL.
func (c *Client) Open(accessURL string) (*Service, error) {
	u, err := url.Parse(strings.TrimSpace(accessURL))
	if err != nil {
		return nil, fmt.Errorf("parsing access URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("access URL %q is not an http(s) URL", accessURL)
	}
	return &Service{client: c, baseURL: strings.TrimRight(u.String(), "/")}, nil
}

// BaseURL returns the service root without a trailing slash.
func (s *Service) BaseURL() string { return s.baseURL }

// Tables fetches <base>/tables and returns every table with its columns in
// the order the service lists them.
func (s *Service) Tables(ctx context.Context) ([]types.TableSchema, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/tables", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	s.setHeaders(req)

	resp, err := httputil.DoWithRetry(ctx, s.client.HTTP, req, s.client.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("VOSI tables request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("VOSI tables returned HTTP %d", resp.StatusCode)
	}
	return decodeTableset(resp.Body)
}

// Search runs query synchronously and returns the result rows in service
// order.
func (s *Service) Search(ctx context.Context, query string) ([]Row, error) {
	form := url.Values{}
	form.Set("REQUEST", "doQuery")
	form.Set("LANG", "ADQL")
	form.Set("FORMAT", "votable")
	form.Set("QUERY", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/sync", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	s.setHeaders(req)

	resp, err := httputil.DoWithRetry(ctx, s.client.HTTP, req, s.client.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("TAP sync request: %w", err)
	}
	defer resp.Body.Close()

	// Services report ADQL errors either as a VOTable with QUERY_STATUS=ERROR
	// or as an HTTP 400 carrying that same document.
	rows, decodeErr := decodeVOTable(resp.Body)
	if resp.StatusCode != http.StatusOK {
		if errors.Is(decodeErr, ErrQueryFailed) {
			return nil, decodeErr
		}
		return nil, fmt.Errorf("TAP sync returned HTTP %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return rows, nil
}

func (s *Service) setHeaders(req *http.Request) {
	if s.client.UserAgent != "" {
		req.Header.Set("User-Agent", s.client.UserAgent)
	}
}
