// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive models a TAP archive handle: its identity, the table
// schema it exposes, and the resource search that turns an ADQL query into
// a list of dataset URLs.
//
// An Archive starts uninitialized. Initialize connects and introspects the
// tables exactly once; until it succeeds GetResources is a no-op that
// returns no URLs and never touches the network.
package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/tapfetch/internal/tap"
	"github.com/pdiddy/tapfetch/pkg/types"
)

// DefaultURLField is the ObsCore column holding the dataset access URL.
const DefaultURLField = "access_url"

var (
	// ErrNoConnection is returned by Initialize when no connection could be
	// opened for the access URL.
	ErrNoConnection = errors.New("archive connection unavailable")

	// ErrMissingField is returned by GetResources when a result row lacks
	// the requested URL field.
	ErrMissingField = errors.New("result row has no such field")
)

// Connection is an open TAP service.
type Connection interface {
	Tables(ctx context.Context) ([]types.TableSchema, error)
	Search(ctx context.Context, query string) ([]tap.Row, error)
}

// Connector opens a Connection for an access URL.
type Connector interface {
	Connect(accessURL string) (Connection, error)
}

// TAPConnector opens connections through a tap.Client.
type TAPConnector struct {
	Client *tap.Client
}

// Connect implements Connector.
func (c TAPConnector) Connect(accessURL string) (Connection, error) {
	s, err := c.Client.Open(accessURL)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Archive is a handle on one TAP archive.
type Archive struct {
	ID    string
	Title string
	Name  string

	accessURL   string
	connector   Connector
	conn        Connection
	initialized bool
	tables      []types.TableSchema
}

// New returns an uninitialized Archive. The access URL cannot change after
// construction.
func New(id, title, name, accessURL string, connector Connector) *Archive {
	return &Archive{
		ID:        id,
		Title:     title,
		Name:      name,
		accessURL: accessURL,
		connector: connector,
	}
}

// AccessURL returns the TAP endpoint of the archive.
func (a *Archive) AccessURL() string { return a.accessURL }

// Initialized reports whether Initialize has succeeded.
func (a *Archive) Initialized() bool { return a.initialized }

// Tables returns the introspected tables in service order, or nil before
// initialization.
func (a *Archive) Tables() []types.TableSchema {
	if !a.initialized {
		return nil
	}
	out := make([]types.TableSchema, len(a.tables))
	copy(out, a.tables)
	return out
}

// Initialize opens the connection and records every table and column the
// service exposes. On failure the archive stays uninitialized and the
// error says why; the archive is then inert for the rest of the run.
// Calling Initialize on a ready archive does nothing.
func (a *Archive) Initialize(ctx context.Context) error {
	if a.initialized {
		return nil
	}
	if a.accessURL == "" || a.connector == nil {
		return ErrNoConnection
	}

	conn, err := a.connector.Connect(a.accessURL)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNoConnection, a.accessURL, err)
	}
	if conn == nil {
		return fmt.Errorf("%w: %s", ErrNoConnection, a.accessURL)
	}

	tables, err := conn.Tables(ctx)
	if err != nil {
		return fmt.Errorf("listing tables of %s: %w", a.accessURL, err)
	}

	a.conn = conn
	a.tables = tables
	a.initialized = true
	return nil
}

// GetResources runs query and returns the urlField value of the first limit
// rows in service order. An empty urlField means DefaultURLField.
//
// An uninitialized archive returns an empty list and a nil error without
// running anything. When the query or a row fails, the URLs gathered up to
// that point are returned alongside the error so callers can keep them.
func (a *Archive) GetResources(ctx context.Context, query string, limit int, urlField string) ([]string, error) {
	resources := []string{}
	if !a.initialized {
		return resources, nil
	}
	if urlField == "" {
		urlField = DefaultURLField
	}

	rows, err := a.conn.Search(ctx, query)
	if err != nil {
		return resources, fmt.Errorf("searching %s: %w", a.accessURL, err)
	}

	for i, row := range rows {
		if i >= limit {
			break
		}
		v, ok := row[urlField]
		if !ok {
			return resources, fmt.Errorf("row %d of %s: %w: %q", i, a.accessURL, ErrMissingField, urlField)
		}
		resources = append(resources, v)
	}
	return resources, nil
}
