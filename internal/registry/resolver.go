// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry resolves VO registry searches into TAP archive handles.
// It owns the service-type and waveband vocabularies, the normalization of
// user input onto them, and a RegTAP-backed searcher.
package registry

import (
	"context"

	"github.com/pdiddy/tapfetch/internal/archive"
)

// Record is one registry hit.
type Record struct {
	StandardID string
	ResTitle   string
	ShortName  string
	AccessURL  string
}

// SearchOptions carries optional registry constraints.
type SearchOptions struct {
	Waveband string
}

// SearchOption sets an optional registry constraint.
type SearchOption func(*SearchOptions)

// WithWaveband restricts the search to resources covering waveband (a
// messenger vocabulary term).
func WithWaveband(waveband string) SearchOption {
	return func(o *SearchOptions) { o.Waveband = waveband }
}

// Searcher queries a VO registry. Records come back in registry order.
type Searcher interface {
	Search(ctx context.Context, keywords, serviceType string, opts ...SearchOption) ([]Record, error)
}

// Resolver turns registry searches into uninitialized archives.
type Resolver struct {
	Searcher  Searcher
	Connector archive.Connector
}

// SearchRegistries runs a registry search and wraps at most maxRegistries
// records, in registry order, as archives. Records are not deduplicated.
// The waveband option is passed only when the normalized waveband is set.
func (r *Resolver) SearchRegistries(ctx context.Context, params SearchParameters, maxRegistries int) ([]*archive.Archive, error) {
	n := params.Normalize()

	var opts []SearchOption
	if n.Waveband != "" {
		opts = append(opts, WithWaveband(n.Waveband))
	}

	records, err := r.Searcher.Search(ctx, n.Keywords, n.ServiceType, opts...)
	if err != nil {
		return nil, err
	}

	archives := []*archive.Archive{}
	for i, rec := range records {
		if i >= maxRegistries {
			break
		}
		archives = append(archives, archive.New(rec.StandardID, rec.ResTitle, rec.ShortName, rec.AccessURL, r.Connector))
	}
	return archives, nil
}
