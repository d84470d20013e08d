// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives one tapfetch run: build the ADQL query, find the
// archives, collect resource URLs, and write them (and optionally the files
// they point to) to disk.
//
// Data-level failures (an unreachable archive, a failing query, a bad
// download) are reported to the log writer and the run carries on. Only
// invalid input and an unwritable output file are returned as errors.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/tapfetch/internal/archive"
	"github.com/pdiddy/tapfetch/internal/ledger"
	"github.com/pdiddy/tapfetch/internal/output"
	"github.com/pdiddy/tapfetch/internal/registry"
	"github.com/pdiddy/tapfetch/pkg/types"
)

// ArchiveResolver finds archives through a registry search.
type ArchiveResolver interface {
	SearchRegistries(ctx context.Context, params registry.SearchParameters, maxRegistries int) ([]*archive.Archive, error)
}

// Recorder stores a finished run.
type Recorder interface {
	Record(ctx context.Context, run *ledger.Run) error
}

// Runner executes fetch requests.
type Runner struct {
	Resolver   ArchiveResolver
	Connector  archive.Connector
	HTTPClient *http.Client
	Config     types.Config

	// Ledger, when set, receives every finished run.
	Ledger Recorder

	// Log receives progress lines and warnings. Nil discards them.
	Log io.Writer
}

// Result summarizes a run.
type Result struct {
	RunID     string
	Query     string
	Archives  []string
	URLs      []string
	Downloads output.BatchResult
	// Empty is true when no URL was found and the sentinel was written.
	Empty bool
}

// Run executes req. An unknown order_by selector or a query that cannot be
// built fails before any network access.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	w := r.Log
	if w == nil {
		w = io.Discard
	}

	query, err := req.Query.Build()
	if err != nil {
		return Result{}, err
	}
	res := Result{Query: query}

	archives := r.archives(ctx, req, w)
	for _, a := range archives {
		res.Archives = append(res.Archives, a.AccessURL())
	}

	res.URLs = r.collect(ctx, archives, query, req, w)

	if len(res.URLs) == 0 {
		fmt.Fprintln(w, "no resources found")
		res.Empty = true
		if err := output.WriteText(output.Sentinel, req.Output); err != nil {
			return res, err
		}
	} else {
		fmt.Fprintf(w, "found %d resource(s)\n", len(res.URLs))
		if err := output.WriteURLList(res.URLs, req.Output); err != nil {
			return res, err
		}
		if req.Mode == ModeFiles {
			res.Downloads = output.DownloadAll(ctx, r.client(), res.URLs, r.Config.HTTP, r.Config.Output, w)
		}
	}

	r.record(ctx, req, &res, w)
	return res, nil
}

// archives returns the archives to query: the registry hits, or a single
// archive for a direct access URL. A failed registry search yields none.
func (r *Runner) archives(ctx context.Context, req Request, w io.Writer) []*archive.Archive {
	if req.Selection == SelectArchive {
		return []*archive.Archive{archive.New("", "", "", req.AccessURL, r.Connector)}
	}

	maxRegistries := r.Config.Registry.MaxRegistries
	if maxRegistries <= 0 {
		maxRegistries = 1
	}
	archives, err := r.Resolver.SearchRegistries(ctx, req.Registry, maxRegistries)
	if err != nil {
		fmt.Fprintf(w, "warning: registry search failed: %v\n", err)
		return nil
	}
	if len(archives) == 0 {
		fmt.Fprintln(w, "warning: registry search returned no archives")
	}
	return archives
}

// collect queries archives in order until limit URLs have been gathered.
func (r *Runner) collect(ctx context.Context, archives []*archive.Archive, query string, req Request, w io.Writer) []string {
	urls := []string{}
	for _, a := range archives {
		remaining := req.Limit - len(urls)
		if remaining <= 0 {
			break
		}

		label := a.AccessURL()
		if a.Title != "" {
			label = fmt.Sprintf("%s (%s)", a.Title, a.AccessURL())
		}
		fmt.Fprintf(w, "archive: %s\n", label)

		if err := a.Initialize(ctx); err != nil {
			fmt.Fprintf(w, "warning: archive unavailable: %v\n", err)
			continue
		}

		found, err := a.GetResources(ctx, query, remaining, req.URLField)
		urls = append(urls, found...)
		if err != nil {
			fmt.Fprintf(w, "warning: resource search stopped after %d result(s): %v\n", len(found), err)
		}
	}
	return urls
}

func (r *Runner) client() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return &http.Client{Timeout: r.Config.HTTP.Timeout}
}

func (r *Runner) record(ctx context.Context, req Request, res *Result, w io.Writer) {
	if r.Ledger == nil {
		return
	}

	run := &ledger.Run{
		Selection:    string(req.Selection),
		DownloadMode: string(req.Mode),
		Query:        res.Query,
		Archives:     res.Archives,
		URLCount:     len(res.URLs),
		Status:       ledger.StatusFound,
	}
	if res.Empty {
		run.Status = ledger.StatusEmpty
	}

	for i, u := range res.URLs {
		rr := ledger.Resource{Position: i, URL: u}
		if i < len(res.Downloads.Files) {
			f := res.Downloads.Files[i]
			rr.FilePath = f.Path
			if f.Err != nil {
				rr.Error = f.Err.Error()
			}
		}
		run.Resources = append(run.Resources, rr)
	}

	if err := r.Ledger.Record(ctx, run); err != nil {
		fmt.Fprintf(w, "warning: recording run failed: %v\n", err)
		return
	}
	res.RunID = run.ID
}
