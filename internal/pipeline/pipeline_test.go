// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tapfetch/internal/adql"
	"github.com/pdiddy/tapfetch/internal/archive"
	"github.com/pdiddy/tapfetch/internal/ledger"
	"github.com/pdiddy/tapfetch/internal/registry"
	"github.com/pdiddy/tapfetch/internal/tap"
	"github.com/pdiddy/tapfetch/pkg/types"
)

const tableset = `<vosi:tableset xmlns:vosi="http://www.ivoa.net/xml/VOSITables/v1.0">
  <schema><name>ivoa</name>
    <table type="output"><name>ivoa.obscore</name>
      <column><name>access_url</name><dataType>char</dataType></column>
    </table>
  </schema>
</vosi:tableset>`

// archiveServer serves a TAP endpoint under /tap whose result rows point at
// n files under /files, plus the files themselves. File "1.fits" fails.
type archiveServer struct {
	*httptest.Server
	queries []string
}

func newArchiveServer(t *testing.T, n int) *archiveServer {
	t.Helper()
	as := &archiveServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/tap/tables", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(tableset))
	})
	mux.HandleFunc("/tap/sync", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		as.queries = append(as.queries, r.PostForm.Get("QUERY"))
		var rows strings.Builder
		for i := 0; i < n; i++ {
			fmt.Fprintf(&rows, "<TR><TD>%s/files/%d.fits</TD></TR>", as.URL, i)
		}
		fmt.Fprintf(w, `<VOTABLE><RESOURCE type="results"><INFO name="QUERY_STATUS" value="OK"/>
<TABLE><FIELD name="access_url"/><DATA><TABLEDATA>%s</TABLEDATA></DATA></TABLE></RESOURCE></VOTABLE>`, rows.String())
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/1.fits") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("FITS " + r.URL.Path))
	})
	as.Server = httptest.NewServer(mux)
	t.Cleanup(as.Close)
	return as
}

func testConfig(t *testing.T) types.Config {
	return types.Config{
		HTTP:     types.HTTPConfig{UserAgent: "test/0.1", MaxRetries: 1},
		Registry: types.RegistryConfig{MaxRegistries: 1},
		Output:   types.OutputConfig{DownloadDir: filepath.Join(t.TempDir(), "fits")},
	}
}

func newRunner(t *testing.T, resolver ArchiveResolver) (*Runner, *bytes.Buffer) {
	cfg := testConfig(t)
	client := tap.NewClient(cfg.HTTP)
	var log bytes.Buffer
	return &Runner{
		Resolver:  resolver,
		Connector: archive.TAPConnector{Client: client},
		Config:    cfg,
		Log:       &log,
	}, &log
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// --- fakes ---

type fakeSearcher struct {
	records []registry.Record
	err     error
}

func (f *fakeSearcher) Search(context.Context, string, string, ...registry.SearchOption) ([]registry.Record, error) {
	return f.records, f.err
}

type fakeRecorder struct {
	runs []*ledger.Run
	err  error
}

func (f *fakeRecorder) Record(_ context.Context, run *ledger.Run) error {
	if f.err != nil {
		return f.err
	}
	run.ID = fmt.Sprintf("run-%d", len(f.runs))
	f.runs = append(f.runs, run)
	return nil
}

// --- tests ---

func TestRunArchiveURLs(t *testing.T) {
	as := newArchiveServer(t, 5)
	r, _ := newRunner(t, nil)
	out := filepath.Join(t.TempDir(), "out.txt")

	res, err := r.Run(context.Background(), Request{
		Output:    out,
		Mode:      ModeURLs,
		Limit:     2,
		Selection: SelectArchive,
		AccessURL: as.URL + "/tap",
		Query:     adql.NewObscoreQuery(adql.ObscoreFields{TargetName: "Crab"}, "none"),
		URLField:  archive.DefaultURLField,
	})
	require.NoError(t, err)

	assert.False(t, res.Empty)
	assert.Equal(t, []string{as.URL + "/files/0.fits", as.URL + "/files/1.fits"}, res.URLs)
	assert.Equal(t, as.URL+"/files/0.fits,"+as.URL+"/files/1.fits,", readFile(t, out))
	assert.Equal(t, []string{"SELECT TOP 100 * FROM ivoa.obscore WHERE target_name = 'Crab' "}, as.queries)
	assert.Equal(t, 0, res.Downloads.Total())
}

func TestRunArchiveFilesSkipsFailedDownload(t *testing.T) {
	as := newArchiveServer(t, 3)
	r, log := newRunner(t, nil)
	out := filepath.Join(t.TempDir(), "out.txt")

	res, err := r.Run(context.Background(), Request{
		Output:    out,
		Mode:      ModeFiles,
		Limit:     10,
		Selection: SelectArchive,
		AccessURL: as.URL + "/tap",
		Query:     adql.DefaultQuery{},
	})
	require.NoError(t, err)

	assert.Len(t, res.URLs, 3)
	assert.Equal(t, 2, res.Downloads.Downloaded)
	assert.Equal(t, 1, res.Downloads.Failed)

	dir := r.Config.Output.DownloadDir
	assert.Equal(t, "FITS /files/0.fits", readFile(t, filepath.Join(dir, "0.fits")))
	assert.Equal(t, "FITS /files/2.fits", readFile(t, filepath.Join(dir, "2.fits")))
	assert.Contains(t, log.String(), "failed:  "+as.URL+"/files/1.fits")
}

func TestRunRegistryNoRecordsWritesSentinel(t *testing.T) {
	resolver := &registry.Resolver{Searcher: &fakeSearcher{}}
	r, log := newRunner(t, resolver)
	out := filepath.Join(t.TempDir(), "out.txt")

	res, err := r.Run(context.Background(), Request{
		Output:    out,
		Mode:      ModeFiles,
		Limit:     5,
		Selection: SelectRegistry,
		Registry:  registry.SearchParameters{Keyword: "nothing", ServiceType: "TAP"},
		Query:     adql.DefaultQuery{},
	})
	require.NoError(t, err)

	assert.True(t, res.Empty)
	assert.Equal(t, "No files matching parameters", readFile(t, out))
	assert.Contains(t, log.String(), "registry search returned no archives")
}

func TestRunRegistryFailureWritesSentinel(t *testing.T) {
	resolver := &registry.Resolver{Searcher: &fakeSearcher{err: errors.New("registry down")}}
	r, log := newRunner(t, resolver)
	out := filepath.Join(t.TempDir(), "out.txt")

	res, err := r.Run(context.Background(), Request{
		Output: out, Mode: ModeURLs, Limit: 5, Selection: SelectRegistry, Query: adql.DefaultQuery{},
	})
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Equal(t, "No files matching parameters", readFile(t, out))
	assert.Contains(t, log.String(), "warning: registry search failed: registry down")
}

func TestRunRegistryResolvesArchive(t *testing.T) {
	as := newArchiveServer(t, 4)
	r, _ := newRunner(t, nil)
	r.Resolver = &registry.Resolver{
		Searcher: &fakeSearcher{records: []registry.Record{
			{StandardID: "ivo://ivoa.net/std/tap", ResTitle: "Test", ShortName: "T", AccessURL: as.URL + "/tap"},
			{StandardID: "ivo://ivoa.net/std/tap", ResTitle: "Other", ShortName: "O", AccessURL: "http://unused.invalid/tap"},
		}},
		Connector: r.Connector,
	}
	out := filepath.Join(t.TempDir(), "out.txt")

	res, err := r.Run(context.Background(), Request{
		Output: out, Mode: ModeURLs, Limit: 3, Selection: SelectRegistry,
		Registry: registry.SearchParameters{ServiceType: "TAP"}, Query: adql.DefaultQuery{},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{as.URL + "/tap"}, res.Archives, "max_registries defaults to one archive")
	assert.Len(t, res.URLs, 3)
}

func TestRunUnreachableArchiveWritesSentinel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	r, log := newRunner(t, nil)
	out := filepath.Join(t.TempDir(), "out.txt")

	res, err := r.Run(context.Background(), Request{
		Output: out, Mode: ModeURLs, Limit: 5, Selection: SelectArchive,
		AccessURL: ts.URL, Query: adql.DefaultQuery{},
	})
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Equal(t, "No files matching parameters", readFile(t, out))
	assert.Contains(t, log.String(), "warning: archive unavailable")
}

func TestRunMissingURLFieldWritesSentinel(t *testing.T) {
	as := newArchiveServer(t, 2)
	r, log := newRunner(t, nil)
	out := filepath.Join(t.TempDir(), "out.txt")

	res, err := r.Run(context.Background(), Request{
		Output: out, Mode: ModeURLs, Limit: 5, Selection: SelectArchive,
		AccessURL: as.URL + "/tap", Query: adql.RawTapQuery{Table: "t", WhereField: "c", WhereCondition: "v"},
		URLField: "no_such_field",
	})
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Contains(t, log.String(), "resource search stopped after 0 result(s)")
}

func TestRunUnknownOrderByFails(t *testing.T) {
	as := newArchiveServer(t, 1)
	r, _ := newRunner(t, nil)
	out := filepath.Join(t.TempDir(), "out.txt")

	_, err := r.Run(context.Background(), Request{
		Output: out, Mode: ModeURLs, Limit: 5, Selection: SelectArchive,
		AccessURL: as.URL + "/tap", Query: adql.NewObscoreQuery(adql.ObscoreFields{}, "date"),
	})
	assert.ErrorIs(t, err, adql.ErrUnknownOrderBy)
	assert.Empty(t, as.queries)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunRecordsLedger(t *testing.T) {
	as := newArchiveServer(t, 2)
	r, _ := newRunner(t, nil)
	rec := &fakeRecorder{}
	r.Ledger = rec

	res, err := r.Run(context.Background(), Request{
		Output: filepath.Join(t.TempDir(), "out.txt"), Mode: ModeFiles, Limit: 5,
		Selection: SelectArchive, AccessURL: as.URL + "/tap", Query: adql.DefaultQuery{},
	})
	require.NoError(t, err)

	require.Len(t, rec.runs, 1)
	run := rec.runs[0]
	assert.Equal(t, "run-0", res.RunID)
	assert.Equal(t, ledger.StatusFound, run.Status)
	assert.Equal(t, "archive", run.Selection)
	assert.Equal(t, "files", run.DownloadMode)
	assert.Equal(t, adql.ObscoreBase, run.Query)
	require.Len(t, run.Resources, 2)
	assert.NotEmpty(t, run.Resources[0].FilePath)
	assert.Empty(t, run.Resources[0].Error)
	assert.Contains(t, run.Resources[1].Error, "HTTP 404")
}

func TestRunLedgerFailureIsWarning(t *testing.T) {
	r, log := newRunner(t, &registry.Resolver{Searcher: &fakeSearcher{}})
	r.Ledger = &fakeRecorder{err: errors.New("disk full")}

	res, err := r.Run(context.Background(), Request{
		Output: filepath.Join(t.TempDir(), "out.txt"), Mode: ModeURLs, Limit: 1,
		Selection: SelectRegistry, Query: adql.DefaultQuery{},
	})
	require.NoError(t, err)
	assert.Empty(t, res.RunID)
	assert.Contains(t, log.String(), "warning: recording run failed: disk full")
}

func TestRunWithSQLiteLedger(t *testing.T) {
	l, err := ledger.Open(filepath.Join(t.TempDir(), "tapfetch.db"))
	require.NoError(t, err)
	defer l.Close()

	r, _ := newRunner(t, &registry.Resolver{Searcher: &fakeSearcher{}})
	r.Ledger = l

	res, err := r.Run(context.Background(), Request{
		Output: filepath.Join(t.TempDir(), "out.txt"), Mode: ModeURLs, Limit: 1,
		Selection: SelectRegistry, Query: adql.DefaultQuery{},
	})
	require.NoError(t, err)

	runs, err := l.Runs(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
	assert.Equal(t, ledger.StatusEmpty, runs[0].Status)
}
