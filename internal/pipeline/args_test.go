// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tapfetch/internal/adql"
	"github.com/pdiddy/tapfetch/internal/registry"
)

func obscoreArgs(orderBy string) []string {
	return []string{"image", "", "", "", "", "", "Crab", "", "", "none", orderBy}
}

func TestParseArgsRegistryObscore(t *testing.T) {
	args := append([]string{"out.txt", "urls", "5", "registry", "crab", "X-ray", "TAP", "obscore_query"}, obscoreArgs("size")...)
	req, err := ParseArgs(args)
	require.NoError(t, err)

	assert.Equal(t, "out.txt", req.Output)
	assert.Equal(t, ModeURLs, req.Mode)
	assert.Equal(t, 5, req.Limit)
	assert.Equal(t, SelectRegistry, req.Selection)
	assert.Equal(t, registry.SearchParameters{Keyword: "crab", Waveband: "X-ray", ServiceType: "TAP"}, req.Registry)
	assert.Equal(t, "access_url", req.URLField)

	q, err := req.Query.Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT TOP 100 * FROM ivoa.obscore WHERE dataproduct_type = 'image' AND target_name = 'Crab' ORDER BY access_estsize", q)
}

func TestParseArgsNegativeValues(t *testing.T) {
	args := []string{"out.txt", "urls", "5", "archive", "http://a/tap", "obscore_query",
		"", "", "", "", "-1e-9", "", "", "", "", "none", "none"}
	req, err := ParseArgs(args)
	require.NoError(t, err)

	q, err := req.Query.Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT TOP 100 * FROM ivoa.obscore WHERE em_min = '-1e-9' ", q)
}

func TestParseArgsArchiveRaw(t *testing.T) {
	req, err := ParseArgs([]string{"out.txt", "files", "2", "archive", "http://a/tap", "raw_query", "mytable", "col", "val", "url"})
	require.NoError(t, err)

	assert.Equal(t, ModeFiles, req.Mode)
	assert.Equal(t, SelectArchive, req.Selection)
	assert.Equal(t, "http://a/tap", req.AccessURL)
	assert.Equal(t, "url", req.URLField)
	assert.Equal(t, adql.RawTapQuery{Table: "mytable", WhereField: "col", WhereCondition: "val"}, req.Query)
}

func TestParseArgsArchiveADQL(t *testing.T) {
	req, err := ParseArgs([]string{"out.txt", "urls", "2", "archive", "http://a/tap", "adql", "SELECT+*+FROM+t", "link"})
	require.NoError(t, err)

	q, err := req.Query.Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t", q)
	assert.Equal(t, "link", req.URLField)
}

func TestParseArgsUnknownQueryTypeUsesDefault(t *testing.T) {
	req, err := ParseArgs([]string{"out.txt", "urls", "2", "archive", "http://a/tap", "whatever"})
	require.NoError(t, err)
	assert.Equal(t, adql.DefaultQuery{}, req.Query)
}

func TestParseArgsUnknownOrderByParsesButFailsBuild(t *testing.T) {
	args := append([]string{"out.txt", "urls", "1", "archive", "http://a/tap", "obscore_query"}, obscoreArgs("date")...)
	req, err := ParseArgs(args)
	require.NoError(t, err)

	_, err = req.Query.Build()
	assert.ErrorIs(t, err, adql.ErrUnknownOrderBy)
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"too few", []string{"out.txt", "urls", "1"}},
		{"bad mode", []string{"out.txt", "both", "1", "archive", "http://a/tap", "x"}},
		{"bad limit", []string{"out.txt", "urls", "ten", "archive", "http://a/tap", "x"}},
		{"bad selection", []string{"out.txt", "urls", "1", "mirror", "http://a/tap", "x"}},
		{"registry short", []string{"out.txt", "urls", "1", "registry", "crab"}},
		{"archive short", []string{"out.txt", "urls", "1", "archive"}},
		{"obscore short", []string{"out.txt", "urls", "1", "archive", "http://a/tap", "obscore_query", "image"}},
		{"raw short", []string{"out.txt", "urls", "1", "archive", "http://a/tap", "raw_query", "t", "c"}},
		{"adql short", []string{"out.txt", "urls", "1", "archive", "http://a/tap", "adql"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args)
			assert.Error(t, err)
		})
	}
}
