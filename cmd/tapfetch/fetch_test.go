// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tapfetch/internal/pipeline"
)

func TestFetchFlagsStopAtFirstPositional(t *testing.T) {
	args := []string{"--delay", "2s", "out.txt", "urls", "5", "archive", "http://a/tap", "raw_query",
		"ivoa.obscore", "em_max", "-1e-9", "access_url"}
	require.NoError(t, fetchCmd.ParseFlags(args))

	delay, err := fetchCmd.Flags().GetDuration("delay")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, delay)

	positional := fetchCmd.Flags().Args()
	assert.Equal(t, args[2:], positional)

	req, err := pipeline.ParseArgs(positional)
	require.NoError(t, err)
	q, err := req.Query.Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT TOP 100 * FROM ivoa.obscore WHERE em_max = '-1e-9'", q)
}
