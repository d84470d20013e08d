// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"strconv"

	"github.com/pdiddy/tapfetch/internal/adql"
	"github.com/pdiddy/tapfetch/internal/archive"
	"github.com/pdiddy/tapfetch/internal/registry"
)

// DownloadMode selects whether a run only lists URLs or also fetches files.
type DownloadMode string

const (
	ModeURLs  DownloadMode = "urls"
	ModeFiles DownloadMode = "files"
)

// Selection selects how archives are found.
type Selection string

const (
	SelectRegistry Selection = "registry"
	SelectArchive  Selection = "archive"
)

// Query types accepted on the command line. Any other value runs the
// unfiltered ObsCore query.
const (
	QueryObscore = "obscore_query"
	QueryRaw     = "raw_query"
	QueryADQL    = "adql"
)

// Request is one fully parsed fetch invocation.
type Request struct {
	Output    string
	Mode      DownloadMode
	Limit     int
	Selection Selection

	// Registry is used when Selection is SelectRegistry.
	Registry registry.SearchParameters
	// AccessURL is used when Selection is SelectArchive.
	AccessURL string

	QueryType string
	Query     adql.Builder
	URLField  string
}

// Usage describes the positional arguments ParseArgs accepts.
const Usage = `<output> <urls|files> <limit> registry <keyword> <waveband> <service_type> <query_type> [query args...]
<output> <urls|files> <limit> archive <access_url> <query_type> [query args...]

query_type and its arguments:
  obscore_query <dataproduct_type> <obs_collection> <facility_name> <instrument_name>
                <em_min> <em_max> <target_name> <obs_publisher_id> <s_fov>
                <calibration_level|none> <order_by: size|collection|object|none>
  raw_query     <table> <where_field> <where_condition> <url_field>
  adql          <url-encoded query> <url_field>
  anything else runs SELECT TOP 100 * FROM ivoa.obscore`

// ParseArgs parses the positional fetch arguments. Values that cannot
// describe a run (unknown download or selection mode, a non-numeric limit,
// missing query arguments) are errors.
func ParseArgs(args []string) (Request, error) {
	if len(args) < 4 {
		return Request{}, fmt.Errorf("expected at least 4 arguments, got %d", len(args))
	}

	req := Request{
		Output:    args[0],
		Mode:      DownloadMode(args[1]),
		Selection: Selection(args[3]),
		URLField:  archive.DefaultURLField,
	}

	switch req.Mode {
	case ModeURLs, ModeFiles:
	default:
		return Request{}, fmt.Errorf("unknown download mode %q (want urls or files)", args[1])
	}

	limit, err := strconv.Atoi(args[2])
	if err != nil {
		return Request{}, fmt.Errorf("invalid result limit %q: %w", args[2], err)
	}
	req.Limit = limit

	var rest []string
	switch req.Selection {
	case SelectRegistry:
		if len(args) < 8 {
			return Request{}, fmt.Errorf("registry mode needs keyword, waveband, service_type and query_type")
		}
		req.Registry = registry.SearchParameters{
			Keyword:     args[4],
			Waveband:    args[5],
			ServiceType: args[6],
		}
		req.QueryType = args[7]
		rest = args[8:]
	case SelectArchive:
		if len(args) < 6 {
			return Request{}, fmt.Errorf("archive mode needs access_url and query_type")
		}
		req.AccessURL = args[4]
		req.QueryType = args[5]
		rest = args[6:]
	default:
		return Request{}, fmt.Errorf("unknown archive selection %q (want registry or archive)", args[3])
	}

	if err := parseQuery(&req, rest); err != nil {
		return Request{}, err
	}
	return req, nil
}

func parseQuery(req *Request, rest []string) error {
	switch req.QueryType {
	case QueryObscore:
		if len(rest) < 11 {
			return fmt.Errorf("%s needs 11 arguments, got %d", QueryObscore, len(rest))
		}
		req.Query = adql.NewObscoreQuery(adql.ObscoreFields{
			DataproductType:  rest[0],
			ObsCollection:    rest[1],
			FacilityName:     rest[2],
			InstrumentName:   rest[3],
			EmMin:            rest[4],
			EmMax:            rest[5],
			TargetName:       rest[6],
			ObsPublisherID:   rest[7],
			SFov:             rest[8],
			CalibrationLevel: rest[9],
		}, rest[10])
	case QueryRaw:
		if len(rest) < 4 {
			return fmt.Errorf("%s needs 4 arguments, got %d", QueryRaw, len(rest))
		}
		req.Query = adql.RawTapQuery{Table: rest[0], WhereField: rest[1], WhereCondition: rest[2]}
		req.URLField = rest[3]
	case QueryADQL:
		if len(rest) < 2 {
			return fmt.Errorf("%s needs 2 arguments, got %d", QueryADQL, len(rest))
		}
		req.Query = adql.EncodedQuery{Raw: rest[0]}
		req.URLField = rest[1]
	default:
		req.Query = adql.DefaultQuery{}
	}
	return nil
}
