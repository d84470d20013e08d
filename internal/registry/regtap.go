// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/tapfetch/internal/tap"
)

// DefaultEndpoint is the GAVO relational registry, the one pyvo and TOPCAT
// query by default.
const DefaultEndpoint = "http://reg.g-vo.org/tap"

// Querier runs an ADQL query against a TAP service.
type Querier interface {
	Search(ctx context.Context, query string) ([]tap.Row, error)
}

// RegTAPSearcher searches a relational registry (IVOA RegTAP) over TAP.
type RegTAPSearcher struct {
	Service Querier
}

// Search implements Searcher.
func (s *RegTAPSearcher) Search(ctx context.Context, keywords, serviceType string, opts ...SearchOption) ([]Record, error) {
	var o SearchOptions
	for _, opt := range opts {
		opt(&o)
	}

	query, err := regTAPQuery(keywords, serviceType, o)
	if err != nil {
		return nil, err
	}

	rows, err := s.Service.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("registry search: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Record{
			StandardID: row["standard_id"],
			ResTitle:   row["res_title"],
			ShortName:  row["short_name"],
			AccessURL:  row["access_url"],
		})
	}
	return records, nil
}

// standardID maps a wire service type to its IVOA standard identifier.
func standardID(serviceType string) (string, bool) {
	switch serviceType {
	case "tap":
		return "ivo://ivoa.net/std/tap", true
	case "sia":
		return "ivo://ivoa.net/std/sia", true
	case "sia2":
		return "ivo://ivoa.net/std/sia#query-2.0", true
	case "spectrum":
		return "ivo://ivoa.net/std/ssa", true
	case "scs":
		return "ivo://ivoa.net/std/conesearch", true
	case "line":
		return "ivo://ivoa.net/std/slap", true
	default:
		return "", false
	}
}

// regTAPQuery builds the registry query. Each constraint is one AND term;
// keyword and waveband terms are left out when empty.
func regTAPQuery(keywords, serviceType string, o SearchOptions) (string, error) {
	stdID, ok := standardID(serviceType)
	if !ok {
		return "", fmt.Errorf("no registry standard for service type %q", serviceType)
	}

	terms := []string{
		fmt.Sprintf("standard_id IN (%s)", literal(stdID)),
		"intf_role = 'std'",
	}

	if kw := strings.TrimSpace(keywords); kw != "" {
		terms = append(terms, fmt.Sprintf(
			"(1=ivo_hasword(res_description, %[1]s) OR 1=ivo_hasword(res_title, %[1]s)"+
				" OR ivoid IN (SELECT ivoid FROM rr.res_subject WHERE res_subject ILIKE %[2]s))",
			literal(kw), literal("%"+kw+"%")))
	}

	if o.Waveband != "" {
		terms = append(terms, fmt.Sprintf("1=ivo_hashlist_has(waveband, %s)", literal(strings.ToLower(o.Waveband))))
	}

	return "SELECT ivoid, res_title, short_name, standard_id, access_url\n" +
		"FROM rr.resource\n" +
		"NATURAL JOIN rr.capability\n" +
		"NATURAL JOIN rr.interface\n" +
		"WHERE " + strings.Join(terms, "\nAND "), nil
}

// literal quotes s as an ADQL string literal.
func literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
