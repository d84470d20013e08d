// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package adql builds the ADQL query strings tapfetch sends to TAP archives.
//
// Two builders matter: ObscoreQuery filters the standard ivoa.obscore table
// through a fixed set of columns, and RawTapQuery is a single-equality
// escape hatch over any table. Neither escapes values or checks names
// against an archive's schema.
package adql

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnknownOrderBy is returned when an order_by selector is not one of the
// known keys. There is no fallback ordering.
var ErrUnknownOrderBy = errors.New("unknown order_by selector")

// Omit is the sentinel for a parameter that contributes no filter.
const Omit = ""

// none is the user-facing spelling of Omit for calibration_level and order_by.
const none = "none"

// Builder produces one ADQL query.
type Builder interface {
	Build() (string, error)
}

// Parameter is one equality filter of a WHERE clause.
type Parameter struct {
	Key   string
	Value string
}

// WhereClause renders params in the given order, skipping Omit values. The
// first filter opens with "WHERE ", later ones with "AND "; each ends with a
// space. With no filters the result is empty.
func WhereClause(params []Parameter) string {
	var b strings.Builder
	first := true
	for _, p := range params {
		if p.Value == Omit {
			continue
		}
		if first {
			b.WriteString("WHERE ")
			first = false
		} else {
			b.WriteString("AND ")
		}
		fmt.Fprintf(&b, "%s = '%s' ", p.Key, p.Value)
	}
	return b.String()
}

// OrderByClause renders "ORDER BY field", or "" for Omit.
func OrderByClause(field string) string {
	if field == Omit {
		return ""
	}
	return "ORDER BY " + field
}

// EncodedQuery is an ADQL statement passed through a URL-encoded channel,
// e.g. a web form: percent escapes are decoded and '+' stands for a space.
type EncodedQuery struct {
	Raw string
}

// Build decodes the query text.
func (q EncodedQuery) Build() (string, error) {
	decoded, err := url.PathUnescape(q.Raw)
	if err != nil {
		return "", fmt.Errorf("decoding ADQL query: %w", err)
	}
	return strings.ReplaceAll(decoded, "+", " "), nil
}
