// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tap

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// VOTable document structures. Only the subset a TAP sync response needs is
// decoded; tags carry no namespace so every VOTable version matches.
type votable struct {
	XMLName   xml.Name      `xml:"VOTABLE"`
	Infos     []votInfo     `xml:"INFO"`
	Resources []votResource `xml:"RESOURCE"`
}

type votResource struct {
	Type      string        `xml:"type,attr"`
	Infos     []votInfo     `xml:"INFO"`
	Tables    []votTable    `xml:"TABLE"`
	Resources []votResource `xml:"RESOURCE"`
}

type votInfo struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
	Text  string `xml:",chardata"`
}

type votTable struct {
	Fields []votField `xml:"FIELD"`
	Data   *votData   `xml:"DATA"`
}

type votField struct {
	Name string `xml:"name,attr"`
	ID   string `xml:"ID,attr"`
}

type votData struct {
	TableData *votTableData `xml:"TABLEDATA"`
	Binary    *struct{}     `xml:"BINARY"`
	Binary2   *struct{}     `xml:"BINARY2"`
	FITS      *struct{}     `xml:"FITS"`
}

type votTableData struct {
	Rows []votRow `xml:"TR"`
}

type votRow struct {
	Cells []string `xml:"TD"`
}

// newDecoder returns an XML decoder that honours non-UTF-8 encodings
// declared in the document header.
func newDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	return dec
}

// decodeVOTable parses a TAP result document into rows keyed by FIELD name.
// A QUERY_STATUS of ERROR anywhere in the results resource wraps
// ErrQueryFailed with the service's message.
func decodeVOTable(r io.Reader) ([]Row, error) {
	var doc votable
	if err := newDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing VOTable: %w", err)
	}

	if err := queryStatus(doc.Infos); err != nil {
		return nil, err
	}

	res := resultsResource(doc.Resources)
	if res == nil {
		return nil, fmt.Errorf("VOTable has no result table")
	}
	if err := queryStatus(res.Infos); err != nil {
		return nil, err
	}
	if len(res.Tables) == 0 {
		return nil, fmt.Errorf("VOTable has no result table")
	}

	table := res.Tables[0]
	if table.Data == nil {
		return []Row{}, nil
	}
	if table.Data.TableData == nil {
		return nil, fmt.Errorf("unsupported VOTable serialization %s", serialization(table.Data))
	}

	names := make([]string, len(table.Fields))
	for i, f := range table.Fields {
		names[i] = f.Name
		if names[i] == "" {
			names[i] = f.ID
		}
	}

	rows := make([]Row, 0, len(table.Data.TableData.Rows))
	for _, tr := range table.Data.TableData.Rows {
		row := make(Row, len(names))
		for i, cell := range tr.Cells {
			if i >= len(names) {
				break
			}
			row[names[i]] = strings.TrimSpace(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// resultsResource returns the RESOURCE typed "results", falling back to the
// first resource that holds a table. Nested resources are searched too.
func resultsResource(resources []votResource) *votResource {
	var fallback *votResource
	var walk func([]votResource) *votResource
	walk = func(rs []votResource) *votResource {
		for i := range rs {
			if rs[i].Type == "results" {
				return &rs[i]
			}
			if fallback == nil && len(rs[i].Tables) > 0 {
				fallback = &rs[i]
			}
			if found := walk(rs[i].Resources); found != nil {
				return found
			}
		}
		return nil
	}
	if found := walk(resources); found != nil {
		return found
	}
	return fallback
}

func queryStatus(infos []votInfo) error {
	for _, info := range infos {
		if info.Name == "QUERY_STATUS" && strings.EqualFold(info.Value, "ERROR") {
			return fmt.Errorf("%w: %s", ErrQueryFailed, strings.TrimSpace(info.Text))
		}
	}
	return nil
}

func serialization(d *votData) string {
	switch {
	case d.Binary != nil:
		return "BINARY"
	case d.Binary2 != nil:
		return "BINARY2"
	case d.FITS != nil:
		return "FITS"
	default:
		return "(empty DATA)"
	}
}
