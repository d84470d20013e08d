// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tap

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/tapfetch/pkg/types"
)

// VOSI tableset structures (IVOA VODataService).
type vosiTableset struct {
	XMLName xml.Name     `xml:"tableset"`
	Schemas []vosiSchema `xml:"schema"`
	Tables  []vosiTable  `xml:"table"`
}

type vosiSchema struct {
	Name   string      `xml:"name"`
	Tables []vosiTable `xml:"table"`
}

type vosiTable struct {
	Type    string       `xml:"type,attr"`
	Name    string       `xml:"name"`
	Columns []vosiColumn `xml:"column"`
}

type vosiColumn struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Unit        string `xml:"unit"`
	DataType    string `xml:"dataType"`
}

// decodeTableset parses a VOSI tables document. Schemas are flattened and
// the declared order of tables and columns is kept.
func decodeTableset(r io.Reader) ([]types.TableSchema, error) {
	var ts vosiTableset
	if err := newDecoder(r).Decode(&ts); err != nil {
		return nil, fmt.Errorf("parsing VOSI tableset: %w", err)
	}

	var tables []types.TableSchema
	for _, s := range ts.Schemas {
		for _, t := range s.Tables {
			tables = append(tables, toTableSchema(t))
		}
	}
	// Some services list tables directly under the tableset.
	for _, t := range ts.Tables {
		tables = append(tables, toTableSchema(t))
	}
	return tables, nil
}

func toTableSchema(t vosiTable) types.TableSchema {
	ts := types.TableSchema{
		Name:   strings.TrimSpace(t.Name),
		Type:   t.Type,
		Fields: make([]types.FieldSchema, 0, len(t.Columns)),
	}
	for _, c := range t.Columns {
		ts.Fields = append(ts.Fields, types.FieldSchema{
			Name:        strings.TrimSpace(c.Name),
			Description: strings.TrimSpace(c.Description),
			Unit:        strings.TrimSpace(c.Unit),
			Datatype:    strings.TrimSpace(c.DataType),
		})
	}
	return ts
}
