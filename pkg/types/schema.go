// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for tapfetch.
// It holds the archive table schema exposed by TAP services and the
// configuration structs shared by the CLI and the pipeline.
package types

// FieldSchema describes one column of an archive table as exposed by the
// service's schema introspection.
type FieldSchema struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Unit        string `json:"unit,omitempty" yaml:"unit,omitempty"`

	// Datatype is the text content of the column's dataType element
	// (e.g. "char", "double").
	Datatype string `json:"datatype" yaml:"datatype"`
}

// TableSchema describes a queryable archive table. Fields keep the order
// in which the service enumerates its columns.
type TableSchema struct {
	Name   string        `json:"name" yaml:"name"`
	Type   string        `json:"type,omitempty" yaml:"type,omitempty"`
	Fields []FieldSchema `json:"fields" yaml:"fields"`
}
