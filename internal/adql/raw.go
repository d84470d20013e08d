// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adql

import "fmt"

// RawTapQuery selects rows of an arbitrary table by one equality condition.
// Table and field names are not checked against the archive schema.
type RawTapQuery struct {
	Table          string
	WhereField     string
	WhereCondition string
}

// Build renders SELECT TOP 100 * FROM <table> WHERE <field> = '<condition>'.
func (q RawTapQuery) Build() (string, error) {
	return fmt.Sprintf("SELECT TOP 100 * FROM %s WHERE %s = '%s'", q.Table, q.WhereField, q.WhereCondition), nil
}
