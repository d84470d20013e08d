// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adql

import "fmt"

// ObscoreBase selects from the IVOA ObsCore table. The trailing space
// separates it from the WHERE clause.
const ObscoreBase = "SELECT TOP 100 * FROM ivoa.obscore "

// obscoreColumns is the declared filter order of an ObscoreQuery.
var obscoreColumns = [...]string{
	"dataproduct_type",
	"obs_collection",
	"facility_name",
	"instrument_name",
	"em_min",
	"em_max",
	"target_name",
	"obs_publisher_id",
	"s_fov",
	"calibration_level",
}

// OrderByColumn maps an order_by selector to its ObsCore column. The
// second result is false for selectors outside the closed set.
func OrderByColumn(selector string) (string, bool) {
	switch selector {
	case "size":
		return "access_estsize", true
	case "collection":
		return "obs_collection", true
	case "object":
		return "target_name", true
	default:
		return "", false
	}
}

// ObscoreFields holds the ten ObsCore filters. Empty fields are omitted.
type ObscoreFields struct {
	DataproductType  string
	ObsCollection    string
	FacilityName     string
	InstrumentName   string
	EmMin            string
	EmMax            string
	TargetName       string
	ObsPublisherID   string
	SFov             string
	CalibrationLevel string
}

// ObscoreQuery filters ivoa.obscore by equality on fixed columns.
type ObscoreQuery struct {
	fields  ObscoreFields
	orderBy string
}

// NewObscoreQuery returns a query over fields ordered by the orderBy
// selector. A calibration level or selector of "none" is treated as Omit.
// The selector is validated by Build, not here.
func NewObscoreQuery(fields ObscoreFields, orderBy string) ObscoreQuery {
	if fields.CalibrationLevel == none {
		fields.CalibrationLevel = Omit
	}
	if orderBy == none {
		orderBy = Omit
	}
	return ObscoreQuery{fields: fields, orderBy: orderBy}
}

// Parameters returns the filters in declared column order, including
// omitted ones.
func (q ObscoreQuery) Parameters() []Parameter {
	f := q.fields
	values := [len(obscoreColumns)]string{
		f.DataproductType,
		f.ObsCollection,
		f.FacilityName,
		f.InstrumentName,
		f.EmMin,
		f.EmMax,
		f.TargetName,
		f.ObsPublisherID,
		f.SFov,
		f.CalibrationLevel,
	}
	params := make([]Parameter, len(obscoreColumns))
	for i, col := range obscoreColumns {
		params[i] = Parameter{Key: col, Value: values[i]}
	}
	return params
}

// Build renders the query. An order_by selector outside the known set
// fails with ErrUnknownOrderBy.
func (q ObscoreQuery) Build() (string, error) {
	orderBy := Omit
	if q.orderBy != Omit {
		col, ok := OrderByColumn(q.orderBy)
		if !ok {
			return "", fmt.Errorf("%w: %q (want size, collection, object or none)", ErrUnknownOrderBy, q.orderBy)
		}
		orderBy = col
	}
	return ObscoreBase + WhereClause(q.Parameters()) + OrderByClause(orderBy), nil
}

// DefaultQuery is the unfiltered ObsCore query.
type DefaultQuery struct{}

// Build returns ObscoreBase.
func (DefaultQuery) Build() (string, error) { return ObscoreBase, nil }
