package statslog

import "strings"

// Field names a column of best-stats.csv. The string value is the header token.
type Field string

const (
	FieldGeneration          Field = "generation"
	FieldCostPerParcel       Field = "cost_per_parcel"
	FieldCost                Field = "cost"
	FieldTravelTime          Field = "travel_time"
	FieldTardiness           Field = "tardiness"
	FieldOverTime            Field = "over_time"
	FieldIsValid             Field = "is_valid"
	FieldScenarioID          Field = "scenario_id"
	FieldRandomSeed          Field = "random_seed"
	FieldNumVehicles         Field = "num_vehicles"
	FieldNumOrders           Field = "num_orders"
	FieldNumReauctions       Field = "num_reauctions"
	FieldNumUnsucReauctions  Field = "num_unsuc_reauctions"
	FieldNumFailedReauctions Field = "num_failed_reauctions"
)

// Column describes one schema entry. Default is used when the value source
// is absent; nil means the value is mandatory.
type Column struct {
	Field   Field
	Default any
}

// NoAuction marks reauction counters for runs without an auction subsystem.
const NoAuction = -1

// schema is the column layout of every run. Changing it requires a fresh run directory.
var schema = []Column{
	{Field: FieldGeneration},
	{Field: FieldCostPerParcel},
	{Field: FieldCost},
	{Field: FieldTravelTime},
	{Field: FieldTardiness},
	{Field: FieldOverTime},
	{Field: FieldIsValid},
	{Field: FieldScenarioID},
	{Field: FieldRandomSeed},
	{Field: FieldNumVehicles},
	{Field: FieldNumOrders},
	{Field: FieldNumReauctions, Default: NoAuction},
	{Field: FieldNumUnsucReauctions, Default: NoAuction},
	{Field: FieldNumFailedReauctions, Default: NoAuction},
}

// Delimiter separates values in a row.
const Delimiter = ","

func (f Field) String() string { return string(f) }

// Columns returns a copy of the schema in column order.
func Columns() []Column {
	out := make([]Column, len(schema))
	copy(out, schema)
	return out
}

// Fields returns the ordered field list.
func Fields() []Field {
	out := make([]Field, len(schema))
	for i, c := range schema {
		out[i] = c.Field
	}
	return out
}

// Header returns the header line without a terminator.
func Header() string {
	names := make([]string, len(schema))
	for i, c := range schema {
		names[i] = c.Field.String()
	}
	return strings.Join(names, Delimiter)
}

func knownField(f Field) bool {
	for _, c := range schema {
		if c.Field == f {
			return true
		}
	}
	return false
}
