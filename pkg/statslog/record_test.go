package statslog

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedObjective reports canned figures regardless of the payload.
type fixedObjective struct {
	valid bool
	cost  float64
}

func (f fixedObjective) IsValid(Stats) bool       { return f.valid }
func (f fixedObjective) Cost(Stats) float64       { return f.cost }
func (f fixedObjective) TravelTime(Stats) float64 { return f.cost / 2 }
func (f fixedObjective) Tardiness(Stats) float64  { return f.cost / 4 }
func (f fixedObjective) OverTime(Stats) float64   { return f.cost / 4 }

func sampleOutcome() ScenarioOutcome {
	return ScenarioOutcome{
		ProblemClass: "classA",
		InstanceID:   "inst1",
		Seed:         42,
		Stats:        Stats{TotalParcels: 4, TotalVehicles: 2},
	}
}

func keySet(r Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

func schemaKeySet() []string {
	keys := make([]string, 0)
	for _, f := range Fields() {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)
	return keys
}

func TestBuild_SchemaCompleteness(t *testing.T) {
	withAuction := sampleOutcome()
	withAuction.Auction = &AuctionStats{NumReauctions: 3, NumUnsuccessfulReauctions: 1}

	tests := []struct {
		name    string
		obj     Objective
		outcome ScenarioOutcome
	}{
		{"valid without auction", fixedObjective{valid: true, cost: 120}, sampleOutcome()},
		{"invalid without auction", fixedObjective{valid: false, cost: 120}, sampleOutcome()},
		{"valid with auction", fixedObjective{valid: true, cost: 10}, withAuction},
		{"default objective", nil, withAuction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Build(tt.obj, 0, tt.outcome)
			assert.Equal(t, schemaKeySet(), keySet(rec))
			assert.NoError(t, rec.Validate())
		})
	}
}

func TestBuild_SentinelSubstitution(t *testing.T) {
	rec := Build(fixedObjective{valid: true, cost: 1}, 0, sampleOutcome())
	assert.Equal(t, -1, rec[FieldNumReauctions])
	assert.Equal(t, -1, rec[FieldNumUnsucReauctions])
	assert.Equal(t, -1, rec[FieldNumFailedReauctions])

	o := sampleOutcome()
	o.Auction = &AuctionStats{NumReauctions: 3, NumUnsuccessfulReauctions: 1, NumFailedReauctions: 0}
	rec = Build(fixedObjective{valid: true, cost: 1}, 0, o)
	assert.Equal(t, 3, rec[FieldNumReauctions])
	assert.Equal(t, 1, rec[FieldNumUnsucReauctions])
	assert.Equal(t, 0, rec[FieldNumFailedReauctions])
}

func TestBuild_CostPerParcelGatedOnValidity(t *testing.T) {
	rec := Build(fixedObjective{valid: false, cost: 120}, 0, sampleOutcome())
	assert.Equal(t, InvalidCostPerParcel, rec[FieldCostPerParcel])

	rec = Build(fixedObjective{valid: true, cost: 120}, 0, sampleOutcome())
	assert.Equal(t, 30.0, rec[FieldCostPerParcel])

	row, err := rec.Row()
	require.NoError(t, err)
	assert.Equal(t, "0,30.0,120.0,60.0,30.0,30.0,true,classA-inst1,42,2,4,-1,-1,-1", row)
}

func TestBuild_DefaultObjective(t *testing.T) {
	o := sampleOutcome()
	o.Stats = Stats{
		TotalParcels:      4,
		TotalVehicles:     2,
		TotalPickups:      4,
		TotalDeliveries:   4,
		VehiclesAtDepot:   2,
		SimFinished:       true,
		TotalTravelTime:   100,
		PickupTardiness:   5,
		DeliveryTardiness: 10,
		OverTime:          5,
	}
	rec := Build(nil, 3, o)
	assert.Equal(t, true, rec[FieldIsValid])
	assert.Equal(t, 120.0, rec[FieldCost])
	assert.Equal(t, 15.0, rec[FieldTardiness])
	assert.Equal(t, 30.0, rec[FieldCostPerParcel])

	o.Stats.VehiclesAtDepot = 1
	rec = Build(DefaultObjective{}, 3, o)
	assert.Equal(t, false, rec[FieldIsValid])
	assert.Equal(t, InvalidCostPerParcel, rec[FieldCostPerParcel])
}

func TestRecord_ValidateFailsFast(t *testing.T) {
	rec := Build(fixedObjective{valid: true, cost: 1}, 0, sampleOutcome())
	delete(rec, FieldTardiness)
	err := rec.Validate()
	assert.ErrorIs(t, err, ErrIncompleteRecord)
	assert.Contains(t, err.Error(), "tardiness")

	_, err = rec.Row()
	assert.ErrorIs(t, err, ErrIncompleteRecord)

	rec = Build(fixedObjective{valid: true, cost: 1}, 0, sampleOutcome())
	rec["extra"] = 1
	assert.ErrorIs(t, rec.Validate(), ErrUnknownField)
}

func TestRecord_RowRejectsDelimiters(t *testing.T) {
	o := sampleOutcome()
	o.InstanceID = "inst,1"
	_, err := Build(nil, 0, o).Row()
	assert.ErrorIs(t, err, ErrDelimiterInValue)

	o.InstanceID = "inst\n1"
	_, err = Build(nil, 0, o).Row()
	assert.ErrorIs(t, err, ErrDelimiterInValue)
}

func TestRecord_RowRejectsNonScalar(t *testing.T) {
	rec := Build(nil, 0, sampleOutcome())
	rec[FieldCost] = []float64{1}
	_, err := rec.Row()
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{30, "30.0"},
		{120.5, "120.5"},
		{-2.25, "-2.25"},
		{0.001, "0.001"},
		{0.0001, "1.0E-4"},
		{1e7, "1.0E7"},
		{12345678.5, "1.23456785E7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatFloat(tt.in), "formatFloat(%v)", tt.in)
	}
}
