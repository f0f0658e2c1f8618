package statslog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeader_FixedOrder(t *testing.T) {
	want := "generation,cost_per_parcel,cost,travel_time,tardiness,over_time,is_valid," +
		"scenario_id,random_seed,num_vehicles,num_orders,num_reauctions," +
		"num_unsuc_reauctions,num_failed_reauctions"
	assert.Equal(t, want, Header())
}

func TestFields_ReturnsCopy(t *testing.T) {
	fields := Fields()
	fields[0] = "mutated"
	assert.Equal(t, FieldGeneration, Fields()[0], "schema must not change through the returned slice")

	cols := Columns()
	cols[11].Default = 99
	assert.Equal(t, NoAuction, Columns()[11].Default)
}

func TestFields_Unique(t *testing.T) {
	seen := make(map[Field]bool)
	for _, f := range Fields() {
		assert.False(t, seen[f], "duplicate field %s", f)
		seen[f] = true
	}
	assert.Len(t, seen, 14)
}
