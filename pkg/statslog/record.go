package statslog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// InvalidCostPerParcel is logged as cost_per_parcel for invalid results.
const InvalidCostPerParcel = "invalid"

// Record maps every schema field to a scalar value for one scenario outcome.
type Record map[Field]any

// Build derives the record for one outcome. The result always covers the
// full schema; optional counters fall back to their column default.
func Build(obj Objective, generation int, o ScenarioOutcome) Record {
	if obj == nil {
		obj = DefaultObjective{}
	}
	valid := obj.IsValid(o.Stats)
	cost := obj.Cost(o.Stats)

	rec := Record{
		FieldGeneration:  generation,
		FieldScenarioID:  o.ScenarioID(),
		FieldRandomSeed:  o.Seed,
		FieldCost:        cost,
		FieldTravelTime:  obj.TravelTime(o.Stats),
		FieldTardiness:   obj.Tardiness(o.Stats),
		FieldOverTime:    obj.OverTime(o.Stats),
		FieldIsValid:     valid,
		FieldNumOrders:   o.Stats.TotalParcels,
		FieldNumVehicles: o.Stats.TotalVehicles,
	}
	if valid {
		rec[FieldCostPerParcel] = cost / float64(o.Stats.TotalParcels)
	} else {
		rec[FieldCostPerParcel] = InvalidCostPerParcel
	}

	if a := o.Auction; a != nil {
		rec[FieldNumReauctions] = a.NumReauctions
		rec[FieldNumUnsucReauctions] = a.NumUnsuccessfulReauctions
		rec[FieldNumFailedReauctions] = a.NumFailedReauctions
	} else {
		for _, c := range schema {
			if c.Default == nil {
				continue
			}
			if _, ok := rec[c.Field]; !ok {
				rec[c.Field] = c.Default
			}
		}
	}
	return rec
}

// Validate checks that the key set equals the schema's field set.
func (r Record) Validate() error {
	for _, c := range schema {
		if _, ok := r[c.Field]; !ok {
			return fmt.Errorf("%w: %s", ErrIncompleteRecord, c.Field)
		}
	}
	for f := range r {
		if !knownField(f) {
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}
	return nil
}

// Row serializes the record in schema order, without a line terminator.
func (r Record) Row() (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	values := make([]string, len(schema))
	for i, c := range schema {
		s, err := formatValue(r[c.Field])
		if err != nil {
			return "", fmt.Errorf("%s: %w", c.Field, err)
		}
		values[i] = s
	}
	return strings.Join(values, Delimiter), nil
}

func formatValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		if strings.ContainsAny(t, Delimiter+"\r\n") {
			return "", fmt.Errorf("%w: %q", ErrDelimiterInValue, t)
		}
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int32:
		return strconv.FormatInt(int64(t), 10), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float32:
		return formatFloat(float64(t)), nil
	case float64:
		return formatFloat(t), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// formatFloat renders doubles the way the downstream analysis scripts expect:
// at least one fractional digit, scientific notation outside [1e-3, 1e7).
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	abs := math.Abs(v)
	if abs == 0 || (abs >= 1e-3 && abs < 1e7) {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	s := strconv.FormatFloat(v, 'E', -1, 64)
	mant, exp, _ := strings.Cut(s, "E")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	e, _ := strconv.Atoi(exp)
	return mant + "E" + strconv.Itoa(e)
}
