// Package scoring implements the deterministic patient risk rubric.
//
// Each dimension scorer is a pure function from a raw field value to a point
// value plus a validity flag. Invalid inputs always score zero; the caller
// decides what to do with the flag (typically folding it into the
// data-quality registry).
package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/okian/triage/internal/domain/model"
)

// Point bounds per dimension.
const (
	maxBloodPressurePoints = 3
	maxTemperaturePoints   = 2
	maxAgePoints           = 2

	// MaxTotal is the highest possible total risk score.
	MaxTotal = maxBloodPressurePoints + maxTemperaturePoints + maxAgePoints

	// HighRiskThreshold is the total at or above which a patient is
	// considered high risk.
	HighRiskThreshold = 4
)

// Upstream placeholder strings that mark an unusable blood pressure reading.
const (
	bpInvalidMarker = "INVALID_BP_FORMAT"
	bpNotAvailable  = "N/A"
)

// Dimension names used for reporting malformed inputs.
const (
	DimensionBloodPressure = "blood_pressure"
	DimensionTemperature   = "temperature"
	DimensionAge           = "age"
)

// Evaluation holds the three sub-scores and validity flags for one patient.
type Evaluation struct {
	BloodPressure int
	Temperature   int
	Age           int

	BloodPressureValid bool
	TemperatureValid   bool
	AgeValid           bool
}

// Total returns the aggregate risk score, 0 through MaxTotal.
func (e Evaluation) Total() int {
	return e.BloodPressure + e.Temperature + e.Age
}

// HighRisk reports whether the total score crosses the high-risk threshold.
func (e Evaluation) HighRisk() bool {
	return e.Total() >= HighRiskThreshold
}

// Fever reports whether the temperature sub-score indicates a fever,
// i.e. a reported temperature of at least 99.6°F.
func (e Evaluation) Fever() bool {
	return e.Temperature >= 1
}

// HasInvalidField reports whether any dimension received a malformed input.
func (e Evaluation) HasInvalidField() bool {
	return !e.BloodPressureValid || !e.TemperatureValid || !e.AgeValid
}

// Evaluate scores one record across all three dimensions.
func Evaluate(rec model.PatientRecord) Evaluation {
	var e Evaluation
	e.BloodPressure, e.BloodPressureValid = BloodPressure(rec.BloodPressure)
	e.Temperature, e.TemperatureValid = Temperature(rec.Temperature)
	e.Age, e.AgeValid = Age(rec.Age)
	return e
}

// BloodPressure scores a raw blood pressure reading. The input must be a
// "systolic/diastolic" string with both sides numeric and non-zero; anything
// else scores zero and is flagged invalid.
//
// Bands are checked highest first so that a reading matching several
// descriptions always lands in the most severe one.
func BloodPressure(raw interface{}) (int, bool) {
	s, ok := raw.(string)
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if s == "" || s == bpInvalidMarker || s == bpNotAvailable {
		return 0, false
	}

	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0, false
	}

	systolic, ok := parseNumber(parts[0])
	if !ok || systolic == 0 {
		return 0, false
	}
	diastolic, ok := parseNumber(parts[1])
	if !ok || diastolic == 0 {
		return 0, false
	}

	switch {
	case systolic >= 140 || diastolic >= 90:
		return 3, true
	case systolic >= 130 || diastolic >= 80:
		return 2, true
	case systolic >= 120 && diastolic < 80:
		return 1, true
	default:
		return 0, true
	}
}

// Temperature scores a raw temperature in °F. Numbers and numeric strings
// are accepted; anything else scores zero and is flagged invalid.
func Temperature(raw interface{}) (int, bool) {
	t, ok := toNumber(raw)
	if !ok || math.IsNaN(t) {
		return 0, false
	}

	switch {
	case t >= 101:
		return 2, true
	case t >= 99.6:
		return 1, true
	default:
		return 0, true
	}
}

// Age scores a raw age. Numbers and numeric strings are accepted; absent,
// null, empty, or non-numeric values score zero and are flagged invalid.
func Age(raw interface{}) (int, bool) {
	if raw == nil {
		return 0, false
	}
	if s, isString := raw.(string); isString && strings.TrimSpace(s) == "" {
		return 0, false
	}

	a, ok := toNumber(raw)
	if !ok || math.IsNaN(a) {
		return 0, false
	}

	switch {
	case a > 65:
		return 2, true
	case a >= 40:
		return 1, true
	default:
		return 0, true
	}
}

// toNumber coerces a raw JSON value to float64. Numeric strings are parsed;
// everything else is rejected.
func toNumber(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		return parseNumber(v)
	default:
		return 0, false
	}
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
