// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"strconv"
)

// PatientRecord is one patient as delivered by the upstream service. The
// scoring inputs are kept loosely typed because the feed emits absent, null,
// empty, numeric, string, and garbage variants for each of them; decoding
// never fails on a malformed field.
type PatientRecord struct {
	// ID is the patient identifier, normalized to its textual form. The
	// upstream emits it as a string or a number under patient_id (older
	// payloads use id).
	ID string

	// Scoring inputs, validated by the scoring package.
	BloodPressure interface{} // expected "systolic/diastolic" string
	Temperature   interface{} // expected number, degrees Fahrenheit
	Age           interface{} // expected number or numeric string

	// Passthrough fields, decoded but never validated. They share the
	// tolerance contract of the scoring inputs: a malformed value must
	// never cost us the record, so non-string variants collapse to their
	// zero value instead of failing the decode.
	Name        string
	Gender      string
	VisitDate   string
	Diagnosis   string
	Medications interface{} // string or array upstream, kept raw
}

type patientEnvelope struct {
	PatientID     interface{} `json:"patient_id"`
	AltID         interface{} `json:"id"`
	BloodPressure interface{} `json:"blood_pressure"`
	Temperature   interface{} `json:"temperature"`
	Age           interface{} `json:"age"`
	Name          interface{} `json:"name"`
	Gender        interface{} `json:"gender"`
	VisitDate     interface{} `json:"visit_date"`
	Diagnosis     interface{} `json:"diagnosis"`
	Medications   interface{} `json:"medications"`
}

// UnmarshalJSON decodes a patient object, tolerating any field shape.
func (p *PatientRecord) UnmarshalJSON(data []byte) error {
	var env patientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	id := env.PatientID
	if id == nil {
		id = env.AltID
	}

	*p = PatientRecord{
		ID:            NormalizeID(id),
		BloodPressure: env.BloodPressure,
		Temperature:   env.Temperature,
		Age:           env.Age,
		Name:          asString(env.Name),
		Gender:        asString(env.Gender),
		VisitDate:     asString(env.VisitDate),
		Diagnosis:     asString(env.Diagnosis),
		Medications:   env.Medications,
	}
	return nil
}

// asString keeps string passthrough values and collapses everything else to
// empty, so a malformed non-scoring field never fails the decode.
func asString(raw interface{}) string {
	s, _ := raw.(string)
	return s
}

// NormalizeID renders an opaque string-or-number identifier as text. Numeric
// identifiers keep their shortest exact representation, so 42 and "42" map to
// the same key.
func NormalizeID(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
