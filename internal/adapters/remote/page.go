package remote

import (
	"encoding/json"

	"github.com/okian/triage/internal/domain/model"
)

// pageShape tags which envelope variant a response used. The service emits
// both non-deterministically on the same endpoint.
type pageShape int

const (
	// shapeModern: {data: [...], pagination: {hasNext, ...}}
	shapeModern pageShape = iota
	// shapeLegacy: {patients: [...], current_page: n}
	shapeLegacy
	// shapeDegenerate: neither record array nor pagination metadata.
	// Treated as an empty page rather than an error.
	shapeDegenerate
)

type pagination struct {
	Page       int  `json:"page"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
}

// pageEnvelope is the raw decoded form of one /patients response. Record
// arrays are kept as raw messages so that one undecodable element does not
// poison the page.
type pageEnvelope struct {
	Data        []json.RawMessage `json:"data"`
	Patients    []json.RawMessage `json:"patients"`
	Pagination  *pagination       `json:"pagination"`
	CurrentPage *int              `json:"current_page"`
}

// shape classifies the envelope by its completion metadata.
func (e *pageEnvelope) shape() pageShape {
	switch {
	case e.Pagination != nil:
		return shapeModern
	case e.CurrentPage != nil:
		return shapeLegacy
	default:
		return shapeDegenerate
	}
}

// records extracts the patient array, preferring data over patients, and
// returns the decoded records plus the count of elements that were skipped
// because they were not JSON objects.
func (e *pageEnvelope) records() ([]model.PatientRecord, int) {
	raw := e.Data
	if len(raw) == 0 {
		raw = e.Patients
	}
	if len(raw) == 0 {
		return nil, 0
	}

	out := make([]model.PatientRecord, 0, len(raw))
	skipped := 0
	for _, msg := range raw {
		var rec model.PatientRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			skipped++
			continue
		}
		out = append(out, rec)
	}
	return out, skipped
}
