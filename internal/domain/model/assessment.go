package model

// Assessment is the aggregate report submitted once per run. List order
// follows the patient collection's traversal order; the data-quality list is
// deduplicated at its source.
type Assessment struct {
	HighRisk    []string `json:"high_risk_patients"`
	Fever       []string `json:"fever_patients"`
	DataQuality []string `json:"data_quality_issues"`
}
