// Package report partitions classified patients into the three assessment
// lists.
package report

import (
	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/internal/domain/quality"
	"github.com/okian/triage/internal/domain/scoring"
	"github.com/okian/triage/pkg/metrics"
)

// List names used for metrics and logging.
const (
	ListHighRisk    = "high_risk"
	ListFever       = "fever"
	ListDataQuality = "data_quality"
)

// Classified pairs a collected record with its evaluation.
type Classified struct {
	Record     model.PatientRecord
	Evaluation scoring.Evaluation
}

// Build partitions the classified set, in traversal order, into the three
// assessment lists. The data-quality list comes straight from the registry,
// which is insertion-ordered and deduplicated at its source. Empty lists are
// non-nil so they serialize as [] rather than null.
func Build(classified []Classified, registry *quality.Registry) model.Assessment {
	a := model.Assessment{
		HighRisk:    make([]string, 0, len(classified)),
		Fever:       make([]string, 0, len(classified)),
		DataQuality: registry.IDs(),
	}

	for _, c := range classified {
		if c.Evaluation.HighRisk() {
			a.HighRisk = append(a.HighRisk, c.Record.ID)
		}
		if c.Evaluation.Fever() {
			a.Fever = append(a.Fever, c.Record.ID)
		}
	}

	metrics.UpdateReportListSize(ListHighRisk, len(a.HighRisk))
	metrics.UpdateReportListSize(ListFever, len(a.Fever))
	metrics.UpdateReportListSize(ListDataQuality, len(a.DataQuality))

	return a
}
