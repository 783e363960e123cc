// Package app wires the pipeline together: collect every patient page,
// classify each record, build the assessment, submit it once.
package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/internal/domain/quality"
	"github.com/okian/triage/internal/domain/scoring"
	"github.com/okian/triage/internal/report"
	"github.com/okian/triage/pkg/logger"
	"github.com/okian/triage/pkg/metrics"
)

// Collector produces the full patient collection.
type Collector interface {
	CollectAll(ctx context.Context) ([]model.PatientRecord, error)
}

// Submitter delivers the aggregate assessment.
type Submitter interface {
	Submit(ctx context.Context, a model.Assessment) error
}

// Service runs the pipeline end to end. Execution is strictly sequential;
// the only shared state is the per-run data-quality registry, touched from
// this single flow of control.
type Service struct {
	collector Collector
	submitter Submitter
	log       logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCollector sets the patient collector.
func WithCollector(c Collector) Option {
	return func(s *Service) {
		if c != nil {
			s.collector = c
		}
	}
}

// WithSubmitter sets the assessment submitter.
func WithSubmitter(sub Submitter) Option {
	return func(s *Service) {
		if sub != nil {
			s.submitter = sub
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service.
func New(opts ...Option) *Service {
	s := &Service{
		log: logger.Get().Named("app"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run executes one complete pipeline pass and returns the submitted
// assessment. Transport and rate-limit failures abort the run before
// anything is submitted; malformed fields only feed the data-quality list.
func (s *Service) Run(ctx context.Context) (model.Assessment, error) {
	runID := uuid.NewString()
	start := time.Now()
	defer func() {
		metrics.RecordRunDuration(time.Since(start).Seconds())
	}()

	s.log.Info(ctx, "pipeline run starting", logger.String("run_id", runID))

	patients, err := s.collector.CollectAll(ctx)
	if err != nil {
		s.log.Error(ctx, "collection failed", logger.String("run_id", runID), logger.Error(err))
		return model.Assessment{}, err
	}
	s.log.Info(ctx, "collection complete",
		logger.String("run_id", runID),
		logger.Int("patients", len(patients)))

	registry := quality.NewRegistry()
	classified := make([]report.Classified, 0, len(patients))
	for _, rec := range patients {
		e := scoring.Evaluate(rec)
		s.recordInvalidFields(rec.ID, e, registry)
		metrics.RecordRiskScore(e.Total())
		classified = append(classified, report.Classified{Record: rec, Evaluation: e})
	}

	assessment := report.Build(classified, registry)
	s.log.Info(ctx, "assessment built",
		logger.String("run_id", runID),
		logger.Int("high_risk", len(assessment.HighRisk)),
		logger.Int("fever", len(assessment.Fever)),
		logger.Int("data_quality", len(assessment.DataQuality)))

	if err := s.submitter.Submit(ctx, assessment); err != nil {
		s.log.Error(ctx, "submission failed", logger.String("run_id", runID), logger.Error(err))
		return assessment, err
	}

	s.log.Info(ctx, "pipeline run finished",
		logger.String("run_id", runID),
		logger.String("duration", time.Since(start).String()))
	return assessment, nil
}

// recordInvalidFields folds per-dimension validity flags into the registry.
// The registry is keyed by identifier, so repeated flags collapse.
func (s *Service) recordInvalidFields(id string, e scoring.Evaluation, registry *quality.Registry) {
	if !e.BloodPressureValid {
		registry.Add(id)
		metrics.RecordInvalidField(scoring.DimensionBloodPressure)
	}
	if !e.TemperatureValid {
		registry.Add(id)
		metrics.RecordInvalidField(scoring.DimensionTemperature)
	}
	if !e.AgeValid {
		registry.Add(id)
		metrics.RecordInvalidField(scoring.DimensionAge)
	}
}
