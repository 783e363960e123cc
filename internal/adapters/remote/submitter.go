package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/pkg/logger"
	"github.com/okian/triage/pkg/metrics"
)

const submitPath = "/submit-assessment"

// Submitter delivers the aggregate assessment. Submission is a single
// best-effort POST: no retries, failure surfaces to the caller.
type Submitter struct {
	client *Client
	log    logger.Logger
}

// NewSubmitter creates a Submitter over client.
func NewSubmitter(client *Client) *Submitter {
	return &Submitter{
		client: client,
		log:    logger.Get().Named("submitter"),
	}
}

// Submit posts the assessment once. The response body is logged verbatim and
// not otherwise validated.
func (s *Submitter) Submit(ctx context.Context, a model.Assessment) error {
	body, status, err := s.client.PostOnce(ctx, submitPath, a)
	if err != nil {
		metrics.RecordSubmission("error")
		return err
	}

	s.log.Info(ctx, "assessment submitted",
		logger.Int("status", status),
		logger.String("response", string(body)))

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		metrics.RecordSubmission("error")
		return fmt.Errorf("%w: status %d: %s", ErrSubmissionFailed, status, string(body))
	}

	metrics.RecordSubmission("ok")
	return nil
}
