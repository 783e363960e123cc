package remote

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/pkg/logger"
	"github.com/okian/triage/pkg/metrics"
)

// Default collection knobs.
const (
	defaultPageLimit = 20
	defaultMaxPages  = 1000

	patientsPath = "/patients"
)

// Collector walks the paginated patient feed sequentially, normalizing the
// two envelope shapes the service emits, and terminates on the shape's own
// completion signal:
//
//   - modern: pagination.hasNext is false
//   - legacy: a page yields zero new records, or current_page repeats
//   - degenerate (no record array at all): treated as an empty page
//
// A hard page guard bounds a feed that never signals completion.
type Collector struct {
	client    *Client
	pageLimit int
	maxPages  int
	log       logger.Logger
}

// NewCollector creates a Collector over client.
func NewCollector(client *Client, opts ...CollectorOption) *Collector {
	c := &Collector{
		client:    client,
		pageLimit: defaultPageLimit,
		maxPages:  defaultMaxPages,
		log:       logger.Get().Named("collector"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CollectAll fetches every page and returns the records in arrival order.
// Duplicate records are kept; deduplication belongs to the data-quality
// list only. Any client error aborts the collection with no partial result.
func (c *Collector) CollectAll(ctx context.Context) ([]model.PatientRecord, error) {
	var out []model.PatientRecord
	lastLegacyPage := 0

	for page := 1; page <= c.maxPages; page++ {
		var env pageEnvelope
		query := url.Values{
			"limit": {strconv.Itoa(c.pageLimit)},
			"page":  {strconv.Itoa(page)},
		}
		if err := c.client.GetJSON(ctx, patientsPath, query, &env); err != nil {
			return nil, fmt.Errorf("collect page %d: %w", page, err)
		}

		recs, skipped := env.records()
		if skipped > 0 {
			c.log.Warn(ctx, "skipped undecodable records",
				logger.Int("page", page),
				logger.Int("skipped", skipped))
		}
		out = append(out, recs...)

		metrics.RecordPageFetched()
		metrics.AddPatientsCollected(len(recs))
		c.log.Info(ctx, "page collected",
			logger.Int("page", page),
			logger.Int("records", len(recs)),
			logger.Int("total", len(out)))

		switch env.shape() {
		case shapeModern:
			if !env.Pagination.HasNext {
				return out, nil
			}

		case shapeLegacy:
			if len(recs) == 0 {
				return out, nil
			}
			if *env.CurrentPage == lastLegacyPage {
				c.log.Warn(ctx, "feed echoed the same page twice, stopping",
					logger.Int("page", *env.CurrentPage))
				return out, nil
			}
			lastLegacyPage = *env.CurrentPage

		case shapeDegenerate:
			// No records and no completion metadata: an empty page.
			return out, nil
		}
	}

	return nil, fmt.Errorf("%w: %d", ErrTooManyPages, c.maxPages)
}
