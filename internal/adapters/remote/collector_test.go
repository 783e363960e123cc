package remote_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/triage/internal/adapters/remote"
	. "github.com/smartystreets/goconvey/convey"
)

// pagedHandler serves canned page bodies keyed by the page query parameter.
func pagedHandler(pages map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Query().Get("page")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(body))
	}
}

func TestCollectAll(t *testing.T) {
	Convey("Given a collector against a paginated feed", t, func() {
		ctx := context.Background()

		Convey("When the feed uses the modern shape", func() {
			srv := httptest.NewServer(pagedHandler(map[string]string{
				"1": `{"data": [{"patient_id": "P1"}, {"patient_id": "P2"}], "pagination": {"page": 1, "hasNext": true}}`,
				"2": `{"data": [{"patient_id": "P3"}], "pagination": {"page": 2, "hasNext": false}}`,
			}))
			defer srv.Close()

			collector := remote.NewCollector(remote.NewClient(srv.URL, "k"))
			recs, err := collector.CollectAll(ctx)

			Convey("Then it should concatenate pages until hasNext is false", func() {
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 3)
				So(recs[0].ID, ShouldEqual, "P1")
				So(recs[1].ID, ShouldEqual, "P2")
				So(recs[2].ID, ShouldEqual, "P3")
			})
		})

		Convey("When the feed uses the legacy shape and echoes a page", func() {
			srv := httptest.NewServer(pagedHandler(map[string]string{
				"1": `{"patients": [{"patient_id": "L1"}], "current_page": 1}`,
				"2": `{"patients": [{"patient_id": "L2"}], "current_page": 2}`,
				"3": `{"patients": [{"patient_id": "L2"}], "current_page": 2}`,
			}))
			defer srv.Close()

			collector := remote.NewCollector(remote.NewClient(srv.URL, "k"))
			recs, err := collector.CollectAll(ctx)

			Convey("Then the repeated page number terminates the walk", func() {
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 3)
			})
		})

		Convey("When a legacy page comes back empty", func() {
			srv := httptest.NewServer(pagedHandler(map[string]string{
				"1": `{"patients": [{"patient_id": "L1"}], "current_page": 1}`,
				"2": `{"patients": [], "current_page": 2}`,
			}))
			defer srv.Close()

			collector := remote.NewCollector(remote.NewClient(srv.URL, "k"))
			recs, err := collector.CollectAll(ctx)

			Convey("Then zero new records terminates the walk", func() {
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 1)
				So(recs[0].ID, ShouldEqual, "L1")
			})
		})

		Convey("When a page is missing both record arrays", func() {
			srv := httptest.NewServer(pagedHandler(map[string]string{
				"1": `{"data": [{"patient_id": "P1"}], "pagination": {"page": 1, "hasNext": true}}`,
				"2": `{"note": "temporarily empty"}`,
			}))
			defer srv.Close()

			collector := remote.NewCollector(remote.NewClient(srv.URL, "k"))
			recs, err := collector.CollectAll(ctx)

			Convey("Then it is treated as an empty page, not an error", func() {
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 1)
			})
		})

		Convey("When the feed mixes shapes across pages", func() {
			srv := httptest.NewServer(pagedHandler(map[string]string{
				"1": `{"data": [{"patient_id": "P1"}], "pagination": {"page": 1, "hasNext": true}}`,
				"2": `{"patients": [{"patient_id": "L1"}], "current_page": 2}`,
				"3": `{"data": [{"patient_id": "P2"}], "pagination": {"page": 3, "hasNext": false}}`,
			}))
			defer srv.Close()

			collector := remote.NewCollector(remote.NewClient(srv.URL, "k"))
			recs, err := collector.CollectAll(ctx)

			Convey("Then each page is handled by its own shape", func() {
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 3)
			})
		})

		Convey("When the feed never signals completion", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				page := r.URL.Query().Get("page")
				_, _ = fmt.Fprintf(w, `{"data": [{"patient_id": "P%s"}], "pagination": {"hasNext": true}}`, page)
			}))
			defer srv.Close()

			collector := remote.NewCollector(
				remote.NewClient(srv.URL, "k"),
				remote.WithMaxPages(5),
			)
			recs, err := collector.CollectAll(ctx)

			Convey("Then the page guard stops the walk with an error", func() {
				So(errors.Is(err, remote.ErrTooManyPages), ShouldBeTrue)
				So(recs, ShouldBeNil)
			})
		})

		Convey("When a mid-collection fetch fails terminally", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("page") == "1" {
					_, _ = w.Write([]byte(`{"data": [{"patient_id": "P1"}], "pagination": {"hasNext": true}}`))
					return
				}
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{}`))
			}))
			defer srv.Close()

			opts := append(fastRetryOptions(), remote.WithMaxRetries(1))
			collector := remote.NewCollector(remote.NewClient(srv.URL, "k", opts...))
			recs, err := collector.CollectAll(ctx)

			Convey("Then no partial result is returned", func() {
				So(errors.Is(err, remote.ErrRateLimitExceeded), ShouldBeTrue)
				So(recs, ShouldBeNil)
			})
		})

		Convey("When the page limit option is set", func() {
			var gotLimit string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotLimit = r.URL.Query().Get("limit")
				_, _ = w.Write([]byte(`{"data": [], "pagination": {"hasNext": false}}`))
			}))
			defer srv.Close()

			collector := remote.NewCollector(
				remote.NewClient(srv.URL, "k"),
				remote.WithPageLimit(50),
			)
			_, err := collector.CollectAll(ctx)

			Convey("Then it should be passed to the service", func() {
				So(err, ShouldBeNil)
				So(gotLimit, ShouldEqual, "50")
			})
		})
	})
}
