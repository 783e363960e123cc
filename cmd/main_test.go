package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/okian/triage/internal/adapters/remote"
	"github.com/okian/triage/internal/app"
	"github.com/okian/triage/internal/config"
	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func TestPipelineWiring(t *testing.T) {
	convey.Convey("Given the assembled pipeline", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("TRIAGE_BASE_URL", "https://svc.example.com/api")
			_ = os.Setenv("TRIAGE_API_KEY", "k")
			_ = os.Setenv("TRIAGE_PAGE_LIMIT", "10")
			defer func() {
				_ = os.Unsetenv("TRIAGE_BASE_URL")
				_ = os.Unsetenv("TRIAGE_API_KEY")
				_ = os.Unsetenv("TRIAGE_PAGE_LIMIT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.BaseURL, convey.ShouldEqual, "https://svc.example.com/api")
				convey.So(cfg.APIKey, convey.ShouldEqual, "k")
				convey.So(cfg.PageLimit, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When running against a fake patient service", func() {
			var submitted model.Assessment
			mux := http.NewServeMux()
			mux.HandleFunc("/patients", func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Query().Get("page") {
				case "1":
					_, _ = w.Write([]byte(`{
						"data": [
							{"patient_id": "P1", "blood_pressure": "150/95", "temperature": 99.0, "age": 70},
							{"patient_id": "P2", "blood_pressure": "INVALID_BP_FORMAT", "temperature": 102, "age": "30"}
						],
						"pagination": {"page": 1, "hasNext": true}
					}`))
				default:
					_, _ = w.Write([]byte(`{
						"patients": [{"patient_id": "P3", "blood_pressure": "118/76", "temperature": 98.2, "age": 25}],
						"current_page": 2
					}`))
				}
			})
			mux.HandleFunc("/submit-assessment", func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(body, &submitted)
				_, _ = w.Write([]byte(`{"status": "received"}`))
			})
			srv := httptest.NewServer(mux)
			defer srv.Close()

			client := remote.NewClient(srv.URL, "k")
			svc := app.New(
				app.WithCollector(remote.NewCollector(client, remote.WithMaxPages(5))),
				app.WithSubmitter(remote.NewSubmitter(client)),
			)

			assessment, err := svc.Run(context.Background())

			convey.Convey("Then the submitted assessment should match the rubric", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(assessment.HighRisk, convey.ShouldResemble, []string{"P1"})
				convey.So(assessment.Fever, convey.ShouldResemble, []string{"P2"})
				convey.So(assessment.DataQuality, convey.ShouldResemble, []string{"P2"})
				convey.So(submitted, convey.ShouldResemble, assessment)
			})
		})
	})
}
