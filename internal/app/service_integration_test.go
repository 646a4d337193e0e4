package service_test

import (
	"context"
	"testing"
	"time"

	service "github.com/shuji-bonji/xcomet-mcp-server/internal/app"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service backed by the simulated engine", t, func() {
		svc := service.New(
			service.WithLatencyRange(1*time.Millisecond, 2*time.Millisecond),
			service.WithCacheSize(8),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When serving a mixed sequence of requests", func() {
			pair := model.TranslationPair{Source: "Hello world", Translation: "Bonjour le monde"}

			single, err := svc.Evaluate(ctx, pair, false)
			So(err, ShouldBeNil)

			report, err := svc.DetectErrors(ctx, pair, model.SeverityMinor, false)
			So(err, ShouldBeNil)

			batch, err := svc.BatchEvaluate(ctx, []model.TranslationPair{
				pair,
				{Source: "Good morning", Translation: "Guten Morgen"},
				{Source: "Thank you", Translation: "Danke"},
			}, 2, false)
			So(err, ShouldBeNil)

			Convey("Then every response should be internally consistent", func() {
				So(single.Score, ShouldBeBetweenOrEqual, 0, 1)
				So(single.Label, ShouldNotBeEmpty)
				So(single.Summary, ShouldNotBeEmpty)

				total := report.Counts[model.SeverityMinor] +
					report.Counts[model.SeverityMajor] +
					report.Counts[model.SeverityCritical]
				So(len(report.Errors), ShouldEqual, total)

				So(batch.TotalPairs, ShouldEqual, 3)
				So(batch.Results, ShouldHaveLength, 3)
				So(batch.AverageScore, ShouldBeBetweenOrEqual, 0, 1)
			})

			Convey("And scoring should be deterministic across calls", func() {
				again, err := svc.Evaluate(ctx, pair, false)
				So(err, ShouldBeNil)
				So(again.Score, ShouldEqual, single.Score)
			})

			Convey("And the usage counters should add up", func() {
				snap := svc.StatsSnapshot()
				So(snap.EvaluateAPICount, ShouldEqual, 1)
				So(snap.DetectErrorsAPICount, ShouldEqual, 1)
				So(snap.BatchAPICount, ShouldEqual, 1)
				So(snap.TotalPairsEvaluated, ShouldEqual, 4)
				So(snap.ModelLoaded, ShouldBeTrue)
				So(snap.AvgInferenceTimeMS, ShouldNotBeNil)
			})
		})
	})
}
