package eval_test

import (
	"testing"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/eval"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAggregate(t *testing.T) {
	Convey("Given three evaluation results", t, func() {
		results := []model.EvaluationResult{
			{Score: 0.95},
			{Score: 0.75, Errors: []model.ErrorSpan{{Severity: model.SeverityMajor}}},
			{Score: 0.40, Errors: []model.ErrorSpan{{Severity: model.SeverityCritical}}},
		}

		Convey("When aggregating", func() {
			batch := eval.Aggregate(results, 3)

			Convey("Then the results are index-aligned with the input", func() {
				So(batch.Results, ShouldHaveLength, 3)
				So(batch.Results[0].Index, ShouldEqual, 0)
				So(batch.Results[1].Index, ShouldEqual, 1)
				So(batch.Results[2].Index, ShouldEqual, 2)
				So(batch.TotalPairs, ShouldEqual, 3)
			})

			Convey("And the average is the arithmetic mean", func() {
				So(batch.AverageScore, ShouldAlmostEqual, (0.95+0.75+0.40)/3, 1e-12)
			})

			Convey("And good/critical counts use the documented rules", func() {
				So(batch.GoodCount, ShouldEqual, 2)
				So(batch.CriticalCount, ShouldEqual, 1)
			})

			Convey("And per-item fields mirror the results", func() {
				So(batch.Results[1].ErrorCount, ShouldEqual, 1)
				So(batch.Results[1].HasCriticalErrors, ShouldBeFalse)
				So(batch.Results[2].HasCriticalErrors, ShouldBeTrue)
			})

			Convey("And the summary embeds the figures", func() {
				So(batch.Summary, ShouldEqual, "Evaluated 3 pairs. Average score: 0.700. 2 good quality, 1 with critical errors.")
			})
		})
	})

	Convey("Given a score exactly on the good threshold", t, func() {
		batch := eval.Aggregate([]model.EvaluationResult{{Score: 0.7}}, 1)

		Convey("Then it counts as good", func() {
			So(batch.GoodCount, ShouldEqual, 1)
		})
	})

	Convey("Given no results", t, func() {
		batch := eval.Aggregate(nil, 0)

		Convey("Then the zero batch carries the fixed empty summary", func() {
			So(batch.AverageScore, ShouldEqual, 0)
			So(batch.TotalPairs, ShouldEqual, 0)
			So(batch.Results, ShouldNotBeNil)
			So(batch.Results, ShouldBeEmpty)
			So(batch.GoodCount, ShouldEqual, 0)
			So(batch.CriticalCount, ShouldEqual, 0)
			So(batch.Summary, ShouldEqual, "No pairs to evaluate.")
		})
	})
}
