package eval_test

import (
	"testing"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/eval"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFilterBySeverity(t *testing.T) {
	spans := []model.ErrorSpan{
		{Text: "a", Severity: model.SeverityMinor},
		{Text: "b", Severity: model.SeverityMajor},
		{Text: "c", Severity: model.SeverityCritical},
		{Text: "d", Severity: model.SeverityMinor},
	}

	Convey("Given a mixed-severity span set", t, func() {
		Convey("When filtering at the major threshold", func() {
			filtered, counts := eval.FilterBySeverity(spans, model.SeverityMajor)

			Convey("Then minors are excluded and major/critical kept", func() {
				So(filtered, ShouldHaveLength, 2)
				So(filtered[0].Text, ShouldEqual, "b")
				So(filtered[1].Text, ShouldEqual, "c")
			})

			Convey("And the breakdown reflects the unfiltered original set", func() {
				So(counts[model.SeverityMinor], ShouldEqual, 2)
				So(counts[model.SeverityMajor], ShouldEqual, 1)
				So(counts[model.SeverityCritical], ShouldEqual, 1)
			})
		})

		Convey("When filtering at the minor threshold", func() {
			filtered, _ := eval.FilterBySeverity(spans, model.SeverityMinor)

			Convey("Then every span survives", func() {
				So(filtered, ShouldHaveLength, 4)
			})
		})

		Convey("When filtering at the critical threshold", func() {
			filtered, counts := eval.FilterBySeverity(spans, model.SeverityCritical)

			Convey("Then only critical spans survive but counts are unchanged", func() {
				So(filtered, ShouldHaveLength, 1)
				So(counts[model.SeverityMinor], ShouldEqual, 2)
			})
		})
	})

	Convey("Given spans with an unrecognized severity", t, func() {
		odd := []model.ErrorSpan{
			{Text: "x", Severity: "weird"},
			{Text: "y", Severity: model.SeverityCritical},
		}

		Convey("When filtering at major", func() {
			filtered, counts := eval.FilterBySeverity(odd, model.SeverityMajor)

			Convey("Then the unknown severity is treated as minor", func() {
				So(filtered, ShouldHaveLength, 1)
				So(filtered[0].Text, ShouldEqual, "y")
				So(counts[model.SeverityMinor], ShouldEqual, 1)
				So(counts[model.SeverityCritical], ShouldEqual, 1)
			})
		})

		Convey("When the threshold itself is unrecognized", func() {
			filtered, _ := eval.FilterBySeverity(odd, "bogus")

			Convey("Then it behaves like the minor threshold", func() {
				So(filtered, ShouldHaveLength, 2)
			})
		})
	})

	Convey("Given no spans at all", t, func() {
		filtered, counts := eval.FilterBySeverity(nil, model.SeverityMinor)

		Convey("Then the filter returns an empty list and zeroed buckets", func() {
			So(filtered, ShouldNotBeNil)
			So(filtered, ShouldBeEmpty)
			So(counts[model.SeverityMinor], ShouldEqual, 0)
			So(counts[model.SeverityMajor], ShouldEqual, 0)
			So(counts[model.SeverityCritical], ShouldEqual, 0)
		})
	})
}
