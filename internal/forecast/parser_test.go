package forecast

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

func testWhitelist() WhitelistConfig {
	return NewWhitelist("test-v1",
		[]string{"DepotNord"},
		[]string{"Express"},
		10,
	)
}

func TestParseMinimalCover(t *testing.T) {
	Convey("Given scenario S1's two-line forecast", t, func() {
		raw := []byte("Mo 06:00-14:00 1 Fahrer\nDi 06:00-14:00 1 Fahrer\n")
		res, err := Parse(context.Background(), raw, testWhitelist())
		So(err, ShouldBeNil)

		Convey("both lines parse as PASS and produce one template each", func() {
			So(res.Status, ShouldEqual, model.ForecastReady)
			So(len(res.Templates), ShouldEqual, 2)
			for _, l := range res.Lines {
				So(l.Status, ShouldEqual, model.ParsePass)
			}
		})

		Convey("parsing is deterministic across invocations", func() {
			res2, err := Parse(context.Background(), raw, testWhitelist())
			So(err, ShouldBeNil)
			So(res2.InputHash, ShouldEqual, res.InputHash)
		})
	})
}

func TestParseSplitNotation(t *testing.T) {
	Convey("Given scenario S3's split line", t, func() {
		raw := []byte("Mo 06:00-10:00 + 15:00-19:00 1 Fahrer")
		res, err := Parse(context.Background(), raw, testWhitelist())
		So(err, ShouldBeNil)
		So(res.Status, ShouldEqual, model.ForecastReady)
		So(len(res.Templates), ShouldEqual, 1)

		tmpl := res.Templates[0]
		Convey("the template records both segments and is not flagged crossing midnight", func() {
			So(tmpl.IsSplit(), ShouldBeTrue)
			So(tmpl.CrossesMidnight, ShouldBeFalse)
		})
	})
}

func TestParseCrossMidnight(t *testing.T) {
	Convey("Given a 22:00-06:00 line", t, func() {
		raw := []byte("Mo 22:00-06:00 1 Fahrer")
		res, err := Parse(context.Background(), raw, testWhitelist())
		So(err, ShouldBeNil)
		So(res.Templates[0].CrossesMidnight, ShouldBeTrue)
	})
}

func TestParseRejectsUnknownDepot(t *testing.T) {
	Convey("Given a line with a depot token outside the whitelist", t, func() {
		raw := []byte("Mo 06:00-14:00 1 Fahrer DepotGhost")
		res, err := Parse(context.Background(), raw, testWhitelist())
		So(err, ShouldBeNil)
		So(res.Status, ShouldEqual, model.ForecastFailed)
		So(res.Lines[0].Status, ShouldEqual, model.ParseFail)
	})
}

func TestParseRejectsMalformedTime(t *testing.T) {
	cases := []string{
		"Mo 25:00-14:00 1 Fahrer", // hour out of range
		"Mo 06:00-06:00 1 Fahrer", // end == start
		"Xx 06:00-14:00 1 Fahrer", // unknown day
		"Mo 0600-1400 1 Fahrer",   // malformed time token
	}
	for _, line := range cases {
		line := line
		Convey("Given malformed line "+line, t, func() {
			res, err := Parse(context.Background(), []byte(line), testWhitelist())
			So(err, ShouldBeNil)
			So(res.Status, ShouldEqual, model.ForecastFailed)
		})
	}
}

func TestParseWarnsOnHighCountAndLongSpan(t *testing.T) {
	Convey("Given a line with count above the high-count threshold", t, func() {
		raw := []byte("Mo 06:00-14:00 11 Fahrer")
		res, _ := Parse(context.Background(), raw, testWhitelist())
		So(res.Status, ShouldEqual, model.ForecastReady)
		So(res.Lines[0].Status, ShouldEqual, model.ParseWarn)
	})

	Convey("Given a line spanning more than 12h", t, func() {
		raw := []byte("Mo 06:00-20:00 1 Fahrer")
		res, _ := Parse(context.Background(), raw, testWhitelist())
		So(res.Lines[0].Status, ShouldEqual, model.ParseWarn)
	})
}

func TestParseSkipsBlankAndCommentLines(t *testing.T) {
	Convey("Given a forecast with blanks and comments interleaved", t, func() {
		raw := []byte("# weekly forecast\n\nMo 06:00-14:00 1 Fahrer\n  \n# trailing note\n")
		res, err := Parse(context.Background(), raw, testWhitelist())
		So(err, ShouldBeNil)
		So(len(res.Lines), ShouldEqual, 1)
		So(len(res.Templates), ShouldEqual, 1)
	})
}

func TestParseIdempotentUnderLineReordering(t *testing.T) {
	Convey("Given the same two lines in different order", t, func() {
		a := []byte("Mo 06:00-14:00 1 Fahrer\nDi 06:00-14:00 1 Fahrer\n")
		b := []byte("Di 06:00-14:00 1 Fahrer\nMo 06:00-14:00 1 Fahrer\n")
		ra, err := Parse(context.Background(), a, testWhitelist())
		So(err, ShouldBeNil)
		rb, err := Parse(context.Background(), b, testWhitelist())
		So(err, ShouldBeNil)

		Convey("input_hash is identical because canonical lines are sorted before hashing", func() {
			So(ra.InputHash, ShouldEqual, rb.InputHash)
		})
	})
}
