package dedupe_test

import (
	"testing"

	dedupe "github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func row(team string, placement, kills int) model.ScoredResult {
	return model.ScoredResult{TeamID: team, Placement: placement, Kills: kills}
}

func TestDeduper(t *testing.T) {
	Convey("Given a new Deduper", t, func() {
		d := dedupe.New()

		Convey("When rows repeat a team and placement", func() {
			in := []model.ScoredResult{row("T1", 1, 8), row("T2", 2, 3), row("T1", 1, 99), row("T1", 3, 0)}
			res := d.Dedupe(in)

			Convey("Then the first occurrence is kept", func() {
				So(len(res.Unique), ShouldEqual, 3)
				So(res.Unique[0].Kills, ShouldEqual, 8)
				So(res.Removed, ShouldEqual, 1)
			})

			Convey("Then the same team at a different placement is not a duplicate", func() {
				So(res.Unique[2].Placement, ShouldEqual, 3)
			})

			Convey("Then the input is not modified", func() {
				So(len(in), ShouldEqual, 4)
				So(in[2].Kills, ShouldEqual, 99)
			})

			Convey("Then a second pass removes nothing", func() {
				again := d.Dedupe(res.Unique)
				So(again.Removed, ShouldEqual, 0)
				So(again.Unique, ShouldResemble, res.Unique)
			})
		})

		Convey("When the input is empty", func() {
			res := d.Dedupe(nil)
			So(res.Unique, ShouldBeEmpty)
			So(res.Removed, ShouldEqual, 0)
		})
	})

	Convey("Given a Deduper keyed by team only", t, func() {
		d := dedupe.New(dedupe.WithKey(func(r model.ScoredResult) string { return r.TeamID }))
		res := d.Dedupe([]model.ScoredResult{row("T1", 1, 0), row("T1", 2, 0)})
		So(res.Removed, ShouldEqual, 1)
	})

	Convey("Given a nil key function", t, func() {
		d := dedupe.New(dedupe.WithKey(nil))
		res := d.Dedupe([]model.ScoredResult{row("T1", 1, 0), row("T1", 2, 0)})
		So(res.Removed, ShouldEqual, 0)
	})
}

func TestTeamPlacementKey(t *testing.T) {
	Convey("Given a row", t, func() {
		So(dedupe.TeamPlacementKey(row("T9", 12, 0)), ShouldEqual, "T9-12")
	})
}
