package results_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/podium/internal/domain/correlate"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/results"
	"github.com/okian/podium/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func baseSet(table *scoring.Table) []model.ScoredResult {
	return results.NewScorer(table).Score([]correlate.Match{
		match("T1", 1, 8, 0.95),
		match("T2", 2, 3, 0.8),
		match("T3", 3, 1, 0.7),
	})
}

func TestEditorConflict(t *testing.T) {
	Convey("Given a scored set", t, func() {
		table := scoring.NewTable(25)
		set := baseSet(table)
		snapshot := append([]model.ScoredResult(nil), set...)
		ed := results.NewEditor(table)

		Convey("When a row is moved onto a placement held by another row", func() {
			out, err := ed.Edit(set, 2, 1, 5)

			Convey("Then a conflict naming the holder is returned", func() {
				var conflict *results.ConflictError
				So(errors.As(err, &conflict), ShouldBeTrue)
				So(conflict.TeamID, ShouldEqual, "T1")
				So(conflict.Placement, ShouldEqual, 1)
				So(errors.Is(err, results.ErrConflict), ShouldBeTrue)
				So(errors.Is(err, results.ErrValidation), ShouldBeTrue)
			})

			Convey("Then the set is unchanged", func() {
				So(cmp.Diff(snapshot, set), ShouldBeEmpty)
				So(cmp.Diff(snapshot, out), ShouldBeEmpty)
			})
		})

		Convey("When the placement is out of range", func() {
			_, err := ed.Edit(set, 0, 26, 1)
			So(errors.Is(err, results.ErrValidation), ShouldBeTrue)
			So(errors.Is(err, results.ErrConflict), ShouldBeFalse)
			So(cmp.Diff(snapshot, set), ShouldBeEmpty)
		})

		Convey("When kills are negative", func() {
			_, err := ed.Edit(set, 0, 1, -1)
			var verr *results.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Field, ShouldEqual, "kills")
		})

		Convey("When the index does not exist", func() {
			_, err := ed.Edit(set, 3, 4, 1)
			So(errors.Is(err, results.ErrIndexOutOfRange), ShouldBeTrue)
		})
	})
}

func TestEditorSuccess(t *testing.T) {
	Convey("Given a scored set", t, func() {
		table := scoring.NewTable(25)
		set := baseSet(table)
		snapshot := append([]model.ScoredResult(nil), set...)
		ed := results.NewEditor(table)

		Convey("When the first row moves to a free placement", func() {
			out, err := ed.Edit(set, 0, 5, 10)
			So(err, ShouldBeNil)

			Convey("Then the row is rescored, flagged and re-sorted", func() {
				So(out[2].TeamID, ShouldEqual, "T1")
				So(out[2].Placement, ShouldEqual, 5)
				So(out[2].PlacementPoints, ShouldEqual, 14)
				So(out[2].KillPoints, ShouldEqual, 10)
				So(out[2].TotalPoints, ShouldEqual, 24)
				So(out[2].IsEdited, ShouldBeTrue)
				So(out[0].TeamID, ShouldEqual, "T2")
			})

			Convey("Then the caller's slice is untouched", func() {
				So(cmp.Diff(snapshot, set), ShouldBeEmpty)
			})
		})

		Convey("When a row keeps its own placement", func() {
			out, err := ed.Edit(set, 1, 2, 9)
			So(err, ShouldBeNil)
			So(out[1].Kills, ShouldEqual, 9)
			So(out[1].TotalPoints, ShouldEqual, 29)
		})
	})
}
