package results_test

import (
	"errors"
	"testing"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/results"
	"github.com/okian/podium/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestReconcile(t *testing.T) {
	Convey("Given automatic results for T1 at 1 and T2 at 2", t, func() {
		table := scoring.NewTable(25)
		auto := baseSet(table)[:2]
		rec := results.NewReconciler(table)

		Convey("When a manual row reuses placement 1", func() {
			out := rec.Reconcile(auto, []model.ManualResult{{TeamID: "T9", TeamName: "Nine", Placement: 1, Kills: 2}})

			Convey("Then it is rejected as placement taken", func() {
				So(len(out.Results), ShouldEqual, 2)
				So(out.Rejected[0].Reason, ShouldEqual, results.ReasonPlacementTaken)
			})
		})

		Convey("When a manual row names a team already present", func() {
			out := rec.Reconcile(auto, []model.ManualResult{{TeamID: "T1", Placement: 7, Kills: 0}})
			So(out.Rejected[0].Reason, ShouldEqual, results.ReasonTeamTaken)
		})

		Convey("When manual rows collide with each other", func() {
			out := rec.Reconcile(auto, []model.ManualResult{
				{TeamID: "T4", TeamName: "Four", Placement: 4, Kills: 1},
				{TeamID: "T5", TeamName: "Five", Placement: 4, Kills: 1},
				{TeamID: "T4", TeamName: "Four", Placement: 6, Kills: 1},
				{TeamID: "T6", TeamName: "Six", Placement: 3, Kills: 2},
				{TeamID: "T7", TeamName: "Seven", Placement: 99, Kills: 2},
			})

			Convey("Then only the first claimant of each placement and team is kept", func() {
				So(len(out.Results), ShouldEqual, 4)
				So(len(out.Rejected), ShouldEqual, 3)
				So(out.Rejected[2].Reason, ShouldEqual, results.ReasonOutOfRange)
			})

			Convey("Then no placement or team repeats and rows are sorted", func() {
				placements := map[int]bool{}
				teams := map[string]bool{}
				for i, r := range out.Results {
					So(placements[r.Placement], ShouldBeFalse)
					So(teams[r.TeamID], ShouldBeFalse)
					placements[r.Placement] = true
					teams[r.TeamID] = true
					if i > 0 {
						So(r.Placement, ShouldBeGreaterThan, out.Results[i-1].Placement)
					}
				}
			})

			Convey("Then manual rows carry full confidence", func() {
				So(out.Results[2].TeamID, ShouldEqual, "T6")
				So(out.Results[2].Source, ShouldEqual, model.SourceManual)
				So(out.Results[2].Confidence, ShouldEqual, 1.0)
			})
		})

		Convey("When nothing is entered manually", func() {
			out := rec.Reconcile(auto, nil)
			So(len(out.Results), ShouldEqual, 2)
			So(out.Rejected, ShouldBeEmpty)
		})

		Convey("Then automatic rows are never mutated", func() {
			before := append([]model.ScoredResult(nil), auto...)
			rec.Reconcile(auto, []model.ManualResult{{TeamID: "T0", Placement: 3}})
			So(auto, ShouldResemble, before)
		})
	})
}

func TestManualEntryScenario(t *testing.T) {
	Convey("Given automatic results with T1 first", t, func() {
		table := scoring.NewTable(25)
		auto := baseSet(table)[:1]
		rec := results.NewReconciler(table)

		Convey("When the operator adds T1 at placement 1 again", func() {
			err := rec.Check(auto, model.ManualResult{TeamID: "T1", TeamName: "Team T1", Placement: 1, Kills: 8})

			Convey("Then it is a validation error", func() {
				So(errors.Is(err, results.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When the operator adds another team at free placement 2", func() {
			m := model.ManualResult{TeamID: "T2", TeamName: "Team T2", Placement: 2, Kills: 3}
			So(rec.Check(auto, m), ShouldBeNil)
			out := rec.Reconcile(auto, []model.ManualResult{m})

			Convey("Then it is merged", func() {
				So(len(out.Results), ShouldEqual, 2)
				So(out.Results[1].TeamID, ShouldEqual, "T2")
				So(out.Results[1].TotalPoints, ShouldEqual, 23)
			})
		})
	})
}

func TestTeamCollision(t *testing.T) {
	Convey("Given a set where one team holds two placements", t, func() {
		set := []model.ScoredResult{
			{TeamID: "T1", TeamName: "One", Placement: 1},
			{TeamID: "T2", TeamName: "Two", Placement: 2},
			{TeamID: "T1", TeamName: "One", Placement: 3},
		}
		err := results.TeamCollision(set)

		var conflict *results.ConflictError
		So(errors.As(err, &conflict), ShouldBeTrue)
		So(conflict.Reason, ShouldEqual, results.ReasonTeamTaken)
		So(conflict.Placement, ShouldEqual, 1)
		So(results.TeamCollision(set[:2]), ShouldBeNil)
	})
}
