package correlate_test

import (
	"errors"
	"testing"

	"github.com/okian/podium/internal/domain/correlate"
	"github.com/okian/podium/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func roster() []model.RegisteredTeam {
	return []model.RegisteredTeam{
		{ID: "T1", Name: "Alpha Wolves", Tag: "AW"},
		{ID: "T2", Name: "Beta", Tag: "BT"},
		{ID: "T3", Name: "AW Academy", Tag: "AWA"},
	}
}

func at(pos int, label string) model.ConsolidatedEntry {
	return model.ConsolidatedEntry{Position: pos, TeamLabel: label, Confidence: 0.9}
}

func TestCorrelateTiers(t *testing.T) {
	c := correlate.New()

	Convey("Given the default tiers", t, func() {
		Convey("When a label equals a tag exactly", func() {
			res := c.Correlate([]model.ConsolidatedEntry{at(1, "AW")}, roster())

			Convey("Then the tag owner is matched even though a name contains the label", func() {
				So(len(res.Matched), ShouldEqual, 1)
				So(res.Matched[0].Team.ID, ShouldEqual, "T1")
				So(res.Matched[0].Tier, ShouldEqual, correlate.TierExactTag)
			})
		})

		Convey("When a label matches a tag ignoring case", func() {
			res := c.Correlate([]model.ConsolidatedEntry{at(1, "bt")}, roster())
			So(res.Matched[0].Team.ID, ShouldEqual, "T2")
			So(res.Matched[0].Tier, ShouldEqual, correlate.TierTagFold)
		})

		Convey("When a label matches a name ignoring case", func() {
			res := c.Correlate([]model.ConsolidatedEntry{at(1, "alpha wolves")}, roster())
			So(res.Matched[0].Team.ID, ShouldEqual, "T1")
			So(res.Matched[0].Tier, ShouldEqual, correlate.TierNameFold)
		})

		Convey("When a label is contained in a name", func() {
			res := c.Correlate([]model.ConsolidatedEntry{at(1, "wolves")}, roster())
			So(res.Matched[0].Team.ID, ShouldEqual, "T1")
			So(res.Matched[0].Tier, ShouldEqual, correlate.TierNameSubstring)
		})

		Convey("When a label contains a name", func() {
			res := c.Correlate([]model.ConsolidatedEntry{at(1, "Team Beta Esports")}, roster())
			So(res.Matched[0].Team.ID, ShouldEqual, "T2")
			So(res.Matched[0].Tier, ShouldEqual, correlate.TierNameSubstring)
		})

		Convey("When a label has surrounding whitespace", func() {
			res := c.Correlate([]model.ConsolidatedEntry{at(1, "  AW  ")}, roster())
			So(res.Matched[0].Tier, ShouldEqual, correlate.TierExactTag)
		})

		Convey("When a label matches nothing", func() {
			res := c.Correlate([]model.ConsolidatedEntry{at(1, "Gamma")}, roster())
			So(res.Matched, ShouldBeEmpty)
			So(res.Unmatched[0].Reason, ShouldEqual, correlate.ReasonNoMatch)
		})

		Convey("When a label is blank", func() {
			res := c.Correlate([]model.ConsolidatedEntry{at(1, "   ")}, roster())
			So(res.Unmatched[0].Reason, ShouldEqual, correlate.ReasonEmptyLabel)
		})

		Convey("When the roster is empty", func() {
			res := c.Correlate([]model.ConsolidatedEntry{at(1, "AW"), at(2, "BT")}, nil)
			So(res.Matched, ShouldBeEmpty)
			So(len(res.Unmatched), ShouldEqual, 2)
			So(res.Unmatched[0].Reason, ShouldEqual, correlate.ReasonEmptyRoster)
		})
	})
}

func TestCorrelateTagPriority(t *testing.T) {
	Convey("Given a tag that is also a substring of another team's name", t, func() {
		teams := []model.RegisteredTeam{
			{ID: "X", Name: "NOVA Prime", Tag: "NP"},
			{ID: "Y", Name: "Comets", Tag: "NOVA"},
		}

		Convey("When the label equals that tag", func() {
			res := correlate.New().Correlate([]model.ConsolidatedEntry{at(3, "NOVA")}, teams)

			Convey("Then the tag owner wins over the earlier roster entry", func() {
				So(res.Matched[0].Team.ID, ShouldEqual, "Y")
				So(res.Matched[0].Entry.Position, ShouldEqual, 3)
			})
		})
	})
}

func TestCorrelateReusePolicy(t *testing.T) {
	entries := []model.ConsolidatedEntry{at(1, "AW"), at(2, "aw"), at(3, "BT")}

	Convey("Given two positions resolving to the same team", t, func() {
		Convey("When reuse is allowed", func() {
			res := correlate.New().Correlate(entries, roster())

			Convey("Then both are matched", func() {
				So(len(res.Matched), ShouldEqual, 3)
				So(res.Matched[1].Team.ID, ShouldEqual, "T1")
			})
		})

		Convey("When reuse is rejected", func() {
			res := correlate.New(correlate.WithReusePolicy(correlate.ReuseReject)).Correlate(entries, roster())

			Convey("Then the later position is unmatched", func() {
				So(len(res.Matched), ShouldEqual, 2)
				So(len(res.Unmatched), ShouldEqual, 1)
				So(res.Unmatched[0].Entry.Position, ShouldEqual, 2)
				So(res.Unmatched[0].Reason, ShouldEqual, correlate.ReasonTeamReused)
			})
		})
	})
}

func TestCustomMatchers(t *testing.T) {
	Convey("Given only the exact tag tier", t, func() {
		c := correlate.New(correlate.WithMatchers(correlate.DefaultMatchers()[0]))
		res := c.Correlate([]model.ConsolidatedEntry{at(1, "aw")}, roster())
		So(res.Matched, ShouldBeEmpty)
	})

	Convey("Given an empty matcher list", t, func() {
		c := correlate.New(correlate.WithMatchers())
		res := c.Correlate([]model.ConsolidatedEntry{at(1, "aw")}, roster())
		So(len(res.Matched), ShouldEqual, 1)
	})
}

func TestParseReusePolicy(t *testing.T) {
	Convey("Given policy names", t, func() {
		p, err := correlate.ParseReusePolicy("")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, correlate.ReuseAllow)

		p, err = correlate.ParseReusePolicy(" Reject ")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, correlate.ReuseReject)

		_, err = correlate.ParseReusePolicy("maybe")
		So(errors.Is(err, correlate.ErrUnknownPolicy), ShouldBeTrue)
	})
}
