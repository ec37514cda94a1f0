package ranking_test

import (
	"testing"
	"time"

	model "github.com/okian/tally/internal/domain/model"
	ranking "github.com/okian/tally/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func participant(id, name string, points int) model.Participant {
	return model.Participant{
		ID:          id,
		Name:        name,
		TotalPoints: points,
		CreatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRank(t *testing.T) {
	Convey("Given an empty participant set", t, func() {
		Convey("Then ranking yields an empty leaderboard", func() {
			So(ranking.Rank(nil), ShouldBeEmpty)
			So(ranking.Rank([]model.Participant{}), ShouldBeEmpty)
		})
	})

	Convey("Given participants with distinct scores", t, func() {
		in := []model.Participant{
			participant("a", "Alice", 3),
			participant("b", "Bob", 9),
			participant("c", "Carol", 5),
		}

		entries := ranking.Rank(in)

		Convey("Then they are ordered by score descending", func() {
			So(len(entries), ShouldEqual, 3)
			So(entries[0].Name, ShouldEqual, "Bob")
			So(entries[1].Name, ShouldEqual, "Carol")
			So(entries[2].Name, ShouldEqual, "Alice")
		})

		Convey("And ranks form the dense sequence 1..N", func() {
			for i, e := range entries {
				So(e.Rank, ShouldEqual, i+1)
			}
		})

		Convey("And the input slice is left untouched", func() {
			So(in[0].Name, ShouldEqual, "Alice")
			So(in[2].Name, ShouldEqual, "Carol")
		})
	})

	Convey("Given participants with tied scores", t, func() {
		in := []model.Participant{
			participant("a", "Alice", 0),
			participant("b", "Bob", 0),
			participant("c", "Carol", 0),
		}

		entries := ranking.Rank(in)

		Convey("Then ties keep creation order and get consecutive ranks", func() {
			So(entries[0].Name, ShouldEqual, "Alice")
			So(entries[0].Rank, ShouldEqual, 1)
			So(entries[1].Name, ShouldEqual, "Bob")
			So(entries[1].Rank, ShouldEqual, 2)
			So(entries[2].Name, ShouldEqual, "Carol")
			So(entries[2].Rank, ShouldEqual, 3)
		})

		Convey("And ranking twice yields identical output", func() {
			again := ranking.Rank(in)
			So(again, ShouldResemble, entries)
		})
	})

	Convey("Given the Alice/Bob scenario", t, func() {
		alice := participant("a", "Alice", 0)
		bob := participant("b", "Bob", 0)

		entries := ranking.Rank([]model.Participant{alice, bob})
		So(entries[0].Name, ShouldEqual, "Alice")
		So(entries[0].Rank, ShouldEqual, 1)
		So(entries[1].Name, ShouldEqual, "Bob")
		So(entries[1].Rank, ShouldEqual, 2)

		Convey("When Alice is awarded points", func() {
			alice.TotalPoints = 7
			entries = ranking.Rank([]model.Participant{alice, bob})

			Convey("Then Alice keeps rank 1 and Bob stays at rank 2", func() {
				So(entries[0].Name, ShouldEqual, "Alice")
				So(entries[0].TotalPoints, ShouldEqual, 7)
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].Name, ShouldEqual, "Bob")
				So(entries[1].Rank, ShouldEqual, 2)
			})
		})
	})
}
