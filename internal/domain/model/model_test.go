package model_test

import (
	"encoding/json"
	"testing"
	"time"

	model "github.com/okian/tally/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestAwardBounds(t *testing.T) {
	convey.Convey("Given the award bounds", t, func() {
		convey.Convey("Then they span the 1-10 range", func() {
			convey.So(model.MinAward, convey.ShouldEqual, 1)
			convey.So(model.MaxAward, convey.ShouldEqual, 10)
		})
	})
}

func TestRankedEntryJSON(t *testing.T) {
	convey.Convey("Given a ranked entry", t, func() {
		created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		entry := model.RankedEntry{
			Participant: model.Participant{
				ID:          "p-1",
				Name:        "Alice",
				TotalPoints: 42,
				CreatedAt:   created,
			},
			Rank: 1,
		}

		convey.Convey("When marshalled", func() {
			raw, err := json.Marshal(entry)
			convey.So(err, convey.ShouldBeNil)

			var got map[string]any
			convey.So(json.Unmarshal(raw, &got), convey.ShouldBeNil)

			convey.Convey("Then participant fields are flattened next to rank", func() {
				convey.So(got["id"], convey.ShouldEqual, "p-1")
				convey.So(got["name"], convey.ShouldEqual, "Alice")
				convey.So(got["totalPoints"], convey.ShouldEqual, 42)
				convey.So(got["rank"], convey.ShouldEqual, 1)
			})
		})
	})
}

func TestAwardEventJSON(t *testing.T) {
	convey.Convey("Given an award event", t, func() {
		ev := model.AwardEvent{
			ID:            "e-1",
			ParticipantID: "p-1",
			Name:          "Alice",
			Points:        7,
			AwardedAt:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		}

		convey.Convey("When marshalled", func() {
			raw, err := json.Marshal(ev)
			convey.So(err, convey.ShouldBeNil)

			var got map[string]any
			convey.So(json.Unmarshal(raw, &got), convey.ShouldBeNil)

			convey.Convey("Then it uses the history wire names", func() {
				convey.So(got["userId"], convey.ShouldEqual, "p-1")
				convey.So(got["userName"], convey.ShouldEqual, "Alice")
				convey.So(got["pointsAwarded"], convey.ShouldEqual, 7)
			})
		})
	})
}
