package claim_test

import (
	"context"
	"errors"
	"testing"
	"time"

	repository "github.com/okian/tally/internal/adapters/repository"
	claim "github.com/okian/tally/internal/domain/claim"
	model "github.com/okian/tally/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// failingAppendStore wraps a Store and fails every event append.
type failingAppendStore struct {
	repository.Store
	appendErr error
}

func (s *failingAppendStore) AppendEvent(ctx context.Context, ev model.AwardEvent) (string, error) {
	return "", s.appendErr
}

func TestProcessor_Claim(t *testing.T) {
	ctx := context.Background()

	Convey("Given a processor over a fresh store", t, func() {
		store := repository.NewMemStore()
		processor := claim.New(store)

		alice, err := store.CreateParticipant(ctx, "Alice")
		So(err, ShouldBeNil)

		Convey("When claiming for an existing participant", func() {
			result, err := processor.Claim(ctx, alice.ID)

			Convey("Then the award is within bounds and committed", func() {
				So(err, ShouldBeNil)
				So(result.PointsAwarded, ShouldBeBetweenOrEqual, model.MinAward, model.MaxAward)
				So(result.Participant.TotalPoints, ShouldEqual, result.PointsAwarded)
			})

			Convey("And exactly one matching audit event exists", func() {
				So(err, ShouldBeNil)
				events, err := store.ParticipantEvents(ctx, alice.ID, 10)
				So(err, ShouldBeNil)
				So(len(events), ShouldEqual, 1)
				So(events[0].Points, ShouldEqual, result.PointsAwarded)
				So(events[0].Name, ShouldEqual, "Alice")
			})
		})

		Convey("When claiming for an unknown participant", func() {
			_, err := processor.Claim(ctx, "missing")

			Convey("Then it fails with not-found and nothing is persisted", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				events, err := store.RecentEvents(ctx, 10)
				So(err, ShouldBeNil)
				So(events, ShouldBeEmpty)
				got, err := store.Participant(ctx, alice.ID)
				So(err, ShouldBeNil)
				So(got.TotalPoints, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a deterministic draw and clock", t, func() {
		store := repository.NewMemStore()
		awarded := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		processor := claim.New(store,
			claim.WithDraw(func(n int) int { return n - 1 }), // always the max
			claim.WithClock(func() time.Time { return awarded }),
		)

		alice, err := store.CreateParticipant(ctx, "Alice")
		So(err, ShouldBeNil)

		Convey("When claiming", func() {
			result, err := processor.Claim(ctx, alice.ID)
			So(err, ShouldBeNil)

			Convey("Then the configured draw and clock are used", func() {
				So(result.PointsAwarded, ShouldEqual, model.MaxAward)
				events, err := store.ParticipantEvents(ctx, alice.ID, 1)
				So(err, ShouldBeNil)
				So(len(events), ShouldEqual, 1)
				So(events[0].AwardedAt.Equal(awarded), ShouldBeTrue)
			})
		})
	})

	Convey("Given repeated claims for one participant", t, func() {
		store := repository.NewMemStore()
		processor := claim.New(store)

		alice, err := store.CreateParticipant(ctx, "Alice")
		So(err, ShouldBeNil)

		const claims = 25
		for i := 0; i < claims; i++ {
			_, err := processor.Claim(ctx, alice.ID)
			So(err, ShouldBeNil)
		}

		Convey("Then the score equals the sum of the audit events", func() {
			events, err := store.ParticipantEvents(ctx, alice.ID, claims)
			So(err, ShouldBeNil)
			So(len(events), ShouldEqual, claims)

			sum := 0
			for _, ev := range events {
				So(ev.Points, ShouldBeBetweenOrEqual, model.MinAward, model.MaxAward)
				sum += ev.Points
			}
			got, err := store.Participant(ctx, alice.ID)
			So(err, ShouldBeNil)
			So(got.TotalPoints, ShouldEqual, sum)
		})
	})

	Convey("Given a store whose event append fails", t, func() {
		mem := repository.NewMemStore()
		appendErr := errors.New("disk full")
		store := &failingAppendStore{Store: mem, appendErr: appendErr}
		processor := claim.New(store)

		alice, err := mem.CreateParticipant(ctx, "Alice")
		So(err, ShouldBeNil)

		Convey("When claiming", func() {
			result, err := processor.Claim(ctx, alice.ID)

			Convey("Then the error is a PartialError carrying the committed state", func() {
				var partial *claim.PartialError
				So(errors.As(err, &partial), ShouldBeTrue)
				So(errors.Is(err, appendErr), ShouldBeTrue)
				So(partial.Result.PointsAwarded, ShouldBeBetweenOrEqual, model.MinAward, model.MaxAward)
				So(result.PointsAwarded, ShouldEqual, partial.Result.PointsAwarded)

				// The increment really committed.
				got, err := mem.Participant(ctx, alice.ID)
				So(err, ShouldBeNil)
				So(got.TotalPoints, ShouldEqual, partial.Result.PointsAwarded)
			})
		})
	})
}
