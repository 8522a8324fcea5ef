package service_test

import (
	"context"
	"testing"
	"time"

	service "github.com/egaolabs/smiled/internal/app"
	"github.com/egaolabs/smiled/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// waitForSession polls until the session appears in the store or the
// deadline passes.
func waitForSession(ctx context.Context, svc *service.Service, sessionID string, frames int64) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		entry, err := svc.Latest(ctx, sessionID)
		if err == nil && entry.FramesScored >= frames {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service with full integration", t, func() {
		// Throttling off so every submitted frame reaches the workers.
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSlots(8),
			service.WithDedupeSize(500),
			service.WithMinFrameInterval(0),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		So(svc.Start(ctx), ShouldBeNil)

		Convey("When submitting frames from two sessions", func() {
			base := time.Now()
			frames := []model.Frame{
				{
					FrameID:     "frame-1",
					SessionID:   "session-a",
					Blendshapes: model.Sample{"mouthSmileLeft": 0.8, "mouthSmileRight": 0.8},
					TS:          base,
				},
				{
					FrameID:     "frame-2",
					SessionID:   "session-b",
					Blendshapes: model.Sample{"mouthSmileLeft": 0.5, "mouthSmileRight": 0.3},
					TS:          base,
				},
				{
					FrameID:     "frame-3",
					SessionID:   "session-a",
					Blendshapes: model.Sample{"mouthSmileLeft": 0.6, "mouthSmileRight": 0.6},
					TS:          base.Add(time.Second),
				},
			}

			for _, f := range frames {
				So(svc.Submit(ctx, f), ShouldBeNil)
			}

			So(waitForSession(ctx, svc, "session-a", 2), ShouldBeTrue)
			So(waitForSession(ctx, svc, "session-b", 1), ShouldBeTrue)

			Convey("Then the latest reading should reflect the newest frame", func() {
				entry, err := svc.Latest(ctx, "session-a")
				So(err, ShouldBeNil)
				So(entry.Latest.FrameID, ShouldEqual, "frame-3")
				So(entry.Latest.Score, ShouldEqual, 60)
				So(entry.Latest.Level, ShouldEqual, "yellow")
				So(entry.Latest.Message, ShouldEqual, "その調子!")
			})

			Convey("And the best score should be retained", func() {
				entry, err := svc.Latest(ctx, "session-a")
				So(err, ShouldBeNil)
				So(entry.BestScore, ShouldEqual, 80)
				So(entry.FramesScored, ShouldEqual, 2)
			})

			Convey("And the second session should be scored independently", func() {
				entry, err := svc.Latest(ctx, "session-b")
				So(err, ShouldBeNil)
				So(entry.Latest.Score, ShouldEqual, 40)
				So(entry.Latest.Level, ShouldEqual, "yellow")
				So(entry.Latest.Message, ShouldEqual, "もう少し口角を上げて!")
			})

			Convey("And the leaderboard should rank sessions by best score", func() {
				entries, err := svc.TopBest(ctx, 10)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].SessionID, ShouldEqual, "session-a")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].SessionID, ShouldEqual, "session-b")
				So(entries[1].Rank, ShouldEqual, 2)
			})

			Convey("And stats should report the tracked sessions", func() {
				stats := svc.GetStats()
				So(stats["totalSessions"], ShouldEqual, 2)
			})
		})

		Convey("When an unknown session is queried", func() {
			_, err := svc.Latest(ctx, "session-missing")

			Convey("Then it should report not found", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
