package service_test

import (
	"context"
	"testing"
	"time"

	service "github.com/arguswatch/argus/internal/app"
	"github.com/arguswatch/argus/internal/domain/model"
	"github.com/arguswatch/argus/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(4),
			service.WithQueueSize(5_000),
			service.WithDedupeSize(2_500),
			service.WithLedgerLabel("anchored nowhere"),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(2), service.WithQueueSize(100))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		defer svc.Stop(ctx)

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				So(svc.Healthy(), ShouldBeTrue)

				stats := svc.GetStats(ctx)
				So(stats.Started, ShouldBeTrue)
				So(stats.WorkerCount, ShouldEqual, 2)
				So(stats.QueueCapacity, ShouldEqual, 100)
			})

			Convey("And starting again should be a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And stopping should leave it unhealthy", func() {
				svc.Stop(ctx)
				So(svc.GetStats(ctx).Started, ShouldBeFalse)
			})
		})
	})
}

func TestService_Evaluate(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		Convey("When evaluating the golden address", func() {
			evaluation, err := svc.Evaluate(ctx, "0x742d35cc6634c0532925a3b844bc9e7595f0beb")

			Convey("Then the pinned scores and token come back", func() {
				So(err, ShouldBeNil)
				So(evaluation.Sanctions, ShouldEqual, 20)
				So(evaluation.Behavioral, ShouldEqual, 22)
				So(evaluation.Reputation, ShouldEqual, 10)
				So(evaluation.FinalScore, ShouldEqual, 19)
				So(evaluation.Status, ShouldEqual, model.StatusBlocked)
				So(evaluation.Token, ShouldEqual, "AR_f88e9e61acaf14e497368918b064de1cec271cce43d")
				So(evaluation.ContentHash, ShouldEqual, "f88e9e61acaf14e497368918b064de1cec271cce43d74cf8cb79fa0a43a963de")
				So(evaluation.Ledger, ShouldEqual, "mocked test write")
			})

			Convey("And re-evaluating keeps the first record's timestamp", func() {
				again, err := svc.Evaluate(ctx, "0x742D35CC6634C0532925a3b844Bc9e7595f0bEb")
				So(err, ShouldBeNil)
				So(again.Token, ShouldEqual, evaluation.Token)
				So(again.CreatedAt.Equal(evaluation.CreatedAt), ShouldBeTrue)
			})

			Convey("And the stored evaluation is readable", func() {
				stored, err := svc.Evaluation(ctx, "0x742d35cc6634c0532925a3b844bc9e7595f0beb")
				So(err, ShouldBeNil)
				So(stored.Token, ShouldEqual, evaluation.Token)
				So(stored.ContentHash, ShouldEqual, evaluation.ContentHash)
			})
		})

		Convey("When looking up an address never screened", func() {
			_, err := svc.Evaluation(ctx, "unknown.eth")

			Convey("Then it should report not found", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "not found")
			})
		})
	})
}

func TestService_Dedupe(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		Convey("When recording a request ID", func() {
			first := svc.SeenAndRecord(ctx, "req-1")
			second := svc.SeenAndRecord(ctx, "req-1")

			Convey("Then only the replay is reported as seen", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(svc.Size(), ShouldEqual, 1)
			})

			Convey("And unrecording allows a retry", func() {
				svc.Unrecord(ctx, "req-1")
				So(svc.SeenAndRecord(ctx, "req-1"), ShouldBeFalse)
			})
		})
	})
}
