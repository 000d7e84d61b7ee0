package service_test

import (
	"context"
	"errors"
	"testing"

	service "github.com/okian/attrition/internal/app"
	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/internal/domain/prediction"
	"github.com/okian/attrition/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// fixedClassifier always answers with the same class and probabilities.
type fixedClassifier struct {
	class int
	probs [2]float64
	err   error
}

func (f fixedClassifier) Predict(context.Context, *employee.Record) (int, error) {
	return f.class, f.err
}

func (f fixedClassifier) PredictProba(context.Context, *employee.Record) ([2]float64, error) {
	return f.probs, nil
}

// labelClassifier has no probability capability.
type labelClassifier struct{ class int }

func (l labelClassifier) Predict(context.Context, *employee.Record) (int, error) {
	return l.class, nil
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should use the employee schema", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Schema(), ShouldHaveLength, employee.FieldCount)
		})

		Convey("And stats should report an unknown model", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["model"], ShouldEqual, "unknown")
			So(stats["probabilityCapable"], ShouldEqual, false)
		})
	})
}

func TestService_Start(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service without a classifier", t, func() {
		svc := service.New()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then it should refuse to start", func() {
				So(errors.Is(err, service.ErrNoClassifier), ShouldBeTrue)
			})
		})

		Convey("When predicting before start", func() {
			_, err := svc.Predict(ctx, employee.DefaultRecord())

			Convey("Then it should report the service is not started", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(service.ErrorKind(err), ShouldEqual, service.KindNotStarted)
			})
		})
	})

	Convey("Given a service with a probabilistic classifier", t, func() {
		svc := service.New(
			service.WithClassifier(fixedClassifier{class: 1, probs: [2]float64{0.3, 0.7}}),
			service.WithModelInfo(service.ModelInfo{Name: "stub", Estimator: "logistic_regression"}),
		)
		defer svc.Stop()

		Convey("When starting the service twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then stats should describe the model", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["model"], ShouldEqual, "stub")
				So(stats["estimator"], ShouldEqual, "logistic_regression")
				So(stats["probabilityCapable"], ShouldEqual, true)
				So(svc.ProbabilityCapable(), ShouldBeTrue)
			})
		})
	})
}

func TestService_Predict(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service predicting Leave", t, func() {
		svc := service.New(service.WithClassifier(fixedClassifier{class: 1, probs: [2]float64{0.25, 0.75}}))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When predicting the default record", func() {
			res, err := svc.Predict(ctx, employee.DefaultRecord())

			Convey("Then it should return Leave with probabilities", func() {
				So(err, ShouldBeNil)
				So(res.Label, ShouldEqual, prediction.LabelLeave)
				So(*res.ProbabilityStay, ShouldEqual, 0.25)
				So(*res.ProbabilityLeave, ShouldEqual, 0.75)
			})

			Convey("And the counters should be updated", func() {
				stats := svc.GetStats()
				So(stats["predictions"], ShouldEqual, int64(1))
				So(stats["leaveCount"], ShouldEqual, int64(1))
				So(stats["stayCount"], ShouldEqual, int64(0))
			})
		})

		Convey("When a field is missing", func() {
			r := employee.DefaultRecord()
			r.Delete("Overtime")
			_, err := svc.Predict(ctx, r)

			Convey("Then it should fail with a schema mismatch", func() {
				So(errors.Is(err, employee.ErrSchemaMismatch), ShouldBeTrue)
				So(service.ErrorKind(err), ShouldEqual, service.KindSchemaMismatch)
				So(svc.GetStats()["predictionErrors"], ShouldEqual, int64(1))
			})
		})

		Convey("When the context is canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			svc := service.New(service.WithClassifier(fixedClassifier{err: cctx.Err()}))
			So(svc.Start(ctx), ShouldBeNil)
			_, err := svc.Predict(cctx, employee.DefaultRecord())

			Convey("Then the error kind should be canceled", func() {
				So(err, ShouldNotBeNil)
				So(service.ErrorKind(err), ShouldEqual, service.KindCanceled)
			})
		})
	})

	Convey("Given a started service without probability capability", t, func() {
		svc := service.New(service.WithClassifier(labelClassifier{class: 0}))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When predicting", func() {
			res, err := svc.Predict(ctx, employee.DefaultRecord())

			Convey("Then it should return Stay without probabilities", func() {
				So(err, ShouldBeNil)
				So(res.Label, ShouldEqual, prediction.LabelStay)
				So(res.HasProbabilities(), ShouldBeFalse)
				So(svc.GetStats()["stayCount"], ShouldEqual, int64(1))
			})
		})
	})

	Convey("Given a classifier returning an out-of-range class", t, func() {
		svc := service.New(service.WithClassifier(labelClassifier{class: 2}))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When predicting", func() {
			_, err := svc.Predict(ctx, employee.DefaultRecord())

			Convey("Then it should report an unexpected label", func() {
				So(errors.Is(err, prediction.ErrUnexpectedLabel), ShouldBeTrue)
				So(service.ErrorKind(err), ShouldEqual, service.KindUnexpectedLabel)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := service.New(service.WithClassifier(fixedClassifier{class: 1, probs: [2]float64{0.25, 0.75}}))
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When it is stopped", func() {
			svc.Stop()
			_, err := svc.Predict(ctx, employee.DefaultRecord())

			Convey("Then predictions should be refused", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
				So(svc.ProbabilityCapable(), ShouldBeFalse)
			})

			Convey("And a restart should serve again", func() {
				So(svc.Start(ctx), ShouldBeNil)
				res, err := svc.Predict(ctx, employee.DefaultRecord())
				So(err, ShouldBeNil)
				So(res.Label, ShouldEqual, prediction.LabelLeave)
			})
		})
	})
}
