package prediction_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/internal/domain/prediction"
	. "github.com/smartystreets/goconvey/convey"
)

// labelOnly implements only the base capability.
type labelOnly struct {
	label int
	err   error
	calls int
}

func (c *labelOnly) Predict(_ context.Context, _ *employee.Record) (int, error) {
	c.calls++
	return c.label, c.err
}

// withProba implements both capabilities.
type withProba struct {
	labelOnly
	probs    [2]float64
	probaErr error
}

func (c *withProba) PredictProba(_ context.Context, _ *employee.Record) ([2]float64, error) {
	return c.probs, c.probaErr
}

// ageRule derives its output from the record so idempotence is observable.
type ageRule struct{}

func (ageRule) Predict(_ context.Context, r *employee.Record) (int, error) {
	v, _ := r.Get("Age")
	if v.(int) < 30 {
		return 1, nil
	}
	return 0, nil
}

func (ageRule) PredictProba(_ context.Context, r *employee.Record) ([2]float64, error) {
	v, _ := r.Get("Age")
	p1 := float64(v.(int)) / 100
	return [2]float64{1 - p1, p1}, nil
}

func boundaryRecord() *employee.Record {
	r := employee.NewRecord()
	for _, f := range employee.Fields {
		if f.Kind == employee.KindInteger {
			r.Set(f.Name, f.Min)
		} else {
			r.Set(f.Name, f.Choices[0])
		}
	}
	return r
}

func TestNewAdapter(t *testing.T) {
	Convey("Given classifier capabilities", t, func() {
		Convey("When the classifier is nil", func() {
			a, err := prediction.NewAdapter(nil)

			Convey("Then construction should fail", func() {
				So(a, ShouldBeNil)
				So(errors.Is(err, prediction.ErrNilClassifier), ShouldBeTrue)
			})
		})

		Convey("When the classifier only predicts labels", func() {
			a, err := prediction.NewAdapter(&labelOnly{})

			Convey("Then the adapter should not be probability capable", func() {
				So(err, ShouldBeNil)
				So(a.ProbabilityCapable(), ShouldBeFalse)
			})
		})

		Convey("When the classifier also predicts probabilities", func() {
			a, err := prediction.NewAdapter(&withProba{})

			Convey("Then the adapter should be probability capable", func() {
				So(err, ShouldBeNil)
				So(a.ProbabilityCapable(), ShouldBeTrue)
			})
		})
	})
}

func TestAdapter_Predict(t *testing.T) {
	ctx := context.Background()

	Convey("Given a probability capable classifier", t, func() {
		c := &withProba{labelOnly: labelOnly{label: 1}, probs: [2]float64{0.3, 0.7}}
		a, err := prediction.NewAdapter(c)
		So(err, ShouldBeNil)

		Convey("When predicting a default record", func() {
			res, err := a.Predict(ctx, employee.DefaultRecord())

			Convey("Then label 1 should map to Leave", func() {
				So(err, ShouldBeNil)
				So(res.Label, ShouldEqual, prediction.LabelLeave)
			})

			Convey("And probabilities should come from their class slots", func() {
				So(res.HasProbabilities(), ShouldBeTrue)
				So(*res.ProbabilityStay, ShouldAlmostEqual, 0.3)
				So(*res.ProbabilityLeave, ShouldAlmostEqual, 0.7)
				So(math.Abs(*res.ProbabilityStay+*res.ProbabilityLeave-1), ShouldBeLessThan, 1e-6)
			})
		})

		Convey("When the classifier says leave but favours staying", func() {
			c.probs = [2]float64{0.8, 0.2}
			res, err := a.Predict(ctx, employee.DefaultRecord())

			Convey("Then the label should still follow the classifier label", func() {
				So(err, ShouldBeNil)
				So(res.Label, ShouldEqual, prediction.LabelLeave)
				So(*res.ProbabilityStay, ShouldAlmostEqual, 0.8)
			})
		})

		Convey("When label 0 is returned", func() {
			c.label = 0
			res, err := a.Predict(ctx, employee.DefaultRecord())

			Convey("Then it should map to Stay", func() {
				So(err, ShouldBeNil)
				So(res.Label, ShouldEqual, prediction.LabelStay)
			})
		})

		Convey("When the classifier returns an unknown class", func() {
			c.label = 2
			_, err := a.Predict(ctx, employee.DefaultRecord())

			Convey("Then it should fail", func() {
				So(errors.Is(err, prediction.ErrUnexpectedLabel), ShouldBeTrue)
			})
		})

		Convey("When probabilities do not sum to one", func() {
			c.probs = [2]float64{0.3, 0.3}
			_, err := a.Predict(ctx, employee.DefaultRecord())

			Convey("Then it should fail", func() {
				So(errors.Is(err, prediction.ErrProbability), ShouldBeTrue)
			})
		})

		Convey("When probabilities are out of range", func() {
			c.probs = [2]float64{-0.5, 1.5}
			_, err := a.Predict(ctx, employee.DefaultRecord())

			Convey("Then it should fail", func() {
				So(errors.Is(err, prediction.ErrProbability), ShouldBeTrue)
			})
		})

		Convey("When the probability call fails", func() {
			c.probaErr = errors.New("boom")
			res, err := a.Predict(ctx, employee.DefaultRecord())

			Convey("Then no partial result should be returned", func() {
				So(errors.Is(err, prediction.ErrPredict), ShouldBeTrue)
				So(res, ShouldResemble, prediction.Result{})
			})
		})

		Convey("When a field is missing", func() {
			r := employee.DefaultRecord()
			r.Delete("Company Tenure")
			res, err := a.Predict(ctx, r)

			Convey("Then it should fail with a schema error before calling the classifier", func() {
				So(errors.Is(err, employee.ErrSchemaMismatch), ShouldBeTrue)
				So(errors.Is(err, employee.ErrMissingField), ShouldBeTrue)
				So(res, ShouldResemble, prediction.Result{})
				So(c.calls, ShouldEqual, 0)
			})
		})

		Convey("When predicting the boundary record", func() {
			res, err := a.Predict(ctx, boundaryRecord())

			Convey("Then a well formed result should be returned", func() {
				So(err, ShouldBeNil)
				So(res.Label, ShouldBeIn, []prediction.Label{prediction.LabelStay, prediction.LabelLeave})
				So(res.HasProbabilities(), ShouldBeTrue)
			})
		})
	})

	Convey("Given a label-only classifier", t, func() {
		c := &labelOnly{label: 1}
		a, err := prediction.NewAdapter(c)
		So(err, ShouldBeNil)

		Convey("When predicting", func() {
			res, err := a.Predict(ctx, employee.DefaultRecord())

			Convey("Then the label should be set and probabilities unavailable", func() {
				So(err, ShouldBeNil)
				So(res.Label, ShouldEqual, prediction.LabelLeave)
				So(res.HasProbabilities(), ShouldBeFalse)
				So(res.ProbabilityStay, ShouldBeNil)
				So(res.ProbabilityLeave, ShouldBeNil)
				So(prediction.FormatProbability(res.ProbabilityStay), ShouldEqual, "N/A")
			})
		})

		Convey("When the classifier fails", func() {
			c.err = errors.New("unloadable column")
			_, err := a.Predict(ctx, employee.DefaultRecord())

			Convey("Then the error should surface", func() {
				So(errors.Is(err, prediction.ErrPredict), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "unloadable column")
			})
		})
	})

	Convey("Given a deterministic classifier", t, func() {
		a, err := prediction.NewAdapter(ageRule{})
		So(err, ShouldBeNil)

		Convey("When the same record is predicted twice", func() {
			r := employee.DefaultRecord()
			r.Set("Age", 25)
			first, err1 := a.Predict(ctx, r)
			second, err2 := a.Predict(ctx, r)

			Convey("Then both results should be identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first.Label, ShouldEqual, second.Label)
				So(*first.ProbabilityStay, ShouldEqual, *second.ProbabilityStay)
				So(*first.ProbabilityLeave, ShouldEqual, *second.ProbabilityLeave)
			})
		})
	})
}

func TestFormatProbability(t *testing.T) {
	Convey("Given probabilities to display", t, func() {
		p := 0.456
		So(prediction.FormatProbability(&p), ShouldEqual, "0.46")
		So(prediction.FormatProbability(nil), ShouldEqual, "N/A")
	})

	Convey("Given class labels", t, func() {
		l, err := prediction.LabelFor(0)
		So(err, ShouldBeNil)
		So(l, ShouldEqual, prediction.LabelStay)
		So(prediction.LabelLeave.Class(), ShouldEqual, 1)
		So(prediction.LabelStay.Class(), ShouldEqual, 0)
	})
}
