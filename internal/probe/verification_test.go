package probe

import (
	"errors"
	"testing"

	"github.com/okian/attrition/internal/adapters/http/api"
	. "github.com/smartystreets/goconvey/convey"
)

func f64(v float64) *float64 { return &v }

func TestVerifyResponse(t *testing.T) {
	Convey("Given a submitted sample", t, func() {
		s := Sample{ID: "abc"}

		Convey("When the answer is well formed", func() {
			resp := &api.PredictResponse{RequestID: "abc", Label: "Leave", Prediction: 1,
				ProbabilityStay: f64(0.3), ProbabilityLeave: f64(0.7), ProbabilityAvailable: true}

			Convey("Then it should verify", func() {
				So(verifyResponse(s, resp), ShouldBeNil)
			})
		})

		Convey("When probabilities are absent and marked unavailable", func() {
			resp := &api.PredictResponse{RequestID: "abc", Label: "Stay", Prediction: 0}

			Convey("Then it should verify", func() {
				So(verifyResponse(s, resp), ShouldBeNil)
			})
		})

		Convey("When the answer is malformed", func() {
			cases := map[string]*api.PredictResponse{
				"nil":              nil,
				"wrong id":         {RequestID: "zzz", Label: "Stay"},
				"label mismatch":   {RequestID: "abc", Label: "Stay", Prediction: 1},
				"unknown label":    {RequestID: "abc", Label: "Maybe"},
				"half present":     {RequestID: "abc", Label: "Stay", ProbabilityStay: f64(1), ProbabilityAvailable: true},
				"bad sum":          {RequestID: "abc", Label: "Stay", ProbabilityStay: f64(0.6), ProbabilityLeave: f64(0.6), ProbabilityAvailable: true},
				"out of range":     {RequestID: "abc", Label: "Stay", ProbabilityStay: f64(1.5), ProbabilityLeave: f64(-0.5), ProbabilityAvailable: true},
				"flag disagrees":   {RequestID: "abc", Label: "Stay", ProbabilityStay: f64(0.5), ProbabilityLeave: f64(0.5)},
				"flag without any": {RequestID: "abc", Label: "Stay", ProbabilityAvailable: true},
			}

			Convey("Then each case should fail verification", func() {
				for _, resp := range cases {
					err := verifyResponse(s, resp)
					So(errors.Is(err, ErrVerification), ShouldBeTrue)
				}
			})
		})
	})

	Convey("Given two answers to the same record", t, func() {
		a := Outcome{Label: "Leave", Stay: f64(0.4), Leave: f64(0.6)}

		Convey("When they agree", func() {
			So(sameAnswer(a, Outcome{Label: "Leave", Stay: f64(0.4), Leave: f64(0.6)}), ShouldBeNil)
		})

		Convey("When the label changes", func() {
			err := sameAnswer(a, Outcome{Label: "Stay", Stay: f64(0.4), Leave: f64(0.6)})
			So(errors.Is(err, ErrIdempotence), ShouldBeTrue)
		})

		Convey("When a probability disappears", func() {
			err := sameAnswer(a, Outcome{Label: "Leave"})
			So(errors.Is(err, ErrIdempotence), ShouldBeTrue)
		})
	})
}
