package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/attrition/internal/adapters/http/api"
	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/internal/domain/prediction"
	"github.com/okian/attrition/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// ageRule predicts Leave for employees under 30. Once flipAfter calls have
// been served, every later answer is inverted.
type ageRule struct {
	flipAfter int64
	calls     atomic.Int64
}

func (a *ageRule) Predict(_ context.Context, r *employee.Record) (prediction.Result, error) {
	n := a.calls.Add(1)
	v, _ := r.Get("Age")
	leave := v.(int) < 30
	if a.flipAfter > 0 && n > a.flipAfter {
		leave = !leave
	}
	if leave {
		stay, lv := 0.25, 0.75
		return prediction.Result{Label: prediction.LabelLeave, ProbabilityStay: &stay, ProbabilityLeave: &lv}, nil
	}
	stay, lv := 0.75, 0.25
	return prediction.Result{Label: prediction.LabelStay, ProbabilityStay: &stay, ProbabilityLeave: &lv}, nil
}

func (a *ageRule) Schema() employee.Schema { return employee.Fields }

type noStats struct{}

func (noStats) GetStats() map[string]interface{} { return map[string]interface{}{} }

func newServer(deps api.Dependencies) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps, noStats{}).Register(mux)
	return httptest.NewServer(api.RequestIDMiddleware(mux))
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running predictor", t, func() {
		deps := &ageRule{}
		srv := newServer(deps)
		defer srv.Close()

		cfg := &Config{
			BaseURL:    srv.URL,
			NumRecords: 40,
			Workers:    4,
			Timeout:    5 * time.Second,
			Seed:       7,
			Resubmit:   5,
		}

		Convey("When probing with valid records", func() {
			cfg.OutputFile = filepath.Join(t.TempDir(), "out", "records.json")
			stats, err := Run(ctx, cfg)

			Convey("Then every record should verify", func() {
				So(err, ShouldBeNil)
				So(stats.Submitted, ShouldEqual, 40)
				So(stats.Successful, ShouldEqual, 40)
				So(stats.LeaveCount+stats.StayCount, ShouldEqual, 40)
				So(stats.LeaveCount, ShouldBeGreaterThan, 0) // boundary record has age 18
				So(stats.IdempotenceChecked, ShouldEqual, 5)
				So(stats.IdempotenceMismatches, ShouldEqual, 0)
			})

			Convey("And the records should be saved", func() {
				data, err := os.ReadFile(cfg.OutputFile)
				So(err, ShouldBeNil)
				var saved []Sample
				So(json.Unmarshal(data, &saved), ShouldBeNil)
				So(saved, ShouldHaveLength, 40)
			})
		})

		Convey("When the predictor answers inconsistently", func() {
			deps.flipAfter = int64(cfg.NumRecords)
			stats, err := Run(ctx, cfg)

			Convey("Then every resubmission should mismatch", func() {
				So(errors.Is(err, ErrVerification), ShouldBeTrue)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.IdempotenceMismatches, ShouldEqual, 5)
			})
		})

		Convey("When printing the schema", func() {
			var buf bytes.Buffer
			err := PrintSchema(ctx, cfg, &buf)

			Convey("Then every field should be listed", func() {
				So(err, ShouldBeNil)
				So(bytes.Count(buf.Bytes(), []byte("\n")), ShouldEqual, employee.FieldCount)
				So(buf.String(), ShouldContainSubstring, "monthly_income")
				So(buf.String(), ShouldContainSubstring, "step 100")
			})
		})
	})

	Convey("Given no running service", t, func() {
		srv := newServer(&ageRule{})
		url := srv.URL
		srv.Close()

		Convey("When probing", func() {
			_, err := Run(ctx, &Config{BaseURL: url, NumRecords: 1, Workers: 1, Timeout: time.Second})

			Convey("Then the health check should fail", func() {
				So(errors.Is(err, ErrHealthCheck), ShouldBeTrue)
			})
		})
	})
}
