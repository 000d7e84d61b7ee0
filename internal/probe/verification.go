package probe

import (
	"fmt"
	"math"

	"github.com/okian/attrition/internal/adapters/http/api"
)

// probabilityTolerance bounds |stay + leave - 1|.
const probabilityTolerance = 1e-6

// verifyResponse checks one prediction answer for well-formedness.
func verifyResponse(s Sample, resp *api.PredictResponse) error {
	if resp == nil {
		return fmt.Errorf("%w: empty response", ErrVerification)
	}
	if resp.RequestID != s.ID {
		return fmt.Errorf("%w: request id %q, sent %q", ErrVerification, resp.RequestID, s.ID)
	}
	switch {
	case resp.Label == "Leave" && resp.Prediction == 1:
	case resp.Label == "Stay" && resp.Prediction == 0:
	default:
		return fmt.Errorf("%w: label %q with prediction %d", ErrVerification, resp.Label, resp.Prediction)
	}

	stay, leave := resp.ProbabilityStay, resp.ProbabilityLeave
	if stay == nil && leave == nil {
		if resp.ProbabilityAvailable {
			return fmt.Errorf("%w: probabilities missing but marked available", ErrVerification)
		}
		return nil
	}
	if stay == nil || leave == nil {
		return fmt.Errorf("%w: only one probability present", ErrVerification)
	}
	if !resp.ProbabilityAvailable {
		return fmt.Errorf("%w: probabilities present but marked unavailable", ErrVerification)
	}
	for _, p := range []float64{*stay, *leave} {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: probability %v out of range", ErrVerification, p)
		}
	}
	if math.Abs(*stay+*leave-1) > probabilityTolerance {
		return fmt.Errorf("%w: probabilities sum to %v", ErrVerification, *stay+*leave)
	}
	return nil
}

// sameAnswer reports whether two outcomes for the same record agree.
func sameAnswer(a, b Outcome) error {
	if a.Label != b.Label {
		return fmt.Errorf("%w: label %q then %q", ErrIdempotence, a.Label, b.Label)
	}
	if !sameProbability(a.Stay, b.Stay) || !sameProbability(a.Leave, b.Leave) {
		return fmt.Errorf("%w: probabilities changed", ErrIdempotence)
	}
	return nil
}

func sameProbability(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
