package control

import "github.com/LeonardoBeccarini/farm-node/internal/model"

// Arbiter picks, per cycle, between the threshold decision and an active
// manual override. Manual always wins; there is no expiry.
type Arbiter struct {
	state      *State
	thresholds model.Thresholds
}

func NewArbiter(state *State, th model.Thresholds) *Arbiter {
	return &Arbiter{state: state, thresholds: th}
}

func (a *Arbiter) Thresholds() model.Thresholds { return a.thresholds }

func (a *Arbiter) Resolve(r model.Reading) Outcome {
	var out Outcome
	a.state.update(func(irrigationOn *bool, mode Mode, reason *string) {
		if m, ok := mode.(ManualMode); ok {
			out = Outcome{Irrigation: m.Irrigation, Decision: DecisionManual, Reason: m.Reason}
			return
		}
		out = Decide(r.SoilMoisture, *irrigationOn, a.thresholds)
		*irrigationOn = out.Irrigation
		*reason = out.Reason
	})
	return out
}
