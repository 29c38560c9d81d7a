// Package control holds the irrigation decision logic and the node state it
// mutates. It has no transport dependencies.
package control

import "github.com/LeonardoBeccarini/farm-node/internal/model"

// Decision labels the branch that produced an irrigation value.
type Decision string

const (
	DecisionOn     Decision = "ON"
	DecisionOff    Decision = "OFF"
	DecisionHold   Decision = "HOLD"
	DecisionManual Decision = "MANUAL"
)

const (
	ReasonBelowMin      = "moisture below min"
	ReasonAboveMax      = "moisture above max"
	ReasonInRange       = "moisture in range"
	DefaultManualReason = "manual override"
)

// Outcome is what one arbitration cycle resolved to.
type Outcome struct {
	Irrigation bool
	Decision   Decision
	Reason     string
}

// Decide applies the threshold rule with hysteresis. Readings equal to
// either bound hold the prior state, as does NaN.
func Decide(moisture float64, prior bool, th model.Thresholds) Outcome {
	switch {
	case moisture < th.Min:
		return Outcome{Irrigation: true, Decision: DecisionOn, Reason: ReasonBelowMin}
	case moisture > th.Max:
		return Outcome{Irrigation: false, Decision: DecisionOff, Reason: ReasonAboveMax}
	default:
		return Outcome{Irrigation: prior, Decision: DecisionHold, Reason: ReasonInRange}
	}
}
