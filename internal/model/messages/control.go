package messages

import "github.com/LeonardoBeccarini/farm-node/internal/model/entities"

// Control is published on farm/{site}/{node}/control. The loop fills the
// moisture and thresholds; the manual-command acknowledgment leaves them out.
type Control struct {
	Site         string   `json:"site"`
	Node         string   `json:"node"`
	Irrigation   bool     `json:"irrigation"`
	Decision     string   `json:"decision"` // ON | OFF | HOLD | MANUAL
	Reason       string   `json:"reason"`
	SoilMoisture *float64 `json:"soil_moisture,omitempty"`
	MinTh        *float64 `json:"min_th,omitempty"`
	MaxTh        *float64 `json:"max_th,omitempty"`
}

// NewCycleControl builds the control message emitted by the publish loop.
func NewCycleControl(id entities.Identity, irrigation bool, decision, reason string,
	moisture float64, th entities.Thresholds) Control {
	minTh, maxTh := th.Min, th.Max
	return Control{
		Site:         id.Site,
		Node:         id.Node,
		Irrigation:   irrigation,
		Decision:     decision,
		Reason:       reason,
		SoilMoisture: &moisture,
		MinTh:        &minTh,
		MaxTh:        &maxTh,
	}
}

// NewAck builds the acknowledgment of a manual command.
func NewAck(id entities.Identity, irrigation bool, reason string) Control {
	return Control{
		Site:       id.Site,
		Node:       id.Node,
		Irrigation: irrigation,
		Decision:   "MANUAL",
		Reason:     reason,
	}
}
