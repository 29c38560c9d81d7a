package messages

import "github.com/LeonardoBeccarini/farm-node/internal/model/entities"

// Telemetry is published on farm/{site}/{node}/telemetry every cycle.
type Telemetry struct {
	Site         string  `json:"site"`
	Node         string  `json:"node"`
	SoilMoisture float64 `json:"soil_moisture"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	PH           float64 `json:"ph"`
	N            *int    `json:"n,omitempty"`
	P            *int    `json:"p,omitempty"`
	K            *int    `json:"k,omitempty"`
}

func NewTelemetry(id entities.Identity, r entities.Reading) Telemetry {
	return Telemetry{
		Site:         id.Site,
		Node:         id.Node,
		SoilMoisture: r.SoilMoisture,
		Temperature:  r.Temperature,
		Humidity:     r.Humidity,
		PH:           r.PH,
		N:            r.N,
		P:            r.P,
		K:            r.K,
	}
}
