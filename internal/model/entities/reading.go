package entities

// Reading is one sample of the node's sensors. N, P and K are only present
// when the probe reports nutrients.
type Reading struct {
	SoilMoisture float64 `json:"soil_moisture"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	PH           float64 `json:"ph"`
	N            *int    `json:"n,omitempty"`
	P            *int    `json:"p,omitempty"`
	K            *int    `json:"k,omitempty"`
}
