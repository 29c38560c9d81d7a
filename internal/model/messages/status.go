package messages

// Status is the retained liveness message on farm/{site}/{node}/status.
type Status struct {
	Site   string `json:"site"`
	Node   string `json:"node"`
	Online bool   `json:"online"`
}
