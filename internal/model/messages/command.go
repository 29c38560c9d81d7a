package messages

// Command is the manual override received on farm/{site}/{node}/cmd.
// Pointers distinguish a missing field from its zero value.
type Command struct {
	Irrigation *bool   `json:"irrigation"`
	Reason     *string `json:"reason"`
}
