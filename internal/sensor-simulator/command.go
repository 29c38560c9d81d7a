package sensor_simulator

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LeonardoBeccarini/farm-node/internal/control"
	"github.com/LeonardoBeccarini/farm-node/internal/model"
)

var ErrMalformedCommand = errors.New("malformed command")

// Command is a parsed manual override.
type Command struct {
	Irrigation bool
	Reason     string
}

// ParseCommand decodes a cmd payload. It must be a JSON object; a missing
// irrigation means false and a missing reason means "manual override".
func ParseCommand(payload []byte) (Command, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	if obj == nil {
		return Command{}, fmt.Errorf("%w: payload is not an object", ErrMalformedCommand)
	}

	var raw model.Command
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}

	cmd := Command{Reason: control.DefaultManualReason}
	if raw.Irrigation != nil {
		cmd.Irrigation = *raw.Irrigation
	}
	if raw.Reason != nil {
		cmd.Reason = *raw.Reason
	}
	return cmd, nil
}
