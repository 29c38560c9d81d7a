package sensor_simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Command
	}{
		{"full", `{"irrigation": true, "reason": "frost protection"}`, Command{true, "frost protection"}},
		{"off", `{"irrigation": false, "reason": "rain"}`, Command{false, "rain"}},
		{"no reason", `{"irrigation": true}`, Command{true, "manual override"}},
		{"empty object", `{}`, Command{false, "manual override"}},
		{"null fields", `{"irrigation": null, "reason": null}`, Command{false, "manual override"}},
		{"empty reason kept", `{"irrigation": true, "reason": ""}`, Command{true, ""}},
		{"extra fields", `{"irrigation": true, "ttl": 30}`, Command{true, "manual override"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_Malformed(t *testing.T) {
	for _, payload := range []string{
		``,
		`not json`,
		`{"irrigation": tru`,
		`null`,
		`[true]`,
		`"on"`,
		`42`,
		`{"irrigation": "yes"}`,
		`{"irrigation": 1}`,
		`{"irrigation": true, "reason": 5}`,
		"\xff\xfe",
	} {
		t.Run(payload, func(t *testing.T) {
			_, err := ParseCommand([]byte(payload))
			assert.ErrorIs(t, err, ErrMalformedCommand)
		})
	}
}
