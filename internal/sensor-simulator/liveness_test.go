package sensor_simulator

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/farm-node/internal/model"
)

type recordingPublisher struct {
	err  error
	msgs []published
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

func (p *recordingPublisher) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{topic, qos, retained, payload})
	return nil
}

func decodeStatus(t *testing.T, b []byte) model.Status {
	t.Helper()
	var st model.Status
	require.NoError(t, json.Unmarshal(b, &st))
	return st
}

var testID = model.Identity{Site: "site1", Node: "nodeA"}

func TestLastWill(t *testing.T) {
	w := LastWill(testID)
	assert.Equal(t, "farm/site1/nodeA/status", w.Topic)
	assert.Equal(t, byte(1), w.QoS)
	assert.True(t, w.Retained)
	assert.JSONEq(t, `{"site":"site1","node":"nodeA","online":false}`, string(w.Payload))
}

func TestLiveness_Transitions(t *testing.T) {
	pub := &recordingPublisher{}
	l := NewLivenessReporter(pub, testID, zap.NewNop())

	require.NoError(t, l.Offline()) // already offline
	assert.Empty(t, pub.msgs)

	require.NoError(t, l.Online())
	require.NoError(t, l.Online())
	require.Len(t, pub.msgs, 1)
	assert.True(t, l.IsOnline())

	require.NoError(t, l.Offline())
	require.NoError(t, l.Offline())
	require.Len(t, pub.msgs, 2)

	for i, want := range []bool{true, false} {
		m := pub.msgs[i]
		assert.Equal(t, "farm/site1/nodeA/status", m.topic)
		assert.Equal(t, byte(1), m.qos)
		assert.True(t, m.retained)
		assert.Equal(t, model.Status{Site: "site1", Node: "nodeA", Online: want}, decodeStatus(t, m.payload))
	}
}

func TestLiveness_Republish(t *testing.T) {
	pub := &recordingPublisher{}
	l := NewLivenessReporter(pub, testID, zap.NewNop())
	require.NoError(t, l.Online())
	require.NoError(t, l.Republish())
	require.Len(t, pub.msgs, 2)
	assert.True(t, decodeStatus(t, pub.msgs[1].payload).Online)
}

func TestLiveness_PublishFailureStillTransitions(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	l := NewLivenessReporter(pub, testID, zap.NewNop())
	assert.Error(t, l.Online())
	assert.True(t, l.IsOnline())

	pub.err = nil
	require.NoError(t, l.Republish())
	require.Len(t, pub.msgs, 1)
	assert.True(t, decodeStatus(t, pub.msgs[0].payload).Online)
}
