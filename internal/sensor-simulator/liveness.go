package sensor_simulator

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/farm-node/internal/model"
	"github.com/LeonardoBeccarini/farm-node/pkg/mqttbus"
)

const statusQoS byte = 1

// LastWill is the offline status the broker publishes on our behalf if the
// connection drops uncleanly. It must be registered before connecting.
func LastWill(id model.Identity) *mqttbus.Will {
	payload, _ := json.Marshal(model.Status{Site: id.Site, Node: id.Node, Online: false})
	return &mqttbus.Will{
		Topic:    model.TopicsFor(id).Status,
		Payload:  payload,
		QoS:      statusQoS,
		Retained: true,
	}
}

// LivenessReporter publishes retained online/offline status on transitions.
type LivenessReporter struct {
	pub   mqttbus.IPublisher
	id    model.Identity
	topic string
	log   *zap.Logger

	mu     sync.Mutex
	online bool
}

func NewLivenessReporter(pub mqttbus.IPublisher, id model.Identity, log *zap.Logger) *LivenessReporter {
	return &LivenessReporter{pub: pub, id: id, topic: model.TopicsFor(id).Status, log: log}
}

func (l *LivenessReporter) IsOnline() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.online
}

// Online moves OFFLINE→ONLINE and publishes; it is a no-op when already online.
func (l *LivenessReporter) Online() error { return l.transition(true) }

// Offline moves ONLINE→OFFLINE and publishes; it is a no-op when already offline.
func (l *LivenessReporter) Offline() error { return l.transition(false) }

// Republish sends the current status again, e.g. after a reconnect where the
// broker may already have fired our will.
func (l *LivenessReporter) Republish() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.publish(l.online)
}

// The lock is held across the publish so two transitions cannot reorder
// on the wire.
func (l *LivenessReporter) transition(online bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.online == online {
		return nil
	}
	l.online = online
	return l.publish(online)
}

func (l *LivenessReporter) publish(online bool) error {
	payload, err := json.Marshal(model.Status{Site: l.id.Site, Node: l.id.Node, Online: online})
	if err != nil {
		return err
	}
	if err := l.pub.Publish(l.topic, statusQoS, true, payload); err != nil {
		return err
	}
	l.log.Info("status published", zap.String("topic", l.topic), zap.Bool("online", online))
	return nil
}
