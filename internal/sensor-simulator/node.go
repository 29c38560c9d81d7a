package sensor_simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/farm-node/internal/control"
	"github.com/LeonardoBeccarini/farm-node/internal/model"
	"github.com/LeonardoBeccarini/farm-node/internal/model/messages"
	"github.com/LeonardoBeccarini/farm-node/pkg/dedup"
	"github.com/LeonardoBeccarini/farm-node/pkg/mqttbus"
)

const (
	telemetryQoS byte = 0
	controlQoS   byte = 1
)

// NodeSimulator is one farm node: the publish loop on one side, the
// command handler on the other, both sharing a single control.State.
type NodeSimulator struct {
	id        model.Identity
	topics    model.Topics
	state     *control.State
	arbiter   *control.Arbiter
	source    Source
	publisher mqttbus.IPublisher
	consumer  mqttbus.IConsumer
	liveness  *LivenessReporter
	deduper   *dedup.Deduper
	metrics   *Metrics
	log       *zap.Logger
}

func NewNodeSimulator(id model.Identity, th model.Thresholds, source Source,
	publisher mqttbus.IPublisher, consumer mqttbus.IConsumer, metrics *Metrics, log *zap.Logger) (*NodeSimulator, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, errors.New("telemetry source is nil")
	}
	log = log.With(zap.String("site", id.Site), zap.String("node", id.Node))
	state := control.NewState()
	return &NodeSimulator{
		id:        id,
		topics:    model.TopicsFor(id),
		state:     state,
		arbiter:   control.NewArbiter(state, th),
		source:    source,
		publisher: publisher,
		consumer:  consumer,
		liveness:  NewLivenessReporter(publisher, id, log),
		deduper:   dedup.New(2*time.Minute, 1000),
		metrics:   metrics,
		log:       log,
	}, nil
}

func (s *NodeSimulator) State() control.Snapshot { return s.state.Snapshot() }

func (s *NodeSimulator) Liveness() *LivenessReporter { return s.liveness }

// Start announces the node online, then publishes a cycle immediately and
// every interval until ctx is cancelled, when it announces offline. The
// caller disconnects the transport after Start returns.
func (s *NodeSimulator) Start(ctx context.Context, interval time.Duration) {
	s.consumer.SetHandler(s.handleMessage)
	go s.consumer.ConsumeMessage(ctx)

	if err := s.liveness.Online(); err != nil {
		s.metrics.PublishErrors.WithLabelValues("status").Inc()
		s.log.Error("online status publish failed", zap.Error(err))
	}

	s.runCycle()
	for {
		select {
		case <-ctx.Done():
			if err := s.liveness.Offline(); err != nil {
				s.metrics.PublishErrors.WithLabelValues("status").Inc()
				s.log.Error("offline status publish failed", zap.Error(err))
			}
			return
		case <-time.After(interval):
			s.runCycle()
		}
	}
}

// Reconnected restores what a clean session loses: the cmd subscription and
// our online status, which the broker may have replaced with the will.
func (s *NodeSimulator) Reconnected() {
	if err := s.consumer.Subscribe(); err != nil {
		s.log.Error("resubscribe failed", zap.Error(err))
	}
	if err := s.liveness.Republish(); err != nil {
		s.metrics.PublishErrors.WithLabelValues("status").Inc()
		s.log.Error("status republish failed", zap.Error(err))
	}
}

func (s *NodeSimulator) runCycle() {
	s.metrics.Cycles.Inc()

	r, err := s.source.Next(s.state.Snapshot().IrrigationOn)
	if err != nil {
		s.metrics.SourceErrors.Inc()
		s.log.Warn("telemetry source error", zap.Error(err))
		return
	}
	out := s.arbiter.Resolve(r)

	s.metrics.Decisions.WithLabelValues(string(out.Decision)).Inc()
	boolGauge(s.metrics.IrrigationOn, out.Irrigation)
	boolGauge(s.metrics.Manual, out.Decision == control.DecisionManual)

	if err := s.publishJSON(s.topics.Telemetry, telemetryQoS, messages.NewTelemetry(s.id, r)); err != nil {
		s.metrics.PublishErrors.WithLabelValues("telemetry").Inc()
		s.log.Warn("telemetry publish failed", zap.Error(err))
	}
	ctrl := messages.NewCycleControl(s.id, out.Irrigation, string(out.Decision), out.Reason, r.SoilMoisture, s.arbiter.Thresholds())
	if err := s.publishJSON(s.topics.Control, controlQoS, ctrl); err != nil {
		s.metrics.PublishErrors.WithLabelValues("control").Inc()
		s.log.Warn("control publish failed", zap.Error(err))
	}

	s.log.Info("cycle",
		zap.Float64("soil_moisture", r.SoilMoisture),
		zap.Float64("temperature", r.Temperature),
		zap.Float64("humidity", r.Humidity),
		zap.Float64("ph", r.PH),
		zap.String("decision", string(out.Decision)),
		zap.Bool("irrigation", out.Irrigation),
		zap.String("reason", out.Reason))
}

func (s *NodeSimulator) handleMessage(topic string, msg mqtt.Message) error {
	// QoS1 redelivery carries the same payload; only drop flagged duplicates
	// so a user repeating a command still gets an ack.
	seen := s.deduper.Seen(dedup.PayloadKey(msg.Payload()))
	if msg.Duplicate() && seen {
		s.metrics.Commands.WithLabelValues("duplicate").Inc()
		s.log.Debug("duplicate command dropped", zap.String("topic", topic))
		return nil
	}

	_, err := s.HandleCommand(msg.Payload())
	if errors.Is(err, ErrMalformedCommand) {
		s.log.Warn("bad cmd payload discarded", zap.String("topic", topic), zap.Error(err))
		return nil
	}
	return err
}

// HandleCommand applies a manual override and publishes its ack. A
// malformed payload changes nothing and publishes nothing.
func (s *NodeSimulator) HandleCommand(payload []byte) (model.Control, error) {
	cmd, err := ParseCommand(payload)
	if err != nil {
		s.metrics.Commands.WithLabelValues("rejected").Inc()
		return model.Control{}, err
	}

	s.state.ApplyOverride(cmd.Irrigation, cmd.Reason)
	s.metrics.Commands.WithLabelValues("accepted").Inc()
	boolGauge(s.metrics.IrrigationOn, cmd.Irrigation)
	boolGauge(s.metrics.Manual, true)

	ack := messages.NewAck(s.id, cmd.Irrigation, cmd.Reason)
	if err := s.publishJSON(s.topics.Control, controlQoS, ack); err != nil {
		s.metrics.PublishErrors.WithLabelValues("ack").Inc()
		return ack, fmt.Errorf("publish ack: %w", err)
	}
	s.log.Info("cmd received, ack sent", zap.Bool("irrigation", cmd.Irrigation), zap.String("reason", cmd.Reason))
	return ack, nil
}

func (s *NodeSimulator) publishJSON(topic string, qos byte, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.publisher.Publish(topic, qos, false, b)
}
