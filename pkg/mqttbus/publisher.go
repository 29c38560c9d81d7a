package mqttbus

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var ErrPublishTimeout = errors.New("publish timed out")

// IPublisher is the outbound side of the bus.
type IPublisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

type PublisherOptions struct {
	// Timeout bounds the wait on a single publish token.
	Timeout time.Duration
	// BreakerFailures consecutive failures open the breaker.
	BreakerFailures uint32
	// BreakerOpenFor is how long the breaker stays open before probing.
	BreakerOpenFor time.Duration
}

// Publisher publishes through a circuit breaker so that an unreachable
// broker costs one fast failure per call instead of a token timeout.
type Publisher struct {
	client  mqtt.Client
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	log     *zap.Logger
}

func NewPublisher(client mqtt.Client, opts PublisherOptions, log *zap.Logger) *Publisher {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerOpenFor <= 0 {
		opts.BreakerOpenFor = 10 * time.Second
	}
	failures := opts.BreakerFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "mqtt-publish",
		Timeout: opts.BreakerOpenFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return &Publisher{client: client, cb: cb, timeout: opts.Timeout, log: log}
}

func (p *Publisher) Publish(topic string, qos byte, retained bool, payload []byte) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		token := p.client.Publish(topic, qos, retained, payload)
		if !token.WaitTimeout(p.timeout) {
			return nil, ErrPublishTimeout
		}
		return nil, token.Error()
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	p.log.Debug("message published", zap.String("topic", topic), zap.Uint8("qos", qos), zap.Bool("retained", retained))
	return nil
}

func (p *Publisher) BreakerState() gobreaker.State { return p.cb.State() }
