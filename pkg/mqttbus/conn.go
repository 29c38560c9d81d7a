package mqttbus

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Will is the message the broker publishes for us if the session drops
// without a clean disconnect.
type Will struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	ClientID  string
	KeepAlive time.Duration
	// MaxRetries bounds the initial connection attempts; after the first
	// successful connect paho reconnects on its own.
	MaxRetries int
	Will       *Will
}

func (c *Config) BrokerURL() string { return fmt.Sprintf("tcp://%s:%d", c.Host, c.Port) }

// NewClientOptions maps cfg onto paho options. onReconnect runs on every
// connection after the first one.
func NewClientOptions(cfg *Config, log *zap.Logger, onReconnect func(mqtt.Client)) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL())
	opts.SetClientID(cfg.ClientID)
	if cfg.User != "" {
		opts.SetUsername(cfg.User)
		opts.SetPassword(cfg.Password)
	}
	keepAlive := cfg.KeepAlive
	if keepAlive <= 0 {
		keepAlive = 60 * time.Second
	}
	opts.SetKeepAlive(keepAlive)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	if w := cfg.Will; w != nil {
		opts.SetBinaryWill(w.Topic, w.Payload, w.QoS, w.Retained)
	}

	var connected atomic.Bool
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		if !connected.CompareAndSwap(false, true) {
			log.Info("mqtt reconnected", zap.String("broker", cfg.BrokerURL()))
			if onReconnect != nil {
				onReconnect(c)
			}
		}
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("mqtt connection lost", zap.Error(err))
	})
	return opts
}

// Connect dials the broker, retrying with exponential backoff until
// MaxRetries attempts fail or ctx is cancelled.
func Connect(ctx context.Context, cfg *Config, log *zap.Logger, onReconnect func(mqtt.Client)) (mqtt.Client, error) {
	opts := NewClientOptions(cfg, log, onReconnect)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			log.Warn("failed to connect to MQTT broker", zap.String("broker", cfg.BrokerURL()), zap.Error(token.Error()))
			return token.Error()
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(maxRetries-1)), ctx))
	if err != nil {
		return nil, fmt.Errorf("could not establish MQTT connection after retries: %w", err)
	}

	log.Info("connected to MQTT broker", zap.String("broker", cfg.BrokerURL()), zap.String("client_id", cfg.ClientID))
	return client, nil
}

// Close disconnects cleanly, so the broker discards the will.
func Close(client mqtt.Client, log *zap.Logger) {
	if client != nil && client.IsConnected() {
		client.Disconnect(250)
		log.Info("MQTT connection closed")
	}
}
