package mqttbus

import (
	"context"
	"fmt"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

type Handler func(topic string, message mqtt.Message) error

// IConsumer is the inbound side of the bus.
type IConsumer interface {
	ConsumeMessage(ctx context.Context)
	SetHandler(handler Handler)
	Subscribe() error
}

// Consumer binds one topic filter to a handler.
type Consumer struct {
	client mqtt.Client
	topic  string
	qos    byte
	log    *zap.Logger

	mu      sync.RWMutex
	handler Handler
}

func NewConsumer(client mqtt.Client, topic string, qos byte, handler Handler, log *zap.Logger) *Consumer {
	return &Consumer{client: client, topic: topic, qos: qos, handler: handler, log: log}
}

func (c *Consumer) SetHandler(handler Handler) {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
}

func (c *Consumer) dispatch(_ mqtt.Client, message mqtt.Message) {
	c.mu.RLock()
	h := c.handler
	c.mu.RUnlock()
	if h == nil {
		c.log.Warn("no handler set", zap.String("topic", c.topic))
		return
	}
	if err := h(message.Topic(), message); err != nil {
		c.log.Warn("error handling message", zap.String("topic", message.Topic()), zap.Error(err))
	}
}

// Subscribe (re)registers the subscription. With a clean session the broker
// forgets it on reconnect, so the reconnect hook calls this again.
func (c *Consumer) Subscribe() error {
	token := c.client.Subscribe(c.topic, c.qos, c.dispatch)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", c.topic, token.Error())
	}
	c.log.Info("subscribed", zap.String("topic", c.topic), zap.Uint8("qos", c.qos))
	return nil
}

// ConsumeMessage subscribes and blocks until ctx is cancelled.
func (c *Consumer) ConsumeMessage(ctx context.Context) {
	if err := c.Subscribe(); err != nil {
		c.log.Error("subscription failed", zap.Error(err))
		return
	}
	<-ctx.Done()
	if c.client.IsConnectionOpen() {
		c.client.Unsubscribe(c.topic).Wait()
	}
}
