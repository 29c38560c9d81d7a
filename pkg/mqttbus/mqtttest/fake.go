// Package mqtttest provides in-memory stand-ins for paho clients, tokens and
// messages.
package mqtttest

import (
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Token is an already-completed token.
type Token struct {
	Err     error
	Timeout bool
}

func (t *Token) Wait() bool { return true }
func (t *Token) WaitTimeout(time.Duration) bool {
	return !t.Timeout
}
func (t *Token) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *Token) Error() error { return t.Err }

// Message implements mqtt.Message.
type Message struct {
	TopicName string
	Body      []byte
	QoS       byte
	Dup       bool
	Retain    bool
	ID        uint16
}

func (m *Message) Duplicate() bool   { return m.Dup }
func (m *Message) Qos() byte         { return m.QoS }
func (m *Message) Retained() bool    { return m.Retain }
func (m *Message) Topic() string     { return m.TopicName }
func (m *Message) MessageID() uint16 { return m.ID }
func (m *Message) Payload() []byte   { return m.Body }
func (m *Message) Ack()              {}

// Published records one Publish call.
type Published struct {
	Topic    string
	QoS      byte
	Retained bool
	Payload  []byte
}

// Client records publishes and subscriptions and lets tests deliver
// messages to subscribed handlers.
type Client struct {
	mu         sync.Mutex
	Connected  bool
	PublishErr error
	PubTimeout bool
	SubErr     error
	published  []Published
	subs       map[string]mqtt.MessageHandler
	subCalls   int
	unsubs     []string
	disconnect int
}

var _ mqtt.Client = (*Client)(nil)

func NewClient() *Client {
	return &Client{Connected: true, subs: map[string]mqtt.MessageHandler{}}
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Connected
}
func (c *Client) IsConnectionOpen() bool { return c.IsConnected() }
func (c *Client) Connect() mqtt.Token    { return &Token{} }
func (c *Client) Disconnect(uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Connected = false
	c.disconnect++
}

func (c *Client) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.PublishErr != nil || c.PubTimeout {
		return &Token{Err: c.PublishErr, Timeout: c.PubTimeout}
	}
	var b []byte
	switch p := payload.(type) {
	case []byte:
		b = append([]byte(nil), p...)
	case string:
		b = []byte(p)
	}
	c.published = append(c.published, Published{Topic: topic, QoS: qos, Retained: retained, Payload: b})
	return &Token{}
}

func (c *Client) Subscribe(topic string, _ byte, callback mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subCalls++
	if c.SubErr != nil {
		return &Token{Err: c.SubErr}
	}
	c.subs[topic] = callback
	return &Token{}
}

func (c *Client) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	for topic, qos := range filters {
		if t := c.Subscribe(topic, qos, callback); t.Error() != nil {
			return t
		}
	}
	return &Token{}
}

func (c *Client) Unsubscribe(topics ...string) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range topics {
		delete(c.subs, t)
		c.unsubs = append(c.unsubs, t)
	}
	return &Token{}
}

func (c *Client) AddRoute(string, mqtt.MessageHandler) {}

func (c *Client) OptionsReader() mqtt.ClientOptionsReader { return mqtt.ClientOptionsReader{} }

// Deliver hands msg to the handler subscribed on its topic. It reports
// whether a handler was found.
func (c *Client) Deliver(msg *Message) bool {
	c.mu.Lock()
	h, ok := c.subs[msg.TopicName]
	c.mu.Unlock()
	if !ok {
		return false
	}
	h(c, msg)
	return true
}

func (c *Client) Published() []Published {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Published(nil), c.published...)
}

func (c *Client) Subscribed(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.subs[topic]
	return ok
}

func (c *Client) SubscribeCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subCalls
}

func (c *Client) Unsubscribed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.unsubs...)
}

func (c *Client) Disconnects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnect
}
