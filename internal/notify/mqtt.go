// Package notify forwards game events to an MQTT broker.
package notify

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/blinkgame/internal/game"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// ErrConnectTimeout is returned when the broker does not accept the
// connection in time.
var ErrConnectTimeout = errors.New("mqtt connect timed out")

// publishTimeout bounds how long a delivery is tracked before it is
// reported as lost.
const publishTimeout = 5 * time.Second

// MQTTConfig holds broker connection settings.
type MQTTConfig struct {
	Broker string
	// Topic is the prefix; events go to Topic/<event type>.
	Topic string
	QoS   byte
	// ClientID defaults to a random UUID.
	ClientID       string
	ConnectTimeout time.Duration
}

// MQTTPublisher publishes events as JSON. It implements game.Publisher and
// never waits on the broker from the caller's goroutine.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
	qos    byte
	log    logrus.FieldLogger
}

// DialMQTT connects to the broker described by cfg.
func DialMQTT(cfg MQTTConfig, log logrus.FieldLogger) (*MQTTPublisher, error) {
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.NewString()
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	opts := mqtt.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.SetKeepAlive(2 * time.Second)
	opts.SetPingTimeout(1 * time.Second)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.OnConnect = func(mqtt.Client) {
		log.WithField("broker", cfg.Broker).Info("connected to MQTT")
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("%w: %s", ErrConnectTimeout, cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, err)
	}

	return NewMQTTPublisher(client, cfg.Topic, cfg.QoS, log), nil
}

// NewMQTTPublisher wraps an already connected client.
func NewMQTTPublisher(client mqtt.Client, topic string, qos byte, log logrus.FieldLogger) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic, qos: qos, log: log}
}

// Topic returns the topic events of type t are published to.
func (p *MQTTPublisher) Topic(t game.EventType) string {
	return p.topic + "/" + string(t)
}

// Publish sends e to the broker. Delivery failures are logged.
func (p *MQTTPublisher) Publish(e game.Event) {
	payload, err := jsoniter.Marshal(e)
	if err != nil {
		p.log.WithError(err).Error("marshal event")
		return
	}

	topic := p.Topic(e.Type)
	token := p.client.Publish(topic, p.qos, false, payload)
	go func() {
		log := p.log.WithFields(logrus.Fields{"topic": topic, "session_id": e.SessionID})
		if !token.WaitTimeout(publishTimeout) {
			log.Warn("mqtt publish timed out")
			return
		}
		if err := token.Error(); err != nil {
			log.WithError(err).Warn("mqtt publish failed")
		}
	}()
}

// Close disconnects from the broker, giving in-flight messages a moment
// to drain.
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
