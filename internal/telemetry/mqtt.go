package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"roomhub/internal/models"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second
	defaultKeepAlive      = 30 * time.Second
)

// ErrPublishTimeout is returned when the broker does not acknowledge in time.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

type MQTTConfig struct {
	Broker      string // tcp://host:1883
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

// publisher is the part of pahomqtt.Client the sink needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
}

// MQTTSink publishes each batch as one JSON message on <prefix>/rooms/<roomId>/datapoints.
type MQTTSink struct {
	client publisher
	prefix string
	qos    byte
}

func NewMQTTSink(client publisher, prefix string, qos byte) *MQTTSink {
	return &MQTTSink{client: client, prefix: prefix, qos: qos}
}

type batchMessage struct {
	RoomID string                   `json:"roomId"`
	Points []models.DeviceDataPoint `json:"points"`
}

func (s *MQTTSink) Topic(roomID string) string {
	return fmt.Sprintf("%s/rooms/%s/datapoints", s.prefix, roomID)
}

func (s *MQTTSink) Publish(ctx context.Context, roomID string, points []models.DeviceDataPoint) error {
	payload, err := json.Marshal(batchMessage{RoomID: roomID, Points: points})
	if err != nil {
		return fmt.Errorf("encode datapoints: %w", err)
	}

	wait := defaultPublishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		wait = time.Until(deadline)
	}
	token := s.client.Publish(s.Topic(roomID), s.qos, false, payload)
	if !token.WaitTimeout(wait) {
		return ErrPublishTimeout
	}
	return token.Error()
}

// ConnectMQTT dials the broker with auto-reconnect enabled.
func ConnectMQTT(cfg MQTTConfig) (pahomqtt.Client, error) {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("connect mqtt %s: timeout after %v", cfg.Broker, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect mqtt %s: %w", cfg.Broker, err)
	}
	return client, nil
}
