// Package mqttbridge classifies feature vectors published by field sensors over
// MQTT. Sensors publish {"features": [...]} to <prefix>/<device>/features; the
// result, or an error payload, is published to <prefix>/<device>/prediction.
package mqttbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/Brownie44l1/fault-api/internal/config"
	"github.com/Brownie44l1/fault-api/internal/model"
	"github.com/Brownie44l1/fault-api/internal/predictor"
)

const (
	featuresSuffix   = "features"
	predictionSuffix = "prediction"
	publishTimeout   = 5 * time.Second
)

// Client is the part of mqtt.Client the bridge uses.
type Client interface {
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

type Bridge struct {
	client    Client
	predictor *predictor.Predictor
	prefix    string
	qos       byte
	logger    *slog.Logger
}

func New(client Client, p *predictor.Predictor, prefix string, qos int, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		client:    client,
		predictor: p,
		prefix:    strings.TrimSuffix(prefix, "/"),
		qos:       byte(qos),
		logger:    logger,
	}
}

// Connect dials the broker and subscribes. The subscription is renewed on every
// reconnect.
func Connect(cfg config.MQTTConfig, p *predictor.Predictor, logger *slog.Logger) (*Bridge, error) {
	b := New(nil, p, cfg.TopicPrefix, cfg.QoS, logger)

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "fault-api-" + uuid.NewString()[:8]
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetOrderMatters(false)
	opts.OnConnect = func(c mqtt.Client) {
		if err := b.subscribe(c); err != nil {
			b.logger.Error("mqtt subscribe failed", "error", err)
		}
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		b.logger.Warn("mqtt connection lost", "error", err)
	}

	client := mqtt.NewClient(opts)
	b.client = client
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, token.Error())
	}

	b.logger.Info("mqtt bridge connected", "broker", cfg.Broker, "topic", b.FeaturesTopic())
	return b, nil
}

// FeaturesTopic is the wildcard subscription for all devices.
func (b *Bridge) FeaturesTopic() string {
	return b.prefix + "/+/" + featuresSuffix
}

func (b *Bridge) Subscribe() error {
	return b.subscribe(b.client)
}

func (b *Bridge) subscribe(c Client) error {
	token := c.Subscribe(b.FeaturesTopic(), b.qos, b.onMessage)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (b *Bridge) Close() {
	if b.client != nil {
		b.client.Disconnect(250)
	}
}

func (b *Bridge) onMessage(_ mqtt.Client, msg mqtt.Message) {
	topic, payload, ok := b.process(msg.Topic(), msg.Payload())
	if !ok {
		return
	}

	token := b.client.Publish(topic, b.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		b.logger.Warn("mqtt publish timed out", "topic", topic)
		return
	}
	if err := token.Error(); err != nil {
		b.logger.Error("mqtt publish failed", "topic", topic, "error", err)
	}
}

// process classifies one message and returns the reply topic and payload.
// ok is false for topics that do not name a device.
func (b *Bridge) process(topic string, payload []byte) (string, []byte, bool) {
	device, ok := b.deviceFromTopic(topic)
	if !ok {
		b.logger.Warn("mqtt message on unexpected topic", "topic", topic)
		return "", nil, false
	}

	requestID := uuid.NewString()
	var reply any
	result, err := b.predictor.Handle(context.Background(), "mqtt", requestID, payload)
	switch {
	case err == nil:
		reply = result
	case errors.Is(err, model.ErrInvalidFeatures):
		reply = model.ErrorResponse{Error: model.InvalidFeaturesMessage}
	case errors.Is(err, predictor.ErrInvalidJSON):
		reply = model.ErrorResponse{Error: "Invalid JSON"}
	default:
		b.logger.Error("prediction error", "request_id", requestID, "device", device, "error", err)
		reply = model.ErrorResponse{Error: "Prediction failed"}
	}

	out, err := json.Marshal(reply)
	if err != nil {
		b.logger.Error("encode mqtt reply", "device", device, "error", err)
		return "", nil, false
	}
	return b.prefix + "/" + device + "/" + predictionSuffix, out, true
}

func (b *Bridge) deviceFromTopic(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, b.prefix+"/")
	if !ok {
		return "", false
	}
	device, ok := strings.CutSuffix(rest, "/"+featuresSuffix)
	if !ok || device == "" || strings.Contains(device, "/") {
		return "", false
	}
	return device, true
}
