package pipeline

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/annualtables/internal/config"
)

const (
	mqttConnectTimeout = 10 * time.Second
	mqttQuiesceMillis  = 250
)

type mqttZapLogger struct {
	log *zap.SugaredLogger
}

func (l mqttZapLogger) Println(v ...interface{})               { l.log.Error(v...) }
func (l mqttZapLogger) Printf(format string, v ...interface{}) { l.log.Errorf(format, v...) }

// MQTTSubscriber receives timestep frames published to an MQTT topic. Like the
// Kafka consumer it never finishes on its own.
type MQTTSubscriber struct {
	client mqtt.Client
	cfg    config.MQTTConfig
	output chan<- []byte
	logger *zap.Logger
	done   <-chan struct{}
}

// NewMQTTSubscriber validates cfg and prepares a client. It does not connect.
func NewMQTTSubscriber(cfg config.MQTTConfig, output chan<- []byte, logger *zap.Logger) (*MQTTSubscriber, error) {
	if cfg.Broker == "" || cfg.Topic == "" || cfg.QoS > 2 {
		logger.Error("MQTT configuration validation failed",
			zap.String("broker", cfg.Broker),
			zap.String("topic", cfg.Topic),
			zap.Uint8("qos", cfg.QoS),
		)
		return nil, ErrInvalidMQTTConfig
	}

	// paho logs through package level loggers.
	mqtt.ERROR = mqttZapLogger{logger.Named("mqtt-error").Sugar()}
	mqtt.CRITICAL = mqttZapLogger{logger.Named("mqtt-critical").Sugar()}

	s := &MQTTSubscriber{
		cfg:    cfg,
		output: output,
		logger: logger,
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetCleanSession(false).
		SetOrderMatters(true).
		SetAutoReconnect(true).
		SetConnectTimeout(mqttConnectTimeout).
		SetOnConnectHandler(s.subscribe).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn("MQTT connection lost, reconnecting", zap.Error(err))
		})
	s.client = mqtt.NewClient(opts)

	logger.Info("MQTT subscriber created",
		zap.String("broker", cfg.Broker),
		zap.String("topic", cfg.Topic),
		zap.String("client_id", cfg.ClientID),
		zap.Uint8("qos", cfg.QoS),
	)
	return s, nil
}

// Run connects, subscribes (again after every reconnect) and blocks until ctx is
// cancelled.
func (s *MQTTSubscriber) Run(ctx context.Context) error {
	sugar := s.logger.Sugar()
	sugar.Info("Starting MQTT subscriber...")
	s.done = ctx.Done()

	token := s.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		s.client.Disconnect(0)
		return context.Canceled
	}
	if err := token.Error(); err != nil {
		s.logger.Error("Failed to connect to MQTT broker", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrMQTTConnectFailed, err)
	}

	<-ctx.Done()
	if t := s.client.Unsubscribe(s.cfg.Topic); t.WaitTimeout(time.Second) && t.Error() != nil {
		sugar.Warnw("Failed to unsubscribe cleanly", zap.Error(t.Error()))
	}
	s.client.Disconnect(mqttQuiesceMillis)
	sugar.Info("MQTT subscriber stopped.")
	return context.Canceled
}

func (s *MQTTSubscriber) subscribe(c mqtt.Client) {
	token := c.Subscribe(s.cfg.Topic, s.cfg.QoS, func(_ mqtt.Client, m mqtt.Message) {
		s.forward(m)
	})
	if token.WaitTimeout(mqttConnectTimeout) && token.Error() != nil {
		s.logger.Error("Failed to subscribe", zap.String("topic", s.cfg.Topic), zap.Error(token.Error()))
		return
	}
	s.logger.Info("Subscribed", zap.String("topic", s.cfg.Topic))
}

// forward hands one payload downstream. Handlers run in order, so blocking here
// applies backpressure to the broker connection.
func (s *MQTTSubscriber) forward(m mqtt.Message) {
	select {
	case s.output <- m.Payload():
	case <-s.done:
		s.logger.Debug("Dropping MQTT message after cancellation", zap.Uint16("message_id", m.MessageID()))
	}
}
