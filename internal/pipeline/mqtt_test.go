package pipeline

import (
	"testing"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/annualtables/internal/config"
)

type fakeMessage struct {
	payload []byte
	id      uint16
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return "sim/timesteps" }
func (m fakeMessage) MessageID() uint16 { return m.id }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

var _ mqtt.Message = fakeMessage{}

func TestNewMQTTSubscriberValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MQTTConfig
	}{
		{name: "no broker", cfg: config.MQTTConfig{Topic: "t"}},
		{name: "no topic", cfg: config.MQTTConfig{Broker: "tcp://localhost:1883"}},
		{name: "bad qos", cfg: config.MQTTConfig{Broker: "tcp://localhost:1883", Topic: "t", QoS: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMQTTSubscriber(tt.cfg, make(chan []byte), zap.NewNop())
			require.ErrorIs(t, err, ErrInvalidMQTTConfig)
		})
	}
}

func TestMQTTForwardKeepsOrder(t *testing.T) {
	out := make(chan []byte, 3)
	s, err := NewMQTTSubscriber(config.MQTTConfig{Broker: "tcp://localhost:1883", Topic: "t", QoS: 1}, out, zap.NewNop())
	require.NoError(t, err)
	done := make(chan struct{})
	s.done = done

	for i, p := range []string{`{"hour":1}`, `{"hour":2}`, `{"type":"end"}`} {
		s.forward(fakeMessage{payload: []byte(p), id: uint16(i + 1)})
	}
	assert.Equal(t, `{"hour":1}`, string(<-out))
	assert.Equal(t, `{"hour":2}`, string(<-out))
	assert.Equal(t, `{"type":"end"}`, string(<-out))
}

func TestMQTTForwardDropsAfterCancel(t *testing.T) {
	out := make(chan []byte) // unbuffered and never read
	s, err := NewMQTTSubscriber(config.MQTTConfig{Broker: "tcp://localhost:1883", Topic: "t"}, out, zap.NewNop())
	require.NoError(t, err)
	done := make(chan struct{})
	close(done)
	s.done = done

	s.forward(fakeMessage{payload: []byte(`{}`)})
	assert.Len(t, out, 0)
}

func TestNewPipelineMQTTMode(t *testing.T) {
	cfg := testConfig(t, replayFrames)
	cfg.Input = config.InputConfig{Mode: config.InputModeMQTT}
	cfg.MQTT = config.MQTTConfig{Broker: "tcp://localhost:1883", Topic: "sim/timesteps", QoS: 1}

	p := newTestPipeline(t, cfg)
	_, ok := p.source.(*MQTTSubscriber)
	assert.True(t, ok)
}
