package pipeline

import "errors"

var (
	ErrInvalidKafkaConfig     = errors.New("invalid Kafka configuration provided")
	ErrKafkaFetchFailed       = errors.New("failed to fetch message from Kafka")
	ErrInvalidMQTTConfig      = errors.New("invalid MQTT configuration provided")
	ErrMQTTConnectFailed      = errors.New("failed to connect to MQTT broker")
	ErrConsumerCreationFailed = errors.New("failed to create consumer")
	ErrSourceRunFailed        = errors.New("input source failed")
	ErrReplayOpenFailed       = errors.New("failed to open replay file")
	ErrReplayReadFailed       = errors.New("failed to read replay file")
	ErrBindFailed             = errors.New("failed to bind report tables")
	ErrAccumulatorRunFailed   = errors.New("accumulator component failed")
	ErrPublisherRunFailed     = errors.New("publisher component failed")
	ErrPublishFailed          = errors.New("failed to publish report")
)
