package config

import "errors"

var (
	ErrReadingConfigFile   = errors.New("failed to read config file")
	ErrUnmarshallingConfig = errors.New("failed to unmarshal config")
	ErrConfigFileMissing   = errors.New("config file not found")
	ErrEmptyKafkaBrokers   = errors.New("kafka brokers list cannot be empty")
	ErrEmptyKafkaTopic     = errors.New("kafka topic cannot be empty")
	ErrEmptyKafkaGroupID   = errors.New("kafka groupID cannot be empty")
	ErrEmptyMQTTBroker     = errors.New("mqtt broker cannot be empty")
	ErrEmptyMQTTTopic      = errors.New("mqtt topic cannot be empty")
	ErrInvalidMQTTQoS      = errors.New("mqtt qos must be 0, 1 or 2")
	ErrInvalidInputMode    = errors.New("input mode must be kafka, mqtt or file")
	ErrEmptyInputPath      = errors.New("input path cannot be empty in file mode")
	ErrInvalidUnitStyle    = errors.New("invalid report unitStyle")
	ErrNoReportOutputs     = errors.New("report needs at least one format or a sqlitePath")
	ErrEmptyMetricsAddr    = errors.New("metrics listenAddr cannot be empty when metrics are enabled")
	ErrNoTables            = errors.New("at least one table must be configured")
	ErrInvalidVariable     = errors.New("invalid variable declaration")
)
