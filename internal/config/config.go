package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/sanspareilsmyn/annualtables/internal/units"
)

const (
	defaultInputMode       = InputModeKafka
	defaultKafkaGroupID    = "annualtables-default-group"
	defaultMQTTClientID    = "annualtables"
	defaultMQTTQoS         = 1
	defaultUnitStyle       = "None"
	defaultReportOutput    = "-"
	defaultMetricsEnabled  = false
	defaultMetricsAddr     = ":9102"
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
	defaultLogFileEnabled  = false
	defaultLogDirectory    = "log"
	defaultLogFilename     = "annualtables.log"
	defaultLogMaxSizeMB    = 100
	defaultLogMaxBackups   = 3
	defaultLogMaxAgeDays   = 7
	defaultLogCompress     = false
	defaultReportFormatTxt = "text"

	// Environment variable prefix
	envPrefix = "ANNUALTABLES"
)

// Input modes.
const (
	InputModeKafka = "kafka"
	InputModeFile  = "file"
	InputModeMQTT  = "mqtt"
)

type Config struct {
	Log       LogConfig        `mapstructure:"log"`
	Input     InputConfig      `mapstructure:"input"`
	Kafka     KafkaConfig      `mapstructure:"kafka"`
	MQTT      MQTTConfig       `mapstructure:"mqtt"`
	Report    ReportConfig     `mapstructure:"report"`
	Metrics   MetricsConfig    `mapstructure:"metrics"`
	Variables []VariableConfig `mapstructure:"variables"`
	Tables    []TableConfig    `mapstructure:"tables"`
}

type InputConfig struct {
	Mode string `mapstructure:"mode"` // "kafka", "mqtt" or "file"
	Path string `mapstructure:"path"` // JSONL replay file when mode is "file"
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"groupID"`
}

type MQTTConfig struct {
	Broker   string `mapstructure:"broker"` // e.g. tcp://localhost:1883
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"clientID"`
	QoS      byte   `mapstructure:"qos"`
}

type ReportConfig struct {
	UnitStyle  string   `mapstructure:"unitStyle"`  // None, JtoKWH, JtoMJ, JtoGJ
	Formats    []string `mapstructure:"formats"`    // text, markdown, csv, html
	OutputPath string   `mapstructure:"outputPath"` // "-" writes to stdout
	SQLitePath string   `mapstructure:"sqlitePath"` // empty disables the tabular store
	TOCPath    string   `mapstructure:"tocPath"`    // empty disables the HTML index
}

type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listenAddr"`
}

// VariableConfig declares one value source and the keys it reports under.
type VariableConfig struct {
	Name        string   `mapstructure:"name"`
	Units       string   `mapstructure:"units"`
	Accumulated bool     `mapstructure:"accumulated"`
	Cadence     string   `mapstructure:"cadence"` // "zone" (default) or "system"
	Keys        []string `mapstructure:"keys"`
}

// TableConfig is one annual table: a name and its ordered fields.
type TableConfig struct {
	Name   string        `mapstructure:"name"`
	Fields []FieldConfig `mapstructure:"fields"`
}

type FieldConfig struct {
	Variable    string `mapstructure:"variable"`
	Aggregation string `mapstructure:"aggregation"`
	Digits      *int   `mapstructure:"digits"`
	Header      string `mapstructure:"header"`
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"`
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`
}

// Style returns the parsed unit style. Load has already validated it.
func (r ReportConfig) Style() units.Style {
	s, _ := units.ParseStyle(r.UnitStyle)
	return s
}

// Load initializes viper, reads config, applies defaults, unmarshals, and validates.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	configureViper(v, configPath)

	setDefaults(v)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configureViper sets up viper instance for file and environment variables.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults applies default configuration values using Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input.mode", defaultInputMode)
	v.SetDefault("kafka.groupID", defaultKafkaGroupID)
	v.SetDefault("mqtt.clientID", defaultMQTTClientID)
	v.SetDefault("mqtt.qos", defaultMQTTQoS)
	v.SetDefault("report.unitStyle", defaultUnitStyle)
	v.SetDefault("report.formats", []string{defaultReportFormatTxt})
	v.SetDefault("report.outputPath", defaultReportOutput)
	v.SetDefault("metrics.enabled", defaultMetricsEnabled)
	v.SetDefault("metrics.listenAddr", defaultMetricsAddr)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
}

// readConfigFile attempts to read the configuration file specified in viper.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return ErrConfigFileMissing
		}
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	cfg.Input.Mode = strings.ToLower(strings.TrimSpace(cfg.Input.Mode))
	switch cfg.Input.Mode {
	case InputModeKafka:
		if len(cfg.Kafka.Brokers) == 0 {
			return ErrEmptyKafkaBrokers
		}
		if cfg.Kafka.Topic == "" {
			return ErrEmptyKafkaTopic
		}
		if cfg.Kafka.GroupID == "" {
			return ErrEmptyKafkaGroupID
		}
	case InputModeMQTT:
		if cfg.MQTT.Broker == "" {
			return ErrEmptyMQTTBroker
		}
		if cfg.MQTT.Topic == "" {
			return ErrEmptyMQTTTopic
		}
		if cfg.MQTT.QoS > 2 {
			return fmt.Errorf("%w: %d", ErrInvalidMQTTQoS, cfg.MQTT.QoS)
		}
	case InputModeFile:
		if cfg.Input.Path == "" {
			return ErrEmptyInputPath
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidInputMode, cfg.Input.Mode)
	}

	if _, err := units.ParseStyle(cfg.Report.UnitStyle); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUnitStyle, err)
	}
	if len(cfg.Report.Formats) == 0 && cfg.Report.SQLitePath == "" {
		return ErrNoReportOutputs
	}
	if cfg.Metrics.Enabled && cfg.Metrics.ListenAddr == "" {
		return ErrEmptyMetricsAddr
	}
	if len(cfg.Tables) == 0 {
		return ErrNoTables
	}
	return nil
}
