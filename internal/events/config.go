package events

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config declares the sinks and retry policy of the dispatcher. The file is
// expanded with os.ExpandEnv before parsing so secrets can live in the
// environment.
type Config struct {
	Webhook WebhookConfig `yaml:"webhook"`
	Redis   RedisConfig   `yaml:"redis"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Retry   RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

// LoadConfig reads YAML from path. An empty path yields the zero config, which
// dispatches to no sinks.
func LoadConfig(path string) (Config, error) {
	var c Config
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &c); err != nil {
		return c, fmt.Errorf("events config %s: %w", path, err)
	}
	return c, nil
}

// BuildSinks constructs every enabled sink. Disabled sections are skipped.
func (c Config) BuildSinks() ([]Sink, error) {
	var sinks []Sink
	if wh := NewWebhookSink(c.Webhook); wh != nil {
		sinks = append(sinks, wh)
	}
	rs, err := NewRedisSink(c.Redis)
	if err != nil {
		return nil, err
	}
	if rs != nil {
		sinks = append(sinks, rs)
	}
	ks, err := NewKafkaSink(c.Kafka)
	if err != nil {
		return nil, err
	}
	if ks != nil {
		sinks = append(sinks, ks)
	}
	return sinks, nil
}
