// Package config holds the list server configuration, read from YAML.
package config

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

// Config defines the full server configuration.
type Config struct {
	Log      Log      `yaml:"log"`
	GRPC     GRPC     `yaml:"grpc"`
	Metrics  Metrics  `yaml:"metrics"`
	DataDir  string   `yaml:"datadir"`
	WAL      WAL      `yaml:"wal"`
	Snapshot Snapshot `yaml:"snapshot"`
	Outbox   Outbox   `yaml:"outbox"`
	Kafka    Kafka    `yaml:"kafka"`
	Memory   Memory   `yaml:"memory"`
}

type Log struct {
	// Level is a logrus level name: debug, info, warn, error.
	Level string `yaml:"level"`
	// Formatter is "text" or "json".
	Formatter string `yaml:"formatter"`
}

type GRPC struct {
	Addr string `yaml:"addr"`
}

// Metrics serves Prometheus metrics when Addr is set.
type Metrics struct {
	Addr string `yaml:"addr"`
}

type WAL struct {
	Dir             string        `yaml:"dir"`
	SegmentSize     int64         `yaml:"segmentsize"`
	SegmentDuration time.Duration `yaml:"segmentduration"`
	SyncEveryWrite  bool          `yaml:"synceverywrite"`
}

type Snapshot struct {
	Dir      string        `yaml:"dir"`
	Interval time.Duration `yaml:"interval"`
}

type Outbox struct {
	Dir string `yaml:"dir"`
}

// Kafka publishes list change events when Enabled.
type Kafka struct {
	Enabled    bool          `yaml:"enabled"`
	Driver     string        `yaml:"driver"`
	Brokers    []string      `yaml:"brokers"`
	Topic      string        `yaml:"topic"`
	Interval   time.Duration `yaml:"interval"`
	MaxRetries int           `yaml:"maxretries"`
}

type Memory struct {
	// NodeBudget caps live list nodes; 0 means unbounded.
	NodeBudget int64 `yaml:"nodebudget"`
}

// Parse reads YAML from r, fills defaults and validates the result.
func Parse(r io.Reader) (*Config, error) {
	in, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	cfg := new(Config)
	if err := yaml.UnmarshalStrict(in, cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := new(Config)
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Formatter == "" {
		c.Log.Formatter = "text"
	}
	if c.GRPC.Addr == "" {
		c.GRPC.Addr = ":50051"
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.WAL.Dir == "" {
		c.WAL.Dir = filepath.Join(c.DataDir, "wal")
	}
	if c.WAL.SegmentSize == 0 {
		c.WAL.SegmentSize = 2 * 1024 * 1024
	}
	if c.WAL.SegmentDuration == 0 {
		c.WAL.SegmentDuration = 5 * time.Minute
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = filepath.Join(c.DataDir, "snapshot")
	}
	if c.Snapshot.Interval == 0 {
		c.Snapshot.Interval = time.Minute
	}
	if c.Outbox.Dir == "" {
		c.Outbox.Dir = filepath.Join(c.DataDir, "outbox")
	}
	if c.Kafka.Driver == "" {
		c.Kafka.Driver = "sarama"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "linkedlist.events"
	}
	if c.Kafka.Interval == 0 {
		c.Kafka.Interval = 250 * time.Millisecond
	}
}

func (c *Config) Validate() error {
	switch c.Log.Formatter {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported logging formatter: %q", c.Log.Formatter)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka enabled without brokers")
	}
	switch c.Kafka.Driver {
	case "sarama", "kafka-go":
	default:
		return fmt.Errorf("unsupported kafka driver: %q", c.Kafka.Driver)
	}
	if c.Memory.NodeBudget < 0 {
		return fmt.Errorf("memory.nodebudget must not be negative")
	}
	return nil
}
