package kafka

import (
	"context"
	"fmt"
	"time"
)

// Publisher delivers one keyed message to the configured topic.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
	Close() error
}

const (
	DriverSarama  = "sarama"
	DriverKafkaGo = "kafka-go"
)

type Config struct {
	Driver       string
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	MaxRetries   int
}

// New picks the publisher implementation named by cfg.Driver.
func New(cfg Config) (Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: no topic configured")
	}

	switch cfg.Driver {
	case "", DriverSarama:
		return NewSaramaProducer(cfg.Brokers, cfg.Topic, cfg.MaxRetries)
	case DriverKafkaGo:
		return NewProducer(cfg.Brokers, cfg.Topic, cfg.BatchTimeout), nil
	default:
		return nil, fmt.Errorf("kafka: unknown driver %q", cfg.Driver)
	}
}
