package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaramaProducerPublish(t *testing.T) {
	mp := mocks.NewSyncProducer(t, nil)
	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"v":1}` {
			return errors.New("unexpected value " + string(val))
		}
		return nil
	})
	mp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewSaramaProducerFrom(mp, "lists")
	require.NoError(t, p.Publish(context.Background(), []byte("fruit"), []byte(`{"v":1}`)))
	assert.ErrorIs(t, p.Publish(context.Background(), []byte("fruit"), []byte("x")), sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestSaramaProducerCancelledContext(t *testing.T) {
	mp := mocks.NewSyncProducer(t, nil)
	p := NewSaramaProducerFrom(mp, "lists")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, nil, []byte("x")), context.Canceled)
	require.NoError(t, p.Close())
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{Topic: "lists"})
	assert.Error(t, err)

	_, err = New(Config{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)

	_, err = New(Config{Driver: "carrier-pigeon", Brokers: []string{"localhost:9092"}, Topic: "lists"})
	assert.Error(t, err)
}

func TestNewKafkaGoDriver(t *testing.T) {
	p, err := New(Config{Driver: DriverKafkaGo, Brokers: []string{"localhost:9092"}, Topic: "lists"})
	require.NoError(t, err)
	_, ok := p.(*Producer)
	assert.True(t, ok)
	// nothing was written, so closing does not dial the broker
	assert.NoError(t, p.Close())
}
