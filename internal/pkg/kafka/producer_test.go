package kafka

import (
	"context"
	"errors"
	"testing"

	"payja-lending/internal/pkg/config"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "payja.loan.events"

type MockProducer struct {
	ProduceFunc func(msg *kafka.Message, deliveryChan chan kafka.Event) error
	flushed     bool
	closed      bool
}

func (m *MockProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	if m.ProduceFunc != nil {
		return m.ProduceFunc(msg, deliveryChan)
	}
	return nil
}

func (m *MockProducer) Flush(int) int { m.flushed = true; return 0 }
func (m *MockProducer) Close()        { m.closed = true }

func TestNewKafkaProducer(t *testing.T) {
	producer, err := NewKafkaProducer(config.KafkaConfig{
		Server:          "localhost:9092",
		LoanEventsTopic: testTopic,
		ClientID:        "payja-test",
	})
	require.NoError(t, err)
	defer producer.Close()
	assert.Equal(t, testTopic, producer.topic)
}

func TestNewKafkaProducerInvalidProtocol(t *testing.T) {
	_, err := NewKafkaProducer(config.KafkaConfig{
		Server:           "localhost:9092",
		LoanEventsTopic:  testTopic,
		SecurityProtocol: "INVALID_PROTOCOL",
	})
	assert.Error(t, err)
}

func TestPublish(t *testing.T) {
	t.Run("delivered", func(t *testing.T) {
		var produced *kafka.Message
		mp := &MockProducer{ProduceFunc: func(msg *kafka.Message, ch chan kafka.Event) error {
			produced = msg
			ch <- &kafka.Message{TopicPartition: kafka.TopicPartition{Topic: msg.TopicPartition.Topic}}
			return nil
		}}
		kp := NewKafkaProducerWithInterface(mp, testTopic)

		err := kp.Publish(context.Background(), "loan-1", []byte(`{"type":"LOAN_CREATED"}`))
		require.NoError(t, err)
		assert.Equal(t, "loan-1", string(produced.Key))
		assert.Equal(t, testTopic, *produced.TopicPartition.Topic)
	})

	t.Run("produce error", func(t *testing.T) {
		mp := &MockProducer{ProduceFunc: func(*kafka.Message, chan kafka.Event) error {
			return errors.New("queue full")
		}}
		err := NewKafkaProducerWithInterface(mp, testTopic).Publish(context.Background(), "k", nil)
		assert.EqualError(t, err, "queue full")
	})

	t.Run("delivery report error", func(t *testing.T) {
		mp := &MockProducer{ProduceFunc: func(msg *kafka.Message, ch chan kafka.Event) error {
			ch <- &kafka.Message{TopicPartition: kafka.TopicPartition{Error: errors.New("broker down")}}
			return nil
		}}
		err := NewKafkaProducerWithInterface(mp, testTopic).Publish(context.Background(), "k", nil)
		assert.ErrorContains(t, err, "broker down")
	})

	t.Run("unexpected event", func(t *testing.T) {
		mp := &MockProducer{ProduceFunc: func(msg *kafka.Message, ch chan kafka.Event) error {
			ch <- kafka.NewError(kafka.ErrAllBrokersDown, "down", false)
			return nil
		}}
		err := NewKafkaProducerWithInterface(mp, testTopic).Publish(context.Background(), "k", nil)
		assert.Error(t, err)
	})

	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := NewKafkaProducerWithInterface(&MockProducer{}, testTopic).Publish(ctx, "k", nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClose(t *testing.T) {
	mp := &MockProducer{}
	require.NoError(t, NewKafkaProducerWithInterface(mp, testTopic).Close())
	assert.True(t, mp.flushed)
	assert.True(t, mp.closed)
}
