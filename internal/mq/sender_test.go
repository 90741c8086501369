package mq

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"value-program-sol/internal/config"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "test-value-decoded"

// fakeProducer 按 topic 决定投递行为
type fakeProducer struct {
	mu        sync.Mutex
	produced  []*kafka.Message
	rejectErr error // Produce 直接返回的错误
	ackErr    error // 投递报告中带的错误
	noAck     bool  // 永不回 ack
}

func (p *fakeProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	if p.rejectErr != nil {
		return p.rejectErr
	}
	p.mu.Lock()
	p.produced = append(p.produced, msg)
	p.mu.Unlock()
	if p.noAck {
		return nil
	}
	report := *msg
	report.TopicPartition.Error = p.ackErr
	deliveryChan <- &report
	return nil
}

func TestSendKafkaJobs_AllDelivered(t *testing.T) {
	p := &fakeProducer{}
	jobs := make([]*KafkaJob, 10)
	for i := range jobs {
		jobs[i] = &KafkaJob{Topic: testTopic, Partition: int32(i % 4), Key: []byte{byte(i)}, Value: []byte{byte(i)}}
	}

	ok, failed := SendKafkaJobs(context.Background(), p, jobs, time.Second)
	assert.Len(t, ok, 10)
	assert.Empty(t, failed)
	assert.Len(t, p.produced, 10)
	for _, msg := range p.produced {
		assert.Equal(t, testTopic, *msg.TopicPartition.Topic)
		assert.Equal(t, msg.Key, msg.Value)
	}
}

func TestSendKafkaJobs_Empty(t *testing.T) {
	ok, failed := SendKafkaJobs(context.Background(), &fakeProducer{}, nil, time.Second)
	assert.Empty(t, ok)
	assert.Empty(t, failed)
}

func TestSendKafkaJobs_ProduceRejected(t *testing.T) {
	p := &fakeProducer{rejectErr: kafka.NewError(kafka.ErrQueueFull, "queue full", false)}
	ok, failed := SendKafkaJobs(context.Background(), p, []*KafkaJob{{Topic: testTopic}}, time.Second)
	assert.Empty(t, ok)
	require.Len(t, failed, 1)
	assert.ErrorContains(t, failed[0].Err, "produce error")
}

func TestSendKafkaJobs_DeliveryError(t *testing.T) {
	ackErr := errors.New("broker not available")
	p := &fakeProducer{ackErr: ackErr}
	_, failed := SendKafkaJobs(context.Background(), p, []*KafkaJob{{Topic: testTopic}}, time.Second)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].Err, ackErr)
}

func TestSendKafkaJobs_Timeout(t *testing.T) {
	p := &fakeProducer{noAck: true}
	_, failed := SendKafkaJobs(context.Background(), p, []*KafkaJob{{Topic: testTopic}}, 10*time.Millisecond)
	require.Len(t, failed, 1)
	assert.ErrorContains(t, failed[0].Err, "delivery timeout")
}

func TestSendKafkaJobs_ContextCancelled(t *testing.T) {
	p := &fakeProducer{noAck: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, failed := SendKafkaJobs(ctx, p, []*KafkaJob{{Topic: testTopic}}, time.Minute)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].Err, context.Canceled)
}

func TestProducerConfigMap_Defaults(t *testing.T) {
	cm := producerConfigMap(config.KafkaProducerConfig{Brokers: "127.0.0.1:9092", LingerMs: -1})

	v, err := cm.Get("batch.size", nil)
	require.NoError(t, err)
	assert.Equal(t, defaultBatchSize, v)

	v, err = cm.Get("linger.ms", nil)
	require.NoError(t, err)
	assert.Equal(t, defaultLingerMs, v)

	v, err = cm.Get("enable.idempotence", nil)
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

// 需要本地 Kafka：KAFKA_BROKERS=127.0.0.1:9092 go test ./internal/mq/
func TestSendKafkaJobs_RealKafka(t *testing.T) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_BROKERS not set")
	}

	cfg := config.KafkaProducerConfig{Brokers: brokers, Topic: testTopic, Partitions: 1, LingerMs: 5}
	producer, err := NewKafkaProducer(cfg)
	require.NoError(t, err)
	defer producer.Close()

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"group.id":          "test-group-" + time.Now().Format("20060102150405"),
		"auto.offset.reset": "earliest",
	})
	require.NoError(t, err)
	defer consumer.Close()
	require.NoError(t, consumer.Subscribe(testTopic, nil))

	jobs := []*KafkaJob{
		{Topic: testTopic, Value: []byte("value 1")},
		{Topic: testTopic, Value: []byte("value 2")},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ok, failed := SendKafkaJobs(ctx, producer, jobs, 2*time.Second)
	assert.Len(t, ok, 2)
	assert.Empty(t, failed)
	producer.Flush(1000)

	received := make(map[string]bool)
	for i := 0; i < 2; i++ {
		msg, err := consumer.ReadMessage(5 * time.Second)
		require.NoError(t, err)
		received[string(msg.Value)] = true
	}
	assert.True(t, received["value 1"])
	assert.True(t, received["value 2"])
}
