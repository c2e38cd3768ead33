package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockKafkaReader serves queued messages, then blocks until cancelled.
type mockKafkaReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (m *mockKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	m.mu.Lock()
	if len(m.queue) > 0 {
		msg := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return msg, nil
	}
	m.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (m *mockKafkaReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, msgs...)
	return nil
}

func (m *mockKafkaReader) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockKafkaReader) committedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.committed)
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*ProducerMessage
}

func (p *recordingPublisher) Publish(ctx context.Context, msg *ProducerMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func testConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Brokers: []string{"localhost:9092"},
		GroupID: "graphyte-worker",
		Topics:  []string{TopicScreeningRequested},
		RetryConfig: RetryConfig{
			MaxRetries:      2,
			RetryBackoff:    time.Millisecond,
			DeadLetterTopic: TopicScreeningDeadLetter,
		},
	}
}

func TestValidateConsumerConfig(t *testing.T) {
	assert.NoError(t, ValidateConsumerConfig(testConsumerConfig()))

	cases := map[string]func(*ConsumerConfig){
		"brokers": func(c *ConsumerConfig) { c.Brokers = nil },
		"group":   func(c *ConsumerConfig) { c.GroupID = "" },
		"topics":  func(c *ConsumerConfig) { c.Topics = nil },
		"offset":  func(c *ConsumerConfig) { c.AutoOffsetReset = "middle" },
		"retries": func(c *ConsumerConfig) { c.RetryConfig.MaxRetries = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConsumerConfig()
			mutate(&cfg)
			assert.Error(t, ValidateConsumerConfig(cfg))
		})
	}
}

func TestConsumer_DispatchesAndCommits(t *testing.T) {
	reader := &mockKafkaReader{queue: []kafka.Message{
		{Topic: TopicScreeningRequested, Value: []byte(`{"entity":"Acme"}`), Headers: []kafka.Header{{Key: "trace_id", Value: []byte("t1")}}},
		{Topic: "unknown.topic", Value: []byte("x")},
	}}
	c := newConsumer(reader, nil, testConsumerConfig(), nil)

	got := make(chan *Message, 1)
	c.Subscribe(TopicScreeningRequested, func(ctx context.Context, msg *Message) error {
		got <- msg
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyRunning)

	select {
	case msg := <-got:
		assert.Equal(t, `{"entity":"Acme"}`, string(msg.Value))
		assert.Equal(t, "t1", msg.Headers["trace_id"])
	case <-time.After(time.Second):
		t.Fatal("handler not called")
	}

	assert.Eventually(t, func() bool { return reader.committedCount() == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
	assert.True(t, reader.closed)
	m := c.GetMetrics()
	assert.Equal(t, int64(2), m.MessagesConsumed.Load())
	assert.Equal(t, int64(1), m.MessagesProcessed.Load())
}

func TestProcessMessage_RetryThenSucceed(t *testing.T) {
	c := newConsumer(&mockKafkaReader{}, nil, testConsumerConfig(), nil)

	attempts := 0
	err := c.processMessage(context.Background(), &Message{}, func(context.Context, *Message) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, int64(1), c.metrics.MessagesRetried.Load())
	assert.Equal(t, int64(1), c.metrics.MessagesProcessed.Load())
}

func TestProcessMessage_DeadLetter(t *testing.T) {
	dl := &recordingPublisher{}
	c := newConsumer(&mockKafkaReader{}, dl, testConsumerConfig(), nil)

	attempts := 0
	msg := &Message{Topic: TopicScreeningRequested, Key: []byte("k"), Value: []byte("v"), Headers: map[string]string{"a": "b"}}
	err := c.processMessage(context.Background(), msg, func(context.Context, *Message) error {
		attempts++
		return errors.New("model not ready")
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	require.Len(t, dl.msgs, 1)
	sent := dl.msgs[0]
	assert.Equal(t, TopicScreeningDeadLetter, sent.Topic)
	assert.Equal(t, TopicScreeningRequested, sent.Headers["original_topic"])
	assert.Equal(t, "model not ready", sent.Headers["error_message"])
	assert.Equal(t, "b", sent.Headers["a"])
	assert.NotContains(t, msg.Headers, "original_topic")
	assert.Equal(t, int64(1), c.metrics.MessagesDeadLettered.Load())
	assert.Equal(t, int64(1), c.metrics.MessagesFailed.Load())
}

func TestProcessMessage_CancelledDuringBackoff(t *testing.T) {
	cfg := testConsumerConfig()
	cfg.RetryConfig.RetryBackoff = time.Hour
	c := newConsumer(&mockKafkaReader{}, nil, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	err := c.processMessage(ctx, &Message{}, func(context.Context, *Message) error {
		cancel()
		return errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConsumer_CloseIdle(t *testing.T) {
	c := newConsumer(&mockKafkaReader{}, nil, testConsumerConfig(), nil)
	assert.NoError(t, c.Close())
}

//Personal.AI order the ending
