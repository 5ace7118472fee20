package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"bookbridge-delivery/internal/logx"
)

// KafkaDispatcher publishes notification envelopes to a Kafka topic,
// keyed by user id so one user's notifications stay ordered.
type KafkaDispatcher struct {
	producer sarama.SyncProducer
	topic    string
	logger   logx.Logger
	now      func() time.Time

	inflight sync.WaitGroup
}

// NewKafkaDispatcher creates a Kafka-backed dispatcher. Returns nil
// when brokers or topic are not configured, which disables dispatch.
func NewKafkaDispatcher(brokers []string, topic string, logger logx.Logger) (*KafkaDispatcher, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewKafkaDispatcherWithProducer(producer, topic, logger), nil
}

// NewKafkaDispatcherWithProducer wraps an existing producer (handy for tests).
func NewKafkaDispatcherWithProducer(producer sarama.SyncProducer, topic string, logger logx.Logger) *KafkaDispatcher {
	if logger == nil {
		logger = logx.Nop()
	}
	return &KafkaDispatcher{
		producer: producer,
		topic:    topic,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Notify publishes a notification envelope. The broker round trip runs
// in a background goroutine so a slow or down broker never delays the
// caller's response. Failures are logged and swallowed.
func (d *KafkaDispatcher) Notify(_ context.Context, userID int64, kind Kind, payload Payload) {
	if d == nil {
		return
	}

	value, err := json.Marshal(Message{
		UserID:  userID,
		Kind:    kind,
		Payload: payload,
		SentAt:  d.now(),
	})
	if err != nil {
		d.logger.Error("notify: marshal failed", logx.Err(err))
		return
	}

	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()

		_, _, err := d.producer.SendMessage(&sarama.ProducerMessage{
			Topic: d.topic,
			Key:   sarama.StringEncoder(strconv.FormatInt(userID, 10)),
			Value: sarama.ByteEncoder(value),
		})
		if err != nil {
			d.logger.Warn("notify: publish failed",
				logx.Int64("user_id", userID),
				logx.String("kind", string(kind)),
				logx.Err(err),
			)
		}
	}()
}

// Close drains in-flight publishes, then shuts the producer down.
func (d *KafkaDispatcher) Close() error {
	if d == nil {
		return nil
	}
	d.inflight.Wait()
	return d.producer.Close()
}
