package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"

	"bookbridge-delivery/internal/logx"
)

func newTestDispatcher(t *testing.T) (*KafkaDispatcher, *mocks.SyncProducer) {
	t.Helper()

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)

	d := NewKafkaDispatcherWithProducer(producer, "delivery-notifications", logx.Nop())
	d.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return d, producer
}

func TestKafkaDispatcher_PublishesEnvelope(t *testing.T) {
	d, producer := newTestDispatcher(t)

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		require.Equal(t, "delivery-notifications", msg.Topic)

		key, err := msg.Key.Encode()
		require.NoError(t, err)
		require.Equal(t, "7", string(key))

		raw, err := msg.Value.Encode()
		require.NoError(t, err)

		var got Message
		require.NoError(t, json.Unmarshal(raw, &got))
		require.Equal(t, int64(7), got.UserID)
		require.Equal(t, KindDeliveryAssigned, got.Kind)
		require.Equal(t, "dlv-1", got.Payload.DeliveryID)
		require.Equal(t, "Sam", got.Payload.AgentName)
		require.False(t, got.SentAt.IsZero())
		return nil
	})

	d.Notify(context.Background(), 7, KindDeliveryAssigned, Payload{
		DeliveryID: "dlv-1",
		AgentName:  "Sam",
	})

	require.NoError(t, d.Close())
}

func TestKafkaDispatcher_SwallowsPublishErrors(t *testing.T) {
	d, producer := newTestDispatcher(t)

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	// must not panic and must not surface the error
	d.Notify(context.Background(), 7, KindDeliveryPickedUp, Payload{DeliveryID: "dlv-2"})

	require.NoError(t, d.Close())
}

// stallingProducer blocks SendMessage until released, standing in for a
// broker that stopped answering.
type stallingProducer struct {
	sarama.SyncProducer
	release chan struct{}
	sent    chan struct{}
}

func (p *stallingProducer) SendMessage(*sarama.ProducerMessage) (int32, int64, error) {
	<-p.release
	p.sent <- struct{}{}
	return 0, 0, nil
}

func (p *stallingProducer) Close() error { return nil }

func TestKafkaDispatcher_NotifyReturnsWhileBrokerStalls(t *testing.T) {
	t.Parallel()

	producer := &stallingProducer{
		release: make(chan struct{}),
		sent:    make(chan struct{}, 1),
	}
	d := NewKafkaDispatcherWithProducer(producer, "delivery-notifications", logx.Nop())

	done := make(chan struct{})
	go func() {
		d.Notify(context.Background(), 7, KindDeliveryAssigned, Payload{DeliveryID: "dlv-1"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on the stalled broker")
	}

	close(producer.release)
	<-producer.sent
	require.NoError(t, d.Close())
}

func TestNewKafkaDispatcher_DisabledWithoutConfig(t *testing.T) {
	t.Parallel()

	d, err := NewKafkaDispatcher(nil, "topic", logx.Nop())
	require.NoError(t, err)
	require.Nil(t, d)

	d, err = NewKafkaDispatcher([]string{"k1:9092"}, "  ", logx.Nop())
	require.NoError(t, err)
	require.Nil(t, d)
}

func TestNopDispatcher_NoPanic(t *testing.T) {
	t.Parallel()

	Nop().Notify(context.Background(), 1, KindDeliveryDelivered, Payload{})
}

func TestNilKafkaDispatcher_NoPanic(t *testing.T) {
	t.Parallel()

	var d *KafkaDispatcher
	d.Notify(context.Background(), 1, KindDeliveryAssigned, Payload{})
	require.NoError(t, d.Close())
}
