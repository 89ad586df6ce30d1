package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := NewKafkaPublisherWithWriter(w, "mutations")

	err := p.Publish(context.Background(), &core.MutationEvent{
		Operation:    core.OperationUpdate,
		Database:     "shop",
		Table:        "users",
		Data:         []core.Field{{Column: "name", Value: "Bob"}},
		Criteria:     []core.Field{{Column: "id", Value: "5"}},
		RowsAffected: 1,
	})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "shop.users", string(msg.Key))
	assert.Equal(t, []kafka.Header{
		{Key: "operation", Value: []byte("UPDATE")},
		{Key: "table", Value: []byte("users")},
	}, msg.Headers)

	var decoded core.MutationEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, core.OperationUpdate, decoded.Operation)
	assert.Equal(t, int64(1), decoded.RowsAffected)
	assert.False(t, decoded.Timestamp.IsZero())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), &core.MutationEvent{Table: "users"}), ErrPublisherClosed)
}

func TestKafkaPublisher_Errors(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := NewKafkaPublisherWithWriter(w, "mutations")

	assert.ErrorIs(t, p.Publish(context.Background(), nil), ErrInvalidEvent)
	assert.ErrorIs(t, p.Publish(context.Background(), &core.MutationEvent{}), ErrInvalidEvent)
	assert.Error(t, p.Publish(context.Background(), &core.MutationEvent{Table: "users"}))

	_, err := NewKafkaPublisher(KafkaConfig{Topic: "t"})
	assert.Error(t, err)
	_, err = NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)
}

func TestMemoryPublisher(t *testing.T) {
	p := NewMemoryPublisher(2)
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, &core.MutationEvent{Operation: core.OperationInsert, Table: "a"}))
	require.NoError(t, p.Publish(ctx, &core.MutationEvent{Operation: core.OperationDelete, Table: "b"}))
	assert.ErrorIs(t, p.Publish(ctx, &core.MutationEvent{Table: "c"}), ErrBufferFull)

	got := p.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Table)
	assert.Equal(t, "b", got[1].Table)
	assert.Empty(t, p.Drain())

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(ctx, &core.MutationEvent{Table: "a"}), ErrPublisherClosed)
}

func TestNew(t *testing.T) {
	p, err := New(Config{})
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = New(Config{Type: "memory", BufferSize: 4})
	require.NoError(t, err)
	assert.IsType(t, &MemoryPublisher{}, p)

	p, err = New(Config{Type: "kafka", Kafka: KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "mutations"}})
	require.NoError(t, err)
	assert.IsType(t, &KafkaPublisher{}, p)
	require.NoError(t, p.Close())

	_, err = New(Config{Type: "kafka"})
	assert.Error(t, err)

	_, err = New(Config{Type: "sns"})
	assert.Error(t, err)
}
