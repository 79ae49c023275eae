package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishEncodesEvent(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, "index.complete")

	err := p.Publish(context.Background(), Event{
		Key:     "Version1",
		Value:   map[string]int{"terms": 3},
		Headers: map[string]string{"build_id": "b-1"},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "Version1", string(w.msgs[0].Key))

	var body map[string]int
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &body))
	assert.Equal(t, 3, body["terms"])
	require.Len(t, w.msgs[0].Headers, 1)
	assert.Equal(t, "build_id", w.msgs[0].Headers[0].Key)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.Equal(t, "index.complete", p.Topic())
}

func TestPublishErrors(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := newProducer(w, "t")
	assert.Error(t, p.Publish(context.Background(), Event{Key: "k", Value: 1}))

	p = newProducer(&recordingWriter{}, "t")
	assert.Error(t, p.Publish(context.Background(), Event{Key: "k", Value: make(chan int)}))
}

func TestPingWithoutBrokers(t *testing.T) {
	p := newProducer(&recordingWriter{}, "t")
	assert.Error(t, p.Ping(context.Background()))
}
