package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestProducerPublishJSON(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w, "none")

	err := p.Publish(context.Background(), "ghostregime.snapshots", []byte("2024-01-02"),
		map[string]string{"regime": "GOLDILOCKS"}, map[string]string{"type": "snapshot.committed"})
	require.NoError(t, err)

	require.Len(t, w.msgs, 1)
	m := w.msgs[0]
	assert.Equal(t, "ghostregime.snapshots", m.Topic)
	assert.Equal(t, []byte("2024-01-02"), m.Key)
	assert.JSONEq(t, `{"regime":"GOLDILOCKS"}`, string(m.Value))
	require.Len(t, m.Headers, 1)
	assert.Equal(t, "type", m.Headers[0].Key)
}

func TestProducerPublishError(t *testing.T) {
	p := NewProducerWithWriter(&recordingWriter{err: errors.New("broker down")}, "none")
	err := p.Publish(context.Background(), "t", nil, "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}
