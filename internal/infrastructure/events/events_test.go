package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sylistock-api/pkg/logger"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

// fakeReader entrega los mensajes en orden (o errores) y luego bloquea hasta que ctx termine.
type fakeReader struct {
	items chan readItem
}

type readItem struct {
	msg kafka.Message
	err error
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case it := <-r.items:
		return it.msg, it.err
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) Close() error { return nil }

type recorder struct {
	mu    sync.Mutex
	calls []string
	err   error
	done  chan struct{}
	want  int
}

func (r *recorder) Trigger(_ context.Context, merchantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, merchantID)
	if len(r.calls) == r.want {
		close(r.done)
	}
	return r.err
}

func TestPublisher_Trigger(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisher(w, logger.NewNop())

	require.NoError(t, p.Trigger(context.Background(), "m1"))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("m1"), w.msgs[0].Key)

	var ev StockMovedEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, EventStockMoved, ev.EventType)
	assert.Equal(t, "m1", ev.MerchantID)
	assert.NotEmpty(t, ev.EventID)
}

func TestPublisher_ErrorDeEscritura(t *testing.T) {
	boom := errors.New("broker down")
	p := NewPublisher(&fakeWriter{err: boom}, nil)
	assert.ErrorIs(t, p.Trigger(context.Background(), "m1"), boom)
}

func event(t *testing.T, merchantID, eventType string) kafka.Message {
	t.Helper()
	b, err := json.Marshal(StockMovedEvent{EventID: "e", EventType: eventType, MerchantID: merchantID})
	require.NoError(t, err)
	return kafka.Message{Value: b}
}

func TestScoreListener_ProcesaEventos(t *testing.T) {
	reader := &fakeReader{items: make(chan readItem, 8)}
	rec := &recorder{done: make(chan struct{}), want: 2, err: errors.New("falla no fatal")}

	reader.items <- readItem{msg: event(t, "m1", EventStockMoved)}
	reader.items <- readItem{msg: kafka.Message{Value: []byte("{no json")}}
	reader.items <- readItem{err: errors.New("red intermitente")}
	reader.items <- readItem{msg: event(t, "m9", "OrderCreated")}
	reader.items <- readItem{msg: event(t, "m2", EventStockMoved)}

	l := NewScoreListener(reader, rec, logger.NewNop())
	l.retryDelay = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(stopped)
	}()

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("el listener no procesó los eventos")
	}
	cancel()
	<-stopped

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"m1", "m2"}, rec.calls)
}
