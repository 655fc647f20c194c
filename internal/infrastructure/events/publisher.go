package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/sylistock-api/internal/application/ledger"
	"github.com/jhoicas/sylistock-api/pkg/logger"
)

var _ ledger.ScoreTrigger = (*Publisher)(nil)

// EventStockMoved tipo de evento publicado tras cada movimiento confirmado.
const EventStockMoved = "StockMoved"

// StockMovedEvent pide recalcular el puntaje de un comerciante.
type StockMovedEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	MerchantID string    `json:"merchant_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// MessageWriter subconjunto de *kafka.Writer usado por el publicador.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter writer particionado por clave (merchant_id) para mantener el orden por comerciante.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// Publisher difiere el recálculo del puntaje publicando un evento por movimiento.
type Publisher struct {
	writer MessageWriter
	log    *logger.Logger
	now    func() time.Time
}

// NewPublisher construye el publicador.
func NewPublisher(writer MessageWriter, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Publisher{writer: writer, log: log.Component("events"), now: time.Now}
}

// Trigger publica StockMovedEvent; el listener hace el recálculo.
func (p *Publisher) Trigger(ctx context.Context, merchantID string) error {
	event := StockMovedEvent{
		EventID:    uuid.New().String(),
		EventType:  EventStockMoved,
		MerchantID: merchantID,
		Timestamp:  p.now().UTC(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(merchantID), Value: value}); err != nil {
		return fmt.Errorf("publish %s: %w", EventStockMoved, err)
	}
	p.log.Debug().Str("merchant_id", merchantID).Str("event_id", event.EventID).Msg("evento publicado")
	return nil
}

// Close cierra el writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
