package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/sylistock-api/internal/application/ledger"
	"github.com/jhoicas/sylistock-api/pkg/logger"
)

// MessageReader subconjunto de *kafka.Reader usado por el listener.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// NewKafkaReader lector con grupo de consumidores (commit automático del offset en ReadMessage).
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// ScoreListener consume StockMovedEvent y recalcula el puntaje del comerciante.
type ScoreListener struct {
	reader     MessageReader
	recomputer ledger.ScoreTrigger
	log        *logger.Logger
	retryDelay time.Duration
}

// NewScoreListener construye el listener; recomputer suele ser el caso de uso de bancabilidad.
func NewScoreListener(reader MessageReader, recomputer ledger.ScoreTrigger, log *logger.Logger) *ScoreListener {
	if log == nil {
		log = logger.NewNop()
	}
	return &ScoreListener{
		reader:     reader,
		recomputer: recomputer,
		log:        log.Component("score-listener"),
		retryDelay: time.Second,
	}
}

// Start bloquea hasta que ctx se cancele.
func (l *ScoreListener) Start(ctx context.Context) {
	l.log.Info().Msg("iniciando listener de puntaje")
	for {
		select {
		case <-ctx.Done():
			l.log.Info().Msg("deteniendo listener de puntaje")
			return
		default:
		}

		msg, err := l.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.log.Error().Err(err).Msg("error leyendo mensaje de kafka")
			select {
			case <-ctx.Done():
				return
			case <-time.After(l.retryDelay):
			}
			continue
		}
		l.processMessage(ctx, msg.Value)
	}
}

// Close cierra el reader.
func (l *ScoreListener) Close() error {
	return l.reader.Close()
}

func (l *ScoreListener) processMessage(ctx context.Context, value []byte) {
	var event StockMovedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.log.Error().Err(err).Msg("evento inválido")
		return
	}
	if event.EventType != EventStockMoved || event.MerchantID == "" {
		return
	}
	if err := l.recomputer.Trigger(ctx, event.MerchantID); err != nil {
		// El puntaje queda con el valor anterior hasta el próximo movimiento.
		l.log.Warn().Err(err).
			Str("merchant_id", event.MerchantID).
			Str("event_id", event.EventID).
			Msg("recálculo diferido fallido")
		return
	}
	l.log.Debug().Str("merchant_id", event.MerchantID).Msg("puntaje recalculado desde evento")
}
