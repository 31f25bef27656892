package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/psds-microservice/report-service/internal/model"
	"github.com/segmentio/kafka-go"
)

const (
	EventReportCreated  = "report.created"
	EventReportClaimed  = "report.claimed"
	EventSessionEnded   = "session.ended"
	EventReportSnapshot = "report.snapshot"
)

// writeTimeout ограничивает одну запись: при недоступном брокере бот не должен ждать ретраев writer'а.
const writeTimeout = 5 * time.Second

// ReportEventProducer — интерфейс для отправки событий отчёта в Kafka (для подмены в тестах).
type ReportEventProducer interface {
	ProduceReportEvent(ctx context.Context, event string, payload map[string]interface{})
}

// Producer пишет события отчётов в топик Kafka (best-effort, запись ограничена writeTimeout).
type Producer struct {
	writer  *kafka.Writer
	topic   string
	timeout time.Duration
	log     *slog.Logger
}

// NewProducer создаёт продюсер. Если brokers пустой или topic пустой — методы no-op.
func NewProducer(log *slog.Logger, brokers []string, topic string) *Producer {
	log = log.With("component", "kafka")
	if len(brokers) == 0 || topic == "" {
		return &Producer{log: log}
	}
	return &Producer{
		topic:   topic,
		timeout: writeTimeout,
		log:     log,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *Producer) Enabled() bool { return p.writer != nil }

// ProduceReportEvent отправляет событие в топик. Ключ сообщения — report_id,
// чтобы события одного отчёта попадали в одну партицию.
func (p *Producer) ProduceReportEvent(ctx context.Context, event string, payload map[string]interface{}) {
	if p.writer == nil {
		return
	}
	msg := map[string]interface{}{"event": event}
	for k, v := range payload {
		msg[k] = v
	}
	body, err := json.Marshal(msg)
	if err != nil {
		p.log.Error("marshal report event", "event", event, "error", err)
		return
	}
	var key []byte
	if id, ok := payload["report_id"].(string); ok {
		key = []byte(id)
	}
	// Событие должно уйти даже при отмене вызывающего, но с таймаутом
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: body}); err != nil {
		eventsProduced.WithLabelValues(event, "error").Inc()
		p.log.Warn("write report event", "event", event, "error", err)
		return
	}
	eventsProduced.WithLabelValues(event, "ok").Inc()
}

// Close закрывает writer.
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// ReportPayload — поля отчёта для событий report.created / report.snapshot.
func ReportPayload(r *model.Report) map[string]interface{} {
	return map[string]interface{}{
		"report_id":  r.ID,
		"product":    string(r.Product),
		"intent":     string(r.Intent),
		"consent":    string(r.Consent),
		"comment":    r.Comment,
		"user_id":    r.UserID,
		"username":   r.Username,
		"status":     string(r.Status),
		"photos":     len(r.Photos),
		"videos":     len(r.Videos),
		"created_at": r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Nop глушит события (тесты, режимы без Kafka).
type Nop struct{}

func (Nop) ProduceReportEvent(context.Context, string, map[string]interface{}) {}
