package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ExchangeName: topic exchange уведомлений об изменении записей.
const ExchangeName = "universalinbox.records"

// Виды записей и действия для ключа маршрутизации record.<kind>.<action>.
const (
	KindItem = "item"
	KindBin  = "bin"

	ActionSaved   = "saved"
	ActionDeleted = "deleted"
)

// RoutingKey собирает ключ маршрутизации.
func RoutingKey(kind, action string) string {
	return "record." + kind + "." + action
}

// Change: тело уведомления.
type Change struct {
	Kind   string    `json:"kind"`
	Action string    `json:"action"`
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
}

// Publisher публикует уведомления об изменениях.
type Publisher interface {
	Publish(ctx context.Context, c Change) error
	Close() error
}

// AMQPPublisher публикует в RabbitMQ.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.SugaredLogger
	mu      sync.Mutex
}

// NewAMQPPublisher подключается к брокеру и объявляет exchange.
func NewAMQPPublisher(url string, logger *zap.SugaredLogger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	logger.Infow("rabbitmq publisher connected", "exchange", ExchangeName)
	return &AMQPPublisher{conn: conn, channel: ch, logger: logger}, nil
}

// Publish отправляет уведомление с ключом record.<kind>.<action>.
func (p *AMQPPublisher) Publish(ctx context.Context, c Change) error {
	body, err := json.Marshal(c)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := RoutingKey(c.Kind, c.Action)
	err = p.channel.PublishWithContext(ctx, ExchangeName, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    c.At,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	p.logger.Debugw("change published", "routing_key", key, "id", c.ID)
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Warnw("close channel", "error", err)
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NoopPublisher используется, когда брокер не настроен.
type NoopPublisher struct {
	logger *zap.SugaredLogger
}

func NewNoopPublisher(logger *zap.SugaredLogger) *NoopPublisher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(_ context.Context, c Change) error {
	p.logger.Debugw("noop publish", "routing_key", RoutingKey(c.Kind, c.Action), "id", c.ID)
	return nil
}

func (p *NoopPublisher) Close() error { return nil }

// New выбирает реализацию: AMQP при заданном url, иначе no-op.
func New(url string, logger *zap.SugaredLogger) (Publisher, error) {
	if url == "" {
		return NewNoopPublisher(logger), nil
	}
	p, err := NewAMQPPublisher(url, logger)
	if err != nil {
		return nil, err
	}
	return p, nil
}
