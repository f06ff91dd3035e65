// Package rabbitmq publishes order status changes to a RabbitMQ fanout
// exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"restaurantcore/internal/core"
	"restaurantcore/pkg/domain"
)

// DefaultExchange is declared when Config.Exchange is empty.
const DefaultExchange = "notifications_fanout"

// MessageType marks status change publishings.
const MessageType = "order.status_changed"

// confirmBuffer holds late confirms until the next publish drains them.
const confirmBuffer = 16

// Config describes the broker connection.
type Config struct {
	URL      string
	Exchange string
	// Source is sent in the x-source header. Defaults to "restaurantcore".
	Source string
}

// channel is the subset of *amqp.Channel used by the publisher.
type channel interface {
	Confirm(noWait bool) error
	GetNextPublishSeqNo() uint64
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher implements core.StatusNotifier with publisher confirms. Publish
// calls are serialized and each waits for the confirmation carrying its own
// delivery tag. Confirms left over from a call that gave up are skipped.
type Publisher struct {
	mu       sync.Mutex
	conn     io.Closer
	ch       channel
	acks     <-chan amqp.Confirmation
	exchange string
	source   string
	now      func() time.Time
}

var _ core.StatusNotifier = (*Publisher)(nil)

// Dial connects to the broker and declares the exchange.
func Dial(cfg Config) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("amqp url required")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := newPublisher(conn, ch, cfg)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return p, nil
}

func newPublisher(conn io.Closer, ch channel, cfg Config) (*Publisher, error) {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.Source == "" {
		cfg.Source = "restaurantcore"
	}
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirms: %w", err)
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, confirmBuffer))
	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}
	return &Publisher{
		conn:     conn,
		ch:       ch,
		acks:     acks,
		exchange: cfg.Exchange,
		source:   cfg.Source,
		now:      time.Now,
	}, nil
}

// NotifyStatusChange publishes change as persistent JSON and waits for the
// broker to confirm it.
func (p *Publisher) NotifyStatusChange(ctx context.Context, change domain.StatusChange) error {
	body, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode status change: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	msg := amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		MessageId:     uuid.NewString(),
		CorrelationId: change.OrderID,
		Type:          MessageType,
		Timestamp:     p.now().UTC(),
		Headers:       amqp.Table{"x-source": p.source},
		Body:          body,
	}
	tag := p.ch.GetNextPublishSeqNo()
	// fanout ignores the routing key
	if err := p.ch.PublishWithContext(ctx, p.exchange, "", false, false, msg); err != nil {
		return fmt.Errorf("publish status change: %w", err)
	}
	return p.awaitConfirm(ctx, tag)
}

func (p *Publisher) awaitConfirm(ctx context.Context, tag uint64) error {
	for {
		select {
		case conf, ok := <-p.acks:
			if !ok {
				return errors.New("publish status change: channel closed before confirm")
			}
			switch {
			case conf.DeliveryTag < tag:
				continue
			case conf.DeliveryTag > tag:
				return fmt.Errorf("publish status change: confirm for tag %d skipped past %d", conf.DeliveryTag, tag)
			case !conf.Ack:
				return fmt.Errorf("publish status change: nack from broker for tag %d", tag)
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Exchange returns the declared exchange name.
func (p *Publisher) Exchange() string { return p.exchange }

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	return errors.Join(p.ch.Close(), p.conn.Close())
}
