package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var ErrPublishNotConfirmed = errors.New("event publish not confirmed by broker")

// AMQPPublisher publishes events to a durable topic exchange with publisher
// confirms. The routing key is the event type.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	timeout  time.Duration
	log      *zap.Logger

	mu sync.Mutex
}

// NewAMQPPublisher connects and declares the exchange. confirmTimeout bounds
// how long one Publish waits for the broker ack; non-positive means 2s.
func NewAMQPPublisher(url, exchange string, confirmTimeout time.Duration, log *zap.Logger) (*AMQPPublisher, error) {
	if confirmTimeout <= 0 {
		confirmTimeout = 2 * time.Second
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}

	log.Info("connected to rabbitmq", zap.String("exchange", exchange))

	return &AMQPPublisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		timeout:  confirmTimeout,
		log:      log,
	}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	msg, err := newMessage(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	confirm, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, ev.Type, false, false, msg)
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}

	ok, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("await confirm for %s: %w", ev.Type, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrPublishNotConfirmed, ev.Type)
	}

	p.log.Debug("event published",
		zap.String("type", ev.Type),
		zap.String("appointment_id", ev.AppointmentID.String()),
	)
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		p.log.Warn("failed to close rabbitmq channel", zap.Error(err))
	}
	if err := p.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return fmt.Errorf("close rabbitmq connection: %w", err)
	}
	return nil
}

func newMessage(ev Event) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event %s: %w", ev.Type, err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID.String(),
		Timestamp:    ev.OccurredAt,
		Type:         ev.Type,
		Body:         body,
		Headers: amqp.Table{
			"message_type": "JSON",
		},
	}, nil
}
