package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suchimauz/doctor-appointment-booking/internal/config"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
)

const declareAttempts = 3

type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// EventPublisher sends booking events to a topic exchange, routed by event type.
type EventPublisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
	source   string
	logger   out.LoggerPort
}

// NewEventPublisher returns nil when RabbitMQ is disabled.
func NewEventPublisher(cfg *config.Config, logger out.LoggerPort) (*EventPublisher, error) {
	logger = logger.WithModule("EventPublisher")

	if !cfg.RabbitMQ.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, booking events will not be published",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	publisher, err := newEventPublisher(ch, cfg.RabbitMQ.Exchange, cfg.App.Version, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher.conn = conn

	return publisher, nil
}

func newEventPublisher(ch channel, exchange, source string, logger out.LoggerPort) (*EventPublisher, error) {
	var err error
	for attempt := 0; attempt < declareAttempts; attempt++ {
		err = ch.ExchangeDeclare(
			exchange,
			amqp.ExchangeTopic,
			true,  // durable
			false, // auto-delete
			false, // internal
			false, // no-wait
			nil,
		)
		if err == nil {
			logger.Info("rabbitmq.exchange_declare.success", out.LogFields{
				"exchange": exchange,
			})
			break
		}

		logger.Warn("rabbitmq.exchange_declare.retry", out.LogFields{
			"exchange": exchange,
			"attempt":  attempt + 1,
			"error":    err.Error(),
		})
	}
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &EventPublisher{
		channel:  ch,
		exchange: exchange,
		source:   source,
		logger:   logger,
	}, nil
}

func (p *EventPublisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	message := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    fmt.Sprintf("%s:%s", event.Type, event.BookingID),
		Timestamp:    event.OccurredAt.UTC().Truncate(time.Second),
		Type:         string(event.Type),
		AppId:        "appointment-booking",
		Headers: amqp.Table{
			"source": p.source,
		},
		Body: body,
	}

	if err := p.channel.PublishWithContext(ctx, p.exchange, string(event.Type), false, false, message); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.logger.Debug("rabbitmq.publish.success", out.LogFields{
		"exchange":   p.exchange,
		"routingKey": string(event.Type),
		"bookingId":  event.BookingID,
	})

	return nil
}

func (p *EventPublisher) Close() error {
	if p == nil || p.channel == nil {
		return nil
	}

	if err := p.channel.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
