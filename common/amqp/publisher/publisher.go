package publisher

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type DeliveryMode uint8

const (
	Transient  DeliveryMode = 1
	Persistent DeliveryMode = 2
)

type Marshal func(any) ([]byte, error)

// Sink is the part of connection.Channel a publisher needs.
type Sink interface {
	Publish(ctx context.Context, exchange string, key string, mandatory bool, immediate bool, msg amqp.Publishing) error
}

type Config struct {
	Exchange    string
	RoutingKey  string
	Marshal     Marshal
	ContentType string
}

type Publisher[T any] interface {
	SendMessage(ctx context.Context, message *T, mode DeliveryMode, mandatory, immediate bool) error
}

type publisher[T any] struct {
	cfg         *Config
	sink        Sink
	marshal     Marshal
	contentType string
	l           zerolog.Logger
}

func New[T any](sink Sink, config *Config) Publisher[T] {
	marshal := config.Marshal
	if marshal == nil {
		marshal = json.Marshal
	}
	contentType := config.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	return &publisher[T]{
		cfg:         config,
		sink:        sink,
		marshal:     marshal,
		contentType: contentType,
		l: log.With().
			Str("component", "amqp-publisher").
			Type("type", *new(T)).
			Str("exchange", config.Exchange).
			Str("routing-key", config.RoutingKey).
			Logger(),
	}
}

func (p *publisher[T]) SendMessage(ctx context.Context, message *T, mode DeliveryMode, mandatory, immediate bool) error {
	body, err := p.marshal(message)
	if err != nil {
		p.l.Error().Err(err).Msg("failed to marshal message")
		return errors.Wrap(err, "marshal message")
	}
	msg := amqp.Publishing{
		DeliveryMode: uint8(mode),
		ContentType:  p.contentType,
		Body:         body,
	}
	if err := p.sink.Publish(ctx, p.cfg.Exchange, p.cfg.RoutingKey, mandatory, immediate, msg); err != nil {
		p.l.Error().Err(err).Msg("failed to send message")
		return errors.Wrap(err, "send message")
	}
	p.l.Debug().Msg("message sent")
	return nil
}
