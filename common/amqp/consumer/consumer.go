package consumer

import (
	"context"
	"encoding/json"
	"runtime/debug"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Unmarshal func(data []byte, v any) error

// Handler processes one decoded message. It owns acknowledging d unless the
// consumer runs with AutoAck.
type Handler[T any] func(ctx context.Context, data *T, d amqp.Delivery) error

// Source is the part of connection.Channel a consumer needs.
type Source interface {
	Consume(ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) <-chan amqp.Delivery
}

type Config struct {
	Unmarshal Unmarshal
	Queue     string
	Consumer  string
	AutoAck   bool
	Exclusive bool
	NoLocal   bool
	NoWait    bool
	Args      map[string]any
}

type Consumer interface {
	Subscribe(ctx context.Context)
}

type consumer[T any] struct {
	cfg       *Config
	src       Source
	handler   Handler[T]
	unmarshal Unmarshal
	l         zerolog.Logger
}

func New[T any](src Source, handler Handler[T], cfg *Config) Consumer {
	if handler == nil {
		handler = func(context.Context, *T, amqp.Delivery) error { return nil }
	}
	unmarshal := cfg.Unmarshal
	if unmarshal == nil {
		unmarshal = json.Unmarshal
	}
	return &consumer[T]{
		src:       src,
		handler:   handler,
		cfg:       cfg,
		unmarshal: unmarshal,
		l: log.With().
			Str("component", "amqp-consumer").
			Type("type", *new(T)).
			Str("queue", cfg.Queue).
			Logger(),
	}
}

// Subscribe blocks, handling deliveries until ctx is done or the source
// stops delivering.
func (c *consumer[T]) Subscribe(ctx context.Context) {
	msgCh := c.src.Consume(
		ctx,
		c.cfg.Queue,
		c.cfg.Consumer,
		c.cfg.AutoAck,
		c.cfg.Exclusive,
		c.cfg.NoLocal,
		c.cfg.NoWait,
		c.cfg.Args,
	)
	c.l.Debug().Msg("consumer connected")
	for {
		select {
		case <-ctx.Done():
			c.l.Debug().Msg("consumer stopped")
			return
		case d, ok := <-msgCh:
			if !ok {
				c.l.Debug().Msg("deliveries closed")
				return
			}
			c.l.Debug().Bytes("body", d.Body).Msg("got new event")
			data := new(T)
			if err := c.unmarshal(d.Body, data); err != nil {
				c.l.Error().Err(err).Msg("failed to unmarshal event")
				c.reject(d)
				continue
			}
			c.handle(ctx, data, d)
		}
	}
}

func (c *consumer[T]) reject(d amqp.Delivery) {
	if c.cfg.AutoAck || d.Acknowledger == nil {
		return
	}
	if err := d.Nack(false, false); err != nil {
		c.l.Warn().Err(err).Msg("failed to reject event")
	}
}

func (c *consumer[T]) handle(ctx context.Context, data *T, d amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			c.l.Error().Msgf("catch panic: %v\n%s", r, string(debug.Stack()))
		}
	}()
	if err := c.handler(ctx, data, d); err != nil {
		c.l.Error().Err(err).Msg("failed to consume event")
	}
}
