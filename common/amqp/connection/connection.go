package connection

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ConnAlreadyClosedErr    = errors.New("connection is already closed")
	ChannelAlreadyClosedErr = errors.New("channel is already closed")
)

// Connection is an AMQP connection that redials the broker after it drops.
type Connection struct {
	l    zerolog.Logger
	uri  string
	opts amqp.Config

	mu   sync.RWMutex
	conn *amqp.Connection

	reconnectTimeout time.Duration
	closed           atomic.Bool
	cancel           context.CancelFunc
}

// Channel is an AMQP channel that is reopened on its connection after it
// drops.
type Channel struct {
	l    zerolog.Logger
	conn *Connection

	mu sync.RWMutex
	ch *amqp.Channel

	reconnectTimeout time.Duration
	closed           atomic.Bool
	cancel           context.CancelFunc
}

func NewConnection(
	ctx context.Context,
	uri string,
	opts amqp.Config,
	reconnectTimeout time.Duration,
) (*Connection, error) {
	c, err := amqp.DialConfig(uri, opts)
	if err != nil {
		return nil, errors.Wrap(err, "dial amqp connection")
	}
	ctx, cancel := context.WithCancel(ctx)
	conn := &Connection{
		uri:              uri,
		opts:             opts,
		conn:             c,
		cancel:           cancel,
		reconnectTimeout: reconnectTimeout,
		l:                log.With().Str("component", "amqp-connection").Logger(),
	}
	go conn.watch(ctx)
	return conn, nil
}

func (c *Connection) Connection() *amqp.Connection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ConnAlreadyClosedErr
	}
	c.cancel()
	if err := c.Connection().Close(); err != nil {
		return errors.Wrap(err, "close amqp connection")
	}
	return nil
}

func (c *Connection) watch(ctx context.Context) {
	for {
		notify := c.Connection().NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-ctx.Done():
			return
		case err, ok := <-notify:
			if !ok || c.closed.Load() {
				return
			}
			c.l.Warn().Err(err).Msg("connection closed, try to reconnect")
			redial(ctx, c.l, c.reconnectTimeout, &c.closed, &c.mu, func() error {
				cc, err := amqp.DialConfig(c.uri, c.opts)
				if err != nil {
					return err
				}
				c.conn = cc
				return nil
			})
		}
	}
}

func (c *Connection) Channel(ctx context.Context) (*Channel, error) {
	amqpCh, err := c.Connection().Channel()
	if err != nil {
		return nil, errors.Wrap(err, "open channel")
	}
	ctx, cancel := context.WithCancel(ctx)
	ch := &Channel{
		ch:               amqpCh,
		conn:             c,
		reconnectTimeout: c.reconnectTimeout,
		cancel:           cancel,
		l:                log.With().Str("component", "amqp-channel").Logger(),
	}
	go ch.watch(ctx)
	return ch, nil
}

func (ch *Channel) Channel() *amqp.Channel {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.ch
}

func (ch *Channel) Close() error {
	if !ch.closed.CompareAndSwap(false, true) {
		return ChannelAlreadyClosedErr
	}
	ch.cancel()
	if err := ch.Channel().Close(); err != nil {
		return errors.Wrap(err, "close amqp channel")
	}
	return nil
}

func (ch *Channel) IsClosed() bool {
	return ch.closed.Load()
}

// QueueDeclare declares a durable queue so that consumers and publishers can
// start in any order.
func (ch *Channel) QueueDeclare(name string) error {
	if _, err := ch.Channel().QueueDeclare(name, true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "declare queue %s", name)
	}
	return nil
}

// Consume delivers messages from queue until ctx is done or the channel is
// closed, resubscribing after reconnects.
func (ch *Channel) Consume(
	ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table,
) <-chan amqp.Delivery {
	deliveries := make(chan amqp.Delivery)
	go func() {
		defer close(deliveries)
		for {
			d, err := ch.Channel().ConsumeWithContext(ctx, queue, consumer, autoAck, exclusive, noLocal, noWait, args)
			if err != nil {
				ch.l.Error().Err(err).Msg("failed to consume")
				if !sleep(ctx, ch.reconnectTimeout) {
					return
				}
				continue
			}
			for msg := range d {
				select {
				case deliveries <- msg:
				case <-ctx.Done():
					return
				}
			}
			if ch.IsClosed() || ctx.Err() != nil {
				return
			}
		}
	}()
	return deliveries
}

func (ch *Channel) Publish(ctx context.Context, exchange string, key string, mandatory bool, immediate bool, msg amqp.Publishing) error {
	if err := ch.Channel().PublishWithContext(ctx, exchange, key, mandatory, immediate, msg); err != nil {
		return errors.Wrap(err, "publish")
	}
	return nil
}

func (ch *Channel) watch(ctx context.Context) {
	for {
		notify := ch.Channel().NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-ctx.Done():
			return
		case err, ok := <-notify:
			if !ok || ch.closed.Load() {
				return
			}
			ch.l.Warn().Err(err).Msg("channel closed, try to reopen")
			redial(ctx, ch.l, ch.reconnectTimeout, &ch.closed, &ch.mu, func() error {
				cch, err := ch.conn.Connection().Channel()
				if err != nil {
					return err
				}
				ch.ch = cch
				return nil
			})
		}
	}
}

// redial holds mu while retrying dial every timeout until it succeeds, the
// owner is closed or ctx is done.
func redial(
	ctx context.Context,
	l zerolog.Logger,
	timeout time.Duration,
	closed *atomic.Bool,
	mu *sync.RWMutex,
	dial func() error,
) {
	mu.Lock()
	defer mu.Unlock()
	for !closed.Load() {
		err := dial()
		if err == nil {
			l.Debug().Msg("reconnected")
			return
		}
		l.Warn().Err(err).Msg("reconnect failed")
		if !sleep(ctx, timeout) {
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
