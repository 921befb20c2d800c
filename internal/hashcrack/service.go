package hashcrack

import (
	"context"
	"encoding/xml"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	commonamqp "github.com/ykhdr/rainbow-table/common/amqp"
	amqpconn "github.com/ykhdr/rainbow-table/common/amqp/connection"
	"github.com/ykhdr/rainbow-table/common/amqp/consumer"
	"github.com/ykhdr/rainbow-table/common/amqp/publisher"
	"github.com/ykhdr/rainbow-table/internal/messages/request"
	"github.com/ykhdr/rainbow-table/internal/rainbow"
	"github.com/ykhdr/rainbow-table/pkg/messages"
)

const consumerName = "rainbow-table"

type Cracker interface {
	CrackHex(s string) (rainbow.Match, bool, error)
}

// Service answers crack requests arriving over AMQP.
type Service struct {
	l            zerolog.Logger
	queue        string
	consumerCfg  *consumer.Config
	publisherCfg *publisher.Config

	cracker Cracker

	amqpConn      *amqpconn.Connection
	amqpPublisher publisher.Publisher[messages.CrackHashResponse]
}

func NewService(
	cfg *commonamqp.Config,
	cracker Cracker,
	amqpConn *amqpconn.Connection,
) *Service {
	return &Service{
		queue:    cfg.ConsumerConfig.Queue,
		cracker:  cracker,
		amqpConn: amqpConn,
		consumerCfg: cfg.ConsumerConfig.ToConsumerConfig(
			xml.Unmarshal,
			consumerName,
		),
		publisherCfg: cfg.PublisherConfig.ToPublisherConfig(
			xml.Marshal,
			"application/xml",
		),
		l: log.With().
			Str("domain", "hashcrack").
			Logger(),
	}
}

// Start consumes requests until ctx is done.
func (s *Service) Start(ctx context.Context) error {
	ch, err := s.amqpConn.Channel(ctx)
	if err != nil {
		s.l.Warn().Err(err).Msg("Error create amqp channel")
		return errors.Wrap(err, "error create amqp channel")
	}
	defer func() { _ = ch.Close() }()
	if err := ch.QueueDeclare(s.queue); err != nil {
		return err
	}
	s.amqpPublisher = publisher.New[messages.CrackHashResponse](ch, s.publisherCfg)
	amqpConsumer := consumer.New[messages.CrackHashRequest](ch, s.receive, s.consumerCfg)
	s.l.Info().Str("queue", s.queue).Msg("Hashcrack service is running")
	amqpConsumer.Subscribe(ctx)
	return nil
}

func (s *Service) receive(ctx context.Context, data *messages.CrackHashRequest, d amqp.Delivery) error {
	resp := s.crackTask(data)
	if err := s.amqpPublisher.SendMessage(ctx, resp, publisher.Persistent, false, false); err != nil {
		if nackErr := d.Nack(false, true); nackErr != nil {
			s.l.Warn().Err(nackErr).Msg("error nack delivery")
		}
		return errors.Wrap(err, "error publish response")
	}
	if err := d.Ack(false); err != nil {
		return errors.Wrap(err, "error ack delivery")
	}
	return nil
}

func (s *Service) crackTask(req *messages.CrackHashRequest) *messages.CrackHashResponse {
	s.l.Debug().
		Str("req-id", req.RequestId).
		Str("hash", req.Hash).
		Msg("cracking task")
	resp := &messages.CrackHashResponse{
		Id:        uuid.NewString(),
		RequestId: req.RequestId,
	}
	m, found, err := s.cracker.CrackHex(req.Hash)
	switch {
	case err != nil:
		resp.Status = string(request.StatusError)
		resp.ErrorReason = err.Error()
	case !found:
		resp.Status = string(request.StatusNotFound)
	default:
		resp.Status = string(request.StatusReady)
		resp.Plaintext = m.Plaintext
		resp.ChainStart = m.ChainStart
		resp.Position = m.Position
	}
	return resp
}
