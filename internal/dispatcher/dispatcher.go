package dispatcher

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ykhdr/rainbow-table/internal/config"
	"github.com/ykhdr/rainbow-table/internal/hashfunc"
	"github.com/ykhdr/rainbow-table/internal/messages/request"
	"github.com/ykhdr/rainbow-table/internal/rainbow"
	"github.com/ykhdr/rainbow-table/internal/store/requeststore"
)

var (
	ErrorQueueFull = errors.New("request queue is full")
)

type Cracker interface {
	Crack(target rainbow.Digest) (rainbow.Match, bool)
	Hasher() hashfunc.Hasher
}

// Dispatcher queues crack requests and resolves them one at a time against
// the table, recording progress in the request store.
type Dispatcher struct {
	l               zerolog.Logger
	requestC        chan *request.CrackRequest
	dispatchTimeout time.Duration
	cracker         Cracker
	requestStore    requeststore.RequestStore
	now             func() time.Time
}

func NewDispatcher(
	cfg *config.DispatcherConfig,
	cracker Cracker,
	requestStore requeststore.RequestStore,
) *Dispatcher {
	return &Dispatcher{
		requestC:        make(chan *request.CrackRequest, cfg.RequestQueueSize),
		dispatchTimeout: cfg.DispatchTimeout,
		cracker:         cracker,
		requestStore:    requestStore,
		now:             time.Now,
		l: log.With().
			Str("domain", "dispatcher").
			Logger(),
	}
}

func (s *Dispatcher) Start(ctx context.Context) error {
	s.l.Info().Msg("Dispatcher is running")
	for {
		select {
		case req := <-s.requestC:
			s.handleRequest(ctx, req)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// DispatchRequest validates hash and queues it. Malformed digests fail with
// rainbow.ErrInvalidDigestFormat; a queue that stays full for the dispatch
// timeout fails with ErrorQueueFull.
func (s *Dispatcher) DispatchRequest(ctx context.Context, hash string) (request.Id, error) {
	target, err := rainbow.ParseDigest(hash, s.cracker.Hasher().Size())
	if err != nil {
		return "", err
	}
	req := &request.CrackRequest{
		ID:        request.Id(uuid.NewString()),
		Target:    target,
		CreatedAt: s.now(),
	}
	info := &request.Info{
		ID:        req.ID,
		Status:    request.StatusNew,
		Hash:      target.String(),
		CreatedAt: req.CreatedAt,
	}
	if err := s.requestStore.Save(ctx, info); err != nil {
		return "", errors.Wrap(err, "save request")
	}

	timer := time.NewTimer(s.dispatchTimeout)
	defer timer.Stop()
	select {
	case s.requestC <- req:
		return req.ID, nil
	case <-timer.C:
	case <-ctx.Done():
	}
	info.Fail(ErrorQueueFull.Error(), s.now())
	if err := s.requestStore.Save(ctx, info); err != nil {
		s.l.Warn().Err(err).Str("request-id", string(req.ID)).Msg("Failed to save rejected request")
	}
	return "", ErrorQueueFull
}

func (s *Dispatcher) handleRequest(ctx context.Context, req *request.CrackRequest) {
	if req == nil {
		return
	}
	l := s.l.With().Str("request-id", string(req.ID)).Logger()
	info, err := s.requestStore.Get(ctx, req.ID)
	if err != nil {
		l.Warn().Err(err).Msg("Request vanished before processing")
		return
	}
	info.Status = request.StatusInProgress
	if err := s.requestStore.Save(ctx, info); err != nil {
		l.Warn().Err(err).Msg("Failed to mark request in progress")
	}

	m, found := s.cracker.Crack(req.Target)
	info.Finish(m, found, s.now())
	l.Debug().
		Str("status", string(info.Status)).
		Dur("elapsed", info.FinishedAt.Sub(info.CreatedAt)).
		Msg("Request processed")
	if err := s.requestStore.Save(ctx, info); err != nil {
		l.Error().Err(err).Msg("Failed to save request result")
	}
}
