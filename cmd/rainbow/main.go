package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/ykhdr/rainbow-table/common/amqp"
	"github.com/ykhdr/rainbow-table/common/consul"
	"github.com/ykhdr/rainbow-table/common/store/mongo"
	"github.com/ykhdr/rainbow-table/internal/config"
	"github.com/ykhdr/rainbow-table/internal/corpus"
	"github.com/ykhdr/rainbow-table/internal/dispatcher"
	"github.com/ykhdr/rainbow-table/internal/hashcrack"
	"github.com/ykhdr/rainbow-table/internal/hashfunc"
	"github.com/ykhdr/rainbow-table/internal/rainbow"
	"github.com/ykhdr/rainbow-table/internal/server/api"
	"github.com/ykhdr/rainbow-table/internal/store/requeststore"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName = "rainbow-table"
	previewRows = 10
)

func main() {
	cfg, err := config.InitializeConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing config")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table, err := buildTable(ctx, cfg.TableConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building rainbow table")
	}

	var mongoDb *mongodriver.Database
	if cfg.MongoDBConfig != nil {
		mongoClient, err := mongo.NewClient(&cfg.MongoDBConfig.ClientConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("Error initializing mongo client")
		}
		defer func() { _ = mongoClient.Disconnect(context.Background()) }()
		mongoDb = mongoClient.Database(cfg.MongoDBConfig.Database)
	}
	requestStore := requeststore.NewRequestStore(mongoDb)

	group, gCtx := errgroup.WithContext(ctx)
	dispatcherSrv := dispatcher.NewDispatcher(cfg.DispatcherConfig, table, requestStore)
	apiSrv := api.NewServer(cfg.ApiServerAddr, dispatcherSrv, requestStore, table)
	group.Go(func() error {
		return dispatcherSrv.Start(gCtx)
	})
	group.Go(func() error {
		return apiSrv.Start(gCtx)
	})

	if cfg.AmqpConfig != nil {
		amqpConn, err := amqp.Dial(gCtx, cfg.AmqpConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("Error initializing amqp connection")
		}
		defer func() { _ = amqpConn.Close() }()
		hashcrackSrv := hashcrack.NewService(cfg.AmqpConfig, table, amqpConn)
		group.Go(func() error {
			return hashcrackSrv.Start(gCtx)
		})
	}

	if cfg.ConsulConfig != nil {
		deregister, err := registerService(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Error registering service in consul")
		}
		defer deregister()
	}

	if err = group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Rainbow table service failed")
	}
}

func buildTable(ctx context.Context, cfg *config.TableConfig) (*rainbow.Table, error) {
	hasher, err := hashfunc.Get(cfg.Hash)
	if err != nil {
		return nil, err
	}
	table, err := rainbow.NewTable(cfg.Params(), hasher)
	if err != nil {
		return nil, err
	}
	seed := uint64(cfg.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	log.Info().
		Uint64("seed", seed).
		Int("corpus-size", cfg.CorpusSize).
		Int("password-length", cfg.PasswordLength).
		Msg("Generating passwords")
	passwords := corpus.NewSeeded(cfg.Alphabet, cfg.PasswordLength, seed).Generate(cfg.CorpusSize)

	started := time.Now()
	if err := table.Build(ctx, passwords, cfg.Workers); err != nil {
		return nil, err
	}
	log.Info().
		Int("chains", table.Chains()).
		Int("endpoints", table.Endpoints()).
		Int("collisions", table.Chains()-table.Endpoints()).
		Dur("elapsed", time.Since(started)).
		Msg("Rainbow table ready")
	for _, row := range table.Rows(0, previewRows) {
		log.Debug().
			Str("first", row.Start).
			Str("last", row.Last).
			Str("hash", row.Digest).
			Msg("Chain")
	}
	return table, nil
}

func registerService(cfg *config.Config) (func(), error) {
	consulClient, err := consul.NewClient(cfg.ConsulConfig)
	if err != nil {
		return nil, err
	}
	address, port, err := cfg.AdvertiseAddress()
	if err != nil {
		return nil, err
	}
	serviceId, err := consulClient.RegisterService(serviceName, address, port)
	if err != nil {
		return nil, err
	}
	log.Info().Str("service-id", serviceId).Msg("Registered in consul")
	return func() {
		if err := consulClient.DeregisterService(serviceId); err != nil {
			log.Warn().Err(err).Msg("Failed to deregister from consul")
		}
	}, nil
}
