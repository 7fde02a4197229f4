package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"corebook/api/rest"
	"corebook/config"
	"corebook/domain/book"
	"corebook/infra/codec"
	infralog "corebook/infra/log"
	"corebook/infra/metrics"
	"corebook/infra/outbox"
	"corebook/infra/sequence"
	"corebook/infra/wal"
	"corebook/jobs/broadcaster"
	"corebook/jobs/marketdata"
	"corebook/service"
	"corebook/snapshot"

	infrakafka "corebook/infra/kafka"
)

func main() {
	cfg, err := config.Load()
	logger := infralog.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("configuration load failed")
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	reg := metrics.Init(logger)

	// ---------------- Entry WAL ----------------

	entryWAL, err := wal.Open(wal.Config{
		Dir:         cfg.WAL.Dir,
		SegmentSize: cfg.WAL.SegmentSize,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("wal init failed")
	}
	defer entryWAL.Close()

	// ---------------- Outbox ----------------

	box, err := outbox.Open(cfg.Outbox.Dir)
	if err != nil {
		logger.Fatal().Err(err).Msg("outbox init failed")
	}
	defer box.Close()

	// ---------------- Domain ----------------

	books := book.NewRegistry(1)
	for _, in := range cfg.Instruments {
		books.SetTick(in.Symbol, in.TickSize)
	}

	// ---------------- Recovery: snapshot, then WAL ----------------

	snapSeq, err := snapshot.Load(cfg.Snapshot.Dir, books)
	if err != nil {
		logger.Fatal().Err(err).Msg("snapshot load failed")
	}

	seqGen := sequence.New(0)
	if err := service.ReplayFromWAL(cfg.WAL.Dir, snapSeq, books, seqGen, logger); err != nil {
		logger.Fatal().Err(err).Msg("wal replay failed")
	}

	// ---------------- Service ----------------

	var ser codec.Serializer = codec.JSONSerializer{}
	if cfg.Kafka.Format == "proto" {
		ser = codec.ProtoSerializer{}
	}

	svc := service.New(books, entryWAL, box, seqGen, ser, logger)

	// ---------------- Background jobs ----------------

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc.StartSnapshotJob(
		cfg.Snapshot.Dir,
		time.Duration(cfg.Snapshot.IntervalSeconds)*time.Second,
		box,
	)

	if cfg.Kafka.Enabled {
		bc, err := broadcaster.New(
			box,
			cfg.Kafka.Brokers,
			cfg.Kafka.EventsTopic,
			time.Duration(cfg.Kafka.BroadcastIntervalMillis)*time.Millisecond,
			logger,
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("broadcaster init failed")
		}
		defer bc.Close()
		go bc.Run(ctx)

		depthProducer := infrakafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.DepthTopic)
		defer depthProducer.Close()
		md := marketdata.New(
			books,
			depthProducer,
			cfg.Kafka.DepthLevels,
			time.Duration(cfg.Kafka.DepthIntervalMillis)*time.Millisecond,
			logger,
		)
		go md.Run(ctx)
	}

	// ---------------- HTTP ----------------

	api := rest.New(svc, cfg, logger, metrics.Handler(reg))
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", cfg.Server.Addr).Msg("corebook serving")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("http server exited")
	}
}
