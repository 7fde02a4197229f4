// Package marketdata publishes periodic depth snapshots for every live
// book. Depth frames are throwaway market data: delivery is best effort
// and a missed tick is simply replaced by the next one.
package marketdata

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"corebook/domain/book"
	"corebook/infra/kafka"
)

type Publisher struct {
	reg      *book.Registry
	producer *kafka.Producer
	levels   int
	interval time.Duration
	logger   zerolog.Logger
}

func New(
	reg *book.Registry,
	producer *kafka.Producer,
	levels int,
	interval time.Duration,
	logger zerolog.Logger,
) *Publisher {
	return &Publisher{
		reg:      reg,
		producer: producer,
		levels:   levels,
		interval: interval,
		logger:   logger,
	}
}

func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info().Msg("market data publisher started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.publishOnce(ctx)
		}
	}
}

func (p *Publisher) publishOnce(ctx context.Context) {
	for _, sym := range p.reg.Symbols() {
		b, ok := p.reg.Get(sym)
		if !ok {
			continue
		}

		snap := b.Depth(p.levels)
		payload, err := json.Marshal(snap)
		if err != nil {
			p.logger.Error().Err(err).Str("symbol", sym).Msg("depth encode failed")
			continue
		}

		if err := p.producer.Send(ctx, []byte(sym), payload); err != nil {
			p.logger.Warn().Err(err).Str("symbol", sym).Msg("depth publish failed")
		}
	}
}
