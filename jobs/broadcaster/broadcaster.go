// Package broadcaster drains the event outbox to Kafka. Records move
// NEW → SENT → ACKED; a record is marked SENT before the publish attempt,
// so a crash mid-publish leaves it pending and it is retried on the next
// scan. Downstream consumers must dedupe on sequence.
package broadcaster

import (
	"context"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"corebook/infra/metrics"
	"corebook/infra/outbox"
)

type Broadcaster struct {
	box      *outbox.Outbox
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
	logger   zerolog.Logger
}

func New(
	box *outbox.Outbox,
	brokers []string,
	topic string,
	interval time.Duration,
	logger zerolog.Logger,
) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Broadcaster{
		box:      box,
		producer: producer,
		topic:    topic,
		interval: interval,
		logger:   logger,
	}, nil
}

// Run drains pending records until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	b.logger.Info().Str("topic", b.topic).Msg("broadcaster started")

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.drainOnce()
		}
	}
}

func (b *Broadcaster) drainOnce() {
	pending := 0

	_ = b.box.ScanPending(func(rec outbox.Record) error {
		pending++

		if err := b.box.MarkSent(rec); err != nil {
			return err
		}

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.StringEncoder(strconv.FormatUint(rec.Seq, 10)),
			Value: sarama.ByteEncoder(rec.Payload),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			b.logger.Warn().Err(err).Uint64("seq", rec.Seq).Msg("publish failed, will retry")
			return nil // keep record pending, continue the scan next tick
		}

		if err := b.box.MarkAcked(rec); err != nil {
			return err
		}
		metrics.EventsPublishedTotal.Inc()
		pending--
		return nil
	})

	metrics.EventsPendingScan.Set(float64(pending))
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
