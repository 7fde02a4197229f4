package broadcaster

import (
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"corebook/infra/outbox"
)

func newTestBroadcaster(t *testing.T, producer *mocks.SyncProducer) (*Broadcaster, *outbox.Outbox) {
	t.Helper()
	box, err := outbox.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = box.Close() })

	return &Broadcaster{
		box:      box,
		producer: producer,
		topic:    "book.events",
		interval: time.Millisecond,
		logger:   zerolog.Nop(),
	}, box
}

func TestDrainPublishesAndAcks(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndSucceed()
	producer.ExpectSendMessageAndSucceed()

	b, box := newTestBroadcaster(t, producer)
	require.NoError(t, box.Append(1, []byte("e1")))
	require.NoError(t, box.Append(2, []byte("e2")))

	b.drainOnce()

	for _, seq := range []uint64{1, 2} {
		rec, err := box.Get(seq)
		require.NoError(t, err)
		require.Equal(t, outbox.StateAcked, rec.State)
	}

	// Nothing pending, nothing re-sent.
	b.drainOnce()
	require.NoError(t, producer.Close())
}

func TestPublishFailureKeepsRecordPending(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(errors.New("broker down"))

	b, box := newTestBroadcaster(t, producer)
	require.NoError(t, box.Append(1, []byte("e1")))

	b.drainOnce()

	rec, err := box.Get(1)
	require.NoError(t, err)
	require.Equal(t, outbox.StateSent, rec.State)

	// The next drain retries the stranded record.
	producer.ExpectSendMessageAndSucceed()
	b.drainOnce()

	rec, err = box.Get(1)
	require.NoError(t, err)
	require.Equal(t, outbox.StateAcked, rec.State)
	require.NoError(t, producer.Close())
}
