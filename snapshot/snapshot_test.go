package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"corebook/domain/book"
)

func TestWriteLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	reg := book.NewRegistry(1)
	btc := reg.GetOrCreate("BTC-USD")
	require.NoError(t, btc.NewOrder(1, book.Bid, 100, 10))
	require.NoError(t, btc.NewOrder(2, book.Bid, 100, 5))
	require.NoError(t, btc.NewOrder(3, book.Bid, 101, 7))
	require.NoError(t, btc.NewOrder(4, book.Ask, 105, 2))
	eth := reg.GetOrCreate("ETH-USD")
	require.NoError(t, eth.NewOrder(1, book.Ask, 4000, 3))

	w := &Writer{Dir: dir}
	require.NoError(t, w.Write(917, reg))

	restored := book.NewRegistry(1)
	seq, err := Load(dir, restored)
	require.NoError(t, err)
	require.Equal(t, uint64(917), seq)

	rb, ok := restored.Get("BTC-USD")
	require.True(t, ok)
	require.Equal(t, 4, rb.Resting())

	best, ok := rb.BestBid()
	require.True(t, ok)
	require.EqualValues(t, 101, best)
	best, ok = rb.BestAsk()
	require.True(t, ok)
	require.EqualValues(t, 105, best)

	// Time priority within the 100 level survives the round trip.
	var ids []uint64
	rb.WalkOrders(func(o *book.Order) {
		if o.Side == book.Bid && o.Price == 100 {
			ids = append(ids, o.ID)
		}
	})
	require.Equal(t, []uint64{1, 2}, ids)

	re, ok := restored.Get("ETH-USD")
	require.True(t, ok)
	require.Equal(t, 1, re.Resting())
}

func TestLoadMissingSnapshot(t *testing.T) {
	reg := book.NewRegistry(1)
	seq, err := Load(t.TempDir(), reg)
	require.NoError(t, err)
	require.Zero(t, seq)
	require.Empty(t, reg.Symbols())
}

func TestWriteReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	reg := book.NewRegistry(1)
	b := reg.GetOrCreate("BTC-USD")
	require.NoError(t, b.NewOrder(1, book.Bid, 100, 10))

	w := &Writer{Dir: dir}
	require.NoError(t, w.Write(1, reg))

	require.NoError(t, b.CancelOrder(1))
	require.NoError(t, b.NewOrder(2, book.Ask, 200, 4))
	require.NoError(t, w.Write(2, reg))

	restored := book.NewRegistry(1)
	seq, err := Load(dir, restored)
	require.NoError(t, err)
	require.Equal(t, uint64(2), seq)

	rb, _ := restored.Get("BTC-USD")
	require.Equal(t, 1, rb.Resting())
	_, hasBid := rb.BestBid()
	require.False(t, hasBid)
}
