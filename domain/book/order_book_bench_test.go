package book

import "testing"

func BenchmarkNewOrder(b *testing.B) {
	book := NewOrderBook("BTC-USD", 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = book.NewOrder(uint64(i+1), Bid, int64(100+i%64), 10)
	}
}

func BenchmarkCancelOrder(b *testing.B) {
	book := NewOrderBook("BTC-USD", 1)
	for i := 0; i < b.N; i++ {
		_ = book.NewOrder(uint64(i+1), Bid, int64(100+i%64), 10)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = book.CancelOrder(uint64(i + 1))
	}
}

func BenchmarkModifyOrder(b *testing.B) {
	book := NewOrderBook("BTC-USD", 1)
	for i := 0; i < b.N; i++ {
		_ = book.NewOrder(uint64(i+1), Ask, int64(100+i%64), 1<<30)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = book.ModifyOrder(uint64(i+1), int64(1<<30-i%1000-1))
	}
}

func BenchmarkBestBid(b *testing.B) {
	book := NewOrderBook("BTC-USD", 1)
	for i := 0; i < 1024; i++ {
		_ = book.NewOrder(uint64(i+1), Bid, int64(100+i%64), 10)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = book.BestBid()
	}
}

func BenchmarkDepth16(b *testing.B) {
	book := NewOrderBook("BTC-USD", 1)
	for i := 0; i < 4096; i++ {
		_ = book.NewOrder(uint64(i+1), Bid, int64(100+i%128), 10)
		_ = book.NewOrder(uint64(1<<20+i), Ask, int64(300+i%128), 10)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = book.Depth(16)
	}
}
