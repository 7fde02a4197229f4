// Package book implements the per-instrument resting limit order book:
// two price-ordered sides of FIFO price levels, plus an order index that
// gives O(1) cancellation and modification of any resting order by id.
//
// The book is a resting-order store, not a matcher. Mutations on one book
// are serialized by a per-book mutex; books for different symbols are
// fully independent and owned by a Registry.
package book
