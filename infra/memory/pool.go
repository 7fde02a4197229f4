// Package memory provides the typed object pool used to recycle Order
// structs across insert/cancel churn, keeping steady-state allocation flat.
package memory

import "sync"

// Pool is a typed wrapper over sync.Pool.
type Pool[T any] struct {
	p *sync.Pool
}

func NewPool[T any](ctor func() *T) *Pool[T] {
	return &Pool[T]{
		p: &sync.Pool{
			New: func() any { return ctor() },
		},
	}
}

func (p *Pool[T]) Get() *T {
	return p.p.Get().(*T)
}

// Put returns v for reuse. The caller must have zeroed it and must hold no
// other references.
func (p *Pool[T]) Put(v *T) {
	p.p.Put(v)
}
