package book

import "fmt"

// PriceLevel is the FIFO queue of resting orders at a single price.
// The intrusive list rooted at head/tail is the single source of truth for
// arrival order; TotalQty and Count are maintained incrementally on every
// enqueue, removal, and reduction.
type PriceLevel struct {
	Price int64

	head *Order
	tail *Order

	TotalQty int64
	Count    int
}

// Enqueue appends o to the back of the queue. New orders never reorder
// existing ones.
func (p *PriceLevel) Enqueue(o *Order) {
	if p.tail == nil {
		p.head = o
		p.tail = o
	} else {
		p.tail.next = o
		o.prev = p.tail
		p.tail = o
	}
	o.level = p
	p.TotalQty += o.Qty
	p.Count++
}

// Remove unlinks o in O(1) and returns the quantity that was resting.
// A handle whose order already left the level fails with ErrNotFound;
// double-cancel races are a normal client error, not corruption.
func (p *PriceLevel) Remove(o *Order) (int64, error) {
	if o.level != p {
		return 0, fmt.Errorf("%w: order %d not at level %d", ErrNotFound, o.ID, p.Price)
	}

	if o.prev != nil {
		o.prev.next = o.next
	} else {
		p.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		p.tail = o.prev
	}

	o.next = nil
	o.prev = nil
	o.level = nil

	qty := o.Qty
	p.TotalQty -= qty
	p.Count--
	return qty, nil
}

// Reduce shrinks o's resting quantity in place. FIFO position is kept.
// The caller has already validated 0 < newQty < o.Qty.
func (p *PriceLevel) Reduce(o *Order, newQty int64) {
	p.TotalQty -= o.Qty - newQty
	o.Qty = newQty
}

// FrontQty peeks the remaining quantity of the oldest order, or 0 when the
// level is empty. A matching layer consumes the front; the book itself
// only reads it.
func (p *PriceLevel) FrontQty() int64 {
	if p.head == nil {
		return 0
	}
	return p.head.Qty
}

func (p *PriceLevel) Empty() bool {
	return p.head == nil
}

// Head returns the oldest order for read-only traversal.
func (p *PriceLevel) Head() *Order {
	return p.head
}
