package notify

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/valyala/bytebufferpool"
)

// Op is one pending notification write. Payload may be backed by a
// pooled ByteBuffer; consumers must call Item.Done() when finished.
type Op struct {
	Recipient string
	Payload   []byte
	TS        int64
	// EnqSeq is a monotonic enqueue sequence used for key tiebreaks.
	EnqSeq uint64
}

// ErrQueueFull is returned by TryEnqueue when the queue is at capacity.
var ErrQueueFull = errors.New("notify queue full")

// Item wraps an Op and owns its pooled buffer. Done() must be called
// exactly once after processing.
type Item struct {
	Op *Op

	buf  *bytebufferpool.ByteBuffer
	once sync.Once
}

// maxPooledBuffer caps buffers returned to the pool so one oversized
// payload does not pin memory.
const maxPooledBuffer = 64 * 1024

// Done releases pooled resources back to the pool.
func (it *Item) Done() {
	it.once.Do(func() {
		if it.buf != nil {
			if cap(it.buf.B) > maxPooledBuffer {
				it.buf = nil
			} else {
				bytebufferpool.Put(it.buf)
				it.buf = nil
			}
		}
		if it.Op != nil {
			it.Op.Payload = nil
			opPool.Put(it.Op)
			it.Op = nil
		}
		itemPool.Put(it)
	})
}

var opPool = sync.Pool{New: func() any { return &Op{} }}
var itemPool = sync.Pool{New: func() any { return &Item{} }}

var enqSeq uint64

// Queue is a bounded in-memory queue of pending notification writes.
// Safe for concurrent producers; a single worker drains it.
type Queue struct {
	ch       chan *Item
	capacity int
	dropped  uint64
}

// NewQueue creates a bounded queue; capacity <= 0 falls back to 1024.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Queue{ch: make(chan *Item, capacity), capacity: capacity}
}

// DefaultQueue is the global queue Emit feeds. Replaceable at startup.
var DefaultQueue = NewQueue(16 * 1024)

// SetDefaultQueue replaces the package default queue.
func SetDefaultQueue(q *Queue) {
	if q != nil {
		DefaultQueue = q
	}
}

// Out returns the receive side for consumers.
func (q *Queue) Out() <-chan *Item { return q.ch }

// TryEnqueue copies op's payload into a pooled buffer and enqueues it.
// Returns ErrQueueFull when at capacity; notifications are best-effort,
// so callers may drop on that error.
func (q *Queue) TryEnqueue(op *Op) error {
	newOp := opPool.Get().(*Op)
	*newOp = *op
	newOp.EnqSeq = atomic.AddUint64(&enqSeq, 1)

	var bb *bytebufferpool.ByteBuffer
	if len(op.Payload) > 0 {
		bb = bytebufferpool.Get()
		bb.B = append(bb.B[:0], op.Payload...)
		newOp.Payload = bb.B[:len(op.Payload)]
	}

	it := itemPool.Get().(*Item)
	*it = Item{Op: newOp, buf: bb}

	select {
	case q.ch <- it:
		return nil
	default:
		if bb != nil {
			bytebufferpool.Put(bb)
		}
		opPool.Put(newOp)
		atomic.AddUint64(&q.dropped, 1)
		return ErrQueueFull
	}
}

// RunWorker drains the queue, invoking handler per op, until stop closes
// or the queue closes. Item.Done() is guaranteed even on handler error.
func (q *Queue) RunWorker(stop <-chan struct{}, handler func(*Op) error) {
	for {
		select {
		case it, ok := <-q.ch:
			if !ok {
				return
			}
			func(it *Item) {
				defer it.Done()
				_ = handler(it.Op)
			}(it)
		case <-stop:
			return
		}
	}
}

// DrainPending synchronously applies handler to everything currently
// queued. Used at shutdown and by tests that need deterministic fanout.
func (q *Queue) DrainPending(handler func(*Op) error) {
	for {
		select {
		case it := <-q.ch:
			func(it *Item) {
				defer it.Done()
				_ = handler(it.Op)
			}(it)
		default:
			return
		}
	}
}

// Len returns the current number of queued items.
func (q *Queue) Len() int { return len(q.ch) }

// Cap returns the configured capacity.
func (q *Queue) Cap() int { return q.capacity }

// Dropped returns how many ops were dropped on a full queue.
func (q *Queue) Dropped() uint64 { return atomic.LoadUint64(&q.dropped) }
