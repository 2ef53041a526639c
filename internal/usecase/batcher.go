package usecase

import (
	"sync"

	"CoinLake/internal/domain/models"
)

// Batcher accumulates ticks for one product into fixed-size batches. When
// the active batch fills, the registered handler is invoked synchronously
// with the full batch and a fresh batch is installed before Observe
// returns. The handler never sees a partially built batch, and a batch is
// handed to it exactly once.
type Batcher struct {
	product string
	size    int

	mu     sync.Mutex
	ticks  []*models.Tick
	onFull func(*models.Batch)
}

// NewBatcher creates a Batcher with the given flush size.
func NewBatcher(product string, size int) *Batcher {
	if size < 1 {
		size = 1
	}
	return &Batcher{
		product: product,
		size:    size,
		ticks:   make([]*models.Tick, 0, size),
	}
}

// OnFull registers the flush handler.
func (b *Batcher) OnFull(fn func(*models.Batch)) {
	b.mu.Lock()
	b.onFull = fn
	b.mu.Unlock()
}

// Observe appends one tick, flushing if the batch is now full. Ticks
// without a product identifier are discarded.
func (b *Batcher) Observe(t *models.Tick) {
	if t == nil || t.ProductID == "" {
		return
	}

	b.mu.Lock()
	b.ticks = append(b.ticks, t)
	if len(b.ticks) < b.size {
		b.mu.Unlock()
		return
	}
	full := &models.Batch{ProductID: b.product, Ticks: b.ticks}
	b.ticks = make([]*models.Tick, 0, b.size)
	fn := b.onFull
	b.mu.Unlock()

	if fn != nil {
		fn(full)
	}
}

// Drain hands over whatever is accumulated, resetting the batch. Used on
// shutdown; returns nil when nothing is pending.
func (b *Batcher) Drain() *models.Batch {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.ticks) == 0 {
		return nil
	}
	partial := &models.Batch{ProductID: b.product, Ticks: b.ticks}
	b.ticks = make([]*models.Tick, 0, b.size)
	return partial
}

// Pending returns the current partial batch size.
func (b *Batcher) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ticks)
}
