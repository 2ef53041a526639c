package usecase

import (
	"context"
	"fmt"
	"time"

	"CoinLake/internal/domain/models"
	drepo "CoinLake/internal/domain/repository"
	internalrepo "CoinLake/internal/repository"
	"CoinLake/pkg/logger"
)

// BronzeContainer is the namespace for raw live tick batches.
const BronzeContainer = "bronze"

// Flusher writes full batches to the configured backend. One attempt per
// batch: a failed write is surfaced and the batch is dropped, never
// re-queued, so memory stays bounded under a dead sink.
type Flusher struct {
	store   drepo.ObjectStore
	pub     drepo.BatchPublisher
	metrics drepo.Metrics
	log     *logger.Logger
	backend string
}

// NewFlusher creates a Flusher routing to the given backend
// ("clickhouse" or "kafka").
func NewFlusher(
	store drepo.ObjectStore,
	pub drepo.BatchPublisher,
	metrics drepo.Metrics,
	log *logger.Logger,
	backend string,
) *Flusher {
	return &Flusher{store: store, pub: pub, metrics: metrics, log: log, backend: backend}
}

// Flush persists one full batch.
func (f *Flusher) Flush(ctx context.Context, batch *models.Batch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}

	start := time.Now()
	var err error
	switch f.backend {
	case "kafka":
		err = f.pub.PublishBatch(ctx, batch)
	case "clickhouse":
		var payload []byte
		payload, err = batch.Encode()
		if err == nil {
			key := internalrepo.ObjectKey(batch.ProductID, batch.Last().Time)
			err = f.store.Insert(ctx, BronzeContainer, key, payload)
		}
	default:
		err = fmt.Errorf("unknown backend: %s", f.backend)
	}

	if err != nil {
		f.metrics.RecordError("flush")
		return fmt.Errorf("flush batch %s (%d ticks): %w", batch.ProductID, batch.Len(), err)
	}

	f.metrics.RecordBatchStored(f.backend, batch.ProductID, batch.Len())
	f.metrics.RecordLatency("flush", time.Since(start).Seconds())
	return nil
}
