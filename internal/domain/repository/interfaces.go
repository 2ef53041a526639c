package repository

import (
	"context"

	"CoinLake/internal/domain/models"
)

// FeedStream is one live subscription to the venue feed for a single
// product. Read terminates when the connection drops; reconnecting is the
// supervisor's job, not the stream's.
type FeedStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Close() error
	IsConnected() bool
}

// StreamFactory opens a fresh FeedStream for a product. The supervisor
// calls it once per pipeline start or restart.
type StreamFactory func(product string) FeedStream

// ObjectStore is a durable key-addressed sink. Writes with the same
// (container, key) pair are idempotent.
type ObjectStore interface {
	CreateContainer(ctx context.Context, name string) error
	Insert(ctx context.Context, container, key string, payload []byte) error
	Health(ctx context.Context) error
	Close() error
}

// BatchPublisher mirrors flushed tick batches to a message broker.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, batch *models.Batch) error
	Close() error
}

// CandleSource fetches one page of historical candles for a window.
// A non-success upstream status is returned as *UpstreamError.
type CandleSource interface {
	Fetch(ctx context.Context, product string, w models.TimeWindow) ([]models.Candle, error)
}

// RatePolicy spaces consecutive upstream requests.
type RatePolicy interface {
	Pause(ctx context.Context) error
}

// LatestCache keeps the most recent tick payload per product.
type LatestCache interface {
	SetLatest(ctx context.Context, product string, payload []byte) error
	GetLatest(ctx context.Context, product string) ([]byte, bool, error)
}

type Metrics interface {
	RecordBatchStored(backend, product string, ticks int)
	RecordError(kind string)
	RecordLastPrice(product string, price float64)
	RecordLatency(op string, seconds float64)
}
